package infinitecraft

// Element is a named, optionally emoji-tagged discovery. The zero
// value is the "no result" sentinel returned when two elements cannot
// be paired; check IsEmpty before using a pairing result.
type Element struct {
	Name             string `json:"name"`
	Emoji            string `json:"emoji"`
	IsFirstDiscovery bool   `json:"isFirstDiscovery"`
}

// IsEmpty reports whether e is the "no result" sentinel.
func (e Element) IsEmpty() bool {
	return e == Element{}
}

func (e Element) String() string {
	if e.Emoji != "" {
		return e.Emoji + " " + e.Name
	}
	return e.Name
}
