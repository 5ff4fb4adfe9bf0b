package infinitecraft

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

const DefaultDiscoveriesPath = "discoveries.json"

// Defaults returns the four elements every fresh discovery file
// starts with.
func Defaults() []Element {
	return []Element{
		{Name: "Water", Emoji: "💧"},
		{Name: "Fire", Emoji: "🔥"},
		{Name: "Wind", Emoji: "🌬️"},
		{Name: "Earth", Emoji: "🌍"},
	}
}

// Store keeps discovered elements in discovery order, unique by name,
// mirrored to an indented JSON file. The file may be touched by other
// processes so reads always go back to disk; the in-memory list is a
// convenience, not the source of truth.
//
// Writes are whole-file overwrites. Two processes writing the same
// path can race, this is accepted.
type Store struct {
	path     string
	elements []Element
}

type StoreOptions struct {
	// Path of the discoveries JSON file. Defaults to
	// DefaultDiscoveriesPath.
	Path string
	// Reset overwrites any existing file with the default elements.
	Reset bool
}

// OpenStore opens the discovery file at opts.Path, creating it with
// the default elements when it does not exist.
func OpenStore(opts StoreOptions) (*Store, error) {
	path := opts.Path
	if path == "" {
		path = DefaultDiscoveriesPath
	}
	s := &Store{path: path}

	_, err := os.Stat(path)
	missing := os.IsNotExist(err)
	if err != nil && !missing {
		return nil, err
	}

	if missing || opts.Reset {
		err := s.Reset()
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	_, err = s.Discoveries(DiscoveriesOptions{SetValue: true})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Len() int {
	return len(s.elements)
}

// Discovery looks up an element in the in-memory list by exact, case
// sensitive name.
func (s *Store) Discovery(name string) (Element, bool) {
	for _, e := range s.elements {
		if e.Name == name {
			return e, true
		}
	}
	return Element{}, false
}

// DiscoveryOnDisk looks up an element by name in the file itself,
// seeing edits made by other processes that the in-memory list has
// not picked up yet.
func (s *Store) DiscoveryOnDisk(name string) (Element, bool, error) {
	loaded, err := s.load()
	if err != nil {
		return Element{}, false, err
	}
	for _, e := range loaded {
		if e.Name == name {
			return e, true, nil
		}
	}
	return Element{}, false, nil
}

type DiscoveriesOptions struct {
	// Check filters the returned elements when non-nil.
	Check func(Element) bool
	// SetValue replaces the in-memory list with the freshly loaded,
	// unfiltered file contents.
	SetValue bool
}

// Discoveries reloads the discovery file from disk and returns its
// elements, optionally filtered by opts.Check.
func (s *Store) Discoveries(opts DiscoveriesOptions) ([]Element, error) {
	loaded, err := s.load()
	if err != nil {
		return nil, err
	}

	if opts.SetValue {
		s.elements = loaded
	}

	if opts.Check == nil {
		out := make([]Element, len(loaded))
		copy(out, loaded)
		return out, nil
	}

	var out []Element
	for _, e := range loaded {
		if opts.Check(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Add appends a new discovery and rewrites the file, reporting
// whether the element was novel. The sentinel empty element and
// already-known names are ignored.
func (s *Store) Add(element Element) (bool, error) {
	if element.IsEmpty() {
		return false, nil
	}

	existing, err := s.load()
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.Name == element.Name {
			return false, nil
		}
	}

	existing = append(existing, element)
	err = s.save(existing)
	if err != nil {
		return false, err
	}
	s.elements = existing
	return true, nil
}

// Reset rewrites the file with exactly the default elements.
func (s *Store) Reset() error {
	defaults := Defaults()
	err := s.save(defaults)
	if err != nil {
		return err
	}
	s.elements = defaults
	return nil
}

// Search returns up to limit discoveries whose names most resemble
// the query, best match first. Matching is case insensitive, unlike
// Discovery.
func (s *Store) Search(query string, limit int) []Element {
	type scored struct {
		element    Element
		similarity float64
	}

	ranked := make([]scored, 0, len(s.elements))
	for _, e := range s.elements {
		similarity := matchr.JaroWinkler(strings.ToLower(query), strings.ToLower(e.Name), false)
		ranked = append(ranked, scored{element: e, similarity: similarity})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].similarity > ranked[j].similarity
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]Element, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, r.element)
	}
	return out
}

func (s *Store) load() ([]Element, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read discoveries file: %w", err)
	}
	var out []Element
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return nil, fmt.Errorf("parse discoveries file %q: %w", s.path, err)
	}
	return out, nil
}

func (s *Store) save(elements []Element) error {
	contents, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return err
		}
	}

	err = os.WriteFile(s.path, contents, 0644)
	if err != nil {
		return fmt.Errorf("write discoveries file: %w", err)
	}
	return nil
}
