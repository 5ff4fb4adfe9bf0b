package mockcraft

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"infinite-craft/lib/infinitecraft"

	"github.com/go-chi/chi/v5"
	"github.com/mazen160/go-random"
)

// pool of results handed out in Randomize mode
var randomPool = []infinitecraft.Element{
	{Name: "Steam", Emoji: "💨"},
	{Name: "Lava", Emoji: "🌋"},
	{Name: "Plant", Emoji: "🌱"},
	{Name: "Smoke", Emoji: "🌫️"},
	{Name: "Dust", Emoji: "🌪️"},
	{Name: "Lake", Emoji: "🏞️"},
}

type Options struct {
	// Results maps a pair key (see PairKey) to the element returned
	// for that combination.
	Results map[string]infinitecraft.Element
	// Randomize answers unmapped combinations with a random pool
	// element instead of the fixed "???" placeholder.
	Randomize bool
}

// PairKey builds a Results key. Pairing is commutative so the two
// names are ordered before joining.
func PairKey(first, second string) string {
	if second < first {
		first, second = second, first
	}
	return first + "+" + second
}

type service struct {
	opts Options
}

// NewHandler returns an http.Handler speaking the upstream pairing
// wire contract, for offline development and tests.
func NewHandler(opts Options) http.Handler {
	s := service{opts: opts}

	r := chi.NewRouter()
	r.Get("/api/infinite-craft/pair", s.pair)
	return r
}

type pairResponse struct {
	Result string `json:"result"`
	Emoji  string `json:"emoji"`
	IsNew  bool   `json:"isNew"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode mock response", "err", err)
	}
}

func (s service) pair(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	first := query.Get("first")
	second := query.Get("second")
	if first == "" || second == "" {
		writeJson(w, http.StatusBadRequest, errorResponse{
			Error: "both first and second are required",
		})
		return
	}

	out := pairResponse{Result: "???", Emoji: "🌌", IsNew: false}

	element, ok := s.opts.Results[PairKey(first, second)]
	switch {
	case ok:
		out = pairResponse{
			Result: element.Name,
			Emoji:  element.Emoji,
			IsNew:  element.IsFirstDiscovery,
		}
	case s.opts.Randomize:
		idx, err := random.IntRange(0, len(randomPool))
		if err == nil {
			picked := randomPool[idx]
			out = pairResponse{Result: picked.Name, Emoji: picked.Emoji}
		}
	}

	slog.Info(
		"mock pair",
		"first", first,
		"second", second,
		"result", out.Result,
		"emoji", out.Emoji,
	)
	writeJson(w, http.StatusOK, out)
}
