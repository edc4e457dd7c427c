// Package synth pairs flight and hotel candidates into priced packages.
package synth

import (
	"fmt"
	"strings"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

// Strategy selects how flights and hotels are paired.
type Strategy string

const (
	// StrategyCrossProduct pairs every flight with every hotel, flight-major.
	StrategyCrossProduct Strategy = "cross"
	// StrategyBestMatch pairs flight i with hotel i mod H, then tops the
	// list up with unused cross pairs until MinPackages is reached.
	StrategyBestMatch Strategy = "best"
)

// Bounds on the candidate and result lists.
const (
	FlightCap   = 5
	HotelCap    = 5
	MinPackages = 5
	MaxPackages = 12
)

// ParseStrategy accepts "cross", "cross_product", "best" and "best_match".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cross", "cross_product":
		return StrategyCrossProduct, nil
	case "best", "best_match":
		return StrategyBestMatch, nil
	}
	return "", fmt.Errorf("unknown package strategy %q", s)
}

// Synthesizer builds packages with a fixed strategy and result limit.
type Synthesizer struct {
	strategy Strategy
	limit    int
}

// New creates a synthesizer. limit is clamped to [MinPackages, MaxPackages].
func New(strategy Strategy, limit int) *Synthesizer {
	if strategy == "" {
		strategy = StrategyCrossProduct
	}
	if limit <= 0 || limit > MaxPackages {
		limit = MaxPackages
	}
	if limit < MinPackages {
		limit = MinPackages
	}
	return &Synthesizer{strategy: strategy, limit: limit}
}

// Strategy returns the active pairing strategy.
func (s *Synthesizer) Strategy() Strategy {
	return s.strategy
}

// Synthesize returns the packages for the given candidates. Either list
// being empty yields an empty, non-nil result.
func (s *Synthesizer) Synthesize(flights []model.Flight, hotels []model.Hotel) []model.Package {
	f := min(len(flights), FlightCap)
	h := min(len(hotels), HotelCap)
	if f == 0 || h == 0 {
		return []model.Package{}
	}
	flights, hotels = flights[:f], hotels[:h]

	var pairs [][2]int
	switch s.strategy {
	case StrategyBestMatch:
		pairs = bestMatch(f, h, min(s.limit, MinPackages))
	default:
		pairs = crossProduct(f, h)
	}
	if len(pairs) > s.limit {
		pairs = pairs[:s.limit]
	}

	out := make([]model.Package, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, model.NewPackage(flights[p[0]], hotels[p[1]]))
	}
	return out
}

func crossProduct(f, h int) [][2]int {
	pairs := make([][2]int, 0, f*h)
	for i := 0; i < f; i++ {
		for j := 0; j < h; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

// bestMatch zips flights with hotels and then adds cross pairs not yet
// used until floor packages exist or combinations run out.
func bestMatch(f, h, floor int) [][2]int {
	used := make(map[[2]int]bool)
	pairs := make([][2]int, 0, max(f, floor))
	for i := 0; i < f; i++ {
		p := [2]int{i, i % h}
		used[p] = true
		pairs = append(pairs, p)
	}
	for _, p := range crossProduct(f, h) {
		if len(pairs) >= floor {
			break
		}
		if !used[p] {
			used[p] = true
			pairs = append(pairs, p)
		}
	}
	return pairs
}
