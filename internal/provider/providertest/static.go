// Package providertest provides an in-memory option provider for tests of
// packages that consume provider.OptionProvider.
package providertest

import (
	"context"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

// Static returns fixed candidate lists. Err, when set, fails every search.
// Results are copies, so callers may sort or trim them.
type Static struct {
	Flights []model.Flight
	Hotels  []model.Hotel
	Err     error
}

func (s *Static) Name() string { return "static" }

func (s *Static) SearchFlights(ctx context.Context, _ model.SlotSet) ([]model.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Flight(nil), s.Flights...), nil
}

func (s *Static) SearchHotels(ctx context.Context, _ model.SlotSet) ([]model.Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Hotel(nil), s.Hotels...), nil
}
