// Package provider defines option sources for flights and hotels.
package provider

import (
	"context"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

// MaxOptions bounds every candidate list a provider returns.
const MaxOptions = 5

// FlightProvider searches flight candidates.
type FlightProvider interface {
	SearchFlights(ctx context.Context, slots model.SlotSet) ([]model.Flight, error)
}

// HotelProvider searches hotel candidates.
type HotelProvider interface {
	SearchHotels(ctx context.Context, slots model.SlotSet) ([]model.Hotel, error)
}

// OptionProvider serves both kinds of candidates.
type OptionProvider interface {
	FlightProvider
	HotelProvider
	Name() string
}
