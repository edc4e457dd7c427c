// Package dispatch routes a resolved intent to the option providers.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/provider"
	"github.com/capitalize-ai/trip-concierge/internal/synth"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

// Error reasons reported on ErrorResult.
const (
	ReasonProviderFailure = "provider_failure"
	ReasonNoOptions       = "no_options"
	ReasonUnknownIntent   = "unknown_intent"
	ReasonInternal        = "internal_error"
)

// Request is one dispatch call.
type Request struct {
	Intent  model.Intent
	Slots   model.SlotSet
	Message string
}

// Dispatcher invokes exactly one handler per resolved intent.
type Dispatcher struct {
	flights provider.FlightProvider
	hotels  provider.HotelProvider
	synth   *synth.Synthesizer
	logger  *logger.Logger
}

// New creates a dispatcher.
func New(flights provider.FlightProvider, hotels provider.HotelProvider, syn *synth.Synthesizer, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Global()
	}
	return &Dispatcher{flights: flights, hotels: hotels, synth: syn, logger: log}
}

// Dispatch never returns an error. Provider failures and panics become an
// ErrorResult; the caller keeps the session intact.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (res model.Result) {
	log := d.logger.WithContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error("dispatch panicked",
				zap.String("intent", string(req.Intent)),
				zap.Error(fmt.Errorf("panic: %v", r)),
			)
			res = &model.ErrorResult{Attempted: req.Intent, Reason: ReasonInternal}
		}
	}()

	var err error
	switch req.Intent {
	case model.IntentFlightBooking:
		res, err = d.flightOptions(ctx, req.Slots)
	case model.IntentHotelBooking:
		res, err = d.hotelOptions(ctx, req.Slots)
	case model.IntentTripPlanning:
		res, err = d.tripOptions(ctx, req.Slots)
	case model.IntentGeneral, model.IntentGeneralConversation:
		return &model.GeneralResult{Message: req.Message}
	default:
		log.Warn("no handler for intent", zap.String("intent", string(req.Intent)))
		return &model.ErrorResult{Attempted: req.Intent, Reason: ReasonUnknownIntent}
	}
	if err != nil {
		reason := ReasonProviderFailure
		if errors.Is(err, model.ErrNoOptions) {
			reason = ReasonNoOptions
		}
		log.Error("option generation failed",
			zap.String("intent", string(req.Intent)),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return &model.ErrorResult{Attempted: req.Intent, Reason: reason}
	}
	return res
}

func (d *Dispatcher) flightOptions(ctx context.Context, slots model.SlotSet) (model.Result, error) {
	flights, err := d.searchFlights(ctx, slots)
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, fmt.Errorf("flights %s-%s: %w", slots.Origin, slots.Destination, model.ErrNoOptions)
	}
	return model.NewFlightResult(slots, flights), nil
}

func (d *Dispatcher) hotelOptions(ctx context.Context, slots model.SlotSet) (model.Result, error) {
	hotels, err := d.searchHotels(ctx, slots)
	if err != nil {
		return nil, err
	}
	if len(hotels) == 0 {
		return nil, fmt.Errorf("hotels in %s: %w", slots.City, model.ErrNoOptions)
	}
	return model.NewHotelResult(slots, hotels), nil
}

// tripOptions fetches both lists and pairs them. A side coming back empty
// yields no packages rather than an error.
func (d *Dispatcher) tripOptions(ctx context.Context, slots model.SlotSet) (model.Result, error) {
	flights, err := d.searchFlights(ctx, slots)
	if err != nil {
		return nil, err
	}
	hotels, err := d.searchHotels(ctx, slots)
	if err != nil {
		return nil, err
	}
	packages := d.synth.Synthesize(flights, hotels)
	return model.NewTripResult(slots, capFlights(flights), capHotels(hotels), packages, string(d.synth.Strategy())), nil
}

func (d *Dispatcher) searchFlights(ctx context.Context, slots model.SlotSet) ([]model.Flight, error) {
	if d.flights == nil {
		return nil, errors.New("no flight provider configured")
	}
	flights, err := d.flights.SearchFlights(ctx, slots)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	return capFlights(flights), nil
}

func (d *Dispatcher) searchHotels(ctx context.Context, slots model.SlotSet) ([]model.Hotel, error) {
	if d.hotels == nil {
		return nil, errors.New("no hotel provider configured")
	}
	hotels, err := d.hotels.SearchHotels(ctx, slots)
	if err != nil {
		return nil, fmt.Errorf("search hotels: %w", err)
	}
	return capHotels(hotels), nil
}

func capFlights(f []model.Flight) []model.Flight {
	if len(f) > provider.MaxOptions {
		return f[:provider.MaxOptions]
	}
	return f
}

func capHotels(h []model.Hotel) []model.Hotel {
	if len(h) > provider.MaxOptions {
		return h[:provider.MaxOptions]
	}
	return h
}
