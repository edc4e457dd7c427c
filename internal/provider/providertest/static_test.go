package providertest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/provider"
	"github.com/capitalize-ai/trip-concierge/internal/provider/providertest"
)

var _ provider.OptionProvider = (*providertest.Static)(nil)

func TestStaticReturnsCopies(t *testing.T) {
	s := &providertest.Static{Hotels: []model.Hotel{{Name: "Hilton", PricePerNight: decimal.NewFromInt(900)}}}
	got, err := s.SearchHotels(context.Background(), model.SlotSet{})
	if err != nil || len(got) != 1 {
		t.Fatalf("hotels=%v err=%v", got, err)
	}
	got[0].Name = "changed"
	if s.Hotels[0].Name != "Hilton" {
		t.Fatalf("search result aliases the fixture")
	}
}

func TestStaticError(t *testing.T) {
	boom := errors.New("upstream down")
	s := &providertest.Static{Err: boom}
	if _, err := s.SearchHotels(context.Background(), model.SlotSet{}); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if _, err := s.SearchFlights(context.Background(), model.SlotSet{}); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
}

func TestStaticHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &providertest.Static{Flights: []model.Flight{{Airline: "Saudia"}}}
	if _, err := s.SearchFlights(ctx, model.SlotSet{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}
