package provider

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

func testSlots() model.SlotSet {
	return model.SlotSet{
		Origin:        "Riyadh",
		Destination:   "Jeddah",
		City:          "Jeddah",
		DepartureDate: "2026-01-17",
		ReturnDate:    "2026-01-20",
		CheckIn:       "2026-01-17",
		CheckOut:      "2026-01-20",
		Travelers:     2,
		Guests:        2,
		Rooms:         1,
		Class:         model.ClassEconomy,
	}
}

func TestMockFlights(t *testing.T) {
	m := NewMock(42)
	flights, err := m.SearchFlights(context.Background(), testSlots())
	if err != nil {
		t.Fatalf("SearchFlights: %v", err)
	}
	if len(flights) < 3 || len(flights) > MaxOptions {
		t.Fatalf("len=%d, want 3..%d", len(flights), MaxOptions)
	}
	seen := map[string]bool{}
	for _, f := range flights {
		if seen[f.Airline] {
			t.Fatalf("duplicate airline %s", f.Airline)
		}
		seen[f.Airline] = true
		if f.Origin != "Riyadh" || f.Destination != "Jeddah" || f.Currency != "SAR" {
			t.Fatalf("flight=%+v", f)
		}
		if f.Price.IntPart() < 400 || f.Price.IntPart() > 900 {
			t.Fatalf("economy price %s out of range", f.Price)
		}
	}
}

func TestMockHotels(t *testing.T) {
	m := NewMock(7)
	hotels, err := m.SearchHotels(context.Background(), testSlots())
	if err != nil {
		t.Fatalf("SearchHotels: %v", err)
	}
	if len(hotels) < 3 || len(hotels) > MaxOptions {
		t.Fatalf("len=%d, want 3..%d", len(hotels), MaxOptions)
	}
	for _, h := range hotels {
		if h.StarRating < 3 || h.StarRating > 5 {
			t.Fatalf("stars=%d", h.StarRating)
		}
		p := h.PricePerNight.IntPart()
		if p < 500 || p > 3000 {
			t.Fatalf("price per night %d out of range", p)
		}
		if len(h.Amenities) < 3 || len(h.Amenities) > 5 {
			t.Fatalf("amenities=%v", h.Amenities)
		}
		if h.CheckIn != "2026-01-17" || h.CheckOut != "2026-01-20" || h.City != "Jeddah" {
			t.Fatalf("hotel=%+v", h)
		}
	}
}

func TestMockIsDeterministic(t *testing.T) {
	a, _ := NewMock(99).SearchHotels(context.Background(), testSlots())
	b, _ := NewMock(99).SearchHotels(context.Background(), testSlots())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different hotels")
	}
}

func TestMockHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMock(1).SearchFlights(ctx, testSlots()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}
