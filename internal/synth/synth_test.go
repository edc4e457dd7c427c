package synth

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

func flights(n int) []model.Flight {
	out := make([]model.Flight, n)
	for i := range out {
		out[i] = model.Flight{Airline: string(rune('A' + i)), Price: decimal.NewFromInt(int64(500 + 100*i))}
	}
	return out
}

func hotels(n int) []model.Hotel {
	out := make([]model.Hotel, n)
	for i := range out {
		out[i] = model.Hotel{Name: string(rune('H' + i)), StarRating: 4, PricePerNight: decimal.NewFromInt(int64(1000 + 250*i)), Currency: "SAR"}
	}
	return out
}

func checkTotals(t *testing.T, pkgs []model.Package) {
	t.Helper()
	for _, p := range pkgs {
		if p.Nights < 1 {
			t.Fatalf("%s: nights=%d", p.Name, p.Nights)
		}
		want := p.Flight.Price.Add(p.Hotel.PricePerNight.Mul(decimal.NewFromInt(int64(p.Nights))))
		if !p.TotalPrice.Equal(want) {
			t.Fatalf("%s: total=%s, want %s", p.Name, p.TotalPrice, want)
		}
		if p.Currency != p.Hotel.Currency {
			t.Fatalf("%s: currency=%s, want hotel currency %s", p.Name, p.Currency, p.Hotel.Currency)
		}
	}
}

func TestCrossProductThreeByTwo(t *testing.T) {
	pkgs := New(StrategyCrossProduct, 0).Synthesize(flights(3), hotels(2))
	if len(pkgs) != 6 {
		t.Fatalf("len=%d, want 6", len(pkgs))
	}
	for _, p := range pkgs {
		if p.Nights != model.DefaultNights {
			t.Fatalf("nights=%d, want %d", p.Nights, model.DefaultNights)
		}
	}
	if pkgs[0].Name != "A + H" || pkgs[1].Name != "A + I" || pkgs[2].Name != "B + H" {
		t.Fatalf("order=%s,%s,%s, want flight-major", pkgs[0].Name, pkgs[1].Name, pkgs[2].Name)
	}
	checkTotals(t, pkgs)
}

func TestCrossProductIsCapped(t *testing.T) {
	pkgs := New(StrategyCrossProduct, 0).Synthesize(flights(8), hotels(8))
	if len(pkgs) != MaxPackages {
		t.Fatalf("len=%d, want %d", len(pkgs), MaxPackages)
	}
	checkTotals(t, pkgs)

	pkgs = New(StrategyCrossProduct, 2).Synthesize(flights(5), hotels(5))
	if len(pkgs) != MinPackages {
		t.Fatalf("limit below floor: len=%d, want %d", len(pkgs), MinPackages)
	}
}

func TestBestMatch(t *testing.T) {
	pkgs := New(StrategyBestMatch, 0).Synthesize(flights(3), hotels(2))
	if len(pkgs) != 5 {
		t.Fatalf("len=%d, want 5", len(pkgs))
	}
	if pkgs[0].Name != "A + H" || pkgs[1].Name != "B + I" || pkgs[2].Name != "C + H" {
		t.Fatalf("zip order wrong: %s %s %s", pkgs[0].Name, pkgs[1].Name, pkgs[2].Name)
	}
	seen := map[string]bool{}
	for _, p := range pkgs {
		if seen[p.Name] {
			t.Fatalf("duplicate pair %s", p.Name)
		}
		seen[p.Name] = true
	}

	pkgs = New(StrategyBestMatch, 0).Synthesize(flights(1), hotels(2))
	if len(pkgs) != 2 {
		t.Fatalf("len=%d, want all 2 combinations", len(pkgs))
	}
	checkTotals(t, pkgs)
}

func TestEmptyInput(t *testing.T) {
	for _, s := range []Strategy{StrategyCrossProduct, StrategyBestMatch} {
		syn := New(s, 0)
		if got := syn.Synthesize(nil, hotels(3)); got == nil || len(got) != 0 {
			t.Fatalf("%s: no flights gave %v", s, got)
		}
		if got := syn.Synthesize(flights(3), []model.Hotel{}); got == nil || len(got) != 0 {
			t.Fatalf("%s: no hotels gave %v", s, got)
		}
	}
}

func TestDefaultFillAndNights(t *testing.T) {
	f := []model.Flight{{}}
	h := []model.Hotel{{PricePerNight: decimal.NewFromInt(400), CheckIn: "2026-02-01", CheckOut: "2026-02-06"}}
	pkgs := New(StrategyCrossProduct, 0).Synthesize(f, h)
	if len(pkgs) != 1 {
		t.Fatalf("len=%d, want 1", len(pkgs))
	}
	p := pkgs[0]
	if p.Flight.Airline != "Unknown Airline" || p.Hotel.Name != "Unknown Hotel" || p.Hotel.StarRating != 3 {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if p.Nights != 5 || !p.TotalPrice.Equal(decimal.NewFromInt(2000)) || p.Currency != "SAR" {
		t.Fatalf("nights=%d total=%s currency=%s", p.Nights, p.TotalPrice, p.Currency)
	}
	if p.Description != "Flight with Unknown Airline and 5 nights at Unknown Hotel" {
		t.Fatalf("description=%q", p.Description)
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("best_match"); err != nil || s != StrategyBestMatch {
		t.Fatalf("best_match: %s %v", s, err)
	}
	if _, err := ParseStrategy("random"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
