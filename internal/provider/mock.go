package provider

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

type airline struct {
	Name string
	Code string
	Base int64
}

var airlines = []airline{
	{Name: "Saudia", Code: "SV", Base: 800},
	{Name: "flynas", Code: "XY", Base: 600},
	{Name: "flyadeal", Code: "F3", Base: 500},
	{Name: "Nesma Airlines", Code: "NE", Base: 700},
	{Name: "SaudiGulf Airlines", Code: "6S", Base: 650},
}

var hotelNames = []string{
	"Al Faisaliah Hotel", "Ritz-Carlton", "Four Seasons", "JW Marriott",
	"Fairmont", "Hilton", "Pullman", "Sheraton",
}

var amenities = []string{
	"Free WiFi", "Breakfast included", "Airport shuttle", "Gym",
	"Swimming pool", "Spa", "Restaurant",
}

var areas = []string{"Al-Malaz", "Al-Salam", "Al-Olaya", "Al-Rawdah", "Al-Nazar"}

var domestic = map[string]bool{
	"Riyadh": true, "Jeddah": true, "Mecca": true, "Medina": true,
	"Dammam": true, "Tabuk": true, "Abha": true, "AlUla": true,
}

var classMultiplier = map[string]int64{
	model.ClassEconomy:  1,
	model.ClassBusiness: 3,
	model.ClassFirst:    5,
}

const priceJitter = 100

// Mock generates synthetic candidates with randomized prices and times.
type Mock struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMock creates a mock provider. The same seed yields the same options.
func NewMock(seed int64) *Mock {
	return &Mock{rnd: rand.New(rand.NewSource(seed))}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rnd.Intn(n)
}

func (m *Mock) perm(n int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rnd.Perm(n)
}

// between returns a value in [lo, hi].
func (m *Mock) between(lo, hi int) int {
	return lo + m.intn(hi-lo+1)
}

// SearchFlights returns three to five flights on the requested route.
func (m *Mock) SearchFlights(ctx context.Context, slots model.SlotSet) ([]model.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count := m.between(3, MaxOptions)
	order := m.perm(len(airlines))
	multiplier, ok := classMultiplier[slots.Class]
	if !ok {
		multiplier = 1
	}

	flights := make([]model.Flight, 0, count)
	for _, idx := range order[:count] {
		a := airlines[idx]
		dep := time.Date(2000, 1, 1, m.between(5, 22), 15*m.intn(4), 0, 0, time.UTC)
		dur := m.flightDuration(slots.Origin, slots.Destination)
		arr := dep.Add(dur)

		price := a.Base*multiplier + int64(m.between(-priceJitter, priceJitter))
		flights = append(flights, model.Flight{
			Airline:       a.Name,
			FlightNumber:  fmt.Sprintf("%s%d", a.Code, m.between(100, 999)),
			Origin:        slots.Origin,
			Destination:   slots.Destination,
			DepartureDate: slots.DepartureDate,
			DepartureTime: dep.Format("15:04"),
			ArrivalTime:   arr.Format("15:04"),
			Duration:      formatDuration(dur),
			Class:         slots.Class,
			Price:         decimal.NewFromInt(price),
			Currency:      model.DefaultCurrency,
		})
	}
	return flights, nil
}

func (m *Mock) flightDuration(origin, destination string) time.Duration {
	if domestic[origin] && domestic[destination] {
		return time.Duration(m.between(60, 150)) * time.Minute
	}
	return time.Duration(m.between(180, 480)) * time.Minute
}

// SearchHotels returns three to five hotels in the requested city.
func (m *Mock) SearchHotels(ctx context.Context, slots model.SlotSet) ([]model.Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	count := m.between(3, MaxOptions)
	order := m.perm(len(hotelNames))

	hotels := make([]model.Hotel, 0, count)
	for _, idx := range order[:count] {
		picks := m.perm(len(amenities))[:m.between(3, 5)]
		list := make([]string, 0, len(picks))
		for _, p := range picks {
			list = append(list, amenities[p])
		}

		hotels = append(hotels, model.Hotel{
			Name:          hotelNames[idx],
			City:          slots.City,
			Area:          areas[m.intn(len(areas))],
			StarRating:    m.between(3, 5),
			PricePerNight: decimal.NewFromInt(int64(m.between(50, 300)) * 10),
			Currency:      model.DefaultCurrency,
			Amenities:     list,
			CheckIn:       slots.CheckIn,
			CheckOut:      slots.CheckOut,
		})
	}
	return hotels, nil
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %02dm", h, mins)
}
