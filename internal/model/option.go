package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Option defaults applied before formatting or pairing.
const (
	DefaultCurrency     = "SAR"
	DefaultAirline      = "Unknown Airline"
	DefaultFlightNumber = "XXX"
	DefaultHotelName    = "Unknown Hotel"
	DefaultStarRating   = 3
	DefaultNights       = 3

	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
)

// Flight is a candidate flight offer.
type Flight struct {
	Airline       string          `json:"airline"`
	FlightNumber  string          `json:"flight_number"`
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departure_date,omitempty"`
	DepartureTime string          `json:"departure_time,omitempty"`
	ArrivalTime   string          `json:"arrival_time,omitempty"`
	Duration      string          `json:"duration,omitempty"`
	Class         string          `json:"class,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
}

// Normalize fills missing fields with defaults.
func (f Flight) Normalize() Flight {
	if f.Airline == "" {
		f.Airline = DefaultAirline
	}
	if f.FlightNumber == "" {
		f.FlightNumber = DefaultFlightNumber
	}
	if f.Currency == "" {
		f.Currency = DefaultCurrency
	}
	if f.Price.IsNegative() {
		f.Price = decimal.Zero
	}
	return f
}

// Hotel is a candidate hotel offer.
type Hotel struct {
	Name          string          `json:"name"`
	City          string          `json:"city,omitempty"`
	Area          string          `json:"area,omitempty"`
	StarRating    int             `json:"star_rating"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Currency      string          `json:"currency"`
	Amenities     []string        `json:"amenities"`
	CheckIn       string          `json:"check_in,omitempty"`
	CheckOut      string          `json:"check_out,omitempty"`
}

// Normalize fills missing fields with defaults.
func (h Hotel) Normalize() Hotel {
	if h.Name == "" {
		h.Name = DefaultHotelName
	}
	if h.StarRating <= 0 {
		h.StarRating = DefaultStarRating
	}
	if h.Currency == "" {
		h.Currency = DefaultCurrency
	}
	if h.PricePerNight.IsNegative() {
		h.PricePerNight = decimal.Zero
	}
	if h.Amenities == nil {
		h.Amenities = []string{}
	}
	return h
}

// Nights derives the stay length from check-in/check-out. Unparseable or
// missing dates yield DefaultNights; the result is never below 1.
func (h Hotel) Nights() int {
	if h.CheckIn == "" || h.CheckOut == "" {
		return DefaultNights
	}
	in, err := time.Parse(DateLayout, h.CheckIn)
	if err != nil {
		return DefaultNights
	}
	out, err := time.Parse(DateLayout, h.CheckOut)
	if err != nil {
		return DefaultNights
	}
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// Package pairs one flight with one hotel.
type Package struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Flight      Flight          `json:"flight"`
	Hotel       Hotel           `json:"hotel"`
	Nights      int             `json:"nights"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Currency    string          `json:"currency"`
}

// NewPackage normalizes both options and derives nights and total price.
func NewPackage(f Flight, h Hotel) Package {
	f = f.Normalize()
	h = h.Normalize()
	nights := h.Nights()
	return Package{
		Name:        fmt.Sprintf("%s + %s", f.Airline, h.Name),
		Description: fmt.Sprintf("Flight with %s and %d nights at %s", f.Airline, nights, h.Name),
		Flight:      f,
		Hotel:       h,
		Nights:      nights,
		TotalPrice:  f.Price.Add(h.PricePerNight.Mul(decimal.NewFromInt(int64(nights)))),
		Currency:    h.Currency,
	}
}
