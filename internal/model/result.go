package model

// Result is the structured outcome of dispatching one turn. Exactly one
// concrete type exists per intent.
type Result interface {
	Intent() Intent
	OK() bool
}

// FlightResult carries flight candidates.
type FlightResult struct {
	Slots   SlotSet  `json:"slots"`
	Flights []Flight `json:"flights"`
}

func NewFlightResult(slots SlotSet, flights []Flight) *FlightResult {
	out := make([]Flight, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.Normalize())
	}
	return &FlightResult{Slots: slots, Flights: out}
}

func (*FlightResult) Intent() Intent { return IntentFlightBooking }
func (*FlightResult) OK() bool       { return true }

// HotelResult carries hotel candidates.
type HotelResult struct {
	Slots  SlotSet `json:"slots"`
	Hotels []Hotel `json:"hotels"`
}

func NewHotelResult(slots SlotSet, hotels []Hotel) *HotelResult {
	out := make([]Hotel, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, h.Normalize())
	}
	return &HotelResult{Slots: slots, Hotels: out}
}

func (*HotelResult) Intent() Intent { return IntentHotelBooking }
func (*HotelResult) OK() bool       { return true }

// TripResult carries both candidate lists and the synthesized packages.
type TripResult struct {
	Slots    SlotSet   `json:"slots"`
	Flights  []Flight  `json:"flights"`
	Hotels   []Hotel   `json:"hotels"`
	Packages []Package `json:"packages"`
	Strategy string    `json:"strategy"`
}

func NewTripResult(slots SlotSet, flights []Flight, hotels []Hotel, packages []Package, strategy string) *TripResult {
	fr := NewFlightResult(slots, flights)
	hr := NewHotelResult(slots, hotels)
	if packages == nil {
		packages = []Package{}
	}
	return &TripResult{
		Slots:    slots,
		Flights:  fr.Flights,
		Hotels:   hr.Hotels,
		Packages: packages,
		Strategy: strategy,
	}
}

func (*TripResult) Intent() Intent { return IntentTripPlanning }
func (*TripResult) OK() bool       { return true }

// GeneralResult is returned for small talk.
type GeneralResult struct {
	Message string `json:"message"`
}

func (*GeneralResult) Intent() Intent { return IntentGeneral }
func (*GeneralResult) OK() bool       { return true }

// ErrorResult is the terminal outcome of a failed turn. The session stays
// usable for the next turn.
type ErrorResult struct {
	Attempted Intent `json:"attempted_intent"`
	Reason    string `json:"reason"`
}

func (*ErrorResult) Intent() Intent { return IntentError }
func (*ErrorResult) OK() bool       { return false }
