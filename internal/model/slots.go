package model

// SlotSet holds the parameters extracted from a message. Every field is
// populated, with defaults substituted for anything the user did not say.
type SlotSet struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	City          string   `json:"city"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date"`
	CheckIn       string   `json:"check_in"`
	CheckOut      string   `json:"check_out"`
	Travelers     int      `json:"travelers"`
	Guests        int      `json:"guests"`
	Rooms         int      `json:"rooms"`
	Class         string   `json:"class"`
	Interests     []string `json:"interests"`
	Duration      int      `json:"duration"`
}

// Cabin classes.
const (
	ClassEconomy  = "economy"
	ClassBusiness = "business"
	ClassFirst    = "first"
)
