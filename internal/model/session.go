package model

import (
	"time"
)

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a session's history.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Intent    Intent    `json:"intent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Preference keys kept in Session.Preferences.
const (
	PrefFlightClass  = "flight_class"
	PrefDestinations = "destinations"
	PrefLanguage     = "language"
)

// Session is the conversational context for one session id.
type Session struct {
	ID            string              `json:"id"`
	Language      Language            `json:"language"`
	History       []Turn              `json:"history"`
	LastIntent    Intent              `json:"last_intent,omitempty"`
	FlightOptions []Flight            `json:"flight_options"`
	HotelOptions  []Hotel             `json:"hotel_options"`
	Preferences   map[string][]string `json:"preferences"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	ResetAt       *time.Time          `json:"reset_at,omitempty"`
}

// NewSession returns an empty session.
func NewSession(id string, lang Language, now time.Time) *Session {
	return &Session{
		ID:            id,
		Language:      lang,
		History:       []Turn{},
		FlightOptions: []Flight{},
		HotelOptions:  []Hotel{},
		Preferences:   map[string][]string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a deep copy so callers can't mutate stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]Turn{}, s.History...)
	c.FlightOptions = append([]Flight{}, s.FlightOptions...)
	c.HotelOptions = make([]Hotel, len(s.HotelOptions))
	for i, h := range s.HotelOptions {
		h.Amenities = append([]string(nil), h.Amenities...)
		c.HotelOptions[i] = h
	}
	c.Preferences = make(map[string][]string, len(s.Preferences))
	for k, v := range s.Preferences {
		c.Preferences[k] = append([]string(nil), v...)
	}
	if s.ResetAt != nil {
		t := *s.ResetAt
		c.ResetAt = &t
	}
	return &c
}

// HasPriorIntent reports whether a resolved intent is remembered.
func (s *Session) HasPriorIntent() bool {
	return s.LastIntent != "" && s.LastIntent != IntentError
}

// TurnCount returns the number of user turns in the history. Every handled
// turn appends a user entry and then an assistant entry, so History holds
// twice as many entries as TurnCount reports.
func (s *Session) TurnCount() int {
	n := 0
	for _, t := range s.History {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// RecentHistory returns at most n trailing turns.
func (s *Session) RecentHistory(n int) []Turn {
	if n <= 0 || len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// SessionView is the API representation of a session.
type SessionView struct {
	ID          string              `json:"id"`
	Language    Language            `json:"language"`
	Direction   string              `json:"direction"`
	LastIntent  Intent              `json:"last_intent,omitempty"`
	TurnCount   int                 `json:"turn_count"`
	History     []Turn              `json:"history"`
	FlightCount int                 `json:"flight_option_count"`
	HotelCount  int                 `json:"hotel_option_count"`
	Preferences map[string][]string `json:"preferences"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// View projects the session for API responses.
func (s *Session) View() SessionView {
	return SessionView{
		ID:          s.ID,
		Language:    s.Language,
		Direction:   s.Language.Direction(),
		LastIntent:  s.LastIntent,
		TurnCount:   s.TurnCount(),
		History:     s.History,
		FlightCount: len(s.FlightOptions),
		HotelCount:  len(s.HotelOptions),
		Preferences: s.Preferences,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ValidateSessionID checks that id is 1-128 characters of [A-Za-z0-9_-].
// Session ids become journal subject tokens and store keys.
func ValidateSessionID(id string) error {
	if len(id) == 0 || len(id) > 128 {
		return ErrInvalidSessionID
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidSessionID
		}
	}
	return nil
}
