// Package model defines data structures for the trip concierge.
package model

import "strings"

// Intent is the classified purpose of a user turn.
type Intent string

const (
	IntentFlightBooking Intent = "flight_booking"
	IntentHotelBooking  Intent = "hotel_booking"
	IntentTripPlanning  Intent = "trip_planning"
	IntentGeneral       Intent = "general"
	IntentError         Intent = "error"

	// IntentGeneralConversation is the raw classifier label for small talk.
	// The dispatcher reports it as IntentGeneral.
	IntentGeneralConversation Intent = "general_conversation"
)

// IsBooking reports whether the intent targets a specific booking domain.
func (i Intent) IsBooking() bool {
	switch i {
	case IntentFlightBooking, IntentHotelBooking, IntentTripPlanning:
		return true
	}
	return false
}

// Canonical folds the raw classifier label into the public enumeration.
func (i Intent) Canonical() Intent {
	if i == IntentGeneralConversation {
		return IntentGeneral
	}
	return i
}

// Language is the two-valued conversation language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// SupportedLanguages lists the languages accepted by the API.
var SupportedLanguages = []Language{LanguageEnglish, LanguageArabic}

// ParseLanguage accepts ISO codes and English names.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return LanguageEnglish, nil
	case "ar", "arabic":
		return LanguageArabic, nil
	}
	return "", ErrUnsupportedLanguage
}

// Direction returns the text direction for the language.
func (l Language) Direction() string {
	if l == LanguageArabic {
		return "rtl"
	}
	return "ltr"
}
