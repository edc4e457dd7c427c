package intent

import (
	"github.com/capitalize-ai/trip-concierge/internal/model"
)

// Vocabulary holds the per-language phrase lists the rules match against.
type Vocabulary struct {
	// WordStart restricts keyword hits to the start of a word. Arabic
	// attaches articles and conjunctions to the word, so it matches plain
	// substrings instead.
	WordStart bool

	FlightKeywords []string
	HotelKeywords  []string
	TripKeywords   []string

	// HotelHints are whole words that tip the single-keyword fallback
	// towards lodging without counting as an explicit hotel mention.
	HotelHints []string

	TopicChange []string

	// FlightNames and HotelNames name a domain outright. Only these count
	// as an explicit mention; "airport" or "room" do not.
	FlightNames []string
	HotelNames  []string

	FlightStrong []string
	HotelStrong  []string
	TripStrong   []string

	CompleteTrip []string
}

var english = &Vocabulary{
	WordStart:      true,
	FlightKeywords: []string{"flight", "fly", "plane", "airport", "airline", "airways", "booking", "ticket"},
	HotelKeywords:  []string{"hotel", "stay", "room", "accommodation", "lodge", "resort", "booking", "night", "motel"},
	TripKeywords:   []string{"trip", "plan", "vacation", "holiday", "itinerary", "package", "complete", "tour", "visit", "activity", "attractions"},
	HotelHints:     []string{"star", "stars", "suite"},
	TopicChange:    []string{"now", "next", "also", "need", "want", "looking for", "help me with", "can you", "instead", "switch to"},
	FlightNames:    []string{"flight", "fly"},
	HotelNames:     []string{"hotel", "motel"},
	FlightStrong: []string{
		"book flight", "flight from", "fly from", "search flight",
		"airline ticket", "flight ticket", "flight to", "flight reservation",
	},
	HotelStrong: []string{
		"book hotel", "hotel reservation", "hotel room", "find hotel",
		"hotel in", "place to stay", "5-star hotel", "luxury hotel",
	},
	TripStrong: []string{
		"plan my trip", "trip itinerary", "tourist attractions", "places to visit",
		"things to do", "day itinerary", "travel plan",
	},
	CompleteTrip: []string{"complete trip", "plan a trip", "full trip"},
}

var arabic = &Vocabulary{
	FlightKeywords: []string{"طيران", "رحلة", "مطار", "طائرة", "تذكرة", "حجز"},
	HotelKeywords:  []string{"فندق", "إقامة", "غرفة", "سكن", "منتجع", "حجز"},
	TripKeywords:   []string{"رحلة", "خطة", "إجازة", "عطلة", "حزمة", "سفر", "كاملة", "زيارة"},
	HotelHints:     []string{"نجوم", "جناح"},
	TopicChange:    []string{"الآن", "أيضا", "أحتاج", "أريد", "ابحث عن", "ساعدني", "هل يمكنك", "بدلا من ذلك"},
	FlightNames:    []string{"طيران"},
	HotelNames:     []string{"فندق"},
	FlightStrong:   []string{"حجز رحلة", "رحلة من", "طيران من", "طيران إلى", "تذكرة طيران"},
	HotelStrong:    []string{"حجز فندق", "غرفة فندق", "فندق في", "مكان للإقامة", "فندق فاخر"},
	TripStrong:     []string{"خطة رحلة", "معالم سياحية", "أماكن للزيارة", "أشياء للقيام بها", "خطة سفر"},
	CompleteTrip:   []string{"رحلة كاملة", "رحلة متكاملة"},
}

// VocabularyFor returns the phrase lists for lang, defaulting to English.
func VocabularyFor(lang model.Language) *Vocabulary {
	if lang == model.LanguageArabic {
		return arabic
	}
	return english
}

// distinct returns the terms of set that appear in none of the others.
func distinct(set []string, others ...[]string) []string {
	seen := make(map[string]bool)
	for _, o := range others {
		for _, t := range o {
			seen[t] = true
		}
	}
	var out []string
	for _, t := range set {
		if !seen[t] {
			out = append(out, t)
		}
	}
	return out
}
