package intent

import (
	"testing"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

func newTestClassifier() *Classifier {
	return NewClassifier(nil, logger.NewNop())
}

func TestClassifyTiers(t *testing.T) {
	c := newTestClassifier()
	cases := []struct {
		msg    string
		lang   model.Language
		intent model.Intent
		tier   Tier
	}{
		{"book flight to Jeddah", model.LanguageEnglish, model.IntentFlightBooking, TierStrong},
		{"Any luxury hotel near the corniche?", model.LanguageEnglish, model.IntentHotelBooking, TierStrong},
		{"what are the tourist attractions there", model.LanguageEnglish, model.IntentTripPlanning, TierStrong},
		{"I'll take the Saudia flight, now I need a hotel", model.LanguageEnglish, model.IntentHotelBooking, TierStructural},
		{"I also need a room", model.LanguageEnglish, model.IntentHotelBooking, TierTopicChange},
		{"can you show a cheaper airline", model.LanguageEnglish, model.IntentFlightBooking, TierTopicChange},
		{"a complete trip to Dubai please", model.LanguageEnglish, model.IntentTripPlanning, TierCompound},
		{"flight, hotel and a vacation in Abha", model.LanguageEnglish, model.IntentTripPlanning, TierCompound},
		{"the resort looks fine", model.LanguageEnglish, model.IntentHotelBooking, TierKeyword},
		{"a 5 star place please", model.LanguageEnglish, model.IntentHotelBooking, TierKeyword},
		{"the morning plane", model.LanguageEnglish, model.IntentFlightBooking, TierKeyword},
		{"hello there", model.LanguageEnglish, model.IntentGeneralConversation, TierDefault},
		{"أريد حجز فندق في الرياض", model.LanguageArabic, model.IntentHotelBooking, TierStrong},
		{"تذكرة طيران إلى جدة", model.LanguageArabic, model.IntentFlightBooking, TierStrong},
		{"مرحبا كيف حالك", model.LanguageArabic, model.IntentGeneralConversation, TierDefault},
	}
	for _, tc := range cases {
		d := c.Classify(tc.msg, tc.lang)
		if d.Intent != tc.intent || d.Tier != tc.tier {
			t.Fatalf("Classify(%q) = %s/%s (rule %s), want %s/%s", tc.msg, d.Intent, d.Tier, d.Rule, tc.intent, tc.tier)
		}
	}
}

func TestStrongPhraseBeatsKeywordTiers(t *testing.T) {
	c := newTestClassifier()
	// Topic change plus a hotel keyword would pick hotel_booking if the
	// strong flight phrase did not short-circuit.
	d := c.Classify("book flight and now I also need a hotel room night", model.LanguageEnglish)
	if d.Intent != model.IntentFlightBooking {
		t.Fatalf("intent=%s, want flight_booking", d.Intent)
	}
	if d.Tier != TierStrong {
		t.Fatalf("tier=%s, want strong", d.Tier)
	}
}

func TestTopicChangeNeedsWordStart(t *testing.T) {
	c := newTestClassifier()
	d := c.Classify("I know the hotel is nice", model.LanguageEnglish)
	if d.Tier != TierKeyword {
		t.Fatalf("tier=%s, want keyword", d.Tier)
	}

	d = c.Classify("let's start", model.LanguageEnglish)
	if d.Intent != model.IntentGeneralConversation {
		t.Fatalf("intent=%s, want general_conversation", d.Intent)
	}
}

func TestClassifyRecoversFromPanics(t *testing.T) {
	rules := []Rule{{
		Name:   "broken",
		Tier:   TierStrong,
		Intent: model.IntentFlightBooking,
		Match:  func(*Signals) bool { panic("boom") },
	}}
	c := NewClassifier(rules, logger.NewNop())

	d := c.Classify("book flight", model.LanguageEnglish)
	if d.Intent != model.IntentGeneralConversation {
		t.Fatalf("intent=%s, want general_conversation", d.Intent)
	}
	if d.Tier != TierRecovered || d.Rule != "broken" {
		t.Fatalf("decision=%+v, want recovered from rule broken", d)
	}
}

func TestDefaultRulesEndWithCatchAll(t *testing.T) {
	rules := DefaultRules()
	last := rules[len(rules)-1]
	if last.Tier != TierDefault || !last.Match(&Signals{}) {
		t.Fatalf("last rule=%s, want always-matching default", last.Name)
	}
	order := map[Tier]int{TierStrong: 0, TierStructural: 1, TierTopicChange: 2, TierCompound: 3, TierKeyword: 4, TierDefault: 5}
	prev := -1
	for _, r := range rules {
		if order[r.Tier] < prev {
			t.Fatalf("rule %s (tier %s) is out of tier order", r.Name, r.Tier)
		}
		prev = order[r.Tier]
	}
}
