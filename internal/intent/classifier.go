// Package intent classifies user messages into travel intents and reconciles
// them with the conversation's prior intent.
package intent

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

// Tier names the precedence level of a rule. Rules of an earlier tier
// always win over later ones.
type Tier string

const (
	TierStrong      Tier = "strong"
	TierStructural  Tier = "structural"
	TierTopicChange Tier = "topic_change"
	TierCompound    Tier = "compound"
	TierKeyword     Tier = "keyword"
	TierDefault     Tier = "default"
	TierRecovered   Tier = "recovered"
)

// Signals are the per-message facts rules match against.
type Signals struct {
	Text     string // lower-cased message
	Language model.Language
	Vocab    *Vocabulary

	Flight      bool
	Hotel       bool
	Trip        bool
	TopicChange bool
}

func newSignals(message string, lang model.Language) *Signals {
	v := VocabularyFor(lang)
	text := strings.ToLower(message)
	return &Signals{
		Text:        text,
		Language:    lang,
		Vocab:       v,
		Flight:      containsTerm(text, v.FlightKeywords, v.WordStart),
		Hotel:       containsTerm(text, v.HotelKeywords, v.WordStart),
		Trip:        containsTerm(text, v.TripKeywords, v.WordStart),
		TopicChange: containsTerm(text, v.TopicChange, v.WordStart),
	}
}

// Rule is one entry of the ordered classification table.
type Rule struct {
	Name   string
	Tier   Tier
	Intent model.Intent
	Match  func(s *Signals) bool
}

// Decision is the outcome of classification.
type Decision struct {
	Intent model.Intent
	Tier   Tier
	Rule   string
}

var (
	flightPivotEN = regexp.MustCompile(`(take|book|choose)\s+the\s+([\w\s]+)\s+(flight|airline)`)
	flightPivotAR = regexp.MustCompile(`(سآخذ|سأختار|أختار|احجز)\s+(رحلة|طيران)`)
)

// DefaultRules returns the classification table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "strong_flight", Tier: TierStrong, Intent: model.IntentFlightBooking,
			Match: func(s *Signals) bool { return containsPhrase(s.Text, s.Vocab.FlightStrong) }},
		{Name: "strong_hotel", Tier: TierStrong, Intent: model.IntentHotelBooking,
			Match: func(s *Signals) bool { return containsPhrase(s.Text, s.Vocab.HotelStrong) }},
		{Name: "strong_trip", Tier: TierStrong, Intent: model.IntentTripPlanning,
			Match: func(s *Signals) bool { return containsPhrase(s.Text, s.Vocab.TripStrong) }},

		// Confirming a flight while asking for lodging.
		{Name: "flight_then_hotel", Tier: TierStructural, Intent: model.IntentHotelBooking,
			Match: func(s *Signals) bool {
				if !s.Hotel {
					return false
				}
				return flightPivotEN.MatchString(s.Text) || flightPivotAR.MatchString(s.Text)
			}},

		{Name: "topic_change_hotel", Tier: TierTopicChange, Intent: model.IntentHotelBooking,
			Match: func(s *Signals) bool { return s.TopicChange && s.Hotel }},
		{Name: "topic_change_flight", Tier: TierTopicChange, Intent: model.IntentFlightBooking,
			Match: func(s *Signals) bool { return s.TopicChange && s.Flight }},
		{Name: "topic_change_trip", Tier: TierTopicChange, Intent: model.IntentTripPlanning,
			Match: func(s *Signals) bool { return s.TopicChange && s.Trip }},

		{Name: "complete_trip", Tier: TierCompound, Intent: model.IntentTripPlanning,
			Match: func(s *Signals) bool { return containsPhrase(s.Text, s.Vocab.CompleteTrip) }},
		{Name: "all_domains", Tier: TierCompound, Intent: model.IntentTripPlanning,
			Match: func(s *Signals) bool { return s.Flight && s.Hotel && s.Trip }},

		{Name: "keyword_hotel", Tier: TierKeyword, Intent: model.IntentHotelBooking,
			Match: func(s *Signals) bool {
				return s.Hotel || containsWord(s.Text, s.Vocab.HotelHints, s.Vocab.WordStart)
			}},
		{Name: "keyword_flight", Tier: TierKeyword, Intent: model.IntentFlightBooking,
			Match: func(s *Signals) bool { return s.Flight }},
		{Name: "keyword_trip", Tier: TierKeyword, Intent: model.IntentTripPlanning,
			Match: func(s *Signals) bool { return s.Trip }},

		{Name: "default", Tier: TierDefault, Intent: model.IntentGeneralConversation,
			Match: func(*Signals) bool { return true }},
	}
}

// Classifier maps a message to a raw intent label.
type Classifier struct {
	rules  []Rule
	logger *logger.Logger
}

// NewClassifier creates a classifier over the given rules. A nil rule set
// uses DefaultRules.
func NewClassifier(rules []Rule, log *logger.Logger) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = logger.Global()
	}
	return &Classifier{rules: rules, logger: log}
}

// Rules returns the evaluation table.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify returns the first matching rule's intent. It never panics: a
// failing rule degrades to general_conversation.
func (c *Classifier) Classify(message string, lang model.Language) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("intent classification failed",
				zap.String("rule", d.Rule),
				zap.Error(fmt.Errorf("panic: %v", r)),
			)
			d = Decision{Intent: model.IntentGeneralConversation, Tier: TierRecovered, Rule: d.Rule}
		}
	}()

	s := newSignals(message, lang)
	for _, rule := range c.rules {
		d.Rule = rule.Name
		if rule.Match(s) {
			c.logger.Debug("intent classified",
				zap.String("intent", string(rule.Intent)),
				zap.String("tier", string(rule.Tier)),
				zap.String("rule", rule.Name),
			)
			return Decision{Intent: rule.Intent, Tier: rule.Tier, Rule: rule.Name}
		}
	}
	return Decision{Intent: model.IntentGeneralConversation, Tier: TierDefault, Rule: "default"}
}
