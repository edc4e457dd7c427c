package intent

import (
	"strings"

	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

// ShortMessageTokens is the length below which a message with no clear
// intent is taken as a follow-up to the active flow.
const ShortMessageTokens = 10

// Resolution rules.
const (
	RuleExplicitMention = "explicit_mention"
	RuleShortFollowUp   = "short_follow_up"
	RuleAuthoritative   = "authoritative"
	RulePassThrough     = "pass_through"
)

// domainPriority orders domains when several are mentioned at once.
var domainPriority = []model.Intent{
	model.IntentHotelBooking,
	model.IntentFlightBooking,
	model.IntentTripPlanning,
}

// Resolution is the intent used for dispatch.
type Resolution struct {
	Intent model.Intent
	Rule   string
	Prior  model.Intent
}

// Overridden reports whether context changed the classifier's label.
func (r Resolution) Overridden(raw model.Intent) bool {
	return r.Intent != raw
}

type mentionTerms struct {
	flight, hotel, trip []string
}

// Resolver reconciles a raw intent with the session's prior intent.
type Resolver struct {
	mentions map[model.Language]mentionTerms
	logger   *logger.Logger
}

// NewResolver creates a resolver. Flights and hotels are mentioned only by
// name; trips by any trip keyword not shared with another domain, so
// "booking" names nothing.
func NewResolver(log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Global()
	}
	r := &Resolver{mentions: make(map[model.Language]mentionTerms), logger: log}
	for _, lang := range model.SupportedLanguages {
		v := VocabularyFor(lang)
		r.mentions[lang] = mentionTerms{
			flight: v.FlightNames,
			hotel:  v.HotelNames,
			trip:   distinct(v.TripKeywords, v.FlightKeywords, v.HotelKeywords),
		}
	}
	return r
}

// Mentions returns the domains the message names explicitly, in priority
// order.
func (r *Resolver) Mentions(message string, lang model.Language) []model.Intent {
	v := VocabularyFor(lang)
	terms, ok := r.mentions[lang]
	if !ok {
		terms = r.mentions[model.LanguageEnglish]
	}
	text := strings.ToLower(message)
	hit := map[model.Intent]bool{
		model.IntentHotelBooking:  containsTerm(text, terms.hotel, v.WordStart),
		model.IntentFlightBooking: containsTerm(text, terms.flight, v.WordStart),
		model.IntentTripPlanning:  containsTerm(text, terms.trip, v.WordStart),
	}
	var out []model.Intent
	for _, d := range domainPriority {
		if hit[d] {
			out = append(out, d)
		}
	}
	return out
}

// Resolve returns the intent used for dispatch. history is consulted only
// when lastIntent is empty or an error.
func (r *Resolver) Resolve(raw model.Intent, message string, lang model.Language, lastIntent model.Intent, history []model.Turn) Resolution {
	prior := priorIntent(lastIntent, history)
	v := VocabularyFor(lang)
	topicChange := containsTerm(strings.ToLower(message), v.TopicChange, v.WordStart)

	res := r.resolve(raw, message, lang, prior, topicChange)
	if res.Intent != raw {
		r.logger.Debug("intent resolved from context",
			zap.String("raw_intent", string(raw)),
			zap.String("intent", string(res.Intent)),
			zap.String("rule", res.Rule),
			zap.String("prior_intent", string(prior)),
		)
	}
	return res
}

func (r *Resolver) resolve(raw model.Intent, message string, lang model.Language, prior model.Intent, topicChange bool) Resolution {
	if mentioned := r.Mentions(message, lang); len(mentioned) > 0 && (topicChange || prior == "") {
		for _, m := range mentioned {
			if m == raw {
				return Resolution{Intent: raw, Rule: RuleExplicitMention, Prior: prior}
			}
		}
		return Resolution{Intent: mentioned[0], Rule: RuleExplicitMention, Prior: prior}
	}

	if isSmallTalk(raw) && prior != "" && tokenCount(message) < ShortMessageTokens {
		return Resolution{Intent: prior, Rule: RuleShortFollowUp, Prior: prior}
	}

	if raw.IsBooking() {
		return Resolution{Intent: raw, Rule: RuleAuthoritative, Prior: prior}
	}
	return Resolution{Intent: raw, Rule: RulePassThrough, Prior: prior}
}

func isSmallTalk(i model.Intent) bool {
	return i == model.IntentGeneralConversation || i == model.IntentGeneral
}

// priorIntent returns the active booking flow. A booking last intent is the
// flow; a general one ends it. With no last intent, or after an error, the
// most recent booking intent on an assistant turn stands in.
func priorIntent(last model.Intent, history []model.Turn) model.Intent {
	switch {
	case last.IsBooking():
		return last
	case last != "" && last != model.IntentError:
		return ""
	}
	for i := len(history) - 1; i >= 0; i-- {
		t := history[i]
		if t.Role == model.RoleAssistant && t.Intent.IsBooking() {
			return t.Intent
		}
	}
	return ""
}
