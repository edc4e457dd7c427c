// Package slots extracts booking parameters from a free-text message.
package slots

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

// Defaults used when the message does not say otherwise.
const (
	DefaultOrigin      = "Riyadh"
	DefaultDestination = "Jeddah"
	DefaultLeadDays    = 7
	DefaultStayDays    = 3
	DefaultTravelers   = 2
	DefaultRooms       = 1
	maxParty           = 9
)

var (
	isoDateRe      = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	airportCodeRe  = regexp.MustCompile(`\b([A-Z]{3})\b`)
	travelersRe    = regexp.MustCompile(`(\d+)\s*(?:travell?ers?|passengers?|people|persons?|guests?|adults?|أشخاص|اشخاص|مسافرين|ضيوف|أفراد)`)
	roomsRe        = regexp.MustCompile(`(\d+)\s*(?:rooms?|غرف|غرفة)`)
	stayRe         = regexp.MustCompile(`(\d+)\s*(?:days?|nights?|أيام|ايام|ليال|ليالي|يوم)`)
	afterMonthsRe  = regexp.MustCompile(`(?:after|in)\s+(\d+)\s+months?|بعد\s+(\d+)\s+(?:أشهر|شهور|اشهر)`)
	inDaysRe       = regexp.MustCompile(`in\s+(\d+)\s+days|بعد\s+(\d+)\s+(?:أيام|ايام)`)
	fromUnknownRe  = regexp.MustCompile(`\bfrom\s+([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)?)`)
	toUnknownRe    = regexp.MustCompile(`\b(?:to|in)\s+([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)?)`)
	unknownStopSet = map[string]bool{"I": true, "The": true, "A": true, "My": true}
)

// Extractor turns a message into a fully populated SlotSet.
type Extractor struct {
	now func() time.Time
}

// NewExtractor creates an extractor. now defaults to time.Now.
func NewExtractor(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

// Extract returns the slots found in message with defaults filled in.
func (e *Extractor) Extract(message string, lang model.Language) model.SlotSet {
	lower := strings.ToLower(message)

	origin, destination := e.places(message, lower)
	dep, ret := e.dates(lower)

	travelers := firstInt(travelersRe, lower, DefaultTravelers)
	rooms := firstInt(roomsRe, lower, DefaultRooms)

	s := model.SlotSet{
		Origin:        origin,
		Destination:   destination,
		City:          destination,
		DepartureDate: dep.Format(model.DateLayout),
		ReturnDate:    ret.Format(model.DateLayout),
		CheckIn:       dep.Format(model.DateLayout),
		CheckOut:      ret.Format(model.DateLayout),
		Travelers:     travelers,
		Guests:        travelers,
		Rooms:         rooms,
		Class:         cabinClass(lower),
		Interests:     matchInterests(lower),
		Duration:      int(ret.Sub(dep).Hours() / 24),
	}
	if s.Duration < 1 {
		s.Duration = 1
	}
	return s
}

type mention struct {
	city string
	at   int
	text string
}

// places resolves origin and destination from known city names, airport
// codes, and finally capitalized words after "from"/"to".
func (e *Extractor) places(original, lower string) (origin, destination string) {
	var mentions []mention
	for _, c := range knownCities {
		for _, alias := range c.Aliases {
			if at := indexTerm(lower, alias); at >= 0 {
				mentions = append(mentions, mention{city: c.Name, at: at, text: lower})
				break
			}
		}
	}
	for _, m := range airportCodeRe.FindAllStringSubmatchIndex(original, -1) {
		if name, ok := CityForCode(original[m[2]:m[3]]); ok {
			mentions = append(mentions, mention{city: name, at: m[2], text: original})
		}
	}
	sortMentions(mentions)

	for _, m := range mentions {
		prev := previousWord(m.text, m.at)
		switch {
		case origin == "" && inList(prev, fromWords):
			origin = m.city
		case destination == "" && inList(prev, toWords):
			destination = m.city
		}
	}
	for _, m := range mentions {
		if destination != "" {
			break
		}
		if m.city != origin {
			destination = m.city
		}
	}
	// "DMM to BKK": a bare city before the destination is the origin.
	if origin == "" && destination != "" {
		for _, m := range mentions {
			if m.city == destination {
				break
			}
			origin = m.city
			break
		}
	}

	if origin == "" {
		if m := fromUnknownRe.FindStringSubmatch(original); m != nil && !unknownStopSet[m[1]] {
			origin = m[1]
		}
	}
	if destination == "" {
		if m := toUnknownRe.FindStringSubmatch(original); m != nil && !unknownStopSet[m[1]] {
			destination = m[1]
		}
	}

	if origin == "" {
		origin = DefaultOrigin
		if destination == DefaultOrigin {
			origin = DefaultDestination
		}
	}
	if destination == "" {
		destination = DefaultDestination
		if origin == DefaultDestination {
			destination = DefaultOrigin
		}
	}
	return origin, destination
}

// dates returns departure and return dates from explicit ISO dates or
// relative phrases.
func (e *Extractor) dates(lower string) (time.Time, time.Time) {
	today := truncateDay(e.now())
	lead, stay := DefaultLeadDays, DefaultStayDays

	switch {
	case strings.Contains(lower, "tomorrow") || strings.Contains(lower, "غدا") || strings.Contains(lower, "غداً"):
		lead = 1
	case strings.Contains(lower, "next week") || strings.Contains(lower, "الأسبوع القادم") || strings.Contains(lower, "الاسبوع القادم"):
		lead, stay = 7, 7
	case strings.Contains(lower, "next month") || strings.Contains(lower, "الشهر القادم"):
		lead, stay = 30, 7
	}
	if m := afterMonthsRe.FindStringSubmatch(lower); m != nil {
		if n, ok := atoiAny(m[1], m[2]); ok {
			lead, stay = 30*n, 7
		}
	} else if m := inDaysRe.FindStringSubmatch(lower); m != nil {
		if n, ok := atoiAny(m[1], m[2]); ok {
			lead = n
		}
	}
	// Lead-time phrases also end in "days"; drop them before reading the stay.
	rest := afterMonthsRe.ReplaceAllString(inDaysRe.ReplaceAllString(lower, ""), "")
	if m := stayRe.FindStringSubmatch(rest); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n <= 60 {
			stay = n
		}
	}

	dep := today.AddDate(0, 0, lead)
	ret := dep.AddDate(0, 0, stay)

	var explicit []time.Time
	for _, m := range isoDateRe.FindAllString(lower, 2) {
		if t, err := time.Parse(model.DateLayout, m); err == nil {
			explicit = append(explicit, t)
		}
	}
	switch len(explicit) {
	case 2:
		dep, ret = explicit[0], explicit[1]
		if !ret.After(dep) {
			ret = dep.AddDate(0, 0, stay)
		}
	case 1:
		dep = explicit[0]
		ret = dep.AddDate(0, 0, stay)
	}
	return dep, ret
}

func cabinClass(lower string) string {
	switch {
	case strings.Contains(lower, "first class") || strings.Contains(lower, "first-class") || strings.Contains(lower, "الدرجة الأولى"):
		return model.ClassFirst
	case strings.Contains(lower, "business") || strings.Contains(lower, "رجال الأعمال"):
		return model.ClassBusiness
	}
	return model.ClassEconomy
}

func matchInterests(lower string) []string {
	var out []string
	for _, in := range interests {
		for _, term := range in.Terms {
			if indexTerm(lower, term) >= 0 {
				out = append(out, in.Label)
				break
			}
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultInterests...)
	}
	return out
}

func firstInt(re *regexp.Regexp, text string, def int) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return def
	}
	if n > maxParty {
		return maxParty
	}
	return n
}

func atoiAny(values ...string) (int, bool) {
	for _, v := range values {
		if v == "" {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// indexTerm finds term at a word start. Arabic terms are matched as plain
// substrings because of attached prefixes.
func indexTerm(text, term string) int {
	if !isLatin(term) {
		return strings.Index(text, term)
	}
	offset := 0
	for {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return -1
		}
		at := offset + i
		if at == 0 {
			return at
		}
		if r, _ := utf8.DecodeLastRuneInString(text[:at]); !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return at
		}
		offset = at + 1
	}
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return true
}

// previousWord returns the word right before position at. An Arabic
// one-letter prefix glued to the city ("لجدة") counts as the word.
func previousWord(text string, at int) string {
	head := strings.TrimRightFunc(text[:at], unicode.IsSpace)
	if len(head) < len(text[:at]) {
		fields := strings.Fields(head)
		if len(fields) == 0 {
			return ""
		}
		return strings.ToLower(strings.Trim(fields[len(fields)-1], ",.;:!?"))
	}
	// No space: the city is glued to a prefix.
	if r, _ := utf8.DecodeLastRuneInString(head); r != utf8.RuneError && !isLatin(string(r)) {
		return string(r)
	}
	return ""
}

func inList(word string, list []string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}

func sortMentions(ms []mention) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].at < ms[j].at })
}
