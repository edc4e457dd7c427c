// Package render turns structured turn results into bilingual reply text.
package render

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

var funcs = template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"money": func(d decimal.Decimal) string { return d.StringFixed(0) },
	"join":  strings.Join,
	"stars": func(n int) string { return strings.Repeat("★", n) },
}

type templates struct {
	flights  *template.Template
	hotels   *template.Template
	packages *template.Template
	greeting string
	apology  string
	noTrip   string
	system   string
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

var english = templates{
	flights: mustParse("flights_en", `Here are the available flights from {{.Slots.Origin}} to {{.Slots.Destination}} on {{.Slots.DepartureDate}}:
{{range $i, $f := .Flights}}{{inc $i}}. {{$f.Airline}} {{$f.FlightNumber}}{{if $f.DepartureTime}}, departs {{$f.DepartureTime}}{{end}}{{if $f.ArrivalTime}}, arrives {{$f.ArrivalTime}}{{end}}{{if $f.Duration}} ({{$f.Duration}}){{end}}: {{money $f.Price}} {{$f.Currency}}
{{end}}Which flight would you like?`),
	hotels: mustParse("hotels_en", `Here are hotels in {{.Slots.City}} from {{.Slots.CheckIn}} to {{.Slots.CheckOut}} for {{.Slots.Guests}} guests:
{{range $i, $h := .Hotels}}{{inc $i}}. {{$h.Name}} {{stars $h.StarRating}}{{if $h.Area}} in {{$h.Area}}{{end}}: {{money $h.PricePerNight}} {{$h.Currency}} per night{{if $h.Amenities}}. {{join $h.Amenities ", "}}{{end}}
{{end}}Which hotel would you like?`),
	packages: mustParse("packages_en", `Here are trip packages from {{.Slots.Origin}} to {{.Slots.Destination}}:
{{range $i, $p := .Packages}}{{inc $i}}. {{$p.Name}}: {{$p.Nights}} nights, total {{money $p.TotalPrice}} {{$p.Currency}}
{{end}}Would you like to book one of these packages?`),
	greeting: "Hello! I am your trip planning assistant. How can I help you today?",
	apology:  "Sorry, something went wrong while searching for options. Please try again.",
	noTrip:   "I could not find matching flights and hotels for this trip. Could you try different dates or another destination?",
	system: "You are a friendly and helpful travel assistant specializing in trip planning in Saudi Arabia. " +
		"Help users book flights, hotels, and plan their trips. Be friendly, helpful, and professional. " +
		"When users ask for specific flight or hotel information, ask for the necessary details in a natural conversational way.",
}

var arabic = templates{
	flights: mustParse("flights_ar", `إليك الرحلات المتاحة من {{.Slots.Origin}} إلى {{.Slots.Destination}} بتاريخ {{.Slots.DepartureDate}}:
{{range $i, $f := .Flights}}{{inc $i}}. {{$f.Airline}} {{$f.FlightNumber}}{{if $f.DepartureTime}}، المغادرة {{$f.DepartureTime}}{{end}}{{if $f.ArrivalTime}}، الوصول {{$f.ArrivalTime}}{{end}}: {{money $f.Price}} {{$f.Currency}}
{{end}}أي رحلة تفضل؟`),
	hotels: mustParse("hotels_ar", `إليك الفنادق في {{.Slots.City}} من {{.Slots.CheckIn}} إلى {{.Slots.CheckOut}} لعدد {{.Slots.Guests}} ضيوف:
{{range $i, $h := .Hotels}}{{inc $i}}. {{$h.Name}} {{stars $h.StarRating}}{{if $h.Area}} في {{$h.Area}}{{end}}: {{money $h.PricePerNight}} {{$h.Currency}} لليلة
{{end}}أي فندق تفضل؟`),
	packages: mustParse("packages_ar", `إليك باقات الرحلة من {{.Slots.Origin}} إلى {{.Slots.Destination}}:
{{range $i, $p := .Packages}}{{inc $i}}. {{$p.Name}}: {{$p.Nights}} ليال، المجموع {{money $p.TotalPrice}} {{$p.Currency}}
{{end}}هل ترغب في حجز إحدى هذه الباقات؟`),
	greeting: "مرحبًا! أنا مساعد تخطيط الرحلات الخاص بك. كيف يمكنني مساعدتك اليوم؟",
	apology:  "عذرًا، حدث خطأ أثناء البحث عن الخيارات. يرجى المحاولة مرة أخرى.",
	noTrip:   "لم أتمكن من العثور على رحلات وفنادق مناسبة لهذه الرحلة. هل يمكنك تجربة تواريخ أو وجهة أخرى؟",
	system: "أنت مساعد سفر ودود ومفيد متخصص في تخطيط الرحلات في المملكة العربية السعودية. " +
		"ساعد المستخدمين في حجز الرحلات الجوية والفنادق وتخطيط رحلاتهم. كن ودودًا ومفيدًا ومهنيًا. " +
		"عندما يطلب المستخدمون معلومات محددة عن الرحلات أو الفنادق، اطلب التفاصيل اللازمة بأسلوب محادثة طبيعي.",
}

func forLanguage(lang model.Language) *templates {
	if lang == model.LanguageArabic {
		return &arabic
	}
	return &english
}

// SystemPrompt returns the assistant persona for free-form replies.
func SystemPrompt(lang model.Language) string {
	return forLanguage(lang).system
}

// Apology returns the generic failure message.
func Apology(lang model.Language) string {
	return forLanguage(lang).apology
}

// Text renders the reply for a turn result.
func Text(res model.Result, lang model.Language) string {
	t := forLanguage(lang)
	switch r := res.(type) {
	case *model.FlightResult:
		return execute(t.flights, r, t.apology)
	case *model.HotelResult:
		return execute(t.hotels, r, t.apology)
	case *model.TripResult:
		if len(r.Packages) == 0 {
			return t.noTrip
		}
		return execute(t.packages, r, t.apology)
	case *model.GeneralResult:
		return t.greeting
	default:
		return t.apology
	}
}

func execute(tmpl *template.Template, data any, fallback string) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fallback
	}
	return buf.String()
}
