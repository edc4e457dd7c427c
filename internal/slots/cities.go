package slots

// city is a canonical destination name and the spellings that refer to it.
type city struct {
	Name    string
	Code    string
	Aliases []string
}

var knownCities = []city{
	{Name: "Riyadh", Code: "RUH", Aliases: []string{"riyadh", "الرياض", "رياض"}},
	{Name: "Jeddah", Code: "JED", Aliases: []string{"jeddah", "jedda", "jiddah", "جدة", "جده"}},
	{Name: "Mecca", Aliases: []string{"mecca", "makkah", "مكة", "مكه"}},
	{Name: "Medina", Aliases: []string{"medina", "madinah", "المدينة"}},
	{Name: "Dammam", Code: "DMM", Aliases: []string{"dammam", "الدمام"}},
	{Name: "Tabuk", Aliases: []string{"tabuk", "تبوك"}},
	{Name: "Abha", Aliases: []string{"abha", "أبها", "ابها"}},
	{Name: "AlUla", Aliases: []string{"alula", "al ula", "al-ula", "العلا"}},
	{Name: "Dubai", Code: "DXB", Aliases: []string{"dubai", "دبي"}},
	{Name: "Doha", Code: "DOH", Aliases: []string{"doha", "الدوحة"}},
	{Name: "Cairo", Code: "CAI", Aliases: []string{"cairo", "القاهرة"}},
	{Name: "Bangkok", Code: "BKK", Aliases: []string{"bangkok", "بانكوك"}},
	{Name: "London", Code: "LHR", Aliases: []string{"london", "لندن"}},
	{Name: "New York", Code: "JFK", Aliases: []string{"new york", "نيويورك"}},
	{Name: "Paris", Code: "CDG", Aliases: []string{"paris", "باريس"}},
	{Name: "Madrid", Code: "MAD", Aliases: []string{"madrid", "مدريد"}},
}

// CityForCode maps an IATA airport code to its city name.
func CityForCode(code string) (string, bool) {
	for _, c := range knownCities {
		if c.Code != "" && c.Code == code {
			return c.Name, true
		}
	}
	return "", false
}

// interest groups trigger words under a display label.
type interest struct {
	Label string
	Terms []string
}

var interests = []interest{
	{Label: "Beach", Terms: []string{"beach", "sea", "ocean", "swim", "diving", "شاطئ", "بحر", "غوص"}},
	{Label: "Culture", Terms: []string{"culture", "museum", "history", "heritage", "historic", "ثقافة", "متحف", "تاريخ", "تراث"}},
	{Label: "Adventure", Terms: []string{"adventure", "hiking", "desert", "safari", "camping", "مغامرة", "صحراء", "تخييم"}},
	{Label: "Shopping", Terms: []string{"shopping", "mall", "market", "souq", "تسوق", "سوق", "مول"}},
	{Label: "Food", Terms: []string{"food", "restaurant", "cuisine", "dining", "طعام", "مطعم", "مأكولات"}},
	{Label: "Relaxation", Terms: []string{"relax", "spa", "rest", "wellness", "استرخاء", "سبا", "راحة"}},
	{Label: "Sightseeing", Terms: []string{"sightseeing", "landmark", "attractions", "tour", "معالم", "جولة", "سياحة"}},
}

var defaultInterests = []string{"Sightseeing", "Shopping"}

var (
	fromWords = []string{"from", "من", "leaving"}
	toWords   = []string{"to", "in", "for", "at", "إلى", "الى", "في", "ل"}
)
