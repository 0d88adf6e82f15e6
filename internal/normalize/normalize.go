// Package normalize holds the pure string helpers applied to every record
// regardless of which source produced it.
package normalize

import "strings"

// Unknown is the display value for an absent airport or country.
const Unknown = "Unknown"

var countryAliases = map[string]string{
	"australia":                "Australia",
	"au":                       "Australia",
	"usa":                      "United States",
	"us":                       "United States",
	"united states":            "United States",
	"united states of america": "United States",
	"uk":                       "United Kingdom",
	"united kingdom":           "United Kingdom",
	"great britain":            "United Kingdom",
	"canada":                   "Canada",
	"ca":                       "Canada",
	"germany":                  "Germany",
	"de":                       "Germany",
	"france":                   "France",
	"fr":                       "France",
	"japan":                    "Japan",
	"jp":                       "Japan",
	"china":                    "China",
	"cn":                       "China",
	"india":                    "India",
	"in":                       "India",
	"brazil":                   "Brazil",
	"br":                       "Brazil",
	"russia":                   "Russia",
	"ru":                       "Russia",
	"south africa":             "South Africa",
	"za":                       "South Africa",
	"new zealand":              "New Zealand",
	"nz":                       "New Zealand",
}

// AirportName shortens an airport name for display.
//
// "Sydney Kingsford Smith International Airport" becomes "Smith", and
// "Melbourne Airport" becomes "Melbourne". Names without either marker keep
// their first three words.
func AirportName(name string) string {
	if strings.TrimSpace(name) == "" || name == Unknown {
		return Unknown
	}
	for _, marker := range []string{"International", "Airport"} {
		if strings.Contains(name, marker) {
			return lastWordBefore(name, marker)
		}
	}
	words := strings.Fields(name)
	if len(words) > 3 {
		return strings.Join(words[:3], " ")
	}
	return name
}

func lastWordBefore(name, marker string) string {
	head, _, _ := strings.Cut(name, " "+marker)
	words := strings.Fields(head)
	switch {
	case len(words) > 1:
		return words[len(words)-1]
	case len(words) == 1:
		return words[0]
	default:
		return Unknown
	}
}

// Country maps a country code or name onto its canonical display name.
// Unmapped input is returned exactly as given.
func Country(raw string) string {
	if canonical, ok := countryAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return canonical
	}
	return raw
}

// Route joins two airport names into the route label used by analytics.
func Route(departure, arrival string) string {
	return AirportName(departure) + " → " + AirportName(arrival)
}
