package analytics

type threshold struct {
	min   int
	label string
}

// TierTable maps a count onto a label. Thresholds are inclusive lower bounds,
// highest first; the last entry is the fallback.
type TierTable []threshold

// Label returns the label of the first threshold count reaches.
func (t TierTable) Label(count int) string {
	for _, th := range t {
		if count >= th.min {
			return th.label
		}
	}
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1].label
}

var (
	// RouteDemand classifies route frequency.
	RouteDemand = TierTable{{5, "High"}, {3, "Medium"}, {0, "Low"}}
	// AirportDemand classifies combined departures and arrivals.
	AirportDemand = TierTable{{15, "Very High"}, {10, "High"}, {5, "Medium"}, {0, "Low"}}
	// PricePressure classifies the number of airlines competing on a route.
	PricePressure = TierTable{{3, "High"}, {2, "Medium"}, {0, "Low"}}
)
