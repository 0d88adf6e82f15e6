package analytics

import (
	"sort"

	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/normalize"
)

const (
	topAirports         = 5
	topRoutes           = 10
	topAirlines         = 10
	topCompetitive      = 10
	topDashboardAirport = 10
	topDemandAirports   = 15
	topPeakHours        = 8

	competitiveMinFrequency = 3
)

// StatusDistribution counts active flights against everything else.
type StatusDistribution struct {
	Active    int `json:"active"`
	Scheduled int `json:"scheduled"`
}

// Statuses counts records whose status is active; all others, unknown
// included, count as scheduled.
func Statuses(records []models.FlightRecord) StatusDistribution {
	var d StatusDistribution
	for _, rec := range records {
		if rec.Status == models.StatusActive {
			d.Active++
		} else {
			d.Scheduled++
		}
	}
	return d
}

func orUnknown(s string) string {
	if s == "" {
		return normalize.Unknown
	}
	return s
}

// Overview is the airport, country and status breakdown of a schedule snapshot.
type Overview struct {
	TopOriginAirports       []Count            `json:"top_origin_airports"`
	TopDestinationAirports  []Count            `json:"top_destination_airports"`
	TopOriginCountries      []Count            `json:"top_origin_countries"`
	TopDestinationCountries []Count            `json:"top_destination_countries"`
	StatusDistribution      StatusDistribution `json:"status_distribution"`
	TotalFlightsAnalyzed    int                `json:"total_flights_analyzed"`
}

// Summarize builds the Overview.
func Summarize(records []models.FlightRecord) Overview {
	origins, destinations := NewCounter(), NewCounter()
	originCountries, destinationCountries := NewCounter(), NewCounter()
	for _, rec := range records {
		origins.Add(normalize.AirportName(rec.DepartureAirport))
		destinations.Add(normalize.AirportName(rec.ArrivalAirport))
		originCountries.Add(orUnknown(rec.DepartureCountry))
		destinationCountries.Add(orUnknown(rec.ArrivalCountry))
	}
	return Overview{
		TopOriginAirports:       origins.MostCommon(topAirports),
		TopDestinationAirports:  destinations.MostCommon(topAirports),
		TopOriginCountries:      originCountries.MostCommon(topAirports),
		TopDestinationCountries: destinationCountries.MostCommon(topAirports),
		StatusDistribution:      Statuses(records),
		TotalFlightsAnalyzed:    len(records),
	}
}

// routeStats holds the counters shared by the trend and dashboard views.
// Only records with both airports contribute.
type routeStats struct {
	total         int
	routes        *Counter
	airlines      *Counter
	departures    *Counter
	arrivals      *Counter
	airports      *Counter
	routeAirlines map[string]map[string]struct{}
	histogram     *Histogram
}

func collectRoutes(records []models.FlightRecord) routeStats {
	s := routeStats{
		total:         len(records),
		routes:        NewCounter(),
		airlines:      NewCounter(),
		departures:    NewCounter(),
		arrivals:      NewCounter(),
		routeAirlines: make(map[string]map[string]struct{}),
		histogram:     DepartureHistogram(records),
	}
	for _, rec := range records {
		if rec.DepartureAirport == "" || rec.ArrivalAirport == "" {
			continue
		}
		route := normalize.Route(rec.DepartureAirport, rec.ArrivalAirport)
		airline := orUnknown(rec.Airline)

		s.routes.Add(route)
		s.airlines.Add(airline)
		s.departures.Add(rec.DepartureAirport)
		s.arrivals.Add(rec.ArrivalAirport)

		if s.routeAirlines[route] == nil {
			s.routeAirlines[route] = make(map[string]struct{})
		}
		s.routeAirlines[route][airline] = struct{}{}
	}
	s.airports = s.departures.Merge(s.arrivals)
	return s
}

// CompetitiveRoute is a busy route with its airline competition.
type CompetitiveRoute struct {
	Route              string `json:"route"`
	FlightFrequency    int    `json:"flight_frequency"`
	AirlineCompetition int    `json:"airline_competition"`
	PricePressure      string `json:"price_pressure"`
}

// competitiveRoutes lists routes flown at least three times, most contested first.
func (s routeStats) competitiveRoutes() []CompetitiveRoute {
	out := make([]CompetitiveRoute, 0)
	for _, r := range s.routes.Items() {
		if r.Count < competitiveMinFrequency {
			continue
		}
		n := len(s.routeAirlines[r.Name])
		out = append(out, CompetitiveRoute{
			Route:              r.Name,
			FlightFrequency:    r.Count,
			AirlineCompetition: n,
			PricePressure:      PricePressure.Label(n),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AirlineCompetition > out[j].AirlineCompetition
	})
	return out
}

// CompetitiveRoutes exposes the price-pressure ranking for a snapshot.
func CompetitiveRoutes(records []models.FlightRecord) []CompetitiveRoute {
	return collectRoutes(records).competitiveRoutes()
}
