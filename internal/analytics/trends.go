package analytics

import (
	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/normalize"
)

type RouteDemandLevel struct {
	Route       string `json:"route"`
	Frequency   int    `json:"frequency"`
	DemandLevel string `json:"demand_level"`
}

type AirportLoad struct {
	Airport        string `json:"airport"`
	TotalFlights   int    `json:"total_flights"`
	Departures     int    `json:"departures"`
	Arrivals       int    `json:"arrivals"`
	DemandCategory string `json:"demand_category"`
}

type AirlineShare struct {
	Airline     string  `json:"airline"`
	FlightCount int     `json:"flight_count"`
	MarketShare float64 `json:"market_share"`
}

type SlotCount struct {
	TimeSlot    string `json:"time_slot"`
	FlightCount int    `json:"flight_count"`
}

type PopularRoutes struct {
	TopRoutes         []RouteDemandLevel `json:"top_routes"`
	TotalUniqueRoutes int                `json:"total_unique_routes"`
}

type HighDemandLocations struct {
	Airports      []AirportLoad `json:"airports"`
	TotalAirports int           `json:"total_airports"`
}

type MarketInsights struct {
	TotalFlightsAnalyzed       int     `json:"total_flights_analyzed"`
	AverageCompetitionPerRoute float64 `json:"average_competition_per_route"`
}

type PriceTrends struct {
	CompetitiveRoutes []CompetitiveRoute `json:"competitive_routes"`
	TopAirlines       []AirlineShare     `json:"top_airlines"`
	MarketInsights    MarketInsights     `json:"market_insights"`
}

type TimeAnalysis struct {
	PeakDepartureHours     []SlotCount `json:"peak_departure_hours"`
	TotalTimeSlotsAnalyzed int         `json:"total_time_slots_analyzed"`
}

// Trends is the route, airport, pricing and timing view of a schedule snapshot.
type Trends struct {
	PopularRoutes       PopularRoutes       `json:"popular_routes"`
	HighDemandLocations HighDemandLocations `json:"high_demand_locations"`
	PriceTrends         PriceTrends         `json:"price_trends"`
	TimeAnalysis        TimeAnalysis        `json:"time_analysis"`
}

// SummarizeTrends builds the Trends view. Departure slots are listed in
// chronological order.
func SummarizeTrends(records []models.FlightRecord) Trends {
	s := collectRoutes(records)

	routes := make([]RouteDemandLevel, 0, topRoutes)
	for _, r := range s.routes.MostCommon(topRoutes) {
		routes = append(routes, RouteDemandLevel{
			Route:       r.Name,
			Frequency:   r.Count,
			DemandLevel: RouteDemand.Label(r.Count),
		})
	}

	airports := make([]AirportLoad, 0, topDemandAirports)
	for _, a := range s.airports.MostCommon(topDemandAirports) {
		airports = append(airports, AirportLoad{
			Airport:        normalize.AirportName(a.Name),
			TotalFlights:   a.Count,
			Departures:     s.departures.Get(a.Name),
			Arrivals:       s.arrivals.Get(a.Name),
			DemandCategory: AirportDemand.Label(a.Count),
		})
	}

	competitive := s.competitiveRoutes()
	avg := 0.0
	if len(competitive) > 0 {
		sum := 0
		for _, c := range competitive {
			sum += c.AirlineCompetition
		}
		avg = round2(float64(sum) / float64(len(competitive)))
	}
	if len(competitive) > topCompetitive {
		competitive = competitive[:topCompetitive]
	}

	airlines := make([]AirlineShare, 0, topAirlines)
	for _, a := range s.airlines.MostCommon(topAirlines) {
		airlines = append(airlines, AirlineShare{
			Airline:     a.Name,
			FlightCount: a.Count,
			MarketShare: MarketShare(a.Count, s.total),
		})
	}

	slots := make([]SlotCount, 0, s.histogram.Len())
	for _, slot := range s.histogram.Chronological() {
		slots = append(slots, SlotCount{TimeSlot: slot.Label, FlightCount: slot.Count})
	}

	return Trends{
		PopularRoutes: PopularRoutes{
			TopRoutes:         routes,
			TotalUniqueRoutes: s.routes.Len(),
		},
		HighDemandLocations: HighDemandLocations{
			Airports:      airports,
			TotalAirports: s.airports.Len(),
		},
		PriceTrends: PriceTrends{
			CompetitiveRoutes: competitive,
			TopAirlines:       airlines,
			MarketInsights: MarketInsights{
				TotalFlightsAnalyzed:       s.total,
				AverageCompetitionPerRoute: avg,
			},
		},
		TimeAnalysis: TimeAnalysis{
			PeakDepartureHours:     slots,
			TotalTimeSlotsAnalyzed: s.histogram.Len(),
		},
	}
}
