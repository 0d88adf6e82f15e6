package analytics

import (
	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/normalize"
)

type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type AirportPair struct {
	Origin      []NameValue `json:"origin"`
	Destination []NameValue `json:"destination"`
}

type FlightOverview struct {
	Airports AirportPair `json:"airports"`
	Status   []NameValue `json:"status"`
}

type PopularRoute struct {
	Name      string `json:"name"`
	Frequency int    `json:"frequency"`
	Demand    string `json:"demand"`
}

type BusyAirport struct {
	Name         string `json:"name"`
	TotalFlights int    `json:"total_flights"`
	Departures   int    `json:"departures"`
	Arrivals     int    `json:"arrivals"`
	Demand       string `json:"demand"`
}

type Performer struct {
	Name        string  `json:"name"`
	MarketShare float64 `json:"market_share"`
}

type PeakHour struct {
	Time    string `json:"time"`
	Flights int    `json:"flights"`
}

type TrendAnalysis struct {
	Routes struct {
		Popular []PopularRoute `json:"popular"`
	} `json:"routes"`
	Airports struct {
		HighDemand []BusyAirport `json:"high_demand"`
	} `json:"airports"`
	Airlines struct {
		TopPerformers []Performer `json:"top_performers"`
	} `json:"airlines"`
	TimeAnalysis struct {
		PeakHours []PeakHour `json:"peak_hours"`
	} `json:"time_analysis"`
}

type DashboardSummary struct {
	TotalActiveFlights int    `json:"total_active_flights"`
	UniqueRoutes       int    `json:"unique_routes"`
	ActiveAirports     int    `json:"active_airports"`
	LastUpdated        string `json:"last_updated,omitempty"`
	DataSource         string `json:"data_source,omitempty"`
}

// Dashboard is the combined view behind the dashboard page.
type Dashboard struct {
	FlightOverview   FlightOverview   `json:"flight_overview"`
	TrendAnalysis    TrendAnalysis    `json:"trend_analysis"`
	DashboardSummary DashboardSummary `json:"dashboard_summary"`
}

func nameValues(counts []Count) []NameValue {
	out := make([]NameValue, 0, len(counts))
	for _, c := range counts {
		out = append(out, NameValue{Name: c.Name, Value: c.Count})
	}
	return out
}

// SummarizeDashboard builds the Dashboard view. Peak hours are ordered by
// count, busiest first.
func SummarizeDashboard(records []models.FlightRecord) Dashboard {
	origins, destinations := NewCounter(), NewCounter()
	for _, rec := range records {
		origins.Add(normalize.AirportName(rec.DepartureAirport))
		destinations.Add(normalize.AirportName(rec.ArrivalAirport))
	}
	status := Statuses(records)

	var d Dashboard
	d.FlightOverview = FlightOverview{
		Airports: AirportPair{
			Origin:      nameValues(origins.MostCommon(topAirports)),
			Destination: nameValues(destinations.MostCommon(topAirports)),
		},
		Status: []NameValue{
			{Name: "Active", Value: status.Active},
			{Name: "Scheduled", Value: status.Scheduled},
		},
	}

	s := collectRoutes(records)

	d.TrendAnalysis.Routes.Popular = make([]PopularRoute, 0, topRoutes)
	for _, r := range s.routes.MostCommon(topRoutes) {
		d.TrendAnalysis.Routes.Popular = append(d.TrendAnalysis.Routes.Popular, PopularRoute{
			Name:      r.Name,
			Frequency: r.Count,
			Demand:    RouteDemand.Label(r.Count),
		})
	}

	d.TrendAnalysis.Airports.HighDemand = make([]BusyAirport, 0, topDashboardAirport)
	for _, a := range s.airports.MostCommon(topDashboardAirport) {
		d.TrendAnalysis.Airports.HighDemand = append(d.TrendAnalysis.Airports.HighDemand, BusyAirport{
			Name:         a.Name,
			TotalFlights: a.Count,
			Departures:   s.departures.Get(a.Name),
			Arrivals:     s.arrivals.Get(a.Name),
			Demand:       AirportDemand.Label(a.Count),
		})
	}

	d.TrendAnalysis.Airlines.TopPerformers = make([]Performer, 0, topAirlines)
	for _, a := range s.airlines.MostCommon(topAirlines) {
		d.TrendAnalysis.Airlines.TopPerformers = append(d.TrendAnalysis.Airlines.TopPerformers, Performer{
			Name:        a.Name,
			MarketShare: MarketShare(a.Count, s.total),
		})
	}

	d.TrendAnalysis.TimeAnalysis.PeakHours = make([]PeakHour, 0, topPeakHours)
	for _, slot := range s.histogram.PeakHours(topPeakHours) {
		d.TrendAnalysis.TimeAnalysis.PeakHours = append(d.TrendAnalysis.TimeAnalysis.PeakHours, PeakHour{
			Time:    slot.Label,
			Flights: slot.Count,
		})
	}

	d.DashboardSummary = DashboardSummary{
		TotalActiveFlights: len(records),
		UniqueRoutes:       s.routes.Len(),
		ActiveAirports:     s.airports.Len(),
	}
	return d
}
