package models

import (
	"strings"
	"time"

	"github.com/skypies/geo"
)

// Status is the coarse lifecycle state of a scheduled flight.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusUnknown   Status = "unknown"
)

// ParseStatus maps an upstream status string onto the canonical set.
// Anything other than scheduled/active, including empty, is unknown.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scheduled":
		return StatusScheduled
	case "active":
		return StatusActive
	default:
		return StatusUnknown
	}
}

// FlightRecord is the canonical shape every source adapter converts into.
// Optional fields left empty (or nil) are unknown, never guessed.
type FlightRecord struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Callsign string `json:"callsign,omitempty"`

	// Schedule fields.
	Airline          string `json:"airline,omitempty"`
	FlightNumber     string `json:"flight_number,omitempty"`
	DepartureAirport string `json:"departure_airport,omitempty"`
	ArrivalAirport   string `json:"arrival_airport,omitempty"`
	DepartureCountry string `json:"departure_country,omitempty"`
	ArrivalCountry   string `json:"arrival_country,omitempty"`
	DepartureTime    string `json:"departure_time,omitempty"`
	ArrivalTime      string `json:"arrival_time,omitempty"`
	Status           Status `json:"status,omitempty"`

	// Live position fields.
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	Altitude           *float64 `json:"altitude,omitempty"`
	VelocityKmh        *float64 `json:"velocity_kmh,omitempty"`
	VerticalRate       *float64 `json:"vertical_rate,omitempty"`
	OnGround           *bool    `json:"on_ground,omitempty"`
	OriginCountry      string   `json:"origin_country,omitempty"`
	DestinationCountry string   `json:"destination_country,omitempty"`
	OriginAirport      string   `json:"origin_airport,omitempty"`
	DestinationAirport string   `json:"destination_airport,omitempty"`

	// Timestamp is the wall-clock time the record was converted, for display only.
	Timestamp time.Time `json:"timestamp"`
}

// Speed returns the ground speed in km/h, treating unknown as zero.
func (f FlightRecord) Speed() float64 {
	if f.VelocityKmh == nil {
		return 0
	}
	return *f.VelocityKmh
}

// HasPosition reports whether both coordinates are known.
func (f FlightRecord) HasPosition() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// Position returns the coordinates as a geo.Latlong. Callers check HasPosition first.
func (f FlightRecord) Position() geo.Latlong {
	if !f.HasPosition() {
		return geo.Latlong{}
	}
	return geo.Latlong{Lat: *f.Latitude, Long: *f.Longitude}
}
