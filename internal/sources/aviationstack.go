package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/airinsights/backend/internal/models"
)

const (
	aviationStackBaseURL = "http://api.aviationstack.com"
	defaultScheduleLimit = 100
)

// AviationStack reads scheduled flights from the AviationStack API.
type AviationStack struct {
	opts   options
	apiKey string
}

// NewAviationStack creates the adapter.
func NewAviationStack(apiKey string, opts ...Option) *AviationStack {
	return &AviationStack{opts: buildOptions(aviationStackBaseURL, opts), apiKey: apiKey}
}

func (a *AviationStack) Name() string { return "aviationstack" }

type aviationStackResponse struct {
	Data  []json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type aviationStackFlight struct {
	FlightStatus string                 `json:"flight_status"`
	Departure    *aviationStackEndpoint `json:"departure"`
	Arrival      *aviationStackEndpoint `json:"arrival"`
	Airline      struct {
		Name string `json:"name"`
	} `json:"airline"`
	Flight struct {
		IATA string `json:"iata"`
		ICAO string `json:"icao"`
	} `json:"flight"`
}

type aviationStackEndpoint struct {
	Airport   string          `json:"airport"`
	Country   string          `json:"country"`
	Scheduled json.RawMessage `json:"scheduled"`
}

// Fetch retrieves the default page of scheduled flights.
func (a *AviationStack) Fetch(ctx context.Context) ([]models.FlightRecord, error) {
	return a.FetchSchedule(ctx, defaultScheduleLimit)
}

// FetchSchedule retrieves up to limit scheduled flights. Entries missing a
// departure or arrival block are dropped.
func (a *AviationStack) FetchSchedule(ctx context.Context, limit int) ([]models.FlightRecord, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("aviationstack: %w", ErrMissingAPIKey)
	}
	if limit <= 0 {
		limit = defaultScheduleLimit
	}
	params := url.Values{
		"access_key": {a.apiKey},
		"limit":      {strconv.Itoa(limit)},
	}
	req, err := newRequest(ctx, a.opts.baseURL+"/v1/flights?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var raw aviationStackResponse
	if err := getJSON(a.opts.client, req, &raw); err != nil {
		return nil, fmt.Errorf("aviationstack flights: %w", err)
	}
	if raw.Error != nil {
		return nil, fmt.Errorf("aviationstack flights: %s: %s", raw.Error.Code, raw.Error.Message)
	}

	now := a.opts.now()
	records := make([]models.FlightRecord, 0, len(raw.Data))
	skipped := 0
	for _, item := range raw.Data {
		var f aviationStackFlight
		if err := json.Unmarshal(item, &f); err != nil {
			skipped++
			continue
		}
		if f.Departure == nil || f.Arrival == nil {
			continue
		}
		id := f.Flight.IATA
		if id == "" {
			id = f.Flight.ICAO
		}
		records = append(records, models.FlightRecord{
			ID:               id,
			Source:           a.Name(),
			Airline:          f.Airline.Name,
			FlightNumber:     f.Flight.IATA,
			DepartureAirport: f.Departure.Airport,
			ArrivalAirport:   f.Arrival.Airport,
			DepartureCountry: f.Departure.Country,
			ArrivalCountry:   f.Arrival.Country,
			DepartureTime:    scheduledTime(f.Departure.Scheduled),
			ArrivalTime:      scheduledTime(f.Arrival.Scheduled),
			Status:           models.ParseStatus(f.FlightStatus),
			Timestamp:        now,
		})
	}
	if skipped > 0 {
		a.opts.log.Debug("skipped malformed aviationstack entries", slog.Int("skipped", skipped))
	}
	return records, nil
}

// scheduledTime keeps the upstream encoding: ISO strings verbatim, epoch
// milliseconds as their decimal digits.
func scheduledTime(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := n.Float64(); err == nil {
			return strconv.FormatInt(int64(f), 10)
		}
	}
	return ""
}
