package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/skypies/geo"

	"github.com/airinsights/backend/internal/models"
)

const (
	openSkyBaseURL   = "https://opensky-network.org/api"
	openSkyMinFields = 17
)

// OpenSky reads state vectors from the OpenSky Network.
type OpenSky struct {
	opts     options
	bounds   geo.LatlongBox
	username string
	password string
}

// NewOpenSky creates the adapter. Credentials are optional; anonymous access
// is more aggressively rate limited.
func NewOpenSky(bounds geo.LatlongBox, username, password string, opts ...Option) *OpenSky {
	return &OpenSky{
		opts:     buildOptions(openSkyBaseURL, opts),
		bounds:   bounds,
		username: username,
		password: password,
	}
}

func (o *OpenSky) Name() string { return "opensky" }

type openSkyResponse struct {
	Time   int64             `json:"time"`
	States []json.RawMessage `json:"states"`
}

// Fetch retrieves the current state vectors inside the bounds.
func (o *OpenSky) Fetch(ctx context.Context) ([]models.FlightRecord, error) {
	params := url.Values{
		"lamin": {formatCoord(o.bounds.SW.Lat)},
		"lamax": {formatCoord(o.bounds.NE.Lat)},
		"lomin": {formatCoord(o.bounds.SW.Long)},
		"lomax": {formatCoord(o.bounds.NE.Long)},
	}
	req, err := newRequest(ctx, o.opts.baseURL+"/states/all?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if o.username != "" && o.password != "" {
		req.SetBasicAuth(o.username, o.password)
	}

	var raw openSkyResponse
	if err := getJSON(o.opts.client, req, &raw); err != nil {
		return nil, fmt.Errorf("opensky states: %w", err)
	}

	now := o.opts.now()
	records := make([]models.FlightRecord, 0, len(raw.States))
	skipped := 0
	for _, state := range raw.States {
		rec, ok := o.convert(state)
		if !ok {
			skipped++
			continue
		}
		rec.Timestamp = now
		records = append(records, rec)
	}
	if skipped > 0 {
		o.opts.log.Debug("skipped malformed opensky states", slog.Int("skipped", skipped))
	}
	return records, nil
}

// State vector layout: 0 icao24, 1 callsign, 2 origin country, 3 time position,
// 4 last contact, 5 lon, 6 lat, 7 baro altitude, 8 on ground, 9 velocity m/s,
// 10 true track, 11 vertical rate.
func (o *OpenSky) convert(raw json.RawMessage) (models.FlightRecord, bool) {
	r, ok := decodeRow(raw, openSkyMinFields)
	if !ok {
		return models.FlightRecord{}, false
	}
	rec := models.FlightRecord{
		ID:            strings.ToLower(r.text(0)),
		Source:        o.Name(),
		Callsign:      r.text(1),
		OriginCountry: r.text(2),
		Longitude:     r.number(5),
		Latitude:      r.number(6),
		Altitude:      r.number(7),
		OnGround:      r.flag(8),
		VelocityKmh:   convert(r.number(9), msToKmh),
		VerticalRate:  r.number(11),
	}
	if r.bad || rec.ID == "" {
		return models.FlightRecord{}, false
	}
	return rec, true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
