package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/skypies/geo"

	"github.com/airinsights/backend/internal/models"
)

const (
	fr24BaseURL   = "https://data-live.flightradar24.com"
	fr24MinFields = 14
)

// FR24 reads the FlightRadar24 live zone feed.
type FR24 struct {
	opts    options
	bounds  geo.LatlongBox
	country string
}

// NewFR24 creates the adapter. The feed carries no country, so records are
// stamped with the label of the region the bounds describe, if one is given.
func NewFR24(bounds geo.LatlongBox, regionCountry string, opts ...Option) *FR24 {
	return &FR24{opts: buildOptions(fr24BaseURL, opts), bounds: bounds, country: regionCountry}
}

func (f *FR24) Name() string { return "flightradar24" }

// Fetch retrieves every aircraft inside the bounds.
func (f *FR24) Fetch(ctx context.Context) ([]models.FlightRecord, error) {
	params := url.Values{}
	// fr24 orders bounds as north,south,west,east
	params.Set("bounds", fmt.Sprintf("%g,%g,%g,%g", f.bounds.NE.Lat, f.bounds.SW.Lat, f.bounds.SW.Long, f.bounds.NE.Long))
	for _, p := range []string{"faa", "mlat", "flarm", "adsb", "gnd", "air", "vehicles", "estimated", "gliders", "stats"} {
		params.Set(p, "1")
	}
	params.Set("maxage", "7200")

	req, err := newRequest(ctx, f.opts.baseURL+"/zones/fcgi/feed.js?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var body json.RawMessage
	if err := getJSON(f.opts.client, req, &body); err != nil {
		return nil, fmt.Errorf("fr24 feed: %w", err)
	}

	records, skipped, err := f.parse(body)
	if err != nil {
		return nil, fmt.Errorf("fr24 feed: %w", err)
	}
	if skipped > 0 {
		f.opts.log.Debug("skipped malformed fr24 rows", slog.Int("skipped", skipped))
	}
	return records, nil
}

// parse accepts aircraft nested under "aircraft" (object or array) or keyed
// at the top level next to metadata such as full_count and stats.
func (f *FR24) parse(body json.RawMessage) ([]models.FlightRecord, int, error) {
	top, err := decodeObject(body)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing response: %w", err)
	}

	entries := top
	for _, m := range top {
		if m.key != "aircraft" {
			continue
		}
		if isArray(m.raw) {
			var rows []json.RawMessage
			if err := json.Unmarshal(m.raw, &rows); err != nil {
				return nil, 0, fmt.Errorf("parsing aircraft list: %w", err)
			}
			entries = make([]member, 0, len(rows))
			for _, r := range rows {
				entries = append(entries, member{raw: r})
			}
		} else if entries, err = decodeObject(m.raw); err != nil {
			return nil, 0, fmt.Errorf("parsing aircraft map: %w", err)
		}
		break
	}

	now := f.opts.now()
	records := make([]models.FlightRecord, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		if !isArray(e.raw) {
			continue
		}
		rec, ok := f.convert(e.key, e.raw)
		if !ok {
			skipped++
			continue
		}
		rec.Timestamp = now
		records = append(records, rec)
	}
	return records, skipped, nil
}

// Row layout: 0 icao hex, 1 lat, 2 lon, 3 track, 4 altitude ft, 5 speed kt,
// 6 squawk, 7 radar, 8 type, 9 registration, 10 epoch, 11 origin, 12 destination,
// 13 flight, 14 on ground, 15 vertical rate, 16 callsign.
func (f *FR24) convert(key string, raw json.RawMessage) (models.FlightRecord, bool) {
	r, ok := decodeRow(raw, fr24MinFields)
	if !ok {
		return models.FlightRecord{}, false
	}

	id := r.text(0)
	if id == "" {
		id = key
	}
	rec := models.FlightRecord{
		ID:                 strings.ToLower(strings.TrimSpace(id)),
		Source:             f.Name(),
		Callsign:           r.text(16),
		FlightNumber:       r.text(13),
		Latitude:           r.number(1),
		Longitude:          r.number(2),
		Altitude:           r.number(4),
		VelocityKmh:        convert(r.number(5), knotsToKmh),
		OnGround:           r.flag(14),
		VerticalRate:       r.number(15),
		OriginAirport:      r.text(11),
		DestinationAirport: r.text(12),
		OriginCountry:      f.country,
		DestinationCountry: f.country,
	}
	if r.bad || rec.ID == "" {
		return models.FlightRecord{}, false
	}
	return rec, true
}
