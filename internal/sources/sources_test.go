package sources_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skypies/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/sources"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func serve(t *testing.T, status int, body string, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const fr24Payload = `{
	"full_count": 3,
	"version": 4,
	"2f1a3b": ["7C6B2D", -33.9, 151.2, 90, 35000, 450, "1234", "T-YSSY", "B738", "VH-VXA", 1700000000, "SYD", "MEL", "QF401", 0, 64, "QFA401"],
	"short": ["7C0000", -30.0],
	"2f1a3c": ["", -27.4, 153.1, 180, 0, null, "", "", "A320", "", 1700000000, "BNE", "", "", 1, 0, ""],
	"badtype": ["7C1111", "north", 150.0, 0, 1000, 100, "", "", "", "", 0, "", "", "", 0, 0, ""],
	"stats": {"total": {"ads-b": 3}}
}`

func TestFR24ParsesTopLevelRows(t *testing.T) {
	srv := serve(t, http.StatusOK, fr24Payload, func(r *http.Request) {
		assert.Equal(t, "/zones/fcgi/feed.js", r.URL.Path)
		assert.Equal(t, "-10,-44,112,154", r.URL.Query().Get("bounds"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
	})

	fr := sources.NewFR24(sources.DefaultBounds(), "Australia", sources.WithBaseURL(srv.URL), sources.WithClock(clock))
	records, err := fr.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "7c6b2d", first.ID)
	assert.Equal(t, "flightradar24", first.Source)
	assert.Equal(t, "QFA401", first.Callsign)
	assert.Equal(t, "SYD", first.OriginAirport)
	assert.Equal(t, "MEL", first.DestinationAirport)
	assert.Equal(t, "Australia", first.OriginCountry)
	require.NotNil(t, first.VelocityKmh)
	assert.InDelta(t, 833.4, *first.VelocityKmh, 0.001)
	require.NotNil(t, first.OnGround)
	assert.False(t, *first.OnGround)
	assert.Equal(t, fixedNow, first.Timestamp)

	second := records[1]
	assert.Equal(t, "2f1a3c", second.ID, "falls back to the feed key when the hex is blank")
	assert.Nil(t, second.VelocityKmh, "null speed stays unknown")
	require.NotNil(t, second.OnGround)
	assert.True(t, *second.OnGround)
}

func TestFR24ParsesNestedAircraft(t *testing.T) {
	body := `{"aircraft": [["ABC123", -33.9, 151.2, 0, 1000, 100, "", "", "", "", 0, "", "", "", 0, 0, "XYZ1"], ["bad"]]}`
	srv := serve(t, http.StatusOK, body, nil)

	fr := sources.NewFR24(sources.DefaultBounds(), "", sources.WithBaseURL(srv.URL))
	records, err := fr.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc123", records[0].ID)
	assert.Empty(t, records[0].OriginCountry)
	assert.InDelta(t, 185.2, *records[0].VelocityKmh, 0.001)
}

func TestFR24ServerError(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, `oops`, nil)

	fr := sources.NewFR24(sources.DefaultBounds(), "", sources.WithBaseURL(srv.URL))
	records, err := fr.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sources.ErrUnexpectedStatus))
	assert.Empty(t, records)
}

func TestOpenSkyFetch(t *testing.T) {
	body := `{"time": 1700000000, "states": [
		["7C6B2D", "QFA12  ", "Australia", 1700000000, 1700000000, 151.2, -33.9, 10000.0, false, 250.0, 180.0, -2.5, null, 10500.0, "1234", false, 0],
		["7c0001", "VOZ1", "Australia", 1, 1, 150.0, -30.0, 0.0, true, null, 0.0, null, null, 0.0, "", false, 0],
		["short", "X"],
		["7c0002", "VOZ2", "Australia", 1, 1, 150.0, -30.0, 0.0, "yes", 10.0, 0.0, 0.0, null, 0.0, "", false, 0]
	]}`
	srv := serve(t, http.StatusOK, body, func(r *http.Request) {
		assert.Equal(t, "/states/all", r.URL.Path)
		assert.Equal(t, "-44.0", r.URL.Query().Get("lamin"))
		assert.Equal(t, "154.0", r.URL.Query().Get("lomax"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "secret", pass)
	})

	sky := sources.NewOpenSky(sources.DefaultBounds(), "alice", "secret", sources.WithBaseURL(srv.URL), sources.WithClock(clock))
	records, err := sky.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	f := records[0]
	assert.Equal(t, "7c6b2d", f.ID)
	assert.Equal(t, "QFA12", f.Callsign)
	assert.Equal(t, "Australia", f.OriginCountry)
	assert.InDelta(t, -33.9, *f.Latitude, 0.0001)
	assert.InDelta(t, 151.2, *f.Longitude, 0.0001)
	assert.InDelta(t, 900.0, *f.VelocityKmh, 0.0001)
	assert.InDelta(t, -2.5, *f.VerticalRate, 0.0001)
	assert.False(t, *f.OnGround)
	assert.Equal(t, fixedNow, f.Timestamp)

	assert.Nil(t, records[1].VelocityKmh)
	assert.True(t, *records[1].OnGround)
}

func TestOpenSkyRateLimited(t *testing.T) {
	srv := serve(t, http.StatusTooManyRequests, `{}`, nil)

	sky := sources.NewOpenSky(sources.DefaultBounds(), "", "", sources.WithBaseURL(srv.URL))
	records, err := sky.Fetch(context.Background())
	require.ErrorIs(t, err, sources.ErrRateLimited)
	assert.Empty(t, records)
}

func TestOpenSkyNullStates(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"time": 1, "states": null}`, nil)

	sky := sources.NewOpenSky(sources.DefaultBounds(), "", "", sources.WithBaseURL(srv.URL))
	records, err := sky.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestOpenSkyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	sky := sources.NewOpenSky(sources.DefaultBounds(), "", "",
		sources.WithBaseURL(srv.URL),
		sources.WithHTTPClient(sources.NewHTTPClient(50*time.Millisecond)),
	)
	records, err := sky.Fetch(context.Background())
	require.Error(t, err)
	assert.Empty(t, records)
}

const aviationStackPayload = `{"data": [
	{"flight_status": "active", "airline": {"name": "Qantas"}, "flight": {"iata": "QF1", "icao": "QFA1"},
	 "departure": {"airport": "Sydney Kingsford Smith International Airport", "country": "Australia", "scheduled": "2024-03-01T09:15:00+00:00"},
	 "arrival": {"airport": "Melbourne Airport", "scheduled": 1709288100000}},
	{"flight_status": "landed", "airline": {"name": "Virgin Australia"}, "flight": {"iata": "", "icao": "VOZ2"},
	 "departure": {"airport": "Brisbane International", "scheduled": null},
	 "arrival": {"airport": "Perth Airport"}},
	{"flight_status": "scheduled", "airline": {"name": "Jetstar"}, "flight": {"iata": "JQ3"}, "departure": null, "arrival": {"airport": "X"}},
	{"flight_status": 7, "airline": "broken"}
]}`

func TestAviationStackFetchSchedule(t *testing.T) {
	srv := serve(t, http.StatusOK, aviationStackPayload, func(r *http.Request) {
		assert.Equal(t, "/v1/flights", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
	})

	as := sources.NewAviationStack("key", sources.WithBaseURL(srv.URL), sources.WithClock(clock))
	records, err := as.FetchSchedule(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "QF1", first.ID)
	assert.Equal(t, "Qantas", first.Airline)
	assert.Equal(t, "Australia", first.DepartureCountry)
	assert.Empty(t, first.ArrivalCountry)
	assert.Equal(t, "2024-03-01T09:15:00+00:00", first.DepartureTime)
	assert.Equal(t, "1709288100000", first.ArrivalTime)
	assert.Equal(t, models.StatusActive, first.Status)

	second := records[1]
	assert.Equal(t, "VOZ2", second.ID)
	assert.Empty(t, second.DepartureTime)
	assert.Equal(t, models.StatusUnknown, second.Status)
}

func TestAviationStackMissingKey(t *testing.T) {
	as := sources.NewAviationStack("")
	_, err := as.Fetch(context.Background())
	require.ErrorIs(t, err, sources.ErrMissingAPIKey)
}

func TestAviationStackUpstreamError(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"error": {"code": "usage_limit_reached", "message": "monthly limit"}}`, nil)

	as := sources.NewAviationStack("key", sources.WithBaseURL(srv.URL))
	_, err := as.FetchSchedule(context.Background(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage_limit_reached")
}

func TestParseBounds(t *testing.T) {
	b, err := sources.ParseBounds("-44, -10, 112, 154")
	require.NoError(t, err)
	require.Equal(t, sources.DefaultBounds(), b)
	require.Equal(t, geo.Latlong{Lat: -44, Long: 112}, b.SW)
	require.Equal(t, geo.Latlong{Lat: -10, Long: 154}, b.NE)
	require.True(t, b.Contains(geo.Latlong{Lat: -33.9, Long: 151.2}))
	require.False(t, b.Contains(geo.Latlong{Lat: 51.5, Long: -0.1}))

	_, err = sources.ParseBounds("1,2,3")
	require.Error(t, err)
	_, err = sources.ParseBounds("10,-10,0,1")
	require.Error(t, err)
	_, err = sources.ParseBounds("a,b,c,d")
	require.Error(t, err)
}
