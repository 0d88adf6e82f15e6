package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airinsights/backend/internal/config"
)

func clearSources(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AVIATIONSTACK_API_KEY", "AVIATIONSTACK_URL", "OPENSKY_URL", "OPENSKY_USERNAME",
		"OPENSKY_PASSWORD", "FR24_URL", "REGION_BOUNDS", "REGION_COUNTRY", "FETCH_TIMEOUT",
		"SOURCE_DELAY", "FETCH_SEQUENTIAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAPIDefaults(t *testing.T) {
	clearSources(t)
	t.Setenv("API_BIND_ADDR", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODEL", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8000", cfg.BindAddr)
	require.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	require.Empty(t, cfg.GeminiKey)
	require.Equal(t, "-44,-10,112,154", cfg.RegionBounds)
	require.Equal(t, "Australia", cfg.RegionCountry)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout)
	require.Equal(t, time.Second, cfg.SourceDelay)
	require.False(t, cfg.Sequential)
}

func TestLoadAPIOverrides(t *testing.T) {
	clearSources(t)
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("AVIATIONSTACK_API_KEY", "secret")
	t.Setenv("OPENSKY_USERNAME", "user")
	t.Setenv("OPENSKY_PASSWORD", "pass")
	t.Setenv("REGION_BOUNDS", "50,60,-10,2")
	t.Setenv("REGION_COUNTRY", "United Kingdom")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("SOURCE_DELAY", "250ms")
	t.Setenv("FETCH_SEQUENTIAL", "true")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, "secret", cfg.AviationStackKey)
	require.Equal(t, "user", cfg.OpenSkyUser)
	require.Equal(t, "pass", cfg.OpenSkyPass)
	require.Equal(t, "50,60,-10,2", cfg.RegionBounds)
	require.Equal(t, "United Kingdom", cfg.RegionCountry)
	require.Equal(t, 3*time.Second, cfg.FetchTimeout)
	require.Equal(t, 250*time.Millisecond, cfg.SourceDelay)
	require.True(t, cfg.Sequential)
}

func TestLoadAPIRejectsHalfCredentials(t *testing.T) {
	clearSources(t)
	t.Setenv("OPENSKY_USERNAME", "user")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadPublisher(t *testing.T) {
	clearSources(t)
	t.Setenv("PUBLISH_INTERVAL", "30s")
	t.Setenv("PUBLISH_SINK", "")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "")

	cfg, err := config.LoadPublisher()
	require.NoError(t, err)

	require.Equal(t, 30*time.Second, cfg.Interval)
	require.Equal(t, config.SinkKafka, cfg.Sink)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, "flight_snapshots", cfg.KafkaTopic)
}

func TestLoadPublisherNATS(t *testing.T) {
	clearSources(t)
	t.Setenv("PUBLISH_SINK", "NATS")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("NATS_SUBJECT", "")

	cfg, err := config.LoadPublisher()
	require.NoError(t, err)

	require.Equal(t, config.SinkNATS, cfg.Sink)
	require.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	require.Equal(t, "flights.snapshots", cfg.NATSSubject)
}

func TestLoadPublisherRejectsUnknownSink(t *testing.T) {
	clearSources(t)
	t.Setenv("PUBLISH_SINK", "redis")

	_, err := config.LoadPublisher()
	require.Error(t, err)
}

func TestPublisherValidate(t *testing.T) {
	cfg := &config.Publisher{Interval: time.Minute, Sink: config.SinkKafka, KafkaBrokers: []string{"kafka:9092"}}
	require.NoError(t, cfg.Validate())

	cfg.Interval = 0
	require.Error(t, cfg.Validate())

	cfg.Interval = time.Minute
	cfg.Sink = "foo"
	require.Error(t, cfg.Validate())

	cfg.Sink = config.SinkNATS
	require.Error(t, cfg.Validate())
}
