package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sources holds the upstream parameters shared by every service that fetches flights.
type Sources struct {
	AviationStackKey string
	AviationStackURL string
	OpenSkyURL       string
	OpenSkyUser      string
	OpenSkyPass      string
	FR24URL          string
	RegionBounds     string
	RegionCountry    string
	FetchTimeout     time.Duration
	SourceDelay      time.Duration
	Sequential       bool
}

// API describes HTTP-layer configuration.
type API struct {
	Sources
	BindAddr    string
	GeminiKey   string
	GeminiModel string
}

// Publisher configures the snapshot publishing loop.
type Publisher struct {
	Sources
	Interval     time.Duration
	Sink         string
	KafkaBrokers []string
	KafkaTopic   string
	NATSURL      string
	NATSSubject  string
}

const (
	SinkKafka = "kafka"
	SinkNATS  = "nats"
)

func loadSources() (Sources, error) {
	s := Sources{
		AviationStackKey: getEnv("AVIATIONSTACK_API_KEY", ""),
		AviationStackURL: getEnv("AVIATIONSTACK_URL", "http://api.aviationstack.com"),
		OpenSkyURL:       getEnv("OPENSKY_URL", "https://opensky-network.org/api"),
		OpenSkyUser:      getEnv("OPENSKY_USERNAME", ""),
		OpenSkyPass:      getEnv("OPENSKY_PASSWORD", ""),
		FR24URL:          getEnv("FR24_URL", "https://data-live.flightradar24.com"),
		RegionBounds:     getEnv("REGION_BOUNDS", "-44,-10,112,154"),
		RegionCountry:    getEnv("REGION_COUNTRY", "Australia"),
		FetchTimeout:     getDuration("FETCH_TIMEOUT", "10s"),
		SourceDelay:      getDuration("SOURCE_DELAY", "1s"),
		Sequential:       getBool("FETCH_SEQUENTIAL", false),
	}

	if s.FetchTimeout <= 0 {
		return Sources{}, fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if s.SourceDelay < 0 {
		return Sources{}, fmt.Errorf("SOURCE_DELAY cannot be negative")
	}
	if (s.OpenSkyUser == "") != (s.OpenSkyPass == "") {
		return Sources{}, fmt.Errorf("OPENSKY_USERNAME and OPENSKY_PASSWORD must be set together")
	}

	return s, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	src, err := loadSources()
	if err != nil {
		return nil, err
	}
	c := &API{
		Sources:     src,
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8000"),
		GeminiKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}

	if strings.TrimSpace(c.BindAddr) == "" {
		return nil, fmt.Errorf("API_BIND_ADDR cannot be empty")
	}

	return c, nil
}

// LoadPublisher builds a Publisher config from environment variables.
func LoadPublisher() (*Publisher, error) {
	src, err := loadSources()
	if err != nil {
		return nil, err
	}
	c := &Publisher{
		Sources:      src,
		Interval:     getDuration("PUBLISH_INTERVAL", "1m"),
		Sink:         strings.ToLower(getEnv("PUBLISH_SINK", SinkKafka)),
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "flight_snapshots"),
		NATSURL:      getEnv("NATS_URL", "nats://nats:4222"),
		NATSSubject:  getEnv("NATS_SUBJECT", "flights.snapshots"),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks the interval and sink settings. Call it again after
// command-line overrides.
func (c *Publisher) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("PUBLISH_INTERVAL must be positive")
	}

	switch c.Sink {
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
		}
	case SinkNATS:
		if c.NATSSubject == "" {
			return fmt.Errorf("NATS_SUBJECT cannot be empty")
		}
	default:
		return fmt.Errorf("PUBLISH_SINK must be %q or %q, got %q", SinkKafka, SinkNATS, c.Sink)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
