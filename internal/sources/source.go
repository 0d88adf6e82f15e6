// Package sources contains one adapter per upstream flight feed. Every adapter
// converts its own payload into models.FlightRecord and reports upstream
// trouble as a recoverable error instead of failing the caller.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skypies/geo"

	"github.com/airinsights/backend/internal/models"
)

const (
	// DefaultTimeout bounds every outbound call.
	DefaultTimeout = 10 * time.Second

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	maxIdleConns        = 10
	maxConnsPerHost     = 5
	idleConnTimeout     = 90 * time.Second
	tlsHandshakeTimeout = 10 * time.Second

	knotsToKmh = 1.852
	msToKmh    = 3.6
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMissingAPIKey    = errors.New("missing api key")
)

// Source fetches raw records for the configured region and converts them.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.FlightRecord, error)
}

// DefaultBounds covers Australia.
func DefaultBounds() geo.LatlongBox {
	return geo.LatlongBox{
		SW: geo.Latlong{Lat: -44, Long: 112},
		NE: geo.Latlong{Lat: -10, Long: 154},
	}
}

// ParseBounds reads "minLat,maxLat,minLon,maxLon" into a box.
func ParseBounds(raw string) (geo.LatlongBox, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return geo.LatlongBox{}, fmt.Errorf("bounds %q: want 4 comma separated values", raw)
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geo.LatlongBox{}, fmt.Errorf("bounds %q: %w", raw, err)
		}
		vals[i] = v
	}
	if vals[0] > vals[1] || vals[2] > vals[3] {
		return geo.LatlongBox{}, fmt.Errorf("bounds %q: minimum exceeds maximum", raw)
	}
	return geo.LatlongBox{
		SW: geo.Latlong{Lat: vals[0], Long: vals[2]},
		NE: geo.Latlong{Lat: vals[1], Long: vals[3]},
	}, nil
}

// NewHTTPClient builds the pooled client shared by the adapters.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        maxIdleConns,
		MaxConnsPerHost:     maxConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Option configures an adapter.
type Option func(*options)

type options struct {
	client  *http.Client
	baseURL string
	log     *slog.Logger
	now     func() time.Time
}

// WithHTTPClient sets the client used for outbound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.client = hc }
}

// WithBaseURL overrides the upstream endpoint (useful for testing).
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(url, "/") }
}

// WithLogger sets the logger used to report skipped records.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock replaces the conversion timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(defaultBase string, opts []Option) options {
	o := options{baseURL: defaultBase}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = NewHTTPClient(DefaultTimeout)
	}
	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// getJSON executes req and decodes a 2xx JSON body into out.
func getJSON(client *http.Client, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func newRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	return req, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// convert scales a known value, keeping unknown as unknown.
func convert(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	out := round2(*v * factor)
	return &out
}
