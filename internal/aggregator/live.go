package aggregator

import (
	"fmt"
	"log/slog"

	"github.com/airinsights/backend/internal/config"
	"github.com/airinsights/backend/internal/sources"
)

// NewLive builds the position-feed aggregator from configuration:
// FlightRadar24 first, then OpenSky, restricted to the configured region.
func NewLive(cfg config.Sources, logger *slog.Logger) (*Aggregator, error) {
	bounds, err := sources.ParseBounds(cfg.RegionBounds)
	if err != nil {
		return nil, fmt.Errorf("REGION_BOUNDS: %w", err)
	}
	hc := sources.NewHTTPClient(cfg.FetchTimeout)

	fr24 := sources.NewFR24(bounds, cfg.RegionCountry,
		sources.WithHTTPClient(hc),
		sources.WithBaseURL(cfg.FR24URL),
		sources.WithLogger(logger),
	)
	sky := sources.NewOpenSky(bounds, cfg.OpenSkyUser, cfg.OpenSkyPass,
		sources.WithHTTPClient(hc),
		sources.WithBaseURL(cfg.OpenSkyURL),
		sources.WithLogger(logger),
	)

	return New([]sources.Source{fr24, sky}, Options{
		SourceTimeout: cfg.FetchTimeout,
		Sequential:    cfg.Sequential,
		Delay:         cfg.SourceDelay,
		Bounds:        &bounds,
	}, logger), nil
}

// NewSchedule builds the AviationStack schedule source from configuration.
func NewSchedule(cfg config.Sources, logger *slog.Logger) *sources.AviationStack {
	return sources.NewAviationStack(cfg.AviationStackKey,
		sources.WithHTTPClient(sources.NewHTTPClient(cfg.FetchTimeout)),
		sources.WithBaseURL(cfg.AviationStackURL),
		sources.WithLogger(logger),
	)
}
