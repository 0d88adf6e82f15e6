// Package aggregator fans out to every configured source and reconciles the
// results into a single deduplicated snapshot.
package aggregator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/skypies/geo"
	"golang.org/x/sync/errgroup"

	"github.com/airinsights/backend/internal/dedupe"
	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/sources"
)

// DefaultSourceTimeout bounds a source call when Options leave it unset.
const DefaultSourceTimeout = 10 * time.Second

// Options tune the fan-out.
type Options struct {
	// SourceTimeout bounds each source call.
	SourceTimeout time.Duration
	// Sequential fetches one source at a time, sleeping Delay between calls.
	Sequential bool
	Delay      time.Duration
	// Bounds, when set, restricts Snapshot to positioned records inside the box.
	Bounds *geo.LatlongBox
}

// Result is the outcome of one source fetch.
type Result struct {
	Source  string
	Records []models.FlightRecord
	Err     error
}

// Aggregator owns the list of sources.
type Aggregator struct {
	sources []sources.Source
	opts    Options
	log     *slog.Logger
}

// New creates an aggregator over srcs, in priority order.
func New(srcs []sources.Source, opts Options, logger *slog.Logger) *Aggregator {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{sources: srcs, opts: opts, log: logger}
}

// Sources returns the names of the configured sources in order.
func (a *Aggregator) Sources() []string {
	names := make([]string, 0, len(a.sources))
	for _, src := range a.sources {
		names = append(names, src.Name())
	}
	return names
}

// FetchAll runs every source and returns one Result per source, in source
// order. Failures are recorded on the Result and never abort the others.
func (a *Aggregator) FetchAll(ctx context.Context) []Result {
	results := make([]Result, len(a.sources))

	if a.opts.Sequential {
		for i, src := range a.sources {
			if i > 0 && a.opts.Delay > 0 {
				select {
				case <-time.After(a.opts.Delay):
				case <-ctx.Done():
				}
			}
			results[i] = a.fetchOne(ctx, src)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(max(len(a.sources), 1))
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Aggregator) fetchOne(ctx context.Context, src sources.Source) (res Result) {
	res.Source = src.Name()
	ctx, cancel := context.WithTimeout(ctx, a.opts.SourceTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			res.Records = nil
			res.Err = fmt.Errorf("source %s panicked: %v", res.Source, r)
		}
		if res.Err != nil {
			a.log.Warn("source fetch failed", slog.String("source", res.Source), slog.Any("err", res.Err))
		}
	}()

	start := time.Now()
	records, err := src.Fetch(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Records = records
	a.log.Debug("source fetched",
		slog.String("source", res.Source),
		slog.Int("records", len(records)),
		slog.Duration("took", time.Since(start)),
	)
	return res
}

// Merge deduplicates results by identity key. The first record seen for a key
// wins, in result order; records without a key are dropped.
func Merge(results []Result) []models.FlightRecord {
	total := 0
	for _, r := range results {
		total += len(r.Records)
	}

	seen := dedupe.NewSet(total)
	merged := make([]models.FlightRecord, 0, total)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, rec := range r.Records {
			if seen.Admit(rec.ID) {
				merged = append(merged, rec)
			}
		}
	}
	return merged
}

// MergeAll fetches every source and merges the outcome. An empty slice means
// no source produced data.
func (a *Aggregator) MergeAll(ctx context.Context) []models.FlightRecord {
	return Merge(a.FetchAll(ctx))
}

// Snapshot is MergeAll restricted to the configured bounds.
func (a *Aggregator) Snapshot(ctx context.Context) []models.FlightRecord {
	return a.Restrict(a.MergeAll(ctx))
}

// Restrict applies the configured bounds, if any, to merged records.
func (a *Aggregator) Restrict(records []models.FlightRecord) []models.FlightRecord {
	if a.opts.Bounds == nil {
		return records
	}
	return WithinBounds(records, *a.opts.Bounds)
}

// WithinBounds keeps records with a known position inside b.
func WithinBounds(records []models.FlightRecord, b geo.LatlongBox) []models.FlightRecord {
	out := make([]models.FlightRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasPosition() && b.Contains(rec.Position()) {
			out = append(out, rec)
		}
	}
	return out
}
