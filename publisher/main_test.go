package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/airinsights/backend/internal/aggregator"
	"github.com/airinsights/backend/internal/config"
	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/publish"
)

type stubSnapshotter struct {
	results []aggregator.Result
}

func (s stubSnapshotter) FetchAll(context.Context) []aggregator.Result { return s.results }

func (s stubSnapshotter) Restrict(records []models.FlightRecord) []models.FlightRecord {
	return records
}

func (s stubSnapshotter) Sources() []string {
	names := make([]string, 0, len(s.results))
	for _, r := range s.results {
		names = append(names, r.Source)
	}
	return names
}

type stubSink struct {
	events []publish.SnapshotEvent
	err    error
}

func (s *stubSink) Publish(_ context.Context, event publish.SnapshotEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubSink) Close() error { return nil }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOncePublishesMergedSnapshot(t *testing.T) {
	agg := stubSnapshotter{results: []aggregator.Result{
		{Source: "flightradar24", Records: []models.FlightRecord{{ID: "a"}, {ID: "b"}}},
		{Source: "opensky", Records: []models.FlightRecord{{ID: "b"}, {ID: "c"}}},
	}}
	sink := &stubSink{}

	require.NoError(t, runOnce(context.Background(), discard(), agg, sink))
	require.Len(t, sink.events, 1)

	event := sink.events[0]
	require.Equal(t, 3, event.Count)
	require.Equal(t, []string{"flightradar24", "opensky"}, event.Sources)
	require.Equal(t, "a", event.Flights[0].ID)
	require.Equal(t, "c", event.Flights[2].ID)
}

func TestRunOnceSkipsFailedSources(t *testing.T) {
	agg := stubSnapshotter{results: []aggregator.Result{
		{Source: "flightradar24", Err: errors.New("502")},
		{Source: "opensky", Records: []models.FlightRecord{{ID: "c"}}},
	}}
	sink := &stubSink{}

	require.NoError(t, runOnce(context.Background(), discard(), agg, sink))
	require.Equal(t, []string{"opensky"}, sink.events[0].Sources)
}

func TestRunOnceSkipsEmptySnapshot(t *testing.T) {
	agg := stubSnapshotter{results: []aggregator.Result{{Source: "opensky"}}}
	sink := &stubSink{}

	require.NoError(t, runOnce(context.Background(), discard(), agg, sink))
	require.Empty(t, sink.events)
}

func TestRunOnceReturnsSinkError(t *testing.T) {
	agg := stubSnapshotter{results: []aggregator.Result{
		{Source: "opensky", Records: []models.FlightRecord{{ID: "c"}}},
	}}
	boom := errors.New("broker down")

	err := runOnce(context.Background(), discard(), agg, &stubSink{err: boom})
	require.ErrorIs(t, err, boom)
}

func publisherConfig() *config.Publisher {
	return &config.Publisher{
		Interval:     time.Minute,
		Sink:         config.SinkKafka,
		KafkaBrokers: []string{"kafka:9092"},
		NATSSubject:  "flights.snapshots",
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := publisherConfig()
	once, err := applyFlags(cfg, []string{"--once", "--interval=30s", "--sink=NATS"})
	require.NoError(t, err)
	require.True(t, once)
	require.Equal(t, 30*time.Second, cfg.Interval)
	require.Equal(t, config.SinkNATS, cfg.Sink)

	cfg = publisherConfig()
	once, err = applyFlags(cfg, nil)
	require.NoError(t, err)
	require.False(t, once)
	require.Equal(t, time.Minute, cfg.Interval)
}

func TestApplyFlagsRevalidates(t *testing.T) {
	for _, args := range [][]string{
		{"--interval=0s"},
		{"--interval=-5s"},
		{"--sink=foo"},
		{"--unknown"},
	} {
		_, err := applyFlags(publisherConfig(), args)
		require.Error(t, err, "args %v", args)
	}
}

func TestConnectSinkRejectsUnknownSink(t *testing.T) {
	cfg := publisherConfig()
	cfg.Sink = "foo"
	_, err := connectSink(context.Background(), discard(), cfg)
	require.Error(t, err)
}
