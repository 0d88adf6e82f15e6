package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/airinsights/backend/internal/aggregator"
	"github.com/airinsights/backend/internal/config"
	"github.com/airinsights/backend/internal/logger"
	"github.com/airinsights/backend/internal/models"
	"github.com/airinsights/backend/internal/publish"
)

const (
	publishTimeout = 30 * time.Second
	maxRetries     = 10
	maxRetryDelay  = 30 * time.Second
)

type snapshotter interface {
	FetchAll(ctx context.Context) []aggregator.Result
	Restrict(records []models.FlightRecord) []models.FlightRecord
	Sources() []string
}

func main() {
	log := logger.New("publisher")
	cfg, err := config.LoadPublisher()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	once, err := applyFlags(cfg, os.Args[1:])
	if err != nil {
		log.Error("invalid flags", slog.Any("err", err))
		os.Exit(2)
	}

	agg, err := aggregator.NewLive(cfg.Sources, log)
	if err != nil {
		log.Error("init aggregator", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	sink, err := connectSink(ctx, log, cfg)
	if err != nil {
		log.Error("connect sink", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn("close sink", slog.Any("err", err))
		}
	}()

	if once {
		if err := runOnce(ctx, log, agg, sink); err != nil {
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("publisher running",
		slog.String("sink", cfg.Sink),
		slog.Duration("interval", cfg.Interval),
		slog.Any("sources", agg.Sources()),
	)

	_ = runOnce(ctx, log, agg, sink)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			_ = runOnce(ctx, log, agg, sink)
		}
	}
}

// applyFlags overrides cfg from the command line and validates the result.
func applyFlags(cfg *config.Publisher, args []string) (bool, error) {
	fs := pflag.NewFlagSet("publisher", pflag.ContinueOnError)
	once := fs.Bool("once", false, "publish a single snapshot and exit")
	interval := fs.Duration("interval", cfg.Interval, "time between snapshots")
	sinkName := fs.String("sink", cfg.Sink, "snapshot sink: kafka or nats")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	cfg.Interval, cfg.Sink = *interval, strings.ToLower(strings.TrimSpace(*sinkName))
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	return *once, nil
}

// connectSink retries with exponential backoff; brokers often start after us.
func connectSink(ctx context.Context, log *slog.Logger, cfg *config.Publisher) (publish.Sink, error) {
	switch cfg.Sink {
	case config.SinkKafka:
		return publish.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.SinkNATS:
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}

	retryDelay := 2 * time.Second
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		sink, err := publish.NewNATSSink(cfg.NATSURL, cfg.NATSSubject)
		if err == nil {
			log.Info("connected to nats", slog.String("url", cfg.NATSURL))
			return sink, nil
		}
		lastErr = err
		log.Warn("nats connect failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", maxRetries),
			slog.Duration("retry_in", retryDelay),
		)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
	return nil, lastErr
}

func runOnce(ctx context.Context, log *slog.Logger, agg snapshotter, sink publish.Sink) error {
	subCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	results := agg.FetchAll(subCtx)
	flights := agg.Restrict(aggregator.Merge(results))

	contributing := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err == nil && len(res.Records) > 0 {
			contributing = append(contributing, res.Source)
		}
	}

	if len(flights) == 0 {
		log.Warn("no live flights this cycle, skipping publish", slog.Any("sources", agg.Sources()))
		return nil
	}

	event := publish.NewSnapshotEvent(flights, contributing, time.Now())
	if err := sink.Publish(subCtx, event); err != nil {
		log.Warn("publish failed (will retry on next interval)", slog.Any("err", err))
		return err
	}

	log.Info("snapshot published",
		slog.String("id", event.ID),
		slog.Int("flights", event.Count),
		slog.Any("sources", contributing),
	)
	return nil
}
