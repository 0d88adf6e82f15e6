package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airinsights/backend/internal/aggregator"
	"github.com/airinsights/backend/internal/config"
	"github.com/airinsights/backend/internal/insights"
	"github.com/airinsights/backend/internal/logger"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	live, err := aggregator.NewLive(cfg.Sources, log)
	if err != nil {
		log.Error("init aggregator", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var gen insights.Generator = insights.Unavailable{}
	if cfg.GeminiKey != "" {
		gemini, err := insights.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			log.Error("init insights generator", slog.Any("err", err))
			os.Exit(1)
		}
		gen = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, /insights will fail")
	}

	srv := newServer(log, aggregator.NewSchedule(cfg.Sources, log), live, gen)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      45 * time.Second,
	}

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.Any("live_sources", live.Sources()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
