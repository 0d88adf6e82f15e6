package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/airinsights/backend/internal/analytics"
	"github.com/airinsights/backend/internal/filter"
	"github.com/airinsights/backend/internal/insights"
	"github.com/airinsights/backend/internal/models"
)

const (
	rawScheduleLimit       = 50
	analyticsScheduleLimit = 100
	maxInsightsBody        = 5 << 20
	insightsTimeout        = 30 * time.Second

	scheduleDataSource = "AviationStack API"
	liveDataSource     = "FlightRadar24 & OpenSky APIs"
	filterNote         = "Real-time flight data from legitimate aviation APIs. Time filtering is limited with current data sources."
)

type scheduleSource interface {
	FetchSchedule(ctx context.Context, limit int) ([]models.FlightRecord, error)
}

type liveSource interface {
	Snapshot(ctx context.Context) []models.FlightRecord
}

type server struct {
	log      *slog.Logger
	schedule scheduleSource
	live     liveSource
	insights insights.Generator
	now      func() time.Time
}

func newServer(log *slog.Logger, schedule scheduleSource, live liveSource, gen insights.Generator) *server {
	return &server{log: log, schedule: schedule, live: live, insights: gen, now: time.Now}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverJSON)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/flights", s.handleFlights)
	r.Get("/scraped", s.handleScraped)
	r.Get("/flights/filter", s.handleFilter)
	r.Get("/flights/analytics", s.handleAnalytics)
	r.Get("/flights/trends", s.handleTrends)
	r.Get("/flights/dashboard", s.handleDashboard)
	r.Post("/insights", s.handleInsights)
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type timedError struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

type validationResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

type filterResponse struct {
	Count          int                   `json:"count"`
	TotalAvailable int                   `json:"total_available"`
	FiltersApplied filter.Applied        `json:"filters_applied"`
	Flights        []models.FlightRecord `json:"flights"`
	Timestamp      string                `json:"timestamp"`
	DataSource     string                `json:"data_source"`
	Note           string                `json:"note"`
}

type analyticsResponse struct {
	analytics.Overview
	Timestamp  string `json:"timestamp"`
	DataSource string `json:"data_source"`
}

type trendsResponse struct {
	analytics.Trends
	Timestamp  string `json:"timestamp"`
	DataSource string `json:"data_source"`
}

type insightsResponse struct {
	Insights string `json:"insights"`
}

func (s *server) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000000Z")
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := s.schedule.FetchSchedule(r.Context(), rawScheduleLimit)
	if err != nil {
		s.log.Warn("schedule fetch failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if len(flights) == 0 {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "No flight data available"})
		return
	}
	writeJSON(w, http.StatusOK, flights)
}

func (s *server) handleScraped(w http.ResponseWriter, r *http.Request) {
	flights := s.live.Snapshot(r.Context())
	if len(flights) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, timedError{
			Error:     "No real-time flight data available from FlightRadar24 or OpenSky APIs",
			Timestamp: s.timestamp(),
		})
		return
	}
	writeJSON(w, http.StatusOK, flights)
}

func (s *server) handleFilter(w http.ResponseWriter, r *http.Request) {
	spec, err := filter.Parse(r.URL.Query())
	if err != nil {
		var verr *filter.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, validationResponse{Error: "Validation errors", Details: verr.Details})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	flights := s.live.Snapshot(r.Context())
	if len(flights) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, timedError{
			Error:     "No flight data available from real-time sources",
			Timestamp: s.timestamp(),
		})
		return
	}

	matched, total := filter.Apply(flights, spec)
	writeJSON(w, http.StatusOK, filterResponse{
		Count:          len(matched),
		TotalAvailable: total,
		FiltersApplied: spec.Applied(),
		Flights:        matched,
		Timestamp:      s.timestamp(),
		DataSource:     liveDataSource,
		Note:           filterNote,
	})
}

// loadSchedule fetches the analytics input, answering 503 itself when there
// is nothing to analyze.
func (s *server) loadSchedule(w http.ResponseWriter, r *http.Request) ([]models.FlightRecord, bool) {
	flights, err := s.schedule.FetchSchedule(r.Context(), analyticsScheduleLimit)
	if err != nil {
		s.log.Warn("schedule fetch failed", slog.String("path", r.URL.Path), slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, timedError{
			Error:     "Failed to fetch data from AviationStack API: " + err.Error(),
			Timestamp: s.timestamp(),
		})
		return nil, false
	}
	if len(flights) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, timedError{
			Error:     "No real-time flight data available from AviationStack API",
			Timestamp: s.timestamp(),
		})
		return nil, false
	}
	return flights, true
}

func (s *server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	flights, ok := s.loadSchedule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{
		Overview:   analytics.Summarize(flights),
		Timestamp:  s.timestamp(),
		DataSource: scheduleDataSource,
	})
}

func (s *server) handleTrends(w http.ResponseWriter, r *http.Request) {
	flights, ok := s.loadSchedule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, trendsResponse{
		Trends:     analytics.SummarizeTrends(flights),
		Timestamp:  s.timestamp(),
		DataSource: scheduleDataSource,
	})
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	flights, ok := s.loadSchedule(w, r)
	if !ok {
		return
	}
	d := analytics.SummarizeDashboard(flights)
	d.DashboardSummary.LastUpdated = s.timestamp()
	d.DashboardSummary.DataSource = scheduleDataSource
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleInsights(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInsightsBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if !hasData(body) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing data"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), insightsTimeout)
	defer cancel()

	text, err := s.insights.Generate(ctx, json.RawMessage(body))
	if err != nil {
		s.log.Warn("insights generation failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, insightsResponse{Insights: text})
}

// hasData reports whether body is valid JSON carrying something other than
// null, an empty object, an empty array or an empty string.
func hasData(body []byte) bool {
	if len(strings.TrimSpace(string(body))) == 0 || !json.Valid(body) {
		return false
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case string:
		return t != ""
	default:
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
