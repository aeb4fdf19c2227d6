// Package api serves forecasts over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/assistant-manager-sim/internal/forecast"
	"github.com/utakatalp/assistant-manager-sim/internal/fpl"
	"github.com/utakatalp/assistant-manager-sim/internal/league"
	"github.com/utakatalp/assistant-manager-sim/internal/simulation"
)

// Forecaster runs and serves forecasts.
type Forecaster interface {
	Forecast(ctx context.Context, p forecast.Params) (*forecast.Result, error)
	Latest(ctx context.Context) (*forecast.Result, error)
}

// Server holds the HTTP handlers.
type Server struct {
	forecasts Forecaster
	logger    *logrus.Logger
	router    *mux.Router
}

// NewServer builds the router.
func NewServer(forecasts Forecaster, logger *logrus.Logger) *Server {
	s := &Server{
		forecasts: forecasts,
		logger:    logger,
		router:    mux.NewRouter(),
	}
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.HandleFunc("/projections", s.latestProjection).Methods(http.MethodGet)
	s.router.HandleFunc("/projections/{team}", s.teamProjection).Methods(http.MethodGet)
	s.router.HandleFunc("/forecasts", s.createForecast).Methods(http.MethodPost)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// MaxRuns caps the simulations a single request may ask for.
const MaxRuns = 100000

// forecastRequest is the optional body of POST /forecasts. Omitted fields use
// the server defaults.
type forecastRequest struct {
	Horizon int    `json:"horizon"`
	Runs    int    `json:"runs"`
	Seed    uint64 `json:"seed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type teamResponse struct {
	ForecastID    string                    `json:"forecast_id"`
	StartGameweek int                       `json:"start_gameweek"`
	Gameweeks     []int                     `json:"gameweeks"`
	Projection    simulation.TeamProjection `json:"projection"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) latestProjection(w http.ResponseWriter, r *http.Request) {
	res, err := s.forecasts.Latest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) teamProjection(w http.ResponseWriter, r *http.Request) {
	team := strings.ToUpper(mux.Vars(r)["team"])

	res, err := s.forecasts.Latest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	row, ok := res.Projection.Row(team)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown team " + team})
		return
	}
	s.writeJSON(w, http.StatusOK, teamResponse{
		ForecastID:    res.ID.String(),
		StartGameweek: res.StartGameweek,
		Gameweeks:     res.Projection.Gameweeks,
		Projection:    row,
	})
}

func (s *Server) createForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Runs > MaxRuns {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("runs must be at most %d", MaxRuns)})
		return
	}

	p := forecast.Params{Horizon: req.Horizon, Runs: req.Runs, Seed: req.Seed}

	res, err := s.forecasts.Forecast(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, forecast.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, forecast.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrEmptyHorizon), errors.Is(err, fpl.ErrSeasonOver):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		s.writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Warn("Failed to write response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("Handled request")
	})
}
