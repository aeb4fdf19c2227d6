// Package forecast gathers live league data, runs the Monte Carlo simulation
// and keeps the latest projection around for readers.
package forecast

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/assistant-manager-sim/internal/league"
	"github.com/utakatalp/assistant-manager-sim/internal/logger"
	"github.com/utakatalp/assistant-manager-sim/internal/simulation"
)

var (
	// ErrNotFound is returned when no forecast has been stored yet.
	ErrNotFound = errors.New("no forecast available")
	// ErrInvalidParams is returned for parameters the simulation cannot run with.
	ErrInvalidParams = errors.New("invalid forecast parameters")
)

// Params controls one forecast. Zero fields fall back to the service defaults.
type Params struct {
	Horizon  int    `json:"horizon"`
	Runs     int    `json:"runs"`
	Workers  int    `json:"workers"`
	Seed     uint64 `json:"seed"`
	MaxGoals int    `json:"max_goals"`
}

func (p Params) withDefaults(d Params) Params {
	if p.Horizon == 0 {
		p.Horizon = d.Horizon
	}
	if p.Runs == 0 {
		p.Runs = d.Runs
	}
	if p.Workers == 0 {
		p.Workers = d.Workers
	}
	if p.Seed == 0 {
		p.Seed = d.Seed
	}
	if p.MaxGoals == 0 {
		p.MaxGoals = d.MaxGoals
	}
	return p
}

func (p Params) validate() error {
	switch {
	case p.Horizon < 1:
		return fmt.Errorf("horizon %d: %w", p.Horizon, ErrInvalidParams)
	case p.Runs < 1:
		return fmt.Errorf("runs %d: %w", p.Runs, ErrInvalidParams)
	case p.Workers < 0:
		return fmt.Errorf("workers %d: %w", p.Workers, ErrInvalidParams)
	case p.MaxGoals < 0:
		return fmt.Errorf("max goals %d: %w", p.MaxGoals, ErrInvalidParams)
	}
	return nil
}

// Result is a finished forecast.
type Result struct {
	ID            uuid.UUID              `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	Horizon       int                    `json:"horizon"`
	StartGameweek int                    `json:"start_gameweek"`
	Projection    *simulation.Projection `json:"projection"`
}

// Inputs is everything a forecast needs from the outside world.
type Inputs struct {
	StartGameweek int
	Fixtures      []league.Fixture
	Table         []league.Team
	Ratings       league.Ratings
}

// Source loads the fixtures of the next horizon gameweeks together with the
// current table and team ratings.
type Source interface {
	Load(ctx context.Context, horizon int) (*Inputs, error)
}

// Repository persists forecasts.
type Repository interface {
	SaveForecast(ctx context.Context, r *Result) error
	LatestForecast(ctx context.Context) (*Result, error)
}

// Cache holds the latest forecast for fast reads.
type Cache interface {
	Set(ctx context.Context, r *Result, ttl time.Duration) error
	Latest(ctx context.Context) (*Result, error)
}

// ServiceConfig wires a Service. Repository and Cache are optional.
type ServiceConfig struct {
	Source     Source
	Repository Repository
	Cache      Cache
	CacheTTL   time.Duration
	Defaults   Params
	Logger     *logrus.Logger
}

// Service runs forecasts and serves the latest one.
type Service struct {
	source   Source
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	defaults Params
	logger   *logrus.Logger
	now      func() time.Time
}

// NewService creates a forecast service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("forecast service needs a source")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	return &Service{
		source:   cfg.Source,
		repo:     cfg.Repository,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		defaults: cfg.Defaults,
		logger:   log,
		now:      time.Now,
	}, nil
}

// Forecast loads fresh inputs, simulates the horizon and stores the result.
// A horizon with no fixtures left returns league.ErrEmptyHorizon.
func (s *Service) Forecast(ctx context.Context, p Params) (*Result, error) {
	p = p.withDefaults(s.defaults)
	if err := p.validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	log := s.logger.WithFields(logrus.Fields{
		"component":   "forecast",
		"forecast_id": id.String(),
	})

	if p.Seed == 0 {
		seed, err := newSeed()
		if err != nil {
			return nil, err
		}
		p.Seed = seed
		log.WithField("seed", seed).Info("Drew random simulation seed")
	}

	in, err := s.source.Load(ctx, p.Horizon)
	if err != nil {
		return nil, fmt.Errorf("loading forecast inputs: %w", err)
	}

	fixtures, err := league.AttachDistributions(in.Fixtures, in.Ratings, p.MaxGoals)
	if err != nil {
		return nil, err
	}
	table, err := league.NewTable(in.Table)
	if err != nil {
		return nil, fmt.Errorf("building league table: %w", err)
	}

	runner := simulation.NewRunner(p.Runs, p.Workers, p.Seed, s.logger)
	proj, err := runner.Run(ctx, fixtures, table)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:            id,
		CreatedAt:     s.now().UTC(),
		Horizon:       p.Horizon,
		StartGameweek: in.StartGameweek,
		Projection:    proj,
	}

	if s.repo != nil {
		if err := s.repo.SaveForecast(ctx, res); err != nil {
			return nil, fmt.Errorf("saving forecast: %w", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, res, s.cacheTTL); err != nil {
			log.WithError(err).Warn("Failed to cache forecast")
		}
	}

	log.WithFields(logrus.Fields{
		"start_gameweek": res.StartGameweek,
		"horizon":        res.Horizon,
		"runs":           proj.Runs,
	}).Info("Forecast completed")
	return res, nil
}

// Latest returns the most recent forecast, from the cache when possible.
func (s *Service) Latest(ctx context.Context) (*Result, error) {
	if s.cache != nil {
		res, err := s.cache.Latest(ctx)
		if err == nil {
			return res, nil
		}
		s.logger.WithError(err).Debug("Forecast cache miss")
	}

	if s.repo == nil {
		return nil, ErrNotFound
	}
	res, err := s.repo.LatestForecast(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, res, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to refill forecast cache")
		}
	}
	return res, nil
}

func newSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generating seed: %w", err)
	}
	seed := binary.LittleEndian.Uint64(b[:])
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}
