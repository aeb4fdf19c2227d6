package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/utakatalp/assistant-manager-sim/internal/league"
	"github.com/utakatalp/assistant-manager-sim/internal/logger"
)

// Runner repeats SimulateSeason and averages the results.
type Runner struct {
	runs    int
	workers int
	seed    uint64
	logger  *logrus.Logger
}

// NewRunner creates a Monte Carlo runner. Run i uses the i-th seed of
// league.SeedSequence(seed, runs), so results depend on the seed alone and
// not on the number of workers.
func NewRunner(runs, workers int, seed uint64, log *logrus.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{
		runs:    runs,
		workers: workers,
		seed:    seed,
		logger:  log,
	}
}

// Run simulates the fixtures Runs times from the initial table. Fixtures must
// already carry goal distributions. With no fixtures it returns an empty
// projection together with league.ErrEmptyHorizon. Any failing run aborts the
// whole batch.
func (r *Runner) Run(ctx context.Context, fixtures []league.Fixture, initial *league.Table) (*Projection, error) {
	g := newGrid(fixtures, initial)
	if len(fixtures) == 0 {
		return g.projection(r.seed), league.ErrEmptyHorizon
	}
	if r.runs <= 0 {
		return nil, fmt.Errorf("simulation count must be positive, got %d", r.runs)
	}
	if err := checkOrder(fixtures); err != nil {
		return nil, err
	}

	log := r.logger.WithFields(logrus.Fields{
		"runs":      r.runs,
		"workers":   r.workers,
		"seed":      r.seed,
		"fixtures":  len(fixtures),
		"gameweeks": len(g.gameweeks),
	})
	log.Info("Starting Monte Carlo simulation")
	start := time.Now()

	seeds := league.SeedSequence(r.seed, r.runs)

	var err error
	if r.workers <= 1 {
		err = runSequential(ctx, g, seeds, fixtures, initial)
	} else {
		err = runParallel(ctx, g, seeds, r.workers, fixtures, initial)
	}
	if err != nil {
		return nil, err
	}

	log.WithField("execution_time", time.Since(start)).Info("Monte Carlo simulation completed")
	return g.projection(r.seed), nil
}

func runSequential(ctx context.Context, g *grid, seeds []uint64, fixtures []league.Fixture, initial *league.Table) error {
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		season, err := SimulateSeason(league.NewRunRand(seed), fixtures, initial)
		if err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
		if err := g.add(season); err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
	}
	return nil
}

// runParallel hands run indices out round-robin. Each worker sums into its own
// grid and the partial grids are merged once every worker is done.
func runParallel(ctx context.Context, g *grid, seeds []uint64, workers int, fixtures []league.Fixture, initial *league.Table) error {
	if workers > len(seeds) {
		workers = len(seeds)
	}
	partials := make([]*grid, workers)
	eg, ctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		partials[w] = g.emptyCopy()
		eg.Go(func() error {
			part := partials[w]
			for i := w; i < len(seeds); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				season, err := SimulateSeason(league.NewRunRand(seeds[i]), fixtures, initial)
				if err != nil {
					return fmt.Errorf("run %d: %w", i, err)
				}
				if err := part.add(season); err != nil {
					return fmt.Errorf("run %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, p := range partials {
		g.merge(p)
	}
	return nil
}

func checkOrder(fixtures []league.Fixture) error {
	for i := 1; i < len(fixtures); i++ {
		if fixtures[i].Gameweek < fixtures[i-1].Gameweek {
			return fmt.Errorf("gameweek %d after %d: %w", fixtures[i].Gameweek, fixtures[i-1].Gameweek, league.ErrFixtureOrder)
		}
	}
	return nil
}

// Seed returns the base seed of the run sequence.
func (r *Runner) Seed() uint64 { return r.seed }
