package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/utakatalp/assistant-manager-sim/internal/forecast"
	"github.com/utakatalp/assistant-manager-sim/internal/simulation"
)

// Store wraps a Postgres connection and persists forecast runs.
type Store struct {
	DB *sql.DB
}

// NewStore opens a Postgres connection using the given connection string.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS forecasts (
		    id             UUID        PRIMARY KEY,
		    created_at     TIMESTAMPTZ NOT NULL,
		    horizon        INT         NOT NULL,
		    start_gameweek INT         NOT NULL,
		    runs           INT         NOT NULL,
		    seed           BIGINT      NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS forecasts_created_at_idx ON forecasts (created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS projections (
		    forecast_id UUID             NOT NULL REFERENCES forecasts(id) ON DELETE CASCADE,
		    team        TEXT             NOT NULL,
		    gameweek    INT              NOT NULL,
		    mean_points DOUBLE PRECISION NOT NULL,
		    PRIMARY KEY (forecast_id, team, gameweek)
		);`,
		`CREATE TABLE IF NOT EXISTS outlooks (
		    forecast_id UUID             NOT NULL REFERENCES forecasts(id) ON DELETE CASCADE,
		    position    INT              NOT NULL,
		    team        TEXT             NOT NULL,
		    mean_points DOUBLE PRECISION NOT NULL,
		    mean_rank   DOUBLE PRECISION NOT NULL,
		    PRIMARY KEY (forecast_id, team)
		);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// SaveForecast writes a forecast and all of its cells in one transaction.
func (s *Store) SaveForecast(ctx context.Context, r *forecast.Result) error {
	p := r.Projection
	if p == nil {
		return errors.New("saving forecast: no projection")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveForecast tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
      INSERT INTO forecasts (id, created_at, horizon, start_gameweek, runs, seed)
      VALUES ($1, $2, $3, $4, $5, $6)
    `
	// The seed is stored bit for bit in a signed column.
	if _, err := tx.ExecContext(ctx, q,
		r.ID, r.CreatedAt, r.Horizon, r.StartGameweek, p.Runs, int64(p.Seed),
	); err != nil {
		return fmt.Errorf("inserting forecast %s: %w", r.ID, err)
	}

	if err := copyRows(ctx, tx, "projections",
		[]string{"forecast_id", "team", "gameweek", "mean_points"},
		func(add func(...any) error) error {
			for ti, team := range p.Teams {
				for wi, gw := range p.Gameweeks {
					if err := add(r.ID, team, gw, p.Mean[ti][wi]); err != nil {
						return err
					}
				}
			}
			return nil
		}); err != nil {
		return fmt.Errorf("inserting projections for %s: %w", r.ID, err)
	}

	if err := copyRows(ctx, tx, "outlooks",
		[]string{"forecast_id", "position", "team", "mean_points", "mean_rank"},
		func(add func(...any) error) error {
			for i, o := range p.Outlook {
				if err := add(r.ID, i+1, o.Team, o.MeanPoints, o.MeanRank); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return fmt.Errorf("inserting outlook for %s: %w", r.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveForecast tx: %w", err)
	}
	return nil
}

// copyRows bulk loads rows with COPY FROM STDIN.
func copyRows(ctx context.Context, tx *sql.Tx, table string, columns []string, fill func(add func(...any) error) error) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return err
	}
	defer stmt.Close()

	add := func(args ...any) error {
		_, err := stmt.ExecContext(ctx, args...)
		return err
	}
	if err := fill(add); err != nil {
		return err
	}
	// flush
	_, err = stmt.ExecContext(ctx)
	return err
}

// LatestForecast loads the most recently created forecast.
func (s *Store) LatestForecast(ctx context.Context) (*forecast.Result, error) {
	const q = `
    SELECT id, created_at, horizon, start_gameweek, runs, seed
    FROM forecasts
    ORDER BY created_at DESC
    LIMIT 1
    `
	var (
		r       forecast.Result
		runs    int
		seed    int64
		created time.Time
	)
	err := s.DB.QueryRowContext(ctx, q).Scan(&r.ID, &created, &r.Horizon, &r.StartGameweek, &runs, &seed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, forecast.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest forecast: %w", err)
	}
	r.CreatedAt = created.UTC()

	cells, err := s.loadCells(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	outlook, err := s.loadOutlook(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	p := projectionFromCells(cells)
	p.Runs = runs
	p.Seed = uint64(seed)
	p.Outlook = outlook
	r.Projection = p
	return &r, nil
}

type cell struct {
	team     string
	gameweek int
	points   float64
}

func (s *Store) loadCells(ctx context.Context, id uuid.UUID) ([]cell, error) {
	const q = `
    SELECT team, gameweek, mean_points
    FROM projections
    WHERE forecast_id = $1
    ORDER BY team, gameweek
    `
	rows, err := s.DB.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("querying projections: %w", err)
	}
	defer rows.Close()

	var cells []cell
	for rows.Next() {
		var c cell
		if err := rows.Scan(&c.team, &c.gameweek, &c.points); err != nil {
			return nil, fmt.Errorf("scanning projection row: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projection rows: %w", err)
	}
	return cells, nil
}

func (s *Store) loadOutlook(ctx context.Context, id uuid.UUID) ([]simulation.TeamOutlook, error) {
	const q = `
    SELECT team, mean_points, mean_rank
    FROM outlooks
    WHERE forecast_id = $1
    ORDER BY position
    `
	rows, err := s.DB.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("querying outlook: %w", err)
	}
	defer rows.Close()

	var outlook []simulation.TeamOutlook
	for rows.Next() {
		var o simulation.TeamOutlook
		if err := rows.Scan(&o.Team, &o.MeanPoints, &o.MeanRank); err != nil {
			return nil, fmt.Errorf("scanning outlook row: %w", err)
		}
		outlook = append(outlook, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outlook rows: %w", err)
	}
	return outlook, nil
}

// projectionFromCells rebuilds the team by gameweek grid from stored cells.
func projectionFromCells(cells []cell) *simulation.Projection {
	teamIdx := make(map[string]int)
	weekIdx := make(map[int]int)
	p := &simulation.Projection{}
	for _, c := range cells {
		if _, ok := teamIdx[c.team]; !ok {
			teamIdx[c.team] = 0
			p.Teams = append(p.Teams, c.team)
		}
		if _, ok := weekIdx[c.gameweek]; !ok {
			weekIdx[c.gameweek] = 0
			p.Gameweeks = append(p.Gameweeks, c.gameweek)
		}
	}
	sort.Strings(p.Teams)
	sort.Ints(p.Gameweeks)
	for i, t := range p.Teams {
		teamIdx[t] = i
	}
	for i, w := range p.Gameweeks {
		weekIdx[w] = i
	}

	p.Mean = make([][]float64, len(p.Teams))
	for i := range p.Mean {
		p.Mean[i] = make([]float64, len(p.Gameweeks))
	}
	for _, c := range cells {
		p.Mean[teamIdx[c.team]][weekIdx[c.gameweek]] = c.points
	}
	return p
}
