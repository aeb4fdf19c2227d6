package simulation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utakatalp/assistant-manager-sim/internal/league"
	"github.com/utakatalp/assistant-manager-sim/internal/logger"
)

// premierLeague builds a 20-team league with spread ratings and the first
// `weeks` gameweeks of a double round robin.
func premierLeague(t *testing.T, weeks int) ([]league.Fixture, *league.Table) {
	t.Helper()

	codes := make([]string, 20)
	ratings := make(league.Ratings, 20)
	rows := make([]league.Team, 20)
	for i := range codes {
		codes[i] = fmt.Sprintf("T%02d", i+1)
		ratings[codes[i]] = league.Rating{
			Attack:  1.6 - 0.05*float64(i),
			Defence: 0.6 + 0.05*float64(i),
		}
		rows[i] = league.Team{Code: codes[i], Points: 40 - 2*i, GoalsFor: 30 - i, GoalsAgainst: 10 + i}
	}

	var fixtures []league.Fixture
	for _, f := range league.RoundRobin(codes, 1) {
		if f.Gameweek <= weeks {
			fixtures = append(fixtures, f)
		}
	}
	fixtures, err := league.AttachDistributions(fixtures, ratings, league.MaxGoals)
	require.NoError(t, err)

	tbl, err := league.NewTable(rows)
	require.NoError(t, err)
	return fixtures, tbl
}

func TestRunSingleRunMatchesSimulateSeason(t *testing.T) {
	fixtures, tbl := premierLeague(t, 4)

	p, err := NewRunner(1, 1, 77, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)

	seed := league.SeedSequence(77, 1)[0]
	season, err := SimulateSeason(league.NewRunRand(seed), fixtures, tbl)
	require.NoError(t, err)

	for _, team := range p.Teams {
		for _, gw := range p.Gameweeks {
			got, ok := p.Points(team, gw)
			require.True(t, ok)
			assert.Equal(t, float64(season.Points[team][gw]), got, "%s gw %d", team, gw)
		}
	}
	assert.Equal(t, 1, p.Runs)
}

func TestRunShape(t *testing.T) {
	fixtures, tbl := premierLeague(t, 5)

	for _, runs := range []int{1, 3, 20} {
		p, err := NewRunner(runs, 1, 5, logger.Discard()).Run(context.Background(), fixtures, tbl)
		require.NoError(t, err)

		assert.Len(t, p.Teams, 20)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, p.Gameweeks)
		require.Len(t, p.Mean, 20)
		for _, row := range p.Mean {
			assert.Len(t, row, 5)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	fixtures, tbl := premierLeague(t, 6)

	a, err := NewRunner(200, 1, 123, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)
	b, err := NewRunner(200, 1, 123, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)
	assert.Equal(t, a.Mean, b.Mean)

	c, err := NewRunner(200, 1, 124, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)
	assert.NotEqual(t, a.Mean, c.Mean)
}

func TestRunWorkersDoNotChangeResult(t *testing.T) {
	fixtures, tbl := premierLeague(t, 6)

	seq, err := NewRunner(150, 1, 9, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)
	par, err := NewRunner(150, 4, 9, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)

	// Per-run points are integers, so the sums are exact in any order.
	assert.Equal(t, seq.Mean, par.Mean)
	assert.Equal(t, 150, par.Runs)
	assert.Equal(t, seq.Outlook, par.Outlook)
}

func TestRunMoreWorkersThanRuns(t *testing.T) {
	fixtures, tbl := premierLeague(t, 2)
	p, err := NewRunner(2, 8, 1, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Runs)
}

func TestRunFavouritesScoreMore(t *testing.T) {
	fixtures, tbl := premierLeague(t, 10)
	p, err := NewRunner(300, 2, 31, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)

	assert.Greater(t, p.Total("T01"), p.Total("T20"))

	require.Len(t, p.Outlook, 20)
	ranks := make(map[string]float64)
	for _, o := range p.Outlook {
		ranks[o.Team] = o.MeanRank
	}
	assert.Less(t, ranks["T01"], ranks["T20"])
	assert.LessOrEqual(t, p.Outlook[0].MeanRank, p.Outlook[19].MeanRank)
}

func TestRunPadsMissingCells(t *testing.T) {
	tbl, err := league.NewTable([]league.Team{{Code: "AAA"}, {Code: "BBB"}, {Code: "CCC"}})
	require.NoError(t, err)

	fixtures := []league.Fixture{
		{Gameweek: 1, Home: "AAA", Away: "BBB", HomeGoals: fiveGoals, AwayGoals: noGoals},
		{Gameweek: 2, Home: "CCC", Away: "AAA", HomeGoals: fiveGoals, AwayGoals: noGoals},
	}
	p, err := NewRunner(3, 1, 1, logger.Discard()).Run(context.Background(), fixtures, tbl)
	require.NoError(t, err)

	got, ok := p.Points("CCC", 1)
	require.True(t, ok)
	assert.Equal(t, 0.0, got)

	got, _ = p.Points("AAA", 1)
	assert.Equal(t, 13.0, got)
	assert.Equal(t, 13.0, p.Total("AAA"))

	_, ok = p.Points("AAA", 3)
	assert.False(t, ok)
}

func TestRunEmptyHorizon(t *testing.T) {
	_, tbl := premierLeague(t, 1)
	p, err := NewRunner(10, 1, 1, logger.Discard()).Run(context.Background(), nil, tbl)

	assert.True(t, errors.Is(err, league.ErrEmptyHorizon))
	require.NotNil(t, p)
	assert.True(t, p.Empty())
}

func TestRunAbortsOnFailingRun(t *testing.T) {
	fixtures, tbl := premierLeague(t, 2)
	fixtures = append(fixtures, league.Fixture{
		Gameweek: 3, Home: "T01", Away: "XXX", HomeGoals: fiveGoals, AwayGoals: noGoals,
	})

	for _, workers := range []int{1, 3} {
		p, err := NewRunner(5, workers, 1, logger.Discard()).Run(context.Background(), fixtures, tbl)
		assert.Nil(t, p)
		assert.True(t, errors.Is(err, league.ErrUnknownTeam), "workers %d: %v", workers, err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	fixtures, tbl := premierLeague(t, 2)

	_, err := NewRunner(0, 1, 1, logger.Discard()).Run(context.Background(), fixtures, tbl)
	assert.Error(t, err)

	reversed := []league.Fixture{fixtures[len(fixtures)-1], fixtures[0]}
	_, err = NewRunner(1, 1, 1, logger.Discard()).Run(context.Background(), reversed, tbl)
	assert.True(t, errors.Is(err, league.ErrFixtureOrder))
}

func TestRunCancelled(t *testing.T) {
	fixtures, tbl := premierLeague(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 2} {
		_, err := NewRunner(10, workers, 1, logger.Discard()).Run(ctx, fixtures, tbl)
		assert.True(t, errors.Is(err, context.Canceled))
	}
}

func TestProjectionRows(t *testing.T) {
	p := &Projection{
		Teams:     []string{"ARS", "CHE"},
		Gameweeks: []int{7, 8},
		Mean:      [][]float64{{4, 6}, {1.5, 2}},
	}

	row, ok := p.Row("CHE")
	require.True(t, ok)
	assert.Equal(t, TeamProjection{Team: "CHE", Points: []float64{1.5, 2}, Total: 3.5}, row)

	_, ok = p.Row("LIV")
	assert.False(t, ok)
	assert.Len(t, p.Rows(), 2)
	assert.False(t, p.Empty())
	assert.True(t, (*Projection)(nil).Empty())
}
