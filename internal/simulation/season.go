package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/utakatalp/assistant-manager-sim/internal/league"
)

// SeasonPoints holds assistant manager points by team and gameweek for one
// simulated run. A team without a fixture in a gameweek has no entry for it.
type SeasonPoints map[string]map[int]int

func (p SeasonPoints) add(team string, gameweek, points int) {
	weeks, ok := p[team]
	if !ok {
		weeks = make(map[int]int)
		p[team] = weeks
	}
	weeks[gameweek] += points
}

// Season is the outcome of one simulated run over the horizon.
type Season struct {
	Points SeasonPoints
	// Final is the ranked table after the last fixture.
	Final league.Standings
}

type scoreFunc func(teamRank, oppoRank, goalsFor, goalsAgainst int) int

// SimulateSeason plays every fixture once, in order, on a copy of the initial
// table. Ranks used for scoring are frozen at the start of each gameweek, so
// two fixtures in the same week see the same table however they're ordered.
func SimulateSeason(rng *rand.Rand, fixtures []league.Fixture, initial *league.Table) (*Season, error) {
	return simulateSeason(rng, fixtures, initial, league.ManagerPoints)
}

func simulateSeason(rng *rand.Rand, fixtures []league.Fixture, initial *league.Table, score scoreFunc) (*Season, error) {
	if len(fixtures) == 0 {
		return nil, league.ErrEmptyHorizon
	}

	live := initial.Clone()
	points := make(SeasonPoints)

	var (
		gameweek int
		started  bool
		frozen   league.Standings
	)
	for _, f := range fixtures {
		if !f.Annotated() {
			return nil, fmt.Errorf("gameweek %d %s v %s has no goal distribution: %w",
				f.Gameweek, f.Home, f.Away, league.ErrInvalidDistribution)
		}
		if started && f.Gameweek < gameweek {
			return nil, fmt.Errorf("gameweek %d after %d: %w", f.Gameweek, gameweek, league.ErrFixtureOrder)
		}
		if !started || f.Gameweek != gameweek {
			gameweek, started = f.Gameweek, true
			frozen = live.SnapshotRanked()
		}

		homeGoals, awayGoals := league.SampleMatch(rng, f.HomeGoals, f.AwayGoals)
		if err := live.ApplyResult(f.Home, f.Away, homeGoals, awayGoals); err != nil {
			return nil, fmt.Errorf("gameweek %d: %w", f.Gameweek, err)
		}

		homeRank, _ := frozen.Rank(f.Home)
		awayRank, _ := frozen.Rank(f.Away)
		points.add(f.Home, f.Gameweek, score(homeRank, awayRank, homeGoals, awayGoals))
		points.add(f.Away, f.Gameweek, score(awayRank, homeRank, awayGoals, homeGoals))
	}

	return &Season{Points: points, Final: live.SnapshotRanked()}, nil
}
