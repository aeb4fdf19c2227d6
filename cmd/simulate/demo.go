package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/utakatalp/assistant-manager-sim/internal/forecast"
	"github.com/utakatalp/assistant-manager-sim/internal/league"
	"github.com/utakatalp/assistant-manager-sim/internal/logger"
)

// demoSource builds a synthetic season from the ratings file: a double round
// robin whose first half is played out at random, leaving the rest to
// forecast.
type demoSource struct {
	ratings  league.Ratings
	maxGoals int
	seed     uint64
	out      io.Writer
}

func (d *demoSource) Load(_ context.Context, horizon int) (*forecast.Inputs, error) {
	teams := make([]string, 0, len(d.ratings))
	for code := range d.ratings {
		teams = append(teams, code)
	}
	sort.Strings(teams)
	if len(teams) < 2 {
		return nil, fmt.Errorf("demo season needs at least two rated teams, got %d", len(teams))
	}

	schedule := league.RoundRobin(teams, 1)
	annotated, err := league.AttachDistributions(schedule, d.ratings, d.maxGoals)
	if err != nil {
		return nil, err
	}

	// The second leg starts halfway through the schedule.
	start := schedule[len(schedule)-1].Gameweek/2 + 1
	rng := league.NewRunRand(d.seed)

	var (
		played   []league.Result
		upcoming []league.Fixture
	)
	for i, f := range annotated {
		switch {
		case f.Gameweek < start:
			hg, ag := league.SampleMatch(rng, f.HomeGoals, f.AwayGoals)
			r := league.Result{Gameweek: f.Gameweek, Home: f.Home, Away: f.Away, HomeGoals: hg, AwayGoals: ag}
			logger.WithComponent("demo").WithField("gameweek", r.Gameweek).Debug(r.ScoreLine())
			played = append(played, r)
		case f.Gameweek < start+horizon:
			upcoming = append(upcoming, schedule[i])
		}
	}

	standings, err := league.BuildTable(teams, played)
	if err != nil {
		return nil, err
	}
	league.PrintTable(d.out, fmt.Sprintf("Demo table before gameweek %d", start), standings)
	fmt.Fprintln(d.out)

	return &forecast.Inputs{
		StartGameweek: start,
		Fixtures:      upcoming,
		Table:         standings.Rows(),
		Ratings:       d.ratings,
	}, nil
}
