package fpl

import (
	"errors"
	"fmt"
	"sort"

	"github.com/utakatalp/assistant-manager-sim/internal/league"
)

// ErrSeasonOver is returned when every gameweek has finished.
var ErrSeasonOver = errors.New("no upcoming gameweek found, come back next season")

// TeamAbbreviations maps FPL team ids to short codes such as "ARS".
func TeamAbbreviations(b *Bootstrap) map[int]string {
	abbr := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		abbr[t.ID] = t.ShortName
	}
	return abbr
}

// NextGameweek returns the id of the first gameweek that has not finished.
func NextGameweek(b *Bootstrap) (int, error) {
	for _, e := range b.Events {
		if !e.Finished {
			return e.ID, nil
		}
	}
	return 0, ErrSeasonOver
}

// UpcomingFixtures returns the unplayed fixtures of gameweeks
// start..start+horizon-1, keyed by team code. Postponed fixtures without a
// new date are skipped.
func UpcomingFixtures(raw []RawFixture, start, horizon int, abbr map[int]string) ([]league.Fixture, error) {
	end := start + horizon - 1

	var fixtures []league.Fixture
	for _, f := range raw {
		if f.Event == nil {
			continue
		}
		gw := *f.Event
		if gw < start {
			continue
		}
		if gw > end {
			break
		}
		if f.Finished {
			continue
		}

		home, away, err := codes(f, abbr)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, league.Fixture{Gameweek: gw, Home: home, Away: away})
	}

	// Fixtures come in kickoff order, so a rescheduled fixture can sit in an
	// earlier gameweek than the one before it. Scanning stops at the first
	// fixture past the horizon, so in-horizon fixtures listed after it are not
	// returned; sorting only restores gameweek order among those kept.
	sort.SliceStable(fixtures, func(i, j int) bool {
		return fixtures[i].Gameweek < fixtures[j].Gameweek
	})
	return fixtures, nil
}

// ConstructTable builds the current standings from the finished fixtures.
// Every team in the bootstrap data gets a row. Fixtures are read in kickoff
// order up to the first unfinished one.
func ConstructTable(raw []RawFixture, b *Bootstrap) (league.Standings, error) {
	abbr := TeamAbbreviations(b)
	teams := make([]string, 0, len(b.Teams))
	for _, t := range b.Teams {
		teams = append(teams, t.ShortName)
	}

	var results []league.Result
	for _, f := range raw {
		if f.Event == nil {
			continue
		}
		if !f.Finished {
			break
		}
		if f.TeamHScore == nil || f.TeamAScore == nil {
			return league.Standings{}, fmt.Errorf("finished fixture %d v %d in gameweek %d has no score", f.TeamH, f.TeamA, *f.Event)
		}

		home, away, err := codes(f, abbr)
		if err != nil {
			return league.Standings{}, err
		}
		results = append(results, league.Result{
			Gameweek:  *f.Event,
			Home:      home,
			Away:      away,
			HomeGoals: *f.TeamHScore,
			AwayGoals: *f.TeamAScore,
		})
	}

	standings, err := league.BuildTable(teams, results)
	if err != nil {
		return league.Standings{}, fmt.Errorf("constructing league table: %w", err)
	}
	return standings, nil
}

func codes(f RawFixture, abbr map[int]string) (home, away string, err error) {
	home, ok := abbr[f.TeamH]
	if !ok {
		return "", "", fmt.Errorf("no abbreviation for team id %d", f.TeamH)
	}
	away, ok = abbr[f.TeamA]
	if !ok {
		return "", "", fmt.Errorf("no abbreviation for team id %d", f.TeamA)
	}
	return home, away, nil
}
