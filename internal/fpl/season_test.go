package fpl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func played(gw, home, away, hg, ag int) RawFixture {
	return RawFixture{Event: intp(gw), Finished: true, TeamH: home, TeamA: away, TeamHScore: intp(hg), TeamAScore: intp(ag)}
}

func unplayed(gw, home, away int) RawFixture {
	return RawFixture{Event: intp(gw), TeamH: home, TeamA: away}
}

func postponed(home, away int) RawFixture {
	return RawFixture{TeamH: home, TeamA: away}
}

func fourTeams() *Bootstrap {
	return &Bootstrap{
		Events: []Event{{ID: 1, Finished: true}, {ID: 2, Finished: true}, {ID: 3}, {ID: 4}},
		Teams: []TeamInfo{
			{ID: 1, ShortName: "ARS"},
			{ID: 2, ShortName: "AVL"},
			{ID: 3, ShortName: "BOU"},
			{ID: 4, ShortName: "BRE"},
		},
	}
}

func TestTeamAbbreviations(t *testing.T) {
	abbr := TeamAbbreviations(fourTeams())
	assert.Equal(t, map[int]string{1: "ARS", 2: "AVL", 3: "BOU", 4: "BRE"}, abbr)
}

func TestNextGameweek(t *testing.T) {
	gw, err := NextGameweek(fourTeams())
	require.NoError(t, err)
	assert.Equal(t, 3, gw)

	done := &Bootstrap{Events: []Event{{ID: 1, Finished: true}, {ID: 2, Finished: true}}}
	_, err = NextGameweek(done)
	assert.True(t, errors.Is(err, ErrSeasonOver))
}

func TestUpcomingFixtures(t *testing.T) {
	raw := []RawFixture{
		played(1, 1, 2, 1, 0),
		postponed(3, 4),
		unplayed(3, 1, 3),
		played(3, 2, 4, 2, 2),
		unplayed(3, 4, 2),
		unplayed(4, 3, 1),
		unplayed(5, 2, 1),
	}

	fixtures, err := UpcomingFixtures(raw, 3, 2, TeamAbbreviations(fourTeams()))
	require.NoError(t, err)
	require.Len(t, fixtures, 3)

	assert.Equal(t, 3, fixtures[0].Gameweek)
	assert.Equal(t, "ARS", fixtures[0].Home)
	assert.Equal(t, "BOU", fixtures[0].Away)
	assert.Equal(t, "BRE", fixtures[1].Home)
	assert.Equal(t, 4, fixtures[2].Gameweek)
	assert.Equal(t, "BOU", fixtures[2].Home)
	for _, f := range fixtures {
		assert.False(t, f.Annotated())
	}
}

func TestUpcomingFixturesStopsPastHorizon(t *testing.T) {
	raw := []RawFixture{
		unplayed(3, 1, 2),
		unplayed(5, 3, 4),
		// Rescheduled into gameweek 4 but listed by kickoff after gameweek 5.
		unplayed(4, 2, 3),
	}

	fixtures, err := UpcomingFixtures(raw, 3, 2, TeamAbbreviations(fourTeams()))
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, 3, fixtures[0].Gameweek)
}

func TestUpcomingFixturesSortsInterleavedGameweeks(t *testing.T) {
	raw := []RawFixture{
		unplayed(4, 1, 2),
		unplayed(3, 3, 4),
	}

	fixtures, err := UpcomingFixtures(raw, 3, 2, TeamAbbreviations(fourTeams()))
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	assert.Equal(t, 3, fixtures[0].Gameweek)
	assert.Equal(t, "BOU", fixtures[0].Home)
	assert.Equal(t, 4, fixtures[1].Gameweek)
}

func TestUpcomingFixturesUnknownTeam(t *testing.T) {
	raw := []RawFixture{unplayed(3, 1, 99)}
	_, err := UpcomingFixtures(raw, 3, 1, TeamAbbreviations(fourTeams()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "99")
}

func TestConstructTable(t *testing.T) {
	raw := []RawFixture{
		played(1, 1, 2, 2, 0),
		played(1, 3, 4, 1, 1),
		postponed(2, 3),
		played(2, 4, 1, 3, 1),
		unplayed(3, 1, 3),
		// Finished but after the first unfinished fixture, so ignored.
		played(3, 2, 4, 5, 0),
	}

	standings, err := ConstructTable(raw, fourTeams())
	require.NoError(t, err)
	require.Equal(t, 4, standings.Len())

	rows := standings.Rows()
	// BRE: D 1-1, W 3-1 => 4 pts, GD +2
	assert.Equal(t, "BRE", rows[0].Code)
	assert.Equal(t, 4, rows[0].Points)
	assert.Equal(t, 2, rows[0].GoalDiff)
	// ARS: W 2-0, L 1-3 => 3 pts, GD 0
	assert.Equal(t, "ARS", rows[1].Code)
	assert.Equal(t, 3, rows[1].Points)
	// BOU: D 1-1 => 1 pt
	assert.Equal(t, "BOU", rows[2].Code)
	assert.Equal(t, 1, rows[2].Draws)
	// AVL never scores
	assert.Equal(t, "AVL", rows[3].Code)
	assert.Equal(t, 1, rows[3].Played)
	assert.Equal(t, -2, rows[3].GoalDiff)

	for _, r := range rows {
		assert.Equal(t, r.GoalsFor-r.GoalsAgainst, r.GoalDiff)
	}
}

func TestConstructTableEmptySeason(t *testing.T) {
	standings, err := ConstructTable([]RawFixture{unplayed(1, 1, 2)}, fourTeams())
	require.NoError(t, err)
	assert.Equal(t, 4, standings.Len())
	rank, ok := standings.Rank("ARS")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
}

func TestConstructTableMissingScore(t *testing.T) {
	raw := []RawFixture{{Event: intp(1), Finished: true, TeamH: 1, TeamA: 2}}
	_, err := ConstructTable(raw, fourTeams())
	assert.Error(t, err)
}
