package league

import (
	"fmt"
	"sort"
)

// Table is the live league table for one simulated season. Rows are only
// reachable through copies so ranks can't be edited behind its back.
type Table struct {
	rows  []Team
	index map[string]int
}

// NewTable seeds a table from the current standings. Rows need at least
// points, goal difference and goals for; a missing goals against or goal
// difference is filled in from the other two. Row order is kept as the
// tie-break between otherwise equal teams.
func NewTable(rows []Team) (*Table, error) {
	t := &Table{
		rows:  make([]Team, len(rows)),
		index: make(map[string]int, len(rows)),
	}
	for i, r := range rows {
		if _, dup := t.index[r.Code]; dup {
			return nil, fmt.Errorf("duplicate team %q in table", r.Code)
		}
		if err := r.reconcileGoals(); err != nil {
			return nil, err
		}
		t.rows[i] = r
		t.index[r.Code] = i
	}
	return t, nil
}

// reconcileGoals enforces GoalDiff == GoalsFor - GoalsAgainst. A zero
// GoalsAgainst is taken as unknown and derived first, then a zero GoalDiff.
func (r *Team) reconcileGoals() error {
	switch {
	case r.GoalDiff == r.GoalsFor-r.GoalsAgainst:
	case r.GoalsAgainst == 0:
		r.GoalsAgainst = r.GoalsFor - r.GoalDiff
	case r.GoalDiff == 0:
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
	default:
		return fmt.Errorf("team %s: goal difference %d does not match %d scored and %d conceded",
			r.Code, r.GoalDiff, r.GoalsFor, r.GoalsAgainst)
	}
	if r.GoalsAgainst < 0 {
		return fmt.Errorf("team %s: goal difference %d exceeds %d goals scored", r.Code, r.GoalDiff, r.GoalsFor)
	}
	return nil
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		rows:  make([]Team, len(t.rows)),
		index: make(map[string]int, len(t.index)),
	}
	copy(c.rows, t.rows)
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}

// Len returns the number of teams.
func (t *Table) Len() int { return len(t.rows) }

// Team returns a copy of one team's row.
func (t *Table) Team(code string) (Team, bool) {
	i, ok := t.index[code]
	if !ok {
		return Team{}, false
	}
	return t.rows[i], true
}

// Rows returns a copy of the rows in insertion order.
func (t *Table) Rows() []Team {
	out := make([]Team, len(t.rows))
	copy(out, t.rows)
	return out
}

// ApplyResult records a scoreline for both teams.
func (t *Table) ApplyResult(home, away string, homeGoals, awayGoals int) error {
	hi, ok := t.index[home]
	if !ok {
		return fmt.Errorf("%s: %w", home, ErrUnknownTeam)
	}
	ai, ok := t.index[away]
	if !ok {
		return fmt.Errorf("%s: %w", away, ErrUnknownTeam)
	}
	t.rows[hi].record(homeGoals, awayGoals)
	t.rows[ai].record(awayGoals, homeGoals)
	return nil
}

func (r *Team) record(gf, ga int) {
	r.Played++
	r.GoalsFor += gf
	r.GoalsAgainst += ga
	r.GoalDiff = r.GoalsFor - r.GoalsAgainst

	switch {
	case gf > ga:
		r.Wins++
		r.Points += 3
	case gf < ga:
		r.Losses++
	default:
		r.Draws++
		r.Points++
	}
}

// SnapshotRanked sorts a copy of the table by points, goal difference and
// goals scored, and freezes the resulting ranks.
func (t *Table) SnapshotRanked() Standings {
	rows := t.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		return a.GoalsFor > b.GoalsFor
	})

	ranks := make(map[string]int, len(rows))
	for i, r := range rows {
		ranks[r.Code] = i + 1
	}
	return Standings{rows: rows, ranks: ranks}
}

// Standings is a ranked, read-only copy of a table.
type Standings struct {
	rows  []Team
	ranks map[string]int
}

// Rank returns the 1-based position of a team.
func (s Standings) Rank(code string) (int, bool) {
	r, ok := s.ranks[code]
	return r, ok
}

// Rows returns the teams in rank order.
func (s Standings) Rows() []Team {
	out := make([]Team, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of ranked teams.
func (s Standings) Len() int { return len(s.rows) }

// BuildTable computes standings from played results, in the manner of a
// league's official table. Every code in teams gets a row even when it has no
// results; results naming other teams are rejected.
func BuildTable(teams []string, results []Result) (Standings, error) {
	seed := make([]Team, len(teams))
	for i, code := range teams {
		seed[i] = Team{Code: code}
	}
	t, err := NewTable(seed)
	if err != nil {
		return Standings{}, err
	}
	for _, r := range results {
		if err := t.ApplyResult(r.Home, r.Away, r.HomeGoals, r.AwayGoals); err != nil {
			return Standings{}, fmt.Errorf("gameweek %d: %w", r.Gameweek, err)
		}
	}
	return t.SnapshotRanked(), nil
}
