package simulation

import (
	"fmt"
	"sort"

	"github.com/utakatalp/assistant-manager-sim/internal/league"
)

// Projection is the mean assistant manager points per team per gameweek over
// all simulated runs.
type Projection struct {
	Runs      int      `json:"runs"`
	Seed      uint64   `json:"seed"`
	Teams     []string `json:"teams"`
	Gameweeks []int    `json:"gameweeks"`
	// Mean is indexed [team][gameweek] in the order of Teams and Gameweeks.
	Mean [][]float64 `json:"mean"`
	// Outlook projects where each team in the table finishes the horizon.
	Outlook []TeamOutlook `json:"outlook"`
}

// TeamOutlook is a team's mean league points and position after the horizon.
type TeamOutlook struct {
	Team       string  `json:"team"`
	MeanPoints float64 `json:"mean_points"`
	MeanRank   float64 `json:"mean_rank"`
}

// TeamProjection is one team's row of a projection.
type TeamProjection struct {
	Team   string    `json:"team"`
	Points []float64 `json:"points"`
	Total  float64   `json:"total"`
}

// Empty reports whether the projection has no cells.
func (p *Projection) Empty() bool {
	return p == nil || len(p.Teams) == 0 || len(p.Gameweeks) == 0
}

func (p *Projection) teamIndex(team string) int {
	i := sort.SearchStrings(p.Teams, team)
	if i < len(p.Teams) && p.Teams[i] == team {
		return i
	}
	return -1
}

// Points returns the mean points for one team in one gameweek.
func (p *Projection) Points(team string, gameweek int) (float64, bool) {
	ti := p.teamIndex(team)
	if ti < 0 {
		return 0, false
	}
	wi := sort.SearchInts(p.Gameweeks, gameweek)
	if wi >= len(p.Gameweeks) || p.Gameweeks[wi] != gameweek {
		return 0, false
	}
	return p.Mean[ti][wi], true
}

// Total returns a team's mean points summed over the horizon.
func (p *Projection) Total(team string) float64 {
	ti := p.teamIndex(team)
	if ti < 0 {
		return 0
	}
	var total float64
	for _, v := range p.Mean[ti] {
		total += v
	}
	return total
}

// Row returns one team's projection.
func (p *Projection) Row(team string) (TeamProjection, bool) {
	ti := p.teamIndex(team)
	if ti < 0 {
		return TeamProjection{}, false
	}
	pts := make([]float64, len(p.Mean[ti]))
	copy(pts, p.Mean[ti])
	return TeamProjection{Team: team, Points: pts, Total: p.Total(team)}, true
}

// Rows returns every team's projection, ordered by team code.
func (p *Projection) Rows() []TeamProjection {
	rows := make([]TeamProjection, 0, len(p.Teams))
	for _, team := range p.Teams {
		row, _ := p.Row(team)
		rows = append(rows, row)
	}
	return rows
}

// grid accumulates per-run totals over a shape fixed before the first run.
type grid struct {
	teams     []string
	gameweeks []int
	teamIdx   map[string]int
	weekIdx   map[int]int
	sums      [][]float64

	tableTeams []string
	tableIdx   map[string]int
	leaguePts  []float64
	ranks      []float64
	runs       int
}

func newGrid(fixtures []league.Fixture, table *league.Table) *grid {
	teamSet := make(map[string]bool)
	weekSet := make(map[int]bool)
	for _, f := range fixtures {
		teamSet[f.Home] = true
		teamSet[f.Away] = true
		weekSet[f.Gameweek] = true
	}

	g := &grid{
		teamIdx:  make(map[string]int, len(teamSet)),
		weekIdx:  make(map[int]int, len(weekSet)),
		tableIdx: make(map[string]int, table.Len()),
	}
	for t := range teamSet {
		g.teams = append(g.teams, t)
	}
	sort.Strings(g.teams)
	for w := range weekSet {
		g.gameweeks = append(g.gameweeks, w)
	}
	sort.Ints(g.gameweeks)

	for i, t := range g.teams {
		g.teamIdx[t] = i
	}
	for i, w := range g.gameweeks {
		g.weekIdx[w] = i
	}
	g.sums = make([][]float64, len(g.teams))
	for i := range g.sums {
		g.sums[i] = make([]float64, len(g.gameweeks))
	}

	for i, r := range table.Rows() {
		g.tableTeams = append(g.tableTeams, r.Code)
		g.tableIdx[r.Code] = i
	}
	g.leaguePts = make([]float64, len(g.tableTeams))
	g.ranks = make([]float64, len(g.tableTeams))
	return g
}

// emptyCopy returns a grid of the same shape with zeroed totals.
func (g *grid) emptyCopy() *grid {
	c := *g
	c.sums = make([][]float64, len(g.sums))
	for i := range c.sums {
		c.sums[i] = make([]float64, len(g.gameweeks))
	}
	c.leaguePts = make([]float64, len(g.leaguePts))
	c.ranks = make([]float64, len(g.ranks))
	c.runs = 0
	return &c
}

func (g *grid) add(s *Season) error {
	for team, weeks := range s.Points {
		ti, ok := g.teamIdx[team]
		if !ok {
			return fmt.Errorf("team %s outside projection grid", team)
		}
		for week, pts := range weeks {
			wi, ok := g.weekIdx[week]
			if !ok {
				return fmt.Errorf("gameweek %d outside projection grid", week)
			}
			g.sums[ti][wi] += float64(pts)
		}
	}
	for i, r := range s.Final.Rows() {
		if ti, ok := g.tableIdx[r.Code]; ok {
			g.leaguePts[ti] += float64(r.Points)
			g.ranks[ti] += float64(i + 1)
		}
	}
	g.runs++
	return nil
}

// merge folds another grid of the same shape into g.
func (g *grid) merge(o *grid) {
	for i := range g.sums {
		for j := range g.sums[i] {
			g.sums[i][j] += o.sums[i][j]
		}
	}
	for i := range g.leaguePts {
		g.leaguePts[i] += o.leaguePts[i]
		g.ranks[i] += o.ranks[i]
	}
	g.runs += o.runs
}

func (g *grid) projection(seed uint64) *Projection {
	p := &Projection{
		Runs:      g.runs,
		Seed:      seed,
		Teams:     g.teams,
		Gameweeks: g.gameweeks,
		Mean:      make([][]float64, len(g.teams)),
	}
	n := float64(g.runs)
	for i, row := range g.sums {
		p.Mean[i] = make([]float64, len(row))
		for j, v := range row {
			if g.runs > 0 {
				p.Mean[i][j] = v / n
			}
		}
	}
	for i, team := range g.tableTeams {
		o := TeamOutlook{Team: team}
		if g.runs > 0 {
			o.MeanPoints = g.leaguePts[i] / n
			o.MeanRank = g.ranks[i] / n
		}
		p.Outlook = append(p.Outlook, o)
	}
	sort.SliceStable(p.Outlook, func(i, j int) bool {
		return p.Outlook[i].MeanRank < p.Outlook[j].MeanRank
	})
	return p
}
