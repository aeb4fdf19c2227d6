package league

import (
	"fmt"
	"io"
)

// ScoreLine formats a result as "ARS 2 - 1 CHE".
func (r Result) ScoreLine() string {
	return fmt.Sprintf("%s %d - %d %s", r.Home, r.HomeGoals, r.AwayGoals, r.Away)
}

// RoundRobin returns a double round-robin fixture list for the given teams,
// starting at startWeek. The second half repeats the first with home and away
// swapped. With an odd number of teams one side sits out each week.
func RoundRobin(teams []string, startWeek int) []Fixture {
	firstHalf := singleRoundRobin(teams)
	rounds := len(firstHalf)

	fixtures := make([]Fixture, 0, 2*rounds*(len(teams)/2))
	for i, round := range firstHalf {
		for _, f := range round {
			f.Gameweek = startWeek + i
			fixtures = append(fixtures, f)
		}
	}
	for i, round := range firstHalf {
		for _, f := range round {
			fixtures = append(fixtures, Fixture{
				Gameweek: startWeek + rounds + i,
				Home:     f.Away,
				Away:     f.Home,
			})
		}
	}
	return fixtures
}

// singleRoundRobin uses the circle method: the first team stays fixed and the
// rest rotate one place each round.
func singleRoundRobin(teams []string) [][]Fixture {
	slots := make([]string, len(teams), len(teams)+1)
	copy(slots, teams)
	// An empty slot is a bye.
	if len(slots)%2 != 0 {
		slots = append(slots, "")
	}
	n := len(slots)
	if n < 2 {
		return nil
	}

	rounds := make([][]Fixture, n-1)
	for i := range rounds {
		round := make([]Fixture, 0, n/2)
		for j := 0; j < n/2; j++ {
			home, away := slots[j], slots[n-1-j]
			if home == "" || away == "" {
				continue
			}
			round = append(round, Fixture{Home: home, Away: away})
		}
		rounds[i] = round

		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return rounds
}

// PrintTable writes standings in a fixed-width layout.
func PrintTable(w io.Writer, label string, s Standings) {
	fmt.Fprintln(w, label)
	fmt.Fprintf(w, "%4s %-6s %2s %2s %2s %2s %3s %3s %4s %3s\n",
		"Pos", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts")
	for i, r := range s.Rows() {
		fmt.Fprintf(w, "%4d %-6s %2d %2d %2d %2d %3d %3d %4d %3d\n",
			i+1, r.Code, r.Played, r.Wins, r.Draws, r.Losses,
			r.GoalsFor, r.GoalsAgainst, r.GoalDiff, r.Points)
	}
}
