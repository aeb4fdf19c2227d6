package league

// Team is one row of the league table: a club and its accumulated season stats.
type Team struct {
	Code         string `json:"code"`
	Played       int    `json:"played"`
	Points       int    `json:"points"`
	GoalDiff     int    `json:"goal_difference"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
}

// Rating holds the strength numbers used to derive expected goals.
type Rating struct {
	Attack  float64 `json:"attack_strength"`
	Defence float64 `json:"defence_strength"`
}

// Ratings maps a team code to its rating.
type Ratings map[string]Rating

// Fixture represents an upcoming match. HomeGoals/AwayGoals are only set once
// AttachDistributions has run.
type Fixture struct {
	Gameweek int
	Home     string
	Away     string

	HomeGoals GoalDistribution
	AwayGoals GoalDistribution
}

// Annotated reports whether both sides carry a goal distribution.
func (f Fixture) Annotated() bool {
	return len(f.HomeGoals) > 0 && len(f.AwayGoals) > 0
}

// Result is a played (or simulated) fixture.
type Result struct {
	Gameweek  int
	Home      string
	Away      string
	HomeGoals int
	AwayGoals int
}
