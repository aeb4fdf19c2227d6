package league

// Assistant manager scoring.
const (
	pointsPerGoal    = 1
	cleanSheetPoints = 2
	winPoints        = 6
	drawPoints       = 3
	upsetWinBonus    = 10
	upsetDrawBonus   = 5
	// upsetRankGap is how many places below the opponent a team must sit
	// before a win or draw earns the bonus.
	upsetRankGap = 5
)

// ManagerPoints scores one team's side of a fixture. Ranks are positions at
// the start of the gameweek.
func ManagerPoints(teamRank, oppoRank, goalsFor, goalsAgainst int) int {
	points := goalsFor * pointsPerGoal
	if goalsAgainst == 0 {
		points += cleanSheetPoints
	}

	upset := teamRank >= oppoRank+upsetRankGap
	switch {
	case goalsFor > goalsAgainst:
		points += winPoints
		if upset {
			points += upsetWinBonus
		}
	case goalsFor == goalsAgainst:
		points += drawPoints
		if upset {
			points += upsetDrawBonus
		}
	}
	return points
}
