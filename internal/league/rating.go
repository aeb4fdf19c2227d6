package league

import (
	"fmt"
	"math"
)

// Average home and away xG per match, taken from FBref league data.
const (
	HomeXG = 1.712665406
	AwayXG = 1.351606805
)

// xgAverage is HomeXG + AwayXG/2, not the mean of the two. The ratings were
// calibrated against this value so it is kept as is.
const xgAverage = HomeXG + AwayXG/2

// ExpectedGoals predicts the xG of one side of a fixture from its own attack
// rating and the opponent's defence rating.
func ExpectedGoals(attack, defence float64, isHome bool) (float64, error) {
	if !validStrength(attack) || !validStrength(defence) {
		return 0, fmt.Errorf("attack %v, defence %v: %w", attack, defence, ErrInvalidDistribution)
	}
	scale := AwayXG / xgAverage
	if isHome {
		scale = HomeXG / xgAverage
	}
	return scale * attack * defence, nil
}

func validStrength(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
