package league

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MaxGoals is the default cutoff for goal distributions.
const MaxGoals = 7

// GoalDistribution holds the Poisson probability of scoring 0..K goals. The
// tail beyond K is dropped, so the entries are weights rather than a
// normalized pmf.
type GoalDistribution []float64

// Sum returns the total weight of the distribution.
func (d GoalDistribution) Sum() float64 {
	var s float64
	for _, p := range d {
		s += p
	}
	return s
}

// NewGoalDistribution returns P(X = k) for k = 0..maxGoals where X ~ Poisson(xg).
func NewGoalDistribution(xg float64, maxGoals int) (GoalDistribution, error) {
	if xg < 0 || math.IsNaN(xg) || math.IsInf(xg, 0) {
		return nil, fmt.Errorf("xg %v: %w", xg, ErrInvalidDistribution)
	}
	if maxGoals < 0 {
		return nil, fmt.Errorf("max goals %d: %w", maxGoals, ErrInvalidDistribution)
	}

	d := make(GoalDistribution, maxGoals+1)
	if xg == 0 {
		// distuv evaluates 0*log(0) for a zero rate.
		d[0] = 1
		return d, nil
	}

	p := distuv.Poisson{Lambda: xg}
	for k := range d {
		d[k] = p.Prob(float64(k))
	}
	if !(d.Sum() > 0) {
		return nil, fmt.Errorf("xg %v has no mass below %d goals: %w", xg, maxGoals+1, ErrInvalidDistribution)
	}
	return d, nil
}

// AttachDistributions returns a copy of fixtures with a goal distribution for
// each side. The home side uses its attack against the away defence; the away
// side the reverse.
func AttachDistributions(fixtures []Fixture, ratings Ratings, maxGoals int) ([]Fixture, error) {
	out := make([]Fixture, len(fixtures))
	for i, f := range fixtures {
		home, ok := ratings[f.Home]
		if !ok {
			return nil, fmt.Errorf("gameweek %d %s v %s: %s: %w", f.Gameweek, f.Home, f.Away, f.Home, ErrMissingRating)
		}
		away, ok := ratings[f.Away]
		if !ok {
			return nil, fmt.Errorf("gameweek %d %s v %s: %s: %w", f.Gameweek, f.Home, f.Away, f.Away, ErrMissingRating)
		}

		homeDist, err := sideDistribution(home.Attack, away.Defence, true, maxGoals)
		if err != nil {
			return nil, fmt.Errorf("gameweek %d %s v %s: home: %w", f.Gameweek, f.Home, f.Away, err)
		}
		awayDist, err := sideDistribution(away.Attack, home.Defence, false, maxGoals)
		if err != nil {
			return nil, fmt.Errorf("gameweek %d %s v %s: away: %w", f.Gameweek, f.Home, f.Away, err)
		}

		f.HomeGoals = homeDist
		f.AwayGoals = awayDist
		out[i] = f
	}
	return out, nil
}

func sideDistribution(attack, defence float64, isHome bool, maxGoals int) (GoalDistribution, error) {
	xg, err := ExpectedGoals(attack, defence, isHome)
	if err != nil {
		return nil, err
	}
	return NewGoalDistribution(xg, maxGoals)
}
