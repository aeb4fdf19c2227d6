package league

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"
)

// SampleGoals draws a goal count with probability proportional to the
// distribution's weights.
func SampleGoals(rng *rand.Rand, d GoalDistribution) int {
	w := sampleuv.NewWeighted(d, rng)
	idx, ok := w.Take()
	if !ok {
		// NewGoalDistribution never yields an all-zero distribution.
		return 0
	}
	return idx
}

// SampleMatch draws a scoreline from two independent goal distributions.
func SampleMatch(rng *rand.Rand, home, away GoalDistribution) (homeGoals, awayGoals int) {
	homeGoals = SampleGoals(rng, home)
	awayGoals = SampleGoals(rng, away)
	return
}

// SeedSequence expands base into n per-run seeds using SplitMix64. The same
// base always yields the same sequence, and seed i does not depend on how
// many runs follow it.
func SeedSequence(base uint64, n int) []uint64 {
	seeds := make([]uint64, n)
	state := base
	for i := range seeds {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		seeds[i] = z ^ (z >> 31)
	}
	return seeds
}

// NewRunRand returns the random source for one simulation run.
func NewRunRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
}
