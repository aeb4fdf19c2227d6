package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagerPoints(t *testing.T) {
	tests := []struct {
		name                 string
		teamRank, oppoRank   int
		goalsFor, goalsAgain int
		want                 int
	}{
		{"upset win with clean sheet", 10, 2, 3, 0, 3 + 2 + 6 + 10},
		{"draw between neighbours", 1, 2, 1, 1, 1 + 3},
		{"goalless draw", 4, 6, 0, 0, 2 + 3},
		{"upset goalless draw", 18, 3, 0, 0, 2 + 3 + 5},
		{"upset score draw", 15, 10, 2, 2, 2 + 3 + 5},
		{"gap of four is no upset", 14, 10, 2, 1, 2 + 6},
		{"favourite win", 1, 20, 4, 1, 4 + 6},
		{"loss", 20, 1, 1, 3, 1},
		{"heavy loss with no goals", 5, 6, 0, 5, 0},
		{"upset loss earns nothing extra", 20, 1, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ManagerPoints(tt.teamRank, tt.oppoRank, tt.goalsFor, tt.goalsAgain))
		})
	}
}

func TestManagerPointsDeterministic(t *testing.T) {
	first := ManagerPoints(12, 3, 2, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ManagerPoints(12, 3, 2, 0))
	}
}
