package forecast

import (
	"context"
	"fmt"
	"os"

	"github.com/utakatalp/assistant-manager-sim/internal/csvio"
	"github.com/utakatalp/assistant-manager-sim/internal/fpl"
)

// FPLAPI is the part of the FPL client a forecast reads from.
type FPLAPI interface {
	Bootstrap(ctx context.Context) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context) ([]fpl.RawFixture, error)
}

// FPLSource reads fixtures and the table from the FPL API and team ratings
// from a CSV file.
type FPLSource struct {
	API         FPLAPI
	RatingsPath string
}

// Load implements Source.
func (s *FPLSource) Load(ctx context.Context, horizon int) (*Inputs, error) {
	boot, err := s.API.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := s.API.Fixtures(ctx)
	if err != nil {
		return nil, err
	}

	start, err := fpl.NextGameweek(boot)
	if err != nil {
		return nil, err
	}
	abbr := fpl.TeamAbbreviations(boot)

	fixtures, err := fpl.UpcomingFixtures(raw, start, horizon, abbr)
	if err != nil {
		return nil, err
	}
	standings, err := fpl.ConstructTable(raw, boot)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.RatingsPath)
	if err != nil {
		return nil, fmt.Errorf("opening ratings: %w", err)
	}
	defer f.Close()
	ratings, err := csvio.ReadRatings(f)
	if err != nil {
		return nil, err
	}

	return &Inputs{
		StartGameweek: start,
		Fixtures:      fixtures,
		Table:         standings.Rows(),
		Ratings:       ratings,
	}, nil
}
