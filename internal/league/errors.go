package league

import "errors"

var (
	// ErrMissingRating is returned when a fixture names a team that has no rating.
	ErrMissingRating = errors.New("missing rating")
	// ErrInvalidDistribution is returned for negative or non-finite expected goals.
	ErrInvalidDistribution = errors.New("invalid goal distribution")
	// ErrEmptyHorizon is returned when there are no fixtures to simulate.
	ErrEmptyHorizon = errors.New("no fixtures in horizon")
	// ErrUnknownTeam is returned when a result names a team absent from the table.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrFixtureOrder is returned when fixtures are not in non-decreasing gameweek order.
	ErrFixtureOrder = errors.New("fixtures out of gameweek order")
)
