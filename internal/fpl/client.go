package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Event is a gameweek as listed in the bootstrap data.
type Event struct {
	ID       int  `json:"id"`
	Finished bool `json:"finished"`
}

// TeamInfo is a club as listed in the bootstrap data.
type TeamInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Bootstrap is the subset of /bootstrap-static/ the forecaster needs.
type Bootstrap struct {
	Events []Event    `json:"events"`
	Teams  []TeamInfo `json:"teams"`
}

// RawFixture is one entry of /fixtures/. Event is nil for postponed fixtures
// that have not been rescheduled.
type RawFixture struct {
	Event      *int `json:"event"`
	Finished   bool `json:"finished"`
	TeamH      int  `json:"team_h"`
	TeamA      int  `json:"team_a"`
	TeamHScore *int `json:"team_h_score"`
	TeamAScore *int `json:"team_a_score"`
}

// Client talks to the Fantasy Premier League API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *logrus.Logger
}

// NewClient creates an FPL API client. Requests trip a circuit breaker after
// repeated failures so a down API fails fast.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "fpl-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("FPL API circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		circuitBreaker: cb,
		logger:         logger,
	}
}

// Bootstrap fetches the static season data.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var b Bootstrap
	if err := c.get(ctx, "/bootstrap-static/", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Fixtures fetches every fixture of the season in kickoff order.
func (c *Client) Fixtures(ctx context.Context) ([]RawFixture, error) {
	var f []RawFixture
	if err := c.get(ctx, "/fixtures/", &f); err != nil {
		return nil, err
	}
	return f, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching %q: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching %q: %d", url, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding %q: %w", url, err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	c.logger.WithField("url", url).Debug("Fetched FPL data")
	return nil
}
