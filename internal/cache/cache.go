package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/assistant-manager-sim/internal/forecast"
)

const latestKey = "forecast:latest"

// ErrCacheMiss is returned when no forecast is cached.
var ErrCacheMiss = errors.New("forecast not found in cache")

// kv is the subset of the redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ProjectionCache keeps the latest forecast in Redis as JSON.
type ProjectionCache struct {
	client kv
	logger *logrus.Logger
}

// NewProjectionCache creates a cache on top of a redis client.
func NewProjectionCache(client *redis.Client, logger *logrus.Logger) *ProjectionCache {
	return &ProjectionCache{
		client: client,
		logger: logger,
	}
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// Set stores r as the latest forecast.
func (c *ProjectionCache) Set(ctx context.Context, r *forecast.Result, expiration time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	if err := c.client.Set(ctx, latestKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set forecast in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":   latestKey,
		"expiration":  expiration,
		"forecast_id": r.ID.String(),
	}).Debug("Cached forecast")
	return nil
}

// Latest returns the cached forecast or ErrCacheMiss.
func (c *ProjectionCache) Latest(ctx context.Context) (*forecast.Result, error) {
	data, err := c.client.Get(ctx, latestKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get forecast from cache: %w", err)
	}

	var r forecast.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal forecast: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":   latestKey,
		"forecast_id": r.ID.String(),
	}).Debug("Retrieved forecast from cache")
	return &r, nil
}
