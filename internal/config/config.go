package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by the simulate and server commands.
type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Simulation
	Horizon        int    `mapstructure:"HORIZON"`
	NumSimulations int    `mapstructure:"NUM_SIMULATIONS"`
	Workers        int    `mapstructure:"WORKERS"`
	Seed           uint64 `mapstructure:"SEED"`
	MaxGoals       int    `mapstructure:"MAX_GOALS"`

	// Files
	RatingsPath string `mapstructure:"RATINGS_PATH"`
	PricesPath  string `mapstructure:"PRICES_PATH"`
	OutputPath  string `mapstructure:"OUTPUT_PATH"`

	// FPL API
	FPLBaseURL string        `mapstructure:"FPL_BASE_URL"`
	FPLTimeout time.Duration `mapstructure:"FPL_TIMEOUT"`

	// Storage
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	RedisURL    string        `mapstructure:"REDIS_URL"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`

	// Scheduling
	ForecastSchedule string `mapstructure:"FORECAST_SCHEDULE"`
}

// Flag names accepted by the simulate command, mapped to config keys.
var flagKeys = map[string]string{
	"horizon":         "HORIZON",
	"num-simulations": "NUM_SIMULATIONS",
	"workers":         "WORKERS",
	"seed":            "SEED",
	"max-goals":       "MAX_GOALS",
	"ratings":         "RATINGS_PATH",
	"prices":          "PRICES_PATH",
	"output":          "OUTPUT_PATH",
	"log-level":       "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("HORIZON", 12)
	v.SetDefault("NUM_SIMULATIONS", 10000)
	v.SetDefault("WORKERS", 1)
	v.SetDefault("SEED", 0)
	v.SetDefault("MAX_GOALS", 7)
	v.SetDefault("RATINGS_PATH", "data/ratings.csv")
	v.SetDefault("PRICES_PATH", "data/manager_prices.csv")
	v.SetDefault("OUTPUT_PATH", "data/am_pts.csv")
	v.SetDefault("FPL_BASE_URL", "https://fantasy.premierleague.com/api")
	v.SetDefault("FPL_TIMEOUT", 10*time.Second)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", 6*time.Hour)
	v.SetDefault("FORECAST_SCHEDULE", "0 6 * * *")
}

// Load reads configuration from defaults, an optional config.yaml, the
// environment and, when given, command-line flags, in increasing precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Horizon < 1:
		return fmt.Errorf("horizon must be at least 1, got %d", c.Horizon)
	case c.NumSimulations < 1:
		return fmt.Errorf("number of simulations must be at least 1, got %d", c.NumSimulations)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	case c.MaxGoals < 0:
		return fmt.Errorf("max goals must not be negative, got %d", c.MaxGoals)
	}
	return nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
