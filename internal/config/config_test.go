package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Horizon)
	assert.Equal(t, 10000, cfg.NumSimulations)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 7, cfg.MaxGoals)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, "https://fantasy.premierleague.com/api", cfg.FPLBaseURL)
	assert.Equal(t, 10*time.Second, cfg.FPLTimeout)
	assert.Equal(t, 6*time.Hour, cfg.CacheTTL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HORIZON", "6")
	t.Setenv("SEED", "42")
	t.Setenv("ENV", "production")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Horizon)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUM_SIMULATIONS", "500")

	flags := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
	flags.Int("num-simulations", 10000, "")
	flags.Int("workers", 1, "")
	require.NoError(t, flags.Parse([]string{"--num-simulations=25", "--workers=4"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.NumSimulations)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HORIZON", "0")

	_, err := Load(nil)
	assert.ErrorContains(t, err, "horizon")
}

func TestValidate(t *testing.T) {
	base := Config{Horizon: 1, NumSimulations: 1}
	assert.NoError(t, base.Validate())

	bad := []Config{
		{Horizon: 1, NumSimulations: 0},
		{Horizon: 1, NumSimulations: 1, Workers: -1},
		{Horizon: 1, NumSimulations: 1, MaxGoals: -2},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate())
	}
}
