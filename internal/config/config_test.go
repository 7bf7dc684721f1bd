package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrDiscordTokenNotSet)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://juicewrldapi.com", cfg.CatalogBaseURL)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 3, cfg.FailureCeiling)
	assert.Equal(t, 5*time.Minute, cfg.SongCacheTTL)
	assert.Equal(t, 200, cfg.QueueSoftCap)
	assert.Equal(t, "wrldbot.db", cfg.DatabasePath)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("IDLE_TIMEOUT", "10m")
	t.Setenv("FAILURE_CEILING", "5")
	t.Setenv("QUEUE_SOFT_CAP", "50")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 5, cfg.FailureCeiling)
	assert.Equal(t, 50, cfg.QueueSoftCap)
}

func TestInvalidNumericFallsBack(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("FAILURE_CEILING", "not-a-number")
	t.Setenv("IDLE_TIMEOUT", "-5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.FailureCeiling)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
}
