package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8888", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, "58 23 * * *", cfg.DailyCron)
	assert.Equal(t, 5, cfg.FetchWorkers)
	assert.Equal(t, 12*time.Second, cfg.ItemTimeout)
	assert.Equal(t, 3*time.Minute, cfg.BatchTimeout)
	assert.Equal(t, 150.0, cfg.DefaultFXRate)
	assert.Equal(t, 500*time.Millisecond, cfg.MinRequestDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.MaxRequestDelay)
	assert.Empty(t, cfg.UserAgents)
	assert.False(t, cfg.IsProduction())
	_, offset := time.Date(2024, 5, 10, 0, 0, 0, 0, cfg.Location()).Zone()
	assert.Equal(t, 9*60*60, offset)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/folio")
	t.Setenv("FETCH_ITEM_TIMEOUT", "4s")
	t.Setenv("FETCH_USER_AGENTS", "agent one | agent two|")
	t.Setenv("DEFAULT_FX_RATE", "142.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://u:p@localhost/folio", cfg.DatabaseURL)
	assert.Equal(t, 4*time.Second, cfg.ItemTimeout)
	assert.Equal(t, []string{"agent one", "agent two"}, cfg.UserAgents)
	assert.Equal(t, 142.5, cfg.DefaultFXRate)
}

func TestLoad_RejectsBadTimezone(t *testing.T) {
	t.Setenv("TZ_NAME", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestLocation_FallsBackToTokyo(t *testing.T) {
	for _, tz := range []string{"", "Mars/Olympus"} {
		cfg := &Config{Timezone: tz}
		_, offset := time.Date(2024, 5, 10, 0, 0, 0, 0, cfg.Location()).Zone()
		assert.Equal(t, 9*60*60, offset, tz)
	}
	assert.Equal(t, "UTC", (&Config{Timezone: "UTC"}).Location().String())
}

func TestLoad_RejectsInvertedDelays(t *testing.T) {
	t.Setenv("FETCH_MIN_DELAY", "2s")
	t.Setenv("FETCH_MAX_DELAY", "1s")

	_, err := Load()
	assert.Error(t, err)
}
