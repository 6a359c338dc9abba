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

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, 45*time.Second, cfg.PresenceTTL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 12*time.Hour, cfg.DiscussionsTTL)
	assert.NotEmpty(t, cfg.CookieSecret, "dev gets a fallback secret")
	assert.False(t, cfg.SecureCookies())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("PRESENCE_TTL", "90s")
	t.Setenv("HEARTBEAT_INTERVAL", "30s")
	t.Setenv("RL_SUBMIT_LIMIT", "5")
	t.Setenv("RL_SUBMIT_WINDOW_SECONDS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 90*time.Second, cfg.PresenceTTL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 5, cfg.SubmitLimit)
	assert.Equal(t, 30*time.Second, cfg.SubmitWindow)
}

func TestLoad_RejectsBadBackend(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_CookieSecretRequiredOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("COOKIE_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_HeartbeatMustBeatTTL(t *testing.T) {
	t.Setenv("PRESENCE_TTL", "10s")
	t.Setenv("HEARTBEAT_INTERVAL", "10s")

	_, err := Load()
	assert.Error(t, err)
}
