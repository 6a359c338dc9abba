package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   int

	// Cache backend: "redis" or "memory"
	CacheBackend string
	RedisAddr    string
	RedisPass    string
	RedisDB      int

	// Signed visitor cookies
	CookieSecret string
	CookieTTL    time.Duration

	// Presence
	PresenceTTL       time.Duration
	HeartbeatInterval time.Duration

	// Discussion store expiry window
	DiscussionsTTL time.Duration

	// Submission rate limit, per client IP
	SubmitLimit  int
	SubmitWindow time.Duration

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Port = getInt("PORT", 8080)

	// --- Cache
	cfg.CacheBackend = strings.ToLower(getEnv("CACHE_BACKEND", "redis"))
	cfg.RedisAddr = getEnv("REDIS_ADDR", "127.0.0.1:6379")
	cfg.RedisPass = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0)

	// --- Visitor cookies
	cfg.CookieSecret = getEnv("COOKIE_SECRET", "")
	cfg.CookieTTL = getDuration("COOKIE_TTL", 30*24*time.Hour)

	// --- Presence
	cfg.PresenceTTL = getDuration("PRESENCE_TTL", 45*time.Second)
	cfg.HeartbeatInterval = getDuration("HEARTBEAT_INTERVAL", 30*time.Second)

	// --- Discussions
	cfg.DiscussionsTTL = getDuration("DISCUSSIONS_TTL", 12*time.Hour)

	// --- Rate limit
	cfg.SubmitLimit = getInt("RL_SUBMIT_LIMIT", 10)
	cfg.SubmitWindow = time.Duration(getInt("RL_SUBMIT_WINDOW_SECONDS", 60)) * time.Second

	// --- Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// --- Validation (fail fast)
	switch cfg.CacheBackend {
	case "redis", "memory":
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: must be redis or memory", cfg.CacheBackend)
	}
	if cfg.CacheBackend == "redis" && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if cfg.CookieSecret == "" {
		if cfg.AppEnv != "dev" {
			return nil, fmt.Errorf("missing COOKIE_SECRET (required when APP_ENV != dev)")
		}
		cfg.CookieSecret = "dev-only-insecure-secret"
	}
	if cfg.HeartbeatInterval >= cfg.PresenceTTL {
		return nil, fmt.Errorf("HEARTBEAT_INTERVAL (%s) must be shorter than PRESENCE_TTL (%s)", cfg.HeartbeatInterval, cfg.PresenceTTL)
	}

	return cfg, nil
}

// SecureCookies reports whether cookies should require HTTPS.
func (c *Config) SecureCookies() bool {
	return c.AppEnv != "dev"
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
