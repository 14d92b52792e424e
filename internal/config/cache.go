package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig controls the Redis response cache applied to the public
// browse endpoints. Caching is skipped entirely when disabled or when
// no Redis client is available.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads CACHE_ENABLED, CACHE_TTL and CACHE_PREFIX with
// defaults suitable for short-lived listing responses.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "30s")),
		Prefix:  getenv("CACHE_PREFIX", "cache"),
	}
}

// RateLimitConfig controls the fixed-window limiter guarding the
// booking endpoint.
type RateLimitConfig struct {
	Enabled bool
	Limit   int           // requests allowed per window
	Window  time.Duration // window length
	Prefix  string
}

// LoadRateLimitConfig reads RATE_LIMIT_ENABLED, RATE_LIMIT_MAX and
// RATE_LIMIT_WINDOW with conservative defaults.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Limit:   atoi(getenv("RATE_LIMIT_MAX", "30")),
		Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	// The limiter derives its window number from whole seconds, so
	// anything shorter would divide by zero.
	if cfg.Window < time.Second {
		cfg.Window = time.Second
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
