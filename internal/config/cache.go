package config

import (
	"strconv"
	"time"
)

// CacheConfig defines settings for the response cache middleware. The
// cache is applied only to public GET endpoints (equipment browsing),
// so the configuration stays small: a TTL, a key prefix for
// namespacing, and a cap on the response size worth caching. When
// Enabled is false or no Redis client is available, the middleware is
// a no-op.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig,
// falling back to defaults when variables are unset.
func LoadCacheConfig() CacheConfig {
	ttl, err := time.ParseDuration(getenv("CACHE_TTL", "30s"))
	if err != nil || ttl <= 0 {
		ttl = 30 * time.Second
	}
	maxBody, err := strconv.Atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576"))
	if err != nil || maxBody <= 0 {
		maxBody = 1 << 20
	}
	return CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		TTL:          ttl,
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: maxBody,
	}
}
