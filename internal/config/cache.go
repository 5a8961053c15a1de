package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache in front of the public
// movie listing routes. With Enabled false, or when no Redis client could
// be built, the middleware passes requests straight through.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* environment variables. The defaults cache
// GET responses for 30 seconds; mutation handlers flush the prefix anyway,
// so the TTL only bounds staleness when the flush itself fails.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      methodSet(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "catalog"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}

func methodSet(raw string) map[string]bool {
	set := make(map[string]bool)
	for _, m := range strings.Split(raw, ",") {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			set[m] = true
		}
	}
	return set
}
