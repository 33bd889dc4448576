package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware.  When
// Enabled is false or no Redis client is configured, caching is disabled.
// Methods lists the HTTP methods to cache.  TTL bounds how stale a cached
// body may get: entries are never invalidated on writes, only expired.
// KeyStrategy determines which parts of the request contribute to the cache
// key.  Prefix namespaces the keys so lot and spot caches can carry
// different lifetimes.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LotCacheConfig builds the cache settings for parking lot read endpoints.
// Lot data changes rarely, so the default expiry window is 600 seconds.
func LotCacheConfig() CacheConfig {
	return loadCacheConfig("lots", getenv("CACHE_LOT_TTL", "600s"))
}

// SpotCacheConfig builds the cache settings for spot-level read endpoints.
// Spot status flips on every booking, so the window is much shorter.
func SpotCacheConfig() CacheConfig {
	return loadCacheConfig("spots", getenv("CACHE_SPOT_TTL", "60s"))
}

func loadCacheConfig(name, ttl string) CacheConfig {
	return CacheConfig{
		Enabled:      getenv("CACHE_ENABLED", "true") == "true",
		Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:          parseDur(ttl),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("CACHE_PREFIX", "cache") + ":" + name,
		MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

// Helper functions shared with redis.go and ratelimit.go
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
