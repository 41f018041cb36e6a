// Package cache holds the short-TTL memoized view of per-user storage
// usage. Entries are invalidated (deleted), never adjusted in place, so the
// cache can only ever cost a recomputation, not corrupt accounting.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	usageCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycloud_usage_cache_hits_total",
		Help: "Total number of usage snapshot cache hits.",
	})
	usageCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycloud_usage_cache_misses_total",
		Help: "Total number of usage snapshot cache misses.",
	})
)

// UsageCache maps user id to total bytes consumed, with automatic TTL
// expiry. Each server instance has its own in-memory cache; the durable
// store stays the source of truth.
type UsageCache struct {
	cache *expirable.LRU[string, int64]
}

// NewUsageCache creates a cache holding at most maxSize user entries, each
// expiring ttl after it was stored.
func NewUsageCache(maxSize int, ttl time.Duration) *UsageCache {
	cache := expirable.NewLRU[string, int64](maxSize, nil, ttl)
	return &UsageCache{cache: cache}
}

// Get returns the cached usage for userID, or (0, false) on a miss.
func (c *UsageCache) Get(userID string) (int64, bool) {
	val, ok := c.cache.Get(userID)
	if ok {
		usageCacheHitsTotal.Inc()
		return val, true
	}
	usageCacheMissesTotal.Inc()
	return 0, false
}

// Set stores a freshly computed usage figure for userID.
func (c *UsageCache) Set(userID string, usage int64) {
	c.cache.Add(userID, usage)
}

// Delete invalidates the entry for userID. Called after every mutation of
// that user's file set.
func (c *UsageCache) Delete(userID string) {
	c.cache.Remove(userID)
}
