package ratelimit

import (
	"fmt"
	"sync"

	"github.com/patrickwarner/openadops/internal/observability"
)

// PlatformLimiter manages rate limiting for multiple ad platforms.
//
// Each platform gets its own token bucket, created lazily on first access,
// so a CM360 burst cannot starve Meta or TikTok calls. The limiter reports
// activity through the injected metrics registry.
//
// Example usage:
//
//	config := Config{Capacity: 100, RefillRate: 10, Enabled: true}
//	limiter := NewPlatformLimiter(config, metrics)
//
//	if limiter.Allow("CM360") {
//	    // Issue the API call
//	} else {
//	    // CM360 quota is exhausted right now
//	}
type PlatformLimiter struct {
	buckets map[string]*TokenBucket       // Map of platform name to token bucket
	mu      sync.RWMutex                  // Protects the buckets map
	config  Config                        // Rate limiting configuration
	metrics observability.MetricsRegistry // Metrics registry for tracking rate limiting activity
}

// Config holds the configuration for rate limiting.
type Config struct {
	Capacity   int  // Token bucket capacity (burst allowance)
	RefillRate int  // Tokens added per second (sustained rate)
	Enabled    bool // Whether rate limiting is active
}

// NewPlatformLimiter creates a new platform rate limiter with the given configuration.
func NewPlatformLimiter(config Config, metrics observability.MetricsRegistry) *PlatformLimiter {
	return &PlatformLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		metrics: metrics,
	}
}

// Allow checks if an API call to the given platform should go out now.
//
// Returns false when the platform's bucket is empty. If rate limiting is
// disabled via config, this method always returns true. Buckets are created
// on demand for platforms not seen before.
func (pl *PlatformLimiter) Allow(platform string) bool {
	if !pl.config.Enabled {
		return true
	}

	pl.metrics.IncrementRateLimitRequests(platform)

	pl.mu.RLock()
	bucket, exists := pl.buckets[platform]
	pl.mu.RUnlock()

	if !exists {
		// Double-checked locking pattern to avoid race conditions
		pl.mu.Lock()
		bucket, exists = pl.buckets[platform]
		if !exists {
			bucket = NewTokenBucket(pl.config.Capacity, pl.config.RefillRate)
			pl.buckets[platform] = bucket
		}
		pl.mu.Unlock()
	}

	allowed := bucket.Allow()
	if !allowed {
		pl.metrics.IncrementRateLimitHits(platform)
	}

	return allowed
}

// GetStats returns rate limiting statistics for every platform seen so far.
func (pl *PlatformLimiter) GetStats() map[string]RateLimitStats {
	pl.mu.RLock()
	defer pl.mu.RUnlock()

	stats := make(map[string]RateLimitStats)
	for platform, bucket := range pl.buckets {
		hits, total := bucket.Stats()
		hitRate := 0.0
		if total > 0 {
			hitRate = float64(hits) / float64(total)
		}
		stats[platform] = RateLimitStats{
			Platform: platform,
			Hits:     hits,
			Total:    total,
			HitRate:  hitRate,
		}
	}

	return stats
}

// RateLimitStats contains statistics about rate limiting for a single platform.
type RateLimitStats struct {
	Platform string  `json:"platform"`
	Hits     int64   `json:"hits"`     // Number of rate limited requests
	Total    int64   `json:"total"`    // Total number of requests processed
	HitRate  float64 `json:"hit_rate"` // Fraction of requests rate limited (0.0-1.0)
}

// String returns a human-readable representation of the rate limit statistics.
func (rls RateLimitStats) String() string {
	return fmt.Sprintf("Platform %s: %d/%d hits (%.2f%%)",
		rls.Platform, rls.Hits, rls.Total, rls.HitRate*100)
}
