// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
)

// Endpoint classes with independent rate budgets.
const (
	ClassTimeline    = "timeline"
	ClassEngagement  = "engagement"
	ClassStreaming   = "streaming"
	ClassPreferences = "preferences"
)

const (
	// bucketIdleTTL evicts buckets untouched for this long.
	bucketIdleTTL = time.Hour

	// bucketSweepInterval is the eviction cadence.
	bucketSweepInterval = 10 * time.Minute
)

// bucketEntry pairs a limiter with its current rate and last use, so
// per-request overrides can retune the limiter in place and the sweep
// can find stale entries.
type bucketEntry struct {
	limiter    *rate.Limiter
	rpm        int
	lastAccess time.Time
}

// RateLimiter admits requests from per-(class, caller) token buckets.
// Capacity is the configured burst; refill is rpm/60 tokens per second.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucketEntry

	classRPM map[string]int
	burst    int
	disabled bool

	denied  atomic.Int64
	allowed atomic.Int64

	logger zerolog.Logger
}

// NewRateLimiter builds the limiter from API config. The base rpm
// applies to timeline and preferences; engagement gets double (cheap
// writes arrive in bursts during active scrolling) and streaming a
// tenth (subscriptions are long-lived).
func NewRateLimiter(cfg config.APIConfig) *RateLimiter {
	base := cfg.RateLimitRPM
	if base <= 0 {
		base = 60
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 10
	}
	streamRPM := base / 10
	if streamRPM < 6 {
		streamRPM = 6
	}

	return &RateLimiter{
		buckets: make(map[string]*bucketEntry),
		classRPM: map[string]int{
			ClassTimeline:    base,
			ClassEngagement:  base * 2,
			ClassStreaming:   streamRPM,
			ClassPreferences: base,
		},
		burst:    burst,
		disabled: cfg.RateLimitDisabled,
		logger:   logging.WithComponent("ratelimit"),
	}
}

// Allow consumes one token from the caller's bucket for the endpoint
// class. overrideRPM lowers the refill rate for this caller when it is
// positive and below the class default; it can never raise it.
func (rl *RateLimiter) Allow(class, callerKey string, overrideRPM int) bool {
	if rl.disabled {
		return true
	}

	rpm := rl.classRPM[class]
	if rpm <= 0 {
		rpm = rl.classRPM[ClassTimeline]
	}
	if overrideRPM > 0 && overrideRPM < rpm {
		rpm = overrideRPM
	}

	key := class + ":" + callerKey

	rl.mu.Lock()
	entry, ok := rl.buckets[key]
	if !ok {
		entry = &bucketEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rl.burst),
			rpm:     rpm,
		}
		rl.buckets[key] = entry
	} else if entry.rpm != rpm {
		entry.limiter.SetLimit(rate.Limit(float64(rpm) / 60.0))
		entry.rpm = rpm
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	rl.mu.Unlock()

	if !limiter.Allow() {
		rl.denied.Add(1)
		metrics.RecordRateLimited(class)
		return false
	}
	rl.allowed.Add(1)
	return true
}

// Serve evicts idle buckets until the context is cancelled. It
// implements suture.Service.
func (rl *RateLimiter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if evicted := rl.sweep(); evicted > 0 {
				rl.logger.Debug().Int("evicted", evicted).Msg("swept idle rate buckets")
			}
		}
	}
}

// String identifies the limiter in supervisor logs.
func (rl *RateLimiter) String() string { return "rate-limiter" }

// sweep drops buckets idle past the TTL. Returns how many were evicted.
func (rl *RateLimiter) sweep() int {
	threshold := time.Now().Add(-bucketIdleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	var evicted int
	for key, entry := range rl.buckets {
		if entry.lastAccess.Before(threshold) {
			delete(rl.buckets, key)
			evicted++
		}
	}
	return evicted
}

// RateLimiterStats is a point-in-time snapshot for the health surface.
type RateLimiterStats struct {
	Buckets int   `json:"buckets"`
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// Stats returns current limiter counters.
func (rl *RateLimiter) Stats() RateLimiterStats {
	rl.mu.Lock()
	buckets := len(rl.buckets)
	rl.mu.Unlock()

	return RateLimiterStats{
		Buckets: buckets,
		Allowed: rl.allowed.Load(),
		Denied:  rl.denied.Load(),
	}
}
