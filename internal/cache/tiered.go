// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// TieredConfig configures the tiered cache facade.
type TieredConfig struct {
	// TimelineCapacity bounds the in-memory timeline store.
	TimelineCapacity int

	// ProfileCapacity bounds the in-memory viewer profile cache.
	ProfileCapacity int

	// LastReadCapacity bounds the in-memory last-read marker cache.
	LastReadCapacity int

	// TimelineTTL is the freshness window used when promoting a
	// durable-tier timeline into memory.
	TimelineTTL time.Duration

	// ProfileTTL is the freshness window used when promoting a
	// durable-tier profile into memory.
	ProfileTTL time.Duration

	// LastReadTTL is the TTL applied to promoted last-read markers.
	LastReadTTL time.Duration

	// Durable enables the persistent tier when non-nil.
	Durable *DurableConfig
}

// DefaultTieredConfig returns production defaults for the cache layer.
func DefaultTieredConfig() TieredConfig {
	return TieredConfig{
		TimelineCapacity: 10000,
		ProfileCapacity:  20000,
		LastReadCapacity: 50000,
		TimelineTTL:      time.Hour,
		ProfileTTL:       10 * time.Minute,
		LastReadTTL:      24 * time.Hour,
	}
}

// TieredCache composes the mandatory in-memory tier with the optional
// durable BadgerDB tier.
//
// Reads check memory first, then the durable tier, promoting durable
// hits back into memory. Writes go to both tiers. Every durable-tier
// failure is absorbed and counted, never surfaced to callers: cache
// trouble degrades to reassembly, not errors.
//
// The durable tier sits behind a circuit breaker so a sick disk cannot
// add per-request latency once it starts failing. A cache miss is not a
// failure for breaker purposes.
//
// Author invalidation consults the in-memory reverse index only.
// Timelines that were evicted from memory can linger in the durable
// tier until their TTL; the freshness window bounds that staleness.
type TieredCache struct {
	cfg      TieredConfig
	store    *TimelineStore
	profiles *LRU[*models.ViewerProfile]
	lastRead *LRU[time.Time]
	durable  *DurableCache
	cb       *gobreaker.CircuitBreaker[any]
}

// TieredStats aggregates counters from every tier.
type TieredStats struct {
	Timelines        TimelineStoreStats
	Profiles         LRUStats
	LastRead         LRUStats
	DurableEnabled   bool
	DurableLSMBytes  int64
	DurableVLogBytes int64
	BreakerState     string
}

// NewTieredCache builds the cache layer. The durable tier is opened
// only when cfg.Durable is non-nil; opening it is the one operation
// whose failure is returned rather than absorbed, since it indicates
// a misconfigured data directory.
func NewTieredCache(cfg TieredConfig) (*TieredCache, error) {
	def := DefaultTieredConfig()
	if cfg.TimelineCapacity <= 0 {
		cfg.TimelineCapacity = def.TimelineCapacity
	}
	if cfg.ProfileCapacity <= 0 {
		cfg.ProfileCapacity = def.ProfileCapacity
	}
	if cfg.LastReadCapacity <= 0 {
		cfg.LastReadCapacity = def.LastReadCapacity
	}
	if cfg.TimelineTTL <= 0 {
		cfg.TimelineTTL = def.TimelineTTL
	}
	if cfg.ProfileTTL <= 0 {
		cfg.ProfileTTL = def.ProfileTTL
	}
	if cfg.LastReadTTL <= 0 {
		cfg.LastReadTTL = def.LastReadTTL
	}

	tc := &TieredCache{
		cfg:      cfg,
		store:    NewTimelineStore(cfg.TimelineCapacity),
		profiles: NewLRU[*models.ViewerProfile](cfg.ProfileCapacity, cfg.ProfileTTL),
		lastRead: NewLRU[time.Time](cfg.LastReadCapacity, cfg.LastReadTTL),
	}

	if cfg.Durable != nil {
		durable, err := OpenDurable(*cfg.Durable)
		if err != nil {
			return nil, fmt.Errorf("open durable tier: %w", err)
		}
		tc.durable = durable
		tc.cb = newDurableBreaker()
	}

	return tc, nil
}

// newDurableBreaker builds the circuit breaker guarding the durable tier.
// Opens after 60% failure rate with minimum 5 requests; misses do not
// count as failures.
func newDurableBreaker() *gobreaker.CircuitBreaker[any] {
	cbName := "durable-cache"

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CACHE] Durable tier breaker transition")
			metrics.RecordBreakerTransition(name, toStr)
		},
	})
}

// breakerStateString converts circuit breaker state to string for logging.
func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GetTimeline returns the cached timeline for a viewer, checking the
// memory tier first and falling back to the durable tier.
func (tc *TieredCache) GetTimeline(viewerID string) (*CachedTimeline, bool) {
	if timeline, ok := tc.store.Get(viewerID); ok {
		metrics.RecordCacheHit(metrics.TierMemory, metrics.KindTimeline)
		return timeline, true
	}
	metrics.RecordCacheMiss(metrics.TierMemory, metrics.KindTimeline)

	if tc.durable == nil {
		return nil, false
	}

	result, err := tc.cb.Execute(func() (any, error) {
		return tc.durable.GetTimeline(viewerID)
	})
	if err != nil {
		tc.recordDurableMiss(metrics.KindTimeline, err)
		return nil, false
	}

	timeline, ok := result.(*CachedTimeline)
	if !ok || timeline == nil {
		return nil, false
	}

	remaining := tc.cfg.TimelineTTL - time.Since(timeline.AssembledAt)
	if remaining <= 0 {
		// Stale durable entry, drop it
		tc.durableDelete(viewerID)
		metrics.RecordCacheMiss(metrics.TierDurable, metrics.KindTimeline)
		return nil, false
	}

	metrics.RecordCacheHit(metrics.TierDurable, metrics.KindTimeline)
	tc.store.Put(viewerID, timeline, remaining)
	return timeline, true
}

// PutTimeline stores a timeline in both tiers.
func (tc *TieredCache) PutTimeline(viewerID string, timeline *CachedTimeline, ttl time.Duration) {
	if tc.store.Put(viewerID, timeline, ttl) {
		metrics.RecordCacheEviction(metrics.KindTimeline)
	}

	if tc.durable == nil {
		return
	}
	_, err := tc.cb.Execute(func() (any, error) {
		return nil, tc.durable.PutTimeline(viewerID, timeline, ttl)
	})
	if err != nil {
		tc.recordDurableError("put timeline", err)
	}
}

// InvalidateTimeline drops a viewer's timeline from both tiers.
// Returns true if the memory tier held an entry.
func (tc *TieredCache) InvalidateTimeline(viewerID string) bool {
	had := tc.store.Invalidate(viewerID)
	tc.durableDelete(viewerID)
	return had
}

// InvalidateAuthor drops every cached timeline containing the author's
// notes from both tiers. Returns the number of memory-tier timelines
// dropped.
func (tc *TieredCache) InvalidateAuthor(authorID string) int {
	// Capture affected viewers before the index entries go away
	var viewers []string
	if tc.durable != nil {
		viewers = tc.store.ViewersForAuthor(authorID)
	}

	dropped := tc.store.InvalidateAuthor(authorID)
	if dropped > 0 {
		metrics.AuthorInvalidations.Add(float64(dropped))
	}

	for _, viewerID := range viewers {
		tc.durableDelete(viewerID)
	}
	return dropped
}

// GetProfile returns the cached viewer profile.
func (tc *TieredCache) GetProfile(viewerID string) (*models.ViewerProfile, bool) {
	if profile, ok := tc.profiles.Get(viewerID); ok {
		metrics.RecordCacheHit(metrics.TierMemory, metrics.KindProfile)
		return profile, true
	}
	metrics.RecordCacheMiss(metrics.TierMemory, metrics.KindProfile)

	if tc.durable == nil {
		return nil, false
	}

	result, err := tc.cb.Execute(func() (any, error) {
		return tc.durable.GetProfile(viewerID)
	})
	if err != nil {
		tc.recordDurableMiss(metrics.KindProfile, err)
		return nil, false
	}

	profile, ok := result.(*models.ViewerProfile)
	if !ok || profile == nil {
		return nil, false
	}

	remaining := tc.cfg.ProfileTTL - time.Since(profile.LastUpdated)
	if remaining <= 0 {
		metrics.RecordCacheMiss(metrics.TierDurable, metrics.KindProfile)
		return nil, false
	}

	metrics.RecordCacheHit(metrics.TierDurable, metrics.KindProfile)
	tc.profiles.PutTTL(viewerID, profile, remaining)
	return profile, true
}

// PutProfile stores a viewer profile in both tiers.
func (tc *TieredCache) PutProfile(viewerID string, profile *models.ViewerProfile, ttl time.Duration) {
	if tc.profiles.PutTTL(viewerID, profile, ttl) {
		metrics.RecordCacheEviction(metrics.KindProfile)
	}

	if tc.durable == nil {
		return
	}
	_, err := tc.cb.Execute(func() (any, error) {
		return nil, tc.durable.PutProfile(viewerID, profile, ttl)
	})
	if err != nil {
		tc.recordDurableError("put profile", err)
	}
}

// InvalidateProfile drops a viewer's profile from both tiers so the
// next request reloads updated preferences.
func (tc *TieredCache) InvalidateProfile(viewerID string) {
	tc.profiles.Remove(viewerID)

	if tc.durable == nil {
		return
	}
	_, err := tc.cb.Execute(func() (any, error) {
		return nil, tc.durable.DeleteProfile(viewerID)
	})
	if err != nil {
		tc.recordDurableError("delete profile", err)
	}
}

// GetLastRead returns the viewer's last-read marker.
func (tc *TieredCache) GetLastRead(viewerID string) (time.Time, bool) {
	if readAt, ok := tc.lastRead.Get(viewerID); ok {
		metrics.RecordCacheHit(metrics.TierMemory, metrics.KindLastRead)
		return readAt, true
	}
	metrics.RecordCacheMiss(metrics.TierMemory, metrics.KindLastRead)

	if tc.durable == nil {
		return time.Time{}, false
	}

	result, err := tc.cb.Execute(func() (any, error) {
		return tc.durable.GetLastRead(viewerID)
	})
	if err != nil {
		tc.recordDurableMiss(metrics.KindLastRead, err)
		return time.Time{}, false
	}

	readAt, ok := result.(time.Time)
	if !ok || readAt.IsZero() {
		return time.Time{}, false
	}

	metrics.RecordCacheHit(metrics.TierDurable, metrics.KindLastRead)
	tc.lastRead.PutTTL(viewerID, readAt, tc.cfg.LastReadTTL)
	return readAt, true
}

// SetLastRead stores the viewer's last-read marker in both tiers.
func (tc *TieredCache) SetLastRead(viewerID string, readAt time.Time, ttl time.Duration) {
	if tc.lastRead.PutTTL(viewerID, readAt, ttl) {
		metrics.RecordCacheEviction(metrics.KindLastRead)
	}

	if tc.durable == nil {
		return
	}
	_, err := tc.cb.Execute(func() (any, error) {
		return nil, tc.durable.SetLastRead(viewerID, readAt, ttl)
	})
	if err != nil {
		tc.recordDurableError("set last read", err)
	}
}

// CleanupExpired sweeps expired entries from all memory tiers and
// returns the total removed.
func (tc *TieredCache) CleanupExpired() int {
	removed := tc.store.CleanupExpired()
	removed += tc.profiles.CleanupExpired()
	removed += tc.lastRead.CleanupExpired()
	return removed
}

// RunGC runs durable-tier garbage collection. No-op when the durable
// tier is disabled.
func (tc *TieredCache) RunGC() error {
	if tc.durable == nil {
		return nil
	}
	return tc.durable.RunGC()
}

// Stats returns aggregated counters from every tier.
func (tc *TieredCache) Stats() TieredStats {
	stats := TieredStats{
		Timelines: tc.store.Stats(),
		Profiles:  tc.profiles.Stats(),
		LastRead:  tc.lastRead.Stats(),
	}
	if tc.durable != nil {
		stats.DurableEnabled = true
		stats.DurableLSMBytes, stats.DurableVLogBytes = tc.durable.SizeBytes()
		stats.BreakerState = breakerStateString(tc.cb.State())
	}
	return stats
}

// Close shuts down the durable tier if enabled.
func (tc *TieredCache) Close() error {
	if tc.durable == nil {
		return nil
	}
	return tc.durable.Close()
}

func (tc *TieredCache) durableDelete(viewerID string) {
	if tc.durable == nil {
		return
	}
	_, err := tc.cb.Execute(func() (any, error) {
		return nil, tc.durable.DeleteTimeline(viewerID)
	})
	if err != nil {
		tc.recordDurableError("delete timeline", err)
	}
}

// recordDurableMiss distinguishes a plain miss from a durable failure.
func (tc *TieredCache) recordDurableMiss(kind string, err error) {
	if errors.Is(err, ErrNotFound) {
		metrics.RecordCacheMiss(metrics.TierDurable, kind)
		return
	}
	tc.recordDurableError("get "+kind, err)
}

func (tc *TieredCache) recordDurableError(op string, err error) {
	metrics.RecordDurableCacheError()

	// Breaker rejections are expected while open, don't log each one
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	logging.Debug().Err(err).Str("op", op).Msg("[CACHE] Durable tier operation failed")
}
