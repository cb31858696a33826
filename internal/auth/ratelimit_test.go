// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/chronographus/internal/config"
)

func testLimiterConfig() config.APIConfig {
	return config.APIConfig{RateLimitRPM: 60, RateLimitBurst: 2}
}

func TestRateLimiterBurstExhaustion(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())

	if !rl.Allow(ClassTimeline, "alice", 0) {
		t.Fatal("first request denied")
	}
	if !rl.Allow(ClassTimeline, "alice", 0) {
		t.Fatal("second request denied within burst")
	}
	if rl.Allow(ClassTimeline, "alice", 0) {
		t.Error("request beyond burst allowed")
	}

	stats := rl.Stats()
	if stats.Allowed != 2 || stats.Denied != 1 {
		t.Errorf("stats = %+v, want 2 allowed / 1 denied", stats)
	}
}

func TestRateLimiterIsolatesCallersAndClasses(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())

	rl.Allow(ClassTimeline, "alice", 0)
	rl.Allow(ClassTimeline, "alice", 0)

	if !rl.Allow(ClassTimeline, "bob", 0) {
		t.Error("bob denied by alice's exhausted bucket")
	}
	if !rl.Allow(ClassEngagement, "alice", 0) {
		t.Error("engagement class denied by timeline bucket")
	}

	if got := rl.Stats().Buckets; got != 3 {
		t.Errorf("bucket count = %d, want 3", got)
	}
}

func TestRateLimiterOverrideOnlyLowers(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())

	// Override above the class default must not raise the rate.
	rl.Allow(ClassTimeline, "alice", 6000)
	rl.mu.Lock()
	entry := rl.buckets[ClassTimeline+":alice"]
	rl.mu.Unlock()
	if entry.rpm != 60 {
		t.Errorf("rpm after high override = %d, want 60", entry.rpm)
	}

	// Override below lowers the refill rate in place.
	rl.Allow(ClassTimeline, "alice", 6)
	rl.mu.Lock()
	entry = rl.buckets[ClassTimeline+":alice"]
	rl.mu.Unlock()
	if entry.rpm != 6 {
		t.Errorf("rpm after low override = %d, want 6", entry.rpm)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(config.APIConfig{RateLimitRPM: 1, RateLimitBurst: 1, RateLimitDisabled: true})

	for i := 0; i < 50; i++ {
		if !rl.Allow(ClassTimeline, "alice", 0) {
			t.Fatal("disabled limiter denied a request")
		}
	}
	if got := rl.Stats().Buckets; got != 0 {
		t.Errorf("disabled limiter created %d buckets", got)
	}
}

func TestRateLimiterSweepEvictsIdle(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())

	rl.Allow(ClassTimeline, "alice", 0)
	rl.Allow(ClassTimeline, "bob", 0)

	rl.mu.Lock()
	rl.buckets[ClassTimeline+":alice"].lastAccess = time.Now().Add(-2 * bucketIdleTTL)
	rl.mu.Unlock()

	if evicted := rl.sweep(); evicted != 1 {
		t.Errorf("sweep evicted %d, want 1", evicted)
	}
	if got := rl.Stats().Buckets; got != 1 {
		t.Errorf("bucket count after sweep = %d, want 1", got)
	}
}

func TestRateLimiterServeStopsOnCancel(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rl.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

func TestRateLimiterStreamingClassFloor(t *testing.T) {
	rl := NewRateLimiter(config.APIConfig{RateLimitRPM: 20, RateLimitBurst: 1})
	if got := rl.classRPM[ClassStreaming]; got != 6 {
		t.Errorf("streaming rpm = %d, want floor of 6", got)
	}
}
