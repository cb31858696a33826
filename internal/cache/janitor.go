// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/logging"
)

// defaultCleanupInterval is the sweep cadence when none is configured.
const defaultCleanupInterval = time.Minute

// gcEvery is how many sweeps pass between durable-tier GC runs. Value
// log GC is heavier than an expiry sweep, so it runs less often.
const gcEvery = 10

// Janitor periodically sweeps expired in-memory entries and runs
// durable-tier garbage collection. The cache itself stays passive;
// the janitor is the supervised part. It implements suture.Service.
type Janitor struct {
	cache    *TieredCache
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitor wraps a tiered cache in a supervised sweeper. A
// non-positive interval falls back to one minute.
func NewJanitor(cache *TieredCache, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	return &Janitor{
		cache:    cache,
		interval: interval,
		logger:   logging.WithComponent("cache.janitor"),
	}
}

// Serve sweeps until the context is cancelled.
func (j *Janitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info().Dur("interval", j.interval).Msg("cache janitor started")

	sweeps := 0
	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("cache janitor stopped")
			return ctx.Err()
		case <-ticker.C:
			removed := j.cache.CleanupExpired()
			if removed > 0 {
				j.logger.Debug().Int("removed", removed).Msg("swept expired cache entries")
			}

			sweeps++
			if sweeps%gcEvery != 0 {
				continue
			}
			if err := j.cache.RunGC(); err != nil {
				j.logger.Warn().Err(err).Msg("durable tier gc failed")
			}
		}
	}
}

// String identifies the janitor in supervisor logs.
func (j *Janitor) String() string { return "cache-janitor" }
