// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

const engagementPingBudget = 2 * time.Second

// healthPayload is the /health response shape.
type healthPayload struct {
	Status          string                 `json:"status"`
	TimelineVersion string                 `json:"timeline_version"`
	UptimeSeconds   int64                  `json:"uptime_seconds"`
	Components      map[string]interface{} `json:"components"`
}

// cacheDetail summarizes the tiered cache for the health surface.
type cacheDetail struct {
	TimelineHitRatio float64 `json:"timeline_hit_ratio"`
	TimelineEntries  int     `json:"timeline_entries"`
	ProfileEntries   int     `json:"profile_entries"`
	DurableEnabled   bool    `json:"durable_enabled"`
	BreakerState     string  `json:"breaker_state,omitempty"`
}

// Health reports liveness plus a per-component detail map.
//
// @Summary Health check
// @Description Returns service status with per-component details: cache hit ratio, fan-out queue depth, stream session count, event-bridge connectivity and engagement store ping.
// @Tags Operations
// @Produce json
// @Success 200 {object} Response{data=healthPayload}
// @Router /health [get]
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := "ok"
	components := make(map[string]interface{}, 8)

	components["timeline"] = h.service.Stats()

	if h.cache != nil {
		stats := h.cache.Stats()
		components["cache"] = cacheDetail{
			TimelineHitRatio: hitRatio(stats.Timelines.Hits, stats.Timelines.Misses),
			TimelineEntries:  stats.Timelines.Size,
			ProfileEntries:   stats.Profiles.Size,
			DurableEnabled:   stats.DurableEnabled,
			BreakerState:     stats.BreakerState,
		}
	}

	if h.fanout != nil {
		components["fanout"] = h.fanout.Stats()
	}
	if h.hub != nil {
		components["streaming"] = h.hub.Stats()
	}
	if h.limiter != nil {
		components["admission"] = h.limiter.Stats()
	}

	if h.bridge != nil {
		connected := h.bridge.Connected()
		components["bridge"] = map[string]bool{"connected": connected}
		if !connected {
			status = "degraded"
		}
	}

	if h.engagement != nil {
		ctx, cancel := context.WithTimeout(r.Context(), engagementPingBudget)
		if err := h.engagement.Ping(ctx); err != nil {
			components["engagement"] = map[string]string{"status": "unreachable", "error": err.Error()}
			status = "degraded"
		} else {
			components["engagement"] = map[string]string{"status": "ok"}
		}
		cancel()
	}

	rw.Success(healthPayload{
		Status:          status,
		TimelineVersion: models.TimelineVersion,
		UptimeSeconds:   int64(time.Since(h.started).Seconds()),
		Components:      components,
	})
}

func hitRatio(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
