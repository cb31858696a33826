// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package streaming

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// sweepInterval is how often the lazy sweep prunes closed sessions that
// were never explicitly unsubscribed.
const sweepInterval = 30 * time.Second

// Hub is the session registry. It fans published updates out to every
// open session of the target viewer.
type Hub struct {
	cfg config.StreamingConfig

	mu       sync.RWMutex
	sessions map[string][]*Session

	delivered atomic.Int64
	dropped   atomic.Int64

	logger zerolog.Logger
}

// NewHub builds the session registry with config defaults filled in.
func NewHub(cfg config.StreamingConfig) *Hub {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 500 * time.Millisecond
	}
	if cfg.SessionQueueSize <= 0 {
		cfg.SessionQueueSize = 64
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 5
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Hub{
		cfg:      cfg,
		sessions: make(map[string][]*Session),
		logger:   logging.WithComponent("streaming"),
	}
}

// Subscribe registers a new session for the viewer.
func (h *Hub) Subscribe(viewerID string) (*Session, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("streaming: viewer_id is required")
	}

	session := newSession(viewerID, h.cfg.SessionQueueSize, h.cfg.RateLimitPerSecond, h.cfg.HeartbeatInterval)

	h.mu.Lock()
	h.sessions[viewerID] = append(h.sessions[viewerID], session)
	total := h.countLocked()
	h.mu.Unlock()

	metrics.StreamSessionsActive.Set(float64(total))
	h.logger.Debug().
		Str("viewer_id", viewerID).
		Str("session_id", session.ID()).
		Int("total_sessions", total).
		Msg("stream session subscribed")
	return session, nil
}

// Unsubscribe closes the session and removes it from the registry.
func (h *Hub) Unsubscribe(session *Session) {
	if session == nil {
		return
	}
	session.Close()

	h.mu.Lock()
	h.removeClosedLocked(session.ViewerID())
	total := h.countLocked()
	h.mu.Unlock()

	metrics.StreamSessionsActive.Set(float64(total))
	h.logger.Debug().
		Str("viewer_id", session.ViewerID()).
		Str("session_id", session.ID()).
		Int("total_sessions", total).
		Msg("stream session unsubscribed")
}

// Publish offers the update to every open session of the viewer. Closed
// sessions observed on the way are pruned.
func (h *Hub) Publish(viewerID string, update models.TimelineUpdate) {
	h.mu.RLock()
	list := h.sessions[viewerID]
	sessions := make([]*Session, len(list))
	copy(sessions, list)
	h.mu.RUnlock()

	var sawClosed bool
	for _, session := range sessions {
		if session.Closed() {
			sawClosed = true
			continue
		}
		if session.offer(update) {
			h.delivered.Add(1)
		} else {
			h.dropped.Add(1)
		}
	}

	if sawClosed {
		h.mu.Lock()
		h.removeClosedLocked(viewerID)
		total := h.countLocked()
		h.mu.Unlock()
		metrics.StreamSessionsActive.Set(float64(total))
	}
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.countLocked()
}

// Serve runs the lazy sweep until the context is cancelled, then closes
// every remaining session. It implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	h.logger.Info().
		Dur("heartbeat", h.cfg.HeartbeatInterval).
		Int("session_queue", h.cfg.SessionQueueSize).
		Float64("rate_per_second", h.cfg.RateLimitPerSecond).
		Msg("stream hub started")

	for {
		select {
		case <-ctx.Done():
			closed := h.closeAll()
			h.logger.Info().Int("sessions_closed", closed).Msg("stream hub stopped")
			return ctx.Err()
		case <-ticker.C:
			if pruned := h.sweep(); pruned > 0 {
				h.logger.Debug().Int("pruned", pruned).Msg("swept closed stream sessions")
			}
		}
	}
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string { return "stream-hub" }

// Stats is a point-in-time snapshot for the health surface.
type Stats struct {
	Sessions  int   `json:"sessions"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
}

// Stats returns current hub counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Sessions:  h.SessionCount(),
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
	}
}

// sweep prunes closed sessions across all viewers.
func (h *Hub) sweep() int {
	h.mu.Lock()
	before := h.countLocked()
	for viewerID := range h.sessions {
		h.removeClosedLocked(viewerID)
	}
	total := h.countLocked()
	h.mu.Unlock()

	metrics.StreamSessionsActive.Set(float64(total))
	return before - total
}

// closeAll closes and drops every session. Returns how many were open.
func (h *Hub) closeAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var closed int
	for _, list := range h.sessions {
		for _, session := range list {
			session.Close()
			closed++
		}
	}
	h.sessions = make(map[string][]*Session)
	metrics.StreamSessionsActive.Set(0)
	return closed
}

// removeClosedLocked filters the viewer's list in place. Callers hold
// the write lock.
func (h *Hub) removeClosedLocked(viewerID string) {
	list := h.sessions[viewerID]
	keep := list[:0]
	for _, session := range list {
		if !session.Closed() {
			keep = append(keep, session)
		}
	}
	if len(keep) == 0 {
		delete(h.sessions, viewerID)
		return
	}
	h.sessions[viewerID] = keep
}

func (h *Hub) countLocked() int {
	var n int
	for _, list := range h.sessions {
		n += len(list)
	}
	return n
}
