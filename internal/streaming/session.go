// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package streaming

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// ErrSessionClosed is returned by Next once the session has been closed.
var ErrSessionClosed = errors.New("streaming: session closed")

// Session is one subscriber's update stream. Updates are published into
// a bounded pending queue and consumed by the transport's write loop via
// Next.
type Session struct {
	id        string
	viewerID  string
	queueCap  int
	heartbeat time.Duration
	limiter   *rate.Limiter

	mu       sync.Mutex
	pending  []models.TimelineUpdate
	closed   bool
	lastFlow time.Time

	wake chan struct{}
}

func newSession(viewerID string, queueCap int, perSecond float64, heartbeat time.Duration) *Session {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Session{
		id:        uuid.NewString(),
		viewerID:  viewerID,
		queueCap:  queueCap,
		heartbeat: heartbeat,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
		lastFlow:  time.Now(),
		wake:      make(chan struct{}, 1),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// ViewerID returns the subscribed viewer.
func (s *Session) ViewerID() string { return s.viewerID }

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close marks the session closed and wakes any blocked Next call.
// Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// offer enqueues one update for delivery. Updates beyond the per-session
// rate are dropped outright, never queued; a full queue drops its oldest
// pending update first.
func (s *Session) offer(update models.TimelineUpdate) bool {
	if !s.limiter.Allow() {
		metrics.RecordStreamDrop("rate_limited")
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if len(s.pending) >= s.queueCap {
		s.pending = s.pending[1:]
		metrics.RecordStreamDrop("queue_full")
	}
	s.pending = append(s.pending, update)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until an update is pending, the heartbeat interval elapses
// with no flow (returning a keep-alive sentinel), the context is
// cancelled, or the session is closed.
func (s *Session) Next(ctx context.Context) (models.TimelineUpdate, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return models.TimelineUpdate{}, ErrSessionClosed
		}
		if len(s.pending) > 0 {
			update := s.pending[0]
			s.pending = s.pending[1:]
			s.lastFlow = time.Now()
			s.mu.Unlock()
			metrics.StreamDeliveries.Inc()
			return update, nil
		}
		idle := time.Since(s.lastFlow)
		if idle >= s.heartbeat {
			s.lastFlow = time.Now()
			s.mu.Unlock()
			metrics.StreamKeepAlives.Inc()
			return models.KeepAliveUpdate(time.Now().UTC()), nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return models.TimelineUpdate{}, ctx.Err()
		case <-s.wake:
		case <-time.After(s.heartbeat - idle):
		}
	}
}

// pendingCount returns the queued update count.
func (s *Session) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
