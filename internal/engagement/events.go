// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/chronographus/internal/models"
)

// defaultRecentLimit bounds RecentByViewer when the caller passes no
// limit.
const defaultRecentLimit = 50

// pruneInterval is how often the retention pruner wakes.
const pruneInterval = time.Hour

// Append writes one event. Replays carrying the same event id are
// ignored, so the bridge subscriber can redeliver without double
// counting.
func (s *Store) Append(ctx context.Context, event models.EngagementEvent) error {
	if event.ViewerID == "" || event.NoteID == "" {
		return fmt.Errorf("engagement event missing viewer or note id")
	}
	if !models.ValidEngagementAction(string(event.Action)) {
		return fmt.Errorf("engagement action %q not recognized", event.Action)
	}

	eventID := event.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO engagement_events (
			event_id, viewer_id, note_id, author_id, action, duration_seconds, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		eventID, event.ViewerID, event.NoteID, event.AuthorID,
		string(event.Action), event.DurationSeconds, occurred,
	)
	if err != nil {
		return fmt.Errorf("append engagement event: %w", err)
	}
	return nil
}

// NoteActivity aggregates the recorded actions for one note.
type NoteActivity struct {
	NoteID        string           `json:"note_id"`
	Actions       map[string]int64 `json:"actions"`
	UniqueViewers int64            `json:"unique_viewers"`
}

// NoteActivity returns per-action counts and the distinct viewer count
// for one note. Unknown notes return an empty breakdown, not an error.
func (s *Store) NoteActivity(ctx context.Context, noteID string) (*NoteActivity, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	activity := &NoteActivity{NoteID: noteID, Actions: make(map[string]int64)}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT action, COUNT(*) AS total
		FROM engagement_events
		WHERE note_id = ?
		GROUP BY action`, noteID)
	if err != nil {
		return nil, fmt.Errorf("query note activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var total int64
		if err := rows.Scan(&action, &total); err != nil {
			return nil, fmt.Errorf("scan note activity: %w", err)
		}
		activity.Actions[action] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note activity: %w", err)
	}

	err = s.conn.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT viewer_id) FROM engagement_events WHERE note_id = ?`,
		noteID,
	).Scan(&activity.UniqueViewers)
	if err != nil {
		return nil, fmt.Errorf("count distinct viewers: %w", err)
	}

	return activity, nil
}

// RecentByViewer returns the viewer's latest recorded actions, newest
// first. A non-positive limit uses the default.
func (s *Store) RecentByViewer(ctx context.Context, viewerID string, limit int) ([]models.EngagementEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT event_id, viewer_id, note_id, author_id, action, duration_seconds, occurred_at
		FROM engagement_events
		WHERE viewer_id = ?
		ORDER BY occurred_at DESC
		LIMIT ?`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent engagements: %w", err)
	}
	defer rows.Close()

	var events []models.EngagementEvent
	for rows.Next() {
		var ev models.EngagementEvent
		var action string
		err := rows.Scan(&ev.EventID, &ev.ViewerID, &ev.NoteID, &ev.AuthorID,
			&action, &ev.DurationSeconds, &ev.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan engagement event: %w", err)
		}
		ev.Action = models.EngagementAction(action)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent engagements: %w", err)
	}

	return events, nil
}

// TotalEvents returns the event row count.
func (s *Store) TotalEvents(ctx context.Context) (int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var count int64
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM engagement_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("count engagement events: %w", err)
	}
	return count, nil
}

// PruneBefore deletes events that occurred before cutoff and reports
// how many rows went away.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	res, err := s.conn.ExecContext(ctx,
		"DELETE FROM engagement_events WHERE occurred_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune engagement events: %w", err)
	}
	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruned row count: %w", err)
	}
	return pruned, nil
}

// Serve runs the retention pruner until the context is cancelled. It
// implements suture.Service. With retention disabled it only waits, so
// the store can sit in the supervision tree unconditionally.
func (s *Store) Serve(ctx context.Context) error {
	if s.cfg.RetentionDays <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	s.logger.Info().
		Int("retention_days", s.cfg.RetentionDays).
		Msg("engagement retention pruner started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("engagement retention pruner stopped")
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
			pruned, err := s.PruneBefore(ctx, cutoff)
			if err != nil {
				s.logger.Warn().Err(err).Msg("retention prune failed")
				continue
			}
			if pruned > 0 {
				s.logger.Info().
					Int64("events", pruned).
					Time("cutoff", cutoff).
					Msg("pruned engagement events")
			}
		}
	}
}

// String identifies the pruner in supervisor logs.
func (s *Store) String() string { return "engagement-pruner" }
