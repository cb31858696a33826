// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package sources

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// Source is the uniform candidate-source contract consumed by the pipeline.
// Implementations return at most maxCount notes created after since; they
// may return fewer, including none.
type Source interface {
	// Kind identifies which timeline slot the source fills.
	Kind() models.Source

	// Fetch returns candidate notes for the viewer. Ordering is
	// best-effort only; the pipeline re-sorts globally.
	Fetch(ctx context.Context, viewerID string, cfg models.TimelineConfig, since time.Time, maxCount int) ([]models.Note, error)
}

// NoteReader is the slice of the note store the sources consume.
type NoteReader interface {
	NotesByAuthors(ctx context.Context, authors []string, since time.Time, limit int) ([]models.Note, error)
	RecentNotes(ctx context.Context, since time.Time, limit int) ([]models.Note, error)
}

// FollowGraph resolves viewer follow sets.
type FollowGraph interface {
	Following(ctx context.Context, viewerID string) ([]string, error)
}

// ListDirectory resolves viewer-curated author lists.
type ListDirectory interface {
	ListMembers(ctx context.Context, viewerID string) ([]string, error)
}

// sortNewestFirst orders notes by creation time descending with note id
// ascending as the tie-break, matching the store's deterministic ordering.
func sortNewestFirst(notes []models.Note) {
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].NoteID < notes[j].NoteID
	})
}

// truncate caps a note slice at limit without copying.
func truncate(notes []models.Note, limit int) []models.Note {
	if limit >= 0 && len(notes) > limit {
		return notes[:limit]
	}
	return notes
}
