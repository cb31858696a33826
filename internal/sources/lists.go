// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
)

// ListsSource fetches notes authored by members of the viewer's curated
// lists. Membership resolution is per-fetch; the list directory is
// expected to be cheap (in-memory or cached by the store).
type ListsSource struct {
	notes  NoteReader
	lists  ListDirectory
	logger zerolog.Logger
}

// NewListsSource creates the curated-lists candidate source.
func NewListsSource(notes NoteReader, lists ListDirectory) *ListsSource {
	return &ListsSource{
		notes:  notes,
		lists:  lists,
		logger: logging.WithComponent("sources.lists"),
	}
}

// Kind implements Source.
func (s *ListsSource) Kind() models.Source {
	return models.SourceLists
}

// Fetch implements Source. A viewer with no list members gets an empty
// result, not an error.
func (s *ListsSource) Fetch(ctx context.Context, viewerID string, _ models.TimelineConfig, since time.Time, maxCount int) ([]models.Note, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	members, err := s.lists.ListMembers(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolve list members for %s: %w", viewerID, err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	notes, err := s.notes.NotesByAuthors(ctx, members, since, maxCount)
	if err != nil {
		return nil, fmt.Errorf("fetch list notes for %s: %w", viewerID, err)
	}
	sortNewestFirst(notes)
	return truncate(notes, maxCount), nil
}
