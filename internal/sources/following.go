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

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
)

const (
	// defaultFollowSetTTL bounds how long a resolved follow set is reused
	// before the follow graph is consulted again.
	defaultFollowSetTTL = 10 * time.Minute

	// followSetCacheSize bounds the number of viewers with a cached
	// follow set.
	followSetCacheSize = 4096
)

// FollowingSource returns notes authored by the viewer's follow set,
// newest first. Follow sets are cached per viewer with a short TTL so hot
// viewers do not hammer the follow graph on every request.
type FollowingSource struct {
	notes      NoteReader
	graph      FollowGraph
	followSets *cache.LRU[[]string]
	logger     zerolog.Logger
}

// NewFollowingSource creates the following source. A non-positive TTL
// falls back to the 10-minute default.
func NewFollowingSource(notes NoteReader, graph FollowGraph, followSetTTL time.Duration) *FollowingSource {
	if followSetTTL <= 0 {
		followSetTTL = defaultFollowSetTTL
	}
	return &FollowingSource{
		notes:      notes,
		graph:      graph,
		followSets: cache.NewLRU[[]string](followSetCacheSize, followSetTTL),
		logger:     logging.WithComponent("sources.following"),
	}
}

// Kind implements Source.
func (s *FollowingSource) Kind() models.Source {
	return models.SourceFollowing
}

// Fetch implements Source.
func (s *FollowingSource) Fetch(ctx context.Context, viewerID string, _ models.TimelineConfig, since time.Time, maxCount int) ([]models.Note, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	authors, err := s.followSet(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolve follow set for %s: %w", viewerID, err)
	}
	if len(authors) == 0 {
		return nil, nil
	}

	notes, err := s.notes.NotesByAuthors(ctx, authors, since, maxCount)
	if err != nil {
		return nil, fmt.Errorf("fetch following notes for %s: %w", viewerID, err)
	}
	return notes, nil
}

// InvalidateFollowSet drops the cached follow set for a viewer. Called
// when the follow graph changes so the next fetch observes the new set.
func (s *FollowingSource) InvalidateFollowSet(viewerID string) {
	s.followSets.Remove(viewerID)
}

func (s *FollowingSource) followSet(ctx context.Context, viewerID string) ([]string, error) {
	if authors, ok := s.followSets.Get(viewerID); ok {
		return authors, nil
	}

	authors, err := s.graph.Following(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	s.followSets.Put(viewerID, authors)
	s.logger.Debug().
		Str("viewer_id", viewerID).
		Int("follow_count", len(authors)).
		Msg("follow set cached")
	return authors, nil
}
