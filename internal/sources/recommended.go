// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package sources

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

const (
	// defaultRecommendedLookback bounds how far back the recommended
	// source reaches for discovery candidates.
	defaultRecommendedLookback = 24 * time.Hour

	// recommendedOverfetch widens the store scan so enough candidates
	// survive the followed-author exclusion.
	recommendedOverfetch = 4
)

// RecommendedSource surfaces discovery candidates: recent notes from
// authors the viewer does not follow, preferring notes with stronger
// engagement. The viewer's own notes are excluded.
type RecommendedSource struct {
	notes    NoteReader
	graph    FollowGraph
	lookback time.Duration
}

// NewRecommendedSource creates the recommended source. A non-positive
// lookback falls back to the 24-hour default.
func NewRecommendedSource(notes NoteReader, graph FollowGraph, lookback time.Duration) *RecommendedSource {
	if lookback <= 0 {
		lookback = defaultRecommendedLookback
	}
	return &RecommendedSource{notes: notes, graph: graph, lookback: lookback}
}

// Kind implements Source.
func (s *RecommendedSource) Kind() models.Source {
	return models.SourceRecommended
}

// Fetch implements Source.
func (s *RecommendedSource) Fetch(ctx context.Context, viewerID string, _ models.TimelineConfig, since time.Time, maxCount int) ([]models.Note, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	// The lookback floor wins over a wider caller window.
	floor := time.Now().Add(-s.lookback)
	if since.Before(floor) {
		since = floor
	}

	recent, err := s.notes.RecentNotes(ctx, since, maxCount*recommendedOverfetch)
	if err != nil {
		return nil, fmt.Errorf("fetch recommended notes for %s: %w", viewerID, err)
	}
	if len(recent) == 0 {
		return nil, nil
	}

	followed, err := s.graph.Following(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("resolve follow set for %s: %w", viewerID, err)
	}
	excluded := make(map[string]bool, len(followed)+1)
	for _, author := range followed {
		excluded[author] = true
	}
	excluded[viewerID] = true

	candidates := recent[:0]
	for _, note := range recent {
		if !excluded[note.AuthorID] {
			candidates = append(candidates, note)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Engagement-rate ordering decides which candidates survive the cut;
	// the pipeline re-sorts whatever we return.
	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := candidates[i].EngagementRate(), candidates[j].EngagementRate()
		if ri != rj {
			return ri > rj
		}
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
		}
		return candidates[i].NoteID < candidates[j].NoteID
	})

	return truncate(candidates, maxCount), nil
}
