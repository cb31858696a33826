// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"testing"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

func rankedNote(noteID, authorID string, score float64) models.RankedItem {
	return models.RankedItem{
		Note: models.Note{
			NoteID:    noteID,
			AuthorID:  authorID,
			CreatedAt: time.Now(),
		},
		Source:     models.SourceFollowing,
		FinalScore: score,
	}
}

func timelineFor(items ...models.RankedItem) *CachedTimeline {
	return &CachedTimeline{
		Items:       items,
		AssembledAt: time.Now(),
	}
}

func TestTimelineStore_PutGet(t *testing.T) {
	s := NewTimelineStore(10)

	s.Put("viewer1", timelineFor(rankedNote("n1", "alice", 0.9)), time.Minute)
	s.Put("viewer2", timelineFor(rankedNote("n2", "bob", 0.8)), time.Minute)

	timeline, found := s.Get("viewer1")
	if !found {
		t.Fatal("Expected to find viewer1's timeline")
	}
	if len(timeline.Items) != 1 || timeline.Items[0].Note.NoteID != "n1" {
		t.Errorf("Expected viewer1's timeline to hold n1, got %+v", timeline.Items)
	}

	if _, found := s.Get("viewer3"); found {
		t.Error("Expected miss for uncached viewer")
	}
}

func TestTimelineStore_AuthorInvalidation(t *testing.T) {
	s := NewTimelineStore(10)

	s.Put("viewer1", timelineFor(
		rankedNote("n1", "alice", 0.9),
		rankedNote("n2", "bob", 0.8),
	), time.Minute)
	s.Put("viewer2", timelineFor(
		rankedNote("n3", "bob", 0.7),
		rankedNote("n4", "carol", 0.6),
	), time.Minute)
	s.Put("viewer3", timelineFor(
		rankedNote("n5", "carol", 0.5),
	), time.Minute)

	// bob appears in viewer1 and viewer2 timelines only
	if dropped := s.InvalidateAuthor("bob"); dropped != 2 {
		t.Errorf("Expected 2 timelines dropped for bob, got %d", dropped)
	}

	if _, found := s.Get("viewer1"); found {
		t.Error("Expected viewer1's timeline to be invalidated")
	}
	if _, found := s.Get("viewer2"); found {
		t.Error("Expected viewer2's timeline to be invalidated")
	}
	if _, found := s.Get("viewer3"); !found {
		t.Error("Expected viewer3's timeline to survive")
	}

	// Repeating the invalidation finds nothing
	if dropped := s.InvalidateAuthor("bob"); dropped != 0 {
		t.Errorf("Expected 0 timelines on repeat invalidation, got %d", dropped)
	}
}

func TestTimelineStore_PutReindexesAuthors(t *testing.T) {
	s := NewTimelineStore(10)

	s.Put("viewer1", timelineFor(rankedNote("n1", "alice", 0.9)), time.Minute)
	// Replace the timeline with one that no longer contains alice
	s.Put("viewer1", timelineFor(rankedNote("n2", "bob", 0.8)), time.Minute)

	if dropped := s.InvalidateAuthor("alice"); dropped != 0 {
		t.Errorf("Expected alice to be unindexed after replacement, got %d drops", dropped)
	}
	if dropped := s.InvalidateAuthor("bob"); dropped != 1 {
		t.Errorf("Expected 1 drop for bob, got %d", dropped)
	}
}

func TestTimelineStore_EvictionMaintainsIndex(t *testing.T) {
	s := NewTimelineStore(2)

	s.Put("viewer1", timelineFor(rankedNote("n1", "alice", 0.9)), time.Minute)
	s.Put("viewer2", timelineFor(rankedNote("n2", "bob", 0.8)), time.Minute)
	s.Put("viewer3", timelineFor(rankedNote("n3", "carol", 0.7)), time.Minute)

	// viewer1 was least recently used and must be gone
	if _, found := s.Get("viewer1"); found {
		t.Error("Expected viewer1 to be evicted")
	}

	// The evicted entry's author index references must be gone too
	if viewers := s.ViewersForAuthor("alice"); len(viewers) != 0 {
		t.Errorf("Expected no viewers indexed for alice, got %v", viewers)
	}

	stats := s.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
	if stats.AuthorsTracked != 2 {
		t.Errorf("Expected 2 authors tracked, got %d", stats.AuthorsTracked)
	}
}

func TestTimelineStore_ViewersForAuthor(t *testing.T) {
	s := NewTimelineStore(10)

	s.Put("viewer1", timelineFor(rankedNote("n1", "alice", 0.9)), time.Minute)
	s.Put("viewer2", timelineFor(rankedNote("n2", "alice", 0.8)), time.Minute)

	viewers := s.ViewersForAuthor("alice")
	if len(viewers) != 2 {
		t.Fatalf("Expected 2 viewers for alice, got %d", len(viewers))
	}
	if viewers := s.ViewersForAuthor("nobody"); viewers != nil {
		t.Errorf("Expected nil for unknown author, got %v", viewers)
	}
}

func TestTimelineStore_TTLExpiration(t *testing.T) {
	s := NewTimelineStore(10)

	s.Put("viewer1", timelineFor(rankedNote("n1", "alice", 0.9)), 50*time.Millisecond)

	if _, found := s.Get("viewer1"); !found {
		t.Error("Expected timeline to be present immediately")
	}

	time.Sleep(60 * time.Millisecond)

	if _, found := s.Get("viewer1"); found {
		t.Error("Expected timeline to be expired")
	}
}

func TestTimelineStore_CleanupExpired(t *testing.T) {
	s := NewTimelineStore(10)

	s.Put("viewer1", timelineFor(rankedNote("n1", "alice", 0.9)), 10*time.Millisecond)
	s.Put("viewer2", timelineFor(rankedNote("n2", "bob", 0.8)), time.Minute)

	time.Sleep(20 * time.Millisecond)

	if removed := s.CleanupExpired(); removed != 1 {
		t.Errorf("Expected 1 expired timeline removed, got %d", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 timeline remaining, got %d", s.Len())
	}

	// Expired entries leave the author index too
	if viewers := s.ViewersForAuthor("alice"); len(viewers) != 0 {
		t.Errorf("Expected alice to be unindexed after cleanup, got %v", viewers)
	}
}

func TestTimelineStore_InvalidateSingleViewer(t *testing.T) {
	s := NewTimelineStore(10)

	s.Put("viewer1", timelineFor(rankedNote("n1", "alice", 0.9)), time.Minute)

	if !s.Invalidate("viewer1") {
		t.Error("Expected Invalidate to return true for cached viewer")
	}
	if s.Invalidate("viewer1") {
		t.Error("Expected Invalidate to return false for missing viewer")
	}

	stats := s.Stats()
	if stats.Invalidations != 1 {
		t.Errorf("Expected 1 invalidation counted, got %d", stats.Invalidations)
	}
}
