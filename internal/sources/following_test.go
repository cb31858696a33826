// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

func TestFollowingSourceFetch(t *testing.T) {
	reader := &mockNoteReader{notes: []models.Note{
		makeNote("n1", "alice", 10, 5),
		makeNote("n2", "bob", 20, 3),
		makeNote("n3", "carol", 5, 9),
		makeNote("n4", "alice", 30, 1),
	}}
	graph := &mockFollowGraph{following: map[string][]string{
		"viewer": {"alice", "bob"},
	}}

	src := NewFollowingSource(reader, graph, 0)

	notes, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(notes) != 3 {
		t.Fatalf("Expected 3 notes from followed authors, got %d", len(notes))
	}
	want := []string{"n1", "n2", "n4"}
	for i, id := range want {
		if notes[i].NoteID != id {
			t.Errorf("Expected notes[%d] = %s, got %s", i, id, notes[i].NoteID)
		}
	}
	for _, n := range notes {
		if n.AuthorID == "carol" {
			t.Errorf("Expected no notes from unfollowed author, got %s", n.NoteID)
		}
	}
}

func TestFollowingSourceRespectsMaxCount(t *testing.T) {
	reader := &mockNoteReader{notes: []models.Note{
		makeNote("n1", "alice", 1, 0),
		makeNote("n2", "alice", 2, 0),
		makeNote("n3", "alice", 3, 0),
	}}
	graph := &mockFollowGraph{following: map[string][]string{
		"viewer": {"alice"},
	}}

	src := NewFollowingSource(reader, graph, 0)

	notes, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("Expected 2 notes, got %d", len(notes))
	}
	if notes[0].NoteID != "n1" {
		t.Errorf("Expected newest note n1 first, got %s", notes[0].NoteID)
	}
}

func TestFollowingSourceEmptyFollowSet(t *testing.T) {
	reader := &mockNoteReader{}
	graph := &mockFollowGraph{following: map[string][]string{}}

	src := NewFollowingSource(reader, graph, 0)

	notes, err := src.Fetch(context.Background(), "loner", models.TimelineConfig{}, time.Time{}, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Expected empty result for viewer with no follows, got %d notes", len(notes))
	}
	if got := reader.byAuthorsCalls.Load(); got != 0 {
		t.Errorf("Expected 0 store calls for empty follow set, got %d", got)
	}
}

func TestFollowingSourceCachesFollowSet(t *testing.T) {
	reader := &mockNoteReader{}
	graph := &mockFollowGraph{following: map[string][]string{
		"viewer": {"alice"},
	}}

	src := NewFollowingSource(reader, graph, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 5); err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
	}

	if got := graph.calls.Load(); got != 1 {
		t.Errorf("Expected 1 graph resolution across repeat fetches, got %d", got)
	}
}

func TestFollowingSourceInvalidateFollowSet(t *testing.T) {
	reader := &mockNoteReader{}
	graph := &mockFollowGraph{following: map[string][]string{
		"viewer": {"alice"},
	}}

	src := NewFollowingSource(reader, graph, time.Minute)

	if _, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 5); err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	src.InvalidateFollowSet("viewer")
	if _, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 5); err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}

	if got := graph.calls.Load(); got != 2 {
		t.Errorf("Expected 2 graph resolutions after invalidation, got %d", got)
	}
}

func TestFollowingSourceGraphError(t *testing.T) {
	reader := &mockNoteReader{}
	graph := &mockFollowGraph{err: errors.New("graph down")}

	src := NewFollowingSource(reader, graph, 0)

	notes, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 10)
	if err == nil {
		t.Fatal("Expected error from failing follow graph, got nil")
	}
	if notes != nil {
		t.Errorf("Expected nil notes on graph error, got %d", len(notes))
	}
}

func TestFollowingSourceZeroMaxCount(t *testing.T) {
	reader := &mockNoteReader{notes: []models.Note{makeNote("n1", "alice", 1, 0)}}
	graph := &mockFollowGraph{following: map[string][]string{"viewer": {"alice"}}}

	src := NewFollowingSource(reader, graph, 0)

	notes, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if notes != nil {
		t.Errorf("Expected nil result for zero maxCount, got %d notes", len(notes))
	}
	if got := graph.calls.Load(); got != 0 {
		t.Errorf("Expected 0 graph calls for zero maxCount, got %d", got)
	}
}

func TestFollowingSourceKind(t *testing.T) {
	src := NewFollowingSource(&mockNoteReader{}, &mockFollowGraph{}, 0)
	if src.Kind() != models.SourceFollowing {
		t.Errorf("Expected kind %s, got %s", models.SourceFollowing, src.Kind())
	}
}
