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

func TestListsSourceFetch(t *testing.T) {
	reader := &mockNoteReader{notes: []models.Note{
		makeNote("n1", "curated1", 10, 5),
		makeNote("n2", "curated2", 20, 3),
		makeNote("n3", "stranger", 5, 9),
	}}
	lists := &mockListDirectory{members: map[string][]string{
		"viewer": {"curated1", "curated2"},
	}}

	src := NewListsSource(reader, lists)

	notes, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes from list members, got %d", len(notes))
	}
	if notes[0].NoteID != "n1" || notes[1].NoteID != "n2" {
		t.Errorf("Expected newest-first [n1 n2], got [%s %s]", notes[0].NoteID, notes[1].NoteID)
	}
}

func TestListsSourceNoMembers(t *testing.T) {
	reader := &mockNoteReader{notes: []models.Note{makeNote("n1", "a", 1, 0)}}
	lists := &mockListDirectory{members: map[string][]string{}}

	src := NewListsSource(reader, lists)

	notes, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Expected empty result for viewer with no lists, got %d notes", len(notes))
	}
	if got := reader.byAuthorsCalls.Load(); got != 0 {
		t.Errorf("Expected 0 store calls for empty membership, got %d", got)
	}
}

func TestListsSourceDirectoryError(t *testing.T) {
	reader := &mockNoteReader{}
	lists := &mockListDirectory{err: errors.New("directory down")}

	src := NewListsSource(reader, lists)

	if _, err := src.Fetch(context.Background(), "viewer", models.TimelineConfig{}, time.Time{}, 10); err == nil {
		t.Fatal("Expected error from failing list directory, got nil")
	}
}

func TestListsSourceKind(t *testing.T) {
	src := NewListsSource(&mockNoteReader{}, &mockListDirectory{})
	if src.Kind() != models.SourceLists {
		t.Errorf("Expected kind %s, got %s", models.SourceLists, src.Kind())
	}
}
