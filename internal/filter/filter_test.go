// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package filter

import (
	"context"
	"testing"

	"github.com/tomtom215/chronographus/internal/models"
)

func filterNote(noteID, authorID, text string) models.Note {
	return models.Note{
		NoteID:      noteID,
		AuthorID:    authorID,
		TextContent: text,
	}
}

func testProfile() *models.ViewerProfile {
	return models.NewViewerProfile("viewer-1")
}

func TestContentFilter_MutedAuthor(t *testing.T) {
	f := NewContentFilter()
	profile := testProfile()
	profile.MutedUsers["author-blocked"] = true

	notes := []models.Note{
		filterNote("n1", "author-ok", "hello world"),
		filterNote("n2", "author-blocked", "you cannot see this"),
		filterNote("n3", "author-ok", "another note"),
	}

	kept, err := f.Filter(context.Background(), notes, "viewer-1", profile)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d notes, want 2", len(kept))
	}
	for _, n := range kept {
		if n.AuthorID == "author-blocked" {
			t.Errorf("muted author %s leaked through", n.AuthorID)
		}
	}
}

func TestContentFilter_MutedKeyword(t *testing.T) {
	f := NewContentFilter()
	profile := testProfile()
	profile.MutedKeywords["politics"] = true

	tests := []struct {
		name string
		text string
		kept bool
	}{
		{"whole word match", "I am tired of politics today", false},
		{"case insensitive", "POLITICS is everywhere", false},
		{"embedded word survives", "the political landscape", true},
		{"inline hashtag blocked", "thoughts on #politics this week", false},
		{"unrelated text", "what a lovely morning", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := []models.Note{filterNote("n1", "author-1", tt.text)}
			kept, err := f.Filter(context.Background(), notes, "viewer-1", profile)
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			if (len(kept) == 1) != tt.kept {
				t.Errorf("text %q kept = %v, want %v", tt.text, len(kept) == 1, tt.kept)
			}
		})
	}
}

func TestContentFilter_MutedKeywordHashtagMetadata(t *testing.T) {
	f := NewContentFilter()
	profile := testProfile()
	profile.MutedKeywords["politics"] = true

	// Tag carried in metadata only, not in the text
	tagged := filterNote("n1", "author-1", "big news dropping today")
	tagged.Hashtags = []string{"Politics"}

	// Tags that merely contain the keyword survive: hashtag matching is exact
	related := filterNote("n2", "author-1", "more news")
	related.Hashtags = []string{"politicalnews"}

	kept, err := f.Filter(context.Background(), []models.Note{tagged, related}, "viewer-1", profile)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("kept %d notes, want 1", len(kept))
	}
	if kept[0].NoteID != "n2" {
		t.Errorf("kept note = %s, want n2", kept[0].NoteID)
	}
}

func TestContentFilter_NSFWOptIn(t *testing.T) {
	f := NewContentFilter()
	profile := testProfile()

	nsfw := filterNote("n1", "author-1", "adult content warning")
	nsfw.NSFW = true
	notes := []models.Note{nsfw, filterNote("n2", "author-1", "regular note")}

	kept, err := f.Filter(context.Background(), notes, "viewer-1", profile)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 1 || kept[0].NoteID != "n2" {
		t.Fatalf("without opt-in: kept %v, want only n2", noteIDs(kept))
	}

	profile.ShowNSFW = true
	kept, err = f.Filter(context.Background(), notes, "viewer-1", profile)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 2 {
		t.Errorf("with opt-in: kept %d notes, want 2", len(kept))
	}
}

func TestContentFilter_SuspendedAuthor(t *testing.T) {
	f := NewContentFilter()

	suspended := filterNote("n1", "author-1", "still posting somehow")
	suspended.AuthorSuspended = true
	notes := []models.Note{suspended, filterNote("n2", "author-2", "fine note")}

	kept, err := f.Filter(context.Background(), notes, "viewer-1", testProfile())
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 1 || kept[0].NoteID != "n2" {
		t.Errorf("kept %v, want only n2", noteIDs(kept))
	}
}

func TestContentFilter_SpamRemoved(t *testing.T) {
	f := NewContentFilter()

	notes := []models.Note{
		filterNote("n1", "author-1", "click here for a free prize"),
		filterNote("n2", "author-2", "a perfectly normal note"),
		filterNote("n3", "author-3", "AMAZING DEAL DO NOT MISS THIS"),
	}

	kept, err := f.Filter(context.Background(), notes, "viewer-1", testProfile())
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 1 || kept[0].NoteID != "n2" {
		t.Errorf("kept %v, want only n2", noteIDs(kept))
	}
}

func TestContentFilter_PreservesOrder(t *testing.T) {
	f := NewContentFilter()
	profile := testProfile()
	profile.MutedUsers["author-muted"] = true

	notes := []models.Note{
		filterNote("n1", "a1", "first"),
		filterNote("n2", "author-muted", "dropped"),
		filterNote("n3", "a2", "second"),
		filterNote("n4", "a3", "third"),
	}

	kept, err := f.Filter(context.Background(), notes, "viewer-1", profile)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	want := []string{"n1", "n3", "n4"}
	got := noteIDs(kept)
	if len(got) != len(want) {
		t.Fatalf("kept %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kept[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestContentFilter_NilProfileFailsClosed(t *testing.T) {
	f := NewContentFilter()

	notes := []models.Note{filterNote("n1", "author-1", "hello")}
	kept, err := f.Filter(context.Background(), notes, "viewer-1", nil)
	if err == nil {
		t.Fatal("Filter() with nil profile should return an error")
	}
	if kept != nil {
		t.Errorf("Filter() with nil profile returned %d notes, want none", len(kept))
	}
}

func TestContentFilter_ContextCancelled(t *testing.T) {
	f := NewContentFilter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notes := []models.Note{filterNote("n1", "author-1", "hello")}
	if _, err := f.Filter(ctx, notes, "viewer-1", testProfile()); err == nil {
		t.Error("Filter() with cancelled context should return an error")
	}
}

func TestContentFilter_NoPreferences(t *testing.T) {
	f := NewContentFilter()

	notes := []models.Note{
		filterNote("n1", "author-1", "one"),
		filterNote("n2", "author-2", "two"),
	}

	kept, err := f.Filter(context.Background(), notes, "viewer-1", testProfile())
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 2 {
		t.Errorf("kept %d notes, want all 2", len(kept))
	}
}

func TestContentFilter_EmptyInput(t *testing.T) {
	f := NewContentFilter()

	kept, err := f.Filter(context.Background(), nil, "viewer-1", testProfile())
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(kept) != 0 {
		t.Errorf("kept %d notes from empty input, want 0", len(kept))
	}
}

func noteIDs(notes []models.Note) []string {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.NoteID
	}
	return ids
}
