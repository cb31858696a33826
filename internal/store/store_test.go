// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

func TestPutAndGetNote(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	s.PutNote(models.Note{
		NoteID:      "n1",
		AuthorID:    "alice",
		TextContent: "shipping the new #golang scheduler with @bob",
		CreatedAt:   now,
	})

	note, ok := s.GetNote("n1")
	if !ok {
		t.Fatal("Expected note n1 to exist")
	}
	if note.AuthorID != "alice" {
		t.Errorf("Expected author alice, got %s", note.AuthorID)
	}
	if len(note.Hashtags) != 1 || note.Hashtags[0] != "golang" {
		t.Errorf("Expected extracted hashtag golang, got %v", note.Hashtags)
	}
	if len(note.Mentions) != 1 || note.Mentions[0] != "bob" {
		t.Errorf("Expected extracted mention bob, got %v", note.Mentions)
	}

	if _, ok := s.GetNote("missing"); ok {
		t.Error("Expected missing note lookup to fail")
	}
	if s.NoteCount() != 1 {
		t.Errorf("Expected 1 note, got %d", s.NoteCount())
	}
}

func TestPutNoteReassignsAuthorIndex(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()

	s.PutNote(models.Note{NoteID: "n1", AuthorID: "alice", TextContent: "first take", CreatedAt: now})
	s.PutNote(models.Note{NoteID: "n1", AuthorID: "bob", TextContent: "claimed repost", CreatedAt: now})

	byAlice, err := s.NotesByAuthors(context.Background(), []string{"alice"}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("NotesByAuthors failed: %v", err)
	}
	if len(byAlice) != 0 {
		t.Errorf("Expected alice's index emptied after reassignment, got %d notes", len(byAlice))
	}

	byBob, err := s.NotesByAuthors(context.Background(), []string{"bob"}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("NotesByAuthors failed: %v", err)
	}
	if len(byBob) != 1 {
		t.Errorf("Expected bob to own the note, got %d notes", len(byBob))
	}
}

func TestNotesByAuthorsOrderAndBounds(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now().Add(-time.Hour)

	s.PutNote(models.Note{NoteID: "n1", AuthorID: "alice", TextContent: "a", CreatedAt: base.Add(1 * time.Minute)})
	s.PutNote(models.Note{NoteID: "n2", AuthorID: "alice", TextContent: "b", CreatedAt: base.Add(3 * time.Minute)})
	s.PutNote(models.Note{NoteID: "n3", AuthorID: "bob", TextContent: "c", CreatedAt: base.Add(2 * time.Minute)})
	s.PutNote(models.Note{NoteID: "n4", AuthorID: "carol", TextContent: "d", CreatedAt: base.Add(4 * time.Minute)})

	notes, err := s.NotesByAuthors(context.Background(), []string{"alice", "bob"}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("NotesByAuthors failed: %v", err)
	}
	want := []string{"n2", "n3", "n1"}
	if len(notes) != len(want) {
		t.Fatalf("Expected %d notes, got %d", len(want), len(notes))
	}
	for i, id := range want {
		if notes[i].NoteID != id {
			t.Errorf("Expected position %d to be %s, got %s", i, id, notes[i].NoteID)
		}
	}

	since := base.Add(90 * time.Second)
	recent, err := s.NotesByAuthors(context.Background(), []string{"alice", "bob"}, since, 0)
	if err != nil {
		t.Fatalf("NotesByAuthors with since failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 notes after since, got %d", len(recent))
	}

	limited, err := s.NotesByAuthors(context.Background(), []string{"alice", "bob"}, time.Time{}, 1)
	if err != nil {
		t.Fatalf("NotesByAuthors with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].NoteID != "n2" {
		t.Errorf("Expected limit to keep the newest note, got %v", limited)
	}
}

func TestNotesTieBreakOnEqualTimestamps(t *testing.T) {
	s := NewMemoryStore()
	at := time.Now()

	s.PutNote(models.Note{NoteID: "b", AuthorID: "alice", TextContent: "x", CreatedAt: at})
	s.PutNote(models.Note{NoteID: "a", AuthorID: "alice", TextContent: "y", CreatedAt: at})

	notes, err := s.RecentNotes(context.Background(), time.Time{}, 0)
	if err != nil {
		t.Fatalf("RecentNotes failed: %v", err)
	}
	if notes[0].NoteID != "a" || notes[1].NoteID != "b" {
		t.Errorf("Expected note id tie-break [a b], got [%s %s]", notes[0].NoteID, notes[1].NoteID)
	}
}

func TestDeleteNote(t *testing.T) {
	s := NewMemoryStore()
	s.PutNote(models.Note{NoteID: "n1", AuthorID: "alice", TextContent: "x", CreatedAt: time.Now()})

	if !s.DeleteNote("n1") {
		t.Error("Expected delete of existing note to report true")
	}
	if s.DeleteNote("n1") {
		t.Error("Expected second delete to report false")
	}
	if _, ok := s.GetNote("n1"); ok {
		t.Error("Expected note gone after delete")
	}

	notes, err := s.NotesByAuthors(context.Background(), []string{"alice"}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("NotesByAuthors failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("Expected author index cleared, got %d notes", len(notes))
	}
}

func TestFollowGraph(t *testing.T) {
	s := NewMemoryStore()

	s.Follow("viewer", "alice")
	s.Follow("viewer", "bob")
	s.Follow("viewer", "viewer") // self-follow ignored
	s.Follow("other", "alice")

	following, err := s.Following(context.Background(), "viewer")
	if err != nil {
		t.Fatalf("Following failed: %v", err)
	}
	if len(following) != 2 || following[0] != "alice" || following[1] != "bob" {
		t.Errorf("Expected sorted follows [alice bob], got %v", following)
	}

	followers, err := s.Followers(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Followers failed: %v", err)
	}
	if len(followers) != 2 {
		t.Errorf("Expected 2 followers of alice, got %d", len(followers))
	}
	if s.FollowerCount("alice") != 2 {
		t.Errorf("Expected follower count 2, got %d", s.FollowerCount("alice"))
	}

	s.Unfollow("viewer", "alice")
	if s.FollowerCount("alice") != 1 {
		t.Errorf("Expected follower count 1 after unfollow, got %d", s.FollowerCount("alice"))
	}
	following, _ = s.Following(context.Background(), "viewer")
	if len(following) != 1 || following[0] != "bob" {
		t.Errorf("Expected [bob] after unfollow, got %v", following)
	}
}

func TestListMembers(t *testing.T) {
	s := NewMemoryStore()

	s.AddListMember("viewer", "carol")
	s.AddListMember("viewer", "alice")

	members, err := s.ListMembers(context.Background(), "viewer")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 || members[0] != "alice" || members[1] != "carol" {
		t.Errorf("Expected sorted members [alice carol], got %v", members)
	}

	s.RemoveListMember("viewer", "alice")
	members, _ = s.ListMembers(context.Background(), "viewer")
	if len(members) != 1 || members[0] != "carol" {
		t.Errorf("Expected [carol] after removal, got %v", members)
	}
}

func TestQueryHonorsContextCancellation(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.RecentNotes(ctx, time.Time{}, 0); err == nil {
		t.Error("Expected cancelled context to fail RecentNotes")
	}
	if _, err := s.Following(ctx, "viewer"); err == nil {
		t.Error("Expected cancelled context to fail Following")
	}
}

// TestConcurrent_ParallelWritesAndReads hammers the store from writer and
// reader goroutines at once. Run with go test -race.
func TestConcurrent_ParallelWritesAndReads(t *testing.T) {
	// NOT parallel - tests concurrency explicitly

	s := NewMemoryStore()

	const numWriters = 20
	const notesPerWriter = 50
	const numReaders = 10

	var wg sync.WaitGroup
	errs := make(chan error, numReaders*notesPerWriter)

	for g := 0; g < numWriters; g++ {
		wg.Add(1)
		go func(writerID int) {
			defer wg.Done()
			author := fmt.Sprintf("author-%d", writerID)
			for i := 0; i < notesPerWriter; i++ {
				s.PutNote(models.Note{
					NoteID:      fmt.Sprintf("note-%d-%d", writerID, i),
					AuthorID:    author,
					TextContent: fmt.Sprintf("update %d from writer %d", i, writerID),
					CreatedAt:   time.Now().Add(-time.Duration(i) * time.Second),
				})
				s.Follow(fmt.Sprintf("viewer-%d", i%5), author)
			}
		}(g)
	}

	for g := 0; g < numReaders; g++ {
		wg.Add(1)
		go func(readerID int) {
			defer wg.Done()
			ctx := context.Background()
			for i := 0; i < notesPerWriter; i++ {
				if _, err := s.RecentNotes(ctx, time.Time{}, 25); err != nil {
					errs <- fmt.Errorf("reader %d recent notes failed: %w", readerID, err)
					return
				}
				author := fmt.Sprintf("author-%d", i%numWriters)
				if _, err := s.NotesByAuthors(ctx, []string{author}, time.Time{}, 10); err != nil {
					errs <- fmt.Errorf("reader %d author notes failed: %w", readerID, err)
					return
				}
				if _, err := s.Following(ctx, fmt.Sprintf("viewer-%d", i%5)); err != nil {
					errs <- fmt.Errorf("reader %d following failed: %w", readerID, err)
					return
				}
			}
		}(g)
	}

	wg.Wait()
	close(errs)

	var errorCount int
	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
		errorCount++
	}
	if errorCount > 0 {
		t.Fatalf("Failed with %d errors", errorCount)
	}

	expected := numWriters * notesPerWriter
	if s.NoteCount() != expected {
		t.Errorf("Expected %d notes after concurrent writes, got %d", expected, s.NoteCount())
	}
}
