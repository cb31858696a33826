// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// MemoryStore is a mutex-guarded in-memory note corpus plus follow graph
// and curated author lists. All read methods return copies in a
// deterministic order: notes newest first with note id as tie-break,
// identifier sets sorted ascending.
type MemoryStore struct {
	mu          sync.RWMutex
	notes       map[string]models.Note
	byAuthor    map[string]map[string]bool // author -> note ids
	follows     map[string]map[string]bool // viewer -> followed authors
	followers   map[string]map[string]bool // author -> following viewers
	listMembers map[string]map[string]bool // viewer -> curated authors
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes:       make(map[string]models.Note),
		byAuthor:    make(map[string]map[string]bool),
		follows:     make(map[string]map[string]bool),
		followers:   make(map[string]map[string]bool),
		listMembers: make(map[string]map[string]bool),
	}
}

// PutNote inserts or replaces a note. Hashtags and mentions missing from
// the snapshot are extracted from the text so downstream matching always
// sees them.
func (s *MemoryStore) PutNote(note models.Note) {
	if note.NoteID == "" {
		return
	}
	if len(note.Hashtags) == 0 {
		note.Hashtags = models.ExtractHashtags(note.TextContent)
	}
	if len(note.Mentions) == 0 {
		note.Mentions = models.ExtractMentions(note.TextContent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.notes[note.NoteID]; ok && prev.AuthorID != note.AuthorID {
		s.removeAuthorIndex(prev.AuthorID, note.NoteID)
	}
	s.notes[note.NoteID] = note

	ids := s.byAuthor[note.AuthorID]
	if ids == nil {
		ids = make(map[string]bool)
		s.byAuthor[note.AuthorID] = ids
	}
	ids[note.NoteID] = true
}

// DeleteNote removes a note. Returns true when it existed.
func (s *MemoryStore) DeleteNote(noteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[noteID]
	if !ok {
		return false
	}
	delete(s.notes, noteID)
	s.removeAuthorIndex(note.AuthorID, noteID)
	return true
}

// GetNote returns one note by id.
func (s *MemoryStore) GetNote(noteID string) (models.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[noteID]
	return note, ok
}

// NoteCount returns the number of stored notes.
func (s *MemoryStore) NoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// NotesByAuthors returns notes authored by any of the given authors and
// created after since, newest first. A non-positive limit returns all
// matches.
func (s *MemoryStore) NotesByAuthors(ctx context.Context, authors []string, since time.Time, limit int) ([]models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var notes []models.Note
	for _, author := range authors {
		for noteID := range s.byAuthor[author] {
			note := s.notes[noteID]
			if note.CreatedAt.After(since) {
				notes = append(notes, note)
			}
		}
	}
	s.mu.RUnlock()

	sortNotes(notes)
	return truncateNotes(notes, limit), nil
}

// RecentNotes returns every note created after since, newest first. A
// non-positive limit returns all matches.
func (s *MemoryStore) RecentNotes(ctx context.Context, since time.Time, limit int) ([]models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var notes []models.Note
	for _, note := range s.notes {
		if note.CreatedAt.After(since) {
			notes = append(notes, note)
		}
	}
	s.mu.RUnlock()

	sortNotes(notes)
	return truncateNotes(notes, limit), nil
}

// Follow records viewer following author. Self-follows are ignored.
func (s *MemoryStore) Follow(viewerID, authorID string) {
	if viewerID == "" || authorID == "" || viewerID == authorID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	addToSet(s.follows, viewerID, authorID)
	addToSet(s.followers, authorID, viewerID)
}

// Unfollow removes a follow edge.
func (s *MemoryStore) Unfollow(viewerID, authorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removeFromSet(s.follows, viewerID, authorID)
	removeFromSet(s.followers, authorID, viewerID)
}

// Following returns the authors the viewer follows, sorted.
func (s *MemoryStore) Following(ctx context.Context, viewerID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.follows[viewerID]), nil
}

// Followers returns the viewers following the author, sorted.
func (s *MemoryStore) Followers(ctx context.Context, authorID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.followers[authorID]), nil
}

// FollowerCount returns how many viewers follow the author.
func (s *MemoryStore) FollowerCount(authorID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.followers[authorID])
}

// AddListMember adds an author to the viewer's curated lists.
func (s *MemoryStore) AddListMember(viewerID, authorID string) {
	if viewerID == "" || authorID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	addToSet(s.listMembers, viewerID, authorID)
}

// RemoveListMember removes an author from the viewer's curated lists.
func (s *MemoryStore) RemoveListMember(viewerID, authorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removeFromSet(s.listMembers, viewerID, authorID)
}

// ListMembers returns the authors on the viewer's curated lists, sorted.
func (s *MemoryStore) ListMembers(ctx context.Context, viewerID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.listMembers[viewerID]), nil
}

// removeAuthorIndex must be called with the write lock held.
func (s *MemoryStore) removeAuthorIndex(authorID, noteID string) {
	ids := s.byAuthor[authorID]
	delete(ids, noteID)
	if len(ids) == 0 {
		delete(s.byAuthor, authorID)
	}
}

func sortNotes(notes []models.Note) {
	slices.SortFunc(notes, func(a, b models.Note) int {
		switch {
		case a.CreatedAt.After(b.CreatedAt):
			return -1
		case a.CreatedAt.Before(b.CreatedAt):
			return 1
		}
		return strings.Compare(a.NoteID, b.NoteID)
	})
}

func truncateNotes(notes []models.Note, limit int) []models.Note {
	if limit > 0 && len(notes) > limit {
		return notes[:limit]
	}
	return notes
}

func addToSet(sets map[string]map[string]bool, key, member string) {
	set := sets[key]
	if set == nil {
		set = make(map[string]bool)
		sets[key] = set
	}
	set[member] = true
}

func removeFromSet(sets map[string]map[string]bool, key, member string) {
	set := sets[key]
	delete(set, member)
	if len(set) == 0 {
		delete(sets, key)
	}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
