// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// CachedTimeline is an assembled, ranked timeline as stored in the
// cache. Items are ordered by final score descending and are treated as
// read-only once cached: pagination slices them, it never re-ranks.
type CachedTimeline struct {
	Items       []models.RankedItem     `json:"items"`
	Metadata    models.TimelineMetadata `json:"metadata"`
	AssembledAt time.Time               `json:"assembled_at"`
}

// Authors returns the distinct author IDs present in the timeline.
func (ct *CachedTimeline) Authors() map[string]struct{} {
	authors := make(map[string]struct{})
	for i := range ct.Items {
		authors[ct.Items[i].Note.AuthorID] = struct{}{}
	}
	return authors
}

// timelineEntry is a node in the store's recency list.
type timelineEntry struct {
	viewerID  string
	timeline  *CachedTimeline
	authors   map[string]struct{}
	expiresAt time.Time
	prev      *timelineEntry
	next      *timelineEntry
}

// TimelineStore is the in-memory tier for assembled timelines.
//
// Alongside the viewer-keyed LRU it maintains an author reverse index,
// so invalidating on an author event (note updated or deleted) touches
// only the viewers whose cached timelines actually contain that
// author, not every entry in the store.
//
// Both structures are updated under a single mutex, which keeps the
// index exact: an entry and its index references are always added and
// removed together.
//
// Returned timelines are shared, not copied. Callers must not mutate
// them.
type TimelineStore struct {
	mu            sync.Mutex
	capacity      int
	items         map[string]*timelineEntry
	byAuthor      map[string]map[string]struct{} // author ID -> viewer IDs
	head          *timelineEntry                 // sentinel, head.next is most recently used
	tail          *timelineEntry                 // sentinel, tail.prev is least recently used
	hits          uint64
	misses        uint64
	evictions     uint64
	invalidations uint64
}

// TimelineStoreStats reports store counters.
type TimelineStoreStats struct {
	Hits           uint64
	Misses         uint64
	Evictions      uint64
	Invalidations  uint64
	Size           int
	Capacity       int
	AuthorsTracked int
}

// NewTimelineStore creates a store holding at most capacity timelines.
func NewTimelineStore(capacity int) *TimelineStore {
	if capacity <= 0 {
		capacity = 1
	}
	s := &TimelineStore{
		capacity: capacity,
		items:    make(map[string]*timelineEntry, capacity),
		byAuthor: make(map[string]map[string]struct{}),
		head:     &timelineEntry{},
		tail:     &timelineEntry{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	return s
}

// Get returns the cached timeline for a viewer and marks it most
// recently used. Expired entries are removed and reported as misses.
func (s *TimelineStore) Get(viewerID string) (*CachedTimeline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[viewerID]
	if !ok {
		s.misses++
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.removeEntry(entry)
		s.misses++
		return nil, false
	}
	s.moveToFront(entry)
	s.hits++
	return entry.timeline, true
}

// Put stores a timeline for a viewer with the given TTL.
// A non-positive ttl stores the entry without expiry.
// Returns true if an unrelated entry was evicted to make room.
func (s *TimelineStore) Put(viewerID string, timeline *CachedTimeline, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	authors := timeline.Authors()

	if entry, ok := s.items[viewerID]; ok {
		s.unindexAuthors(entry)
		entry.timeline = timeline
		entry.authors = authors
		entry.expiresAt = expiresAt
		s.indexAuthors(viewerID, authors)
		s.moveToFront(entry)
		return false
	}

	entry := &timelineEntry{
		viewerID:  viewerID,
		timeline:  timeline,
		authors:   authors,
		expiresAt: expiresAt,
	}
	s.items[viewerID] = entry
	s.indexAuthors(viewerID, authors)
	s.addToFront(entry)

	if len(s.items) > s.capacity {
		s.evictOldest()
		return true
	}
	return false
}

// Invalidate drops the cached timeline for a viewer.
// Returns true if an entry was present.
func (s *TimelineStore) Invalidate(viewerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[viewerID]
	if !ok {
		return false
	}
	s.removeEntry(entry)
	s.invalidations++
	return true
}

// InvalidateAuthor drops every cached timeline that contains notes by
// the given author. Returns the number of timelines dropped.
func (s *TimelineStore) InvalidateAuthor(authorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	viewers, ok := s.byAuthor[authorID]
	if !ok {
		return 0
	}

	dropped := 0
	for viewerID := range viewers {
		if entry, ok := s.items[viewerID]; ok {
			s.removeEntry(entry)
			dropped++
		}
	}
	s.invalidations += uint64(dropped)
	return dropped
}

// ViewersForAuthor returns the viewers whose cached timelines contain
// notes by the given author.
func (s *TimelineStore) ViewersForAuthor(authorID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexed, ok := s.byAuthor[authorID]
	if !ok {
		return nil
	}
	viewers := make([]string, 0, len(indexed))
	for viewerID := range indexed {
		viewers = append(viewers, viewerID)
	}
	return viewers
}

// Len returns the number of cached timelines.
func (s *TimelineStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Clear removes all entries and index state. Counters are preserved.
func (s *TimelineStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*timelineEntry, s.capacity)
	s.byAuthor = make(map[string]map[string]struct{})
	s.head.next = s.tail
	s.tail.prev = s.head
}

// CleanupExpired removes all expired entries and returns the count removed.
func (s *TimelineStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, entry := range s.items {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			s.removeEntry(entry)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the store counters.
func (s *TimelineStore) Stats() TimelineStoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return TimelineStoreStats{
		Hits:           s.hits,
		Misses:         s.misses,
		Evictions:      s.evictions,
		Invalidations:  s.invalidations,
		Size:           len(s.items),
		Capacity:       s.capacity,
		AuthorsTracked: len(s.byAuthor),
	}
}

// Internal operations (must be called with lock held)

func (s *TimelineStore) indexAuthors(viewerID string, authors map[string]struct{}) {
	for authorID := range authors {
		viewers, ok := s.byAuthor[authorID]
		if !ok {
			viewers = make(map[string]struct{})
			s.byAuthor[authorID] = viewers
		}
		viewers[viewerID] = struct{}{}
	}
}

func (s *TimelineStore) unindexAuthors(entry *timelineEntry) {
	for authorID := range entry.authors {
		viewers, ok := s.byAuthor[authorID]
		if !ok {
			continue
		}
		delete(viewers, entry.viewerID)
		if len(viewers) == 0 {
			delete(s.byAuthor, authorID)
		}
	}
}

func (s *TimelineStore) addToFront(entry *timelineEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

func (s *TimelineStore) moveToFront(entry *timelineEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	s.addToFront(entry)
}

func (s *TimelineStore) removeEntry(entry *timelineEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	s.unindexAuthors(entry)
	delete(s.items, entry.viewerID)
}

func (s *TimelineStore) evictOldest() {
	oldest := s.tail.prev
	if oldest == s.head {
		return
	}
	s.removeEntry(oldest)
	s.evictions++
}
