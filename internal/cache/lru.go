// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"sync"
	"time"
)

// lruEntry is a node in the doubly-linked recency list.
type lruEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time // zero means no expiry
	prev      *lruEntry[V]
	next      *lruEntry[V]
}

// LRU is a fixed-capacity least-recently-used cache with per-entry TTL.
//
// Expired entries are dropped lazily on access and eagerly via
// CleanupExpired. The recency list uses sentinel head and tail nodes so
// link updates never branch on list position.
//
// The zero value is not usable; construct with NewLRU.
type LRU[V any] struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	items      map[string]*lruEntry[V]
	head       *lruEntry[V] // sentinel, head.next is most recently used
	tail       *lruEntry[V] // sentinel, tail.prev is least recently used
	hits       uint64
	misses     uint64
	evictions  uint64
}

// LRUStats reports cache effectiveness counters.
type LRUStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	Capacity  int
}

// NewLRU creates an LRU cache holding at most capacity entries.
// defaultTTL applies to entries stored with Put; zero means entries
// never expire unless stored with an explicit TTL via PutTTL.
func NewLRU[V any](capacity int, defaultTTL time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1
	}
	c := &LRU[V]{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*lruEntry[V], capacity),
		head:       &lruEntry[V]{},
		tail:       &lruEntry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value for key and marks it most recently used.
// Expired entries are removed and reported as misses.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if entryExpired(entry) {
		c.removeEntry(entry)
		c.misses++
		return zero, false
	}
	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

// Put stores value under key with the default TTL.
// Returns true if an unrelated entry was evicted to make room.
func (c *LRU[V]) Put(key string, value V) bool {
	return c.PutTTL(key, value, c.defaultTTL)
}

// PutTTL stores value under key with an explicit TTL.
// A non-positive ttl stores the entry without expiry.
// Returns true if an unrelated entry was evicted to make room.
func (c *LRU[V]) PutTTL(key string, value V, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if entry, ok := c.items[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return false
	}

	entry := &lruEntry[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	}
	c.items[key] = entry
	c.addToFront(entry)

	if len(c.items) > c.capacity {
		c.evictOldest()
		return true
	}
	return false
}

// Contains reports whether key is present and unexpired, without
// updating recency.
func (c *LRU[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return false
	}
	if entryExpired(entry) {
		c.removeEntry(entry)
		return false
	}
	return true
}

// Remove deletes key from the cache.
// Returns true if the key was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeEntry(entry)
	return true
}

// Len returns the number of entries, including any not yet expired lazily.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries. Counters are preserved.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruEntry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes all expired entries and returns the count removed.
// Intended to be called periodically by a maintenance goroutine.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, entry := range c.items {
		if entryExpired(entry) {
			c.removeEntry(entry)
			removed++
		}
	}
	return removed
}

// Keys returns the keys of all entries in no particular order.
func (c *LRU[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	return keys
}

// Stats returns a snapshot of the cache counters.
func (c *LRU[V]) Stats() LRUStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return LRUStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
		Capacity:  c.capacity,
	}
}

func entryExpired[V any](entry *lruEntry[V]) bool {
	return !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)
}

// Internal list operations (must be called with lock held)

func (c *LRU[V]) addToFront(entry *lruEntry[V]) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRU[V]) moveToFront(entry *lruEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRU[V]) removeEntry(entry *lruEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.evictions++
}
