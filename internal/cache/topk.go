// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"sort"
	"sync"
)

// TopKEntry represents an entry in a TopK heap.
type TopKEntry[T any] struct {
	Key   string
	Value T
	Score float64
	index int // index in the heap array, used for O(log n) updates
}

// TopK keeps the k highest-scored entries pushed so far.
//
// It is a min-heap ordered by score with a parallel map for O(1) key
// lookup. When a push would exceed capacity the lowest-scored entry is
// dropped, which may be the entry just pushed.
//
// This is used for:
//   - Trending candidate selection (top notes by engagement per window)
//   - Hashtag and topic leaderboards inside the trending providers
type TopK[T any] struct {
	mu    sync.RWMutex
	heap  []*TopKEntry[T]
	byKey map[string]*TopKEntry[T]
	k     int // maximum entries (0 = unlimited)
}

// NewTopK creates a heap that retains at most k entries.
func NewTopK[T any](k int) *TopK[T] {
	return &TopK[T]{
		heap:  make([]*TopKEntry[T], 0),
		byKey: make(map[string]*TopKEntry[T]),
		k:     k,
	}
}

// Push adds an entry to the heap.
// If an entry with the same key exists, it updates the existing entry.
// Returns the dropped entry if the heap was at capacity, nil otherwise.
func (h *TopK[T]) Push(key string, value T, score float64) *TopKEntry[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Check if key already exists
	if existing, exists := h.byKey[key]; exists {
		existing.Value = value
		existing.Score = score
		h.fix(existing.index)
		return nil
	}

	entry := &TopKEntry[T]{
		Key:   key,
		Value: value,
		Score: score,
		index: len(h.heap),
	}

	h.heap = append(h.heap, entry)
	h.byKey[key] = entry
	h.bubbleUp(entry.index)

	// Drop the lowest score if over capacity
	if h.k > 0 && len(h.heap) > h.k {
		return h.popMin()
	}

	return nil
}

// Pop removes and returns the lowest-scored entry.
// Returns nil if the heap is empty.
func (h *TopK[T]) Pop() *TopKEntry[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.popMin()
}

// Peek returns the lowest-scored entry without removing it.
// Returns nil if the heap is empty.
func (h *TopK[T]) Peek() *TopKEntry[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.heap) == 0 {
		return nil
	}
	return h.heap[0]
}

// Get retrieves an entry by key without removing it.
// Returns nil if not found.
func (h *TopK[T]) Get(key string) *TopKEntry[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.byKey[key]
}

// Remove removes an entry by key.
// Returns the removed entry, or nil if not found.
func (h *TopK[T]) Remove(key string) *TopKEntry[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, exists := h.byKey[key]
	if !exists {
		return nil
	}

	return h.removeAt(entry.index)
}

// Update changes an entry's score and reorders the heap.
// Returns false if the key doesn't exist.
func (h *TopK[T]) Update(key string, score float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, exists := h.byKey[key]
	if !exists {
		return false
	}

	entry.Score = score
	h.fix(entry.index)
	return true
}

// Len returns the number of entries in the heap.
func (h *TopK[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.heap)
}

// Clear removes all entries from the heap.
func (h *TopK[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.heap = make([]*TopKEntry[T], 0)
	h.byKey = make(map[string]*TopKEntry[T])
}

// Descending returns all entries ordered from highest to lowest score.
// The heap is not modified.
func (h *TopK[T]) Descending() []*TopKEntry[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := make([]*TopKEntry[T], len(h.heap))
	copy(entries, h.heap)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Internal heap operations (must be called with lock held)

// popMin removes and returns the minimum element.
func (h *TopK[T]) popMin() *TopKEntry[T] {
	if len(h.heap) == 0 {
		return nil
	}

	return h.removeAt(0)
}

// removeAt removes the element at the given index.
func (h *TopK[T]) removeAt(i int) *TopKEntry[T] {
	n := len(h.heap) - 1
	entry := h.heap[i]

	delete(h.byKey, entry.Key)

	if i == n {
		// Removing last element
		h.heap = h.heap[:n]
		return entry
	}

	// Move last element to position i
	h.heap[i] = h.heap[n]
	h.heap[i].index = i
	h.heap = h.heap[:n]

	h.fix(i)

	return entry
}

// fix maintains heap property after a score change at index i.
func (h *TopK[T]) fix(i int) {
	// Try bubbling up
	if h.bubbleUp(i) {
		return
	}
	// If didn't bubble up, try bubbling down
	h.bubbleDown(i)
}

// bubbleUp moves element at index i up to its correct position.
// Returns true if the element moved.
func (h *TopK[T]) bubbleUp(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if h.heap[i].Score >= h.heap[parent].Score {
			break
		}
		h.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

// bubbleDown moves element at index i down to its correct position.
func (h *TopK[T]) bubbleDown(i int) {
	n := len(h.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && h.heap[left].Score < h.heap[smallest].Score {
			smallest = left
		}
		if right < n && h.heap[right].Score < h.heap[smallest].Score {
			smallest = right
		}

		if smallest == i {
			break
		}

		h.swap(i, smallest)
		i = smallest
	}
}

// swap swaps elements at indices i and j.
func (h *TopK[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.heap[i].index = i
	h.heap[j].index = j
}
