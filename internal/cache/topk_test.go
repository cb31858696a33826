// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"fmt"
	"testing"
)

func TestTopK_KeepsHighestScores(t *testing.T) {
	h := NewTopK[string](3)

	h.Push("a", "a", 1.0)
	h.Push("b", "b", 5.0)
	h.Push("c", "c", 3.0)

	// Pushing a higher score at capacity drops the lowest
	dropped := h.Push("d", "d", 4.0)
	if dropped == nil || dropped.Key != "a" {
		t.Fatalf("Expected 'a' to be dropped, got %+v", dropped)
	}

	// Pushing a score below the current minimum drops the pushed entry
	dropped = h.Push("e", "e", 0.5)
	if dropped == nil || dropped.Key != "e" {
		t.Fatalf("Expected 'e' to be dropped immediately, got %+v", dropped)
	}

	if h.Len() != 3 {
		t.Errorf("Expected len 3, got %d", h.Len())
	}

	entries := h.Descending()
	want := []string{"b", "d", "c"}
	for i, key := range want {
		if entries[i].Key != key {
			t.Errorf("Expected entries[%d] = %q, got %q", i, key, entries[i].Key)
		}
	}
}

func TestTopK_DuplicateKeyUpdates(t *testing.T) {
	h := NewTopK[int](10)

	h.Push("note", 1, 2.0)
	dropped := h.Push("note", 2, 7.0)
	if dropped != nil {
		t.Errorf("Expected duplicate push to drop nothing, got %+v", dropped)
	}

	if h.Len() != 1 {
		t.Errorf("Expected len 1 after duplicate push, got %d", h.Len())
	}
	entry := h.Get("note")
	if entry == nil || entry.Value != 2 || entry.Score != 7.0 {
		t.Errorf("Expected updated entry value=2 score=7.0, got %+v", entry)
	}
}

func TestTopK_PopReturnsMinimum(t *testing.T) {
	h := NewTopK[string](0)

	h.Push("high", "high", 9.0)
	h.Push("low", "low", 1.0)
	h.Push("mid", "mid", 5.0)

	if entry := h.Pop(); entry == nil || entry.Key != "low" {
		t.Errorf("Expected Pop to return 'low', got %+v", entry)
	}
	if entry := h.Peek(); entry == nil || entry.Key != "mid" {
		t.Errorf("Expected Peek to return 'mid', got %+v", entry)
	}
	if h.Len() != 2 {
		t.Errorf("Expected len 2 after Pop, got %d", h.Len())
	}
}

func TestTopK_UpdateReorders(t *testing.T) {
	h := NewTopK[string](10)

	h.Push("a", "a", 1.0)
	h.Push("b", "b", 2.0)
	h.Push("c", "c", 3.0)

	if !h.Update("c", 0.5) {
		t.Fatal("Expected Update to succeed for existing key")
	}
	if h.Update("missing", 1.0) {
		t.Error("Expected Update to fail for missing key")
	}

	if entry := h.Peek(); entry == nil || entry.Key != "c" {
		t.Errorf("Expected 'c' to become the minimum after Update, got %+v", entry)
	}
}

func TestTopK_Remove(t *testing.T) {
	h := NewTopK[string](10)

	h.Push("a", "a", 1.0)
	h.Push("b", "b", 2.0)

	if entry := h.Remove("a"); entry == nil || entry.Key != "a" {
		t.Errorf("Expected Remove to return 'a', got %+v", entry)
	}
	if entry := h.Remove("a"); entry != nil {
		t.Errorf("Expected second Remove to return nil, got %+v", entry)
	}
	if h.Len() != 1 {
		t.Errorf("Expected len 1, got %d", h.Len())
	}
}

func TestTopK_EmptyHeap(t *testing.T) {
	h := NewTopK[string](5)

	if entry := h.Pop(); entry != nil {
		t.Errorf("Expected Pop on empty heap to return nil, got %+v", entry)
	}
	if entry := h.Peek(); entry != nil {
		t.Errorf("Expected Peek on empty heap to return nil, got %+v", entry)
	}
	if entries := h.Descending(); len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestTopK_HeapPropertyUnderChurn(t *testing.T) {
	h := NewTopK[int](50)

	for i := 0; i < 200; i++ {
		h.Push(fmt.Sprintf("key-%d", i), i, float64((i*37)%101))
	}

	if h.Len() != 50 {
		t.Fatalf("Expected len 50, got %d", h.Len())
	}

	// Draining must produce non-decreasing scores
	prev := -1.0
	for entry := h.Pop(); entry != nil; entry = h.Pop() {
		if entry.Score < prev {
			t.Fatalf("Heap order violated: %f after %f", entry.Score, prev)
		}
		prev = entry.Score
	}
}

func BenchmarkTopK_Push(b *testing.B) {
	h := NewTopK[int](100)
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Push(keys[i%1000], i, float64(i%997))
	}
}
