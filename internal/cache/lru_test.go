// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if v, found := c.Get("a"); !found || v != 1 {
		t.Errorf("Expected to find 'a' = 1, got %d found=%v", v, found)
	}
	if v, found := c.Get("b"); !found || v != 2 {
		t.Errorf("Expected to find 'b' = 2, got %d found=%v", v, found)
	}
	if c.Len() != 3 {
		t.Errorf("Expected len 3, got %d", c.Len())
	}
}

func TestLRU_EvictionOrder(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Access 'a' to make it most recently used
	c.Get("a")

	// Adding 'd' should evict 'b' (least recently used)
	if evicted := c.Put("d", 4); !evicted {
		t.Error("Expected Put over capacity to report an eviction")
	}

	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("Expected %q to be present", key)
		}
	}
}

func TestLRU_UpdateDoesNotEvict(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)

	// Updating an existing key must not evict anything
	if evicted := c.Put("a", 10); evicted {
		t.Error("Expected update of existing key to report no eviction")
	}

	if v, found := c.Get("a"); !found || v != 10 {
		t.Errorf("Expected 'a' = 10 after update, got %d found=%v", v, found)
	}
	if _, found := c.Get("b"); !found {
		t.Error("Expected 'b' to survive the update")
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU[string](10, 50*time.Millisecond)

	c.Put("a", "value")

	if _, found := c.Get("a"); !found {
		t.Error("Expected to find 'a' immediately")
	}

	time.Sleep(60 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be expired")
	}
}

func TestLRU_PerEntryTTL(t *testing.T) {
	c := NewLRU[string](10, time.Minute)

	c.PutTTL("short", "x", 50*time.Millisecond)
	c.PutTTL("forever", "y", 0)

	time.Sleep(60 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("Expected 'short' to be expired")
	}
	if _, found := c.Get("forever"); !found {
		t.Error("Expected 'forever' to never expire")
	}
}

func TestLRU_ContainsDoesNotPromote(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)

	// Contains must not refresh recency, so 'a' stays oldest
	if !c.Contains("a") {
		t.Error("Expected Contains to report 'a'")
	}

	c.Put("c", 3)

	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be evicted despite Contains check")
	}
}

func TestLRU_Remove(t *testing.T) {
	c := NewLRU[int](10, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)

	if !c.Remove("a") {
		t.Error("Expected Remove to return true for existing key")
	}
	if c.Remove("a") {
		t.Error("Expected Remove to return false for missing key")
	}
	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be removed")
	}
	if _, found := c.Get("b"); !found {
		t.Error("Expected 'b' to still be present")
	}
}

func TestLRU_CleanupExpired(t *testing.T) {
	c := NewLRU[int](10, time.Minute)

	c.PutTTL("x", 1, 10*time.Millisecond)
	c.PutTTL("y", 2, 10*time.Millisecond)
	c.Put("z", 3)

	time.Sleep(20 * time.Millisecond)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("Expected 2 expired entries removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry remaining, got %d", c.Len())
	}
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU[int](10, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got len %d", c.Len())
	}
	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be gone after Clear")
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Put("a", 1)
	c.Get("a")     // hit
	c.Get("nope")  // miss
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
	if stats.Size != 2 {
		t.Errorf("Expected size 2, got %d", stats.Size)
	}
	if stats.Capacity != 2 {
		t.Errorf("Expected capacity 2, got %d", stats.Capacity)
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int](100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j)
				c.Put(key, j)
				c.Get(key)
				c.Contains(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Expected at most 100 entries, got %d", c.Len())
	}
}

func BenchmarkLRU_Put(b *testing.B) {
	c := NewLRU[int](1000, time.Minute)
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Put(keys[i%1000], i)
	}
}

func BenchmarkLRU_Get(b *testing.B) {
	c := NewLRU[int](1000, time.Minute)
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		c.Put(keys[i], i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(keys[i%1000])
	}
}
