// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLFUCache_BasicOperations(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.Set("pasta carbonara", "results-1")

	value, found := c.Get("pasta carbonara")
	if !found {
		t.Error("Expected to find cached query")
	}
	if value != "results-1" {
		t.Errorf("Expected results-1, got %v", value)
	}

	_, found = c.Get("beef wellington")
	if found {
		t.Error("Expected miss for uncached query")
	}
}

func TestLFUCache_FrequencyTracking(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.Set("popular query", 1)
	c.Set("rare query", 2)

	// Access the popular query three more times
	c.Get("popular query")
	c.Get("popular query")
	c.Get("popular query")

	if freq := c.GetFrequency("popular query"); freq != 4 {
		t.Errorf("Expected frequency 4 (1 set + 3 gets), got %d", freq)
	}
	if freq := c.GetFrequency("rare query"); freq != 1 {
		t.Errorf("Expected frequency 1, got %d", freq)
	}
	if freq := c.GetFrequency("absent"); freq != 0 {
		t.Errorf("Expected frequency 0 for absent key, got %d", freq)
	}
}

func TestLFUCache_Eviction(t *testing.T) {
	c := NewLFUCache(3, time.Minute)

	c.Set("q1", 1)
	c.Set("q2", 2)
	c.Set("q3", 3)

	// Bump q1 and q3 so q2 is the least frequently used
	c.Get("q1")
	c.Get("q3")

	// Inserting a fourth entry evicts q2
	c.Set("q4", 4)

	if c.Contains("q2") {
		t.Error("Expected least-frequently-used entry to be evicted")
	}
	for _, key := range []string{"q1", "q3", "q4"} {
		if !c.Contains(key) {
			t.Errorf("Expected %s to survive eviction", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Expected size 3 after eviction, got %d", c.Len())
	}
}

func TestLFUCache_EvictionSameFrequency(t *testing.T) {
	c := NewLFUCache(2, time.Minute)

	c.Set("first", 1)
	c.Set("second", 2)

	// Both at frequency 1; LRU order breaks the tie, so "first" goes
	c.Set("third", 3)

	if c.Contains("first") {
		t.Error("Expected oldest entry at equal frequency to be evicted")
	}
	if !c.Contains("second") || !c.Contains("third") {
		t.Error("Expected newer entries to survive")
	}
}

func TestLFUCache_Update(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.Set("query", "stale results")
	c.Set("query", "fresh results")

	value, found := c.Get("query")
	if !found {
		t.Fatal("Expected updated entry to exist")
	}
	if value != "fresh results" {
		t.Errorf("Expected fresh results, got %v", value)
	}
	if c.Len() != 1 {
		t.Errorf("Expected single entry after update, got %d", c.Len())
	}

	// Update increments frequency: 1 set + 1 update + 1 get
	if freq := c.GetFrequency("query"); freq != 3 {
		t.Errorf("Expected frequency 3 after update and get, got %d", freq)
	}
}

func TestLFUCache_Delete(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.Set("query", 1)

	if !c.Delete("query") {
		t.Error("Expected Delete to report removal")
	}
	if c.Contains("query") {
		t.Error("Expected entry to be gone after Delete")
	}
	if c.Delete("query") {
		t.Error("Expected Delete of absent key to return false")
	}
}

func TestLFUCache_TTL(t *testing.T) {
	c := NewLFUCache(10, 100*time.Millisecond)

	c.Set("query", 1)

	if _, found := c.Get("query"); !found {
		t.Error("Expected entry before expiry")
	}

	time.Sleep(150 * time.Millisecond)

	if _, found := c.Get("query"); found {
		t.Error("Expected entry to expire")
	}
}

func TestLFUCache_CustomTTL(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.SetWithTTL("short-lived", 1, 100*time.Millisecond)
	c.Set("long-lived", 2)

	time.Sleep(150 * time.Millisecond)

	if _, found := c.Get("short-lived"); found {
		t.Error("Expected custom-TTL entry to expire")
	}
	if _, found := c.Get("long-lived"); !found {
		t.Error("Expected default-TTL entry to survive")
	}
}

func TestLFUCache_Clear(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.Set("q1", 1)
	c.Set("q2", 2)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d entries", c.Len())
	}
	if c.Contains("q1") || c.Contains("q2") {
		t.Error("Expected no entries after Clear")
	}
}

func TestLFUCache_Stats(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.Set("query", 1)
	c.Get("query")  // hit
	c.Get("query")  // hit
	c.Get("absent") // miss

	hits, misses, size := c.Stats()
	if hits != 2 {
		t.Errorf("Expected 2 hits, got %d", hits)
	}
	if misses != 1 {
		t.Errorf("Expected 1 miss, got %d", misses)
	}
	if size != 1 {
		t.Errorf("Expected size 1, got %d", size)
	}

	hitRate := c.HitRate()
	expected := 100.0 * 2.0 / 3.0
	if hitRate < expected-0.01 || hitRate > expected+0.01 {
		t.Errorf("Expected hit rate around %.2f%%, got %.2f%%", expected, hitRate)
	}
}

func TestLFUCache_HitRateEmpty(t *testing.T) {
	c := NewLFUCache(10, time.Minute)
	if rate := c.HitRate(); rate != 0.0 {
		t.Errorf("Expected 0%% hit rate with no operations, got %.2f", rate)
	}
}

func TestLFUCache_CleanupExpired(t *testing.T) {
	c := NewLFUCache(10, 50*time.Millisecond)

	c.Set("old1", 1)
	c.Set("old2", 2)
	c.SetWithTTL("fresh", 3, time.Minute)

	time.Sleep(80 * time.Millisecond)

	removed := c.CleanupExpired()
	if removed != 2 {
		t.Errorf("Expected 2 expired entries removed, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry after cleanup, got %d", c.Len())
	}
}

func TestLFUCache_Contains(t *testing.T) {
	c := NewLFUCache(10, time.Minute)

	c.Set("query", 1)

	if !c.Contains("query") {
		t.Error("Expected Contains to find entry")
	}
	if c.Contains("absent") {
		t.Error("Expected Contains to miss absent entry")
	}

	// Contains must not bump frequency
	before := c.GetFrequency("query")
	c.Contains("query")
	if c.GetFrequency("query") != before {
		t.Error("Expected Contains to leave frequency unchanged")
	}
}

func TestLFUCache_Concurrent(t *testing.T) {
	c := NewLFUCache(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("query-%d", j%20)
				c.Set(key, id)
				c.Get(key)
				if j%25 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()

	// If we get here without a race or panic, the test passes
	hits, misses, _ := c.Stats()
	if hits == 0 && misses == 0 {
		t.Error("Expected cache activity from concurrent operations")
	}
}

func TestLFUCache_FrequencyPreservation(t *testing.T) {
	c := NewLFUCache(3, time.Minute)

	// Build up a hot entry
	c.Set("hot", 1)
	for i := 0; i < 10; i++ {
		c.Get("hot")
	}

	// Churn cold entries past capacity; the hot entry must survive
	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("cold-%d", i), i)
	}

	if !c.Contains("hot") {
		t.Error("Expected frequently accessed entry to survive churn")
	}
}

func TestLFUCacheGeneric_BasicOperations(t *testing.T) {
	c := NewLFUCacheGeneric[string](10, time.Minute)

	c.Set("query", "cached response")

	value, found := c.Get("query")
	if !found {
		t.Error("Expected to find entry")
	}
	if value != "cached response" {
		t.Errorf("Expected cached response, got %q", value)
	}

	// Miss returns the zero value
	value, found = c.Get("absent")
	if found || value != "" {
		t.Errorf("Expected zero value on miss, got %q found=%v", value, found)
	}
}

func TestLFUCacheGeneric_StructValues(t *testing.T) {
	type searchResult struct {
		Title string
		Score float32
	}

	c := NewLFUCacheGeneric[[]searchResult](10, time.Minute)

	results := []searchResult{
		{Title: "Thai Green Curry", Score: 0.92},
		{Title: "Red Curry Noodles", Score: 0.87},
	}
	c.Set("curry", results)

	got, found := c.Get("curry")
	if !found {
		t.Fatal("Expected to find results")
	}
	if len(got) != 2 || got[0].Title != "Thai Green Curry" {
		t.Errorf("Unexpected results: %+v", got)
	}
}

func TestLFUCacheGeneric_AllMethods(t *testing.T) {
	c := NewLFUCacheGeneric[int](5, time.Minute)

	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Minute)

	if !c.Contains("a") || !c.Contains("b") {
		t.Error("Expected both entries present")
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}

	c.Get("a")
	hits, misses, size := c.Stats()
	if hits != 1 || misses != 0 || size != 2 {
		t.Errorf("Unexpected stats: hits=%d misses=%d size=%d", hits, misses, size)
	}
	if c.HitRate() != 100.0 {
		t.Errorf("Expected 100%% hit rate, got %.2f", c.HitRate())
	}

	if !c.Delete("a") {
		t.Error("Expected Delete to succeed")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Error("Expected empty cache after Clear")
	}
}

func BenchmarkLFUCache_Set(b *testing.B) {
	c := NewLFUCache(10000, time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("query-%d", i%5000), i)
	}
}

func BenchmarkLFUCache_Get(b *testing.B) {
	c := NewLFUCache(10000, time.Minute)
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("query-%d", i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("query-%d", i%1000))
	}
}

func BenchmarkLFUCache_SetEviction(b *testing.B) {
	// Small capacity forces eviction on nearly every Set
	c := NewLFUCache(100, time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(fmt.Sprintf("query-%d", i), i)
	}
}

func BenchmarkLFUCache_ConcurrentAccess(b *testing.B) {
	c := NewLFUCache(10000, time.Minute)
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("query-%d", i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get(fmt.Sprintf("query-%d", i%1000))
			i++
		}
	})
}
