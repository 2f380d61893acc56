// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

/*
Package cache provides thread-safe in-memory caching and the supporting data
structures used by the search pipeline.

This package implements the caching layer for search responses, reducing
embedding service load and improving response times for repeated queries,
plus small ranking and counting structures shared across the service.

# Overview

The package provides:
  - TTL cache: thread-safe key-value store with expiration (Cache)
  - LFU cache: frequency-based eviction for skewed query patterns (LFUCache)
  - Cacher: common interface with a config-driven factory (NewCacher)
  - TopK: bounded min-heap for similarity search result selection
  - Trie: prefix tree for recipe title autocomplete
  - SlidingWindowCounter / UniqueValueCounter: live search activity tracking

# Use Cases

Primary use cases:
  - Search responses keyed by SHA-256 of (query, top_k) (5-minute TTL)
  - Top-k selection during the vector index's similarity scan
  - Title suggestions: trie prefix pass before fuzzy matching
  - "Searches in the last five minutes" for the stats endpoint and
    WebSocket activity events

# Usage Example

Basic caching:

	import "github.com/recipefinder/recipefinder/internal/cache"

	// Create cache with 5-minute default TTL
	c := cache.New(5 * time.Minute)

	// Store value
	key := cache.GenerateKey("search", req)
	c.Set(key, result)

	// Retrieve value
	if value, ok := c.Get(key); ok {
	    result := value.(*models.SearchResult)
	    // Use cached result
	}

	// Clear entire cache
	c.Clear()

Search pipeline caching pattern:

	func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, bool, error) {
	    key := cache.GenerateKey("search", req)

	    // Check cache
	    if cached, ok := s.cache.Get(key); ok {
	        return cached.(*models.SearchResult), true, nil
	    }

	    // Cache miss - run the pipeline
	    result, err := s.run(ctx, req)
	    if err != nil {
	        return nil, false, err
	    }

	    // Store in cache
	    s.cache.Set(key, result)

	    return result, false, nil
	}

Top-k selection during a similarity scan:

	top := cache.NewTopK[[]float32](k)
	for id, vec := range index.vectors {
	    top.Offer(id, vec, cosine(query, vec))
	}
	for _, entry := range top.Descending() {
	    // entry.ID, entry.Score in descending score order
	}

# Cache Invalidation

The cache supports two invalidation strategies:

1. TTL-based expiration (automatic):
  - Items expire after the configured TTL
  - Checked lazily during Get operations
  - Background cleanup every 5 minutes

2. Manual invalidation (on data changes):
  - Clear() removes all cache entries
  - Delete(key) removes specific entry
  - Reindex and import completion trigger a full cache clear

Example: Clear cache after reindex

	// In the indexer
	func (ix *Indexer) onCompleted(stats models.IndexStats) {
	    // Clear search cache since scores changed
	    ix.cache.Clear()

	    // Notify frontend
	    ix.hub.BroadcastIndexCompleted(stats)
	}

# Cache Strategy Selection

SEARCH_CACHE_TYPE selects the implementation at startup:

	ttl (default)  Unbounded map with TTL expiry. Fine for typical
	               single-instance deployments.
	lfu            Bounded (SEARCH_CACHE_CAPACITY) with least-frequently-
	               used eviction. Better hit rates when a small set of
	               popular queries dominates traffic.

Both implement Cacher, so the search pipeline is oblivious to the choice.

# Performance Characteristics

  - Get operation: O(1) hash map lookup + TTL check (~100ns)
  - Set operation: O(1) hash map insert with lock (~200ns)
  - Clear operation: O(1) map reassignment
  - TopK.Offer: O(1) rejection below threshold, O(log k) acceptance
  - Trie lookup: O(m) in query length, independent of corpus size
  - Memory overhead: ~100 bytes per cached item (key + metadata)

# Thread Safety

Cache, LFUCache, Trie, and the window counters are safe for concurrent use.
TopK is not: each similarity search builds its own collector.

# Limitations

The TTL cache has intentional limitations for simplicity:

  - No maximum size limit (grows unbounded; use lfu for a bound)
  - No cache persistence (in-memory only)
  - No distributed caching (single instance)

These are acceptable for the application's scale: the working set is
bounded by distinct queries within the TTL window, and the cache is
cleared on every reindex.

# Testing

Run tests with race detector:

	go test -race ./internal/cache

# See Also

  - internal/search: Search pipeline using the response cache, trie, and counters
  - internal/vector: Similarity scan using TopK
  - internal/api: /admin/cache/stats endpoint exposing Stats
*/
package cache
