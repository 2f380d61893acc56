// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/recipefinder/recipefinder/internal/metrics"
)

// DefaultCacheSize is the query cache capacity when configuration
// leaves it unset.
const DefaultCacheSize = 4096

// CachedEmbedder wraps an Embedder with an LRU cache for query
// embeddings. Users repeat searches ("chicken curry", "pasta dinner"),
// and each cache hit saves a round trip to the embedding service.
//
// Only EmbedQuery is cached. EmbedBatch passes through: indexing
// embeds each recipe once, so caching those vectors only burns memory.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with a query cache of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// cacheKey hashes the query text so arbitrarily long queries cost a
// fixed amount of key memory.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// EmbedQuery returns the cached vector when the same query text has
// been embedded before. Callers must not modify the returned slice.
func (c *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if cached, ok := c.cache.Get(key); ok {
		if vector, ok := cached.([]float32); ok {
			metrics.EmbeddingCacheHits.Inc()
			return vector, nil
		}
	}
	metrics.EmbeddingCacheMisses.Inc()

	vector, err := c.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, vector)
	return vector, nil
}

// EmbedBatch passes straight through to the wrapped embedder.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

// Len returns the number of cached query embeddings.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

// Purge drops all cached embeddings.
func (c *CachedEmbedder) Purge() {
	c.cache.Purge()
}
