// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package vector

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/recipefinder/recipefinder/internal/config"
)

// Sentinel errors returned by Index implementations.
var (
	// ErrDimensionMismatch is returned when a vector's width does not
	// match the index's dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrClosed is returned for operations on a closed index.
	ErrClosed = errors.New("vector index closed")

	// ErrNotFound is returned by Get when no document carries the
	// requested ID.
	ErrNotFound = errors.New("vector document not found")
)

// Meta is the per-document metadata stored alongside each vector. It
// carries what the search response needs without a second store lookup.
type Meta struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Directions  []string `json:"directions"`
}

// Document is a vector plus its metadata, keyed by the recipe's ID.
type Document struct {
	ID     string
	Vector []float32
	Meta   Meta
}

// Match is a search hit: the stored document and its cosine similarity
// to the query vector.
type Match struct {
	Document
	Score float32
}

// Stats describes the index's current state.
type Stats struct {
	Documents  int    `json:"documents"`
	Dimensions int    `json:"dimensions"`
	Backend    string `json:"backend"`
	Collection string `json:"collection"`
}

// Index is the vector store interface used by the search pipeline and
// the indexer.
type Index interface {
	// Add upserts documents. Vectors must match the index dimensionality.
	Add(ctx context.Context, docs []Document) error

	// Search returns the k nearest documents by cosine similarity,
	// best first. An empty index returns no matches and no error; k
	// larger than the document count returns every document.
	Search(ctx context.Context, vector []float32, k int) ([]Match, error)

	// Get returns the stored document for id, or ErrNotFound.
	Get(ctx context.Context, id string) (Document, error)

	// Delete removes documents by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Reset removes every document.
	Reset(ctx context.Context) error

	// Stats returns the index's document count, dimensionality, and
	// backend name.
	Stats(ctx context.Context) (Stats, error)

	// Close releases the backing resources.
	Close() error
}

// Snapshotter is the optional backup capability. The badger backend
// implements it; remote backends do not.
type Snapshotter interface {
	// Snapshot streams a consistent backup of the index to w.
	Snapshot(ctx context.Context, w io.Writer) error

	// Restore loads a snapshot previously written by Snapshot. Existing
	// contents are merged; restore into a fresh index for exact state.
	Restore(ctx context.Context, r io.Reader) error
}

// New constructs the configured index backend. dims is the embedding
// width every stored vector must have.
func New(cfg *config.VectorConfig, dims int) (Index, error) {
	switch cfg.Backend {
	case "", config.VectorBackendBadger:
		return NewBadgerIndex(cfg, dims)
	case config.VectorBackendWeaviate:
		return NewWeaviateIndex(cfg, dims)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}
