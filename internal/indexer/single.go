// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/vector"
)

// ErrNotIndexable is returned by IndexOne when the recipe cannot be
// indexed: it has no storage ID, or its ingredients or directions
// normalize to empty. A batch run counts such recipes as skipped.
var ErrNotIndexable = errors.New("recipe not indexable")

// IndexOne embeds and upserts a single recipe. Used by the CRUD
// handlers to keep the index current on create and update without a
// full rebuild. Safe to call while a batch run is active; the index
// upsert is atomic per document.
func (ix *Indexer) IndexOne(ctx context.Context, rec *models.Recipe) error {
	doc, text, ok := buildDocument(rec)
	if !ok {
		return ErrNotIndexable
	}

	vecs, err := ix.embedder.EmbedBatch(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("embed recipe: %w", err)
	}
	if len(vecs) != 1 {
		return fmt.Errorf("embed recipe: want 1 vector, got %d", len(vecs))
	}
	doc.Vector = vecs[0]

	if err := ix.index.Add(ctx, []vector.Document{doc}); err != nil {
		return fmt.Errorf("index recipe: %w", err)
	}
	metrics.RecordVectorOperation("upsert_one")
	return nil
}

// RemoveOne deletes a recipe's vector from the index. Unknown IDs are
// a no-op, matching Index.Delete semantics.
func (ix *Indexer) RemoveOne(ctx context.Context, id string) error {
	if err := ix.index.Delete(ctx, []string{id}); err != nil {
		return fmt.Errorf("remove from index: %w", err)
	}
	metrics.RecordVectorOperation("delete_one")
	return nil
}
