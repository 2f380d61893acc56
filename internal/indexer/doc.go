// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package indexer turns stored recipes into vector index documents.
//
// A run streams indexable recipes from storage in batches, normalizes
// their text, embeds each batch remotely, and upserts the results into
// the vector index. Batches embed concurrently under a bounded worker
// semaphore, with an optional requests-per-second cap for shared
// embedding endpoints.
//
// Recipes whose ingredients or directions normalize to nothing are
// counted as skipped, matching the preprocessing rules the stored
// embeddings were built with. Embedding or index failures mark the
// batch failed and the run continues; only cancellation and storage
// iteration errors abort a run.
//
// When a journal is attached, each batch's operations are recorded
// before the index write and confirmed after it. ReplayJournal runs at
// startup and reapplies whatever a previous process left unconfirmed.
package indexer
