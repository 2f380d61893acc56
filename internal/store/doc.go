// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package store provides MongoDB persistence for recipe documents.
//
// The RecipeStore interface covers CRUD, paging, bulk import, and the
// indexing pipeline's streaming read. The MongoStore implementation keeps
// the original smart_recipe_db collection layout: recipe titles are stored
// in the bson field "name" and CSV import provenance in "_csv_id".
//
// # Indexable Iteration
//
// The embedding pipeline does not load the whole collection. It streams
// documents that can actually be embedded (those with a non-empty
// directions array), fetching only the fields the embedding text needs:
//
//	err := store.IterateIndexable(ctx, limit, 100, func(batch []models.Recipe) error {
//	    return indexer.EmbedAndAdd(ctx, batch)
//	})
//
// # Timeouts
//
// Every operation honors the caller's context. When the caller supplies no
// deadline, the configured MONGO_QUERY_TIMEOUT is applied per operation;
// IterateIndexable is the exception, since a full reindex legitimately
// outlives any single-query budget.
//
// All queries are instrumented through internal/metrics
// (recipefinder_mongo_query_duration_seconds and friends).
package store
