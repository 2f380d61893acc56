// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package vector stores recipe embeddings and answers nearest-neighbour
// queries over them by cosine similarity.
//
// Two backends implement the Index interface:
//
//   - BadgerIndex keeps vectors in an embedded Badger database and scans
//     them in memory. It is the default and needs no external service.
//     It also implements Snapshotter for point-in-time backups.
//   - WeaviateIndex delegates storage and search to a remote Weaviate
//     instance, one class per collection, with vectors supplied by our
//     own embedding pipeline (vectorizer "none").
//
// The factory picks a backend from configuration:
//
//	idx, err := vector.New(&cfg.Vector, cfg.Embedding.Dimensions)
//	if err != nil {
//	    return err
//	}
//	defer idx.Close()
//
//	matches, err := idx.Search(ctx, queryVector, 5)
//
// Scores are cosine similarities in [-1, 1]; Search returns matches in
// descending score order. All documents in an index share one fixed
// dimensionality, and mismatches fail with ErrDimensionMismatch. Get
// looks up a single stored document by recipe ID and reports ErrNotFound
// for IDs that were never indexed.
package vector
