// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

/*
Package models defines the domain types shared across RecipeFinder.

The package has no dependencies on other internal packages so every layer
(store, vector index, search pipeline, HTTP API) can exchange values without
import cycles.

# Type Groups

  - Recipe, RecipeInput, RecipePage: stored recipe documents (bson field
    names compatible with the original smart_recipe_db collection)
  - SearchRequest, SearchResult, RecipeHit: the search API contract,
    preserving the original {query, response, recipes, videos} payload shape
  - SimilarRecipe, Suggestion: neighbor lookup and title autocomplete
  - APIResponse, Metadata, APIError: the response envelope used by every
    HTTP endpoint
  - IndexStats, IndexStatus, ImportStats: indexing and import progress
  - SearchRecord, QueryCount, DayVolume: search analytics rows

NormalizeText and TitleKey define the canonical text forms used for
embedding, index metadata, and title autocomplete; every package that
prepares or compares recipe text goes through them.

# Conventions

JSON tags are snake_case. Mongo documents use explicit bson tags; the title
is stored under `name` and the RecipeNLG row id under `_csv_id` for
compatibility with existing data.
*/
package models
