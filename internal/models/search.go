// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package models

// SearchRequest is the POST /api/v1/search payload.
//
// TopK defaults to 5 when omitted; the zero value is distinguished from an
// explicit 0 by the pointer (an explicit 0 is rejected by validation, matching
// the original schema which required top_k >= 1).
type SearchRequest struct {
	Query string `json:"query" validate:"required,max=500"`
	TopK  *int   `json:"top_k,omitempty" validate:"omitempty,min=1"`
}

// EffectiveTopK resolves the requested result count against the configured
// default and ceiling.
func (r *SearchRequest) EffectiveTopK(defaultK, maxK int) int {
	if r.TopK == nil {
		return defaultK
	}
	k := *r.TopK
	if k < 1 {
		return defaultK
	}
	if k > maxK {
		return maxK
	}
	return k
}

// NoResultsMessage is returned as the response text when retrieval finds
// nothing. The wording is part of the original API contract.
const NoResultsMessage = "No relevant recipes found for your query."

// GenerationUnavailableMessage replaces the generated summary when the
// configured provider fails or none is configured. Retrieval results are
// still served; generation failure never fails the request.
const GenerationUnavailableMessage = "Recipe recommendations are ready below. Automatic summaries are temporarily unavailable."

// SearchResult is the search response payload, preserving the original
// {query, response, recipes, videos} shape.
//
// Videos maps recipe IDs to watch URLs using the original placeholder
// contract: id -> https://www.youtube.com/watch?v=<id>.
type SearchResult struct {
	Query    string            `json:"query"`
	Response string            `json:"response"`
	Recipes  []RecipeHit       `json:"recipes"`
	Videos   map[string]string `json:"videos"`
}

// RecipeHit is one retrieved recipe. Ingredients and Directions carry the
// indexed display strings (", "-joined and ". "-joined respectively, the
// original metadata shape). Score is cosine similarity against the query
// embedding; higher is better.
type RecipeHit struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Ingredients string  `json:"ingredients"`
	Directions  string  `json:"directions"`
	Score       float64 `json:"score"`
}

// SimilarRecipe is one neighbor from GET /recipes/{id}/similar.
// Score blends embedding cosine similarity with ingredient/NER overlap,
// min-max normalized over the returned set.
type SimilarRecipe struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	Cosine     float64 `json:"cosine"`
	Ingredient float64 `json:"ingredient_overlap"`
}

// Suggestion is one title match from GET /recipes/suggest. Score ranks
// suggestions within one response: the fuzzy match score for fuzzy
// results, or the title's recipe count for short-prefix completions.
type Suggestion struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Score int    `json:"score"`
}
