// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/vector"
)

// Hybrid score weights. Embedding similarity dominates; ingredient
// overlap separates recipes the embedding space places together (a
// korma and a tikka masala embed close, but share fewer ingredients
// than two kormas).
const (
	cosineWeight  = 0.7
	overlapWeight = 0.3
)

// Similar returns up to limit neighbours of the stored recipe, ranked
// by a blend of embedding cosine similarity and ingredient-token
// Jaccard overlap, min-max normalized over the candidate set.
//
// The source recipe's token set is its indexed ingredient text plus its
// NER food entities; candidates contribute their indexed ingredient
// text. Returns store.ErrNotFound for unknown IDs and ErrNotIndexed
// when the recipe has no vector yet.
func (s *Service) Similar(ctx context.Context, recipeID string, limit int) ([]models.SimilarRecipe, error) {
	if limit < 1 {
		limit = s.cfg.DefaultTopK
	}
	if limit > s.cfg.MaxTopK {
		limit = s.cfg.MaxTopK
	}

	rec, err := s.store.GetByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load recipe %s: %w", recipeID, err)
	}

	doc, err := s.index.Get(ctx, recipeID)
	if err != nil {
		if errors.Is(err, vector.ErrNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", recipeID, ErrNotIndexed)
		}
		return nil, fmt.Errorf("load vector %s: %w", recipeID, err)
	}

	sourceTokens := tokenSet(doc.Meta.Ingredients)
	for _, term := range models.NormalizeTextList(rec.NER) {
		for _, tok := range strings.Fields(term) {
			sourceTokens[tok] = struct{}{}
		}
	}

	// One extra candidate because the recipe matches itself with
	// similarity 1.
	matches, err := s.index.Search(ctx, doc.Vector, limit+1)
	if err != nil {
		return nil, fmt.Errorf("neighbour search: %w", err)
	}

	type neighbour struct {
		title   string
		cosine  float64
		overlap float64
	}

	raw := make(map[string]neighbour, len(matches))
	scores := make(map[string]float64, len(matches))
	for _, m := range matches {
		if m.ID == recipeID {
			continue
		}
		cos := float64(m.Score)
		overlap := jaccard(sourceTokens, tokenSet(m.Meta.Ingredients))
		raw[m.ID] = neighbour{title: m.Meta.Title, cosine: cos, overlap: overlap}
		scores[m.ID] = cosineWeight*cos + overlapWeight*overlap
	}

	normalizeScores(scores)

	out := make([]models.SimilarRecipe, 0, len(scores))
	for id, score := range scores {
		n := raw[id]
		out = append(out, models.SimilarRecipe{
			ID:         id,
			Title:      n.title,
			Score:      score,
			Cosine:     n.cosine,
			Ingredient: n.overlap,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Cosine != out[j].Cosine {
			return out[i].Cosine > out[j].Cosine
		}
		return out[i].ID < out[j].ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// tokenSet splits already-normalized strings into a word set.
func tokenSet(items []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, item := range items {
		for _, tok := range strings.Fields(item) {
			set[tok] = struct{}{}
		}
	}
	return set
}

// jaccard computes intersection-over-union of two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// normalizeScores min-max scales the scores in place to [0, 1]. A set
// of equal scores maps to 0.5 for all.
func normalizeScores(scores map[string]float64) {
	if len(scores) == 0 {
		return
	}

	var minScore, maxScore float64
	first := true
	for _, score := range scores {
		if first {
			minScore, maxScore = score, score
			first = false
			continue
		}
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}

	rang := maxScore - minScore
	if rang == 0 {
		for id := range scores {
			scores[id] = 0.5
		}
		return
	}

	for id, score := range scores {
		scores[id] = (score - minScore) / rang
	}
}
