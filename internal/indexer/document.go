// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package indexer

import (
	"strings"

	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/vector"
)

// buildDocument converts a stored recipe into an index document and
// its embedding text. ok is false when the recipe has no usable ID or
// its ingredients or directions normalize to nothing; such recipes are
// counted as skipped rather than indexed.
func buildDocument(rec *models.Recipe) (vector.Document, string, bool) {
	id := rec.HexID()
	if id == "" {
		return vector.Document{}, "", false
	}

	ingredients := models.NormalizeTextList(rec.Ingredients)
	directions := models.NormalizeTextList(rec.Directions)
	if len(ingredients) == 0 || len(directions) == 0 {
		return vector.Document{}, "", false
	}

	title := rec.DisplayTitle()
	doc := vector.Document{
		ID: id,
		Meta: vector.Meta{
			Title:       title,
			Ingredients: ingredients,
			Directions:  directions,
		},
	}
	return doc, embedText(title, ingredients, directions), true
}

// embedText composes the text a recipe is embedded from. Stored
// embeddings depend on this exact composition; changing it requires a
// full rebuild.
func embedText(title string, ingredients, directions []string) string {
	var b strings.Builder
	b.WriteString(title)
	for _, ing := range ingredients {
		b.WriteByte(' ')
		b.WriteString(ing)
	}
	for _, dir := range directions {
		b.WriteByte(' ')
		b.WriteString(dir)
	}
	return b.String()
}
