// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recipe is the stored recipe document.
//
// The bson field names match the original smart_recipe_db collection layout
// (`name` for the title, `_csv_id` for the RecipeNLG row id) so an existing
// database imports without migration. NER terms are the named food entities
// from RecipeNLG exports; they drive ingredient-overlap scoring for the
// similar-recipes endpoint.
type Recipe struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"name" json:"title"`
	Ingredients []string           `bson:"ingredients" json:"ingredients"`
	Directions  []string           `bson:"directions" json:"directions"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty"`
	Source      string             `bson:"source,omitempty" json:"source,omitempty"`
	SourceID    string             `bson:"_csv_id,omitempty" json:"source_id,omitempty"`
	NER         []string           `bson:"ner,omitempty" json:"ner,omitempty"`
	CreatedAt   time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// DisplayTitle returns the recipe title, or "Unnamed Recipe" when the stored
// name is empty after trimming. The placeholder matches the original importer.
func (r *Recipe) DisplayTitle() string {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return UnnamedRecipeTitle
	}
	return title
}

// HexID returns the recipe's storage ID as a hex string, or "" when unset.
func (r *Recipe) HexID() string {
	if r.ID.IsZero() {
		return ""
	}
	return r.ID.Hex()
}

// UnnamedRecipeTitle is the placeholder title for recipes imported without one.
const UnnamedRecipeTitle = "Unnamed Recipe"

// RecipePage is a paginated slice of recipes.
type RecipePage struct {
	Recipes []Recipe `json:"recipes"`
	Total   int64    `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// RecipeInput is the create/update payload for recipe CRUD endpoints.
// Validation tags follow the stored document constraints: a recipe without
// ingredients or directions can never be indexed, so it is rejected up front.
type RecipeInput struct {
	Title       string   `json:"title" validate:"required,max=500"`
	Ingredients []string `json:"ingredients" validate:"required,min=1,dive,required"`
	Directions  []string `json:"directions" validate:"required,min=1,dive,required"`
	Link        string   `json:"link,omitempty" validate:"omitempty,url,max=2000"`
	Source      string   `json:"source,omitempty" validate:"omitempty,max=200"`
	NER         []string `json:"ner,omitempty" validate:"omitempty,dive,required"`
}

// ToRecipe converts the input into a Recipe ready for insertion.
func (in *RecipeInput) ToRecipe() Recipe {
	now := time.Now().UTC()
	return Recipe{
		Title:       strings.TrimSpace(in.Title),
		Ingredients: in.Ingredients,
		Directions:  in.Directions,
		Link:        in.Link,
		Source:      in.Source,
		NER:         in.NER,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
