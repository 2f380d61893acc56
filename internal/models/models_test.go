// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecipe_DisplayTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"normal title", "Beef Stroganoff", "Beef Stroganoff"},
		{"padded title", "  Beef Stroganoff  ", "Beef Stroganoff"},
		{"empty title", "", UnnamedRecipeTitle},
		{"whitespace title", "   ", UnnamedRecipeTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Recipe{Title: tt.title}
			if got := r.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecipe_HexID(t *testing.T) {
	var r Recipe
	if got := r.HexID(); got != "" {
		t.Errorf("HexID() on zero ID = %q, want empty", got)
	}

	id := primitive.NewObjectID()
	r.ID = id
	if got := r.HexID(); got != id.Hex() {
		t.Errorf("HexID() = %q, want %q", got, id.Hex())
	}
}

func TestRecipe_BSONFieldCompatibility(t *testing.T) {
	// The stored field names are part of the data contract with the original
	// smart_recipe_db collection: title lives under "name", the CSV row id
	// under "_csv_id".
	r := Recipe{
		Title:       "Pancakes",
		Ingredients: []string{"2 cups flour", "1 egg"},
		Directions:  []string{"Mix.", "Fry."},
		SourceID:    "42",
	}

	raw, err := bson.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc["name"] != "Pancakes" {
		t.Errorf("title stored as %v, want under key \"name\"", doc["name"])
	}
	if doc["_csv_id"] != "42" {
		t.Errorf("source id stored as %v, want under key \"_csv_id\"", doc["_csv_id"])
	}
	if _, exists := doc["title"]; exists {
		t.Error("unexpected \"title\" key in stored document")
	}
}

func TestSearchRequest_EffectiveTopK(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name string
		topK *int
		want int
	}{
		{"nil uses default", nil, 5},
		{"explicit value", intPtr(10), 10},
		{"clamped to max", intPtr(500), 50},
		{"zero uses default", intPtr(0), 5},
		{"negative uses default", intPtr(-3), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SearchRequest{Query: "pasta", TopK: tt.topK}
			if got := req.EffectiveTopK(5, 50); got != tt.want {
				t.Errorf("EffectiveTopK() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSearchResult_JSONShape(t *testing.T) {
	// The payload keys are the original API contract.
	result := SearchResult{
		Query:    "noodles",
		Response: "Try the udon.",
		Recipes: []RecipeHit{
			{ID: "abc", Title: "Udon", Ingredients: "noodles, broth", Directions: "Boil. Serve.", Score: 0.91},
		},
		Videos: map[string]string{"abc": "https://www.youtube.com/watch?v=abc"},
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"query", "response", "recipes", "videos"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("payload missing key %q", key)
		}
	}
}

func TestIndexStats_Duration(t *testing.T) {
	start := time.Now().Add(-2 * time.Second)

	s := IndexStats{StartTime: start, EndTime: start.Add(time.Second)}
	if got := s.Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}

	// In-progress runs measure against now
	s = IndexStats{StartTime: start}
	if got := s.Duration(); got < time.Second {
		t.Errorf("Duration() on running stats = %v, want >= 1s", got)
	}
}

func TestRecipeInput_ToRecipe(t *testing.T) {
	in := RecipeInput{
		Title:       "  Tacos  ",
		Ingredients: []string{"tortillas", "beef"},
		Directions:  []string{"Cook beef.", "Assemble."},
		NER:         []string{"tortillas", "beef"},
	}

	r := in.ToRecipe()
	if r.Title != "Tacos" {
		t.Errorf("Title = %q, want trimmed %q", r.Title, "Tacos")
	}
	if len(r.Ingredients) != 2 || len(r.Directions) != 2 {
		t.Error("ingredient/direction lists not carried over")
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestFallbackMessages(t *testing.T) {
	// These strings are part of the API contract; a change breaks clients
	// matching on them.
	if NoResultsMessage != "No relevant recipes found for your query." {
		t.Errorf("NoResultsMessage changed: %q", NoResultsMessage)
	}
	if GenerationUnavailableMessage == "" {
		t.Error("GenerationUnavailableMessage is empty")
	}
}
