// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/models"
)

// decodeData re-marshals the envelope's data field into a typed value.
func decodeData(t *testing.T, envelope models.APIResponse, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestSearchReturnsResults(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})
	env.seedRecipe(t, "Garlic Butter Pasta")

	resp, envelope := env.doJSON(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Query: "pasta with garlic"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Fatalf("envelope status = %q, want success", envelope.Status)
	}

	var result models.SearchResult
	decodeData(t, envelope, &result)
	if result.Query != "pasta with garlic" {
		t.Errorf("query = %q", result.Query)
	}
	if len(result.Recipes) != 1 {
		t.Fatalf("recipes = %d, want 1", len(result.Recipes))
	}
	if result.Recipes[0].Title != "Garlic Butter Pasta" {
		t.Errorf("title = %q", result.Recipes[0].Title)
	}
	if len(result.Videos) != 1 {
		t.Errorf("videos = %d, want 1", len(result.Videos))
	}
}

func TestSearchEmptyIndexAnswersNoResults(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, envelope := env.doJSON(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Query: "anything"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result models.SearchResult
	decodeData(t, envelope, &result)
	if result.Response != models.NoResultsMessage {
		t.Errorf("response = %q, want no-results message", result.Response)
	}
	if len(result.Recipes) != 0 {
		t.Errorf("recipes = %d, want 0", len(result.Recipes))
	}
}

func TestSearchValidation(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing query", map[string]interface{}{}},
		{"blank query", map[string]interface{}{"query": "   "}},
		{"zero top_k", map[string]interface{}{"query": "soup", "top_k": 0}},
		{"unknown field", map[string]interface{}{"query": "soup", "limit": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envelope := env.doJSON(t, http.MethodPost, "/api/v1/search", tt.body, "")
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if envelope.Error == nil || envelope.Error.Code != CodeValidation {
				t.Errorf("error = %+v, want code %s", envelope.Error, CodeValidation)
			}
		})
	}
}

func TestListRecipesPaginates(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})
	for _, title := range []string{"One", "Two", "Three"} {
		env.seedRecipe(t, title)
	}

	resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/recipes?limit=2&offset=1", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var page models.RecipePage
	decodeData(t, envelope, &page)
	if page.Total != 3 {
		t.Errorf("total = %d, want 3", page.Total)
	}
	if len(page.Recipes) != 2 {
		t.Errorf("page size = %d, want 2", len(page.Recipes))
	}
	if page.Limit != 2 || page.Offset != 1 {
		t.Errorf("limit/offset = %d/%d, want 2/1", page.Limit, page.Offset)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	for _, id := range []string{"64b0c0ffee0000000000dead", "not-a-hex-id"} {
		resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/recipes/"+id, nil, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("id %q: status = %d, want 404", id, resp.StatusCode)
		}
		if envelope.Error == nil || envelope.Error.Code != CodeNotFound {
			t.Errorf("id %q: error = %+v, want code %s", id, envelope.Error, CodeNotFound)
		}
	}
}

func TestCreateRecipeIndexesImmediately(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	input := models.RecipeInput{
		Title:       "Miso Soup",
		Ingredients: []string{"miso paste", "tofu"},
		Directions:  []string{"Simmer dashi.", "Whisk in miso."},
	}
	resp, envelope := env.doJSON(t, http.MethodPost, "/api/v1/recipes", input, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var created createResult
	decodeData(t, envelope, &created)
	if created.ID == "" {
		t.Fatal("created id is empty")
	}
	if !created.Indexed {
		t.Error("recipe was not indexed immediately")
	}

	if _, err := env.index.Get(t.Context(), created.ID); err != nil {
		t.Errorf("index.Get(%q) error = %v", created.ID, err)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	input := models.RecipeInput{Title: "No directions", Ingredients: []string{"salt"}}
	resp, envelope := env.doJSON(t, http.MethodPost, "/api/v1/recipes", input, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeValidation {
		t.Errorf("error = %+v, want code %s", envelope.Error, CodeValidation)
	}
}

func TestUpdateRecipeReindexes(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})
	id := env.seedRecipe(t, "Old Title")

	input := models.RecipeInput{
		Title:       "New Title",
		Ingredients: []string{"butter"},
		Directions:  []string{"Melt the butter."},
	}
	resp, envelope := env.doJSON(t, http.MethodPut, "/api/v1/recipes/"+id, input, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var updated models.Recipe
	decodeData(t, envelope, &updated)
	if updated.Title != "New Title" {
		t.Errorf("title = %q, want New Title", updated.Title)
	}

	doc, err := env.index.Get(t.Context(), id)
	if err != nil {
		t.Fatalf("index.Get() error = %v", err)
	}
	if doc.Meta.Title != "New Title" {
		t.Errorf("indexed title = %q, want New Title", doc.Meta.Title)
	}
}

func TestDeleteRecipeRemovesIndexEntry(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})
	id := env.seedRecipe(t, "Short Lived")

	resp, _ := env.doJSON(t, http.MethodDelete, "/api/v1/recipes/"+id, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if _, err := env.store.GetByID(t.Context(), id); err == nil {
		t.Error("recipe still in store after delete")
	}
	if _, err := env.index.Get(t.Context(), id); err == nil {
		t.Error("vector still in index after delete")
	}

	resp, _ = env.doJSON(t, http.MethodDelete, "/api/v1/recipes/"+id, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestSimilarRecipes(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})
	id := env.seedRecipe(t, "Tomato Soup")
	env.seedRecipe(t, "Tomato Stew")
	env.seedRecipe(t, "Chocolate Cake")

	resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/recipes/"+id+"/similar?limit=5", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var similar []models.SimilarRecipe
	decodeData(t, envelope, &similar)
	for _, s := range similar {
		if s.ID == id {
			t.Error("similar results include the recipe itself")
		}
	}
}

func TestSimilarRecipeNotFound(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/recipes/64b0c0ffee0000000000dead/similar", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeNotFound {
		t.Errorf("error = %+v, want code %s", envelope.Error, CodeNotFound)
	}
}

func TestSuggestRequiresQuery(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/recipes/suggest", nil, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeValidation {
		t.Errorf("error = %+v, want code %s", envelope.Error, CodeValidation)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})
	env.handler.SetVersion("test")

	resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/health", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var health models.HealthStatus
	decodeData(t, envelope, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.Version != "test" {
		t.Errorf("version = %q, want test", health.Version)
	}
}

func TestHealthReady(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/health/ready", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var ready models.ReadyStatus
	decodeData(t, envelope, &ready)
	if !ready.Ready {
		t.Errorf("ready = false, checks = %v", ready.Checks)
	}
	if ready.Checks["mongo"] != "ok" {
		t.Errorf("mongo check = %q, want ok", ready.Checks["mongo"])
	}
}

func TestHealthReadyStoreDown(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})
	env.store.pingErr = errMongoDown

	resp, envelope := env.doJSON(t, http.MethodGet, "/api/v1/health/ready", nil, "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}

	var ready models.ReadyStatus
	decodeData(t, envelope, &ready)
	if ready.Ready {
		t.Error("ready = true with store down")
	}
	if ready.Checks["mongo"] == "ok" {
		t.Error("mongo check reports ok with store down")
	}
}
