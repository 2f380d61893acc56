// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/recipefinder/recipefinder/internal/analytics"
	"github.com/recipefinder/recipefinder/internal/auth"
	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/indexer"
	"github.com/recipefinder/recipefinder/internal/ingest"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/search"
	"github.com/recipefinder/recipefinder/internal/store"
	"github.com/recipefinder/recipefinder/internal/vector"
	ws "github.com/recipefinder/recipefinder/internal/websocket"
)

// RebuildTrigger hands a rebuild request to the supervised indexer
// service. services.IndexerService satisfies it.
type RebuildTrigger interface {
	TriggerRebuild(opts indexer.Options) error
}

// BreakerProbe exposes the embedding circuit breaker state for the
// readiness check. embed.BreakerEmbedder satisfies it.
type BreakerProbe interface {
	State() gobreaker.State
}

// Handler contains dependencies for the API handlers.
//
// Handler methods are split across files:
//   - handlers.go: struct, constructor, search and recipe endpoints
//   - handlers_admin.go: index administration, import, login, analytics
//   - handlers_health.go: liveness and readiness
//   - handlers_ws.go: WebSocket upgrade
type Handler struct {
	config    *config.Config
	store     store.RecipeStore
	search    *search.Service
	indexer   *indexer.Indexer
	index     vector.Index
	importer  *ingest.CSVImporter
	auth      *auth.Service
	hub       *ws.Hub
	security  *logging.SecurityLogger
	startTime time.Time

	// Optional collaborators, attached after construction.
	analytics *analytics.DB
	rebuilds  RebuildTrigger
	breaker   BreakerProbe
	version   string
}

// NewHandler creates the API handler with its required dependencies.
// Optional collaborators (analytics store, supervised rebuild trigger,
// breaker probe, version string) are attached with the Set* methods
// because they come up later in the boot sequence.
func NewHandler(cfg *config.Config, recipeStore store.RecipeStore, searchService *search.Service, ix *indexer.Indexer, index vector.Index, importer *ingest.CSVImporter, authService *auth.Service, hub *ws.Hub) *Handler {
	return &Handler{
		config:    cfg,
		store:     recipeStore,
		search:    searchService,
		indexer:   ix,
		index:     index,
		importer:  importer,
		auth:      authService,
		hub:       hub,
		security:  logging.NewSecurityLogger(),
		startTime: time.Now(),
	}
}

// SetAnalytics attaches the analytics store for reports and audit rows.
func (h *Handler) SetAnalytics(db *analytics.DB) { h.analytics = db }

// SetRebuildTrigger routes rebuild requests through the supervised
// indexer service instead of running them on the request goroutine.
func (h *Handler) SetRebuildTrigger(t RebuildTrigger) { h.rebuilds = t }

// SetBreakerProbe attaches the embedding circuit breaker for readiness.
func (h *Handler) SetBreakerProbe(p BreakerProbe) { h.breaker = p }

// SetVersion sets the build version reported by the health endpoint.
func (h *Handler) SetVersion(version string) { h.version = version }

// audit records an admin action. No-op without an analytics store;
// failures are logged, never surfaced to the client.
func (h *Handler) audit(r *http.Request, action, detail string) {
	if h.analytics == nil {
		return
	}
	actor := actorFromContext(r.Context())
	if err := h.analytics.RecordAdminAction(r.Context(), actor, action, detail); err != nil {
		logging.Warn().Err(err).Str("action", action).Msg("Audit record failed")
	}
}

// Search handles semantic recipe search.
//
// @Summary Semantic recipe search
// @Description Embeds the query, retrieves the nearest recipes and generates a natural-language recommendation.
// @Tags Search
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Search query"
// @Success 200 {object} models.APIResponse{data=models.SearchResult} "Search results"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 429 {object} models.APIResponse "Rate limited"
// @Failure 500 {object} models.APIResponse "Pipeline failure"
// @Router /search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "Invalid JSON body", err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "query must not be blank", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	result, cached, err := h.search.Search(r.Context(), &req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeSearch, "Search failed", err)
		return
	}

	elapsed := time.Duration(0)
	if !cached {
		elapsed = time.Since(start)
	}
	respondSuccess(w, http.StatusOK, result, elapsed, cached)
}

// ListRecipes handles paginated recipe listing.
//
// @Summary List recipes
// @Tags Recipes
// @Produce json
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} models.APIResponse{data=models.RecipePage} "Recipe page"
// @Failure 500 {object} models.APIResponse "Store failure"
// @Router /recipes [get]
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := clampInt(getIntParam(r, "limit", 20), 1, 100)
	offset := getIntParam(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	recipes, total, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to list recipes", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.RecipePage{
		Recipes: recipes,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, time.Since(start), false)
}

// GetRecipe handles single recipe lookup.
//
// @Summary Get a recipe
// @Tags Recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.APIResponse{data=models.Recipe} "Recipe"
// @Failure 404 {object} models.APIResponse "Unknown recipe"
// @Router /recipes/{id} [get]
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	recipe, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			respondError(w, http.StatusNotFound, CodeNotFound, "Recipe not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to load recipe", err)
		return
	}

	respondSuccess(w, http.StatusOK, recipe, 0, false)
}

// createResult is the CreateRecipe response payload.
type createResult struct {
	ID      string `json:"id"`
	Indexed bool   `json:"indexed"`
}

// CreateRecipe handles recipe creation with optional immediate indexing.
//
// @Summary Create a recipe
// @Description Stores a recipe and, unless index=false, embeds it immediately so it is searchable without a rebuild.
// @Tags Recipes
// @Accept json
// @Produce json
// @Param index query bool false "Embed and index immediately" default(true)
// @Param request body models.RecipeInput true "Recipe"
// @Success 201 {object} models.APIResponse{data=api.createResult} "Created"
// @Failure 400 {object} models.APIResponse "Invalid recipe"
// @Failure 401 {object} models.APIResponse "Admin token required"
// @Security BearerAuth
// @Router /recipes [post]
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var in models.RecipeInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&in); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	recipe := in.ToRecipe()
	id, err := h.store.Insert(r.Context(), &recipe)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to store recipe", err)
		return
	}

	indexed := false
	if getBoolParam(r, "index", true) {
		switch err := h.indexer.IndexOne(r.Context(), &recipe); {
		case err == nil:
			indexed = true
		case errors.Is(err, indexer.ErrNotIndexable):
			logging.Warn().Str("id", id).Msg("Created recipe not indexable, skipped")
		default:
			logging.Error().Err(err).Str("id", id).Msg("Immediate indexing failed, recipe stored but not searchable")
		}
	}

	h.search.InvalidateCache()
	h.audit(r, "recipe_create", id)
	respondSuccess(w, http.StatusCreated, createResult{ID: id, Indexed: indexed}, 0, false)
}

// UpdateRecipe handles recipe update and reindexes the entry.
//
// @Summary Update a recipe
// @Tags Recipes
// @Accept json
// @Produce json
// @Param id path string true "Recipe ID"
// @Param request body models.RecipeInput true "Recipe"
// @Success 200 {object} models.APIResponse{data=models.Recipe} "Updated recipe"
// @Failure 400 {object} models.APIResponse "Invalid recipe"
// @Failure 401 {object} models.APIResponse "Admin token required"
// @Failure 404 {object} models.APIResponse "Unknown recipe"
// @Security BearerAuth
// @Router /recipes/{id} [put]
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.RecipeInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&in); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	recipe := in.ToRecipe()
	if err := h.store.Update(r.Context(), id, &recipe); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			respondError(w, http.StatusNotFound, CodeNotFound, "Recipe not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to update recipe", err)
		return
	}

	// Reindex with the stored document so the vector carries the ID.
	updated, err := h.store.GetByID(r.Context(), id)
	if err == nil {
		if ierr := h.indexer.IndexOne(r.Context(), updated); ierr != nil && !errors.Is(ierr, indexer.ErrNotIndexable) {
			logging.Error().Err(ierr).Str("id", id).Msg("Reindex after update failed")
		}
	} else {
		logging.Error().Err(err).Str("id", id).Msg("Reload after update failed, entry not reindexed")
		updated = &recipe
	}

	h.search.InvalidateCache()
	h.audit(r, "recipe_update", id)
	respondSuccess(w, http.StatusOK, updated, 0, false)
}

// DeleteRecipe handles recipe deletion, including its index entry.
//
// @Summary Delete a recipe
// @Tags Recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} models.APIResponse "Deleted"
// @Failure 401 {object} models.APIResponse "Admin token required"
// @Failure 404 {object} models.APIResponse "Unknown recipe"
// @Security BearerAuth
// @Router /recipes/{id} [delete]
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			respondError(w, http.StatusNotFound, CodeNotFound, "Recipe not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to delete recipe", err)
		return
	}

	if err := h.indexer.RemoveOne(r.Context(), id); err != nil {
		logging.Error().Err(err).Str("id", id).Msg("Index delete failed, stale vector remains until next rebuild")
	}

	h.search.InvalidateCache()
	h.audit(r, "recipe_delete", id)
	respondSuccess(w, http.StatusOK, map[string]string{"id": id}, 0, false)
}

// SimilarRecipes handles the content-based neighbors endpoint.
//
// @Summary Similar recipes
// @Description Blends embedding similarity with ingredient overlap to rank neighbors of a recipe.
// @Tags Recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Param limit query int false "Neighbors to return (1-50)" default(5)
// @Success 200 {object} models.APIResponse{data=[]models.SimilarRecipe} "Neighbors"
// @Failure 404 {object} models.APIResponse "Unknown or unindexed recipe"
// @Failure 500 {object} models.APIResponse "Pipeline failure"
// @Router /recipes/{id}/similar [get]
func (h *Handler) SimilarRecipes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	limit := clampInt(getIntParam(r, "limit", 5), 1, 50)

	similar, err := h.search.Similar(r.Context(), id, limit)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
			respondError(w, http.StatusNotFound, CodeNotFound, "Recipe not found", nil)
		case errors.Is(err, search.ErrNotIndexed):
			respondError(w, http.StatusNotFound, CodeNotFound, "Recipe is not indexed yet", nil)
		default:
			respondError(w, http.StatusInternalServerError, CodeSearch, "Similar lookup failed", err)
		}
		return
	}

	respondSuccess(w, http.StatusOK, similar, time.Since(start), false)
}

// SuggestRecipes handles fuzzy title autocomplete.
//
// @Summary Title suggestions
// @Tags Recipes
// @Produce json
// @Param q query string true "Title prefix or fragment"
// @Param limit query int false "Suggestions to return (1-25)" default(10)
// @Success 200 {object} models.APIResponse{data=[]models.Suggestion} "Suggestions"
// @Failure 400 {object} models.APIResponse "Missing query"
// @Router /recipes/suggest [get]
func (h *Handler) SuggestRecipes(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		respondError(w, http.StatusBadRequest, CodeValidation, "q parameter is required", nil)
		return
	}
	limit := clampInt(getIntParam(r, "limit", 10), 1, 25)

	suggestions, err := h.search.Suggest(r.Context(), prefix, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeSearch, "Suggest failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, suggestions, 0, false)
}
