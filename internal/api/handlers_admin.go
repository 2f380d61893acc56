// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/recipefinder/recipefinder/internal/auth"
	"github.com/recipefinder/recipefinder/internal/indexer"
	"github.com/recipefinder/recipefinder/internal/ingest"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/vector"
)

// IndexStatus reports the live vector index state.
//
// @Summary Index status
// @Tags Index
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.IndexStatus} "Index state"
// @Failure 500 {object} models.APIResponse "Index failure"
// @Router /index/status [get]
func (h *Handler) IndexStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.indexer.Status(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeIndex, "Failed to read index status", err)
		return
	}
	respondSuccess(w, http.StatusOK, status, 0, false)
}

// rebuildRequest is the optional POST /admin/index/rebuild body.
type rebuildRequest struct {
	Wipe      bool  `json:"wipe"`
	Limit     int64 `json:"limit" validate:"omitempty,min=0"`
	BatchSize int   `json:"batch_size" validate:"omitempty,min=1,max=1000"`
}

// RebuildIndex triggers an indexing run.
//
// @Summary Trigger index rebuild
// @Description Starts a background embedding run. Progress is streamed over the WebSocket feed.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body api.rebuildRequest false "Run options"
// @Success 202 {object} models.APIResponse "Rebuild started"
// @Failure 401 {object} models.APIResponse "Admin token required"
// @Failure 409 {object} models.APIResponse "Run already in progress"
// @Security BearerAuth
// @Router /admin/index/rebuild [post]
func (h *Handler) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, CodeValidation, "Invalid JSON body", err)
			return
		}
		if apiErr := validateRequest(&req); apiErr != nil {
			respondValidationError(w, apiErr)
			return
		}
	}

	if h.indexer.IsRunning() {
		respondError(w, http.StatusConflict, CodeConflict, "Indexing already in progress", nil)
		return
	}

	opts := indexer.Options{Wipe: req.Wipe, Limit: req.Limit, BatchSize: req.BatchSize}
	if h.rebuilds != nil {
		if err := h.rebuilds.TriggerRebuild(opts); err != nil {
			respondError(w, http.StatusConflict, CodeConflict, "Indexing already in progress", err)
			return
		}
	} else {
		// No supervised indexer service wired; run detached. The run
		// guard inside the indexer still enforces one run at a time.
		go func() {
			if _, err := h.indexer.Run(context.Background(), opts); err != nil && !errors.Is(err, indexer.ErrRunInProgress) {
				logging.Error().Err(err).Msg("Rebuild failed")
			}
		}()
	}

	h.audit(r, "index_rebuild", fmt.Sprintf("wipe=%t limit=%d", req.Wipe, req.Limit))
	respondSuccess(w, http.StatusAccepted, map[string]string{"status": "started"}, 0, false)
}

// SnapshotIndex streams a consistent index backup to the snapshot dir.
//
// @Summary Snapshot the vector index
// @Description Writes a consistent backup of the badger-backed index into the configured snapshot directory.
// @Tags Admin
// @Produce json
// @Success 201 {object} models.APIResponse{data=models.SnapshotInfo} "Snapshot written"
// @Failure 401 {object} models.APIResponse "Admin token required"
// @Failure 500 {object} models.APIResponse "Snapshot failure"
// @Failure 501 {object} models.APIResponse "Backend has no snapshot support"
// @Security BearerAuth
// @Router /admin/index/snapshot [post]
func (h *Handler) SnapshotIndex(w http.ResponseWriter, r *http.Request) {
	snapshotter, ok := h.index.(vector.Snapshotter)
	if !ok {
		respondError(w, http.StatusNotImplemented, CodeIndex, "The configured vector backend does not support snapshots", nil)
		return
	}

	dir := h.config.Vector.SnapshotDir
	if err := os.MkdirAll(dir, 0o750); err != nil {
		respondError(w, http.StatusInternalServerError, CodeIndex, "Failed to create snapshot directory", err)
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("recipes-%s.snapshot", time.Now().UTC().Format("20060102-150405")))
	f, err := os.Create(path)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeIndex, "Failed to create snapshot file", err)
		return
	}

	if err := snapshotter.Snapshot(r.Context(), f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		respondError(w, http.StatusInternalServerError, CodeIndex, "Snapshot failed", err)
		return
	}
	if err := f.Close(); err != nil {
		respondError(w, http.StatusInternalServerError, CodeIndex, "Failed to finalize snapshot file", err)
		return
	}

	info := models.SnapshotInfo{Path: path, CreatedAt: time.Now().UTC()}
	if st, err := os.Stat(path); err == nil {
		info.SizeBytes = st.Size()
	}
	if count, err := h.index.Count(r.Context()); err == nil {
		info.Documents = count
	}

	logging.Info().Str("path", path).Int64("size_bytes", info.SizeBytes).Msg("Index snapshot written")
	h.audit(r, "index_snapshot", path)
	respondSuccess(w, http.StatusCreated, info, 0, false)
}

// importRequest is the POST /admin/import body. Path names a
// RecipeNLG-format CSV readable by the server process.
type importRequest struct {
	Path      string `json:"path" validate:"required,max=4096"`
	Wipe      bool   `json:"wipe"`
	BatchSize int    `json:"batch_size" validate:"omitempty,min=1,max=10000"`
}

// ImportRecipes starts a background CSV import.
//
// @Summary Import recipes from CSV
// @Description Streams a RecipeNLG-format CSV into the recipe store. Progress is streamed over the WebSocket feed.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body api.importRequest true "Import options"
// @Success 202 {object} models.APIResponse "Import started"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 401 {object} models.APIResponse "Admin token required"
// @Failure 409 {object} models.APIResponse "Import already in progress"
// @Security BearerAuth
// @Router /admin/import [post]
func (h *Handler) ImportRecipes(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if _, err := os.Stat(req.Path); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "CSV file is not readable", err)
		return
	}

	if h.importer.IsRunning() {
		respondError(w, http.StatusConflict, CodeConflict, "Import already in progress", nil)
		return
	}

	opts := ingest.Options{Path: req.Path, Wipe: req.Wipe, BatchSize: req.BatchSize}
	go func() {
		stats, err := h.importer.Run(context.Background(), opts)
		if err != nil {
			if !errors.Is(err, ingest.ErrRunInProgress) {
				logging.Error().Err(err).Str("path", opts.Path).Msg("Import failed")
			}
			return
		}
		// Imported recipes change list results and, after the next
		// index run, search results.
		h.search.InvalidateCache()
		logging.Info().Int("inserted", stats.Inserted).Int("skipped", stats.Skipped).Msg("Import completed")
	}()

	h.audit(r, "import", fmt.Sprintf("path=%s wipe=%t", req.Path, req.Wipe))
	respondSuccess(w, http.StatusAccepted, map[string]string{"status": "started", "path": req.Path}, 0, false)
}

// CacheStats reports response cache effectiveness.
//
// @Summary Response cache statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.CacheStats} "Cache statistics"
// @Failure 401 {object} models.APIResponse "Admin token required"
// @Security BearerAuth
// @Router /admin/cache/stats [get]
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.search.CacheStats(), 0, false)
}

// Login issues an admin JWT after verifying credentials.
//
// @Summary Admin login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse} "Signed token"
// @Failure 400 {object} models.APIResponse "Invalid request"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 429 {object} models.APIResponse "Rate limited"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	// Tokens and credential feedback must never land in a shared cache
	w.Header().Set("Cache-Control", "no-store")

	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.security.LogLoginFailure(req.Username, r.RemoteAddr, r.UserAgent(), "invalid credentials")
		respondError(w, http.StatusUnauthorized, CodeAuthentication, "Invalid username or password", nil)
		return
	}

	h.security.LogLoginSuccess(req.Username, r.RemoteAddr, r.UserAgent())
	respondSuccess(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  req.Username,
		Role:      auth.RoleAdmin,
	}, 0, false)
}

// requireAnalytics guards report endpoints when the analytics store is
// not configured.
func (h *Handler) requireAnalytics(w http.ResponseWriter) bool {
	if h.analytics == nil {
		respondError(w, http.StatusServiceUnavailable, CodeDatabase, "Analytics store is not available", nil)
		return false
	}
	return true
}

// TopQueries reports the most frequent search queries.
//
// @Summary Top queries
// @Tags Analytics
// @Produce json
// @Param days query int false "Lookback window in days" default(7)
// @Param limit query int false "Rows to return" default(10)
// @Success 200 {object} models.APIResponse{data=[]models.QueryCount} "Query counts"
// @Failure 500 {object} models.APIResponse "Analytics failure"
// @Router /analytics/queries/top [get]
func (h *Handler) TopQueries(w http.ResponseWriter, r *http.Request) {
	if !h.requireAnalytics(w) {
		return
	}
	start := time.Now()
	days := getIntParam(r, "days", 7)
	limit := getIntParam(r, "limit", 10)

	rows, err := h.analytics.TopQueries(r.Context(), days, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to query analytics", err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, time.Since(start), false)
}

// ZeroResultQueries reports queries that found nothing, surfacing gaps
// in the indexed corpus.
//
// @Summary Zero-result queries
// @Tags Analytics
// @Produce json
// @Param days query int false "Lookback window in days" default(7)
// @Param limit query int false "Rows to return" default(10)
// @Success 200 {object} models.APIResponse{data=[]models.QueryCount} "Query counts"
// @Failure 500 {object} models.APIResponse "Analytics failure"
// @Router /analytics/queries/zero-results [get]
func (h *Handler) ZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	if !h.requireAnalytics(w) {
		return
	}
	start := time.Now()
	days := getIntParam(r, "days", 7)
	limit := getIntParam(r, "limit", 10)

	rows, err := h.analytics.ZeroResultQueries(r.Context(), days, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to query analytics", err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, time.Since(start), false)
}

// SearchVolume reports daily search volume and average latency.
//
// @Summary Daily search volume
// @Tags Analytics
// @Produce json
// @Param days query int false "Lookback window in days" default(7)
// @Success 200 {object} models.APIResponse{data=[]models.DayVolume} "Daily volumes"
// @Failure 500 {object} models.APIResponse "Analytics failure"
// @Router /analytics/volume [get]
func (h *Handler) SearchVolume(w http.ResponseWriter, r *http.Request) {
	if !h.requireAnalytics(w) {
		return
	}
	start := time.Now()
	days := getIntParam(r, "days", 7)

	rows, err := h.analytics.VolumeByDay(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeDatabase, "Failed to query analytics", err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, time.Since(start), false)
}
