// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/recipefinder/recipefinder/internal/models"
)

// readyCheckTimeout bounds each dependency probe so a hung Mongo
// connection cannot stall the readiness endpoint.
const readyCheckTimeout = 5 * time.Second

// Health reports liveness.
//
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Service is alive"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	}, 0, false)
}

// HealthReady reports readiness: the recipe store answers pings, the
// vector index is reachable, and the embedding circuit breaker is not
// open. A half-open breaker still counts as ready; it is probing.
//
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ReadyStatus} "All dependencies ready"
// @Failure 503 {object} models.APIResponse{data=models.ReadyStatus} "A dependency is unavailable"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	checks := make(map[string]string, 3)
	ready := true

	if err := h.store.Ping(ctx); err != nil {
		checks["mongo"] = err.Error()
		ready = false
	} else {
		checks["mongo"] = "ok"
	}

	if stats, err := h.index.Stats(ctx); err != nil {
		checks["index"] = err.Error()
		ready = false
	} else {
		checks["index"] = fmt.Sprintf("ok (%d documents)", stats.Documents)
	}

	if h.breaker != nil {
		state := h.breaker.State()
		if state == gobreaker.StateOpen {
			checks["embedder"] = "circuit breaker open"
			ready = false
		} else {
			checks["embedder"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, models.ReadyStatus{Ready: ready, Checks: checks}, 0, false)
}
