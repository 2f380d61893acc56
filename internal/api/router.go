// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Router binds the handler set to the middleware stack.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
}

// NewRouter creates a router from a wired handler and middleware stack.
func NewRouter(handler *Handler, middleware *ChiMiddleware) *Router {
	return &Router{
		handler:    handler,
		middleware: middleware,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route in order. CORS must be
	// global to answer OPTIONS preflight requests.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health endpoints: permissive limit so monitoring can poll often.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Login: strictest limit against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.middleware.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Post("/login", router.handler.Login)
	})

	// Search: strict limit, every request costs an embedding and
	// usually an LLM round-trip.
	r.Route("/api/v1/search", func(r chi.Router) {
		r.Use(router.middleware.RateLimitSearch())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Post("/", router.handler.Search)
	})

	// Recipes: open reads, admin-gated mutations.
	r.Route("/api/v1/recipes", func(r chi.Router) {
		r.Use(router.middleware.RateLimitAPI())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/", router.handler.ListRecipes)
		r.Get("/suggest", router.handler.SuggestRecipes)
		r.Get("/{id}", router.handler.GetRecipe)
		r.Get("/{id}/similar", router.handler.SimilarRecipes)

		r.Group(func(r chi.Router) {
			r.Use(router.middleware.RequireAdmin())
			r.Post("/", router.handler.CreateRecipe)
			r.Put("/{id}", router.handler.UpdateRecipe)
			r.Delete("/{id}", router.handler.DeleteRecipe)
		})
	})

	r.Route("/api/v1/index", func(r chi.Router) {
		r.Use(router.middleware.RateLimitAPI())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Get("/status", router.handler.IndexStatus)
	})

	// Admin operations: resource intensive, admin JWT required.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(router.middleware.RateLimitAdmin())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Use(router.middleware.RequireAdmin())

		r.Post("/index/rebuild", router.handler.RebuildIndex)
		r.Post("/index/snapshot", router.handler.SnapshotIndex)
		r.Post("/import", router.handler.ImportRecipes)
		r.Get("/cache/stats", router.handler.CacheStats)
	})

	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.middleware.RateLimitAPI())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/queries/top", router.handler.TopQueries)
		r.Get("/queries/zero-results", router.handler.ZeroResultQueries)
		r.Get("/volume", router.handler.SearchVolume)
	})

	// WebSocket upgrade does its own origin check; rate limiting the
	// upgrade would break reconnecting dashboards.
	r.Get("/api/v1/ws", router.handler.WebSocket)

	// Operational endpoints outside the versioned API surface.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
