// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package api provides the HTTP surface: a chi router with per-group
// rate limits, the JSON response envelope, and the handlers for search,
// recipe CRUD, indexing administration, analytics reports and the
// WebSocket progress feed.
//
// All endpoints respond with the models.APIResponse envelope. Successful
// responses carry the payload in data and timing info in metadata; error
// responses carry a structured code and message in error. Rate limiting
// (go-chi/httprate) answers 429 with the same envelope.
//
// Route groups under /api/v1:
//
//   - /search               semantic search (strict limit, embedding + LLM cost)
//   - /recipes              CRUD + similar + suggest (mutations require admin)
//   - /index/status         live index state
//   - /admin/*              rebuild, snapshot, import, cache stats (admin JWT)
//   - /auth/login           JWT issue (strictest limit)
//   - /analytics/*          search traffic reports
//   - /health, /health/ready liveness and readiness
//   - /ws                   WebSocket progress feed
//
// Root-level: /metrics (Prometheus) and /swagger/* (OpenAPI UI).
package api
