// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package main provides the RecipeFinder HTTP server
//
// RecipeFinder API provides semantic recipe search, similarity
// browsing, and grounded natural-language answers.
//
// @title RecipeFinder API
// @version 1.0
// @description Semantic recipe search and recommendation service
// @description
// @description ## Features
// @description
// @description - **Semantic Search**: Natural-language queries matched by embedding similarity, not keywords
// @description - **Grounded Answers**: LLM responses built from the retrieved recipes, with video links
// @description - **Similar Recipes**: Nearest-neighbour browsing from any recipe
// @description - **Autocomplete**: Fuzzy title suggestions
// @description - **Bulk Import**: CSV ingestion with live WebSocket progress
// @description - **Search Analytics**: Top queries, zero-result queries, and daily volume
// @description
// @description ## Authentication
// @description
// @description Read endpoints are public. Mutating and admin endpoints require a JWT
// @description bearer token from `/api/v1/auth/login`. When no admin password hash is
// @description configured, authentication is disabled and admin endpoints are open.
// @description
// @description ## Rate Limiting
// @description
// @description Per-IP limits are applied per route group (search, API, auth, admin).
// @description Exceeding a limit returns `429` with error code `RATE_LIMIT_EXCEEDED`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-25T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/recipefinder/recipefinder/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token. Obtain via /api/v1/auth/login and send as "Bearer <token>".
//
// @tag.name Search
// @tag.description Semantic search, similar recipes, and title suggestions
//
// @tag.name Recipes
// @tag.description Recipe CRUD; mutations require authentication
//
// @tag.name Auth
// @tag.description Admin login
//
// @tag.name Admin
// @tag.description Index rebuilds, snapshots, CSV import, and cache statistics
//
// @tag.name Analytics
// @tag.description Search analytics backed by DuckDB
//
// @tag.name Core
// @tag.description Health checks and index status
//
// @tag.name Realtime
// @tag.description WebSocket progress and search activity feed
package main
