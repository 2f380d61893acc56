// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

// Error codes returned in the APIError.Code field. Clients switch on
// these rather than on HTTP status alone.
const (
	// CodeValidation covers malformed or out-of-range request input (400).
	CodeValidation = "VALIDATION_ERROR"

	// CodeNotFound covers lookups by unknown or malformed recipe IDs (404).
	CodeNotFound = "NOT_FOUND"

	// CodeSearch covers search pipeline failures: embedding service
	// errors and vector search errors (500).
	CodeSearch = "SEARCH_ERROR"

	// CodeDatabase covers recipe store and analytics store failures (500).
	CodeDatabase = "DATABASE_ERROR"

	// CodeIndex covers vector index and indexing pipeline failures (500),
	// and snapshot requests against a backend without snapshot support (501).
	CodeIndex = "INDEX_ERROR"

	// CodeAuthentication covers missing, invalid or expired credentials (401).
	CodeAuthentication = "AUTHENTICATION_ERROR"

	// CodeConflict covers operations rejected because an equivalent run
	// is already in progress: rebuild or import while one is active (409).
	CodeConflict = "OPERATION_IN_PROGRESS"

	// CodeRateLimit is returned by the rate limit middleware (429).
	CodeRateLimit = "RATE_LIMIT_EXCEEDED"
)
