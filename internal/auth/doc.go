// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package auth implements admin authentication: bcrypt password
// verification against a configured hash, and HS256 JWT issuance and
// validation for the admin API.
//
// There is a single admin account defined by ADMIN_USERNAME and
// ADMIN_PASSWORD_HASH. When no hash is configured, authentication is
// disabled: login always fails and admin endpoints reject every
// request, while the read-only API stays open.
package auth
