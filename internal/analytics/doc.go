// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package analytics persists search telemetry and the admin audit trail
// in an embedded DuckDB database.
//
// Two tables back the package: searches holds one row per completed
// search (query, result count, top score, cache/answer flags, latency),
// admin_audit holds one row per authenticated admin operation.
//
// # Write Paths
//
// Search rows arrive through Writer, an asynchronous sink that buffers
// rows on a channel and drains them from a single goroutine. The search
// pipeline calls Writer.RecordSearch on every request, so that path never
// blocks: when the buffer is full the row is dropped and a warning is
// logged. Admin audit rows are written synchronously by RecordAdminAction;
// admin operations are rare and their handlers tolerate the write.
//
// # Reports
//
// TopQueries, ZeroResultQueries, and VolumeByDay back the /analytics API
// endpoints. Rows older than the configured retention window are removed
// by Prune, which RunRetention invokes on a daily ticker.
//
// The schema is created on open. Versioned migrations are tracked in a
// schema_migrations table; the pre-release migration list is empty because
// the full schema lives in the initial CREATE TABLE statements.
package analytics
