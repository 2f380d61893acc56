// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package analytics

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the analytics tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := db.getTableCreationQueries()

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	return []string{
		// One row per completed search. latency_ms covers the full
		// pipeline: embedding, vector search, and the optional answer
		// call. top_score is NULL when the search returned nothing.
		`CREATE TABLE IF NOT EXISTS searches (
			id UUID PRIMARY KEY,
			ts TIMESTAMP NOT NULL,
			query TEXT NOT NULL,
			top_k INTEGER NOT NULL,
			results INTEGER NOT NULL,
			top_score DOUBLE,
			cached BOOLEAN NOT NULL DEFAULT false,
			answered BOOLEAN NOT NULL DEFAULT false,
			provider TEXT,
			latency_ms BIGINT NOT NULL
		)`,

		// One row per authenticated admin operation: who triggered
		// what, when, with the operation's parameters in detail.
		`CREATE TABLE IF NOT EXISTS admin_audit (
			ts TIMESTAMP NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			detail TEXT
		)`,
	}
}

// createIndexes creates indexes for the report and retention queries
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		// Report queries filter on ts and group on query
		`CREATE INDEX IF NOT EXISTS idx_searches_ts ON searches(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_query ON searches(query)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_audit_ts ON admin_audit(ts)`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}

	return nil
}
