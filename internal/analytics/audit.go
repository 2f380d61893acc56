// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/recipefinder/recipefinder/internal/metrics"
)

const insertAuditSQL = `INSERT INTO admin_audit (ts, actor, action, detail) VALUES (?, ?, ?, ?)`

// RecordAdminAction appends one row to the admin audit trail. Unlike
// search telemetry the write is synchronous; the caller sees the error.
func (db *DB) RecordAdminAction(ctx context.Context, actor, action, detail string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stmt, err := db.getPreparedStmt(ctx, insertAuditSQL)
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = stmt.ExecContext(ctx, time.Now().UTC(), actor, action, detail)
	metrics.RecordDBQuery("insert", "admin_audit", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record admin action: %w", err)
	}
	return nil
}
