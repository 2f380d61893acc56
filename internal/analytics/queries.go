// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

const (
	defaultReportDays  = 30
	defaultReportLimit = 10
	maxReportLimit     = 100
)

// clampDays bounds the report window, defaulting to 30 days.
func clampDays(days int) int {
	if days <= 0 {
		return defaultReportDays
	}
	return days
}

// clampLimit bounds the report row count to [1, 100], defaulting to 10.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultReportLimit
	}
	if limit > maxReportLimit {
		return maxReportLimit
	}
	return limit
}

// TopQueries returns the most frequent search queries over the last days.
func (db *DB) TopQueries(ctx context.Context, days, limit int) ([]models.QueryCount, error) {
	return db.queryCounts(ctx, "top_queries", "", days, limit)
}

// ZeroResultQueries returns the most frequent queries that matched nothing
// over the last days. These are the first place to look for catalog gaps.
func (db *DB) ZeroResultQueries(ctx context.Context, days, limit int) ([]models.QueryCount, error) {
	return db.queryCounts(ctx, "zero_result_queries", "AND results = 0", days, limit)
}

// queryCounts runs the shared frequency aggregation. extraWhere narrows the
// row set and must be a fixed SQL fragment, never user input.
func (db *DB) queryCounts(ctx context.Context, operation, extraWhere string, days, limit int) ([]models.QueryCount, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT query, COUNT(*) AS searches
		FROM searches
		WHERE ts >= CURRENT_TIMESTAMP - INTERVAL %d DAY
			%s
		GROUP BY query
		ORDER BY searches DESC, query ASC
		LIMIT %d
	`, clampDays(days), extraWhere, clampLimit(limit))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery(operation, "searches", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", operation, err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.QueryCount
	for rows.Next() {
		var qc models.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan query count: %w", err)
		}
		results = append(results, qc)
	}

	return results, rows.Err()
}

// VolumeByDay returns per-day search counts and average latency over the
// last days, oldest day first. Days with no searches produce no row.
func (db *DB) VolumeByDay(ctx context.Context, days int) ([]models.DayVolume, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	// DuckDB-native: strftime(timestamp, format) - note argument order
	// differs from SQLite
	query := fmt.Sprintf(`
		SELECT
			strftime(DATE_TRUNC('day', ts), '%%Y-%%m-%%d') AS day,
			COUNT(*) AS searches,
			COALESCE(AVG(latency_ms), 0) AS avg_latency_ms
		FROM searches
		WHERE ts >= CURRENT_TIMESTAMP - INTERVAL %d DAY
		GROUP BY DATE_TRUNC('day', ts)
		ORDER BY DATE_TRUNC('day', ts) ASC
	`, clampDays(days))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("volume_by_day", "searches", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query search volume: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.DayVolume
	for rows.Next() {
		var dv models.DayVolume
		if err := rows.Scan(&dv.Day, &dv.Searches, &dv.AvgMS); err != nil {
			return nil, fmt.Errorf("failed to scan day volume: %w", err)
		}
		results = append(results, dv)
	}

	return results, rows.Err()
}

// Prune deletes search rows older than the configured retention window and
// returns the number removed. A non-positive retention disables pruning.
func (db *DB) Prune(ctx context.Context) (int64, error) {
	retention := db.cfg.RetentionDays
	if retention <= 0 {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM searches WHERE ts < CURRENT_TIMESTAMP - INTERVAL %d DAY`, retention)

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, query)
	metrics.RecordDBQuery("prune", "searches", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to prune search records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return deleted, nil
}

// RunRetention prunes expired rows on a ticker until ctx is canceled.
// A non-positive interval defaults to 24 hours.
func (db *DB) RunRetention(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := db.Prune(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("Analytics retention prune failed")
			} else if deleted > 0 {
				logging.Info().Int64("deleted", deleted).Msg("Pruned expired search records")
			}
		}
	}
}
