// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

// defaultBufferSize is the async write buffer capacity in rows.
const defaultBufferSize = 1000

// Writer is the asynchronous sink for search telemetry. Rows are buffered
// on a channel and a single goroutine drains them into DuckDB, so
// RecordSearch never blocks the search pipeline. When the buffer is full
// the row is dropped and a warning is logged.
type Writer struct {
	db       *DB
	recordCh chan models.SearchRecord
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWriter creates a writer and starts its drain goroutine.
func NewWriter(db *DB, bufferSize int) *Writer {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	w := &Writer{
		db:       db,
		recordCh: make(chan models.SearchRecord, bufferSize),
		stopChan: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w
}

// RecordSearch queues one telemetry row. Implements search.Recorder.
func (w *Writer) RecordSearch(rec models.SearchRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	select {
	case w.recordCh <- rec:
	default:
		logging.Warn().Str("query", rec.Query).Msg("Analytics buffer full, dropping search record")
	}
}

// run drains queued rows until Close.
func (w *Writer) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			// Drain remaining rows
			for {
				select {
				case rec := <-w.recordCh:
					w.write(rec)
				default:
					return
				}
			}
		case rec := <-w.recordCh:
			w.write(rec)
		}
	}
}

// write persists one row.
func (w *Writer) write(rec models.SearchRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.db.insertSearch(ctx, rec); err != nil {
		logging.Error().Err(err).Str("query", rec.Query).Msg("Failed to save search record")
	}
}

// Close shuts down the writer after draining buffered rows.
func (w *Writer) Close() error {
	close(w.stopChan)
	w.wg.Wait()
	return nil
}

const insertSearchSQL = `INSERT INTO searches
	(id, ts, query, top_k, results, top_score, cached, answered, provider, latency_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// insertSearch writes one telemetry row. top_score is stored as NULL for
// zero-result searches so score aggregates only cover real hits.
func (db *DB) insertSearch(ctx context.Context, rec models.SearchRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stmt, err := db.getPreparedStmt(ctx, insertSearchSQL)
	if err != nil {
		return err
	}

	topScore := sql.NullFloat64{Float64: rec.TopScore, Valid: rec.Results > 0}

	start := time.Now()
	_, err = stmt.ExecContext(ctx, rec.ID, rec.Timestamp, rec.Query, rec.TopK, rec.Results,
		topScore, rec.Cached, rec.Answered, rec.Provider, rec.LatencyMS)
	metrics.RecordDBQuery("insert", "searches", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}
	return nil
}
