// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package ingest loads RecipeNLG-format CSV exports into the recipe
// store. Row columns are id, title, ingredients, directions, link,
// source, NER; the list columns hold JSON arrays or Python list
// literals, depending on which tool produced the export.
//
// Row rules match the original import script: a blank title becomes the
// placeholder, and rows whose ingredients or directions fail to parse
// or trim to nothing are counted as skipped. NER terms are kept when
// they parse; a bad NER literal does not disqualify the row.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

// ErrRunInProgress is returned by Run while another import is active.
var ErrRunInProgress = errors.New("import already in progress")

const defaultBatchSize = 500

// columns of a RecipeNLG export, in file order.
const (
	colID = iota
	colTitle
	colIngredients
	colDirections
	colLink
	colSource
	colNER
	columnCount
)

// RecipeSink is the storage surface the importer writes to.
// store.RecipeStore satisfies it.
type RecipeSink interface {
	InsertBatch(ctx context.Context, recipes []models.Recipe) (int, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ProgressSink receives a stats snapshot after every inserted batch and
// once more when the run finishes.
type ProgressSink interface {
	NotifyImportProgress(stats models.ImportStats, completed bool)
}

// ProgressSinkFunc adapts a function to ProgressSink.
type ProgressSinkFunc func(stats models.ImportStats, completed bool)

// NotifyImportProgress implements ProgressSink.
func (f ProgressSinkFunc) NotifyImportProgress(stats models.ImportStats, completed bool) {
	f(stats, completed)
}

// Options control one import run.
type Options struct {
	// Path is the CSV file to import.
	Path string

	// Wipe deletes every stored recipe before importing, the way the
	// original script always did. Off by default here so an import can
	// top up an existing database.
	Wipe bool

	// BatchSize caps documents per InsertBatch round trip.
	BatchSize int
}

// CSVImporter streams a CSV export into the store. One run at a time.
type CSVImporter struct {
	store RecipeSink
	sink  ProgressSink

	mu      sync.RWMutex
	running bool
	stats   *models.ImportStats
}

// NewCSVImporter creates an importer writing to store.
func NewCSVImporter(store RecipeSink) *CSVImporter {
	return &CSVImporter{store: store}
}

// SetProgressSink attaches the progress listener. Call before Run.
func (im *CSVImporter) SetProgressSink(sink ProgressSink) {
	im.sink = sink
}

// Run imports one CSV file. The returned stats describe the whole run
// even when err is non-nil.
func (im *CSVImporter) Run(ctx context.Context, opts Options) (*models.ImportStats, error) {
	im.mu.Lock()
	if im.running {
		im.mu.Unlock()
		return nil, ErrRunInProgress
	}
	im.running = true
	im.stats = &models.ImportStats{StartTime: time.Now().UTC()}
	im.mu.Unlock()

	defer func() {
		im.mu.Lock()
		im.running = false
		im.mu.Unlock()
	}()

	if opts.Path == "" {
		return im.finish(fmt.Errorf("csv path is required"))
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	f, err := os.Open(opts.Path)
	if err != nil {
		return im.finish(fmt.Errorf("open csv: %w", err))
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Error closing import file")
		}
	}()

	logging.Info().Str("path", opts.Path).Bool("wipe", opts.Wipe).Msg("Import started")

	if opts.Wipe {
		deleted, err := im.store.DeleteAll(ctx)
		if err != nil {
			return im.finish(fmt.Errorf("wipe recipes: %w", err))
		}
		logging.Info().Int64("deleted", deleted).Msg("Recipe collection wiped for import")
	}

	if err := im.consume(ctx, f, batchSize); err != nil {
		return im.finish(err)
	}
	return im.finish(nil)
}

// consume reads rows and flushes full batches to the store.
func (im *CSVImporter) consume(ctx context.Context, f io.Reader, batchSize int) error {
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	// Header row.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read csv header: %w", err)
	}

	batch := make([]models.Recipe, 0, batchSize)
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				continue
			}
			return fmt.Errorf("read csv row: %w", err)
		}

		rec, ok := parseRow(record)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, rec)

		if len(batch) >= batchSize {
			if err := im.flushBatch(ctx, batch, skipped); err != nil {
				return err
			}
			batch = batch[:0]
			skipped = 0
		}
	}

	if len(batch) > 0 || skipped > 0 {
		return im.flushBatch(ctx, batch, skipped)
	}
	return nil
}

// parseRow converts one CSV record to a recipe, applying the original
// import rules.
func parseRow(record []string) (models.Recipe, bool) {
	if len(record) < columnCount {
		return models.Recipe{}, false
	}

	ingredients, ok := parseList(record[colIngredients])
	if !ok {
		return models.Recipe{}, false
	}
	directions, ok := parseList(record[colDirections])
	if !ok {
		return models.Recipe{}, false
	}
	ingredients = cleanList(ingredients)
	directions = cleanList(directions)
	if len(ingredients) == 0 || len(directions) == 0 {
		return models.Recipe{}, false
	}

	title := strings.TrimSpace(record[colTitle])
	if title == "" {
		title = models.UnnamedRecipeTitle
	}

	var ner []string
	if terms, ok := parseList(record[colNER]); ok {
		ner = cleanList(terms)
	}

	return models.Recipe{
		SourceID:    strings.TrimSpace(record[colID]),
		Title:       title,
		Ingredients: ingredients,
		Directions:  directions,
		Link:        strings.TrimSpace(record[colLink]),
		Source:      strings.TrimSpace(record[colSource]),
		NER:         ner,
	}, true
}

// flushBatch inserts the batch and folds its counts into the run stats.
func (im *CSVImporter) flushBatch(ctx context.Context, batch []models.Recipe, skipped int) error {
	inserted := 0
	if len(batch) > 0 {
		n, err := im.store.InsertBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		inserted = n
	}

	im.mu.Lock()
	im.stats.Inserted += inserted
	im.stats.Skipped += skipped
	stats := *im.stats
	im.mu.Unlock()

	logging.Info().
		Int("inserted", stats.Inserted).
		Int("skipped", stats.Skipped).
		Msg("Import progress")
	im.notify(stats, false)
	return nil
}

// finish stamps the end time, emits metrics and the completion
// notification, and logs the outcome.
func (im *CSVImporter) finish(err error) (*models.ImportStats, error) {
	im.mu.Lock()
	im.stats.EndTime = time.Now().UTC()
	stats := *im.stats
	im.mu.Unlock()

	metrics.RecordImport(stats.Duration(), int64(stats.Inserted), err)
	im.notify(stats, true)

	if err != nil {
		logging.Error().Err(err).
			Int("inserted", stats.Inserted).
			Int("skipped", stats.Skipped).
			Msg("Import failed")
		return &stats, err
	}

	logging.Info().
		Int("inserted", stats.Inserted).
		Int("skipped", stats.Skipped).
		Dur("duration", stats.Duration()).
		Msg("Import completed")
	return &stats, nil
}

func (im *CSVImporter) notify(stats models.ImportStats, completed bool) {
	if im.sink == nil {
		return
	}
	im.sink.NotifyImportProgress(stats, completed)
}

// IsRunning reports whether an import is active.
func (im *CSVImporter) IsRunning() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.running
}

// GetStats returns a copy of the most recent run's statistics, or nil
// when no import has run.
func (im *CSVImporter) GetStats() *models.ImportStats {
	im.mu.RLock()
	defer im.mu.RUnlock()
	if im.stats == nil {
		return nil
	}
	stats := *im.stats
	return &stats
}
