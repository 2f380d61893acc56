// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/embed"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/vector"
	"github.com/recipefinder/recipefinder/internal/wal"
)

// ErrRunInProgress is returned by Run while another run is active.
var ErrRunInProgress = errors.New("indexing already in progress")

const (
	defaultBatchSize = 100
	defaultWorkers   = 4
)

// RecipeSource is the storage surface the pipeline reads from.
// store.RecipeStore satisfies it.
type RecipeSource interface {
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	IterateIndexable(ctx context.Context, limit int64, batchSize int, fn func([]models.Recipe) error) error
}

// ProgressSink receives a stats snapshot after every processed batch
// and once more when the run finishes. The events publisher and the
// WebSocket hub attach through adapters in the server wiring.
type ProgressSink interface {
	NotifyIndexProgress(stats models.IndexStats, completed bool)
}

// ProgressSinkFunc adapts a function to ProgressSink.
type ProgressSinkFunc func(stats models.IndexStats, completed bool)

// NotifyIndexProgress implements ProgressSink.
func (f ProgressSinkFunc) NotifyIndexProgress(stats models.IndexStats, completed bool) {
	f(stats, completed)
}

// Options control one Run. Zero values fall back to the configured
// recipe limit and batch size; a negative Limit removes the cap.
type Options struct {
	Limit     int64
	BatchSize int

	// Wipe resets the vector index before indexing.
	Wipe bool
}

// Indexer is the batch embedding pipeline. One run at a time; progress
// is observable through Status while a run is active.
type Indexer struct {
	cfg      *config.IndexerConfig
	store    RecipeSource
	index    vector.Index
	embedder embed.Embedder
	journal  wal.Journal
	sink     ProgressSink
	limiter  *rate.Limiter

	mu      sync.RWMutex
	running bool
	stats   *models.IndexStats
	lastRun *models.IndexStats
}

// New creates an indexer. journal may be nil to disable journaling.
func New(cfg *config.IndexerConfig, recipeStore RecipeSource, index vector.Index, embedder embed.Embedder, journal wal.Journal) *Indexer {
	return &Indexer{
		cfg:      cfg,
		store:    recipeStore,
		index:    index,
		embedder: embedder,
		journal:  journal,
	}
}

// SetProgressSink attaches the progress listener. Call before Run.
func (ix *Indexer) SetProgressSink(sink ProgressSink) {
	ix.sink = sink
}

// SetRateLimit caps embedding requests per second across all workers.
// Zero or negative removes the cap. Call before Run.
func (ix *Indexer) SetRateLimit(rps float64) {
	if rps <= 0 {
		ix.limiter = nil
		return
	}
	ix.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// Run executes one indexing pass over stored recipes.
//
// Batches are processed concurrently; per-batch embedding or index
// failures are counted in Stats.Failed and the run continues. The
// returned stats describe the whole run even when err is non-nil.
func (ix *Indexer) Run(ctx context.Context, opts Options) (*models.IndexStats, error) {
	ix.mu.Lock()
	if ix.running {
		ix.mu.Unlock()
		return nil, ErrRunInProgress
	}
	ix.running = true
	ix.stats = &models.IndexStats{StartTime: time.Now().UTC()}
	ix.mu.Unlock()

	defer func() {
		ix.mu.Lock()
		ix.running = false
		ix.lastRun = ix.stats
		ix.mu.Unlock()
	}()

	limit, batchSize, workers := ix.resolveOptions(opts)

	logging.Info().
		Int64("limit", limit).
		Int("batch_size", batchSize).
		Int("workers", workers).
		Bool("wipe", opts.Wipe).
		Msg("Index run started")

	if opts.Wipe {
		if err := ix.index.Reset(ctx); err != nil {
			return ix.finish(ctx, fmt.Errorf("reset index: %w", err))
		}
		logging.Info().Msg("Vector index wiped for rebuild")
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(workers))
	batchNo := 0

	iterErr := ix.store.IterateIndexable(gctx, limit, batchSize, func(recipes []models.Recipe) error {
		batchNo++
		no := batchNo

		// The store reuses its batch slice between callbacks.
		batch := make([]models.Recipe, len(recipes))
		copy(batch, recipes)

		if err := sem.Acquire(gctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			return ix.processBatch(gctx, no, batch)
		})
		return nil
	})

	err := g.Wait()
	if err == nil && iterErr != nil {
		err = fmt.Errorf("iterate recipes: %w", iterErr)
	}
	return ix.finish(ctx, err)
}

// finish stamps the end time, emits metrics and the final progress
// notification, and logs the outcome.
func (ix *Indexer) finish(ctx context.Context, err error) (*models.IndexStats, error) {
	ix.mu.Lock()
	ix.stats.EndTime = time.Now().UTC()
	stats := *ix.stats
	ix.mu.Unlock()

	metrics.RecordIndexRun(stats.Duration(), int64(stats.Indexed), int64(stats.Skipped), err)
	if count, cerr := ix.index.Count(ctx); cerr == nil {
		metrics.VectorDocuments.Set(float64(count))
	}
	ix.notify(stats, true)

	if err != nil {
		logging.Error().Err(err).
			Int("indexed", stats.Indexed).
			Int("skipped", stats.Skipped).
			Int("failed", stats.Failed).
			Msg("Index run failed")
		return &stats, err
	}

	logging.Info().
		Int("total", stats.Total).
		Int("indexed", stats.Indexed).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int("batches", stats.Batches).
		Dur("duration", stats.Duration()).
		Msg("Index run completed")
	return &stats, nil
}

// processBatch embeds and indexes one batch. Failures are recorded in
// the run stats; only cancellation propagates as an error.
func (ix *Indexer) processBatch(ctx context.Context, batchNo int, recipes []models.Recipe) error {
	if ix.limiter != nil {
		if err := ix.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	docs := make([]vector.Document, 0, len(recipes))
	texts := make([]string, 0, len(recipes))
	skipped := 0
	for i := range recipes {
		doc, text, ok := buildDocument(&recipes[i])
		if !ok {
			skipped++
			continue
		}
		docs = append(docs, doc)
		texts = append(texts, text)
	}

	if len(docs) == 0 {
		ix.recordBatch(len(recipes), 0, skipped, 0)
		return nil
	}

	vecs, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error().Err(err).Int("batch", batchNo).Int("size", len(texts)).Msg("Embedding batch failed")
		ix.recordBatch(len(recipes), 0, skipped, len(docs))
		return nil
	}
	if len(vecs) != len(docs) {
		logging.Error().Int("batch", batchNo).Int("want", len(docs)).Int("got", len(vecs)).
			Msg("Embedding count mismatch, dropping batch")
		ix.recordBatch(len(recipes), 0, skipped, len(docs))
		return nil
	}
	for i := range docs {
		docs[i].Vector = vecs[i]
	}

	// Journal before the index write so a crash in between is
	// recoverable; confirm after it succeeded.
	var entryIDs []string
	if ix.journal != nil {
		ops := make([]wal.IndexOp, 0, len(docs))
		for _, d := range docs {
			ops = append(ops, wal.IndexOp{Type: wal.OpAdd, DocID: d.ID, Batch: batchNo})
		}
		ids, jerr := ix.journal.Write(ctx, ops)
		if jerr != nil {
			logging.Warn().Err(jerr).Int("batch", batchNo).Msg("Journal write failed, batch will not be replayable")
		} else {
			entryIDs = ids
		}
	}

	if err := ix.index.Add(ctx, docs); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error().Err(err).Int("batch", batchNo).Msg("Index add failed")
		ix.recordBatch(len(recipes), 0, skipped, len(docs))
		return nil
	}

	if len(entryIDs) > 0 {
		if err := ix.journal.Confirm(ctx, entryIDs); err != nil {
			logging.Warn().Err(err).Int("batch", batchNo).Msg("Journal confirm failed")
		}
	}

	metrics.IndexBatchSize.Observe(float64(len(recipes)))
	ix.recordBatch(len(recipes), len(docs), skipped, 0)
	return nil
}

func (ix *Indexer) recordBatch(total, indexed, skipped, failed int) {
	ix.mu.Lock()
	ix.stats.Total += total
	ix.stats.Indexed += indexed
	ix.stats.Skipped += skipped
	ix.stats.Failed += failed
	ix.stats.Batches++
	stats := *ix.stats
	ix.mu.Unlock()

	logging.Info().
		Int("total", stats.Total).
		Int("indexed", stats.Indexed).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Int("batches", stats.Batches).
		Msg("Index progress")
	ix.notify(stats, false)
}

func (ix *Indexer) notify(stats models.IndexStats, completed bool) {
	if ix.sink == nil {
		return
	}
	ix.sink.NotifyIndexProgress(stats, completed)
}

func (ix *Indexer) resolveOptions(opts Options) (limit int64, batchSize, workers int) {
	limit = opts.Limit
	if limit == 0 {
		limit = int64(ix.cfg.RecipeLimit)
	}
	if limit < 0 {
		limit = 0
	}

	batchSize = opts.BatchSize
	if batchSize <= 0 {
		batchSize = ix.cfg.BatchSize
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	workers = ix.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return limit, batchSize, workers
}

// IsRunning reports whether a run is active.
func (ix *Indexer) IsRunning() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.running
}

// Status reports the live index state. While a run is active, LastRun
// carries its in-progress stats.
func (ix *Indexer) Status(ctx context.Context) (*models.IndexStatus, error) {
	vstats, err := ix.index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}

	ix.mu.RLock()
	running := ix.running
	var last *models.IndexStats
	switch {
	case running && ix.stats != nil:
		cp := *ix.stats
		last = &cp
	case ix.lastRun != nil:
		cp := *ix.lastRun
		last = &cp
	}
	ix.mu.RUnlock()

	return &models.IndexStatus{
		Backend:    vstats.Backend,
		Collection: vstats.Collection,
		Documents:  vstats.Documents,
		Dimensions: vstats.Dimensions,
		Indexing:   running,
		LastRun:    last,
	}, nil
}
