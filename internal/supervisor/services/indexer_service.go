// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package services

import (
	"context"
	"errors"

	"github.com/recipefinder/recipefinder/internal/indexer"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/models"
)

// IndexRunner matches *indexer.Indexer.
type IndexRunner interface {
	Run(ctx context.Context, opts indexer.Options) (*models.IndexStats, error)
	IsRunning() bool
}

// ErrRebuildInProgress is returned by TriggerRebuild while a run is
// active or queued.
var ErrRebuildInProgress = errors.New("index rebuild already in progress")

// IndexerService owns the indexing pipeline under supervision.
//
// Two modes combine:
//   - runOnStart: one indexing pass as soon as the service starts,
//     used when the vector index is empty at boot
//   - on-demand: admin rebuild requests arrive through TriggerRebuild
//     and run serially on the service goroutine
//
// A failed run is logged and the service keeps waiting for the next
// trigger; returning the error would make suture restart the service
// and re-run a pass that just failed.
type IndexerService struct {
	runner     IndexRunner
	trigger    chan indexer.Options
	runOnStart bool
	name       string
}

// NewIndexerService creates the service. The trigger buffer is one:
// at most one rebuild can queue behind a running pass.
func NewIndexerService(runner IndexRunner, runOnStart bool) *IndexerService {
	return &IndexerService{
		runner:     runner,
		trigger:    make(chan indexer.Options, 1),
		runOnStart: runOnStart,
		name:       "indexer",
	}
}

// TriggerRebuild queues an indexing pass. Called from the admin API
// handler; never blocks.
func (s *IndexerService) TriggerRebuild(opts indexer.Options) error {
	if s.runner.IsRunning() {
		return ErrRebuildInProgress
	}
	select {
	case s.trigger <- opts:
		return nil
	default:
		return ErrRebuildInProgress
	}
}

// Serve implements suture.Service.
func (s *IndexerService) Serve(ctx context.Context) error {
	if s.runOnStart {
		s.runOnStart = false // not repeated on supervisor restart
		logging.Info().Msg("Vector index empty, starting initial index build")
		s.run(ctx, indexer.Options{})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case opts := <-s.trigger:
			s.run(ctx, opts)
		}
	}
}

func (s *IndexerService) run(ctx context.Context, opts indexer.Options) {
	stats, err := s.runner.Run(ctx, opts)
	switch {
	case errors.Is(err, indexer.ErrRunInProgress):
		logging.Warn().Msg("Index run skipped, another run is active")
	case err != nil && ctx.Err() != nil:
		logging.Info().Msg("Index run canceled during shutdown")
	case err != nil:
		logging.Error().Err(err).Msg("Index run failed")
	default:
		logging.Info().
			Int("indexed", stats.Indexed).
			Int("skipped", stats.Skipped).
			Int("failed", stats.Failed).
			Msg("Index run finished")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *IndexerService) String() string {
	return s.name
}
