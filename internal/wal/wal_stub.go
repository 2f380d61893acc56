// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build !wal

package wal

import (
	"context"

	"github.com/recipefinder/recipefinder/internal/logging"
)

// Enabled reports whether the durable journal is compiled in.
const Enabled = false

// NoopJournal satisfies Journal without persisting anything. Used when
// the binary is built without the wal tag; index runs still work, they
// just cannot replay after a crash.
type NoopJournal struct{}

// Open returns the no-op journal.
func Open(cfg Config) (*NoopJournal, error) {
	logging.Info().Msg("Index journal disabled (build without -tags wal)")
	return &NoopJournal{}, nil
}

// Write discards the ops and returns no entry IDs.
func (*NoopJournal) Write(ctx context.Context, ops []IndexOp) ([]string, error) {
	return nil, nil
}

// Confirm does nothing.
func (*NoopJournal) Confirm(ctx context.Context, ids []string) error { return nil }

// GetPending reports no pending entries.
func (*NoopJournal) GetPending(ctx context.Context) ([]*Entry, error) { return nil, nil }

// Stats returns zero counters.
func (*NoopJournal) Stats() Stats { return Stats{} }

// RunCompaction parks until ctx is cancelled so the supervisor treats it
// like any other service.
func (*NoopJournal) RunCompaction(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// Close does nothing.
func (*NoopJournal) Close() error { return nil }
