// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package wal

import (
	"context"
	"errors"
	"time"
)

// OpType identifies an index mutation recorded in the journal.
type OpType string

const (
	// OpAdd records a document scheduled for insertion into the vector
	// index.
	OpAdd OpType = "add"

	// OpDelete records a document scheduled for removal.
	OpDelete OpType = "delete"
)

// IndexOp is one journaled index mutation. DocID is the recipe's storage
// ID; Batch groups the ops of a single pipeline batch for log correlation.
type IndexOp struct {
	Type  OpType `json:"type"`
	DocID string `json:"doc_id"`
	Batch int    `json:"batch,omitempty"`
}

// Entry is a journaled operation with its confirmation state. Entries
// start pending and move to confirmed once the index mutation succeeded;
// unconfirmed entries are replayed at startup.
type Entry struct {
	ID          string     `json:"id"`
	Op          IndexOp    `json:"op"`
	CreatedAt   time.Time  `json:"created_at"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// Stats contains journal counters for monitoring.
type Stats struct {
	PendingCount   int64 `json:"pending_count"`
	ConfirmedCount int64 `json:"confirmed_count"`
	TotalWrites    int64 `json:"total_writes"`
	TotalConfirms  int64 `json:"total_confirms"`
	DBSizeBytes    int64 `json:"db_size_bytes"`
}

// Config holds journal settings. Only Dir is required; the other fields
// default in Open.
type Config struct {
	// Dir is the badger database directory.
	Dir string

	// SyncWrites fsyncs every write. Durable but slower; defaults on
	// because a journal that loses entries on crash protects nothing.
	SyncWrites bool

	// EntryTTL expires entries that were never cleaned up. Zero disables.
	EntryTTL time.Duration

	// CompactionInterval is the delay between compaction passes.
	CompactionInterval time.Duration

	// Retention is how long confirmed entries are kept before compaction
	// drops them.
	Retention time.Duration

	// CloseTimeout bounds how long Close waits for badger to shut down.
	CloseTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.EntryTTL == 0 {
		c.EntryTTL = 24 * time.Hour
	}
	if c.CompactionInterval <= 0 {
		c.CompactionInterval = 5 * time.Minute
	}
	if c.Retention <= 0 {
		c.Retention = time.Hour
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = 30 * time.Second
	}
}

// Journal persists index operations before they are applied, so a crash
// between embed and index add cannot silently lose documents. The badger
// implementation is compiled in with the wal build tag; without it Open
// returns a no-op journal.
type Journal interface {
	// Write appends ops as pending entries and returns their entry IDs
	// in op order.
	Write(ctx context.Context, ops []IndexOp) ([]string, error)

	// Confirm marks entries as applied. IDs that are no longer pending
	// are ignored.
	Confirm(ctx context.Context, ids []string) error

	// GetPending returns all unconfirmed entries. Ordering is not
	// guaranteed; replay must be idempotent.
	GetPending(ctx context.Context) ([]*Entry, error)

	// Stats returns journal counters.
	Stats() Stats

	// RunCompaction drops aged confirmed entries and reclaims space
	// until ctx is cancelled. Blocking; run under the supervisor.
	RunCompaction(ctx context.Context) error

	// Close shuts the journal down.
	Close() error
}

// Errors shared by both journal implementations.
var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("journal is closed")

	// ErrNoDir is returned by Open when no directory is configured.
	ErrNoDir = errors.New("journal directory not configured")
)
