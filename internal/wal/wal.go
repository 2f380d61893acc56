// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build wal

package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
)

// Enabled reports whether the durable journal is compiled in.
const Enabled = true

// Key prefixes separating entry states.
const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

// BadgerJournal implements Journal on a badger database. Entries are
// JSON-encoded under pending: keys and moved to confirmed: keys once the
// index mutation they describe has been applied.
type BadgerJournal struct {
	db  *badger.DB
	cfg Config

	totalWrites   atomic.Int64
	totalConfirms atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Open creates or reopens the journal database at cfg.Dir.
func Open(cfg Config) (*BadgerJournal, error) {
	if cfg.Dir == "" {
		return nil, ErrNoDir
	}
	cfg.applyDefaults()

	opts := badger.DefaultOptions(cfg.Dir)
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Dir).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Index journal opened")

	return &BadgerJournal{db: db, cfg: cfg}, nil
}

// Write appends ops as pending entries in one transaction.
func (j *BadgerJournal) Write(ctx context.Context, ops []IndexOp) ([]string, error) {
	if err := j.checkOpen(); err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(ops))
	err := j.db.Update(func(txn *badger.Txn) error {
		now := time.Now().UTC()
		for i := range ops {
			id := uuid.New().String()
			data, err := json.Marshal(&Entry{ID: id, Op: ops[i], CreatedAt: now})
			if err != nil {
				return fmt.Errorf("marshal entry: %w", err)
			}

			e := badger.NewEntry([]byte(prefixPending+id), data)
			if j.cfg.EntryTTL > 0 {
				e = e.WithTTL(j.cfg.EntryTTL)
			}
			if err := txn.SetEntry(e); err != nil {
				return fmt.Errorf("write entry: %w", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	j.totalWrites.Add(int64(len(ids)))
	metrics.RecordWALWrite(len(ids))
	return ids, nil
}

// Confirm moves entries from pending to confirmed. IDs that are not
// pending anymore (already confirmed, or expired by TTL) are skipped.
func (j *BadgerJournal) Confirm(ctx context.Context, ids []string) error {
	if err := j.checkOpen(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	confirmed := 0
	err := j.db.Update(func(txn *badger.Txn) error {
		now := time.Now().UTC()
		for _, id := range ids {
			pendingKey := []byte(prefixPending + id)

			item, err := txn.Get(pendingKey)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get pending entry: %w", err)
			}

			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("unmarshal entry: %w", err)
			}

			entry.Confirmed = true
			entry.ConfirmedAt = &now

			data, err := json.Marshal(&entry)
			if err != nil {
				return fmt.Errorf("marshal confirmed entry: %w", err)
			}

			e := badger.NewEntry([]byte(prefixConfirmed+id), data)
			if j.cfg.EntryTTL > 0 {
				e = e.WithTTL(j.cfg.EntryTTL)
			}
			if err := txn.SetEntry(e); err != nil {
				return fmt.Errorf("set confirmed entry: %w", err)
			}
			if err := txn.Delete(pendingKey); err != nil {
				return fmt.Errorf("delete pending entry: %w", err)
			}
			confirmed++
		}
		return nil
	})
	if err != nil {
		return err
	}

	j.totalConfirms.Add(int64(confirmed))
	return nil
}

// GetPending returns every unconfirmed entry from a consistent snapshot.
func (j *BadgerJournal) GetPending(ctx context.Context) ([]*Entry, error) {
	if err := j.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Journal entry unreadable, skipping")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate pending entries: %w", err)
	}
	return entries, nil
}

// Stats counts entries by state and reports database size.
func (j *BadgerJournal) Stats() Stats {
	j.mu.RLock()
	closed := j.closed
	j.mu.RUnlock()
	if closed {
		return Stats{}
	}

	var pending, confirmed int64
	if err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		pendingPrefix := []byte(prefixPending)
		for it.Seek(pendingPrefix); it.ValidForPrefix(pendingPrefix); it.Next() {
			pending++
		}
		confirmedPrefix := []byte(prefixConfirmed)
		for it.Seek(confirmedPrefix); it.ValidForPrefix(confirmedPrefix); it.Next() {
			confirmed++
		}
		return nil
	}); err != nil {
		logging.Warn().Err(err).Msg("Journal stats count failed")
	}

	lsm, vlog := j.db.Size()
	metrics.WALPendingEntries.Set(float64(pending))

	return Stats{
		PendingCount:   pending,
		ConfirmedCount: confirmed,
		TotalWrites:    j.totalWrites.Load(),
		TotalConfirms:  j.totalConfirms.Load(),
		DBSizeBytes:    lsm + vlog,
	}
}

// RunCompaction drops confirmed entries older than the retention window
// and reclaims value-log space on a ticker until ctx is cancelled.
func (j *BadgerJournal) RunCompaction(ctx context.Context) error {
	ticker := time.NewTicker(j.cfg.CompactionInterval)
	defer ticker.Stop()

	logging.Info().
		Dur("interval", j.cfg.CompactionInterval).
		Dur("retention", j.cfg.Retention).
		Msg("Journal compaction started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := j.compact(); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				logging.Warn().Err(err).Msg("Journal compaction pass failed")
			}
		}
	}
}

func (j *BadgerJournal) compact() error {
	if err := j.checkOpen(); err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-j.cfg.Retention)

	// Collect expired keys in a read transaction first; deleting while
	// iterating invalidates the iterator.
	var expired [][]byte
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixConfirmed)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				expired = append(expired, item.KeyCopy(nil))
				continue
			}
			if entry.ConfirmedAt != nil && entry.ConfirmedAt.Before(cutoff) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan confirmed entries: %w", err)
	}

	if len(expired) > 0 {
		wb := j.db.NewWriteBatch()
		defer wb.Cancel()
		for _, key := range expired {
			if err := wb.Delete(key); err != nil {
				return fmt.Errorf("delete confirmed entry: %w", err)
			}
		}
		if err := wb.Flush(); err != nil {
			return fmt.Errorf("flush deletions: %w", err)
		}
		logging.Debug().Int("dropped", len(expired)).Msg("Journal compaction dropped confirmed entries")
	}

	// Reclaim value-log space until badger reports nothing to rewrite.
	for {
		err := j.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("value log GC: %w", err)
		}
	}
}

// Close shuts badger down, bounded by the configured close timeout.
func (j *BadgerJournal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	timeout := j.cfg.CloseTimeout
	j.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- j.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close journal database: %w", err)
		}
		logging.Info().Msg("Index journal closed")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("journal close timed out after %v", timeout)
	}
}

func (j *BadgerJournal) checkOpen() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}
	return nil
}
