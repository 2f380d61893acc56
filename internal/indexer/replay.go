// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/store"
	"github.com/recipefinder/recipefinder/internal/vector"
	"github.com/recipefinder/recipefinder/internal/wal"
)

// ReplayJournal reapplies journal entries that were written but never
// confirmed, closing the crash window between an embedding batch and
// its index write. Adds are upserts, so replaying an entry whose write
// actually landed is harmless.
//
// Entries whose recipe no longer exists or no longer qualifies for
// indexing are confirmed without replaying. Hard embedding or index
// errors leave the remaining entries pending for the next start.
func (ix *Indexer) ReplayJournal(ctx context.Context) (int, error) {
	if ix.journal == nil {
		return 0, nil
	}

	pending, err := ix.journal.GetPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("read pending journal entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	logging.Info().Int("pending", len(pending)).Msg("Replaying index journal")

	var (
		deleteIDs     []string
		deleteEntries []string
		addEntries    []*wal.Entry
		drop          []string
		docs          []vector.Document
		texts         []string
		docEntries    []string
	)

	for _, entry := range pending {
		switch entry.Op.Type {
		case wal.OpDelete:
			deleteIDs = append(deleteIDs, entry.Op.DocID)
			deleteEntries = append(deleteEntries, entry.ID)
		case wal.OpAdd:
			addEntries = append(addEntries, entry)
		default:
			logging.Warn().Str("type", string(entry.Op.Type)).Str("entry", entry.ID).
				Msg("Unknown journal op, dropping")
			drop = append(drop, entry.ID)
		}
	}

	replayed := 0

	if len(deleteIDs) > 0 {
		if err := ix.index.Delete(ctx, deleteIDs); err != nil {
			return replayed, fmt.Errorf("replay deletes: %w", err)
		}
		if err := ix.journal.Confirm(ctx, deleteEntries); err != nil {
			logging.Warn().Err(err).Msg("Journal confirm failed after delete replay")
		}
		replayed += len(deleteIDs)
	}

	for _, entry := range addEntries {
		rec, err := ix.store.GetByID(ctx, entry.Op.DocID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
				drop = append(drop, entry.ID)
				continue
			}
			return replayed, fmt.Errorf("load recipe %s: %w", entry.Op.DocID, err)
		}
		doc, text, ok := buildDocument(rec)
		if !ok {
			drop = append(drop, entry.ID)
			continue
		}
		docs = append(docs, doc)
		texts = append(texts, text)
		docEntries = append(docEntries, entry.ID)
	}

	chunk := ix.cfg.BatchSize
	if chunk <= 0 {
		chunk = defaultBatchSize
	}
	for start := 0; start < len(docs); start += chunk {
		end := start + chunk
		if end > len(docs) {
			end = len(docs)
		}

		vecs, err := ix.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return replayed, fmt.Errorf("replay embed: %w", err)
		}
		if len(vecs) != end-start {
			return replayed, fmt.Errorf("replay embed: want %d vectors, got %d", end-start, len(vecs))
		}
		for i := start; i < end; i++ {
			docs[i].Vector = vecs[i-start]
		}
		if err := ix.index.Add(ctx, docs[start:end]); err != nil {
			return replayed, fmt.Errorf("replay index add: %w", err)
		}
		if err := ix.journal.Confirm(ctx, docEntries[start:end]); err != nil {
			logging.Warn().Err(err).Msg("Journal confirm failed after add replay")
		}
		replayed += end - start
	}

	if len(drop) > 0 {
		if err := ix.journal.Confirm(ctx, drop); err != nil {
			logging.Warn().Err(err).Msg("Journal confirm failed for dropped entries")
		}
	}

	metrics.RecordWALReplay(replayed)
	logging.Info().Int("replayed", replayed).Int("dropped", len(drop)).Msg("Index journal replay completed")
	return replayed, nil
}
