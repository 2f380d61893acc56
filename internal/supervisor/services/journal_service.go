// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package services

import (
	"context"
)

// CompactionRunner matches wal.Journal's compaction loop.
type CompactionRunner interface {
	RunCompaction(ctx context.Context) error
}

// JournalCompactionService runs the index journal's compaction loop
// under supervision, so confirmed entries keep getting dropped even if
// a compaction pass panics.
type JournalCompactionService struct {
	journal CompactionRunner
	name    string
}

// NewJournalCompactionService wraps the journal's compaction loop.
func NewJournalCompactionService(journal CompactionRunner) *JournalCompactionService {
	return &JournalCompactionService{
		journal: journal,
		name:    "journal-compaction",
	}
}

// Serve implements suture.Service.
func (s *JournalCompactionService) Serve(ctx context.Context) error {
	return s.journal.RunCompaction(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (s *JournalCompactionService) String() string {
	return s.name
}
