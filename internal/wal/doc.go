// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package wal journals vector index mutations in a badger database.
//
// The indexing pipeline embeds recipes remotely and then writes them to
// the vector index; a crash between those steps would otherwise lose
// documents silently. The journal closes that window:
//
//	embed batch → Write (pending) → index.Add → Confirm (confirmed)
//
// Unconfirmed entries are replayed by the indexer at startup. Replay is
// idempotent because index adds are upserts keyed by recipe ID.
//
// # Build Tags
//
// The journal is optional:
//
//	# Durable journal
//	go build -tags wal ./cmd/server
//
//	# No-op journal (indexing works, no crash replay)
//	go build ./cmd/server
//
// The Enabled constant reports which implementation is compiled in.
//
// # Compaction
//
// Confirmed entries are kept for a retention window so operators can
// inspect recent runs, then dropped by RunCompaction, which also
// reclaims badger value-log space. Entries additionally carry a badger
// TTL as a backstop when compaction is not scheduled.
//
// # Why badger
//
// Pure Go, ACID with fsync, built-in TTL, and already the backing store
// of the default vector index, so the dependency is free.
package wal
