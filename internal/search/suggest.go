// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/recipefinder/recipefinder/internal/cache"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/models"
)

const (
	suggestDefaultLimit = 10
	suggestMaxLimit     = 50

	// Patterns shorter than this answer from the prefix trie; fuzzy
	// subsequence matching over a few thousand titles is all noise at
	// one or two characters.
	suggestFuzzyMinLen = 3

	suggestPageSize       = 500
	defaultSuggestRefresh = 10 * time.Minute
)

// suggestEntry is one recipe title in the autocomplete snapshot.
type suggestEntry struct {
	id    string
	title string // display title
	key   string // models.TitleKey(title)
}

// suggestEntries implements fuzzy.Source over the normalized keys.
type suggestEntries []suggestEntry

func (e suggestEntries) Len() int            { return len(e) }
func (e suggestEntries) String(i int) string { return e[i].key }

// suggestSnapshot is an immutable autocomplete view. The trie maps each
// distinct title key to the indexes of the entries sharing it; inserting
// once per recipe makes the trie rank completions by title frequency.
type suggestSnapshot struct {
	entries suggestEntries
	trie    *cache.Trie
}

func buildSuggestSnapshot(entries []suggestEntry) *suggestSnapshot {
	groups := make(map[string][]int, len(entries))
	for i, e := range entries {
		groups[e.key] = append(groups[e.key], i)
	}

	trie := cache.NewTrie()
	for _, e := range entries {
		trie.InsertWithData(e.key, groups[e.key])
	}

	return &suggestSnapshot{entries: entries, trie: trie}
}

// suggestIndex holds the current snapshot behind a read lock; refresh
// builds a new snapshot off to the side and swaps it in.
type suggestIndex struct {
	mu   sync.RWMutex
	snap *suggestSnapshot
}

func (si *suggestIndex) load() *suggestSnapshot {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return si.snap
}

func (si *suggestIndex) swap(snap *suggestSnapshot) {
	si.mu.Lock()
	si.snap = snap
	si.mu.Unlock()
}

// Suggest returns up to limit title completions for prefix.
//
// Short patterns return exact-prefix completions from the trie with the
// title's recipe count as the score; longer patterns are ranked by
// fuzzy match score. An unrefreshed snapshot yields no suggestions.
func (s *Service) Suggest(ctx context.Context, prefix string, limit int) ([]models.Suggestion, error) {
	if limit < 1 {
		limit = suggestDefaultLimit
	}
	if limit > suggestMaxLimit {
		limit = suggestMaxLimit
	}

	key := models.TitleKey(prefix)
	if key == "" {
		return []models.Suggestion{}, nil
	}

	snap := s.suggest.load()
	if snap == nil {
		return []models.Suggestion{}, nil
	}

	if len(key) < suggestFuzzyMinLen {
		return snap.prefixSuggestions(key, limit), nil
	}
	return snap.fuzzySuggestions(key, limit), nil
}

func (snap *suggestSnapshot) prefixSuggestions(key string, limit int) []models.Suggestion {
	results := snap.trie.AutocompleteWithLimit(key, limit)

	out := make([]models.Suggestion, 0, limit)
	for _, res := range results {
		indexes, ok := res.Data.([]int)
		if !ok {
			continue
		}
		for _, i := range indexes {
			if len(out) == limit {
				return out
			}
			out = append(out, models.Suggestion{
				ID:    snap.entries[i].id,
				Title: snap.entries[i].title,
				Score: res.Count,
			})
		}
	}
	return out
}

func (snap *suggestSnapshot) fuzzySuggestions(key string, limit int) []models.Suggestion {
	matches := fuzzy.FindFrom(key, snap.entries)

	out := make([]models.Suggestion, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, models.Suggestion{
			ID:    snap.entries[m.Index].id,
			Title: snap.entries[m.Index].title,
			Score: m.Score,
		})
	}
	return out
}

// RefreshSuggestions rebuilds the autocomplete snapshot from storage.
func (s *Service) RefreshSuggestions(ctx context.Context) error {
	entries := make([]suggestEntry, 0, 1024)

	for offset := 0; ; offset += suggestPageSize {
		recipes, total, err := s.store.List(ctx, suggestPageSize, offset)
		if err != nil {
			return fmt.Errorf("load titles: %w", err)
		}

		for i := range recipes {
			key := models.TitleKey(recipes[i].Title)
			if key == "" {
				continue
			}
			entries = append(entries, suggestEntry{
				id:    recipes[i].HexID(),
				title: recipes[i].DisplayTitle(),
				key:   key,
			})
		}

		if len(recipes) < suggestPageSize || int64(offset+len(recipes)) >= total {
			break
		}
	}

	s.suggest.swap(buildSuggestSnapshot(entries))

	logging.Debug().Int("titles", len(entries)).Msg("Suggestion snapshot refreshed")
	return nil
}

// RunSuggestRefresh loads the snapshot and keeps it warm until ctx is
// cancelled. Runs as a supervised service; refresh failures are logged
// and retried on the next tick rather than crashing the service.
func (s *Service) RunSuggestRefresh(ctx context.Context) error {
	interval := s.cfg.SuggestRefresh
	if interval <= 0 {
		interval = defaultSuggestRefresh
	}

	if err := s.RefreshSuggestions(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial suggestion snapshot failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RefreshSuggestions(ctx); err != nil {
				logging.Warn().Err(err).Msg("Suggestion snapshot refresh failed")
			}
		}
	}
}
