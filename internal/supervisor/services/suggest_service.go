// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package services

import (
	"context"
)

// SuggestRefresher matches the search service's suggestion snapshot
// refresh loop.
type SuggestRefresher interface {
	RunSuggestRefresh(ctx context.Context) error
}

// SuggestService keeps the title suggestion snapshot warm. The refresh
// loop blocks until the context is canceled and handles its own
// per-tick failures.
type SuggestService struct {
	search SuggestRefresher
	name   string
}

// NewSuggestService wraps the search service's refresh loop.
func NewSuggestService(search SuggestRefresher) *SuggestService {
	return &SuggestService{
		search: search,
		name:   "suggest-refresh",
	}
}

// Serve implements suture.Service.
func (s *SuggestService) Serve(ctx context.Context) error {
	return s.search.RunSuggestRefresh(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (s *SuggestService) String() string {
	return s.name
}
