// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package services

import (
	"context"
	"time"
)

// RetentionRunner matches *analytics.DB's retention loop.
type RetentionRunner interface {
	RunRetention(ctx context.Context, interval time.Duration)
}

// RetentionService prunes expired analytics rows on a schedule. The
// underlying loop blocks until the context is canceled.
type RetentionService struct {
	db       RetentionRunner
	interval time.Duration
	name     string
}

// NewRetentionService wraps the analytics database's retention loop.
// An interval <= 0 falls back to the loop's daily default.
func NewRetentionService(db RetentionRunner, interval time.Duration) *RetentionService {
	return &RetentionService{
		db:       db,
		interval: interval,
		name:     "analytics-retention",
	}
}

// Serve implements suture.Service.
func (s *RetentionService) Serve(ctx context.Context) error {
	s.db.RunRetention(ctx, s.interval)
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *RetentionService) String() string {
	return s.name
}
