// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package search

import (
	"time"

	"github.com/recipefinder/recipefinder/internal/cache"
	"github.com/recipefinder/recipefinder/internal/models"
)

// Activity window parameters: one hour of traffic in one-minute buckets.
const (
	activityWindow  = time.Hour
	activityBuckets = 60
)

// activityTracker keeps sliding-window search counts for the live
// activity feed. Queries are canonicalized before uniqueness counting
// so case and spacing variants of the same query count once.
type activityTracker struct {
	searches *cache.SlidingWindowCounter
	uniques  *cache.UniqueValueCounter
}

func newActivityTracker() *activityTracker {
	return &activityTracker{
		searches: cache.NewSlidingWindowCounter(activityWindow, activityBuckets),
		uniques:  cache.NewUniqueValueCounter(activityWindow, activityBuckets),
	}
}

// observe counts one search and returns the window's current stats.
func (a *activityTracker) observe(query string) ActivityStats {
	a.searches.IncrementOne()
	a.uniques.Add(models.TitleKey(query))
	return ActivityStats{
		Searches:      a.searches.Count(),
		UniqueQueries: a.uniques.CountUnique(),
		WindowSeconds: int64(activityWindow / time.Second),
	}
}
