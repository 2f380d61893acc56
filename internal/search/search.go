// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/recipefinder/recipefinder/internal/answer"
	"github.com/recipefinder/recipefinder/internal/cache"
	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/embed"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/vector"
)

// RecipeSource is the slice of the recipe store the search service
// reads: single lookups for Similar and title pages for the suggestion
// snapshot. store.RecipeStore satisfies it.
type RecipeSource interface {
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	List(ctx context.Context, limit, offset int) ([]models.Recipe, int64, error)
}

// ErrNotIndexed is returned by Similar when the recipe exists in storage
// but has no vector in the index yet (not indexed, or skipped because
// its text normalized to empty).
var ErrNotIndexed = errors.New("recipe not indexed")

// Recorder receives one telemetry row per completed search. Implementations
// must not block; the analytics writer buffers internally and drops rows
// under backpressure rather than stalling the pipeline.
type Recorder interface {
	RecordSearch(rec models.SearchRecord)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(models.SearchRecord)

// RecordSearch calls f(rec).
func (f RecorderFunc) RecordSearch(rec models.SearchRecord) { f(rec) }

// Notifier pushes live search activity to connected clients.
type Notifier interface {
	NotifySearchActivity(stats ActivityStats)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ActivityStats)

// NotifySearchActivity calls f(stats).
func (f NotifierFunc) NotifySearchActivity(stats ActivityStats) { f(stats) }

// ActivityStats summarizes search traffic over the sliding activity
// window. Broadcast to WebSocket clients as the search_activity message
// payload.
type ActivityStats struct {
	Searches      int64 `json:"searches"`
	UniqueQueries int   `json:"unique_queries"`
	WindowSeconds int64 `json:"window_seconds"`
}

// Service runs the search, similar-recipes, and suggestion pipelines.
//
// Construction wires the required collaborators; the telemetry outputs
// (Recorder, Notifier) are attached afterwards via SetRecorder and
// SetNotifier because they come up later in the boot sequence.
type Service struct {
	cfg      *config.SearchConfig
	store    RecipeSource
	index    vector.Index
	embedder embed.Embedder
	answerer *answer.Generator
	cache    cache.Cacher

	recorder Recorder
	notifier Notifier

	activity *activityTracker
	suggest  suggestIndex
}

// New creates the search service. All five collaborators are required;
// a nil answerer is replaced with a generator that always serves the
// fallback text so searches keep working without an LLM provider.
func New(cfg *config.SearchConfig, recipeStore RecipeSource, index vector.Index, embedder embed.Embedder, answerer *answer.Generator, cacher cache.Cacher) *Service {
	if answerer == nil {
		answerer = answer.NewGenerator(nil, cfg)
	}
	return &Service{
		cfg:      cfg,
		store:    recipeStore,
		index:    index,
		embedder: embedder,
		answerer: answerer,
		cache:    cacher,
		activity: newActivityTracker(),
	}
}

// SetRecorder attaches the analytics recorder. Call once during startup.
func (s *Service) SetRecorder(r Recorder) { s.recorder = r }

// SetNotifier attaches the live activity notifier. Call once during startup.
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// searchKey is the cache key payload: the fields that change the result.
type searchKey struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Search runs the semantic search pipeline for req and reports whether
// the result came from the response cache.
//
// The pipeline embeds the raw query text (the index stores normalized
// recipe text, but queries are encoded as typed), retrieves the top-k
// nearest recipes, and asks the answer generator for a natural-language
// response. Generation failures degrade to a fallback message; only
// embedding and retrieval errors fail the search.
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, bool, error) {
	start := time.Now()
	topK := req.EffectiveTopK(s.cfg.DefaultTopK, s.cfg.MaxTopK)

	key := cache.GenerateKey("Search", searchKey{Query: req.Query, TopK: topK})
	if val, found := s.cache.Get(key); found {
		if result, ok := val.(*models.SearchResult); ok {
			metrics.CacheHits.WithLabelValues("search").Inc()
			metrics.RecordSearch(time.Since(start), len(result.Recipes), nil)
			s.record(req.Query, topK, result, true, false, time.Since(start))
			s.notifyActivity(req.Query)
			return result, true, nil
		}
	}
	metrics.CacheMisses.WithLabelValues("search").Inc()

	queryVec, err := s.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		metrics.RecordSearch(time.Since(start), 0, err)
		return nil, false, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Search(ctx, queryVec, topK)
	if err != nil {
		metrics.RecordSearch(time.Since(start), 0, err)
		return nil, false, fmt.Errorf("vector search: %w", err)
	}

	result := &models.SearchResult{
		Query:   req.Query,
		Recipes: make([]models.RecipeHit, 0, len(matches)),
		Videos:  make(map[string]string, len(matches)),
	}

	if len(matches) == 0 {
		// Not cached: an empty index answers everything with zero hits,
		// and those entries would outlive the first index build.
		result.Response = models.NoResultsMessage
		metrics.RecordSearch(time.Since(start), 0, nil)
		s.record(req.Query, topK, result, false, false, time.Since(start))
		s.notifyActivity(req.Query)
		return result, false, nil
	}

	recipes := make([]answer.Recipe, 0, len(matches))
	for _, m := range matches {
		hit := models.RecipeHit{
			ID:          m.ID,
			Title:       m.Meta.Title,
			Ingredients: strings.Join(m.Meta.Ingredients, ", "),
			Directions:  strings.Join(m.Meta.Directions, ". "),
			Score:       float64(m.Score),
		}
		result.Recipes = append(result.Recipes, hit)
		result.Videos[m.ID] = answer.VideoURL(m.ID)

		recipes = append(recipes, answer.Recipe{
			ID:          hit.ID,
			Title:       hit.Title,
			Ingredients: hit.Ingredients,
			Directions:  hit.Directions,
			Score:       m.Score,
		})
	}

	response, generated := s.answerer.Generate(ctx, req.Query, recipes)
	result.Response = response

	// A provider outage would pin the fallback text into the cache for
	// its full TTL after the provider recovers. With generation disabled
	// the fallback is the permanent response, so caching it is fine.
	if generated || !s.answerer.Enabled() {
		s.cache.Set(key, result)
	}

	metrics.RecordSearch(time.Since(start), len(matches), nil)
	s.record(req.Query, topK, result, false, generated, time.Since(start))
	s.notifyActivity(req.Query)

	logging.Debug().
		Str("query", req.Query).
		Int("top_k", topK).
		Int("results", len(matches)).
		Bool("answered", generated).
		Dur("elapsed", time.Since(start)).
		Msg("Search completed")

	return result, false, nil
}

// record emits one analytics row. No-op without a recorder.
func (s *Service) record(query string, topK int, result *models.SearchResult, cached, answered bool, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}

	var topScore float64
	if len(result.Recipes) > 0 {
		topScore = result.Recipes[0].Score
	}

	s.recorder.RecordSearch(models.SearchRecord{
		Timestamp: time.Now().UTC(),
		Query:     query,
		TopK:      topK,
		Results:   len(result.Recipes),
		TopScore:  topScore,
		Cached:    cached,
		Answered:  answered,
		Provider:  s.answerer.ProviderName(),
		LatencyMS: elapsed.Milliseconds(),
	})
}

// notifyActivity counts the search in the activity window and pushes the
// updated stats. No-op without a notifier; the window still advances so
// stats are correct if one is attached later.
func (s *Service) notifyActivity(query string) {
	stats := s.activity.observe(query)
	if s.notifier == nil {
		return
	}
	s.notifier.NotifySearchActivity(stats)
}

// CacheStats reports the response cache's effectiveness.
func (s *Service) CacheStats() models.CacheStats {
	stats := s.cache.GetStats()
	return models.CacheStats{
		Entries:   stats.TotalKeys,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		HitRate:   s.cache.HitRate(),
	}
}

// InvalidateCache drops every cached search response. Called after
// mutations that change what a search would return (reindex, import,
// recipe edits).
func (s *Service) InvalidateCache() {
	s.cache.Clear()
	logging.Info().Msg("Search response cache cleared")
}
