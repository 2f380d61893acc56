// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package models

import "time"

// IndexStats reports the progress of one indexing run.
//
// Total counts recipes read from storage; Indexed, Skipped and Failed
// partition them. Skipped covers recipes whose ingredients or directions
// normalize to empty, matching the original preprocessing rules.
type IndexStats struct {
	Total     int       `json:"total"`
	Indexed   int       `json:"indexed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Batches   int       `json:"batches"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// Duration returns the elapsed run time, using now when the run is still
// in progress.
func (s *IndexStats) Duration() time.Duration {
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartTime)
}

// IndexStatus reports the live state of the vector index.
type IndexStatus struct {
	Backend    string      `json:"backend"`
	Collection string      `json:"collection"`
	Documents  int         `json:"documents"`
	Dimensions int         `json:"dimensions"`
	Indexing   bool        `json:"indexing"`
	LastRun    *IndexStats `json:"last_run,omitempty"`
}

// ImportStats reports the outcome of one CSV import run.
// Skipped counts rows whose list columns failed to parse or were empty,
// matching the original import script.
type ImportStats struct {
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// Duration returns the elapsed run time, using now when the run is still
// in progress.
func (s *ImportStats) Duration() time.Duration {
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartTime)
}

// SearchRecord is one analytics row for a completed search.
type SearchRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	TopK      int       `json:"top_k"`
	Results   int       `json:"results"`
	TopScore  float64   `json:"top_score"`
	Cached    bool      `json:"cached"`
	Answered  bool      `json:"answered"`
	Provider  string    `json:"provider"`
	LatencyMS int64     `json:"latency_ms"`
}

// QueryCount is one row of the top-queries / zero-result-queries reports.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// DayVolume is one row of the daily search volume report.
type DayVolume struct {
	Day      string  `json:"day"`
	Searches int64   `json:"searches"`
	AvgMS    float64 `json:"avg_latency_ms"`
}

// CacheStats reports response cache effectiveness. HitRate is a
// percentage in [0, 100].
type CacheStats struct {
	Entries   int64   `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// SnapshotInfo describes a completed vector index snapshot.
type SnapshotInfo struct {
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Documents int       `json:"documents"`
	CreatedAt time.Time `json:"created_at"`
}
