// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements comprehensive application instrumentation using the Prometheus
client library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - Semantic search latency and outcomes
  - Embedding service calls, batching, retries, and cache efficiency
  - LLM answer generation performance and fallbacks
  - Vector index size, search latency, and mutations
  - Recipe store (MongoDB) and analytics (DuckDB) query performance
  - Index and import pipeline throughput
  - HTTP request latency and throughput
  - Circuit breaker state transitions
  - WebSocket connection counts

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Search Metrics:
  - search_requests_total: Total search requests (counter)
    Labels: status (ok, empty, error)
  - search_duration_seconds: End-to-end pipeline latency (histogram)
    Buckets: .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
  - search_results_returned: Recipes returned per search (histogram)

Embedding Metrics:
  - embedding_requests_total: Embedding service calls (counter)
    Labels: operation (query, batch), status
  - embedding_request_duration_seconds: Call latency (histogram)
    Labels: operation
  - embedding_batch_size: Texts per batch request (histogram)
  - embedding_cache_hits_total / embedding_cache_misses_total: Query
    embedding cache efficiency (counters)
  - embedding_retries_total: Retried requests (counter)

LLM Metrics:
  - llm_requests_total: Answer generation calls (counter)
    Labels: provider (openai, gemini), status
  - llm_request_duration_seconds: Generation latency (histogram)
    Labels: provider
  - llm_fallbacks_total: Searches served with the static fallback answer (counter)

Vector Index Metrics:
  - vector_index_documents: Documents in the index (gauge)
  - vector_search_duration_seconds: Similarity search latency (histogram)
  - vector_index_operations_total: Index mutations (counter)
    Labels: operation (upsert, delete, clear, snapshot, restore)
  - vector_snapshot_duration_seconds: Snapshot/restore latency (histogram)

Store Metrics:
  - mongodb_query_duration_seconds: Recipe store query time (histogram)
    Labels: operation, collection
  - mongodb_query_errors_total: Failed queries (counter)
    Labels: operation, collection, error_type
  - duckdb_query_duration_seconds: Analytics query time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed analytics queries (counter)

Pipeline Metrics:
  - index_runs_total: Index runs by outcome (counter)
  - index_duration_seconds: Full run duration (histogram)
  - index_documents_processed_total / index_documents_skipped_total (counters)
  - index_last_success_timestamp: Unix time of last success (gauge)
  - import_duration_seconds, import_records_processed_total, import_errors_total

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests by result (counter)
    Labels: name, result
  - circuit_breaker_state_transitions_total: Transitions (counter)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/recipefinder/recipefinder/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    // Register metrics endpoint
	    http.Handle("/metrics", promhttp.Handler())

	    // Record metrics
	    metrics.RecordSearch(duration, len(hits), err)
	    metrics.RecordEmbedding("batch", 100, elapsed, err)
	    metrics.RecordMongoQuery("find", "recipes", elapsed, err)
	}

Recording search pipeline metrics:

	func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	    start := time.Now()
	    result, err := s.run(ctx, req)

	    n := 0
	    if result != nil {
	        n = len(result.Recipes)
	    }
	    metrics.RecordSearch(time.Since(start), n, err)

	    return result, err
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'recipefinder'
	    static_configs:
	      - targets: ['localhost:8080']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Grafana Dashboards

The metrics support Grafana dashboards with panels for:

  - Search rate (queries per second) and zero-result rate
  - Search latency (p50, p95, p99 percentiles)
  - Embedding cache hit rate and retry counts
  - LLM latency per provider and fallback frequency
  - Vector index size over time
  - Index pipeline throughput (recipes/sec, duration trends)
  - Circuit breaker state visualization

Example PromQL queries:

	# Search request rate
	rate(search_requests_total[5m])

	# Search p95 latency
	histogram_quantile(0.95, rate(search_duration_seconds_bucket[5m]))

	# Zero-result rate
	rate(search_requests_total{status="empty"}[5m]) / rate(search_requests_total[5m])

	# Embedding cache hit rate
	rate(embedding_cache_hits_total[5m]) / (rate(embedding_cache_hits_total[5m]) + rate(embedding_cache_misses_total[5m]))

	# Indexed recipes per minute
	rate(index_documents_processed_total[1m]) * 60

# Performance Impact

Metrics collection overhead:
  - Counter increment: ~100ns per operation
  - Histogram observation: ~500ns per operation
  - Memory overhead: ~5KB per metric time series
  - Total overhead: <1% CPU, <10MB RAM for typical workloads

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use route patterns, never raw paths with IDs
  - Error types are truncated and limited to short prefixes
  - Query text is never used as a label
  - User-specific labels are avoided

# Alerting Rules

Example Prometheus alerting rules:

	groups:
	  - name: recipefinder
	    rules:
	      - alert: HighSearchErrorRate
	        expr: |
	          sum(rate(search_requests_total{status="error"}[5m]))
	          /
	          sum(rate(search_requests_total[5m]))
	          > 0.05
	        for: 5m
	        annotations:
	          summary: "High search error rate: {{ $value }}%"

	      - alert: SlowEmbeddingService
	        expr: |
	          histogram_quantile(0.95,
	            rate(embedding_request_duration_seconds_bucket[5m]))
	          > 5
	        for: 5m
	        annotations:
	          summary: "p95 embedding latency: {{ $value }}s"

	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state > 1
	        for: 2m
	        annotations:
	          summary: "Circuit breaker open for {{ $labels.name }}"

# Best Practices

When adding new metrics:

 1. Use appropriate metric types:
    - Counter: Monotonically increasing values (requests, errors)
    - Gauge: Point-in-time values (connections, index size)
    - Histogram: Distribution of values (latency, batch size)

 2. Choose descriptive names:
    - Use underscore separation: search_duration_seconds
    - Include units: _seconds, _bytes, _total
    - Follow Prometheus naming conventions

 3. Minimize cardinality:
    - Avoid high-cardinality labels (recipe IDs, query text)
    - Normalize endpoint paths
    - Use fixed error type constants

# See Also

  - internal/api: HTTP middleware with metrics integration
  - internal/search: Search pipeline metrics recording
  - internal/indexer: Index pipeline metrics
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
  - https://prometheus.io/docs/practices/instrumentation/: Instrumentation guide
*/
package metrics
