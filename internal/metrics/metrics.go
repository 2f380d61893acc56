// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Semantic search latency and outcomes
// - Embedding service calls, batching, and cache efficiency
// - LLM answer generation
// - Vector index operations (upsert, search, snapshot)
// - Recipe store (MongoDB) and analytics (DuckDB) query performance
// - Index and import pipeline throughput
// - API endpoint latency and throughput
// - WebSocket connections

var (
	// Search Metrics
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of semantic search requests",
		},
		[]string{"status"}, // "ok", "empty", "error"
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "End-to-end search pipeline duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	SearchResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_results_returned",
			Help:    "Number of recipes returned per search",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	// Embedding Metrics
	EmbeddingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Total number of embedding service requests",
		},
		[]string{"operation", "status"}, // operation: "query", "batch"
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "embedding_request_duration_seconds",
			Help:    "Duration of embedding service requests in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s .. 10s
		},
		[]string{"operation"},
	)

	EmbeddingBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_batch_size",
			Help:    "Number of texts per embedding batch request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	EmbeddingRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_retries_total",
			Help: "Total number of embedding request retries",
		},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_hits_total",
			Help: "Total number of query embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_misses_total",
			Help: "Total number of query embedding cache misses",
		},
	)

	// LLM Answer Generation Metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM answer generation requests",
		},
		[]string{"provider", "status"}, // provider: "openai", "gemini"
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of LLM answer generation requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	LLMFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_fallbacks_total",
			Help: "Total number of searches served with the fallback answer (LLM unavailable)",
		},
	)

	// Vector Index Metrics
	VectorSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_search_duration_seconds",
			Help:    "Duration of vector similarity searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	VectorDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vector_index_documents",
			Help: "Current number of documents in the vector index",
		},
	)

	VectorOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vector_index_operations_total",
			Help: "Total number of vector index mutations",
		},
		[]string{"operation"}, // "upsert", "delete", "clear", "snapshot", "restore"
	)

	VectorSnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vector_snapshot_duration_seconds",
			Help:    "Duration of vector index snapshot and restore operations",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	// Recipe Store Metrics (MongoDB)
	MongoQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongodb_query_duration_seconds",
			Help:    "Duration of MongoDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	MongoQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongodb_query_errors_total",
			Help: "Total number of MongoDB query errors",
		},
		[]string{"operation", "collection", "error_type"},
	)

	// Analytics Database Metrics (DuckDB)
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// Index Pipeline Metrics
	IndexRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "index_runs_total",
			Help: "Total number of index pipeline runs",
		},
		[]string{"status"}, // "completed", "failed", "cancelled"
	)

	IndexDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "index_duration_seconds",
			Help:    "Duration of full index runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}, // Full reindex can take minutes
		},
	)

	IndexDocumentsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "index_documents_processed_total",
			Help: "Total number of recipes processed by the index pipeline",
		},
	)

	IndexDocumentsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "index_documents_skipped_total",
			Help: "Total number of recipes skipped during indexing (empty after normalization)",
		},
	)

	IndexBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "index_batch_size",
			Help:    "Number of recipes per index batch",
			Buckets: []float64{10, 25, 50, 100, 250, 500},
		},
	)

	IndexLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "index_last_success_timestamp",
			Help: "Unix timestamp of last successful index run",
		},
	)

	// Import Pipeline Metrics
	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "import_duration_seconds",
			Help:    "Duration of CSV import runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	ImportRecordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_records_processed_total",
			Help: "Total number of CSV rows processed during import",
		},
	)

	ImportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_errors_total",
			Help: "Total number of import errors",
		},
		[]string{"error_type"}, // "parse", "validation", "database"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "search", "embedding"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS Event Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_processed_total",
			Help: "Total number of messages successfully processed",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	NATSConsumerLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nats_consumer_lag",
			Help: "Number of pending messages in NATS consumer",
		},
	)

	// Write-Ahead Log Metrics
	WALEntriesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_entries_written_total",
			Help: "Total number of entries appended to the index journal",
		},
	)

	WALEntriesReplayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wal_entries_replayed_total",
			Help: "Total number of journal entries replayed at startup",
		},
	)

	WALPendingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wal_pending_entries",
			Help: "Current number of unapplied journal entries",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordSearch records the outcome of a search pipeline run.
func RecordSearch(duration time.Duration, results int, err error) {
	SearchDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		SearchRequestsTotal.WithLabelValues("error").Inc()
	case results == 0:
		SearchRequestsTotal.WithLabelValues("empty").Inc()
	default:
		SearchRequestsTotal.WithLabelValues("ok").Inc()
	}
	SearchResultsReturned.Observe(float64(results))
}

// RecordEmbedding records an embedding service request.
// Operation is "query" for single-text requests and "batch" for bulk requests.
func RecordEmbedding(operation string, batchSize int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EmbeddingRequestsTotal.WithLabelValues(operation, status).Inc()
	EmbeddingDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if operation == "batch" {
		EmbeddingBatchSize.Observe(float64(batchSize))
	}
}

// RecordLLMRequest records an answer generation request.
func RecordLLMRequest(provider string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordVectorSearch records a vector similarity search.
func RecordVectorSearch(duration time.Duration) {
	VectorSearchDuration.Observe(duration.Seconds())
}

// RecordVectorOperation records a vector index mutation.
func RecordVectorOperation(operation string) {
	VectorOperations.WithLabelValues(operation).Inc()
}

// RecordMongoQuery records a recipe store query metric.
func RecordMongoQuery(operation, collection string, duration time.Duration, err error) {
	MongoQueryDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		MongoQueryErrors.WithLabelValues(operation, collection, errorType).Inc()
	}
}

// RecordDBQuery records an analytics database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordIndexRun records a completed index pipeline run.
func RecordIndexRun(duration time.Duration, processed, skipped int64, err error) {
	IndexDuration.Observe(duration.Seconds())
	IndexDocumentsProcessed.Add(float64(processed))
	IndexDocumentsSkipped.Add(float64(skipped))
	if err != nil {
		IndexRunsTotal.WithLabelValues("failed").Inc()
	} else {
		IndexRunsTotal.WithLabelValues("completed").Inc()
		IndexLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordImport records a CSV import run.
func RecordImport(duration time.Duration, recordsProcessed int64, err error) {
	ImportDuration.Observe(duration.Seconds())
	ImportRecordsProcessed.Add(float64(recordsProcessed))
	if err != nil {
		errorType := "database"
		errorMsg := err.Error()
		switch {
		case contains(errorMsg, "parse"):
			errorType = "parse"
		case contains(errorMsg, "validation"):
			errorType = "validation"
		}
		ImportErrors.WithLabelValues(errorType).Inc()
	}
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// Helper function to check if string contains substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && s[:len(substr)] == substr
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSProcessed records a message being successfully processed
func RecordNATSProcessed() {
	NATSMessagesProcessed.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSProcessingDuration records the duration of message processing
func RecordNATSProcessingDuration(duration time.Duration) {
	NATSProcessingDuration.Observe(duration.Seconds())
}

// UpdateNATSConsumerLag updates the NATS consumer lag gauge
func UpdateNATSConsumerLag(lag int64) {
	NATSConsumerLag.Set(float64(lag))
}

// RecordWALWrite records entries appended to the index journal.
func RecordWALWrite(count int) {
	WALEntriesWritten.Add(float64(count))
}

// RecordWALReplay records entries replayed from the index journal.
func RecordWALReplay(count int) {
	WALEntriesReplayed.Add(float64(count))
}
