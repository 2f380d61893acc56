// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordSearch tests search pipeline metric recording
func TestRecordSearch(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		results  int
		err      error
	}{
		{
			name:     "successful search with results",
			duration: 50 * time.Millisecond,
			results:  5,
			err:      nil,
		},
		{
			name:     "successful search - zero results",
			duration: 30 * time.Millisecond,
			results:  0,
			err:      nil,
		},
		{
			name:     "failed search",
			duration: 100 * time.Millisecond,
			results:  0,
			err:      errors.New("embedding service unavailable"),
		},
		{
			name:     "slow search over 5 seconds",
			duration: 5500 * time.Millisecond,
			results:  3,
			err:      nil,
		},
		{
			name:     "fast cached search",
			duration: 500 * time.Microsecond,
			results:  5,
			err:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the search - should not panic
			RecordSearch(tt.duration, tt.results, tt.err)
		})
	}
}

// TestRecordEmbedding tests embedding request metric recording
func TestRecordEmbedding(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		batchSize int
		duration  time.Duration
		err       error
	}{
		{
			name:      "single query embedding",
			operation: "query",
			batchSize: 1,
			duration:  20 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "batch embedding",
			operation: "batch",
			batchSize: 100,
			duration:  800 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed batch embedding",
			operation: "batch",
			batchSize: 50,
			duration:  30 * time.Second,
			err:       errors.New("context deadline exceeded"),
		},
		{
			name:      "failed query embedding",
			operation: "query",
			batchSize: 1,
			duration:  5 * time.Second,
			err:       errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordEmbedding(tt.operation, tt.batchSize, tt.duration, tt.err)
		})
	}
}

// TestRecordLLMRequest tests answer generation metric recording
func TestRecordLLMRequest(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		duration time.Duration
		err      error
	}{
		{
			name:     "successful gemini request",
			provider: "gemini",
			duration: 2 * time.Second,
			err:      nil,
		},
		{
			name:     "successful openai request",
			provider: "openai",
			duration: 1500 * time.Millisecond,
			err:      nil,
		},
		{
			name:     "failed gemini request",
			provider: "gemini",
			duration: 30 * time.Second,
			err:      errors.New("quota exceeded"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordLLMRequest(tt.provider, tt.duration, tt.err)
		})
	}
}

// TestRecordMongoQuery tests recipe store metric recording
func TestRecordMongoQuery(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		collection string
		duration   time.Duration
		err        error
	}{
		{
			name:       "successful find",
			operation:  "find",
			collection: "recipes",
			duration:   10 * time.Millisecond,
			err:        nil,
		},
		{
			name:       "successful insert_many",
			operation:  "insert_many",
			collection: "recipes",
			duration:   50 * time.Millisecond,
			err:        nil,
		},
		{
			name:       "failed query with short error",
			operation:  "find_one",
			collection: "recipes",
			duration:   100 * time.Millisecond,
			err:        errors.New("connection refused"),
		},
		{
			name:       "failed query with long error - should truncate to 50 chars",
			operation:  "delete_many",
			collection: "recipes",
			duration:   50 * time.Millisecond,
			err:        errors.New("this is a very long error message that exceeds fifty characters and should be truncated properly"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the query - should not panic
			RecordMongoQuery(tt.operation, tt.collection, tt.duration, tt.err)
		})
	}
}

// TestRecordDBQuery tests analytics database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "searches",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful INSERT query",
			operation: "INSERT",
			table:     "searches",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query with short error",
			operation: "DELETE",
			table:     "admin_audit",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "fast query under 1ms",
			operation: "SELECT",
			table:     "searches",
			duration:  500 * time.Microsecond,
			err:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the query - should not panic
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

// TestRecordDBQuery_ErrorTruncation verifies error messages are truncated at 50 chars
func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	// Error with exactly 50 characters
	err50 := errors.New(strings.Repeat("a", 50))
	RecordDBQuery("SELECT", "test", time.Millisecond, err50)

	// Error with 51 characters - should truncate
	err51 := errors.New(strings.Repeat("b", 51))
	RecordDBQuery("SELECT", "test", time.Millisecond, err51)

	// Error with 100 characters - should truncate
	err100 := errors.New(strings.Repeat("c", 100))
	RecordDBQuery("SELECT", "test", time.Millisecond, err100)

	// Very short error
	errShort := errors.New("err")
	RecordDBQuery("SELECT", "test", time.Millisecond, errShort)
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful search request",
			method:     "POST",
			endpoint:   "/api/v1/search",
			statusCode: "200",
			duration:   150 * time.Millisecond,
		},
		{
			name:       "successful recipe fetch",
			method:     "GET",
			endpoint:   "/api/v1/recipes/{id}",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "unauthorized index trigger",
			method:     "POST",
			endpoint:   "/api/v1/index",
			statusCode: "401",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "not found request",
			method:     "GET",
			endpoint:   "/api/v1/recipes/{id}",
			statusCode: "404",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "rate limited search",
			method:     "POST",
			endpoint:   "/api/v1/search",
			statusCode: "429",
			duration:   1 * time.Millisecond,
		},
		{
			name:       "bad request",
			method:     "POST",
			endpoint:   "/api/v1/search",
			statusCode: "400",
			duration:   10 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the request - should not panic
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

// TestRecordIndexRun tests index pipeline metric recording
func TestRecordIndexRun(t *testing.T) {
	tests := []struct {
		name      string
		duration  time.Duration
		processed int64
		skipped   int64
		err       error
	}{
		{
			name:      "successful full index",
			duration:  120 * time.Second,
			processed: 5000,
			skipped:   12,
			err:       nil,
		},
		{
			name:      "successful empty index",
			duration:  1 * time.Second,
			processed: 0,
			skipped:   0,
			err:       nil,
		},
		{
			name:      "failed index run",
			duration:  30 * time.Second,
			processed: 1200,
			skipped:   3,
			err:       errors.New("embedding service unavailable"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordIndexRun(tt.duration, tt.processed, tt.skipped, tt.err)
		})
	}
}

// TestRecordImport tests CSV import metric recording with error classification
func TestRecordImport(t *testing.T) {
	tests := []struct {
		name      string
		duration  time.Duration
		processed int64
		err       error
	}{
		{
			name:      "successful import",
			duration:  60 * time.Second,
			processed: 5000,
			err:       nil,
		},
		{
			name:      "parse error",
			duration:  5 * time.Second,
			processed: 100,
			err:       errors.New("parse error at row 101"),
		},
		{
			name:      "validation error",
			duration:  10 * time.Second,
			processed: 500,
			err:       errors.New("validation failed for record"),
		},
		{
			name:      "database error",
			duration:  15 * time.Second,
			processed: 250,
			err:       errors.New("write conflict"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordImport(tt.duration, tt.processed, tt.err)
		})
	}
}

// TestTrackActiveRequest tests active request tracking
func TestTrackActiveRequest(t *testing.T) {
	tests := []struct {
		name string
		inc  bool
	}{
		{
			name: "increment active request",
			inc:  true,
		},
		{
			name: "decrement active request",
			inc:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Track active request - should not panic
			TrackActiveRequest(tt.inc)
		})
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates realistic request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	// Simulate multiple concurrent requests
	for i := 0; i < 10; i++ {
		TrackActiveRequest(true) // Request starts
	}

	// Some requests complete
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false) // Request ends
	}

	// More requests start
	for i := 0; i < 3; i++ {
		TrackActiveRequest(true)
	}

	// All remaining complete
	for i := 0; i < 8; i++ {
		TrackActiveRequest(false)
	}
}

// TestContains tests the contains helper function
func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		substr   string
		expected bool
	}{
		{
			name:     "substring at start",
			s:        "parse error at row 5",
			substr:   "parse",
			expected: true,
		},
		{
			name:     "substring not at start",
			s:        "failed to parse row",
			substr:   "parse",
			expected: false,
		},
		{
			name:     "empty substring - always true",
			s:        "any string",
			substr:   "",
			expected: true,
		},
		{
			name:     "empty string with empty substr",
			s:        "",
			substr:   "",
			expected: true,
		},
		{
			name:     "substring longer than string",
			s:        "hi",
			substr:   "hello",
			expected: false,
		},
		{
			name:     "exact match",
			s:        "validation",
			substr:   "validation",
			expected: true,
		},
		{
			name:     "case sensitive - no match",
			s:        "Parse error",
			substr:   "parse",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := contains(tt.s, tt.substr)
			if result != tt.expected {
				t.Errorf("contains(%q, %q) = %v, want %v", tt.s, tt.substr, result, tt.expected)
			}
		})
	}
}

// TestConcurrentMetricRecording tests thread safety of metric recording
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 100
	operationsPerGoroutine := 50

	// Test concurrent search recording
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordSearch(time.Duration(j)*time.Millisecond, 5, nil)
			}
		}(i)
	}

	// Test concurrent embedding recording
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordEmbedding("query", 1, time.Duration(j)*time.Millisecond, nil)
			}
		}(i)
	}

	// Test concurrent API request recording
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordAPIRequest("POST", "/api/v1/search", "200", time.Duration(j)*time.Millisecond)
			}
		}(i)
	}

	// Test concurrent active request tracking
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}(i)
	}

	wg.Wait()
}

// TestMetricLabels verifies that metrics have proper labels configured
func TestMetricLabels(t *testing.T) {
	// Test SearchRequestsTotal has correct labels
	SearchRequestsTotal.WithLabelValues("ok").Inc()
	SearchRequestsTotal.WithLabelValues("empty").Inc()
	SearchRequestsTotal.WithLabelValues("error").Inc()

	// Test EmbeddingRequestsTotal has correct labels
	EmbeddingRequestsTotal.WithLabelValues("query", "ok").Inc()
	EmbeddingRequestsTotal.WithLabelValues("batch", "error").Inc()

	// Test LLMRequestsTotal has correct labels
	LLMRequestsTotal.WithLabelValues("gemini", "ok").Inc()
	LLMRequestsTotal.WithLabelValues("openai", "error").Inc()

	// Test MongoQueryErrors has correct labels
	MongoQueryErrors.WithLabelValues("find", "recipes", "timeout").Inc()

	// Test DBQueryErrors has correct labels
	DBQueryErrors.WithLabelValues("INSERT", "searches", "constraint_violation").Inc()

	// Test APIRequestsTotal has correct labels
	APIRequestsTotal.WithLabelValues("GET", "/api/test", "200").Inc()
	APIRequestsTotal.WithLabelValues("POST", "/api/test", "500").Inc()

	// Test VectorOperations has correct labels
	VectorOperations.WithLabelValues("upsert").Inc()
	VectorOperations.WithLabelValues("delete").Inc()
	VectorOperations.WithLabelValues("snapshot").Inc()

	// Test CacheHits has correct labels
	CacheHits.WithLabelValues("search").Inc()
	CacheHits.WithLabelValues("embedding").Inc()

	// Test WSErrors has correct labels
	WSErrors.WithLabelValues("connection_closed").Inc()
	WSErrors.WithLabelValues("write_failed").Inc()
}

// TestEmbeddingCacheMetrics tests embedding cache counters
func TestEmbeddingCacheMetrics(t *testing.T) {
	EmbeddingCacheHits.Add(50)
	EmbeddingCacheMisses.Add(10)
	EmbeddingRetries.Inc()
}

// TestVectorMetrics tests vector index metric recording
func TestVectorMetrics(t *testing.T) {
	// Test document count gauge
	VectorDocuments.Set(5000)
	VectorDocuments.Inc()
	VectorDocuments.Dec()

	// Test search duration histogram
	RecordVectorSearch(5 * time.Millisecond)
	RecordVectorSearch(50 * time.Millisecond)

	// Test operation counters
	RecordVectorOperation("upsert")
	RecordVectorOperation("clear")
	RecordVectorOperation("restore")

	// Test snapshot duration
	VectorSnapshotDuration.Observe(1.5)
	VectorSnapshotDuration.Observe(30)
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "embedding_service"

	// Test state changes (0=closed, 1=half-open, 2=open)
	CircuitBreakerState.WithLabelValues(cbName).Set(0) // closed
	CircuitBreakerState.WithLabelValues(cbName).Set(2) // open
	CircuitBreakerState.WithLabelValues(cbName).Set(1) // half-open

	// Test request counts
	CircuitBreakerRequests.WithLabelValues(cbName, "success").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "failure").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()

	// Test consecutive failures
	CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(5)

	// Test state transitions
	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "open", "half-open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "half-open", "closed").Inc()
}

// TestWebSocketMetrics tests WebSocket metric recording
func TestWebSocketMetrics(t *testing.T) {
	// Test connection gauge
	WSConnections.Set(10)
	WSConnections.Inc()
	WSConnections.Dec()

	// Test message counters
	WSMessagesSent.Add(100)
	WSMessagesReceived.Add(50)

	// Test error counter with different types
	WSErrors.WithLabelValues("connection_closed").Inc()
	WSErrors.WithLabelValues("write_timeout").Inc()
	WSErrors.WithLabelValues("invalid_message").Inc()
}

// TestNATSMetrics tests NATS event metric recording
func TestNATSMetrics(t *testing.T) {
	RecordNATSPublish()
	RecordNATSConsume()
	RecordNATSProcessed()
	RecordNATSParseFailed()
	RecordNATSProcessingDuration(10 * time.Millisecond)
	UpdateNATSConsumerLag(42)
	UpdateNATSConsumerLag(0)
}

// TestWALMetrics tests index journal metric recording
func TestWALMetrics(t *testing.T) {
	RecordWALWrite(100)
	RecordWALWrite(1)
	RecordWALReplay(250)
	WALPendingEntries.Set(10)
	WALPendingEntries.Set(0)
}

// TestAppMetrics tests application-level metrics
func TestAppMetrics(t *testing.T) {
	// Test app info
	AppInfo.WithLabelValues("1.0", "go1.25.4").Set(1)

	// Test uptime
	AppUptime.Set(3600) // 1 hour
	AppUptime.Add(60)   // Add 1 minute
}

// TestAPIRateLimitHits tests rate limit hit counter
func TestAPIRateLimitHits(t *testing.T) {
	endpoints := []string{
		"/api/v1/search",
		"/api/v1/recipes",
		"/api/v1/index",
		"/api/v1/import",
	}

	for _, endpoint := range endpoints {
		APIRateLimitHits.WithLabelValues(endpoint).Inc()
	}
}

// TestCacheMetrics tests general cache metrics
func TestCacheMetrics(t *testing.T) {
	cacheTypes := []string{"search", "embedding"}

	for _, cacheType := range cacheTypes {
		CacheHits.WithLabelValues(cacheType).Add(100)
		CacheMisses.WithLabelValues(cacheType).Add(20)
		CacheSize.WithLabelValues(cacheType).Set(50)
		CacheEvictions.WithLabelValues(cacheType).Add(5)
	}
}

// TestDBConnectionPoolSize tests connection pool size gauge
func TestDBConnectionPoolSize(t *testing.T) {
	DBConnectionPoolSize.Set(1)
	DBConnectionPoolSize.Inc()
	DBConnectionPoolSize.Set(5)
	DBConnectionPoolSize.Dec()
}

// TestIndexLastSuccess tests index timestamp recording
func TestIndexLastSuccess(t *testing.T) {
	// Simulate successful index run
	RecordIndexRun(5*time.Second, 100, 0, nil)

	// Get the current value - should be recent
	// Note: We can't easily get the value without more complex setup,
	// but we verify no panic occurs
}

// TestMetricsRegistration verifies all metrics are properly registered
func TestMetricsRegistration(t *testing.T) {
	// Test that all metrics can be collected without panic
	metrics := []prometheus.Collector{
		SearchRequestsTotal,
		SearchDuration,
		SearchResultsReturned,
		EmbeddingRequestsTotal,
		EmbeddingDuration,
		EmbeddingBatchSize,
		EmbeddingRetries,
		EmbeddingCacheHits,
		EmbeddingCacheMisses,
		LLMRequestsTotal,
		LLMRequestDuration,
		LLMFallbacksTotal,
		VectorSearchDuration,
		VectorDocuments,
		VectorOperations,
		VectorSnapshotDuration,
		MongoQueryDuration,
		MongoQueryErrors,
		DBQueryDuration,
		DBQueryErrors,
		DBConnectionPoolSize,
		IndexRunsTotal,
		IndexDuration,
		IndexDocumentsProcessed,
		IndexDocumentsSkipped,
		IndexBatchSize,
		IndexLastSuccess,
		ImportDuration,
		ImportRecordsProcessed,
		ImportErrors,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		CacheHits,
		CacheMisses,
		CacheSize,
		CacheEvictions,
		WSConnections,
		WSMessagesSent,
		WSMessagesReceived,
		WSErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		NATSMessagesPublished,
		NATSMessagesConsumed,
		NATSMessagesProcessed,
		NATSMessagesParseFailed,
		NATSProcessingDuration,
		NATSConsumerLag,
		WALEntriesWritten,
		WALEntriesReplayed,
		WALPendingEntries,
		AppInfo,
		AppUptime,
	}

	// Verify each metric can be described
	for _, m := range metrics {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		// Should have at least one descriptor
		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	// Record some metrics
	RecordSearch(time.Millisecond, 5, nil)
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	// Verify we can lint the metrics (checks for consistency issues)
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

// Benchmark tests for metrics performance

func BenchmarkRecordSearch(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordSearch(50*time.Millisecond, 5, nil)
	}
}

func BenchmarkRecordEmbedding(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordEmbedding("query", 1, 20*time.Millisecond, nil)
	}
}

func BenchmarkRecordMongoQuery(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordMongoQuery("find", "recipes", 10*time.Millisecond, nil)
	}
}

func BenchmarkRecordMongoQueryWithError(b *testing.B) {
	err := errors.New("connection refused")
	for i := 0; i < b.N; i++ {
		RecordMongoQuery("find", "recipes", 10*time.Millisecond, err)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("POST", "/api/v1/search", "200", 25*time.Millisecond)
	}
}

func BenchmarkTrackActiveRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TrackActiveRequest(true)
		TrackActiveRequest(false)
	}
}

func BenchmarkContains(b *testing.B) {
	s := "parse error at row 5"
	substr := "parse"
	for i := 0; i < b.N; i++ {
		contains(s, substr)
	}
}
