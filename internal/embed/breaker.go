// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package embed

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
)

// breakerName labels the embedding service breaker in metrics and logs.
const breakerName = "embedding-service"

// BreakerEmbedder wraps an Embedder with a circuit breaker so that a
// down or overloaded embedding service fails searches fast instead of
// stacking up timeouts.
//
// Both query and batch requests share one breaker: they hit the same
// service, so failures in either should count against the same state.
//
// Configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 30 second timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
type BreakerEmbedder struct {
	inner Embedder
	cb    *gobreaker.CircuitBreaker[[][]float32]
}

var _ Embedder = (*BreakerEmbedder)(nil)

// NewBreakerEmbedder wraps inner with circuit breaker protection.
func NewBreakerEmbedder(inner Embedder) *BreakerEmbedder {
	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening embedding service circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().
				Str("from", fromStr).
				Str("to", toStr).
				Msg("[CIRCUIT BREAKER] Embedding service state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerEmbedder{inner: inner, cb: cb}
}

// execute wraps an embedding call with circuit breaker protection.
func (b *BreakerEmbedder) execute(fn func() ([][]float32, error)) ([][]float32, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Embedding request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()

			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	return result, nil
}

// EmbedQuery embeds a single query with circuit breaker protection.
func (b *BreakerEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	result, err := b.execute(func() ([][]float32, error) {
		vector, err := b.inner.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		return [][]float32{vector}, nil
	})
	if err != nil {
		return nil, err
	}
	return result[0], nil
}

// EmbedBatch embeds a batch with circuit breaker protection.
func (b *BreakerEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return b.execute(func() ([][]float32, error) {
		return b.inner.EmbedBatch(ctx, texts)
	})
}

// State exposes the breaker state for health reporting.
func (b *BreakerEmbedder) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
