// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package cache

// ScoredEntry is an element ranked by similarity score.
type ScoredEntry[T any] struct {
	ID    string
	Value T
	Score float32
}

// TopK keeps the k highest-scoring entries offered to it.
//
// Internally a min-heap ordered by score: the root is the weakest of the
// current winners, so a candidate that cannot beat the root is rejected in
// O(1) and an accepted candidate costs O(log k).
//
// This is used by the vector index's similarity scan: rather than sorting
// every document by score (O(n log n)), the scan offers each cosine score
// and TopK retains only the k best (O(n log k) time, O(k) memory).
//
// Not safe for concurrent use. Each search builds its own TopK.
type TopK[T any] struct {
	k    int
	heap []ScoredEntry[T]
}

// NewTopK creates a collector for the k highest-scoring entries.
// k values below 1 are treated as 1.
func NewTopK[T any](k int) *TopK[T] {
	if k < 1 {
		k = 1
	}
	return &TopK[T]{
		k:    k,
		heap: make([]ScoredEntry[T], 0, k),
	}
}

// Offer submits a candidate. Returns true if the candidate was retained
// (it displaced the current minimum or the collector was not yet full).
func (t *TopK[T]) Offer(id string, value T, score float32) bool {
	if len(t.heap) < t.k {
		t.heap = append(t.heap, ScoredEntry[T]{ID: id, Value: value, Score: score})
		t.bubbleUp(len(t.heap) - 1)
		return true
	}

	// Full: reject anything that cannot beat the weakest winner.
	if score <= t.heap[0].Score {
		return false
	}

	t.heap[0] = ScoredEntry[T]{ID: id, Value: value, Score: score}
	t.bubbleDown(0)
	return true
}

// Len returns the number of retained entries.
func (t *TopK[T]) Len() int {
	return len(t.heap)
}

// Threshold returns the lowest retained score, or zero if empty.
// Candidates at or below this score will be rejected once the collector
// is full.
func (t *TopK[T]) Threshold() float32 {
	if len(t.heap) == 0 {
		return 0
	}
	return t.heap[0].Score
}

// Descending drains the collector and returns entries sorted from highest
// to lowest score. The collector is empty afterwards.
func (t *TopK[T]) Descending() []ScoredEntry[T] {
	n := len(t.heap)
	out := make([]ScoredEntry[T], n)

	// Repeatedly remove the minimum, filling the result back to front.
	for i := n - 1; i >= 0; i-- {
		out[i] = t.popMin()
	}
	return out
}

// popMin removes and returns the minimum element.
func (t *TopK[T]) popMin() ScoredEntry[T] {
	n := len(t.heap) - 1
	entry := t.heap[0]

	t.heap[0] = t.heap[n]
	t.heap = t.heap[:n]
	if n > 0 {
		t.bubbleDown(0)
	}
	return entry
}

// bubbleUp moves the element at index i up to its correct position.
func (t *TopK[T]) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if t.heap[i].Score >= t.heap[parent].Score {
			break
		}
		t.heap[i], t.heap[parent] = t.heap[parent], t.heap[i]
		i = parent
	}
}

// bubbleDown moves the element at index i down to its correct position.
func (t *TopK[T]) bubbleDown(i int) {
	n := len(t.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && t.heap[left].Score < t.heap[smallest].Score {
			smallest = left
		}
		if right < n && t.heap[right].Score < t.heap[smallest].Score {
			smallest = right
		}

		if smallest == i {
			break
		}

		t.heap[i], t.heap[smallest] = t.heap[smallest], t.heap[i]
		i = smallest
	}
}
