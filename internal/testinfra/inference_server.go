// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build integration

package testinfra

import (
	"encoding/json"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// InferenceCapture represents a captured inference request.
type InferenceCapture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// MockInferenceServer is an OpenAI-compatible fake serving /v1/embeddings
// and /v1/chat/completions. It captures all requests for verification and
// returns deterministic embeddings, so pipeline tests get stable
// similarity rankings without a real model server.
type MockInferenceServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	captures []InferenceCapture

	// Dimensions is the width of generated embeddings (default 384).
	Dimensions int

	// ChatResponse is the canned completion text (default "Here is a recipe suggestion.").
	ChatResponse string

	// FailFirst makes the first n requests return 503, for retry tests.
	FailFirst int

	// EmbedStatus / ChatStatus override the response status when non-zero.
	EmbedStatus int
	ChatStatus  int

	requestCount int
}

// NewMockInferenceServer creates and starts a mock inference server.
func NewMockInferenceServer(t *testing.T) *MockInferenceServer {
	t.Helper()

	m := &MockInferenceServer{
		Dimensions:   384,
		ChatResponse: "Here is a recipe suggestion.",
	}

	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		m.mu.Lock()
		m.captures = append(m.captures, InferenceCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		m.requestCount++
		failing := m.requestCount <= m.FailFirst
		m.mu.Unlock()

		if failing {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		switch r.URL.Path {
		case "/v1/embeddings":
			m.serveEmbeddings(w, body)
		case "/v1/chat/completions":
			m.serveChat(w)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	return m
}

func (m *MockInferenceServer) serveEmbeddings(w http.ResponseWriter, body []byte) {
	if m.EmbedStatus != 0 {
		w.WriteHeader(m.EmbedStatus)
		return
	}

	var req struct {
		Input []string `json:"input"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		// Single-string input form
		var alt struct {
			Input string `json:"input"`
		}
		if err := json.Unmarshal(body, &alt); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		req.Input = []string{alt.Input}
	}

	type item struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	}
	data := make([]item, len(req.Input))
	for i, text := range req.Input {
		data[i] = item{
			Object:    "embedding",
			Index:     i,
			Embedding: DeterministicVector(text, m.Dimensions),
		}
	}

	resp := map[string]interface{}{
		"object": "list",
		"data":   data,
		"model":  "all-MiniLM-L6-v2",
		"usage":  map[string]int{"prompt_tokens": len(req.Input), "total_tokens": len(req.Input)},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (m *MockInferenceServer) serveChat(w http.ResponseWriter) {
	if m.ChatStatus != 0 {
		w.WriteHeader(m.ChatStatus)
		return
	}

	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]string{
					"role":    "assistant",
					"content": m.ChatResponse,
				},
				"finish_reason": "stop",
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// URL returns the server URL.
func (m *MockInferenceServer) URL() string {
	return m.Server.URL
}

// Close shuts down the server.
func (m *MockInferenceServer) Close() {
	m.Server.Close()
}

// Captures returns all captured requests.
func (m *MockInferenceServer) Captures() []InferenceCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]InferenceCapture, len(m.captures))
	copy(result, m.captures)
	return result
}

// ClearCaptures clears all captured requests.
func (m *MockInferenceServer) ClearCaptures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captures = m.captures[:0]
}

// DeterministicVector generates a unit vector seeded from the text, so the
// same input always embeds identically. Distinct texts land far apart with
// overwhelming probability, which is enough for ranking assertions.
func DeterministicVector(text string, dim int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		// xorshift64 keeps this dependency-free and stable across runs
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		// Map to [-1, 1)
		vec[i] = float32(int64(state)) / float32(math.MaxInt64)
		norm += float64(vec[i]) * float64(vec[i])
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}
