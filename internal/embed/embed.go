// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
)

// maxResponseSize limits embedding response bodies to prevent memory issues
const maxResponseSize = 64 * 1024 * 1024 // 64MB

// Embedder converts recipe text into fixed-width vectors.
//
// EmbedQuery embeds a single search query; EmbedBatch embeds many texts
// in one request and is used by the indexing pipeline. Both return
// vectors of the configured dimensionality in input order.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Client talks to a sentence-embedding service over the OpenAI
// embeddings wire format (POST /v1/embeddings). This covers
// text-embeddings-inference, LocalAI, Ollama and the hosted APIs, so
// the model server is swappable without code changes.
//
// Rate-limited (429) and transient server errors are retried with
// exponential backoff, honoring the Retry-After header when present.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dims       int
	maxRetries int
	retryDelay time.Duration
}

var _ Embedder = (*Client)(nil)

// NewClient creates an embedding client from configuration.
func NewClient(cfg *config.EmbeddingConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dims:       cfg.Dimensions,
		maxRetries: maxRetries,
		retryDelay: 500 * time.Millisecond,
	}
}

// embeddingRequest is the OpenAI-compatible request body.
type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Model string          `json:"model"`
}

type embeddingError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// EmbedQuery embeds a single search query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()

	vectors, err := c.embed(ctx, []string{text})
	metrics.RecordEmbedding("query", 1, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds a batch of texts in one request. The result is in
// input order regardless of how the service orders its response.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()

	vectors, err := c.embed(ctx, texts)
	metrics.RecordEmbedding("batch", len(texts), time.Since(start), err)
	return vectors, err
}

// embed performs the request with retries and validates the response.
func (c *Client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}

	data, err := c.postWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(parsed.Data), len(texts))
	}

	// Place vectors by their index field; services may reorder
	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding service returned out-of-range index %d", d.Index)
		}
		if c.dims > 0 && len(d.Embedding) != c.dims {
			return nil, fmt.Errorf("embedding %d has %d dimensions, expected %d", d.Index, len(d.Embedding), c.dims)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("embedding service returned no vector for text %d", i)
		}
	}

	return vectors, nil
}

// postWithRetry sends the request, retrying rate limits and transient
// server errors with exponential backoff.
func (c *Client) postWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug().
				Int("attempt", attempt).
				Int("max_retries", c.maxRetries).
				Dur("delay", delay).
				Msg("Retrying embedding request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		data, retryable, err := c.post(ctx, body)
		if err == nil {
			return data, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		// A rate-limited service tells us when to come back
		var rle *rateLimitError
		if errors.As(err, &rle) && rle.retryAfter > 0 {
			delay = rle.retryAfter
		}

		logging.Warn().Err(err).Int("attempt", attempt+1).Msg("Embedding request failed")
	}

	return nil, fmt.Errorf("embedding request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// rateLimitError carries the service's Retry-After hint.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("embedding service rate limited (retry after %s)", e.retryAfter)
}

// post performs a single request. The second return reports whether the
// failure is worth retrying.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors (connection refused, timeout) are transient
		return nil, true, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read embedding response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return data, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, &rateLimitError{retryAfter: retryAfterDelay(resp)}
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("embedding service error %d: %s", resp.StatusCode, errorMessage(data))
	default:
		return nil, false, fmt.Errorf("embedding service rejected request with %d: %s", resp.StatusCode, errorMessage(data))
	}
}

// retryAfterDelay parses the Retry-After header, which may be either
// seconds or an HTTP date. Returns 0 when absent or unparseable.
func retryAfterDelay(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// errorMessage extracts the service's error message from a failed
// response body, falling back to a raw snippet.
func errorMessage(data []byte) string {
	var parsed embeddingError
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	const maxSnippet = 200
	s := strings.TrimSpace(string(data))
	if len(s) > maxSnippet {
		s = s[:maxSnippet] + "..."
	}
	if s == "" {
		return "no response body"
	}
	return s
}
