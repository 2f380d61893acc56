// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"net/http"
	"testing"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/models"
)

func TestRateLimitExceededEnvelope(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Search = 2
	env := newTestEnv(t, cfg, config.AuthConfig{})

	var last *http.Response
	var envelope models.APIResponse
	for i := 0; i < 3; i++ {
		last, envelope = env.doJSON(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Query: "soup"}, "")
	}

	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.StatusCode)
	}
	if envelope.Status != "error" {
		t.Errorf("envelope status = %q, want error", envelope.Status)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeRateLimit {
		t.Errorf("error = %+v, want code %s", envelope.Error, CodeRateLimit)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Search = 1
	cfg.RateLimit.Disabled = true
	env := newTestEnv(t, cfg, config.AuthConfig{})

	for i := 0; i < 5; i++ {
		resp, _ := env.doJSON(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Query: "soup"}, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 with limiting disabled", i, resp.StatusCode)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, _ := env.doJSON(t, http.MethodGet, "/api/v1/health", nil, "")
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := resp.Header.Get("Referrer-Policy"); got != "strict-origin-when-cross-origin" {
		t.Errorf("Referrer-Policy = %q", got)
	}
	// Plain HTTP: no HSTS.
	if got := resp.Header.Get("Strict-Transport-Security"); got != "" {
		t.Errorf("Strict-Transport-Security = %q, want unset over HTTP", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, _ := env.doJSON(t, http.MethodGet, "/api/v1/health", nil, "")
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestResponsesCarryETag(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, _ := env.doJSON(t, http.MethodGet, "/api/v1/recipes", nil, "")
	if resp.Header.Get("ETag") == "" {
		t.Error("ETag header missing")
	}
	if resp.Header.Get("Cache-Control") == "" {
		t.Error("Cache-Control header missing")
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, err := env.server.Client().Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	env := newTestEnv(t, nil, config.AuthConfig{})

	resp, err := env.server.Client().Get(env.server.URL + "/api/v1/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
