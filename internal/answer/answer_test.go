// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package answer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/recipefinder/recipefinder/internal/config"
)

func llmConfig(baseURL string) *config.LLMConfig {
	return &config.LLMConfig{
		Provider:    ProviderGemini,
		APIKey:      "test-key",
		Model:       "gemini-1.5-flash",
		BaseURL:     baseURL,
		Temperature: 0.7,
		MaxTokens:   300,
		Timeout:     5 * time.Second,
	}
}

func searchConfig() *config.SearchConfig {
	return &config.SearchConfig{
		RerankCount:       3,
		DirectionsPreview: 200,
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantType string
		wantErr  bool
	}{
		{"openai", ProviderOpenAI, "*answer.OpenAIProvider", false},
		{"gemini", ProviderGemini, "*answer.GeminiProvider", false},
		{"empty defaults to gemini", "", "*answer.GeminiProvider", false},
		{"none", ProviderNone, "", false},
		{"unknown", "claude", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := llmConfig("")
			cfg.Provider = tt.provider

			p, err := NewProvider(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewProvider() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if tt.wantType == "" {
				if p != nil {
					t.Errorf("NewProvider() = %T, want nil", p)
				}
				return
			}
			if got := typeName(p); got != tt.wantType {
				t.Errorf("NewProvider() = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *OpenAIProvider:
		return "*answer.OpenAIProvider"
	case *GeminiProvider:
		return "*answer.GeminiProvider"
	default:
		return "unknown"
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Try the chicken curry."}},
			},
		})
	}))
	defer server.Close()

	cfg := llmConfig(server.URL)
	cfg.Provider = ProviderOpenAI
	cfg.Model = "gpt-4o-mini"
	p := NewOpenAIProvider(cfg)

	text, err := p.Generate(context.Background(), "some prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if text != "Try the chicken curry." {
		t.Errorf("Generate() = %q, want the choice content", text)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", gotReq.Model)
	}
	if gotReq.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 300 {
		t.Errorf("max_tokens = %d, want 300", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "some prompt" {
		t.Errorf("messages = %+v, want a single user message with the prompt", gotReq.Messages)
	}
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer server.Close()

	cfg := llmConfig(server.URL)
	p := NewOpenAIProvider(cfg)

	_, err := p.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Generate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("error %q should carry the service message", err)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(llmConfig(server.URL))
	if _, err := p.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("Generate() expected error on empty choices, got nil")
	}
}

func TestGeminiProvider_Generate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{
						{"text": "Here is a "},
						{"text": "suggestion."},
					},
				}},
			},
		})
	}))
	defer server.Close()

	p := NewGeminiProvider(llmConfig(server.URL))

	text, err := p.Generate(context.Background(), "some prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if text != "Here is a suggestion." {
		t.Errorf("Generate() = %q, want concatenated parts", text)
	}
	if want := "/v1beta/models/gemini-1.5-flash:generateContent"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want the API key as query parameter", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 || gotReq.Contents[0].Parts[0].Text != "some prompt" {
		t.Errorf("contents = %+v, want a single part with the prompt", gotReq.Contents)
	}
	if gotReq.GenerationConfig.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", gotReq.GenerationConfig.Temperature)
	}
	if gotReq.GenerationConfig.MaxOutputTokens != 300 {
		t.Errorf("maxOutputTokens = %d, want 300", gotReq.GenerationConfig.MaxOutputTokens)
	}
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(llmConfig(server.URL))
	if _, err := p.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("Generate() expected error on empty candidates, got nil")
	}
}

func TestGeminiProvider_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	p := NewGeminiProvider(llmConfig(server.URL))
	_, err := p.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Generate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error %q should carry the service message", err)
	}
}

// promptProvider captures the prompt it receives.
type promptProvider struct {
	prompt string
	text   string
	err    error
}

func (p *promptProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.prompt = prompt
	if p.err != nil {
		return "", p.err
	}
	return p.text, nil
}

func (p *promptProvider) Name() string { return "stub" }

func sampleRecipes() []Recipe {
	return []Recipe{
		{ID: "id-last", Title: "Plain Toast", Ingredients: "bread", Directions: "toast the bread", Score: 0.41},
		{ID: "id-best", Title: "Chicken Curry", Ingredients: "chicken, curry paste, coconut milk", Directions: "brown the chicken. simmer in sauce", Score: 0.93},
		{ID: "id-mid", Title: "Coconut Rice", Ingredients: "rice, coconut milk", Directions: "boil rice in coconut milk", Score: 0.78},
		{ID: "id-third", Title: "Green Salad", Ingredients: "lettuce", Directions: "toss the leaves", Score: 0.63},
	}
}

func TestGenerator_NoRecipes(t *testing.T) {
	provider := &promptProvider{text: "should not run"}
	g := NewGenerator(provider, searchConfig())

	got, generated := g.Generate(context.Background(), "anything", nil)
	if got != FallbackNoRecipes {
		t.Errorf("Generate() = %q, want %q", got, FallbackNoRecipes)
	}
	if generated {
		t.Error("Generate() generated = true for the empty fallback")
	}
	if provider.prompt != "" {
		t.Error("provider should not be called without recipes")
	}
}

func TestGenerator_NilProvider(t *testing.T) {
	g := NewGenerator(nil, searchConfig())

	got, generated := g.Generate(context.Background(), "pasta", sampleRecipes())
	if got != FallbackUnavailable {
		t.Errorf("Generate() = %q, want %q", got, FallbackUnavailable)
	}
	if generated {
		t.Error("Generate() generated = true without a provider")
	}
	if g.ProviderName() != ProviderNone {
		t.Errorf("ProviderName() = %q, want %q", g.ProviderName(), ProviderNone)
	}
}

func TestGenerator_ProviderError(t *testing.T) {
	provider := &promptProvider{err: errors.New("quota exceeded")}
	g := NewGenerator(provider, searchConfig())

	got, generated := g.Generate(context.Background(), "pasta", sampleRecipes())
	if got != FallbackUnavailable {
		t.Errorf("Generate() = %q, want %q", got, FallbackUnavailable)
	}
	if generated {
		t.Error("Generate() generated = true after a provider failure")
	}
}

func TestGenerator_Success(t *testing.T) {
	provider := &promptProvider{text: "Chicken Curry is your best bet tonight."}
	g := NewGenerator(provider, searchConfig())

	got, generated := g.Generate(context.Background(), "spicy dinner", sampleRecipes())

	if !generated {
		t.Error("Generate() generated = false on success")
	}
	if !strings.HasPrefix(got, "Chicken Curry is your best bet tonight.") {
		t.Errorf("Generate() = %q, want the provider text first", got)
	}
	if !strings.Contains(got, "\n\nVideo Links:\n") {
		t.Error("Generate() should append the video links block")
	}
	if !strings.Contains(got, "id-best: https://www.youtube.com/watch?v=id-best") {
		t.Error("video links should map recipe IDs to their placeholder URLs")
	}
	if strings.Contains(got, "id-last") {
		t.Error("video links should only cover the quoted top recipes")
	}

	// The links follow prompt rank order
	bestIdx := strings.Index(got, "id-best:")
	midIdx := strings.Index(got, "id-mid:")
	thirdIdx := strings.Index(got, "id-third:")
	if bestIdx == -1 || midIdx == -1 || thirdIdx == -1 {
		t.Fatal("expected all top recipes in the video links block")
	}
	if !(bestIdx < midIdx && midIdx < thirdIdx) {
		t.Error("video links should be ordered by similarity rank")
	}
}

func TestGenerator_PromptStructure(t *testing.T) {
	provider := &promptProvider{text: "ok"}
	g := NewGenerator(provider, searchConfig())

	g.Generate(context.Background(), "spicy dinner", sampleRecipes())
	prompt := provider.prompt

	if !strings.HasPrefix(prompt, "User query: spicy dinner\n\nHere are some recipes to consider:\n") {
		t.Errorf("prompt header wrong:\n%s", prompt)
	}

	// Top 3 by score, in order; the fourth stays out
	best := strings.Index(prompt, "- Chicken Curry (Video: https://www.youtube.com/watch?v=id-best)")
	mid := strings.Index(prompt, "- Coconut Rice (Video: https://www.youtube.com/watch?v=id-mid)")
	third := strings.Index(prompt, "- Green Salad (Video: https://www.youtube.com/watch?v=id-third)")
	if best == -1 || mid == -1 || third == -1 {
		t.Fatalf("prompt missing ranked recipes:\n%s", prompt)
	}
	if !(best < mid && mid < third) {
		t.Error("recipes should appear in descending score order")
	}
	if strings.Contains(prompt, "Plain Toast") {
		t.Error("prompt should only quote the top reranked recipes")
	}

	if !strings.Contains(prompt, "  Ingredients: chicken, curry paste, coconut milk\n") {
		t.Error("prompt should quote ingredients")
	}
	if !strings.Contains(prompt, "  Steps: brown the chicken. simmer in sauce...\n") {
		t.Error("prompt should quote directions with trailing ellipsis")
	}
	if !strings.Contains(prompt, "Please provide a helpful response considering the following user preferences:") {
		t.Error("prompt should end with the preference instructions")
	}
	if !strings.Contains(prompt, "Please limit your response to approximately 200 words.") {
		t.Error("prompt should cap the response length")
	}
}

func TestGenerator_DirectionsTruncation(t *testing.T) {
	provider := &promptProvider{text: "ok"}
	cfg := searchConfig()
	cfg.DirectionsPreview = 10
	g := NewGenerator(provider, cfg)

	recipes := []Recipe{{
		ID:         "long",
		Title:      "Slow Braise",
		Directions: "abcdefghijKLMNOP",
		Score:      0.9,
	}}
	g.Generate(context.Background(), "braise", recipes)

	if !strings.Contains(provider.prompt, "  Steps: abcdefghij...\n") {
		t.Errorf("directions should truncate to the preview length:\n%s", provider.prompt)
	}
	if strings.Contains(provider.prompt, "KLMNOP") {
		t.Error("truncated tail should not appear in the prompt")
	}
}

func TestGenerator_UntitledRecipe(t *testing.T) {
	provider := &promptProvider{text: "ok"}
	g := NewGenerator(provider, searchConfig())

	recipes := []Recipe{{ID: "blank", Title: "   ", Ingredients: "salt", Directions: "season", Score: 0.5}}
	g.Generate(context.Background(), "anything", recipes)

	if !strings.Contains(provider.prompt, "- Unnamed Recipe (Video:") {
		t.Errorf("blank titles should fall back to Unnamed Recipe:\n%s", provider.prompt)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 10, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"truncated", "abcdefgh", 5, "abcde"},
		{"multibyte safe", "crème brûlée parfait", 12, "crème brûlée"},
		{"zero keeps all", "abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.s, tt.n); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}

func TestVideoURL(t *testing.T) {
	if got := VideoURL("abc123"); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("VideoURL() = %q", got)
	}
}
