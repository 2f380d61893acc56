// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package answer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

// Provider identifiers for LLMConfig.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Fallback texts served when generation cannot run. Answer generation
// failure never fails a search; retrieval results still go out. The
// wording lives in models alongside the response shapes it appears in.
const (
	FallbackNoRecipes   = models.NoResultsMessage
	FallbackUnavailable = models.GenerationUnavailableMessage
)

// Provider generates natural-language text from a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewProvider builds the configured provider. Provider "none" returns
// nil; the Generator serves the fallback text for a nil provider.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg), nil
	case ProviderGemini, "":
		return NewGeminiProvider(cfg), nil
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Recipe is the retrieval context a prompt is built from. Ingredients
// and Directions are display strings (", " and ". " joined).
type Recipe struct {
	ID          string
	Title       string
	Ingredients string
	Directions  string
	Score       float32
}

// VideoURL returns the placeholder video link for a recipe. The links
// are not real uploads; the frontend treats them as stand-ins until a
// video source exists.
func VideoURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// Generator turns retrieved recipes into a conversational answer. The
// highest-scoring recipes (rerank count, default 3) are quoted in the
// prompt with directions truncated to a preview length (default 200
// characters).
type Generator struct {
	provider          Provider
	rerankCount       int
	directionsPreview int
}

// NewGenerator creates a Generator. A nil provider is allowed and
// yields the fallback text on every call.
func NewGenerator(provider Provider, cfg *config.SearchConfig) *Generator {
	rerank := cfg.RerankCount
	if rerank <= 0 {
		rerank = 3
	}
	preview := cfg.DirectionsPreview
	if preview <= 0 {
		preview = 200
	}
	return &Generator{
		provider:          provider,
		rerankCount:       rerank,
		directionsPreview: preview,
	}
}

// Enabled reports whether a provider is configured. Disabled
// generators serve the fallback text on every call.
func (g *Generator) Enabled() bool {
	return g.provider != nil
}

// ProviderName reports the active provider for telemetry, or "none"
// when generation is disabled.
func (g *Generator) ProviderName() string {
	if g.provider == nil {
		return ProviderNone
	}
	return g.provider.Name()
}

// Generate produces the answer text for a search. On success the text
// ends with a "Video Links:" block for the quoted recipes and the
// second return is true. Provider failures and a missing provider
// degrade to FallbackUnavailable with generated false.
func (g *Generator) Generate(ctx context.Context, query string, recipes []Recipe) (string, bool) {
	if len(recipes) == 0 {
		return FallbackNoRecipes, false
	}
	if g.provider == nil {
		metrics.LLMFallbacksTotal.Inc()
		return FallbackUnavailable, false
	}

	prompt, links := g.buildPrompt(query, recipes)

	start := time.Now()
	text, err := g.provider.Generate(ctx, prompt)
	metrics.RecordLLMRequest(g.provider.Name(), time.Since(start), err)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("provider", g.provider.Name()).
			Msg("Answer generation failed, serving fallback")
		metrics.LLMFallbacksTotal.Inc()
		return FallbackUnavailable, false
	}

	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\nVideo Links:\n")
	for i, link := range links {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(link.id)
		sb.WriteString(": ")
		sb.WriteString(link.url)
	}
	return strings.TrimSpace(sb.String()), true
}

type videoLink struct {
	id  string
	url string
}

// buildPrompt assembles the generation prompt from the top recipes by
// similarity score and returns the video links quoted in it, in rank
// order.
func (g *Generator) buildPrompt(query string, recipes []Recipe) (string, []videoLink) {
	ranked := make([]Recipe, len(recipes))
	copy(ranked, recipes)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if len(ranked) > g.rerankCount {
		ranked = ranked[:g.rerankCount]
	}

	lines := []string{
		"User query: " + query,
		"",
		"Here are some recipes to consider:",
	}
	links := make([]videoLink, 0, len(ranked))

	for _, r := range ranked {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "Unnamed Recipe"
		}

		url := VideoURL(r.ID)
		links = append(links, videoLink{id: r.ID, url: url})

		lines = append(lines,
			fmt.Sprintf("- %s (Video: %s)", title, url),
			"  Ingredients: "+r.Ingredients,
			"  Steps: "+truncateRunes(strings.TrimSpace(r.Directions), g.directionsPreview)+"...",
			"",
		)
	}

	lines = append(lines,
		"Please provide a helpful response considering the following user preferences:\n"+
			"1. Main preferences: dietary restrictions, cuisine type, or cooking style.\n"+
			"2. Ease of preparation: simple to prepare, minimal ingredients.\n"+
			"3. Flavor and enjoyment: balanced and enjoyable dishes.\n"+
			"4. Additional criteria: health focus, specific cuisines.\n"+
			"Additionally, compare the recipes and explain why other options may be less suitable.\n"+
			"Suggest a complementary dish or side if applicable.\n\n"+
			"Please limit your response to approximately 200 words.",
	)

	return strings.Join(lines, "\n"), links
}

// truncateRunes shortens s to at most n runes. Directions may contain
// multi-byte characters, so byte slicing would corrupt them.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
