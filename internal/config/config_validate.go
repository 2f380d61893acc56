// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateMongo(); err != nil {
		return err
	}

	if err := c.validateVector(); err != nil {
		return err
	}

	if err := c.validateEmbedding(); err != nil {
		return err
	}

	if err := c.validateLLM(); err != nil {
		return err
	}

	if err := c.validateSearch(); err != nil {
		return err
	}

	if err := c.validateIndexer(); err != nil {
		return err
	}

	if err := c.validateAnalytics(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout < time.Second {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be at least 1s")
	}
	return nil
}

// validateMongo validates MongoDB configuration
func (c *Config) validateMongo() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if err := validateMongoURI(c.Mongo.URI); err != nil {
		return fmt.Errorf("MONGO_URI is invalid: %w", err)
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("MONGO_DATABASE must not be empty")
	}
	if c.Mongo.Collection == "" {
		return fmt.Errorf("MONGO_COLLECTION must not be empty")
	}
	return nil
}

// validVectorBackends defines the supported vector index backends
var validVectorBackends = map[string]bool{
	VectorBackendBadger:   true,
	VectorBackendWeaviate: true,
}

// validateVector validates vector index configuration
func (c *Config) validateVector() error {
	if !validVectorBackends[c.Vector.Backend] {
		return fmt.Errorf("VECTOR_BACKEND must be one of: badger, weaviate")
	}
	if c.Vector.Collection == "" {
		return fmt.Errorf("VECTOR_COLLECTION must not be empty")
	}

	switch c.Vector.Backend {
	case VectorBackendBadger:
		if c.Vector.Path == "" {
			return fmt.Errorf("VECTOR_PATH is required when VECTOR_BACKEND=badger")
		}
	case VectorBackendWeaviate:
		if c.Vector.Weaviate.Host == "" {
			return fmt.Errorf("WEAVIATE_HOST is required when VECTOR_BACKEND=weaviate")
		}
		if c.Vector.Weaviate.Scheme != "http" && c.Vector.Weaviate.Scheme != "https" {
			return fmt.Errorf("WEAVIATE_SCHEME must be http or https")
		}
	}
	return nil
}

// Embedding limit constants
const (
	embedMinDimensions = 1
	embedMaxDimensions = 8192
	embedMaxBatchSize  = 1000
	embedMaxRetries    = 10
)

// validateEmbedding validates embedding service configuration
func (c *Config) validateEmbedding() error {
	if c.Embedding.URL == "" {
		return fmt.Errorf("EMBEDDING_URL is required")
	}
	if err := validateHTTPURL(c.Embedding.URL, "EMBEDDING_URL"); err != nil {
		return fmt.Errorf("EMBEDDING_URL is invalid: %w", err)
	}
	if c.Embedding.Dimensions < embedMinDimensions || c.Embedding.Dimensions > embedMaxDimensions {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be between %d and %d", embedMinDimensions, embedMaxDimensions)
	}
	if c.Embedding.BatchSize < 1 || c.Embedding.BatchSize > embedMaxBatchSize {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be between 1 and %d", embedMaxBatchSize)
	}
	if c.Embedding.MaxRetries < 0 || c.Embedding.MaxRetries > embedMaxRetries {
		return fmt.Errorf("EMBEDDING_MAX_RETRIES must be between 0 and %d", embedMaxRetries)
	}
	if c.Embedding.CacheSize < 0 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must be non-negative")
	}
	if c.Embedding.RateLimit < 0 {
		return fmt.Errorf("EMBEDDING_RATE_LIMIT must be non-negative (0 = unlimited)")
	}
	return nil
}

// validLLMProviders defines the supported response-generation providers
var validLLMProviders = map[string]bool{
	"openai": true,
	"gemini": true,
	"none":   true,
}

// defaultLLMModels maps providers to their default model names.
// gemini-1.5-flash matches the original deployment.
var defaultLLMModels = map[string]string{
	"gemini": "gemini-1.5-flash",
	"openai": "gpt-4o-mini",
}

// validateLLM validates LLM provider configuration and resolves the
// per-provider default model when LLM_MODEL is unset. A missing API key
// downgrades the provider to "none" at wiring time rather than failing
// startup: generation is optional, retrieval never is.
func (c *Config) validateLLM() error {
	if !validLLMProviders[c.LLM.Provider] {
		return fmt.Errorf("LLM_PROVIDER must be one of: openai, gemini, none")
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModels[c.LLM.Provider]
	}
	if c.LLM.BaseURL != "" {
		if err := validateHTTPURL(c.LLM.BaseURL, "LLM_BASE_URL"); err != nil {
			return fmt.Errorf("LLM_BASE_URL is invalid: %w", err)
		}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		return fmt.Errorf("LLM_MAX_TOKENS must be between 1 and 8192")
	}
	return nil
}

// validateSearch validates search pipeline configuration
func (c *Config) validateSearch() error {
	if c.Search.DefaultTopK < 1 {
		return fmt.Errorf("SEARCH_DEFAULT_TOP_K must be at least 1")
	}
	if c.Search.MaxTopK < c.Search.DefaultTopK {
		return fmt.Errorf("SEARCH_MAX_TOP_K must be >= SEARCH_DEFAULT_TOP_K")
	}
	if c.Search.RerankCount < 1 {
		return fmt.Errorf("SEARCH_RERANK_COUNT must be at least 1")
	}
	if c.Search.DirectionsPreview < 0 {
		return fmt.Errorf("SEARCH_DIRECTIONS_PREVIEW must be non-negative")
	}
	if c.Search.CacheType != "ttl" && c.Search.CacheType != "lfu" {
		return fmt.Errorf("SEARCH_CACHE_TYPE must be 'ttl' or 'lfu', got '%s'", c.Search.CacheType)
	}
	if c.Search.CacheCapacity < 1 {
		return fmt.Errorf("SEARCH_CACHE_CAPACITY must be at least 1")
	}
	return nil
}

// Indexer limit constants
const (
	indexerMaxBatchSize = 1000
	indexerMaxWorkers   = 64
)

// validateIndexer validates batch embedding pipeline configuration
func (c *Config) validateIndexer() error {
	if c.Indexer.RecipeLimit < 0 {
		return fmt.Errorf("INDEXER_RECIPE_LIMIT must be non-negative (0 = unlimited)")
	}
	if c.Indexer.BatchSize < 1 || c.Indexer.BatchSize > indexerMaxBatchSize {
		return fmt.Errorf("INDEXER_BATCH_SIZE must be between 1 and %d", indexerMaxBatchSize)
	}
	if c.Indexer.Workers < 1 || c.Indexer.Workers > indexerMaxWorkers {
		return fmt.Errorf("INDEXER_WORKERS must be between 1 and %d", indexerMaxWorkers)
	}
	return nil
}

// validateAnalytics validates DuckDB analytics configuration
func (c *Config) validateAnalytics() error {
	if !c.Analytics.Enabled {
		return nil
	}
	if c.Analytics.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required when ANALYTICS_ENABLED=true")
	}
	if c.Analytics.RetentionDays < 1 {
		return fmt.Errorf("ANALYTICS_RETENTION_DAYS must be at least 1")
	}
	return nil
}

// NATS limit constants
const (
	natsMinMemory    = 64 * 1024 * 1024  // 64MB
	natsMinStore     = 100 * 1024 * 1024 // 100MB
	natsMaxRetention = 365
	natsMinRetention = 1
)

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM must not be empty")
	}
	if c.NATS.MaxMemory < natsMinMemory {
		return fmt.Errorf("NATS_MAX_MEMORY must be at least 64MB (67108864 bytes)")
	}
	if c.NATS.MaxStore < natsMinStore {
		return fmt.Errorf("NATS_MAX_STORE must be at least 100MB (104857600 bytes)")
	}
	if c.NATS.StreamRetentionDays < natsMinRetention || c.NATS.StreamRetentionDays > natsMaxRetention {
		return fmt.Errorf("NATS_RETENTION_DAYS must be between 1 and 365")
	}
	return nil
}

// validateAuth validates admin authentication configuration.
// Auth is optional: with no password hash configured, admin endpoints are
// disabled but the read API stays available. When configured, the JWT secret
// must be strong enough to sign tokens with.
func (c *Config) validateAuth() error {
	if c.Auth.AdminPasswordHash == "" {
		return nil
	}

	if c.Auth.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when ADMIN_PASSWORD_HASH is set")
	}
	if !strings.HasPrefix(c.Auth.AdminPasswordHash, "$2") {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash (generate with: server --hash-password)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD_HASH is set")
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if containsPlaceholder(c.Auth.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if c.Auth.TokenTTL < time.Minute || c.Auth.TokenTTL > 30*24*time.Hour {
		return fmt.Errorf("AUTH_TOKEN_TTL must be between 1m and 720h")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1      // Minimum 1 request per minute
	maxRateLimitRequests = 100000 // Maximum 100K requests per minute
)

// validateRateLimits validates rate limiting configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateRateLimits() error {
	if c.RateLimit.Disabled {
		return nil
	}

	limits := map[string]int{
		"RATE_LIMIT_SEARCH": c.RateLimit.Search,
		"RATE_LIMIT_API":    c.RateLimit.API,
		"RATE_LIMIT_AUTH":   c.RateLimit.Auth,
		"RATE_LIMIT_ADMIN":  c.RateLimit.Admin,
		"RATE_LIMIT_HEALTH": c.RateLimit.Health,
	}
	for name, v := range limits {
		if v < minRateLimitRequests || v > maxRateLimitRequests {
			return fmt.Errorf("%s must be between %d and %d", name, minRateLimitRequests, maxRateLimitRequests)
		}
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ENVIRONMENT environment variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value. This prevents accidental deployment
// with insecure default credentials.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
