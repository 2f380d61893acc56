// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

/*
Package config provides centralized configuration management for RecipeFinder.

This package handles loading, validation, and parsing of configuration for all
application components. It ensures consistent configuration across the backend
services and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is layered with Koanf v2 (later sources win):

  - Built-in defaults
  - Optional YAML config file (config.yaml, or CONFIG_PATH)
  - Environment variables

# Configuration Structure

The package organizes configuration into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeouts, CORS)
  - MongoConfig: MongoDB recipe storage connection
  - VectorConfig: Vector index backend (local Badger or remote Weaviate)
  - EmbeddingConfig: Sentence-embedding service client
  - LLMConfig: Response-generation provider (OpenAI-compatible or Gemini)
  - SearchConfig: Query pipeline tuning
  - IndexerConfig: Batch embedding pipeline
  - AnalyticsConfig: DuckDB search analytics
  - NATSConfig: Event processing (optional, build tag nats)
  - AuthConfig: Admin authentication
  - RateLimitConfig: Per-route-group request budgets

# Environment Variables

Key variables by component:

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT or PORT: Listen port (default: 8080)
  - HTTP_READ_TIMEOUT / HTTP_WRITE_TIMEOUT: Request timeouts (default: 30s)
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)

Recipe Storage (MongoConfig):
  - MONGO_URI: Connection URI (default: mongodb://localhost:27017/)
  - MONGO_DATABASE: Database name (default: smart_recipe_db)
  - MONGO_COLLECTION: Collection name (default: recipes)

Vector Index (VectorConfig):
  - VECTOR_BACKEND: badger or weaviate (default: badger)
  - VECTOR_PATH: Badger data directory (default: ./data/vectors)
  - VECTOR_COLLECTION: Collection name (default: recipes_embeddings)
  - WEAVIATE_HOST / WEAVIATE_SCHEME / WEAVIATE_API_KEY: Remote backend

Embedding Service (EmbeddingConfig):
  - EMBEDDING_URL: Service base URL (default: http://localhost:8081)
  - EMBEDDING_MODEL: Model id (default: sentence-transformers/all-MiniLM-L6-v2)
  - EMBEDDING_DIMENSIONS: Vector width (default: 384)
  - EMBEDDING_BATCH_SIZE: Texts per request (default: 100)

Response Generation (LLMConfig):
  - LLM_PROVIDER: openai, gemini, or none (default: gemini)
  - LLM_API_KEY or GOOGLE_API_KEY: Provider API key
  - LLM_MODEL: Model name (default: gemini-1.5-flash / gpt-4o-mini)
  - LLM_TEMPERATURE: Sampling temperature (default: 0.7)
  - LLM_MAX_TOKENS: Generation budget (default: 300)

Authentication (AuthConfig):
  - ADMIN_USERNAME: Admin account name (default: admin)
  - ADMIN_PASSWORD_HASH: bcrypt hash of the admin password
  - JWT_SECRET: HS256 signing secret (min 32 chars in production)
  - AUTH_TOKEN_TTL: Token lifetime (default: 24h)

# Usage Example

Basic configuration loading:

	import "github.com/recipefinder/recipefinder/internal/config"

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	// Access configuration values
	fmt.Printf("Starting server on %s\n", cfg.Server.Addr())
	fmt.Printf("Recipes from: %s/%s\n", cfg.Mongo.Database, cfg.Mongo.Collection)
	fmt.Printf("Vector backend: %s\n", cfg.Vector.Backend)

Testing with custom configuration:

	// Override environment variables for testing
	os.Setenv("HTTP_PORT", "8080")
	os.Setenv("MONGO_URI", "mongodb://localhost:27017/")
	os.Setenv("LLM_PROVIDER", "none")

	cfg, err := config.Load()
	// Use cfg for testing

# Validation

The package performs comprehensive validation:

  - Required fields: MONGO_URI, EMBEDDING_URL
  - Numeric ranges: HTTP_PORT (1-65535), EMBEDDING_DIMENSIONS (1-8192)
  - Enumerations: VECTOR_BACKEND, LLM_PROVIDER, LOG_LEVEL
  - URL formats: MONGO_URI, EMBEDDING_URL, NATS_URL
  - Secrets: JWT_SECRET length and placeholder detection

# Defaults

Defaults inherited from the original smart_recipe_db deployment are preserved
so an existing data directory keeps working without configuration:

  - MONGO_DATABASE: smart_recipe_db, MONGO_COLLECTION: recipes
  - VECTOR_COLLECTION: recipes_embeddings
  - EMBEDDING_MODEL: sentence-transformers/all-MiniLM-L6-v2 (384 dimensions)
  - LLM: gemini-1.5-flash, temperature 0.7, 300 max tokens
  - INDEXER_RECIPE_LIMIT: 5000, INDEXER_BATCH_SIZE: 100
  - RATE_LIMIT_SEARCH: 10 requests/minute

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.

# See Also

  - config.yaml.example: Complete configuration template
  - README.md: User-facing configuration documentation
*/
package config
