// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recipefinder/config.yaml",
	"/etc/recipefinder/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
// Defaults inherited from the original smart_recipe_db deployment (Mongo URI,
// database/collection names, embedding model, LLM tuning, indexer limits) are
// kept so an existing data directory keeps working without configuration.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			Environment:     "development", // Set ENVIRONMENT=production for production checks
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017/",
			Database:       "smart_recipe_db",
			Collection:     "recipes",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   15 * time.Second,
		},
		Vector: VectorConfig{
			Backend:     "badger",
			Path:        "./data/vectors",
			Collection:  "recipes_embeddings",
			SnapshotDir: "./data/snapshots",
			RestorePath: "",
			Weaviate: WeaviateConfig{
				Host:   "localhost:8085",
				Scheme: "http",
				APIKey: "",
			},
		},
		Embedding: EmbeddingConfig{
			URL:        "http://localhost:8081",
			APIKey:     "",
			Model:      "sentence-transformers/all-MiniLM-L6-v2",
			Dimensions: 384,
			Timeout:    30 * time.Second,
			MaxRetries: 5,
			BatchSize:  100,
			CacheSize:  4096,
			RateLimit:  0, // Unlimited
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			APIKey:      "",
			Model:       "", // Resolved per provider in Validate()
			BaseURL:     "",
			Temperature: 0.7,
			MaxTokens:   300,
			Timeout:     30 * time.Second,
		},
		Search: SearchConfig{
			DefaultTopK:       5,
			MaxTopK:           50,
			RerankCount:       3,
			DirectionsPreview: 200,
			CacheTTL:          5 * time.Minute,
			CacheType:         "ttl",
			CacheCapacity:     10000,
			SuggestRefresh:    5 * time.Minute,
		},
		Indexer: IndexerConfig{
			RecipeLimit: 5000,
			BatchSize:   100,
			Workers:     4,
			RunOnStart:  true,
			JournalDir:  "./data/journal",
		},
		Analytics: AnalyticsConfig{
			Enabled:       true,
			Path:          "./data/analytics.duckdb",
			MaxMemory:     "512MB",
			Threads:       0, // 0 = use runtime.NumCPU()
			RetentionDays: 90,
		},
		NATS: NATSConfig{
			Enabled:             false, // Opt-in: direct WebSocket notification without it
			URL:                 "nats://127.0.0.1:4222",
			EmbeddedServer:      true,
			StoreDir:            "./data/nats",
			StreamName:          "RECIPEFINDER",
			MaxMemory:           256 << 20, // 256MB
			MaxStore:            1 << 30,   // 1GB
			StreamRetentionDays: 7,
			ReconnectWait:       2 * time.Second,
			MaxReconnects:       60,
		},
		Auth: AuthConfig{
			AdminUsername:     DefaultAdminUsername,
			AdminPasswordHash: "",
			JWTSecret:         "",
			TokenTTL:          24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Search:   10, // The original route budget: 10 searches/minute
			API:      100,
			Auth:     5,
			Admin:    10,
			Health:   1000,
			Disabled: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// MONGO_URI -> mongo.uri
	// EMBEDDING_BATCH_SIZE -> embedding.batch_size
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Only explicitly mapped variables are honored; everything else is skipped so
// unrelated environment noise never pollutes the configuration.
//
// Examples:
//   - MONGO_URI -> mongo.uri
//   - VECTOR_BACKEND -> vector.backend
//   - EMBEDDING_MODEL -> embedding.model
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"port":                  "server.port",
		"http_read_timeout":     "server.read_timeout",
		"http_write_timeout":    "server.write_timeout",
		"http_idle_timeout":     "server.idle_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"cors_origins":          "server.cors_origins",
		"environment":           "server.environment",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Mongo mappings (MONGO_URI is the original deployment variable)
		"mongo_uri":             "mongo.uri",
		"mongo_database":        "mongo.database",
		"mongo_collection":      "mongo.collection",
		"mongo_connect_timeout": "mongo.connect_timeout",
		"mongo_query_timeout":   "mongo.query_timeout",

		// Vector index mappings (CHROMA_DB_PATH honored for original deployments)
		"vector_backend":      "vector.backend",
		"vector_path":         "vector.path",
		"chroma_db_path":      "vector.path",
		"vector_collection":   "vector.collection",
		"vector_snapshot_dir": "vector.snapshot_dir",
		"vector_restore_path": "vector.restore_path",
		"weaviate_host":       "vector.weaviate.host",
		"weaviate_scheme":     "vector.weaviate.scheme",
		"weaviate_api_key":    "vector.weaviate.api_key",

		// Embedding service mappings
		"embedding_url":         "embedding.url",
		"embedding_api_key":     "embedding.api_key",
		"embedding_model":       "embedding.model",
		"embedding_dimensions":  "embedding.dimensions",
		"embedding_timeout":     "embedding.timeout",
		"embedding_max_retries": "embedding.max_retries",
		"embedding_batch_size":  "embedding.batch_size",
		"embedding_cache_size":  "embedding.cache_size",
		"embedding_rate_limit":  "embedding.rate_limit",

		// LLM mappings (GOOGLE_API_KEY is the original deployment variable)
		"llm_provider":    "llm.provider",
		"llm_api_key":     "llm.api_key",
		"google_api_key":  "llm.api_key",
		"llm_model":       "llm.model",
		"llm_base_url":    "llm.base_url",
		"llm_temperature": "llm.temperature",
		"llm_max_tokens":  "llm.max_tokens",
		"llm_timeout":     "llm.timeout",

		// Search pipeline mappings
		"search_default_top_k":      "search.default_top_k",
		"search_max_top_k":          "search.max_top_k",
		"search_rerank_count":       "search.rerank_count",
		"search_directions_preview": "search.directions_preview",
		"search_cache_ttl":          "search.cache_ttl",
		"search_cache_type":         "search.cache_type",
		"search_cache_capacity":     "search.cache_capacity",
		"search_suggest_refresh":    "search.suggest_refresh",

		// Indexer mappings (RECIPE_LIMIT/BATCH_SIZE are the original variables)
		"indexer_recipe_limit": "indexer.recipe_limit",
		"recipe_limit":         "indexer.recipe_limit",
		"indexer_batch_size":   "indexer.batch_size",
		"batch_size":           "indexer.batch_size",
		"indexer_workers":      "indexer.workers",
		"indexer_run_on_start": "indexer.run_on_start",
		"indexer_journal_dir":  "indexer.journal_dir",

		// Analytics mappings
		"analytics_enabled":        "analytics.enabled",
		"duckdb_path":              "analytics.path",
		"duckdb_max_memory":        "analytics.max_memory",
		"duckdb_threads":           "analytics.threads",
		"analytics_retention_days": "analytics.retention_days",

		// NATS mappings
		"nats_enabled":        "nats.enabled",
		"nats_url":            "nats.url",
		"nats_embedded":       "nats.embedded_server",
		"nats_store_dir":      "nats.store_dir",
		"nats_stream":         "nats.stream_name",
		"nats_max_memory":     "nats.max_memory",
		"nats_max_store":      "nats.max_store",
		"nats_retention_days": "nats.stream_retention_days",
		"nats_reconnect_wait": "nats.reconnect_wait",
		"nats_max_reconnects": "nats.max_reconnects",

		// Auth mappings
		"admin_username":      "auth.admin_username",
		"admin_password_hash": "auth.admin_password_hash",
		"jwt_secret":          "auth.jwt_secret",
		"auth_token_ttl":      "auth.token_ttl",

		// Rate limit mappings
		"rate_limit_search":  "ratelimit.search",
		"rate_limit_api":     "ratelimit.api",
		"rate_limit_auth":    "ratelimit.auth",
		"rate_limit_admin":   "ratelimit.admin",
		"rate_limit_health":  "ratelimit.health",
		"disable_rate_limit": "ratelimit.disabled",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage.
// This is useful for:
//   - Custom configuration sources
//   - Testing with mock configurations
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
