// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment variables and config files.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Data Stores:
//     - Mongo: Recipe document storage
//     - Vector: Embedding index (local Badger store or remote Weaviate)
//     - Analytics: DuckDB search analytics
//
//  2. Upstream Services:
//     - Embedding: Sentence-embedding HTTP service
//     - LLM: Response generation provider (OpenAI-compatible or Gemini)
//
//  3. Pipelines:
//     - Search: Query pipeline tuning
//     - Indexer: Batch embedding pipeline
//
//  4. Infrastructure:
//     - Server: HTTP server settings
//     - NATS: Event processing with Watermill/NATS JetStream (optional)
//     - Auth: Admin authentication
//     - RateLimit: Per-route-group request budgets
//     - Logging: Log levels and output formats
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Vector    VectorConfig    `koanf:"vector"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	LLM       LLMConfig       `koanf:"llm"`
	Search    SearchConfig    `koanf:"search"`
	Indexer   IndexerConfig   `koanf:"indexer"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	NATS      NATSConfig      `koanf:"nats"` // Optional: event-driven progress fan-out (build with -tags=nats)
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_PORT or PORT: Listen port (default: 8080)
//   - HTTP_READ_TIMEOUT / HTTP_WRITE_TIMEOUT: Request timeouts (default: 30s)
//   - HTTP_IDLE_TIMEOUT: Keep-alive idle timeout (default: 60s)
//   - HTTP_SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 10s)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	Environment     string        `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
// Production mode tightens security validation (e.g. JWT secret strength).
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MongoConfig holds MongoDB connection settings for recipe storage.
// The defaults match the original smart_recipe_db layout so existing
// deployments import cleanly.
//
// Environment Variables:
//   - MONGO_URI: Connection URI (default: mongodb://localhost:27017/)
//   - MONGO_DATABASE: Database name (default: smart_recipe_db)
//   - MONGO_COLLECTION: Recipe collection name (default: recipes)
//   - MONGO_CONNECT_TIMEOUT: Initial connect timeout (default: 10s)
//   - MONGO_QUERY_TIMEOUT: Per-query timeout (default: 15s)
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	QueryTimeout   time.Duration `koanf:"query_timeout"`
}

// Vector backend identifiers for VectorConfig.Backend.
const (
	VectorBackendBadger   = "badger"
	VectorBackendWeaviate = "weaviate"
)

// VectorConfig holds vector index settings.
//
// Two backends are supported:
//   - badger: local persistent index (default, zero external dependencies)
//   - weaviate: remote vector database
//
// Environment Variables:
//   - VECTOR_BACKEND: badger or weaviate (default: badger)
//   - VECTOR_PATH: Badger data directory (default: ./data/vectors)
//   - VECTOR_COLLECTION: Logical collection name (default: recipes_embeddings)
//   - VECTOR_SNAPSHOT_DIR: Directory for on-demand snapshots (default: ./data/snapshots)
//   - VECTOR_RESTORE_PATH: Snapshot restored at startup when the index is empty
//   - WEAVIATE_HOST / WEAVIATE_SCHEME / WEAVIATE_API_KEY: Remote backend settings
type VectorConfig struct {
	Backend     string         `koanf:"backend"`
	Path        string         `koanf:"path"`
	Collection  string         `koanf:"collection"`
	SnapshotDir string         `koanf:"snapshot_dir"`
	RestorePath string         `koanf:"restore_path"`
	Weaviate    WeaviateConfig `koanf:"weaviate"`
}

// WeaviateConfig holds remote Weaviate backend settings.
type WeaviateConfig struct {
	Host   string `koanf:"host"`   // host:port, e.g. localhost:8085
	Scheme string `koanf:"scheme"` // http or https
	APIKey string `koanf:"api_key"`
}

// EmbeddingConfig holds the sentence-embedding service settings.
// The service speaks the OpenAI embeddings wire format (POST /v1/embeddings),
// which covers text-embeddings-inference, LocalAI, Ollama and hosted APIs.
//
// Environment Variables:
//   - EMBEDDING_URL: Service base URL (default: http://localhost:8081)
//   - EMBEDDING_API_KEY: Optional bearer token
//   - EMBEDDING_MODEL: Model identifier (default: sentence-transformers/all-MiniLM-L6-v2)
//   - EMBEDDING_DIMENSIONS: Vector width (default: 384)
//   - EMBEDDING_TIMEOUT: Request timeout (default: 30s)
//   - EMBEDDING_MAX_RETRIES: Retry budget for rate-limited requests (default: 5)
//   - EMBEDDING_BATCH_SIZE: Texts per request during indexing (default: 100)
//   - EMBEDDING_CACHE_SIZE: LRU entries for query embeddings (default: 4096)
//   - EMBEDDING_RATE_LIMIT: Requests/second cap for index runs, 0 = unlimited (default: 0)
type EmbeddingConfig struct {
	URL        string        `koanf:"url"`
	APIKey     string        `koanf:"api_key"`
	Model      string        `koanf:"model"`
	Dimensions int           `koanf:"dimensions"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`
	BatchSize  int           `koanf:"batch_size"`
	CacheSize  int           `koanf:"cache_size"`
	RateLimit  float64       `koanf:"rate_limit"`
}

// LLMConfig holds the response-generation provider settings.
//
// Environment Variables:
//   - LLM_PROVIDER: openai, gemini, or none (default: gemini)
//   - LLM_API_KEY or GOOGLE_API_KEY: Provider API key
//   - LLM_MODEL: Model name (default: gemini-1.5-flash)
//   - LLM_BASE_URL: Override the provider endpoint
//   - LLM_TEMPERATURE: Sampling temperature (default: 0.7)
//   - LLM_MAX_TOKENS: Generation budget (default: 300)
//   - LLM_TIMEOUT: Request timeout (default: 30s)
//
// With provider "none" the search pipeline skips generation and serves
// retrieval results with a static notice.
type LLMConfig struct {
	Provider    string        `koanf:"provider"`
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	BaseURL     string        `koanf:"base_url"`
	Temperature float64       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
	Timeout     time.Duration `koanf:"timeout"`
}

// SearchConfig holds query pipeline tuning.
//
// Environment Variables:
//   - SEARCH_DEFAULT_TOP_K: Results when the request omits top_k (default: 5)
//   - SEARCH_MAX_TOP_K: Upper bound for requested top_k (default: 50)
//   - SEARCH_RERANK_COUNT: Recipes passed to the LLM prompt (default: 3)
//   - SEARCH_DIRECTIONS_PREVIEW: Direction characters quoted in the prompt (default: 200)
//   - SEARCH_CACHE_TTL: Response cache lifetime (default: 5m)
//   - SEARCH_CACHE_TYPE: Response cache strategy, "ttl" or "lfu" (default: ttl)
//   - SEARCH_CACHE_CAPACITY: Max cached responses, LFU only (default: 10000)
//   - SEARCH_SUGGEST_REFRESH: Title snapshot refresh interval for autocomplete (default: 5m)
type SearchConfig struct {
	DefaultTopK       int           `koanf:"default_top_k"`
	MaxTopK           int           `koanf:"max_top_k"`
	RerankCount       int           `koanf:"rerank_count"`
	DirectionsPreview int           `koanf:"directions_preview"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	CacheType         string        `koanf:"cache_type"`
	CacheCapacity     int           `koanf:"cache_capacity"`
	SuggestRefresh    time.Duration `koanf:"suggest_refresh"`
}

// IndexerConfig holds batch embedding pipeline settings.
//
// Environment Variables:
//   - INDEXER_RECIPE_LIMIT: Max recipes per run (default: 5000)
//   - INDEXER_BATCH_SIZE: Recipes per embedding batch (default: 100)
//   - INDEXER_WORKERS: Concurrent embedding batches (default: 4)
//   - INDEXER_RUN_ON_START: Index at startup when the index is empty (default: true)
//   - INDEXER_JOURNAL_DIR: Write-ahead journal directory (default: ./data/journal,
//     requires -tags=wal)
type IndexerConfig struct {
	RecipeLimit int    `koanf:"recipe_limit"`
	BatchSize   int    `koanf:"batch_size"`
	Workers     int    `koanf:"workers"`
	RunOnStart  bool   `koanf:"run_on_start"`
	JournalDir  string `koanf:"journal_dir"`
}

// AnalyticsConfig holds DuckDB search analytics settings.
//
// Environment Variables:
//   - ANALYTICS_ENABLED: Record search analytics (default: true)
//   - DUCKDB_PATH: Database file path (default: ./data/analytics.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit (default: 512MB)
//   - DUCKDB_THREADS: Worker threads, 0 = NumCPU (default: 0)
//   - ANALYTICS_RETENTION_DAYS: Prune window for search rows (default: 90)
type AnalyticsConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Path          string `koanf:"path"`
	MaxMemory     string `koanf:"max_memory"`
	Threads       int    `koanf:"threads"`
	RetentionDays int    `koanf:"retention_days"`
}

// NATSConfig holds event processing settings.
// Only honored when built with -tags=nats; without the tag the indexer
// notifies WebSocket clients directly.
//
// Environment Variables:
//   - NATS_ENABLED: Enable event publishing (default: false)
//   - NATS_URL: Server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Run an embedded NATS server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory (default: ./data/nats)
//   - NATS_STREAM: JetStream stream name (default: RECIPEFINDER)
//   - NATS_MAX_MEMORY / NATS_MAX_STORE: JetStream limits
//   - NATS_RETENTION_DAYS: Stream retention (default: 7)
type NATSConfig struct {
	Enabled             bool          `koanf:"enabled"`
	URL                 string        `koanf:"url"`
	EmbeddedServer      bool          `koanf:"embedded_server"`
	StoreDir            string        `koanf:"store_dir"`
	StreamName          string        `koanf:"stream_name"`
	MaxMemory           int64         `koanf:"max_memory"`
	MaxStore            int64         `koanf:"max_store"`
	StreamRetentionDays int           `koanf:"stream_retention_days"`
	ReconnectWait       time.Duration `koanf:"reconnect_wait"`
	MaxReconnects       int           `koanf:"max_reconnects"`
}

// AuthConfig holds admin authentication settings.
// Read endpoints are open; mutating and admin endpoints require a bearer
// token obtained from POST /api/v1/auth/login.
//
// Environment Variables:
//   - ADMIN_USERNAME: Admin account name (default: admin)
//   - ADMIN_PASSWORD_HASH: bcrypt hash of the admin password
//     (generate with: server --hash-password)
//   - JWT_SECRET: HS256 signing secret (32+ characters in production)
//   - AUTH_TOKEN_TTL: Token lifetime (default: 24h)
//
// When ADMIN_PASSWORD_HASH is empty, authentication is disabled: login
// always fails and admin endpoints accept unauthenticated requests.
// Intended for single-user private deployments only.
type AuthConfig struct {
	AdminUsername     string        `koanf:"admin_username"`
	AdminPasswordHash string        `koanf:"admin_password_hash"`
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
}

// Enabled reports whether admin authentication is configured.
func (a AuthConfig) Enabled() bool {
	return a.AdminPasswordHash != "" && a.JWTSecret != ""
}

// RateLimitConfig holds per-route-group request budgets (requests per minute).
//
// Environment Variables:
//   - RATE_LIMIT_SEARCH: POST /search budget (default: 10)
//   - RATE_LIMIT_API: General API budget (default: 100)
//   - RATE_LIMIT_AUTH: Login budget (default: 5)
//   - RATE_LIMIT_ADMIN: Admin operation budget (default: 10)
//   - RATE_LIMIT_HEALTH: Health check budget (default: 1000)
//   - DISABLE_RATE_LIMIT: Disable all limits, test environments only (default: false)
type RateLimitConfig struct {
	Search   int  `koanf:"search"`
	API      int  `koanf:"api"`
	Auth     int  `koanf:"auth"`
	Admin    int  `koanf:"admin"`
	Health   int  `koanf:"health"`
	Disabled bool `koanf:"disabled"`
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
