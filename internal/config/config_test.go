// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// Test helpers to reduce cyclomatic complexity

// setupTestEnv sets up test environment variables and returns cleanup function
func setupTestEnv(t *testing.T, envVars map[string]string) func() {
	t.Helper()
	os.Clearenv()
	for k, v := range envVars {
		if err := os.Setenv(k, v); err != nil {
			t.Fatalf("failed to set env var %s: %v", k, err)
		}
	}
	return func() {
		os.Clearenv()
	}
}

// assertNoError checks that error is nil
func assertNoError(t *testing.T, err error, testName string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", testName, err)
	}
}

// assertErrorContains checks that error occurred and contains the message
func assertErrorContains(t *testing.T, err error, expectedMsg, testName string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got nil", testName, expectedMsg)
	}
	if expectedMsg != "" && !strings.Contains(err.Error(), expectedMsg) {
		t.Errorf("%s: error = %v, want error containing %q", testName, err, expectedMsg)
	}
}

// assertStringEqual checks string equality
func assertStringEqual(t *testing.T, got, want, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertIntEqual checks integer equality
func assertIntEqual(t *testing.T, got, want int, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertBoolEqual checks boolean equality
func assertBoolEqual(t *testing.T, got, want bool, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

// assertDurationEqual checks time.Duration equality
func assertDurationEqual(t *testing.T, got, want time.Duration, field string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", field, got, want)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanup := setupTestEnv(t, nil)
	defer cleanup()

	cfg, err := Load()
	assertNoError(t, err, "Load with defaults")
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}

	assertStringEqual(t, cfg.Server.Host, "0.0.0.0", "Server.Host")
	assertIntEqual(t, cfg.Server.Port, 8080, "Server.Port")
	assertDurationEqual(t, cfg.Server.ShutdownTimeout, 10*time.Second, "Server.ShutdownTimeout")

	// Original smart_recipe_db deployment compatibility
	assertStringEqual(t, cfg.Mongo.URI, "mongodb://localhost:27017/", "Mongo.URI")
	assertStringEqual(t, cfg.Mongo.Database, "smart_recipe_db", "Mongo.Database")
	assertStringEqual(t, cfg.Mongo.Collection, "recipes", "Mongo.Collection")
	assertStringEqual(t, cfg.Vector.Collection, "recipes_embeddings", "Vector.Collection")
	assertStringEqual(t, cfg.Vector.Backend, "badger", "Vector.Backend")
	assertStringEqual(t, cfg.Embedding.Model, "sentence-transformers/all-MiniLM-L6-v2", "Embedding.Model")
	assertIntEqual(t, cfg.Embedding.Dimensions, 384, "Embedding.Dimensions")
	assertIntEqual(t, cfg.Indexer.RecipeLimit, 5000, "Indexer.RecipeLimit")
	assertIntEqual(t, cfg.Indexer.BatchSize, 100, "Indexer.BatchSize")

	// LLM defaults match the original generation settings
	assertStringEqual(t, cfg.LLM.Provider, "gemini", "LLM.Provider")
	assertStringEqual(t, cfg.LLM.Model, "gemini-1.5-flash", "LLM.Model")
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("LLM.Temperature = %v, want 0.7", cfg.LLM.Temperature)
	}
	assertIntEqual(t, cfg.LLM.MaxTokens, 300, "LLM.MaxTokens")

	assertIntEqual(t, cfg.Search.DefaultTopK, 5, "Search.DefaultTopK")
	assertIntEqual(t, cfg.Search.RerankCount, 3, "Search.RerankCount")
	assertIntEqual(t, cfg.Search.DirectionsPreview, 200, "Search.DirectionsPreview")
	assertIntEqual(t, cfg.RateLimit.Search, 10, "RateLimit.Search")
	assertBoolEqual(t, cfg.Analytics.Enabled, true, "Analytics.Enabled")
	assertBoolEqual(t, cfg.NATS.Enabled, false, "NATS.Enabled")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	cleanup := setupTestEnv(t, map[string]string{
		"HTTP_PORT":         "9090",
		"MONGO_URI":         "mongodb://db.internal:27017/",
		"MONGO_DATABASE":    "recipes_prod",
		"VECTOR_BACKEND":    "weaviate",
		"WEAVIATE_HOST":     "weaviate.internal:8085",
		"WEAVIATE_SCHEME":   "https",
		"EMBEDDING_URL":     "http://embeddings.internal:8081",
		"LLM_PROVIDER":      "openai",
		"LLM_MODEL":         "gpt-4o",
		"RATE_LIMIT_SEARCH": "25",
	})
	defer cleanup()

	cfg, err := Load()
	assertNoError(t, err, "Load with env overrides")

	assertIntEqual(t, cfg.Server.Port, 9090, "Server.Port")
	assertStringEqual(t, cfg.Mongo.URI, "mongodb://db.internal:27017/", "Mongo.URI")
	assertStringEqual(t, cfg.Mongo.Database, "recipes_prod", "Mongo.Database")
	assertStringEqual(t, cfg.Vector.Backend, "weaviate", "Vector.Backend")
	assertStringEqual(t, cfg.Vector.Weaviate.Host, "weaviate.internal:8085", "Vector.Weaviate.Host")
	assertStringEqual(t, cfg.Vector.Weaviate.Scheme, "https", "Vector.Weaviate.Scheme")
	assertStringEqual(t, cfg.LLM.Provider, "openai", "LLM.Provider")
	assertStringEqual(t, cfg.LLM.Model, "gpt-4o", "LLM.Model")
	assertIntEqual(t, cfg.RateLimit.Search, 25, "RateLimit.Search")
}

func TestLoad_OriginalDeploymentVariables(t *testing.T) {
	// The original deployment configured Chroma and Gemini through these
	// variables; they must keep working.
	cleanup := setupTestEnv(t, map[string]string{
		"CHROMA_DB_PATH": "/data/chroma_db",
		"GOOGLE_API_KEY": "test-google-key",
		"RECIPE_LIMIT":   "2500",
		"BATCH_SIZE":     "50",
	})
	defer cleanup()

	cfg, err := Load()
	assertNoError(t, err, "Load with original variables")

	assertStringEqual(t, cfg.Vector.Path, "/data/chroma_db", "Vector.Path")
	assertStringEqual(t, cfg.LLM.APIKey, "test-google-key", "LLM.APIKey")
	assertIntEqual(t, cfg.Indexer.RecipeLimit, 2500, "Indexer.RecipeLimit")
	assertIntEqual(t, cfg.Indexer.BatchSize, 50, "Indexer.BatchSize")
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	cleanup := setupTestEnv(t, map[string]string{
		"CORS_ORIGINS": "https://recipes.example.com, https://app.example.com",
	})
	defer cleanup()

	cfg, err := Load()
	assertNoError(t, err, "Load with CORS origins")

	if len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins length = %d, want 2", len(cfg.Server.CORSOrigins))
	}
	assertStringEqual(t, cfg.Server.CORSOrigins[0], "https://recipes.example.com", "CORSOrigins[0]")
	assertStringEqual(t, cfg.Server.CORSOrigins[1], "https://app.example.com", "CORSOrigins[1]")
}

func TestLoad_UnmappedEnvVarsIgnored(t *testing.T) {
	cleanup := setupTestEnv(t, map[string]string{
		"RANDOM_UNRELATED_VAR": "should-not-break-anything",
		"PATH":                 "/usr/bin",
	})
	defer cleanup()

	_, err := Load()
	assertNoError(t, err, "Load with unmapped env vars")
}

func TestValidate_ServerPort(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid port", 8080, false},
		{"minimum port", 1, false},
		{"maximum port", 65535, false},
		{"zero port", 0, true},
		{"negative port", -1, true},
		{"port too large", 70000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Server.Port = tt.port
			err := cfg.Validate()
			if tt.wantErr {
				assertErrorContains(t, err, "HTTP_PORT", tt.name)
			} else {
				assertNoError(t, err, tt.name)
			}
		})
	}
}

func TestValidate_MongoURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr string
	}{
		{"standard uri", "mongodb://localhost:27017/", ""},
		{"srv uri", "mongodb+srv://cluster0.example.mongodb.net/", ""},
		{"uri with credentials", "mongodb://user:pass@db:27017/", ""},
		{"empty uri", "", "MONGO_URI is required"},
		{"http scheme", "http://localhost:27017", "MONGO_URI is invalid"},
		{"bare host", "localhost:27017", "MONGO_URI is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Mongo.URI = tt.uri
			err := cfg.Validate()
			if tt.wantErr != "" {
				assertErrorContains(t, err, tt.wantErr, tt.name)
			} else {
				assertNoError(t, err, tt.name)
			}
		})
	}
}

func TestValidate_VectorBackend(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "badger backend with path",
			mutate: func(c *Config) { c.Vector.Backend = "badger"; c.Vector.Path = "/data/vectors" },
		},
		{
			name: "weaviate backend with host",
			mutate: func(c *Config) {
				c.Vector.Backend = "weaviate"
				c.Vector.Weaviate.Host = "localhost:8085"
			},
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Vector.Backend = "pinecone" },
			wantErr: "VECTOR_BACKEND",
		},
		{
			name:    "badger without path",
			mutate:  func(c *Config) { c.Vector.Backend = "badger"; c.Vector.Path = "" },
			wantErr: "VECTOR_PATH",
		},
		{
			name: "weaviate without host",
			mutate: func(c *Config) {
				c.Vector.Backend = "weaviate"
				c.Vector.Weaviate.Host = ""
			},
			wantErr: "WEAVIATE_HOST",
		},
		{
			name:    "empty collection",
			mutate:  func(c *Config) { c.Vector.Collection = "" },
			wantErr: "VECTOR_COLLECTION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				assertErrorContains(t, err, tt.wantErr, tt.name)
			} else {
				assertNoError(t, err, tt.name)
			}
		})
	}
}

func TestValidate_Embedding(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing url",
			mutate:  func(c *Config) { c.Embedding.URL = "" },
			wantErr: "EMBEDDING_URL is required",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *Config) { c.Embedding.URL = "ftp://embeddings:8081" },
			wantErr: "EMBEDDING_URL is invalid",
		},
		{
			name:    "zero dimensions",
			mutate:  func(c *Config) { c.Embedding.Dimensions = 0 },
			wantErr: "EMBEDDING_DIMENSIONS",
		},
		{
			name:    "excessive batch size",
			mutate:  func(c *Config) { c.Embedding.BatchSize = 5000 },
			wantErr: "EMBEDDING_BATCH_SIZE",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Embedding.RateLimit = -1 },
			wantErr: "EMBEDDING_RATE_LIMIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				assertErrorContains(t, err, tt.wantErr, tt.name)
			} else {
				assertNoError(t, err, tt.name)
			}
		})
	}
}

func TestValidate_LLM(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		model     string
		wantErr   string
		wantModel string
	}{
		{"gemini default model", "gemini", "", "", "gemini-1.5-flash"},
		{"openai default model", "openai", "", "", "gpt-4o-mini"},
		{"explicit model kept", "gemini", "gemini-2.0-pro", "", "gemini-2.0-pro"},
		{"none provider", "none", "", "", ""},
		{"unknown provider", "claude", "", "LLM_PROVIDER", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.LLM.Provider = tt.provider
			cfg.LLM.Model = tt.model
			err := cfg.Validate()
			if tt.wantErr != "" {
				assertErrorContains(t, err, tt.wantErr, tt.name)
				return
			}
			assertNoError(t, err, tt.name)
			assertStringEqual(t, cfg.LLM.Model, tt.wantModel, "LLM.Model")
		})
	}
}

func TestValidate_LLMTuning(t *testing.T) {
	cfg := defaultConfig()
	cfg.LLM.Temperature = 3.5
	assertErrorContains(t, cfg.Validate(), "LLM_TEMPERATURE", "temperature out of range")

	cfg = defaultConfig()
	cfg.LLM.MaxTokens = 0
	assertErrorContains(t, cfg.Validate(), "LLM_MAX_TOKENS", "max tokens out of range")
}

func TestValidate_Search(t *testing.T) {
	cfg := defaultConfig()
	cfg.Search.DefaultTopK = 0
	assertErrorContains(t, cfg.Validate(), "SEARCH_DEFAULT_TOP_K", "zero default top-k")

	cfg = defaultConfig()
	cfg.Search.MaxTopK = 2
	cfg.Search.DefaultTopK = 5
	assertErrorContains(t, cfg.Validate(), "SEARCH_MAX_TOP_K", "max below default")

	cfg = defaultConfig()
	cfg.Search.CacheType = "redis"
	assertErrorContains(t, cfg.Validate(), "SEARCH_CACHE_TYPE", "unknown cache type")

	cfg = defaultConfig()
	cfg.Search.CacheType = "lfu"
	cfg.Search.CacheCapacity = 0
	assertErrorContains(t, cfg.Validate(), "SEARCH_CACHE_CAPACITY", "zero lfu capacity")
}

func TestValidate_Auth(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "auth disabled (no hash)",
			mutate: func(c *Config) { c.Auth.AdminPasswordHash = "" },
		},
		{
			name: "valid auth config",
			mutate: func(c *Config) {
				c.Auth.AdminPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
				c.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
			},
		},
		{
			name: "non-bcrypt hash",
			mutate: func(c *Config) {
				c.Auth.AdminPasswordHash = "plaintext-password"
				c.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
			},
			wantErr: "ADMIN_PASSWORD_HASH",
		},
		{
			name: "missing jwt secret",
			mutate: func(c *Config) {
				c.Auth.AdminPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
				c.Auth.JWTSecret = ""
			},
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "short jwt secret in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Auth.AdminPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
				c.Auth.JWTSecret = "short"
			},
			wantErr: "at least 32 characters",
		},
		{
			name: "placeholder jwt secret",
			mutate: func(c *Config) {
				c.Auth.AdminPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
				c.Auth.JWTSecret = "CHANGEME-0123456789abcdef0123456789"
			},
			wantErr: "placeholder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				assertErrorContains(t, err, tt.wantErr, tt.name)
			} else {
				assertNoError(t, err, tt.name)
			}
		})
	}
}

func TestValidate_NATS(t *testing.T) {
	cfg := defaultConfig()
	cfg.NATS.Enabled = true
	assertNoError(t, cfg.Validate(), "default NATS config when enabled")

	cfg = defaultConfig()
	cfg.NATS.Enabled = true
	cfg.NATS.URL = "http://localhost:4222"
	assertErrorContains(t, cfg.Validate(), "NATS_URL", "http scheme rejected")

	cfg = defaultConfig()
	cfg.NATS.Enabled = true
	cfg.NATS.MaxMemory = 1024
	assertErrorContains(t, cfg.Validate(), "NATS_MAX_MEMORY", "memory too small")

	// Disabled NATS skips validation entirely
	cfg = defaultConfig()
	cfg.NATS.Enabled = false
	cfg.NATS.URL = "garbage"
	assertNoError(t, cfg.Validate(), "disabled NATS skips URL validation")
}

func TestValidate_RateLimits(t *testing.T) {
	cfg := defaultConfig()
	cfg.RateLimit.Search = 0
	assertErrorContains(t, cfg.Validate(), "RATE_LIMIT_SEARCH", "zero search limit")

	cfg = defaultConfig()
	cfg.RateLimit.Disabled = true
	cfg.RateLimit.Search = 0
	assertNoError(t, cfg.Validate(), "disabled limits skip bounds")
}

func TestValidate_Logging(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "verbose"
	assertErrorContains(t, cfg.Validate(), "LOG_LEVEL", "invalid level")

	cfg = defaultConfig()
	cfg.Logging.Format = "xml"
	assertErrorContains(t, cfg.Validate(), "LOG_FORMAT", "invalid format")
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"PRODUCTION", true},
		{"development", false},
		{"dev", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := defaultConfig()
		cfg.Server.Environment = tt.env
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() with env %q = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 9999}
	assertStringEqual(t, cfg.Addr(), "127.0.0.1:9999", "Addr()")
}

func TestAuthConfig_Enabled(t *testing.T) {
	a := AuthConfig{}
	assertBoolEqual(t, a.Enabled(), false, "empty auth Enabled()")

	a = AuthConfig{AdminPasswordHash: "$2a$10$hash", JWTSecret: "secret"}
	assertBoolEqual(t, a.Enabled(), true, "configured auth Enabled()")
}

func TestContainsPlaceholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"CHANGEME", true},
		{"my-changeme-secret", true},
		{"YOUR_SECRET_HERE", true},
		{"replace-this-value", true},
		{"a-genuinely-random-0a8f3bc2d91e", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := containsPlaceholder(tt.value); got != tt.want {
			t.Errorf("containsPlaceholder(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
