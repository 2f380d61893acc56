// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package main is the entry point for the RecipeFinder server.
//
// RecipeFinder is a semantic recipe search service: recipes live in
// MongoDB, their embeddings in a local badger vector index (or a remote
// Weaviate collection), and natural-language answers come from an LLM
// provider grounded on the retrieved recipes.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and config file via Koanf v2
//  2. Recipe store: MongoDB connection and index creation
//  3. Vector index: badger (default) or Weaviate, with optional
//     snapshot restore into an empty index
//  4. Embedding chain: OpenAI-wire HTTP client wrapped by an LRU cache
//     and a circuit breaker
//  5. Answer generation: Gemini or OpenAI provider, or none
//  6. Analytics: DuckDB search log with a buffered async writer
//  7. NATS (optional): JetStream progress fan-out across instances
//  8. Supervisor tree: WebSocket hub, indexer, retention, suggestion
//     refresh, and the HTTP server under suture supervision
//
// # Build Tags
//
// Optional build tags enable additional functionality:
//
//	go build -tags "nats" ./cmd/server      # JetStream progress events
//	go build -tags "wal" ./cmd/server       # Durable index journal
//	go build -tags "nats,wal" ./cmd/server  # Both
//
// # Admin Password
//
// Admin endpoints need ADMIN_PASSWORD_HASH. Generate one with:
//
//	server --hash-password 'your-password'
//
// The password must pass the admin password policy (12+ characters,
// mixed character classes, no common or username-derived passwords);
// weak candidates are rejected before hashing.
//
// With no hash configured the service runs open: the read API works,
// login always fails, and mutating endpoints accept unauthenticated
// requests. Intended for single-user private deployments only.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: the HTTP server
// drains in-flight requests, the indexer finishes or abandons its
// current batch, and storage backends are closed in reverse order of
// initialization.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recipefinder/recipefinder/internal/analytics"
	"github.com/recipefinder/recipefinder/internal/answer"
	"github.com/recipefinder/recipefinder/internal/api"
	"github.com/recipefinder/recipefinder/internal/auth"
	"github.com/recipefinder/recipefinder/internal/cache"
	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/embed"
	"github.com/recipefinder/recipefinder/internal/events"
	"github.com/recipefinder/recipefinder/internal/indexer"
	"github.com/recipefinder/recipefinder/internal/ingest"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/models"
	"github.com/recipefinder/recipefinder/internal/search"
	"github.com/recipefinder/recipefinder/internal/store"
	"github.com/recipefinder/recipefinder/internal/supervisor"
	"github.com/recipefinder/recipefinder/internal/supervisor/services"
	"github.com/recipefinder/recipefinder/internal/vector"
	"github.com/recipefinder/recipefinder/internal/wal"
	ws "github.com/recipefinder/recipefinder/internal/websocket"

	_ "github.com/recipefinder/recipefinder/docs" // generated swagger docs
)

// version is stamped at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash for the given admin password and exit")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *hashPassword != "" {
		os.Exit(hashPasswordCommand(*hashPassword, os.Stdout, os.Stderr))
	}

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting RecipeFinder with supervisor tree")
	logging.Info().
		Str("mongo_database", cfg.Mongo.Database).
		Str("vector_backend", cfg.Vector.Backend).
		Str("llm_provider", cfg.LLM.Provider).
		Bool("auth_enabled", cfg.Auth.AdminPasswordHash != "").
		Msg("Configuration loaded")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recipe storage
	recipeStore, err := store.NewMongoStore(ctx, &cfg.Mongo)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := recipeStore.Close(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Error closing recipe store")
		}
	}()
	if err := recipeStore.EnsureIndexes(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to ensure MongoDB indexes")
	}
	logging.Info().Str("collection", cfg.Mongo.Collection).Msg("Recipe store connected")

	// Vector index
	index, err := vector.New(&cfg.Vector, cfg.Embedding.Dimensions)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open vector index")
	}
	defer func() {
		if err := index.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing vector index")
		}
	}()

	restoreSnapshot(ctx, index, &cfg.Vector)

	idxStats, err := index.Stats(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to read vector index stats")
	}
	logging.Info().
		Str("backend", idxStats.Backend).
		Int("documents", idxStats.Documents).
		Int("dimensions", idxStats.Dimensions).
		Msg("Vector index opened")

	// Index journal. The durable badger implementation needs the wal
	// build tag; without it Open returns a no-op journal.
	var journal wal.Journal
	if cfg.Indexer.JournalDir != "" {
		j, err := wal.Open(wal.Config{Dir: cfg.Indexer.JournalDir, SyncWrites: true})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open index journal")
		}
		journal = j
		defer func() {
			if err := journal.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing index journal")
			}
		}()
	}

	// Embedding chain: HTTP client, LRU cache, circuit breaker. The
	// breaker is the outermost layer so cache hits keep serving while
	// the upstream embedding API is down.
	embedClient := embed.NewClient(&cfg.Embedding)
	cachedEmbedder, err := embed.NewCachedEmbedder(embedClient, cfg.Embedding.CacheSize)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create embedding cache")
	}
	breaker := embed.NewBreakerEmbedder(cachedEmbedder)
	logging.Info().
		Str("model", cfg.Embedding.Model).
		Int("dimensions", cfg.Embedding.Dimensions).
		Msg("Embedding client ready")

	// Answer generation
	provider, err := answer.NewProvider(&cfg.LLM)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize LLM provider")
	}
	generator := answer.NewGenerator(provider, &cfg.Search)
	if provider == nil {
		logging.Info().Msg("Answer generation disabled (LLM_PROVIDER=none), serving retrieval-only responses")
	} else {
		logging.Info().Str("provider", generator.ProviderName()).Msg("Answer generation enabled")
	}

	// Search pipeline with response cache
	cacher := cache.NewCacher(cache.CacheConfig{
		Type:     cache.CacheType(cfg.Search.CacheType),
		TTL:      cfg.Search.CacheTTL,
		Capacity: cfg.Search.CacheCapacity,
	})
	searchSvc := search.New(&cfg.Search, recipeStore, index, breaker, generator, cacher)

	// WebSocket hub for live progress and search activity
	wsHub := ws.NewHub()
	searchSvc.SetNotifier(search.NotifierFunc(func(stats search.ActivityStats) {
		wsHub.BroadcastSearchActivity(stats.Searches, stats.UniqueQueries, stats.WindowSeconds)
	}))

	// DuckDB search analytics. Failure to open is not fatal: search
	// keeps working, the analytics endpoints report unavailable.
	var analyticsDB *analytics.DB
	if cfg.Analytics.Enabled {
		analyticsDB, err = analytics.New(&cfg.Analytics)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to open analytics database, continuing without analytics")
			analyticsDB = nil
		} else {
			defer func() {
				if err := analyticsDB.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing analytics database")
				}
			}()
			writer := analytics.NewWriter(analyticsDB, 0)
			defer writer.Close()
			searchSvc.SetRecorder(writer)
			logging.Info().Str("path", cfg.Analytics.Path).Msg("Search analytics enabled")
		}
	} else {
		logging.Info().Msg("Search analytics disabled (ANALYTICS_ENABLED=false)")
	}

	// NATS progress events (optional, requires build with -tags nats)
	evs, err := initEvents(cfg, wsHub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event processing")
	}
	defer evs.Shutdown(context.Background())

	// Indexing pipeline
	ix := indexer.New(&cfg.Indexer, recipeStore, index, breaker, journal)
	ix.SetRateLimit(cfg.Embedding.RateLimit)
	ix.SetProgressSink(indexProgressSink(wsHub, evs.Publisher()))

	if replayed, err := ix.ReplayJournal(ctx); err != nil {
		logging.Warn().Err(err).Msg("Journal replay failed, unconfirmed entries stay pending")
	} else if replayed > 0 {
		logging.Info().Int("entries", replayed).Msg("Journal replay reapplied unconfirmed index writes")
	}

	// CSV bulk import
	importer := ingest.NewCSVImporter(recipeStore)
	importer.SetProgressSink(importProgressSink(wsHub, evs.Publisher()))

	// Admin authentication
	authService, err := auth.NewService(cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid authentication configuration")
	}

	handler := api.NewHandler(cfg, recipeStore, searchSvc, ix, index, importer, authService, wsHub)
	handler.SetVersion(version)
	handler.SetBreakerProbe(breaker)
	if analyticsDB != nil {
		handler.SetAnalytics(analyticsDB)
	}

	// Supervisor tree. The slog adapter bridges zerolog to sutureslog.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer services
	if analyticsDB != nil {
		tree.AddDataService(services.NewRetentionService(analyticsDB, 24*time.Hour))
	}
	tree.AddDataService(services.NewSuggestService(searchSvc))
	if journal != nil {
		tree.AddDataService(services.NewJournalCompactionService(journal))
	}

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))

	runOnStart := cfg.Indexer.RunOnStart && idxStats.Documents == 0
	indexerService := services.NewIndexerService(ix, runOnStart)
	tree.AddMessagingService(indexerService)
	handler.SetRebuildTrigger(indexerService)

	evs.registerServices(tree)

	// API layer services
	middleware := api.NewChiMiddleware(&cfg.Server, cfg.RateLimit, authService)
	router := api.NewRouter(handler, middleware)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// hashPasswordCommand checks the password against the admin policy and
// writes its bcrypt hash to out. The policy runs at hash time, before
// any deployment sees the credential; a hash that reaches
// ADMIN_PASSWORD_HASH is accepted as-is. Returns the process exit code.
func hashPasswordCommand(password string, out, errOut io.Writer) int {
	policy := config.DefaultPasswordPolicy()
	result := policy.Validate(password, config.DefaultAdminUsername)
	if !result.Valid {
		fmt.Fprintln(errOut, "admin password rejected:")
		for _, msg := range result.Errors {
			fmt.Fprintln(errOut, "  -", msg)
		}
		return 1
	}
	for _, msg := range result.Warnings {
		fmt.Fprintln(errOut, "warning:", msg)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(errOut, "hash password:", err)
		return 1
	}
	fmt.Fprintln(out, hash)
	return 0
}

// restoreSnapshot loads VECTOR_RESTORE_PATH into an empty index at
// boot. Non-empty indexes are left alone so a stale restore file can't
// merge old vectors over live ones.
func restoreSnapshot(ctx context.Context, index vector.Index, cfg *config.VectorConfig) {
	if cfg.RestorePath == "" {
		return
	}

	snap, ok := index.(vector.Snapshotter)
	if !ok {
		logging.Warn().
			Str("backend", cfg.Backend).
			Msg("VECTOR_RESTORE_PATH set but the backend does not support snapshots")
		return
	}

	count, err := index.Count(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to count index documents, skipping snapshot restore")
		return
	}
	if count > 0 {
		logging.Info().Int("documents", count).Msg("Vector index not empty, skipping snapshot restore")
		return
	}

	f, err := os.Open(cfg.RestorePath)
	if err != nil {
		logging.Warn().Err(err).Str("path", cfg.RestorePath).Msg("Failed to open restore snapshot")
		return
	}
	defer func() { _ = f.Close() }()

	if err := snap.Restore(ctx, f); err != nil {
		logging.Error().Err(err).Str("path", cfg.RestorePath).Msg("Snapshot restore failed")
		return
	}
	logging.Info().Str("path", cfg.RestorePath).Msg("Vector index restored from snapshot")
}

// indexProgressSink routes indexing progress. With NATS active the
// snapshot goes through JetStream and reaches every instance's hub via
// the bridge; publishing and notifying the local hub directly would
// deliver each update twice.
func indexProgressSink(hub *ws.Hub, pub *events.Publisher) indexer.ProgressSink {
	if pub == nil {
		return hub
	}
	return indexer.ProgressSinkFunc(func(stats models.IndexStats, completed bool) {
		if err := pub.PublishIndexProgress(context.Background(), stats, completed); err != nil {
			logging.Warn().Err(err).Msg("Failed to publish index progress, notifying local clients directly")
			hub.NotifyIndexProgress(stats, completed)
		}
	})
}

// importProgressSink routes import progress. Only the completion event
// crosses instances; per-batch updates stay on the local hub.
func importProgressSink(hub *ws.Hub, pub *events.Publisher) ingest.ProgressSink {
	if pub == nil {
		return hub
	}
	return ingest.ProgressSinkFunc(func(stats models.ImportStats, completed bool) {
		if !completed {
			hub.NotifyImportProgress(stats, false)
			return
		}
		if err := pub.PublishImportCompleted(context.Background(), stats); err != nil {
			logging.Warn().Err(err).Msg("Failed to publish import completion, notifying local clients directly")
			hub.NotifyImportProgress(stats, true)
		}
	})
}
