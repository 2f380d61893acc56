// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package testinfra provides test infrastructure for integration testing.
//
// This package uses testcontainers-go to manage Docker containers for
// integration tests, plus an in-process OpenAI-compatible fake for the
// embedding and chat endpoints. Everything here is behind the integration
// build tag; unit tests never pay the Docker cost.
//
// # MongoDB Container
//
// MongoContainer provides a real MongoDB instance for store tests:
//
//	func TestRecipeStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer mongo.Terminate(ctx)
//
//	    // Use mongo.URI to connect a store
//	}
//
// # Mock Inference Server
//
// MockInferenceServer fakes /v1/embeddings and /v1/chat/completions so
// pipeline tests run without a model server. Embeddings are deterministic
// (seeded from the input text), so similarity rankings are stable across
// runs:
//
//	srv := testinfra.NewMockInferenceServer(t)
//	defer srv.Close()
//
//	// Point the embedding client at srv.URL()
//	// Inspect srv.Captures() to verify request shapes
//
// Set FailFirst to exercise retry paths, or EmbedStatus/ChatStatus to
// simulate upstream errors.
//
// # Running Integration Tests
//
//	go test -tags=integration ./internal/...
//
// Tests call SkipIfNoDocker(t) and skip gracefully on machines without a
// Docker daemon.
package testinfra
