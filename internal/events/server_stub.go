// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build !nats

package events

import (
	"context"
	"fmt"

	"github.com/recipefinder/recipefinder/internal/config"
)

// EmbeddedServer is a stub when NATS support is not compiled in.
type EmbeddedServer struct{}

// NewEmbeddedServer returns an error when NATS support is not compiled in.
func NewEmbeddedServer(cfg *config.NATSConfig) (*EmbeddedServer, error) {
	return nil, fmt.Errorf("embedded NATS server not available: build with -tags=nats")
}

// ClientURL returns an empty string for the stub.
func (s *EmbeddedServer) ClientURL() string {
	return ""
}

// Shutdown is a no-op stub.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	return nil
}

// IsRunning always reports false for the stub.
func (s *EmbeddedServer) IsRunning() bool {
	return false
}
