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
	"github.com/recipefinder/recipefinder/internal/models"
)

// Subscriber is a stub when NATS support is not compiled in.
type Subscriber struct{}

// NewSubscriber returns an error when NATS support is not compiled in.
func NewSubscriber(cfg *config.NATSConfig, logger interface{}) (*Subscriber, error) {
	return nil, fmt.Errorf("NATS subscriber not available: build with -tags=nats")
}

// Close is a no-op stub.
func (s *Subscriber) Close() error {
	return nil
}

// Broadcaster receives deserialized progress events. Satisfied by
// *websocket.Hub.
type Broadcaster interface {
	NotifyIndexProgress(stats models.IndexStats, completed bool)
	NotifyImportProgress(stats models.ImportStats, completed bool)
}

// Bridge is a stub when NATS support is not compiled in.
type Bridge struct{}

// NewBridge returns a stub bridge.
func NewBridge(subscriber *Subscriber, target Broadcaster) *Bridge {
	return &Bridge{}
}

// Run is a stub that returns an error.
func (b *Bridge) Run(ctx context.Context) error {
	return fmt.Errorf("NATS subscriber not available: build with -tags=nats")
}
