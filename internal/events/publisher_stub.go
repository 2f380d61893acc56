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

// Publisher is a stub when NATS support is not compiled in.
// Build with -tags=nats for the Watermill JetStream publisher.
type Publisher struct{}

// NewPublisher returns an error when NATS support is not compiled in.
func NewPublisher(cfg *config.NATSConfig, logger interface{}) (*Publisher, error) {
	return nil, fmt.Errorf("NATS publisher not available: build with -tags=nats")
}

// PublishEvent is a stub that returns an error.
func (p *Publisher) PublishEvent(ctx context.Context, event *ProgressEvent) error {
	return fmt.Errorf("NATS publisher not available: build with -tags=nats")
}

// PublishIndexProgress is a stub that returns an error.
func (p *Publisher) PublishIndexProgress(ctx context.Context, stats models.IndexStats, completed bool) error {
	return fmt.Errorf("NATS publisher not available: build with -tags=nats")
}

// PublishImportCompleted is a stub that returns an error.
func (p *Publisher) PublishImportCompleted(ctx context.Context, stats models.ImportStats) error {
	return fmt.Errorf("NATS publisher not available: build with -tags=nats")
}

// Close is a no-op stub.
func (p *Publisher) Close() error {
	return nil
}
