// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build nats

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/recipefinder/recipefinder/internal/config"
)

// StreamManager provisions the JetStream progress stream before any
// publisher or subscriber connects.
type StreamManager struct {
	js     jetstream.JetStream
	config *config.NATSConfig
}

// NewStreamManager creates a manager over an established connection.
func NewStreamManager(nc *nats.Conn, cfg *config.NATSConfig) (*StreamManager, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return &StreamManager{js: js, config: cfg}, nil
}

// EnsureStream creates or updates the progress stream. All progress
// topics share one stream via the recipes.> wildcard.
func (m *StreamManager) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:        m.config.StreamName,
		Subjects:    []string{SubjectWildcard},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      time.Duration(m.config.StreamRetentionDays) * 24 * time.Hour,
		MaxBytes:    m.config.MaxStore,
		Duplicates:  2 * time.Minute,
		Replicas:    1,
		Storage:     jetstream.FileStorage,
		AllowDirect: true,
		Discard:     jetstream.DiscardOld,
	}

	if _, err := m.js.Stream(ctx, m.config.StreamName); err == nil {
		stream, err := m.js.UpdateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("update stream: %w", err)
		}
		return stream, nil
	}

	stream, err := m.js.CreateStream(ctx, streamCfg)
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}
	return stream, nil
}

// GetStreamInfo returns the current stream state.
func (m *StreamManager) GetStreamInfo(ctx context.Context) (*jetstream.StreamInfo, error) {
	stream, err := m.js.Stream(ctx, m.config.StreamName)
	if err != nil {
		return nil, fmt.Errorf("get stream: %w", err)
	}
	return stream.Info(ctx)
}

// PurgeStream removes all messages. Use with caution.
func (m *StreamManager) PurgeStream(ctx context.Context) error {
	stream, err := m.js.Stream(ctx, m.config.StreamName)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}
	return stream.Purge(ctx)
}
