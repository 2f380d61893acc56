// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build nats

package services

import (
	"context"

	"github.com/recipefinder/recipefinder/internal/logging"
)

// BridgeRunner matches *events.Bridge.
type BridgeRunner interface {
	Run(ctx context.Context) error
}

// BridgeService runs the NATS-to-WebSocket progress bridge under
// supervision, so a dropped JetStream consumer is re-established by a
// supervisor restart.
type BridgeService struct {
	bridge BridgeRunner
	name   string
}

// NewBridgeService wraps a progress bridge.
func NewBridgeService(bridge BridgeRunner) *BridgeService {
	return &BridgeService{
		bridge: bridge,
		name:   "nats-bridge",
	}
}

// Serve implements suture.Service.
func (s *BridgeService) Serve(ctx context.Context) error {
	logging.Info().Msg("NATS progress bridge started")
	return s.bridge.Run(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (s *BridgeService) String() string {
	return s.name
}
