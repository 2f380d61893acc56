// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build !nats

package main

import (
	"context"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/events"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/supervisor"
	ws "github.com/recipefinder/recipefinder/internal/websocket"
)

// natsComponents is a stub when NATS support is not compiled in.
type natsComponents struct{}

// initEvents reports NATS availability. Without the nats build tag the
// progress sinks notify the local WebSocket hub directly.
func initEvents(cfg *config.Config, hub *ws.Hub) (*natsComponents, error) {
	if cfg.NATS.Enabled {
		logging.Warn().Msg("NATS_ENABLED is set but the binary was built without -tags nats, progress events stay local")
	}
	return nil, nil
}

// Publisher returns nil; progress goes straight to the hub.
func (c *natsComponents) Publisher() *events.Publisher { return nil }

// registerServices is a no-op without NATS.
func (c *natsComponents) registerServices(tree *supervisor.Tree) {}

// Shutdown is a no-op without NATS.
func (c *natsComponents) Shutdown(ctx context.Context) {}
