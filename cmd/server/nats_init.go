// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

//go:build nats

package main

import (
	"context"
	"fmt"

	natsgo "github.com/nats-io/nats.go"

	"github.com/recipefinder/recipefinder/internal/config"
	"github.com/recipefinder/recipefinder/internal/events"
	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/supervisor"
	"github.com/recipefinder/recipefinder/internal/supervisor/services"
	ws "github.com/recipefinder/recipefinder/internal/websocket"
)

// natsComponents holds the JetStream progress fan-out: an optional
// embedded server, the publisher the progress sinks write to, and the
// bridge that forwards consumed events to the local WebSocket hub.
type natsComponents struct {
	server     *events.EmbeddedServer
	conn       *natsgo.Conn
	publisher  *events.Publisher
	subscriber *events.Subscriber
	bridge     *events.Bridge
}

// initEvents initializes NATS event processing when NATS_ENABLED=true.
// Returns nil components when disabled; the caller then wires progress
// sinks straight to the WebSocket hub.
func initEvents(cfg *config.Config, hub *ws.Hub) (*natsComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS event processing disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	logging.Info().Msg("Initializing NATS event processing...")

	components := &natsComponents{}
	natsCfg := cfg.NATS

	// Embedded server first, so the publisher and subscriber connect
	// to it instead of the configured external URL.
	if natsCfg.EmbeddedServer {
		server, err := events.NewEmbeddedServer(&natsCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		components.server = server
		natsCfg.URL = server.ClientURL()
		logging.Info().Str("url", natsCfg.URL).Msg("Embedded NATS server started")
	} else {
		logging.Info().Str("url", natsCfg.URL).Msg("Using external NATS server")
	}

	nc, err := natsgo.Connect(natsCfg.URL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(natsCfg.MaxReconnects),
		natsgo.ReconnectWait(natsCfg.ReconnectWait),
	)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.conn = nc

	// Ensure the progress stream exists before anything publishes or
	// binds a consumer to it.
	streamManager, err := events.NewStreamManager(nc, &natsCfg)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create stream manager: %w", err)
	}
	stream, err := streamManager.EnsureStream(context.Background())
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	streamInfo := stream.CachedInfo()
	logging.Info().
		Str("name", streamInfo.Config.Name).
		Strs("subjects", streamInfo.Config.Subjects).
		Dur("max_age", streamInfo.Config.MaxAge).
		Msg("JetStream stream ready")

	publisher, err := events.NewPublisher(&natsCfg, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	components.publisher = publisher

	subscriber, err := events.NewSubscriber(&natsCfg, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create subscriber: %w", err)
	}
	components.subscriber = subscriber
	components.bridge = events.NewBridge(subscriber, hub)

	logging.Info().Msg("NATS event processing initialized")
	return components, nil
}

// Publisher returns the progress event publisher, or nil when NATS is
// not active.
func (c *natsComponents) Publisher() *events.Publisher {
	if c == nil {
		return nil
	}
	return c.publisher
}

// registerServices adds the progress bridge to the supervisor tree, so
// a dropped JetStream consumer is re-established by a restart.
func (c *natsComponents) registerServices(tree *supervisor.Tree) {
	if c == nil || c.bridge == nil {
		return
	}
	tree.AddMessagingService(services.NewBridgeService(c.bridge))
	logging.Info().Msg("NATS progress bridge added to supervisor tree")
}

// Shutdown closes the NATS components in reverse order of creation.
// The bridge itself stops with the supervisor tree before this runs.
func (c *natsComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}

	if c.subscriber != nil {
		if err := c.subscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS subscriber")
		}
	}
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing NATS publisher")
		}
	}
	if c.conn != nil {
		c.conn.Close()
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS server")
		}
	}
}
