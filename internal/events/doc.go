// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package events fans indexing and import progress out through NATS
// JetStream so multiple server instances can share one progress feed.
//
// The full implementation (Watermill publisher and subscriber, embedded
// NATS server, stream provisioning) is compiled only with -tags=nats.
// Without the tag, stubs return errors from constructors and the server
// wiring falls back to notifying the WebSocket hub directly, which is
// the right behavior for single-instance deployments.
//
// Event flow with the tag enabled:
//
//	indexer/importer -> Publisher -> JetStream (RECIPEFINDER, recipes.>)
//	JetStream -> Subscriber -> Bridge -> websocket.Hub
//
// Events are deduplicated by Nats-Msg-Id using the event UUID, so a
// publisher retry after a transient failure does not produce duplicate
// progress messages.
package events
