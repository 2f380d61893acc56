// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package services adapts the long-running components to the
// suture.Service interface so the supervision tree can own their
// lifecycles: the HTTP server, the WebSocket hub, the indexing
// pipeline, analytics retention, suggestion refresh, and the NATS
// progress bridge.
//
// Each wrapper translates between a component's natural run pattern
// (blocking loop, ListenAndServe, trigger channel) and suture's
// context-aware Serve contract, and implements fmt.Stringer so suture
// logs name the service.
package services
