// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

// Package websocket pushes live service events to connected browser
// clients: indexing and import progress, and aggregate search activity.
//
// The Hub owns the client set and serializes all registration,
// unregistration and broadcast work on a single goroutine, so handlers
// and background jobs can publish without locking. Each Client runs a
// read pump and a write pump; slow consumers are dropped rather than
// allowed to stall the hub.
//
// Message envelope:
//
//	{"type": "index_progress", "data": {...}}
//
// Types sent by the server: index_progress, index_completed,
// import_completed, search_activity, pong. Clients may send ping and
// receive pong; all other inbound messages are ignored.
package websocket
