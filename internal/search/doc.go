// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

/*
Package search orchestrates the retrieval pipeline behind the public
search endpoints.

Service.Search runs the full semantic search: response cache lookup,
query embedding, vector nearest-neighbour retrieval, answer generation,
and the video link map, preserving the original API's
{query, response, recipes, videos} contract. Service.Similar finds
neighbours of a stored recipe by blending embedding similarity with
ingredient overlap, and Service.Suggest serves title autocomplete from
a periodically refreshed in-memory snapshot.

The service reports results outward through two narrow interfaces:
Recorder receives one telemetry row per search (the analytics store
implements it) and Notifier receives live activity stats (the WebSocket
hub implements it). Both are optional; a nil recorder or notifier
simply disables that output.
*/
package search
