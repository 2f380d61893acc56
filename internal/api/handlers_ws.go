// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/recipefinder/recipefinder/internal/logging"
	ws "github.com/recipefinder/recipefinder/internal/websocket"
)

// upgrader configures the WebSocket handshake. The origin check runs
// against the configured CORS origins; requests without an Origin
// header (non-browser clients) are allowed.
func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.config.Server.CORSOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// WebSocket upgrades the connection and registers the client with the
// hub. The client then receives index_progress, import_completed and
// search_activity messages until it disconnects.
//
// @Summary WebSocket progress feed
// @Description Upgrades to a WebSocket carrying live indexing, import and search activity messages.
// @Tags WebSocket
// @Success 101 "Switching protocols"
// @Failure 400 {object} models.APIResponse "Upgrade failed"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()

	logging.Debug().
		Uint64("client_id", client.ID()).
		Int("clients", h.hub.GetClientCount()).
		Msg("WebSocket client connected")
}
