// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/recipefinder/recipefinder/internal/logging"
	"github.com/recipefinder/recipefinder/internal/metrics"
	"github.com/recipefinder/recipefinder/internal/models"
)

// Message types for hub-to-client communication.
const (
	MessageTypeIndexProgress  = "index_progress"
	MessageTypeIndexCompleted = "index_completed"
	MessageTypeImportProgress = "import_progress"
	MessageTypeImportDone     = "import_completed"
	MessageTypeSearchActivity = "search_activity"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// ShutdownReason identifies why the hub stopped, for log filtering.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message is the wire envelope for every hub message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and fans broadcast messages
// out to them. All client-set mutation happens on the goroutine running
// RunWithContext; publishers enqueue onto a buffered channel and drop
// when it is full instead of blocking.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. Call RunWithContext before registering clients.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub event loop until ctx is canceled, then
// closes every connected client and returns ctx.Err(). Designed to run
// under suture supervision: a restart starts with an empty client set
// and no orphaned connections.
//
// Selection is priority ordered so behavior stays deterministic when
// several channels are ready at once: shutdown first, then client
// lifecycle events, then broadcasts.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown (non-blocking check).
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle (non-blocking check).
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		// Priority 3: broadcasts, or block until anything arrives.
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("WebSocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("WebSocket client disconnected")
}

// broadcastToClients delivers one message to every client in ascending
// client-ID order, so delivery order is reproducible in tests. Clients
// whose send buffer is full are dropped; a stalled browser must not
// back-pressure the hub.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSErrors.WithLabelValues("send_buffer_full").Inc()
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
		logging.Warn().Int("dropped", len(toRemove)).Msg("Dropped slow WebSocket clients")
	}
}

// closeAllClients closes every client in ID order during shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	// ctx.Err() is expected here, not an error condition.
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("WebSocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// enqueue offers a message to the broadcast channel without blocking.
func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", message.Type).Msg("Broadcast channel full, dropping message")
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
	}
}

// BroadcastJSON sends an arbitrary typed payload to all clients.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	h.enqueue(Message{Type: messageType, Data: data})
}

// IndexProgressData is the payload of index_progress and
// index_completed messages.
type IndexProgressData struct {
	Timestamp  string            `json:"timestamp"`
	Stats      models.IndexStats `json:"stats"`
	DurationMS int64             `json:"duration_ms"`
}

// NotifyIndexProgress broadcasts one indexing progress snapshot. The
// indexer calls it after every batch and once more with completed=true
// when the run finishes, so the hub satisfies the indexer's progress
// sink directly.
func (h *Hub) NotifyIndexProgress(stats models.IndexStats, completed bool) {
	messageType := MessageTypeIndexProgress
	if completed {
		messageType = MessageTypeIndexCompleted
	}

	h.enqueue(Message{
		Type: messageType,
		Data: IndexProgressData{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Stats:      stats,
			DurationMS: stats.Duration().Milliseconds(),
		},
	})

	if completed {
		logging.Info().
			Int("clients", h.GetClientCount()).
			Int("indexed", stats.Indexed).
			Int("failed", stats.Failed).
			Msg("Broadcast index_completed")
	}
}

// ImportProgressData is the payload of import_progress and
// import_completed messages.
type ImportProgressData struct {
	Timestamp  string             `json:"timestamp"`
	Stats      models.ImportStats `json:"stats"`
	DurationMS int64              `json:"duration_ms"`
}

// NotifyImportProgress broadcasts one CSV import progress snapshot,
// satisfying the importer's progress sink.
func (h *Hub) NotifyImportProgress(stats models.ImportStats, completed bool) {
	messageType := MessageTypeImportProgress
	if completed {
		messageType = MessageTypeImportDone
	}

	h.enqueue(Message{
		Type: messageType,
		Data: ImportProgressData{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Stats:      stats,
			DurationMS: stats.Duration().Milliseconds(),
		},
	})

	if completed {
		logging.Info().
			Int("clients", h.GetClientCount()).
			Int("inserted", stats.Inserted).
			Int("skipped", stats.Skipped).
			Msg("Broadcast import_completed")
	}
}

// SearchActivityData is the payload of search_activity messages.
type SearchActivityData struct {
	Timestamp     string `json:"timestamp"`
	Searches      int64  `json:"searches"`
	UniqueQueries int    `json:"unique_queries"`
	WindowSeconds int64  `json:"window_seconds"`
}

// BroadcastSearchActivity pushes the current sliding-window search
// traffic summary. The search service attaches through an adapter in
// the server wiring.
func (h *Hub) BroadcastSearchActivity(searches int64, uniqueQueries int, windowSeconds int64) {
	h.enqueue(Message{
		Type: MessageTypeSearchActivity,
		Data: SearchActivityData{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Searches:      searches,
			UniqueQueries: uniqueQueries,
			WindowSeconds: windowSeconds,
		},
	})
}
