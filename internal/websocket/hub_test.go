// RecipeFinder - Semantic Recipe Search and Recommendation Service
// Copyright 2026 The RecipeFinder Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/recipefinder/recipefinder

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/recipefinder/recipefinder/internal/models"
)

// newTestClient builds a client without a connection; hub code only
// touches the id and send channel.
func newTestClient() *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		send: make(chan Message, 256),
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop after context cancel")
		}
	})
	return hub, cancel
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("GetClientCount() = %d, want %d", hub.GetClientCount(), want)
}

func recvMessage(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub, _ := startHub(t)

	client := newTestClient()
	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.Unregister <- client
	waitForClients(t, hub, 0)

	// The hub closes the send channel on unregister.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel after unregister")
		}
	case <-time.After(2 * time.Second):
		t.Error("send channel not closed after unregister")
	}
}

func TestHubBroadcastIndexProgress(t *testing.T) {
	hub, _ := startHub(t)

	client := newTestClient()
	hub.Register <- client
	waitForClients(t, hub, 1)

	stats := models.IndexStats{Total: 100, Indexed: 40, Batches: 2, StartTime: time.Now()}
	hub.NotifyIndexProgress(stats, false)

	msg := recvMessage(t, client)
	if msg.Type != MessageTypeIndexProgress {
		t.Errorf("message type = %q, want %q", msg.Type, MessageTypeIndexProgress)
	}
	data, ok := msg.Data.(IndexProgressData)
	if !ok {
		t.Fatalf("message data type = %T, want IndexProgressData", msg.Data)
	}
	if data.Stats.Indexed != 40 {
		t.Errorf("Stats.Indexed = %d, want 40", data.Stats.Indexed)
	}

	hub.NotifyIndexProgress(stats, true)
	msg = recvMessage(t, client)
	if msg.Type != MessageTypeIndexCompleted {
		t.Errorf("completed message type = %q, want %q", msg.Type, MessageTypeIndexCompleted)
	}
}

func TestHubBroadcastImportCompleted(t *testing.T) {
	hub, _ := startHub(t)

	client := newTestClient()
	hub.Register <- client
	waitForClients(t, hub, 1)

	stats := models.ImportStats{Inserted: 2231141, Skipped: 89, StartTime: time.Now()}
	hub.NotifyImportProgress(stats, true)

	msg := recvMessage(t, client)
	if msg.Type != MessageTypeImportDone {
		t.Errorf("message type = %q, want %q", msg.Type, MessageTypeImportDone)
	}
	data, ok := msg.Data.(ImportProgressData)
	if !ok {
		t.Fatalf("message data type = %T, want ImportProgressData", msg.Data)
	}
	if data.Stats.Inserted != 2231141 {
		t.Errorf("Stats.Inserted = %d, want 2231141", data.Stats.Inserted)
	}
}

func TestHubBroadcastSearchActivityToAllClients(t *testing.T) {
	hub, _ := startHub(t)

	first := newTestClient()
	second := newTestClient()
	hub.Register <- first
	hub.Register <- second
	waitForClients(t, hub, 2)

	hub.BroadcastSearchActivity(17, 9, 60)

	for _, client := range []*Client{first, second} {
		msg := recvMessage(t, client)
		if msg.Type != MessageTypeSearchActivity {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeSearchActivity)
		}
		data, ok := msg.Data.(SearchActivityData)
		if !ok {
			t.Fatalf("message data type = %T, want SearchActivityData", msg.Data)
		}
		if data.Searches != 17 || data.UniqueQueries != 9 || data.WindowSeconds != 60 {
			t.Errorf("unexpected activity payload: %+v", data)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub, _ := startHub(t)

	slow := &Client{
		id:   clientIDCounter.Add(1),
		send: make(chan Message), // unbuffered and never drained
	}
	hub.Register <- slow
	waitForClients(t, hub, 1)

	hub.BroadcastSearchActivity(1, 1, 60)
	waitForClients(t, hub, 0)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	client := newTestClient()
	hub.Register <- client
	waitForClients(t, hub, 1)

	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("RunWithContext() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() after shutdown = %d, want 0", got)
	}
}
