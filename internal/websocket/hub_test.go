// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/listingscope/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub creates a hub running until the test ends
func setupHub(t *testing.T) *Hub {
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
		<-done
	})
	return hub
}

// createTestClient creates a client with no connection
func createTestClient(hub *Hub) *Client {
	return NewClient(hub, nil, nil, "")
}

// waitForClients polls until the hub reports want clients
func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", want, hub.GetClientCount())
}

func TestNewHub(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	checks := []struct {
		name  string
		check bool
	}{
		{"clients map", hub.clients != nil},
		{"broadcast channel", hub.broadcast != nil},
		{"Register channel", hub.Register != nil},
		{"Unregister channel", hub.Unregister != nil},
		{"empty clients", len(hub.clients) == 0},
	}
	for _, c := range checks {
		if !c.check {
			t.Errorf("%s not initialized correctly", c.name)
		}
	}
}

func TestHub_ClientRegistration(t *testing.T) {
	t.Parallel()
	hub := setupHub(t)
	client := createTestClient(hub)

	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.Unregister <- client
	waitForClients(t, hub, 0)

	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	t.Parallel()
	hub := setupHub(t)

	hub.Unregister <- createTestClient(hub)
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastToClients(t *testing.T) {
	t.Parallel()
	hub := setupHub(t)

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = createTestClient(hub)
		hub.Register <- clients[i]
	}
	waitForClients(t, hub, len(clients))

	hub.BroadcastJSON("notice", map[string]string{"message": "hello"})

	for i, c := range clients {
		select {
		case msg := <-c.send:
			if msg.Type != "notice" {
				t.Errorf("client %d: expected notice, got %q", i, msg.Type)
			}
		case <-time.After(time.Second):
			t.Errorf("client %d did not receive broadcast", i)
		}
	}
}

func TestHub_BroadcastDatasetReloaded(t *testing.T) {
	t.Parallel()
	hub := setupHub(t)
	client := createTestClient(hub)
	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.BroadcastDatasetReloaded("7-abc", 1200)

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeDatasetReloaded {
			t.Fatalf("expected %s, got %q", MessageTypeDatasetReloaded, msg.Type)
		}
		data, ok := msg.Data.(DatasetReloadedData)
		if !ok {
			t.Fatalf("unexpected payload %T", msg.Data)
		}
		if data.Version != "7-abc" || data.Records != 1200 {
			t.Errorf("unexpected payload %+v", data)
		}
	case <-time.After(time.Second):
		t.Fatal("dataset_reloaded not received")
	}

	select {
	case <-client.refresh:
	case <-time.After(time.Second):
		t.Error("reload should schedule a re-render")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message), refresh: make(chan struct{}, 1)}
	hub.clients[slow] = true

	hub.broadcastToClients(Message{Type: "notice"})

	if hub.GetClientCount() != 0 {
		t.Errorf("slow client should be dropped, %d remain", hub.GetClientCount())
	}
}

func TestHub_RunWithContext(t *testing.T) {
	t.Parallel()

	t.Run("returns on cancellation", func(t *testing.T) {
		t.Parallel()
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- hub.RunWithContext(ctx) }()

		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Error("RunWithContext did not return")
		}
	})

	t.Run("returns on deadline", func(t *testing.T) {
		t.Parallel()
		hub := NewHub()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		if err := hub.RunWithContext(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
	})

	t.Run("closes clients on shutdown", func(t *testing.T) {
		t.Parallel()
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- hub.RunWithContext(ctx) }()

		for i := 0; i < 3; i++ {
			hub.Register <- createTestClient(hub)
		}
		waitForClients(t, hub, 3)

		cancel()
		<-errCh
		if hub.GetClientCount() != 0 {
			t.Errorf("expected 0 clients after shutdown, got %d", hub.GetClientCount())
		}
	})
}

func TestGetShutdownReason(t *testing.T) {
	t.Parallel()

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()

	tests := []struct {
		name string
		ctx  context.Context
		want ShutdownReason
	}{
		{"canceled", canceled, ShutdownReasonContextCanceled},
		{"deadline", expired, ShutdownReasonContextDeadline},
		{"live context", context.Background(), ShutdownReasonContextCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getShutdownReason(tt.ctx); got != tt.want {
				t.Errorf("getShutdownReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func BenchmarkHub_BroadcastJSON(b *testing.B) {
	hub := NewHub()
	for i := 0; i < 10; i++ {
		hub.clients[NewClient(hub, nil, nil, "")] = true
	}
	msg := Message{Type: "notice", Data: map[string]int{"n": 1}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.broadcastToClients(msg)
		hub.mu.RLock()
		for c := range hub.clients {
			<-c.send
		}
		hub.mu.RUnlock()
	}
}
