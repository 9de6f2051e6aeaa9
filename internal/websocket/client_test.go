// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/listingscope/internal/dashboard"
	"github.com/tomtom215/listingscope/internal/filter"
)

// stubRenderer echoes the criteria back in the view and records persisted criteria.
type stubRenderer struct {
	mu        sync.Mutex
	initial   filter.Criteria
	persisted []filter.Criteria
	fail      bool
}

func (s *stubRenderer) DefaultCriteria() filter.Criteria {
	return filter.Criteria{PropertyType: filter.All, RoomType: filter.All, Neighbourhood: filter.All, NeighbourhoodGroup: filter.All, PriceMax: 500}
}

func (s *stubRenderer) InitialCriteria(_ context.Context, _ string) filter.Criteria {
	return s.initial
}

func (s *stubRenderer) Render(_ context.Context, _ string, c filter.Criteria) (dashboard.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return dashboard.View{}, errors.New("boom")
	}
	s.persisted = append(s.persisted, c)
	return dashboard.View{DatasetVersion: "v1", Criteria: c, Matched: 3, Total: 10}, nil
}

// received is the client-side shape of a server message.
type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// startSession serves /ws with a client bound to r and dials it.
func startSession(t *testing.T, r Renderer) *websocket.Conn {
	t.Helper()
	hub := setupHub(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		client := NewClient(hub, conn, r, "session-1")
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg received
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("invalid JSON from server: %v", err)
	}
	return msg
}

func readView(t *testing.T, conn *websocket.Conn) dashboard.View {
	t.Helper()
	msg := readMessage(t, conn)
	if msg.Type != MessageTypeView {
		t.Fatalf("expected view, got %q (%s)", msg.Type, msg.Data)
	}
	var view dashboard.View
	if err := json.Unmarshal(msg.Data, &view); err != nil {
		t.Fatalf("invalid view payload: %v", err)
	}
	return view
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestClient_Constants(t *testing.T) {
	t.Parallel()
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be shorter than pongWait %v", pingPeriod, pongWait)
	}
	if maxMessageSize != 64*1024 {
		t.Errorf("maxMessageSize = %d", maxMessageSize)
	}
}

func TestClient_InitialView(t *testing.T) {
	t.Parallel()
	r := &stubRenderer{initial: filter.Criteria{RoomType: "Private room", PriceMax: 200}}
	conn := startSession(t, r)

	view := readView(t, conn)
	if view.Criteria.RoomType != "Private room" {
		t.Errorf("initial view should use stored criteria, got %+v", view.Criteria)
	}
}

func TestClient_CriteriaUpdateMergesFields(t *testing.T) {
	t.Parallel()
	r := &stubRenderer{initial: filter.Criteria{RoomType: "Private room", PriceMin: 10, PriceMax: 200}}
	conn := startSession(t, r)
	readView(t, conn)

	send(t, conn, `{"type":"criteria","data":{"neighbourhood":"Mitte"}}`)
	view := readView(t, conn)

	if view.Criteria.Neighbourhood != "Mitte" {
		t.Errorf("neighbourhood not applied: %+v", view.Criteria)
	}
	if view.Criteria.RoomType != "Private room" || view.Criteria.PriceMax != 200 {
		t.Errorf("unspecified fields should be kept: %+v", view.Criteria)
	}
}

func TestClient_InvalidCriteria(t *testing.T) {
	t.Parallel()
	r := &stubRenderer{initial: filter.Criteria{PriceMax: 200}}
	conn := startSession(t, r)
	readView(t, conn)

	tests := []struct {
		name    string
		payload string
		code    string
	}{
		{"min above max", `{"type":"criteria","data":{"price_min":500,"price_max":100}}`, ErrCodeValidation},
		{"negative price", `{"type":"criteria","data":{"price_min":-1}}`, ErrCodeValidation},
		{"not json", `{{{`, ErrCodeBadMessage},
		{"unknown type", `{"type":"explode"}`, ErrCodeBadMessage},
		{"wrong field type", `{"type":"criteria","data":{"price_min":"cheap"}}`, ErrCodeBadMessage},
	}
	for _, tt := range tests {
		send(t, conn, tt.payload)
		msg := readMessage(t, conn)
		if msg.Type != MessageTypeError {
			t.Errorf("%s: expected error, got %q", tt.name, msg.Type)
			continue
		}
		var data ErrorData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if data.Code != tt.code {
			t.Errorf("%s: code = %q, want %q", tt.name, data.Code, tt.code)
		}
	}
}

func TestClient_ResetAndPing(t *testing.T) {
	t.Parallel()
	r := &stubRenderer{initial: filter.Criteria{RoomType: "Shared room", PriceMax: 50}}
	conn := startSession(t, r)
	readView(t, conn)

	send(t, conn, `{"type":"ping"}`)
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Fatalf("expected pong, got %q", msg.Type)
	}

	send(t, conn, `{"type":"reset"}`)
	view := readView(t, conn)
	if view.Criteria != r.DefaultCriteria() {
		t.Errorf("reset should restore defaults, got %+v", view.Criteria)
	}
}

func TestClient_RenderFailureSendsError(t *testing.T) {
	t.Parallel()
	r := &stubRenderer{fail: true}
	conn := startSession(t, r)

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeError {
		t.Fatalf("expected error, got %q", msg.Type)
	}
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	c := NewClient(hub, nil, &stubRenderer{}, "s")

	limited := 0
	for i := 0; i < criteriaBurst+5; i++ {
		c.handleMessage([]byte(`{"type":"criteria","data":{"price_max":10}}`))
	}
	for len(c.send) > 0 {
		msg := <-c.send
		if data, ok := msg.Data.(ErrorData); ok && data.Code == ErrCodeRateLimited {
			limited++
		}
	}
	if limited == 0 {
		t.Error("expected some updates to be rate limited")
	}
}

func TestClient_RefreshCoalesces(t *testing.T) {
	t.Parallel()
	c := NewClient(NewHub(), nil, nil, "")
	for i := 0; i < 5; i++ {
		c.requestRefresh()
	}
	if len(c.refresh) != 1 {
		t.Errorf("pending refreshes = %d, want 1", len(c.refresh))
	}
}

func TestClient_EnqueueAfterClose(t *testing.T) {
	t.Parallel()
	c := NewClient(NewHub(), nil, nil, "")
	close(c.send)

	// must not panic
	c.enqueue(Message{Type: MessageTypePong})
}
