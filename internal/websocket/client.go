// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/listingscope/internal/dashboard"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/metrics"
	"github.com/tomtom215/listingscope/internal/validation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // 64 KB

	// criteria updates a single client may send per second, with burst
	criteriaRate  = 10
	criteriaBurst = 20
)

// Error codes sent in error messages.
const (
	ErrCodeBadMessage  = "BAD_MESSAGE"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeRender      = "RENDER_FAILED"
)

// Renderer produces dashboard views for a connected client.
// Render also persists c as the session's active criteria.
type Renderer interface {
	DefaultCriteria() filter.Criteria
	InitialCriteria(ctx context.Context, sessionID string) filter.Criteria
	Render(ctx context.Context, sessionID string, c filter.Criteria) (dashboard.View, error)
}

// ErrorData is sent with error messages.
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// clientIDCounter hands out monotonically increasing IDs so broadcasts
// iterate clients in a stable order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
// It owns one session's criteria; every accepted criteria message schedules
// a re-render that is written back as a view message.
type Client struct {
	id        uint64
	hub       *Hub
	conn      *websocket.Conn
	send      chan Message
	refresh   chan struct{}
	renderer  Renderer
	sessionID string
	limiter   *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	criteria filter.Criteria
}

// NewClient creates a client bound to a session. renderer may be nil,
// in which case the client only receives broadcasts.
func NewClient(hub *Hub, conn *websocket.Conn, renderer Renderer, sessionID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.ContextWithSessionID(ctx, sessionID)
	return &Client{
		id:        clientIDCounter.Add(1),
		hub:       hub,
		conn:      conn,
		send:      make(chan Message, 256),
		refresh:   make(chan struct{}, 1),
		renderer:  renderer,
		sessionID: sessionID,
		limiter:   rate.NewLimiter(rate.Limit(criteriaRate), criteriaBurst),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() uint64 {
	return c.id
}

// SessionID returns the session the client renders for.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Criteria returns the client's active criteria.
func (c *Client) Criteria() filter.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

func (c *Client) setCriteria(cr filter.Criteria) {
	c.mu.Lock()
	c.criteria = cr
	c.mu.Unlock()
}

// requestRefresh schedules a render. Pending requests coalesce.
func (c *Client) requestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// enqueue queues a direct reply without blocking the read loop.
func (c *Client) enqueue(msg Message) {
	defer func() {
		// send is closed once the hub drops the client
		_ = recover()
	}()
	select {
	case c.send <- msg:
		metrics.RecordWSMessage("out", msg.Type)
	default:
		logging.Ctx(c.ctx).Warn().Str("message_type", msg.Type).Msg("websocket send buffer full, dropping reply")
	}
}

func (c *Client) sendError(code, message string, details interface{}) {
	c.enqueue(Message{Type: MessageTypeError, Data: ErrorData{Code: code, Message: message, Details: details}})
}

// handleMessage applies one inbound frame.
func (c *Client) handleMessage(raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		metrics.RecordWSMessage("in", "invalid")
		c.sendError(ErrCodeBadMessage, "message is not valid JSON", nil)
		return
	}
	metrics.RecordWSMessage("in", msg.Type)

	switch msg.Type {
	case MessageTypePing:
		c.enqueue(Message{Type: MessageTypePong})

	case MessageTypeCriteria:
		if !c.limiter.Allow() {
			c.sendError(ErrCodeRateLimited, "too many criteria updates", nil)
			return
		}
		// Fields absent from data keep their current value.
		next, err := c.Criteria().Merge(msg.Data)
		if err != nil {
			c.sendError(ErrCodeBadMessage, "criteria payload is malformed", nil)
			return
		}
		if verr := validation.ValidateStruct(&next); verr != nil {
			c.sendError(ErrCodeValidation, "criteria failed validation", verr.ToAPIError().Details)
			return
		}
		c.setCriteria(next)
		c.requestRefresh()

	case MessageTypeReset:
		if c.renderer != nil {
			c.setCriteria(c.renderer.DefaultCriteria())
		}
		c.requestRefresh()

	default:
		c.sendError(ErrCodeBadMessage, "unknown message type: "+msg.Type, nil)
	}
}

// render builds the view for the current criteria.
func (c *Client) render() (Message, bool) {
	if c.renderer == nil {
		return Message{}, false
	}
	view, err := c.renderer.Render(c.ctx, c.sessionID, c.Criteria())
	if err != nil {
		logging.Ctx(c.ctx).Error().Err(err).Msg("websocket render failed")
		return Message{Type: MessageTypeError, Data: ErrorData{Code: ErrCodeRender, Message: "could not render dashboard"}}, true
	}
	// Render clamps to the active snapshot; remember what was actually shown.
	c.setCriteria(view.Criteria)
	return Message{Type: MessageTypeView, Data: view}, true
}

// readPump pumps messages from the websocket connection to the client state
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.Unregister <- c:
		case <-time.After(writeWait):
			logging.Warn().Uint64("client_id", c.id).Msg("hub not accepting unregister")
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		c.handleMessage(raw)
	}
}

func (c *Client) writeMessage(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// writePump pumps queued messages and rendered views to the connection.
// Queued messages take priority over pending renders so a dataset_reloaded
// notice precedes the view rendered against the new snapshot.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.deliver(message, ok) {
				return
			}
			continue
		default:
		}

		select {
		case message, ok := <-c.send:
			if !c.deliver(message, ok) {
				return
			}

		case <-c.refresh:
			msg, ok := c.render()
			if !ok {
				continue
			}
			if err := c.writeMessage(msg); err != nil {
				logging.Error().Err(err).Msg("failed to write view message")
				return
			}
			metrics.RecordWSMessage("out", msg.Type)

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// deliver writes one queued message. It returns false when the pump must stop.
func (c *Client) deliver(message Message, ok bool) bool {
	if !ok {
		// The hub closed the channel
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err == nil {
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		}
		return false
	}
	if err := c.writeMessage(message); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON message")
		return false
	}
	return true
}

// Start loads the session's criteria, queues the first view and begins
// reading and writing for the client.
func (c *Client) Start() {
	if c.renderer != nil {
		c.setCriteria(c.renderer.InitialCriteria(c.ctx, c.sessionID))
	}
	c.requestRefresh()
	go c.writePump()
	go c.readPump()
}
