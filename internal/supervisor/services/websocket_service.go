// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package services

import (
	"context"
	"errors"
	"log/slog"
)

// ContextHub matches *websocket.Hub's RunWithContext method.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// ClientCounter is implemented by hubs that can report their connection count.
type ClientCounter interface {
	GetClientCount() int
}

// WebSocketHubService runs the live dashboard hub under supervision.
//
// A restarted hub starts with no clients; browsers reconnect and replay
// their session criteria.
type WebSocketHubService struct {
	hub    ContextHub
	logger *slog.Logger
	name   string
}

// NewWebSocketHubService creates a new hub service wrapper.
func NewWebSocketHubService(hub ContextHub, logger *slog.Logger) *WebSocketHubService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHubService{
		hub:    hub,
		logger: logger,
		name:   "websocket-hub",
	}
}

// Serve implements suture.Service.
func (w *WebSocketHubService) Serve(ctx context.Context) error {
	err := w.hub.RunWithContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		clients := -1
		if c, ok := w.hub.(ClientCounter); ok {
			clients = c.GetClientCount()
		}
		w.logger.Warn("websocket hub stopped", "error", err, "clients", clients)
	}
	return err
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (w *WebSocketHubService) String() string {
	return w.name
}
