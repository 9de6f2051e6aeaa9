// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// HTTPServer matches the *http.Server methods used by HTTPServerService.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server under supervision.
//
// The listener is bound inside Serve, so a port conflict is returned to the
// supervisor as an ordinary failure and retried with backoff. The bound
// address is available from Addr once the server is accepting.
//
//	server := &http.Server{Handler: router}
//	svc := services.NewHTTPServerService(server, ":8501", 10*time.Second, logger)
//	tree.AddAPIService(svc)
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	name            string

	bound atomic.Pointer[string]
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout
// defaults to 10 seconds.
func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration, logger *slog.Logger) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServerService{
		server:          server,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
		name:            "http-server",
	}
}

// Addr returns the bound listen address, or "" before the first bind.
func (h *HTTPServerService) Addr() string {
	if p := h.bound.Load(); p != nil {
		return *p
	}
	return ""
}

// Serve implements suture.Service.
//
// http.ErrServerClosed is not an error. On cancellation the server is given
// shutdownTimeout to drain before Serve returns ctx.Err().
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("http server listen on %s: %w", h.addr, err)
	}
	bound := ln.Addr().String()
	h.bound.Store(&bound)
	h.logger.Info("http server listening", "addr", bound)

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		h.logger.Info("http server draining", "timeout", h.shutdownTimeout)
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (h *HTTPServerService) String() string {
	return h.name
}
