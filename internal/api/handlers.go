// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/listingscope/internal/cache"
	"github.com/tomtom215/listingscope/internal/config"
	"github.com/tomtom215/listingscope/internal/database"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/middleware"
	"github.com/tomtom215/listingscope/internal/session"
	ws "github.com/tomtom215/listingscope/internal/websocket"
)

// Version is reported by /health. Overridden at build time with -ldflags.
var Version = "dev"

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, reload callback, WebSocket upgrade
//   - handlers_helpers.go: envelope, ETag, parameter helpers
//   - handlers_health.go: health and performance endpoints
//   - handlers_dashboard.go: options, dashboard, charts, listings, map, CSV
//   - handlers_session.go: stored criteria and the WebSocket renderer
//   - handlers_stats.go: DuckDB summaries and dataset reload
type Handler struct {
	store     *dataset.Store
	views     *cache.ViewCache
	sessions  session.Store
	db        *database.DB // nil when the analytics mirror is disabled
	config    *config.Config
	wsHub     *ws.Hub
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Dependencies:
//   - cfg: Application configuration
//   - store: Dataset store holding the active snapshot
//   - views: Rendered view cache (may be nil)
//   - sessions: Per-session criteria store
//   - db: DuckDB analytics mirror (nil when disabled)
//   - wsHub: WebSocket hub for live views (may be nil)
func NewHandler(cfg *config.Config, store *dataset.Store, views *cache.ViewCache, sessions session.Store, db *database.DB, wsHub *ws.Hub) *Handler {
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	return &Handler{
		store:     store,
		views:     views,
		sessions:  sessions,
		db:        db,
		config:    cfg,
		wsHub:     wsHub,
		perfMon:   middleware.NewPerformanceMonitor(1000),
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the monitor fed by the router middleware.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// OnDatasetReloaded is registered as a dataset store listener.
//
// It drops cached views of older snapshots and tells WebSocket clients to
// re-render against the new one.
func (h *Handler) OnDatasetReloaded(ctx context.Context, snap *dataset.Snapshot) {
	h.views.Purge()

	if h.wsHub != nil {
		h.wsHub.BroadcastDatasetReloaded(snap.Version(), len(snap.Records()))
	}
	logging.Ctx(ctx).Info().
		Str("version", snap.Version()).
		Int("records", len(snap.Records())).
		Msg("view cache purged after dataset reload")
}

// getUpgrader creates a WebSocket upgrader with origin checking and a handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin on WebSocket upgrades
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection to the live dashboard channel.
//
// @Summary Live dashboard channel
// @Description Upgrades to a WebSocket. Send {"type":"criteria","data":{...}} to receive {"type":"view","data":View}. All clients receive {"type":"dataset_reloaded"} when a new snapshot is loaded.
// @Tags Realtime
// @Param X-Session-ID header string false "Session ID (falls back to the session cookie)"
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} models.APIResponse "WebSocket hub not available"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}

	sessionID := h.sessionID(w, r, true)

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn, h, sessionID)
	h.wsHub.Register <- client
	client.Start()
}
