// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/models"
)

// breakerReporter is implemented by sources guarded by a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns dataset, mirror and WebSocket status. The status is "starting" until the first snapshot is loaded and "degraded" when an enabled mirror is unreachable or the source breaker is open.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:          "healthy",
		Version:         Version,
		DatabaseEnabled: h.db != nil,
		Uptime:          time.Since(h.startTime).Seconds(),
	}

	if snap := h.store.Current(); snap != nil {
		loadedAt := snap.LoadedAt()
		health.DatasetLoaded = true
		health.DatasetVersion = snap.Version()
		health.DatasetSource = snap.Source()
		health.DatasetLoadedAt = &loadedAt
		health.Records = len(snap.Records())
		health.MalformedRows = snap.Report().Malformed
	} else {
		health.Status = "starting"
	}

	if br, ok := h.store.Source().(breakerReporter); ok {
		health.SourceBreaker = br.BreakerState()
		if health.SourceBreaker == "open" && health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	if h.db != nil {
		health.DatabaseConnected = h.db.Ping(r.Context()) == nil
		if !health.DatabaseConnected && health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}

	w.Header().Set("Cache-Control", "no-store")
	respondSuccess(w, health, models.Metadata{DatasetVersion: health.DatasetVersion})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
//
// @Summary Kubernetes liveness probe
// @Description Returns 200 OK if the process is alive, regardless of the dataset state.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	respondSuccess(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, models.Metadata{})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
//
// @Summary Kubernetes readiness probe
// @Description Returns 200 OK once a dataset snapshot is loaded, 503 before that.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.store.Ready()

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	var info *dataset.Info
	if snap := h.store.Current(); snap != nil {
		i := snap.Info()
		info = &i
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"ready_to_serve": ready,
			"dataset":        info,
			"uptime":         time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthPerformance returns request latency percentiles per route.
//
// @Summary API latency statistics
// @Description Latency percentiles per route over the last 1000 requests.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.EndpointPerformance}
// @Router /health/performance [get]
func (h *Handler) HealthPerformance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	respondSuccess(w, h.perfMon.GetStats(), models.Metadata{})
}
