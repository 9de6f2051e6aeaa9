// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package models

import "time"

// HealthStatus is returned by /api/v1/health.
type HealthStatus struct {
	Status            string     `json:"status"` // "healthy", "degraded" or "starting"
	Version           string     `json:"version"`
	DatasetLoaded     bool       `json:"dataset_loaded"`
	DatasetVersion    string     `json:"dataset_version,omitempty"`
	DatasetSource     string     `json:"dataset_source,omitempty"`
	DatasetLoadedAt   *time.Time `json:"dataset_loaded_at,omitempty"`
	Records           int        `json:"records"`
	MalformedRows     int        `json:"malformed_rows"`
	SourceBreaker     string     `json:"source_breaker,omitempty"`
	DatabaseEnabled   bool       `json:"database_enabled"`
	DatabaseConnected bool       `json:"database_connected"`
	WebSocketClients  int        `json:"websocket_clients"`
	Uptime            float64    `json:"uptime_seconds"`
}

// EndpointPerformance summarizes request latency for one route.
type EndpointPerformance struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	P99MS        int64   `json:"p99_ms"`
	MinMS        int64   `json:"min_ms"`
	MaxMS        int64   `json:"max_ms"`
}
