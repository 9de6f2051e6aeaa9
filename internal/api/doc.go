// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package api provides the HTTP REST API layer for Listingscope.

Every endpoint reads the active dataset snapshot, overlays the filter
criteria from the query string onto a base (the dataset defaults, or the
caller's stored criteria for /session routes), validates and clamps them,
and renders the result through the shared view cache.

API Categories:

1. Health (/api/v1/health):
  - Overall status, liveness, readiness and per-route latency

2. Dashboard (/api/v1):
  - options: selectable filter values, defaults and the load report
  - dashboard: every chart, map points and a page of rows in one payload
  - charts/*: room-types, price-histogram, neighbourhoods, ratings
  - map, listings, listings/export.csv

3. Session (/api/v1/session):
  - Stored criteria per visitor (cookie or X-Session-ID header)

4. Stats and dataset (/api/v1/stats, /api/v1/dataset):
  - Grouped price statistics from the DuckDB mirror
  - Snapshot info and manual reload

5. Live channel (/api/v1/ws):
  - Criteria in, rendered views out, reload notifications

Responses use the models.APIResponse envelope. Read endpoints set a weak ETag
derived from the dataset version and the normalized criteria, so any reload
invalidates every client copy.

Usage Example:

	handler := api.NewHandler(cfg, store, views, sessions, db, hub)
	store.Subscribe("api", handler.OnDatasetReloaded)
	router := api.NewRouter(handler, nil)
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
*/
package api
