// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package main is the entry point for the Listingscope server.

Listingscope loads an Inside Airbnb style listings CSV, normalizes it, and
serves the filter options, aggregates and map points behind an interactive
dashboard.

# Application Architecture

	RootSupervisor ("listingscope")
	├── DataSupervisor ("data-layer")
	│   ├── Dataset refresh (if DATASET_REFRESH_INTERVAL > 0)
	│   └── Session cleanup
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Initialization order:

 1. Configuration: koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON or console output
 3. Session store: memory or Badger
 4. DuckDB mirror (if DUCKDB_ENABLED), subscribed to dataset reloads
 5. WebSocket hub and API handler, subscribed to dataset reloads
 6. Initial dataset load
 7. Supervisor tree with the HTTP server

A failed initial load is logged and the server still starts. Readiness
reports 503 until a refresh or POST /api/v1/dataset/reload succeeds.

# Configuration

	LISTINGS_SOURCE=data/listings.csv     # path or http(s) URL, .gz accepted
	DATASET_REFRESH_INTERVAL=0            # 0 loads once
	HTTP_PORT=8501
	SESSION_STORE=memory                  # memory or badger
	DUCKDB_ENABLED=true                   # DuckDB mirror for /stats/groups
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
SHUTDOWN_TIMEOUT, the hub closes every client, then the session store
and DuckDB are closed.

# Example Usage

	LISTINGS_SOURCE=https://data.insideairbnb.com/.../listings.csv.gz ./listingscope
*/
package main
