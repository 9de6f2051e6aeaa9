// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package main provides the Listingscope HTTP server
//
// @title Listingscope API
// @version 1.0
// @description Filtering and aggregation API for an Airbnb listings dashboard.
// @description
// @description ## Features
// @description
// @description - **Filters**: property type, room type, neighbourhood, neighbourhood group and price range
// @description - **Charts**: mean price by room type, price histogram, neighbourhood counts, rating distributions
// @description - **Map**: coordinates of the filtered listings
// @description - **Sessions**: per-browser stored criteria via cookie or `X-Session-ID`
// @description - **Live updates**: WebSocket channel re-rendering on criteria changes and dataset reloads
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 1000 requests per minute per IP for dashboard reads.
// @description Reloads are limited to 6 per minute and CSV exports to 10 per minute.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "VALIDATION_ERROR",
// @description     "message": "price_min must be greater than or equal to 0"
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-01-18T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/listingscope/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8501
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Core
// @tag.description Health checks and dataset status
//
// @tag.name Dashboard
// @tag.description Filter options, the full dashboard view and individual charts
//
// @tag.name Listings
// @tag.description Filtered listing rows, map points and CSV export
//
// @tag.name Session
// @tag.description Per-session stored filter criteria
//
// @tag.name Stats
// @tag.description Grouped statistics from the DuckDB mirror
//
// @tag.name Realtime
// @tag.description WebSocket channel for live dashboard updates
package main
