// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package database mirrors the active listings snapshot into DuckDB and
// answers grouped statistics queries against it.
//
// # Overview
//
// The in-memory filter and aggregate packages serve the dashboard. DuckDB
// backs the heavier grouped summaries (median and quartiles per
// neighbourhood, room type and so on) exposed at /api/v1/stats/groups.
//
//   - database.go: connection lifecycle, pool settings and PRAGMAs
//   - schema.go: table and index creation
//   - mirror.go: ReplaceListings swaps the mirrored rows in one transaction
//   - stats.go: Summary runs a grouped query with the same criteria
//     semantics as filter.Criteria.Matches
//   - query/: parameterized WHERE clause builder
//
// # Consistency
//
// ReplaceListings is called from a dataset store listener after each
// publish. Until the first call Summary returns ErrNotSynced. A mirror
// backed by a file remembers the last mirrored version across restarts.
//
// # Thread Safety
//
// DB is safe for concurrent use. Writes run inside a transaction so readers
// never observe a half-replaced table.
package database
