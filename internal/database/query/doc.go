// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package query builds parameterized SQL fragments for the DuckDB mirror.
//
// Column names are always supplied by the caller as constants; only values
// are bound as arguments.
package query
