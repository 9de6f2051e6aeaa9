// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package models defines the JSON envelope and status types shared by the
HTTP API and its generated Swagger documentation.

Domain types live with the code that owns them: listings.Record in
internal/listings, filter.Criteria in internal/filter and dashboard.View in
internal/dashboard. This package only holds the wrapper types that every
endpoint shares.
*/
package models
