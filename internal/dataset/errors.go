// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package dataset

import "errors"

var (
	// ErrNotModified means the source has not changed since the last successful load.
	ErrNotModified = errors.New("dataset source not modified")

	// ErrThrottled means a fetch was refused by the fetch rate limiter.
	ErrThrottled = errors.New("dataset fetch throttled")

	// ErrUpstreamStatus wraps a non-success HTTP status from a remote source.
	ErrUpstreamStatus = errors.New("dataset upstream returned error status")

	// ErrNotLoaded is returned when no snapshot has been published yet.
	ErrNotLoaded = errors.New("dataset not loaded")
)
