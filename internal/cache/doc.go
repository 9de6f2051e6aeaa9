// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package cache provides the in-memory caches used by the API.

LRU is a generic, thread-safe least recently used cache with TTL expiry.
ViewCache builds on it to memoize rendered dashboard views per
(snapshot version, criteria, render options).

# Usage Example

	views := cache.NewViewCache(cfg.Cache.Size, cfg.Cache.TTL)
	store.Subscribe("view-cache", func(context.Context, *dataset.Snapshot) {
	    views.Purge()
	})

	view, hit := views.Render(snap, criteria, opts)

# Thread Safety

All operations are safe for concurrent use. Rendering on a miss happens
outside the lock, so two concurrent misses for the same key may both
render; the later Add wins and both results are identical.
*/
package cache
