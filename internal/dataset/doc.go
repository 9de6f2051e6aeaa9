// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package dataset owns the active listings snapshot.

A Store loads a Source (local file or HTTP URL, optionally gzip-compressed),
normalizes it with listings.Load and publishes the result as an immutable
*Snapshot. Readers call Store.Current and keep using the snapshot they got
for the whole request; a reload swaps the pointer atomically and never
touches a published snapshot.

Remote sources go through a gobreaker circuit breaker and an x/time/rate
limiter, and use conditional requests (ETag / Last-Modified) so an
unchanged upstream file is not parsed again. File sources skip reloads
when size and modification time are unchanged.

RefreshService reloads on an interval under suture supervision.
*/
package dataset
