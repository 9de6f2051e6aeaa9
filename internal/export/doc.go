// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package export writes normalized listings to external sinks.

Two sinks exist:
  - WriteCSV streams records as CSV, used by the API's filtered download
    and by the listings-export command.
  - PostgresWriter upserts records into a PostgreSQL table via lib/pq,
    keyed by listing id, for downstream BI tools.

Both write the canonical column set (the normalized form, not the raw
export), so a CSV written here loads back through listings.Load unchanged.
*/
package export
