// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package listings turns a raw listings CSV into an immutable, fully typed
record table.

Loading happens once per dataset version:

	records, report, err := listings.Load(r)

The header is checked once. Required columns (price, room_type) missing from
the header fail the load with a *MissingColumnError; optional columns are
recorded in LoadReport.MissingColumns and the dependent views degrade (no map
without latitude/longitude, no rating distribution without
review_scores_rating).

Normalization rules:
  - price: currency symbols, thousands separators and whitespace are
    stripped and the remainder parsed as a float. Unparsable, non-finite or
    negative prices make the row malformed; malformed rows are dropped and
    counted in LoadReport.Malformed.
  - neighbourhood: trimmed; blank or NaN becomes NotListed.
  - coordinates: a pair that is absent, unparsable or out of range clears
    HasLocation but keeps the row.
  - review_scores_rating: bucketed into "(0-1]" .. "(4-5]" with 0 falling
    in the first bucket. Values outside [0, 5] carry no bucket.

Records are never modified after Load returns.
*/
package listings
