// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

// Validated request structs. Criteria themselves are validated through the
// tags on filter.Criteria.

// PageRequest holds the validated paging parameters of list endpoints.
//
// Fields:
//   - Limit: rows per page (1 to the configured maximum)
//   - Offset: rows to skip
type PageRequest struct {
	Limit  int `validate:"min=1,max=10000"`
	Offset int `validate:"min=0,max=10000000"`
}

// HistogramRequest holds the bin cap of /charts/price-histogram.
// Zero means the configured default.
type HistogramRequest struct {
	Bins int `validate:"min=0,max=200"`
}

// StatsRequest holds the grouping of /stats/groups.
type StatsRequest struct {
	GroupBy string `validate:"omitempty,oneof=neighbourhood neighbourhood_group room_type property_type"`
}
