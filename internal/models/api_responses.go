// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package models

import (
	"time"
)

// APIResponse is the envelope used by every JSON endpoint.
//
// Status is "success" or "error". On error, Data is null and Error is set.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"matched": 312, "total": 8411, ...},
//	  "metadata": {
//	    "timestamp": "2026-10-18T12:00:00Z",
//	    "query_time_ms": 3,
//	    "dataset_version": "4-17f0c9d2a1b3c4d5",
//	    "cached": true
//	  }
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
//
// DatasetVersion identifies the snapshot the data was computed from; clients
// compare it against dataset_reloaded notifications to discard stale views.
type Metadata struct {
	Timestamp      time.Time       `json:"timestamp"`
	QueryTimeMS    int64           `json:"query_time_ms,omitempty"`
	DatasetVersion string          `json:"dataset_version,omitempty"`
	Cached         bool            `json:"cached,omitempty"`
	Pagination     *PaginationInfo `json:"pagination,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid criteria or paging parameters
//   - NOT_FOUND: Unknown session
//   - SERVICE_UNAVAILABLE: Dataset not loaded or mirror disabled
//   - TOO_MANY_REQUESTS: Reload throttled
//   - DATABASE_ERROR: Mirror query failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes an offset page of matched listings.
type PaginationInfo struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Count   int  `json:"count"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}
