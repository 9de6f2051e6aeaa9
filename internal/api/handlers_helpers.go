// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/listingscope/internal/dashboard"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/models"
	"github.com/tomtom215/listingscope/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidation         = validation.ErrorCode
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeUpstreamError      = "UPSTREAM_ERROR"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	if w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", "no-cache")
	}

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, data interface{}, meta models.Metadata) {
	meta.Timestamp = time.Now()
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorDetails(w, status, code, message, nil, err)
}

// respondErrorDetails sends an error response carrying structured details.
func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// generateETag creates a weak ETag from an xxhash of key.
func generateETag(key string) string {
	return `W/"` + strconv.FormatUint(xxhash.Sum64String(key), 16) + `"`
}

// checkETag sets the ETag for key and reports whether the client already
// holds it, in which case a 304 has been written.
//
// Keys include the dataset version, so a reload changes every ETag.
func checkETag(w http.ResponseWriter, r *http.Request, key string) bool {
	etag := generateETag(key)
	w.Header().Set("ETag", etag)
	w.Header().Add("Vary", "X-Session-ID")

	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		if strings.TrimSpace(candidate) == etag {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

// validateRequest validates a struct using go-playground/validator.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// respondValidation writes a 400 for a failed validation.
func respondValidation(w http.ResponseWriter, apiErr *models.APIError) {
	respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
}

// getIntParam extracts an integer query parameter with a default value.
// The second result is false when the value is present but not an integer.
func getIntParam(r *http.Request, key string, defaultValue int) (int, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, true
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, false
	}
	return intValue, true
}

// requireSnapshot returns the active snapshot or writes a 503.
func (h *Handler) requireSnapshot(w http.ResponseWriter) (*dataset.Snapshot, bool) {
	snap, err := h.store.Snapshot()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Dataset is not loaded yet", nil)
		return nil, false
	}
	return snap, true
}

// criteriaFromRequest overlays the query string onto base, validates the
// result and clamps it to the snapshot's price range. It writes a 400 and
// returns false on invalid input.
func criteriaFromRequest(w http.ResponseWriter, r *http.Request, snap *dataset.Snapshot, base filter.Criteria) (filter.Criteria, bool) {
	c, err := filter.ParseQuery(r.URL.Query(), base)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return filter.Criteria{}, false
	}
	if apiErr := validateRequest(&c); apiErr != nil {
		respondValidation(w, apiErr)
		return filter.Criteria{}, false
	}
	return c.Clamp(snap.Options()), true
}

// renderOptions builds dashboard options from config and the validated page request.
func (h *Handler) renderOptions(page PageRequest, bins int) dashboard.Options {
	opts := dashboard.Options{
		MaxBins: bins,
		Offset:  page.Offset,
		Limit:   page.Limit,
	}
	if h.config != nil {
		opts.TopNeighbourhoods = h.config.Dataset.TopNeighbourhoods
		opts.MaxMapPoints = h.config.Dataset.MaxMapPoints
		if opts.MaxBins == 0 {
			opts.MaxBins = h.config.Dataset.MaxBins
		}
	}
	return opts
}

// pageFromRequest parses and validates limit/offset. It writes a 400 and
// returns false on invalid input.
func (h *Handler) pageFromRequest(w http.ResponseWriter, r *http.Request) (PageRequest, bool) {
	defaultLimit, maxLimit := dashboard.DefaultRowLimit, 1000
	if h.config != nil && h.config.API.DefaultPageSize > 0 {
		defaultLimit = h.config.API.DefaultPageSize
	}
	if h.config != nil && h.config.API.MaxPageSize > 0 {
		maxLimit = h.config.API.MaxPageSize
	}

	limit, okLimit := getIntParam(r, "limit", defaultLimit)
	offset, okOffset := getIntParam(r, "offset", 0)
	if !okLimit || !okOffset {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "limit and offset must be integers", nil)
		return PageRequest{}, false
	}

	page := PageRequest{Limit: limit, Offset: offset}
	if apiErr := validateRequest(&page); apiErr != nil {
		respondValidation(w, apiErr)
		return PageRequest{}, false
	}
	if page.Limit > maxLimit {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, fmt.Sprintf("limit must be at most %d", maxLimit), nil)
		return PageRequest{}, false
	}
	return page, true
}
