// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/listingscope/internal/database"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/models"
)

// StatsResponse is returned by /stats/groups.
type StatsResponse struct {
	GroupBy database.GroupBy       `json:"group_by"`
	Groups  []database.GroupStats `json:"groups"`
}

// ReloadResponse is returned by POST /dataset/reload.
type ReloadResponse struct {
	Changed bool         `json:"changed"`
	Dataset dataset.Info `json:"dataset"`
}

// GroupStats returns per-group price statistics from the analytics mirror
//
// @Summary Grouped price statistics
// @Description Count, mean, quartiles, extremes and mean rating per group for listings matching the criteria. Served from the DuckDB mirror of the active snapshot.
// @Tags Stats
// @Produce json
// @Param group_by query string false "neighbourhood, neighbourhood_group, room_type or property_type" default(neighbourhood)
// @Success 200 {object} models.APIResponse{data=StatsResponse}
// @Failure 400 {object} models.APIResponse "Invalid criteria or grouping"
// @Failure 503 {object} models.APIResponse "Analytics mirror disabled or not synced"
// @Router /stats/groups [get]
func (h *Handler) GroupStats(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Analytics database is disabled", nil)
		return
	}
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}

	req := StatsRequest{GroupBy: r.URL.Query().Get("group_by")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}
	groupBy, err := database.ParseGroupBy(req.GroupBy)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	c, ok := criteriaFromRequest(w, r, snap, filter.Default(snap.Options()))
	if !ok {
		return
	}

	start := time.Now()
	groups, err := h.db.Summary(r.Context(), groupBy, c)
	if errors.Is(err, database.ErrNotSynced) {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Analytics database is not synced yet", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to compute statistics", err)
		return
	}

	respondSuccess(w, StatsResponse{GroupBy: groupBy, Groups: groups}, models.Metadata{
		QueryTimeMS:    time.Since(start).Milliseconds(),
		DatasetVersion: snap.Version(),
	})
}

// DatasetInfo describes the active snapshot
//
// @Summary Active dataset
// @Tags Dataset
// @Produce json
// @Success 200 {object} models.APIResponse{data=dataset.Info}
// @Failure 503 {object} models.APIResponse "Dataset not loaded"
// @Router /dataset [get]
func (h *Handler) DatasetInfo(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}
	if checkETag(w, r, "dataset|"+snap.Version()) {
		return
	}
	respondSuccess(w, snap.Info(), models.Metadata{DatasetVersion: snap.Version()})
}

// DatasetReload re-reads the dataset source
//
// @Summary Reload dataset
// @Description Reads the configured source and publishes a new snapshot. changed is false when a remote source reported the file unchanged.
// @Tags Dataset
// @Produce json
// @Success 200 {object} models.APIResponse{data=ReloadResponse}
// @Failure 422 {object} models.APIResponse "Source is not a usable listings file"
// @Failure 429 {object} models.APIResponse "Remote fetch throttled"
// @Failure 502 {object} models.APIResponse "Remote source unavailable"
// @Router /dataset/reload [post]
func (h *Handler) DatasetReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, changed, err := h.store.Reload(r.Context())

	switch {
	case err == nil:
	case errors.Is(err, dataset.ErrThrottled):
		w.Header().Set("Retry-After", "60")
		respondError(w, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Dataset fetch throttled, try again later", nil)
		return
	case errors.Is(err, listings.ErrMissingColumn), errors.Is(err, listings.ErrEmptySource):
		respondErrorDetails(w, http.StatusUnprocessableEntity, ErrCodeValidation, "Dataset source is not a usable listings file",
			map[string]interface{}{"error": err.Error()}, err)
		return
	case h.store.Source() != nil && isRemote(h.store.Source()):
		respondError(w, http.StatusBadGateway, ErrCodeUpstreamError, "Failed to fetch dataset", err)
		return
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to load dataset", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Bool("changed", changed).
		Str("version", snap.Version()).
		Dur("elapsed", time.Since(start)).
		Msg("dataset reload requested")

	respondSuccess(w, ReloadResponse{Changed: changed, Dataset: snap.Info()}, models.Metadata{
		QueryTimeMS:    time.Since(start).Milliseconds(),
		DatasetVersion: snap.Version(),
	})
}

func isRemote(src dataset.Source) bool {
	_, ok := src.(*dataset.HTTPSource)
	return ok
}
