// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/listingscope/internal/aggregate"
	"github.com/tomtom215/listingscope/internal/dashboard"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/export"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/metrics"
	"github.com/tomtom215/listingscope/internal/models"
)

// OptionsResponse lists the selectable filter values of the active snapshot.
type OptionsResponse struct {
	Options  filter.Options      `json:"options"`
	Defaults filter.Criteria     `json:"defaults"`
	Report   listings.LoadReport `json:"report"`
	Warnings []string            `json:"warnings"`
	Dataset  dataset.Info        `json:"dataset"`
}

// RatingsResponse is returned by /charts/ratings.
type RatingsResponse struct {
	Available     bool                           `json:"available"`
	Distributions []aggregate.RatingDistribution `json:"distributions"`
}

// MapResponse is returned by /map.
type MapResponse struct {
	Available bool                 `json:"available"`
	Points    []dashboard.MapPoint `json:"points"`
	Truncated bool                 `json:"truncated"`
	Matched   int                  `json:"matched"`
}

// ListingsResponse is returned by /listings.
type ListingsResponse struct {
	Summary string            `json:"summary"`
	Rows    []listings.Record `json:"rows"`
}

// viewRequest is a parsed dashboard-style request.
type viewRequest struct {
	snap     *dataset.Snapshot
	criteria filter.Criteria
	opts     dashboard.Options
}

// parseViewRequest reads criteria, paging and histogram bins on top of base.
// A nil base means the snapshot defaults. It writes the error response and
// returns false on failure.
func (h *Handler) parseViewRequest(w http.ResponseWriter, r *http.Request, base *filter.Criteria) (viewRequest, bool) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return viewRequest{}, false
	}

	b := filter.Default(snap.Options())
	if base != nil {
		b = *base
	}
	c, ok := criteriaFromRequest(w, r, snap, b)
	if !ok {
		return viewRequest{}, false
	}

	page, ok := h.pageFromRequest(w, r)
	if !ok {
		return viewRequest{}, false
	}

	bins, okBins := getIntParam(r, "bins", 0)
	hist := HistogramRequest{Bins: bins}
	if !okBins {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "bins must be an integer", nil)
		return viewRequest{}, false
	}
	if apiErr := validateRequest(&hist); apiErr != nil {
		respondValidation(w, apiErr)
		return viewRequest{}, false
	}

	return viewRequest{snap: snap, criteria: c, opts: h.renderOptions(page, hist.Bins)}, true
}

// renderView renders through the view cache and records render metrics.
func (h *Handler) renderView(channel string, snap *dataset.Snapshot, c filter.Criteria, opts dashboard.Options) (dashboard.View, bool, time.Duration) {
	start := time.Now()
	view, cached := h.views.Render(snap, c, opts)
	elapsed := time.Since(start)
	metrics.RecordRender(channel, elapsed, view.Empty)
	return view, cached, elapsed
}

// viewETagKey identifies one render for conditional requests.
func viewETagKey(endpoint string, req viewRequest) string {
	o := req.opts
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d|%d", endpoint, req.snap.Version(), req.criteria.Key(),
		o.MaxBins, o.Offset, o.Limit, o.TopNeighbourhoods, o.MaxMapPoints)
}

func viewMeta(view dashboard.View, cached bool, elapsed time.Duration) models.Metadata {
	return models.Metadata{
		QueryTimeMS:    elapsed.Milliseconds(),
		DatasetVersion: view.DatasetVersion,
		Cached:         cached,
	}
}

func pagination(view dashboard.View) *models.PaginationInfo {
	return &models.PaginationInfo{
		Offset:  view.Offset,
		Limit:   view.Limit,
		Count:   len(view.Rows),
		Total:   view.Matched,
		HasMore: view.Offset+len(view.Rows) < view.Matched,
	}
}

// Options returns the selectable filter values
//
// @Summary Filter options
// @Description Distinct property types, room types, neighbourhoods and neighbourhood groups of the loaded dataset, its price range, the default criteria and the load report.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.APIResponse{data=OptionsResponse}
// @Success 304 "Not modified"
// @Failure 503 {object} models.APIResponse "Dataset not loaded"
// @Router /options [get]
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}
	if checkETag(w, r, "options|"+snap.Version()) {
		return
	}

	respondSuccess(w, OptionsResponse{
		Options:  snap.Options(),
		Defaults: filter.Default(snap.Options()),
		Report:   snap.Report(),
		Warnings: dashboard.Warnings(snap.Report()),
		Dataset:  snap.Info(),
	}, models.Metadata{DatasetVersion: snap.Version()})
}

// Dashboard renders the complete dashboard view
//
// @Summary Dashboard view
// @Description Filters the listings and returns every chart, the map points and a page of table rows in one payload.
// @Tags Dashboard
// @Produce json
// @Param property_type query string false "Property type or All"
// @Param room_type query string false "Room type or All"
// @Param neighbourhood query string false "Neighbourhood or All"
// @Param neighbourhood_group query string false "Neighbourhood group or All"
// @Param price_min query number false "Minimum nightly price (inclusive)"
// @Param price_max query number false "Maximum nightly price (inclusive)"
// @Param limit query int false "Table rows per page"
// @Param offset query int false "Table row offset"
// @Param bins query int false "Maximum histogram bins"
// @Success 200 {object} models.APIResponse{data=dashboard.View}
// @Success 304 "Not modified"
// @Failure 400 {object} models.APIResponse "Invalid criteria"
// @Failure 503 {object} models.APIResponse "Dataset not loaded"
// @Router /dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseViewRequest(w, r, nil)
	if !ok {
		return
	}
	h.writeView(w, r, "dashboard", req)
}

// writeView renders req and writes the full view with pagination metadata.
func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, endpoint string, req viewRequest) {
	if checkETag(w, r, viewETagKey(endpoint, req)) {
		return
	}
	view, cached, elapsed := h.renderView("http", req.snap, req.criteria, req.opts)
	meta := viewMeta(view, cached, elapsed)
	meta.Pagination = pagination(view)
	respondSuccess(w, view, meta)
}

// ChartRoomTypes returns the mean price per room type
//
// @Summary Mean price by room type
// @Tags Charts
// @Produce json
// @Param room_type query string false "Room type or All"
// @Param neighbourhood query string false "Neighbourhood or All"
// @Param price_min query number false "Minimum nightly price"
// @Param price_max query number false "Maximum nightly price"
// @Success 200 {object} models.APIResponse{data=[]aggregate.RoomTypeMean}
// @Router /charts/room-types [get]
func (h *Handler) ChartRoomTypes(w http.ResponseWriter, r *http.Request) {
	h.writeChart(w, r, "room-types", func(v dashboard.View) interface{} { return v.RoomTypeMeans })
}

// ChartPriceHistogram returns the price distribution
//
// @Summary Price histogram
// @Tags Charts
// @Produce json
// @Param bins query int false "Maximum bin count (0 = configured default)"
// @Param room_type query string false "Room type or All"
// @Param price_min query number false "Minimum nightly price"
// @Param price_max query number false "Maximum nightly price"
// @Success 200 {object} models.APIResponse{data=[]aggregate.Bin}
// @Router /charts/price-histogram [get]
func (h *Handler) ChartPriceHistogram(w http.ResponseWriter, r *http.Request) {
	h.writeChart(w, r, "price-histogram", func(v dashboard.View) interface{} { return v.Histogram })
}

// ChartNeighbourhoods returns listing counts per neighbourhood
//
// @Summary Listings per neighbourhood
// @Description Counts sorted by count descending then name. Neighbourhoods past the configured top N are folded into "Other".
// @Tags Charts
// @Produce json
// @Param neighbourhood_group query string false "Neighbourhood group or All"
// @Success 200 {object} models.APIResponse{data=[]aggregate.NeighbourhoodCount}
// @Router /charts/neighbourhoods [get]
func (h *Handler) ChartNeighbourhoods(w http.ResponseWriter, r *http.Request) {
	h.writeChart(w, r, "neighbourhoods", func(v dashboard.View) interface{} { return v.Neighbourhoods })
}

// ChartRatings returns the price distribution per rating bucket
//
// @Summary Price by rating bucket
// @Description Box statistics of price per review score bucket. available is false when the dataset has no rating column.
// @Tags Charts
// @Produce json
// @Success 200 {object} models.APIResponse{data=RatingsResponse}
// @Router /charts/ratings [get]
func (h *Handler) ChartRatings(w http.ResponseWriter, r *http.Request) {
	h.writeChart(w, r, "ratings", func(v dashboard.View) interface{} {
		return RatingsResponse{Available: v.RatingsAvailable, Distributions: v.RatingDistributions}
	})
}

// Map returns map points for the filtered listings
//
// @Summary Map points
// @Description Located listings matching the criteria, capped by the configured maximum.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.APIResponse{data=MapResponse}
// @Router /map [get]
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	h.writeChart(w, r, "map", func(v dashboard.View) interface{} {
		return MapResponse{Available: v.MapAvailable, Points: v.MapPoints, Truncated: v.MapTruncated, Matched: v.Matched}
	})
}

// writeChart renders the view for the request and writes one part of it.
func (h *Handler) writeChart(w http.ResponseWriter, r *http.Request, endpoint string, pick func(dashboard.View) interface{}) {
	req, ok := h.parseViewRequest(w, r, nil)
	if !ok {
		return
	}
	if checkETag(w, r, viewETagKey(endpoint, req)) {
		return
	}
	view, cached, elapsed := h.renderView("http", req.snap, req.criteria, req.opts)
	respondSuccess(w, pick(view), viewMeta(view, cached, elapsed))
}

// Listings returns a page of filtered listings
//
// @Summary Filtered listings
// @Tags Listings
// @Produce json
// @Param limit query int false "Rows per page"
// @Param offset query int false "Row offset"
// @Success 200 {object} models.APIResponse{data=ListingsResponse}
// @Failure 400 {object} models.APIResponse "Invalid criteria or paging"
// @Router /listings [get]
func (h *Handler) Listings(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseViewRequest(w, r, nil)
	if !ok {
		return
	}
	if checkETag(w, r, viewETagKey("listings", req)) {
		return
	}

	start := time.Now()
	matched := filter.Apply(req.snap.Records(), req.criteria)
	rows, offset, limit := dashboard.Page(matched, req.opts.Offset, req.opts.Limit)
	elapsed := time.Since(start)
	metrics.RecordRender("http", elapsed, len(matched) == 0)

	respondSuccess(w, ListingsResponse{
		Summary: dashboard.Summary(req.criteria, len(matched), len(req.snap.Records())),
		Rows:    rows,
	}, models.Metadata{
		QueryTimeMS:    elapsed.Milliseconds(),
		DatasetVersion: req.snap.Version(),
		Pagination: &models.PaginationInfo{
			Offset:  offset,
			Limit:   limit,
			Count:   len(rows),
			Total:   len(matched),
			HasMore: offset+len(rows) < len(matched),
		},
	})
}

// ListingsCSV streams every filtered listing as CSV
//
// @Summary Export filtered listings as CSV
// @Tags Listings
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} models.APIResponse "Invalid criteria"
// @Router /listings/export.csv [get]
func (h *Handler) ListingsCSV(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}
	c, ok := criteriaFromRequest(w, r, snap, filter.Default(snap.Options()))
	if !ok {
		return
	}

	matched := filter.Apply(snap.Records(), c)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="listings-`+snap.Version()+`.csv"`)
	w.Header().Set("X-Total-Count", strconv.Itoa(len(matched)))
	w.Header().Set("Cache-Control", "no-store")

	n, err := export.WriteCSV(w, matched)
	if err != nil {
		// Headers are gone; the truncated body is all we can signal.
		logging.Ctx(r.Context()).Error().Err(err).Int("written", n).Msg("CSV export interrupted")
	}
}
