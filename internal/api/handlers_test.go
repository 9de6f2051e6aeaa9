// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/listingscope/internal/aggregate"
	"github.com/tomtom215/listingscope/internal/cache"
	"github.com/tomtom215/listingscope/internal/config"
	"github.com/tomtom215/listingscope/internal/dashboard"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "error",
		Format: "console",
		Output: io.Discard,
	})
}

// fixtureCSV has four valid listings (prices 40..200) and one malformed price.
const fixtureCSV = `id,name,neighbourhood_cleansed,neighbourhood_group_cleansed,property_type,room_type,price,latitude,longitude,review_scores_rating
1,Loft,Mission,West,Entire loft,Entire home/apt,$120.00,37.76,-122.42,4.9
2,Room,Castro,West,Private room in home,Private room,$85,37.78,-122.41,3.5
3,Studio,Mission,West,Entire condo,Entire home/apt,"$200.00",37.77,-122.40,4.1
4,Bunk,SoMa,East,Shared room in hostel,Shared room,$40,37.78,-122.39,
5,Bad,SoMa,East,Entire condo,Entire home/apt,n/a,37.77,-122.40,4.1
`

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			DefaultPageSize: 2,
			MaxPageSize:     50,
		},
		Session: config.SessionConfig{Store: "memory", TTL: time.Hour},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
	}
}

// setupTestHandler returns a handler over a loaded fixture store.
func setupTestHandler(t *testing.T) (*Handler, *dataset.Store) {
	t.Helper()

	store := dataset.NewStore(dataset.NewBytesSource("fixture", []byte(fixtureCSV)))
	if _, _, err := store.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	h := NewHandler(testConfig(), store, cache.NewViewCache(64, time.Minute), nil, nil, nil)
	store.Subscribe("api", h.OnDatasetReloaded)
	return h, store
}

// envelope is the client-side shape of models.APIResponse.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func serve(t *testing.T, h *Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	NewRouter(h, nil).SetupChi().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data payload: %v", err)
		}
	}
	return env
}

func TestDashboard_DefaultCriteria(t *testing.T) {
	t.Parallel()
	h, store := setupTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/api/v1/dashboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var view dashboard.View
	env := decodeEnvelope(t, rec, &view)
	if view.Matched != 4 || view.Total != 4 {
		t.Errorf("matched/total = %d/%d, want 4/4", view.Matched, view.Total)
	}
	if len(view.Rows) != 2 {
		t.Errorf("rows = %d, want configured page size 2", len(view.Rows))
	}
	if env.Metadata.DatasetVersion != store.Current().Version() {
		t.Errorf("dataset version = %q", env.Metadata.DatasetVersion)
	}
	p := env.Metadata.Pagination
	if p == nil || p.Total != 4 || !p.HasMore {
		t.Errorf("unexpected pagination %+v", p)
	}
	if len(view.Warnings) == 0 {
		t.Error("malformed row should surface a warning")
	}
}

func TestDashboard_Filters(t *testing.T) {
	t.Parallel()
	h, _ := setupTestHandler(t)

	tests := []struct {
		name    string
		query   string
		matched int
	}{
		{"room type", "room_type=Entire+home%2Fapt", 2},
		{"neighbourhood", "neighbourhood=Mission", 2},
		{"neighbourhood group", "neighbourhood_group=East", 1},
		{"property type", "property_type=Entire+loft", 1},
		{"price range inclusive", "price_min=85&price_max=120", 2},
		{"combined", "room_type=Entire+home%2Fapt&price_max=150", 1},
		{"all keyword", "room_type=All&neighbourhood=all", 4},
		{"no match", "room_type=Hotel+room", 0},
		{"range above data is clamped", "price_min=0&price_max=100000", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, h, http.MethodGet, "/api/v1/dashboard?"+tt.query, "", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var view dashboard.View
			decodeEnvelope(t, rec, &view)
			if view.Matched != tt.matched {
				t.Errorf("matched = %d, want %d", view.Matched, tt.matched)
			}
			if (tt.matched == 0) != view.Empty {
				t.Errorf("empty = %v with %d matches", view.Empty, view.Matched)
			}
		})
	}
}

func TestDashboard_InvalidParameters(t *testing.T) {
	t.Parallel()
	h, _ := setupTestHandler(t)

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric price", "price_min=cheap"},
		{"inverted range", "price_min=150&price_max=100"},
		{"negative price", "price_min=-1"},
		{"zero limit", "limit=0"},
		{"limit above max", "limit=51"},
		{"non-integer offset", "offset=x"},
		{"too many bins", "bins=500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, h, http.MethodGet, "/api/v1/dashboard?"+tt.query, "", nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			env := decodeEnvelope(t, rec, nil)
			if env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("unexpected error %+v", env.Error)
			}
		})
	}
}

func TestDashboard_ETag(t *testing.T) {
	t.Parallel()
	h, store := setupTestHandler(t)

	first := serve(t, h, http.MethodGet, "/api/v1/dashboard?room_type=Private+room", "", nil)
	etag := first.Header().Get("ETag")
	if etag == "" || !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	again := serve(t, h, http.MethodGet, "/api/v1/dashboard?room_type=Private+room", "", map[string]string{"If-None-Match": etag})
	if again.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", again.Code)
	}

	other := serve(t, h, http.MethodGet, "/api/v1/dashboard?room_type=Shared+room", "", map[string]string{"If-None-Match": etag})
	if other.Code != http.StatusOK {
		t.Errorf("different criteria should not match the ETag, got %d", other.Code)
	}

	if _, _, err := store.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	reloaded := serve(t, h, http.MethodGet, "/api/v1/dashboard?room_type=Private+room", "", map[string]string{"If-None-Match": etag})
	if reloaded.Code != http.StatusOK {
		t.Errorf("reload should invalidate ETags, got %d", reloaded.Code)
	}
}

func TestDashboard_NotLoaded(t *testing.T) {
	t.Parallel()
	store := dataset.NewStore(dataset.NewBytesSource("empty", nil))
	h := NewHandler(testConfig(), store, nil, nil, nil, nil)

	for _, path := range []string{"/api/v1/dashboard", "/api/v1/options", "/api/v1/charts/room-types", "/api/v1/listings", "/api/v1/dataset"} {
		rec := serve(t, h, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
		}
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()
	h, _ := setupTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/api/v1/options", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp OptionsResponse
	decodeEnvelope(t, rec, &resp)

	want := []string{"Entire home/apt", "Private room", "Shared room"}
	if strings.Join(resp.Options.RoomTypes, ",") != strings.Join(want, ",") {
		t.Errorf("room types = %v, want %v", resp.Options.RoomTypes, want)
	}
	if resp.Options.Price.Min != 40 || resp.Options.Price.Max != 200 {
		t.Errorf("price range = %+v", resp.Options.Price)
	}
	if resp.Defaults.PriceMin != 40 || resp.Defaults.PriceMax != 200 || resp.Defaults.RoomType != "All" {
		t.Errorf("defaults = %+v", resp.Defaults)
	}
	if resp.Report.Malformed != 1 || resp.Dataset.Loaded != 4 {
		t.Errorf("report = %+v", resp.Report)
	}
}

func TestCharts(t *testing.T) {
	t.Parallel()
	h, _ := setupTestHandler(t)

	t.Run("room types", func(t *testing.T) {
		t.Parallel()
		var means []aggregate.RoomTypeMean
		decodeEnvelope(t, serve(t, h, http.MethodGet, "/api/v1/charts/room-types", "", nil), &means)
		if len(means) != 3 {
			t.Fatalf("got %d room types", len(means))
		}
		for _, m := range means {
			if m.RoomType == "Entire home/apt" && m.MeanPrice != 160 {
				t.Errorf("entire home mean = %v, want 160", m.MeanPrice)
			}
		}
	})

	t.Run("histogram", func(t *testing.T) {
		t.Parallel()
		var bins []aggregate.Bin
		decodeEnvelope(t, serve(t, h, http.MethodGet, "/api/v1/charts/price-histogram?bins=5", "", nil), &bins)
		if len(bins) == 0 || len(bins) > 5 {
			t.Fatalf("got %d bins, want 1..5", len(bins))
		}
		total := 0
		for _, b := range bins {
			total += b.Count
		}
		if total != 4 {
			t.Errorf("bins hold %d prices, want 4", total)
		}
	})

	t.Run("neighbourhoods", func(t *testing.T) {
		t.Parallel()
		var counts []aggregate.NeighbourhoodCount
		decodeEnvelope(t, serve(t, h, http.MethodGet, "/api/v1/charts/neighbourhoods", "", nil), &counts)
		if len(counts) == 0 || counts[0].Neighbourhood != "Mission" || counts[0].Count != 2 {
			t.Errorf("unexpected counts %+v", counts)
		}
	})

	t.Run("ratings", func(t *testing.T) {
		t.Parallel()
		var resp RatingsResponse
		decodeEnvelope(t, serve(t, h, http.MethodGet, "/api/v1/charts/ratings", "", nil), &resp)
		if !resp.Available || len(resp.Distributions) == 0 {
			t.Errorf("ratings should be available: %+v", resp)
		}
	})

	t.Run("map", func(t *testing.T) {
		t.Parallel()
		var resp MapResponse
		decodeEnvelope(t, serve(t, h, http.MethodGet, "/api/v1/map?neighbourhood=Mission", "", nil), &resp)
		if !resp.Available || len(resp.Points) != 2 || resp.Truncated {
			t.Errorf("unexpected map %+v", resp)
		}
	})
}

func TestListings_Pagination(t *testing.T) {
	t.Parallel()
	h, _ := setupTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/api/v1/listings?limit=3&offset=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp ListingsResponse
	env := decodeEnvelope(t, rec, &resp)
	if len(resp.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(resp.Rows))
	}
	p := env.Metadata.Pagination
	if p == nil || p.Offset != 2 || p.Count != 2 || p.HasMore {
		t.Errorf("unexpected pagination %+v", p)
	}
	if resp.Summary == "" {
		t.Error("summary should be set")
	}
}

func TestListingsCSV(t *testing.T) {
	t.Parallel()
	h, _ := setupTestHandler(t)

	rec := serve(t, h, http.MethodGet, "/api/v1/listings/export.csv?room_type=Entire+home%2Fapt", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	if rec.Header().Get("X-Total-Count") != "2" {
		t.Errorf("X-Total-Count = %q", rec.Header().Get("X-Total-Count"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("got %d CSV lines, want header plus 2 rows", len(lines))
	}
}

func TestOnDatasetReloaded_PurgesViews(t *testing.T) {
	t.Parallel()
	h, store := setupTestHandler(t)

	serve(t, h, http.MethodGet, "/api/v1/dashboard", "", nil)
	if h.views.Len() == 0 {
		t.Fatal("view should be cached")
	}
	if _, _, err := store.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.views.Len() != 0 {
		t.Errorf("reload should purge cached views, %d left", h.views.Len())
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()
	a, b := generateETag("v1|x"), generateETag("v2|x")
	if a == b {
		t.Error("different keys should give different ETags")
	}
	if a != generateETag("v1|x") {
		t.Error("ETag must be deterministic")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}

func TestDashboard_RangeOutsideObserved(t *testing.T) {
	t.Parallel()
	h, _ := setupTestHandler(t)

	tests := []struct {
		name     string
		query    string
		min, max float64
	}{
		{"above", "price_min=1000&price_max=2000", 1000, 2000},
		{"below", "price_min=1&price_max=10", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, h, http.MethodGet, "/api/v1/dashboard?"+tt.query, "", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var view dashboard.View
			decodeEnvelope(t, rec, &view)
			if view.Criteria.PriceMin > view.Criteria.PriceMax {
				t.Fatalf("echoed an inverted range [%v, %v]", view.Criteria.PriceMin, view.Criteria.PriceMax)
			}
			if view.Criteria.PriceMin != tt.min || view.Criteria.PriceMax != tt.max {
				t.Errorf("criteria = [%v, %v], want [%v, %v]", view.Criteria.PriceMin, view.Criteria.PriceMax, tt.min, tt.max)
			}
			if view.Matched != 0 || !view.Empty {
				t.Errorf("matched %d, empty %v", view.Matched, view.Empty)
			}
			if !strings.Contains(view.Summary, dashboard.FormatPrice(tt.min)) || !strings.Contains(view.Summary, dashboard.FormatPrice(tt.max)) {
				t.Errorf("summary should name the requested range: %q", view.Summary)
			}
		})
	}
}
