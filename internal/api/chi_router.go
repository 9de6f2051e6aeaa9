// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/listingscope/internal/middleware"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler. A nil chiMw uses the defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		if handler.config != nil {
			chiMw = NewChiMiddlewareFromConfig(handler.config.Security)
		} else {
			chiMw = NewChiMiddleware(nil)
		}
	}
	return &Router{handler: handler, chiMiddleware: chiMw}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	perf := router.handler.PerformanceMonitor()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.AccessLog))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/performance", router.handler.HealthPerformance)
	})

	// ========================
	// Live Channel
	// ========================
	// No compression or perf wrapper; the connection is hijacked.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWebSocket())
		r.Get("/api/v1/ws", router.handler.WebSocket)
	})

	// ========================
	// Dashboard Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitDashboard())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(perf.Middleware))
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/options", router.handler.Options)
		r.Get("/dashboard", router.handler.Dashboard)
		r.Get("/map", router.handler.Map)
		r.Get("/listings", router.handler.Listings)
		r.With(router.chiMiddleware.RateLimitExport()).Get("/listings/export.csv", router.handler.ListingsCSV)

		r.Route("/charts", func(r chi.Router) {
			r.Get("/room-types", router.handler.ChartRoomTypes)
			r.Get("/price-histogram", router.handler.ChartPriceHistogram)
			r.Get("/neighbourhoods", router.handler.ChartNeighbourhoods)
			r.Get("/ratings", router.handler.ChartRatings)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/criteria", router.handler.GetSessionCriteria)
			r.Put("/criteria", router.handler.PutSessionCriteria)
			r.Delete("/criteria", router.handler.DeleteSessionCriteria)
			r.Get("/dashboard", router.handler.SessionDashboard)
		})

		r.Get("/stats/groups", router.handler.GroupStats)

		r.Get("/dataset", router.handler.DatasetInfo)
		r.With(router.chiMiddleware.RateLimitReload()).Post("/dataset/reload", router.handler.DatasetReload)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
