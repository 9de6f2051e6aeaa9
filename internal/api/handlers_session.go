// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/listingscope/internal/dashboard"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/metrics"
	"github.com/tomtom215/listingscope/internal/models"
	"github.com/tomtom215/listingscope/internal/session"
)

const (
	// SessionCookieName holds the session ID for browsers.
	SessionCookieName = "listingscope_session"

	// SessionHeader carries the session ID for non-browser clients.
	SessionHeader = "X-Session-ID"

	maxCriteriaBody = 64 * 1024
	defaultTTL      = 7 * 24 * time.Hour
)

// SessionCriteriaResponse is returned by the /session/criteria endpoints.
type SessionCriteriaResponse struct {
	SessionID string          `json:"session_id"`
	Criteria  filter.Criteria `json:"criteria"`
	Stored    bool            `json:"stored"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// sessionID resolves the caller's session from the header or cookie. With
// create set, a missing or malformed ID is replaced by a fresh one, which is
// returned in both the cookie and the response header.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request, create bool) string {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			id = cookie.Value
		}
	}
	if session.ValidID(id) {
		return id
	}
	if !create {
		return ""
	}

	id = session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil || (h.config != nil && h.config.IsProduction()),
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, id)
	return id
}

func (h *Handler) sessionStoreName() string {
	if h.config != nil && h.config.Session.Store != "" {
		return h.config.Session.Store
	}
	return "memory"
}

func (h *Handler) sessionTTL() time.Duration {
	if h.config != nil && h.config.Session.TTL > 0 {
		return h.config.Session.TTL
	}
	return defaultTTL
}

// storedCriteria returns the saved criteria for id, clamped to the snapshot.
// ok is false when nothing usable is stored.
func (h *Handler) storedCriteria(ctx context.Context, id string, snap *dataset.Snapshot) (filter.Criteria, *session.Session, bool) {
	if id == "" {
		return filter.Criteria{}, nil, false
	}
	sess, err := h.sessions.Get(ctx, id)
	metrics.RecordSessionOp(h.sessionStoreName(), "get", err)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) && !errors.Is(err, session.ErrSessionExpired) {
			logging.Ctx(ctx).Warn().Err(err).Msg("session lookup failed")
		}
		return filter.Criteria{}, nil, false
	}
	return sess.Criteria.Clamp(snap.Options()), sess, true
}

// saveCriteria persists c for id with the configured TTL.
func (h *Handler) saveCriteria(ctx context.Context, id string, c filter.Criteria) (*session.Session, error) {
	sess, err := session.Save(ctx, h.sessions, id, c, h.sessionTTL())
	metrics.RecordSessionOp(h.sessionStoreName(), "put", err)
	return sess, err
}

// GetSessionCriteria returns the criteria stored for the caller's session
//
// @Summary Stored criteria
// @Description Returns the saved criteria, or the dataset defaults when nothing is stored.
// @Tags Session
// @Produce json
// @Param X-Session-ID header string false "Session ID (falls back to the session cookie)"
// @Success 200 {object} models.APIResponse{data=SessionCriteriaResponse}
// @Failure 503 {object} models.APIResponse "Dataset not loaded"
// @Router /session/criteria [get]
func (h *Handler) GetSessionCriteria(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}
	id := h.sessionID(w, r, true)

	resp := SessionCriteriaResponse{SessionID: id, Criteria: filter.Default(snap.Options())}
	if c, sess, found := h.storedCriteria(r.Context(), id, snap); found {
		resp.Criteria = c
		resp.Stored = true
		resp.ExpiresAt = &sess.ExpiresAt
	}
	respondSuccess(w, resp, models.Metadata{DatasetVersion: snap.Version()})
}

// PutSessionCriteria stores criteria for the caller's session
//
// @Summary Store criteria
// @Description Merges the JSON body onto the stored criteria (or the defaults), validates, clamps to the dataset price range and saves the result.
// @Tags Session
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Session ID (falls back to the session cookie)"
// @Param criteria body filter.Criteria true "Partial criteria"
// @Success 200 {object} models.APIResponse{data=SessionCriteriaResponse}
// @Failure 400 {object} models.APIResponse "Invalid criteria"
// @Failure 500 {object} models.APIResponse "Session store failure"
// @Router /session/criteria [put]
func (h *Handler) PutSessionCriteria(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}
	id := h.sessionID(w, r, true)

	c := filter.Default(snap.Options())
	if stored, _, found := h.storedCriteria(r.Context(), id, snap); found {
		c = stored
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCriteriaBody))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large", nil)
		return
	}
	c, err = c.Merge(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil)
		return
	}
	if apiErr := validateRequest(&c); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}
	c = c.Clamp(snap.Options())

	sess, err := h.saveCriteria(r.Context(), id, c)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to store session", err)
		return
	}
	respondSuccess(w, SessionCriteriaResponse{
		SessionID: id,
		Criteria:  sess.Criteria,
		Stored:    true,
		ExpiresAt: &sess.ExpiresAt,
	}, models.Metadata{DatasetVersion: snap.Version()})
}

// DeleteSessionCriteria forgets the caller's stored criteria
//
// @Summary Reset criteria
// @Tags Session
// @Param X-Session-ID header string false "Session ID (falls back to the session cookie)"
// @Success 204 "Deleted"
// @Router /session/criteria [delete]
func (h *Handler) DeleteSessionCriteria(w http.ResponseWriter, r *http.Request) {
	if id := h.sessionID(w, r, false); id != "" {
		err := h.sessions.Delete(r.Context(), id)
		metrics.RecordSessionOp(h.sessionStoreName(), "delete", err)
		if err != nil {
			respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to delete session", err)
			return
		}
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

// SessionDashboard renders the dashboard for the stored criteria
//
// @Summary Dashboard for stored criteria
// @Description Like /dashboard, but query parameters are overlaid on the session's stored criteria instead of the defaults.
// @Tags Session
// @Produce json
// @Param X-Session-ID header string false "Session ID (falls back to the session cookie)"
// @Success 200 {object} models.APIResponse{data=dashboard.View}
// @Success 304 "Not modified"
// @Router /session/dashboard [get]
func (h *Handler) SessionDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.requireSnapshot(w)
	if !ok {
		return
	}
	id := h.sessionID(w, r, true)

	var base *filter.Criteria
	if stored, _, found := h.storedCriteria(r.Context(), id, snap); found {
		base = &stored
	}
	req, ok := h.parseViewRequest(w, r, base)
	if !ok {
		return
	}
	h.writeView(w, r, "session-dashboard", req)
}

// DefaultCriteria returns the criteria selecting every listing of the
// active snapshot.
func (h *Handler) DefaultCriteria() filter.Criteria {
	if snap := h.store.Current(); snap != nil {
		return filter.Default(snap.Options())
	}
	return filter.Criteria{}.Normalized()
}

// InitialCriteria returns the stored criteria for a WebSocket session, or
// the defaults.
func (h *Handler) InitialCriteria(ctx context.Context, sessionID string) filter.Criteria {
	snap := h.store.Current()
	if snap == nil {
		return filter.Criteria{}.Normalized()
	}
	if c, _, found := h.storedCriteria(ctx, sessionID, snap); found {
		return c
	}
	return filter.Default(snap.Options())
}

// Render renders c for a WebSocket client and remembers it for the session.
func (h *Handler) Render(ctx context.Context, sessionID string, c filter.Criteria) (dashboard.View, error) {
	snap, err := h.store.Snapshot()
	if err != nil {
		return dashboard.View{}, err
	}

	c = c.Clamp(snap.Options())
	page := PageRequest{Limit: dashboard.DefaultRowLimit}
	if h.config != nil && h.config.API.DefaultPageSize > 0 {
		page.Limit = h.config.API.DefaultPageSize
	}
	view, _, _ := h.renderView("websocket", snap, c, h.renderOptions(page, 0))

	if sessionID != "" {
		if _, err := h.saveCriteria(ctx, sessionID, view.Criteria); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("failed to persist WebSocket criteria")
		}
	}
	return view, nil
}
