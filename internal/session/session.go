// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package session stores the filter criteria of each dashboard visitor.
//
// A session is identified by an opaque ID (a UUID carried in a cookie or
// the X-Session-ID header) and holds nothing but the last criteria the
// visitor applied. Stores are in-memory or BadgerDB-backed.
package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/listingscope/internal/filter"
)

var (
	// ErrSessionNotFound is returned when a session is not in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a stored session is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidSessionID is returned for IDs that are not UUIDs.
	ErrInvalidSessionID = errors.New("invalid session id")
)

// Session is one visitor's saved filter state.
type Session struct {
	ID        string          `json:"id"`
	Criteria  filter.Criteria `json:"criteria"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	// Get returns the session or ErrSessionNotFound / ErrSessionExpired.
	Get(ctx context.Context, id string) (*Session, error)

	// Put creates or replaces a session.
	Put(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// CleanupExpired removes expired sessions and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)

	io.Closer
}

// NewID returns a fresh session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an ID produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// New builds a session for id that expires ttl from now.
func New(id string, c filter.Criteria, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Criteria:  c,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Save stores criteria under id, keeping CreatedAt of an existing session
// and extending its expiry.
func Save(ctx context.Context, store Store, id string, c filter.Criteria, ttl time.Duration) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidSessionID
	}

	s := New(id, c, ttl)
	if prev, err := store.Get(ctx, id); err == nil {
		s.CreatedAt = prev.CreatedAt
	} else if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
		return nil, err
	}

	if err := store.Put(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
