// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package services

import (
	"context"
	"log/slog"
	"time"
)

// ExpiringStore matches session.Store's CleanupExpired method.
type ExpiringStore interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionCleanupService periodically removes expired sessions.
//
// Cleanup errors are logged and retried on the next tick; they never
// cause a restart.
type SessionCleanupService struct {
	store    ExpiringStore
	interval time.Duration
	logger   *slog.Logger
	name     string
}

// NewSessionCleanupService creates a cleanup service. A non-positive
// interval defaults to 10 minutes.
func NewSessionCleanupService(store ExpiringStore, interval time.Duration, logger *slog.Logger) *SessionCleanupService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionCleanupService{
		store:    store,
		interval: interval,
		logger:   logger,
		name:     "session-cleanup",
	}
}

// Serve implements suture.Service.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.store.CleanupExpired(ctx)
			if err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Debug("expired sessions removed", "count", removed)
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *SessionCleanupService) String() string {
	return s.name
}
