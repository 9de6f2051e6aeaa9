// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

//go:build integration

package testinfra

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// containerStartBudget bounds image pull plus startup for one container.
const containerStartBudget = 3 * time.Minute

// RequireDocker skips t when no container provider answers a health check.
func RequireDocker(t *testing.T) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// StartPostgres starts a PostgreSQL container that lives for the rest of t.
// The test is skipped without Docker and fails if the container cannot start.
func StartPostgres(t *testing.T, opts ...PostgresOption) *PostgresContainer {
	t.Helper()
	RequireDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), containerStartBudget)
	defer cancel()

	pg, err := NewPostgresContainer(ctx, opts...)
	if pg != nil {
		testcontainers.CleanupContainer(t, pg.Container)
	}
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	return pg
}
