// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run the external services the
// export sinks talk to, so integration tests exercise real SQL dialects
// instead of mocks. Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// # PostgreSQL Container
//
//	func TestExport(t *testing.T) {
//	    pg := testinfra.StartPostgres(t) // skipped without Docker, terminated by t.Cleanup
//	    pw, err := export.OpenPostgres(ctx, export.PostgresOptions{DSN: pg.DSN, Table: "listings"})
//	    // ...
//	}
//
// # CI Considerations
//
// RequireDocker asks the testcontainers provider for a health check and skips
// the test when none answers, so the integration tag is safe on machines
// without Docker.
//
// # Network Requirements
//
// First run may need to download container images. Subsequent runs use cached images.
package testinfra
