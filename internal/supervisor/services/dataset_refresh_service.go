// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package services

import (
	"context"
	"time"
)

// Refresher matches *dataset.Store's Refresh method.
//
// Refresh returns nil for transient failures (the previous snapshot stays
// active) and only surfaces context cancellation.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// DatasetRefreshService reloads the dataset on a fixed interval.
//
// Example usage:
//
//	store := dataset.NewStore(dataset.NewSource(cfg.Dataset))
//	svc := services.NewDatasetRefreshService(store, cfg.Dataset.RefreshInterval)
//	tree.AddDataService(svc)
type DatasetRefreshService struct {
	refresher Refresher
	interval  time.Duration
	name      string
}

// NewDatasetRefreshService creates a new refresh service. interval must be positive.
func NewDatasetRefreshService(refresher Refresher, interval time.Duration) *DatasetRefreshService {
	return &DatasetRefreshService{
		refresher: refresher,
		interval:  interval,
		name:      "dataset-refresh",
	}
}

// Serve implements suture.Service.
//
// The initial load happens before the tree starts, so the first refresh
// waits one full interval.
func (d *DatasetRefreshService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.refresher.Refresh(ctx); err != nil {
				return err
			}
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (d *DatasetRefreshService) String() string {
	return d.name
}
