// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package session

import (
	"fmt"

	"github.com/tomtom215/listingscope/internal/config"
)

// StoreType defines the type of session storage backend.
type StoreType string

const (
	// StoreMemory uses in-memory storage (default, not persistent).
	StoreMemory StoreType = storeMemory

	// StoreBadger uses BadgerDB for persistent session storage.
	StoreBadger StoreType = storeBadger
)

// NewStore creates the Store selected by cfg.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case StoreMemory, "":
		return NewMemoryStore(), nil
	case StoreBadger:
		return OpenBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
