// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package session

import (
	"context"
	"sync"

	"github.com/tomtom215/listingscope/internal/metrics"
)

const storeMemory = "memory"

// MemoryStore keeps sessions in a map. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		metrics.RecordSessionOp(storeMemory, "get", ErrSessionNotFound)
		return nil, ErrSessionNotFound
	}
	if s.IsExpired() {
		metrics.RecordSessionOp(storeMemory, "get", ErrSessionExpired)
		return nil, ErrSessionExpired
	}
	metrics.RecordSessionOp(storeMemory, "get", nil)
	return &s, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	m.sessions[s.ID] = *s
	m.mu.Unlock()
	metrics.RecordSessionOp(storeMemory, "put", nil)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	metrics.RecordSessionOp(storeMemory, "delete", nil)
	return nil
}

// CleanupExpired implements Store.
func (m *MemoryStore) CleanupExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

// Close implements io.Closer.
func (m *MemoryStore) Close() error {
	return nil
}
