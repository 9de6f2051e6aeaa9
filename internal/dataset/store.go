// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/metrics"
)

// Listener is notified after a new snapshot has been published.
type Listener func(ctx context.Context, snap *Snapshot)

// Store publishes snapshots of a Source.
//
// Current is lock-free. Reloads are serialized; a failed reload leaves the
// previous snapshot in place.
type Store struct {
	source Source

	current atomic.Pointer[Snapshot]
	seq     atomic.Uint64

	reloadMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []namedListener

	now func() time.Time
}

type namedListener struct {
	name string
	fn   Listener
}

// NewStore creates a Store. Nothing is loaded until Reload is called.
func NewStore(source Source) *Store {
	return &Store{source: source, now: time.Now}
}

// Source returns the configured source.
func (s *Store) Source() Source {
	return s.source
}

// Subscribe registers fn to run after every published snapshot. Listeners
// run synchronously in registration order on the reloading goroutine.
func (s *Store) Subscribe(name string, fn Listener) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, namedListener{name: name, fn: fn})
	s.listenersMu.Unlock()
}

// Current returns the active snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Snapshot returns the active snapshot or ErrNotLoaded.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Ready reports whether a snapshot has been published.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// Reload reads the source and publishes a new snapshot. changed is false
// when the source reported ErrNotModified and the current snapshot was kept.
func (s *Store) Reload(ctx context.Context) (snap *Snapshot, changed bool, err error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	log := logging.Ctx(ctx).With().Str("component", "dataset").Str("source", s.source.String()).Logger()
	start := s.now()

	rc, err := s.source.Open(ctx)
	if errors.Is(err, ErrNotModified) {
		if cur := s.current.Load(); cur != nil {
			log.Debug().Str("version", cur.Version()).Msg("Dataset unchanged")
			return cur, false, nil
		}
		err = fmt.Errorf("%w before first load", err)
	}
	if err != nil {
		metrics.RecordDatasetLoad(time.Since(start), 0, 0, err)
		return s.current.Load(), false, err
	}

	records, report, err := listings.Load(rc)
	closeErr := rc.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("close dataset stream: %w", closeErr)
	}
	if err != nil {
		metrics.RecordDatasetLoad(time.Since(start), 0, 0, err)
		log.Error().Err(err).Msg("Dataset load failed")
		return s.current.Load(), false, err
	}

	if c, ok := s.source.(committer); ok {
		c.commit()
	}

	seq := s.seq.Add(1)
	loadedAt := s.now().UTC()
	snap = NewSnapshot(records, report, s.source.String(), fmt.Sprintf("%d-%x", seq, loadedAt.UnixNano()), loadedAt)
	s.current.Store(snap)

	elapsed := time.Since(start)
	metrics.RecordDatasetLoad(elapsed, report.Loaded, report.Malformed, nil)

	ev := log.Info().
		Str("version", snap.Version()).
		Int("rows", report.Rows).
		Int("loaded", report.Loaded).
		Int("malformed", report.Malformed).
		Int("invalid_locations", report.InvalidLocations).
		Dur("duration", elapsed)
	if len(report.MissingColumns) > 0 {
		ev = ev.Strs("missing_columns", report.MissingColumns)
	}
	ev.Msg("Dataset loaded")

	s.notify(ctx, snap)
	return snap, true, nil
}

func (s *Store) notify(ctx context.Context, snap *Snapshot) {
	s.listenersMu.RLock()
	listeners := make([]namedListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Error().Str("listener", l.name).Interface("panic", r).Msg("Dataset listener panicked")
				}
			}()
			l.fn(ctx, snap)
		}()
	}
}

// Refresh reloads for a periodic caller. Unchanged and throttled sources
// are not errors.
func (s *Store) Refresh(ctx context.Context) error {
	_, _, err := s.Reload(ctx)
	if err == nil || errors.Is(err, ErrThrottled) {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	logging.Ctx(ctx).Warn().Err(err).Str("source", s.source.String()).Msg("Dataset refresh failed, keeping previous snapshot")
	return nil
}
