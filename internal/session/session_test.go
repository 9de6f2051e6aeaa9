// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/listingscope/internal/config"
	"github.com/tomtom215/listingscope/internal/filter"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := OpenBadgerStore(filepath.Join(t.TempDir(), "sessions"))
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	t.Cleanup(func() { _ = badgerStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": badgerStore,
	}
}

func TestStorePutGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	criteria := filter.Criteria{RoomType: "Private room", Neighbourhood: "Mission", PriceMin: 20, PriceMax: 150}

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			id := NewID()
			if _, err := store.Get(ctx, id); !errors.Is(err, ErrSessionNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrSessionNotFound", err)
			}

			if err := store.Put(ctx, New(id, criteria, time.Hour)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := store.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Criteria != criteria {
				t.Errorf("Criteria = %+v, want %+v", got.Criteria, criteria)
			}

			n, err := store.Count(ctx)
			if err != nil || n != 1 {
				t.Errorf("Count() = %d, %v; want 1, nil", n, err)
			}

			if err := store.Delete(ctx, id); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := store.Delete(ctx, id); err != nil {
				t.Errorf("second Delete should be a no-op, got %v", err)
			}
			if _, err := store.Get(ctx, id); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get(deleted) error = %v, want ErrSessionNotFound", err)
			}
		})
	}
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			expired := New(NewID(), filter.Criteria{}, time.Hour)
			expired.ExpiresAt = time.Now().Add(-time.Minute)
			live := New(NewID(), filter.Criteria{}, time.Hour)

			for _, s := range []*Session{expired, live} {
				if err := store.Put(ctx, s); err != nil {
					t.Fatalf("Put: %v", err)
				}
			}

			if _, err := store.Get(ctx, expired.ID); !errors.Is(err, ErrSessionExpired) {
				t.Errorf("Get(expired) error = %v, want ErrSessionExpired", err)
			}

			removed, err := store.CleanupExpired(ctx)
			if err != nil {
				t.Fatalf("CleanupExpired: %v", err)
			}
			if removed != 1 {
				t.Errorf("CleanupExpired() = %d, want 1", removed)
			}
			if _, err := store.Get(ctx, live.ID); err != nil {
				t.Errorf("live session should survive cleanup: %v", err)
			}
		})
	}
}

func TestSaveKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	id := NewID()

	first, err := Save(ctx, store, id, filter.Criteria{RoomType: "Shared room"}, time.Hour)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := Save(ctx, store, id, filter.Criteria{RoomType: "Private room"}, time.Hour)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("UpdatedAt should advance")
	}
	got, _ := store.Get(ctx, id)
	if got.Criteria.RoomType != "Private room" {
		t.Errorf("RoomType = %q, want Private room", got.Criteria.RoomType)
	}
}

func TestSaveRejectsInvalidID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"", "abc", "../../etc/passwd"} {
		if _, err := Save(context.Background(), NewMemoryStore(), id, filter.Criteria{}, time.Hour); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Save(%q) error = %v, want ErrInvalidSessionID", id, err)
		}
	}
}

func TestValidID(t *testing.T) {
	t.Parallel()

	if !ValidID(NewID()) {
		t.Error("NewID() should be valid")
	}
	// uuid.Parse accepts the braced and urn forms; only the canonical one is allowed.
	if ValidID("urn:uuid:" + NewID()) {
		t.Error("urn form should be rejected")
	}
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.SessionConfig
		wantErr bool
	}{
		{name: "default", cfg: config.SessionConfig{}},
		{name: "memory", cfg: config.SessionConfig{Store: "memory"}},
		{name: "badger", cfg: config.SessionConfig{Store: "badger", Path: filepath.Join(t.TempDir(), "s")}},
		{name: "unknown", cfg: config.SessionConfig{Store: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, err := NewStore(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				_ = store.Close()
			}
		})
	}
}
