// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/listingscope/docs" // Import generated swagger docs
	"github.com/tomtom215/listingscope/internal/api"
	"github.com/tomtom215/listingscope/internal/cache"
	"github.com/tomtom215/listingscope/internal/config"
	"github.com/tomtom215/listingscope/internal/database"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/session"
	"github.com/tomtom215/listingscope/internal/supervisor"
	ws "github.com/tomtom215/listingscope/internal/websocket"
)

// sessionCleanupInterval is how often expired session criteria are swept.
const sessionCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Fields:    map[string]string{"service": "listingscope"},
	})

	logging.Info().
		Str("source", cfg.Dataset.Source).
		Bool("remote", cfg.Dataset.IsRemote()).
		Dur("refresh_interval", cfg.Dataset.RefreshInterval).
		Str("session_store", cfg.Session.Store).
		Bool("mirror_enabled", cfg.Database.Enabled).
		Msg("Starting Listingscope")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Listingscope stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := dataset.NewStore(dataset.NewSource(cfg.Dataset))
	views := cache.NewViewCache(cfg.Cache.Size, cfg.Cache.TTL)

	sessions, err := session.NewStore(cfg.Session)
	if err != nil {
		return err
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing database")
			}
		}()
		store.Subscribe("duckdb-mirror", func(ctx context.Context, snap *dataset.Snapshot) {
			if err := db.ReplaceListings(ctx, snap.Version(), snap.Records()); err != nil {
				logging.Ctx(ctx).Error().Err(err).Str("version", snap.Version()).Msg("Failed to mirror listings into DuckDB")
			}
		})
		logging.Info().Str("version", db.Version()).Msg("DuckDB mirror initialized")
	}

	hub := ws.NewHub()
	handler := api.NewHandler(cfg, store, views, sessions, db, hub)
	store.Subscribe("api", handler.OnDatasetReloaded)

	// A failed first load leaves the server up; readiness stays 503 until a
	// refresh or a manual reload succeeds.
	if snap, _, err := store.Reload(ctx); err != nil {
		logging.Error().Err(err).Str("source", cfg.Dataset.Source).Msg("Initial dataset load failed")
	} else {
		logging.Info().Str("version", snap.Version()).Int("records", len(snap.Records())).Msg("Initial dataset loaded")
	}

	server := &http.Server{
		Handler:           api.NewRouter(handler, nil).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewApplicationTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig(), supervisor.Components{
		Dataset:         store,
		RefreshInterval: cfg.Dataset.RefreshInterval,
		Sessions:        sessions,
		CleanupInterval: sessionCleanupInterval,
		Hub:             hub,
		HTTPServer:      server,
		HTTPAddr:        cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// errCh delivers exactly one value when the tree stops.
	var serveErr error
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		serveErr = err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}
	return serveErr
}
