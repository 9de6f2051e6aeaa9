// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package supervisor runs the long-lived parts of the dashboard server under a
suture v4 supervisor tree.

# Overview

Services are grouped into three layers so that a failure in one layer does
not restart the others:

	RootSupervisor ("listingscope")
	├── DataSupervisor ("data-layer")
	│   ├── DatasetRefreshService (if DATASET_REFRESH_INTERVAL > 0)
	│   └── SessionCleanupService
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash while refreshing the dataset leaves the last published snapshot in
place, so the API and connected WebSocket clients keep working from it.

# Usage

	tree, err := supervisor.NewApplicationTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig(),
	    supervisor.Components{
	        Dataset:         store,
	        RefreshInterval: cfg.Dataset.RefreshInterval,
	        Sessions:        sessions,
	        CleanupInterval: 10 * time.Minute,
	        Hub:             hub,
	        HTTPServer:      server,
	        HTTPAddr:        cfg.Server.Addr(),
	        ShutdownTimeout: cfg.Server.ShutdownTimeout,
	    })
	if err != nil {
	    return err
	}
	return tree.Serve(ctx)

# Configuration

TreeConfig zero values take suture's defaults: a failure threshold of 5,
30 seconds of decay, 15 seconds of backoff and a 10 second shutdown timeout.

# Return Values

  - nil: the service stopped cleanly and is not restarted
  - error: the service crashed and is restarted with backoff
  - ctx.Err(): shutdown was requested

DuckDB and Badger are embedded libraries and are not supervised. They are
closed by main after the tree returns.

# Debugging Shutdown

UnstoppedServiceReport lists services that ignored cancellation past the
shutdown timeout.
*/
package supervisor
