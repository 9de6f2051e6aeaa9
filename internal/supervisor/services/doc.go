// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package services adapts dashboard components to suture.Service.

Each wrapper accepts a small interface rather than the concrete type, which
keeps this package free of imports from dataset, session and websocket:

  - HTTPServerService: binds the listen address and runs an HTTPServer
    (satisfied by *http.Server), draining it on shutdown
  - WebSocketHubService: runs a ContextHub (satisfied by *websocket.Hub)
  - DatasetRefreshService: calls a Refresher (satisfied by *dataset.Store)
    on a fixed interval
  - SessionCleanupService: sweeps an ExpiringStore (satisfied by both
    session stores) on a fixed interval

All wrappers implement fmt.Stringer so supervisor events name them.
*/
package services
