// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

/*
Package websocket provides the live dashboard channel.

A browser connects to /ws and owns one session. Each criteria message it
sends is validated, merged into the session's active criteria and answered
with a freshly rendered dashboard view, so the page updates without a
round trip per chart.

Key Components:

  - Hub: tracks connected clients and broadcasts server-wide notices
  - Client: one connection with a read goroutine and a write goroutine
  - Renderer: implemented by the API layer; renders and persists views

Protocol:

	client -> server  {"type":"criteria","data":{"room_type":"Private room"}}
	client -> server  {"type":"reset"}
	client -> server  {"type":"ping"}
	server -> client  {"type":"view","data":{...dashboard view...}}
	server -> client  {"type":"dataset_reloaded","data":{"version":"..."}}
	server -> client  {"type":"error","data":{"code":"VALIDATION_ERROR",...}}
	server -> client  {"type":"pong"}

Fields missing from a criteria payload keep their current value. Criteria
updates are throttled per client; excess updates get a RATE_LIMITED error.
Renders are coalesced: if several updates arrive while a view is being
written only the latest criteria are rendered.

When the dataset store swaps in a new snapshot the hub broadcasts
dataset_reloaded and every client re-renders its criteria against it.

Thread Safety:

The hub guards its client map with a mutex and is driven by
RunWithContext under the supervisor tree. Only the write goroutine writes
to a connection.
*/
package websocket
