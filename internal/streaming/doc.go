// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package streaming delivers incremental timeline updates to connected
// viewers over WebSocket sessions.
//
// The Hub keeps per-viewer session lists. Each session owns a bounded
// pending queue (oldest update dropped on overflow), a per-session token
// bucket limiting delivery rate, and a heartbeat that emits a keep-alive
// sentinel when nothing has flowed for the configured interval. Push is
// best-effort: a dropped update is recoverable by pulling the timeline.
// Sessions carry a closed flag and the registry prunes closed sessions
// on next observation plus a periodic lazy sweep.
package streaming
