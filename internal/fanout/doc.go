// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package fanout propagates note write events into per-follower cache
// invalidations and stream pushes.
//
// A single worker consumes a bounded task queue fed by the write-path
// callbacks (OnNoteCreated, OnNoteUpdated, OnNoteDeleted) and, when the
// event bridge is enabled, by the NATS subscriber. The queue sheds its
// oldest task when full so producers never block: a lost task only means
// a stale cached timeline until TTL expiry. Follow-graph failures retry
// in place with exponential backoff so per-follower effects keep their
// submission order.
package fanout
