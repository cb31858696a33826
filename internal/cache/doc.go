// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package cache provides the caching layer for assembled timelines,
// viewer profiles, and last-read markers, plus the data structures the
// hot paths are built on.
//
// Key components:
//
//   - TieredCache: two-tier facade over a mandatory in-memory tier and
//     an optional durable BadgerDB tier. Durable-tier failures are
//     absorbed and counted, never surfaced to callers.
//   - TimelineStore: LRU store for assembled timelines with an author
//     reverse index for O(affected viewers) invalidation on author events.
//   - LRU: generic LRU cache with per-entry TTL, used for viewer
//     profiles, follow sets, and last-read markers.
//   - AhoCorasick: multi-pattern string matcher used by the content
//     filter for muted keywords and spam phrase detection.
//   - TopK: bounded score-ordered heap used by the trending source to
//     keep the highest-engagement candidates per window.
//   - Janitor: supervised sweep loop that physically removes expired
//     entries and periodically runs durable-tier value-log GC.
//
// All types in this package are safe for concurrent use.
package cache
