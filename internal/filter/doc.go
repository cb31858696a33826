// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package filter removes notes a viewer must never see.
//
// The ContentFilter combines per-viewer preferences (muted authors, muted
// keywords, NSFW opt-in) with global safety rules (suspended authors, the
// spam signature). Keyword and phrase matching run on the shared
// Aho-Corasick matcher from internal/cache; each removal is counted by
// reason in internal/metrics.
//
// Filtering is deny-biased: a filter error means no notes are returned
// rather than unfiltered ones.
package filter
