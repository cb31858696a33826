// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package models defines the data structures shared across the Chronographus
timeline pipeline.

This package is the single source of truth for domain types. It has no
dependencies on other internal packages so that every layer (sources, filter,
ranking, cache, timeline, streaming, fanout, api) can exchange values without
import cycles.

Key Components:

  - Note: immutable snapshot of one short-form post, as produced by the
    candidate sources. The pipeline never mutates a Note.
  - RankedItem: one Note wrapped with its originating source, final score and
    per-signal breakdown. Scores are viewer-specific; RankedItems are never
    shared across viewers.
  - ViewerProfile: per-viewer personalization state (follow set, affinities,
    mutes, engaged hashtags). Created lazily with defaults, enriched by
    engagement recording, evicted by cache TTL.
  - TimelineConfig: per-request assembly parameters (algorithm, weights,
    source ratios, caps). Resolved per request from defaults, stored
    preferences and header overrides.
  - TimelineUpdate: one incremental push delivered to streaming subscribers.

Ordering invariant: assembled timelines sort by FinalScore descending, then
CreatedAt descending, then NoteID ascending. CompareRanked implements that
ordering in one place so the pipeline, the ranker and the tests agree.

Thread Safety:

All models are plain data. Callers that share a ViewerProfile across
goroutines must either treat it as read-only or copy it with Clone first.
*/
package models
