// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package sources implements the candidate sources that feed timeline
// assembly: following, recommended, trending and lists.
//
// All four share one contract, Fetch, which returns at most maxCount notes
// and never more. A source that cannot produce candidates returns an empty
// slice rather than an error wherever the failure is local to it; the
// pipeline treats source errors as empty results either way, so a broken
// source degrades the timeline instead of failing the request.
//
// The trending source is viewer-agnostic and composite: three providers
// (hashtags, topics, videos) each maintain a snapshot pool that a background
// refresher rebuilds on an interval. Fetch only slices the current
// snapshots, so it stays cheap on the request path.
package sources
