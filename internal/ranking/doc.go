// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package ranking scores timeline candidates with a five-signal model and
// shapes the result for diversity, repetition control and freshness.
//
// Scoring is pure with respect to the candidate batch: the Engine reads the
// viewer profile and its own affinity tables but never mutates them. The
// tables are updated exclusively through RecordEngagement, which holds a
// dedicated lock, so scoring and recording can run concurrently.
package ranking
