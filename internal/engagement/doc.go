// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package engagement persists every recorded viewer action to an
// append-only DuckDB log.
//
// The log is the analytical counterpart of the in-memory affinity
// state: the ranker reads affinities, ops tooling reads this table.
// Appends are idempotent on event id so bridge redeliveries cannot
// double count. A retention pruner deletes rows past the configured
// age; it implements suture.Service and runs in the supervision tree
// next to the fan-out worker. Store failures degrade the write path
// to ranking-state-only recording, they never fail it.
package engagement
