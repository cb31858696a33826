// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package store holds the note corpus and the social graph.
//
// MemoryStore is the in-process implementation: notes arrive through the
// write path (event bridge or direct calls), reads serve the candidate
// sources, the fan-out worker and the user timeline. Consumers declare
// their own narrow interfaces; MemoryStore satisfies all of them.
package store
