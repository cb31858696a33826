// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package eventstream bridges note writes onto NATS JetStream so that
// multiple chronographus instances converge on the same note corpus.
//
// Each note create, update, or delete becomes a NoteEvent published to
// a per-kind subject under a common prefix. A durable JetStream
// consumer replays the stream into the local note store and the
// fan-out queue, with the event id doubling as the JetStream dedup id
// so redeliveries stay idempotent.
//
// The bridge requires the "nats" build tag. Without it the package
// compiles to stubs that return ErrBridgeDisabled, and in-process
// callbacks remain the only note event path.
package eventstream
