// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package eventstream

import "github.com/tomtom215/chronographus/internal/models"

// NoteStore receives consumed note writes so the local corpus tracks
// the stream. store.MemoryStore satisfies it.
type NoteStore interface {
	PutNote(note models.Note)
	DeleteNote(noteID string) bool
}

// NoteSink receives per-kind callbacks after the store write lands.
// fanout.Worker satisfies it, turning consumed events into cache
// invalidations and push deliveries.
type NoteSink interface {
	OnNoteCreated(note models.Note)
	OnNoteUpdated(note models.Note)
	OnNoteDeleted(note models.Note)
}
