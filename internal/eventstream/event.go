// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package eventstream

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/chronographus/internal/models"
)

// Kind tags the write operation a note event carries.
type Kind string

// Note event kinds. The values are wire-visible: they form the last
// subject token and must stay stable across versions.
const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// ValidKind reports whether k names a known note event kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindCreated, KindUpdated, KindDeleted:
		return true
	default:
		return false
	}
}

// NoteEvent is the wire form of one note write. The event id is minted
// by the producer and reused as the JetStream dedup id, so publishing
// the same event twice lands exactly one copy within the duplicate
// window.
type NoteEvent struct {
	EventID    string      `json:"event_id"`
	Kind       Kind        `json:"kind"`
	Note       models.Note `json:"note"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewNoteEvent builds an event for a note write, minting the event id
// and timestamping it in UTC.
func NewNoteEvent(kind Kind, note models.Note) *NoteEvent {
	return &NoteEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		Note:       note,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks the fields consumers rely on.
func (e *NoteEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("note event missing event_id")
	}
	if !ValidKind(e.Kind) {
		return fmt.Errorf("note event kind %q not recognized", e.Kind)
	}
	if e.Note.NoteID == "" {
		return fmt.Errorf("note event missing note_id")
	}
	return nil
}

// Topic returns the per-kind subject the event publishes to, e.g.
// "chrono.notes.created" for prefix "chrono.notes".
func (e *NoteEvent) Topic(prefix string) string {
	return prefix + "." + string(e.Kind)
}

// Marshal validates the event and serializes it for publishing.
func (e *NoteEvent) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal note event: %w", err)
	}
	return data, nil
}

// UnmarshalNoteEvent deserializes a wire payload. Callers validate the
// result before applying it.
func UnmarshalNoteEvent(data []byte) (*NoteEvent, error) {
	var event NoteEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal note event: %w", err)
	}
	return &event, nil
}
