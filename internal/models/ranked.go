// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Source identifies the logical origin of a candidate note. The ordinal
// order is significant: when the same note arrives from two sources, the
// lower ordinal wins deduplication (FOLLOWING beats RECOMMENDED).
type Source int

const (
	SourceFollowing Source = iota
	SourceRecommended
	SourceTrending
	SourceLists
)

// AllSources lists the sources in dedup-precedence order.
var AllSources = []Source{SourceFollowing, SourceRecommended, SourceTrending, SourceLists}

func (s Source) String() string {
	switch s {
	case SourceFollowing:
		return "following"
	case SourceRecommended:
		return "recommended"
	case SourceTrending:
		return "trending"
	case SourceLists:
		return "lists"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseSource resolves a lowercase source name.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "following":
		return SourceFollowing, nil
	case "recommended":
		return SourceRecommended, nil
	case "trending":
		return SourceTrending, nil
	case "lists":
		return SourceLists, nil
	default:
		return 0, fmt.Errorf("unknown source %q", s)
	}
}

// MarshalJSON encodes the source as its lowercase name.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a lowercase source name.
func (s *Source) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSource(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RankingSignals is the per-signal breakdown behind one final score.
// Every component is normalized to [0,1].
type RankingSignals struct {
	AuthorAffinity     float64 `json:"author_affinity"`
	ContentQuality     float64 `json:"content_quality"`
	EngagementVelocity float64 `json:"engagement_velocity"`
	Recency            float64 `json:"recency"`
	Personalization    float64 `json:"personalization"`
}

// RankedItem wraps one Note with its viewer-specific ranking state.
type RankedItem struct {
	Note            Note           `json:"note"`
	Source          Source         `json:"source"`
	FinalScore      float64        `json:"final_score"`
	Signals         RankingSignals `json:"signals"`
	InjectedAt      time.Time      `json:"injected_at"`
	InjectionReason string         `json:"injection_reason,omitempty"`
}

// CompareRanked implements the timeline ordering: FinalScore descending,
// CreatedAt descending, NoteID ascending. Returns a negative value when a
// sorts before b, matching slices.SortFunc conventions.
func CompareRanked(a, b RankedItem) int {
	switch {
	case a.FinalScore > b.FinalScore:
		return -1
	case a.FinalScore < b.FinalScore:
		return 1
	}
	switch {
	case a.Note.CreatedAt.After(b.Note.CreatedAt):
		return -1
	case a.Note.CreatedAt.Before(b.Note.CreatedAt):
		return 1
	}
	return strings.Compare(a.Note.NoteID, b.Note.NoteID)
}

// UpdateType tags one streaming push.
type UpdateType string

const (
	UpdateNewItems        UpdateType = "new_items"
	UpdateItemUpdate      UpdateType = "item_update"
	UpdateItemDeleted     UpdateType = "item_deleted"
	UpdateTimelineRefresh UpdateType = "timeline_refreshed"
	UpdateKeepAlive       UpdateType = "keep_alive"
)

// TimelineUpdate is one incremental push delivered to a streaming
// subscriber. Keep-alive sentinels carry only the type and timestamp.
type TimelineUpdate struct {
	UpdateType     UpdateType   `json:"update_type"`
	Timestamp      time.Time    `json:"timestamp"`
	AffectedNoteID string       `json:"affected_note_id,omitempty"`
	AffectedItems  []RankedItem `json:"affected_items,omitempty"`
}

// KeepAliveUpdate builds the heartbeat sentinel sent on idle streams.
func KeepAliveUpdate(now time.Time) TimelineUpdate {
	return TimelineUpdate{UpdateType: UpdateKeepAlive, Timestamp: now}
}
