// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import (
	"regexp"
	"strings"
	"time"
)

// Note is an immutable snapshot of one short-form post.
//
// Notes are produced by candidate sources and flow through the pipeline
// unchanged; ranking state lives in RankedItem, never here. Engagement
// counters reflect the moment the snapshot was taken.
type Note struct {
	NoteID      string    `json:"note_id"`
	AuthorID    string    `json:"author_id"`
	TextContent string    `json:"text_content"`
	CreatedAt   time.Time `json:"created_at"`

	HasMedia bool     `json:"has_media,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Mentions []string `json:"mentions,omitempty"`

	// Engagement counters at snapshot time.
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Reshares int64 `json:"reshares"`
	Replies  int64 `json:"replies"`
	Quotes   int64 `json:"quotes"`

	NSFW            bool `json:"nsfw,omitempty"`
	AuthorSuspended bool `json:"author_suspended,omitempty"`
}

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
	urlPattern     = regexp.MustCompile(`https?://\S+`)
)

// ExtractHashtags returns the lowercased hashtag bodies found in text,
// without the leading '#'.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// ExtractMentions returns the mentioned handles found in text, without the
// leading '@'.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		handles = append(handles, m[1])
	}
	return handles
}

// ContainsURL reports whether text carries at least one http(s) link.
func ContainsURL(text string) bool {
	return urlPattern.MatchString(text)
}

// TotalEngagements sums all interaction counters.
func (n *Note) TotalEngagements() int64 {
	return n.Likes + n.Reshares + n.Replies + n.Quotes
}

// EngagementRate is interactions per view, with a floor of one view so
// fresh notes do not divide by zero.
func (n *Note) EngagementRate() float64 {
	views := n.Views
	if views < 1 {
		views = 1
	}
	return float64(n.TotalEngagements()) / float64(views)
}

// AgeHours returns the note age relative to now, in hours. Notes with a
// CreatedAt in the future report zero.
func (n *Note) AgeHours(now time.Time) float64 {
	age := now.Sub(n.CreatedAt).Hours()
	if age < 0 {
		return 0
	}
	return age
}

// EngagementAction identifies one recordable viewer interaction.
type EngagementAction string

const (
	ActionLike    EngagementAction = "like"
	ActionReshare EngagementAction = "reshare"
	ActionReply   EngagementAction = "reply"
	ActionFollow  EngagementAction = "follow"
	ActionHide    EngagementAction = "hide"
)

// ValidEngagementAction reports whether s names a recordable action.
func ValidEngagementAction(s string) bool {
	switch EngagementAction(s) {
	case ActionLike, ActionReshare, ActionReply, ActionFollow, ActionHide:
		return true
	}
	return false
}

// EngagementEvent is one recorded viewer interaction, appended to the
// analytics log and folded into the affinity tables.
type EngagementEvent struct {
	EventID         string           `json:"event_id"`
	ViewerID        string           `json:"viewer_id"`
	NoteID          string           `json:"note_id"`
	AuthorID        string           `json:"author_id"`
	Action          EngagementAction `json:"action"`
	DurationSeconds float64          `json:"duration_seconds,omitempty"`
	OccurredAt      time.Time        `json:"occurred_at"`
}
