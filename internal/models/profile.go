// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import "time"

// Default viewer-active hour window used by the personalization signal when
// a profile carries no explicit activity stats.
const (
	DefaultActiveHourStart = 9
	DefaultActiveHourEnd   = 23
)

// ViewerProfile holds one viewer's personalization state.
//
// Profiles are created lazily with defaults on a viewer's first request,
// enriched by engagement recording and preference mutations, and evicted by
// cache TTL. Sets are stored as map[string]bool so profiles round-trip
// through JSON for the durable cache tier.
type ViewerProfile struct {
	ViewerID string `json:"viewer_id"`

	Follows         map[string]bool    `json:"follows,omitempty"`
	AuthorAffinity  map[string]float64 `json:"author_affinity,omitempty"`
	HashtagInterest map[string]float64 `json:"hashtag_interest,omitempty"`
	EngagedHashtags map[string]bool    `json:"engaged_hashtags,omitempty"`

	MutedUsers    map[string]bool `json:"muted_users,omitempty"`
	MutedKeywords map[string]bool `json:"muted_keywords,omitempty"`
	ShowNSFW      bool            `json:"show_nsfw,omitempty"`

	// Coarse activity stats.
	ActiveHourStart int   `json:"active_hour_start"`
	ActiveHourEnd   int   `json:"active_hour_end"`
	EngagementCount int64 `json:"engagement_count,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// NewViewerProfile builds a profile with defaults for a first-seen viewer.
func NewViewerProfile(viewerID string) *ViewerProfile {
	return &ViewerProfile{
		ViewerID:        viewerID,
		Follows:         make(map[string]bool),
		AuthorAffinity:  make(map[string]float64),
		HashtagInterest: make(map[string]float64),
		EngagedHashtags: make(map[string]bool),
		MutedUsers:      make(map[string]bool),
		MutedKeywords:   make(map[string]bool),
		ActiveHourStart: DefaultActiveHourStart,
		ActiveHourEnd:   DefaultActiveHourEnd,
		LastUpdated:     time.Now().UTC(),
	}
}

// Clone returns a deep copy safe to mutate independently.
func (p *ViewerProfile) Clone() *ViewerProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.Follows = copyBoolSet(p.Follows)
	out.AuthorAffinity = copyFloatMap(p.AuthorAffinity)
	out.HashtagInterest = copyFloatMap(p.HashtagInterest)
	out.EngagedHashtags = copyBoolSet(p.EngagedHashtags)
	out.MutedUsers = copyBoolSet(p.MutedUsers)
	out.MutedKeywords = copyBoolSet(p.MutedKeywords)
	return &out
}

// IsFollowing reports whether the viewer follows the author.
func (p *ViewerProfile) IsFollowing(authorID string) bool {
	return p.Follows[authorID]
}

// HasMutedUser reports whether the author is muted by the viewer.
func (p *ViewerProfile) HasMutedUser(authorID string) bool {
	return p.MutedUsers[authorID]
}

// AffinityFor returns the stored viewer-to-author affinity, zero when none
// has been recorded.
func (p *ViewerProfile) AffinityFor(authorID string) float64 {
	return p.AuthorAffinity[authorID]
}

// ActiveAt reports whether hour (0-23) falls inside the viewer's active
// window. A zero-valued window falls back to the defaults.
func (p *ViewerProfile) ActiveAt(hour int) bool {
	start, end := p.ActiveHourStart, p.ActiveHourEnd
	if start == 0 && end == 0 {
		start, end = DefaultActiveHourStart, DefaultActiveHourEnd
	}
	return hour >= start && hour <= end
}

// Touch stamps the profile as just updated.
func (p *ViewerProfile) Touch() {
	p.LastUpdated = time.Now().UTC()
}

func copyBoolSet(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyFloatMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
