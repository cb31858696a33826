// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package timeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/chronographus/internal/models"
)

// Preference limits. Values outside these bounds are rejected rather
// than clamped so misconfigured clients hear about it.
const (
	maxPreferenceItems    = 200
	maxPreferenceAgeHours = 7 * 24
)

// MuteKind discriminates mute targets.
type MuteKind string

const (
	MuteUser    MuteKind = "user"
	MuteKeyword MuteKind = "keyword"
)

// Preferences is the viewer's stored assembly overlay plus mute state.
type Preferences struct {
	Config        models.TimelineConfig `json:"config"`
	MutedUsers    []string              `json:"muted_users"`
	MutedKeywords []string              `json:"muted_keywords"`
	ShowNSFW      bool                  `json:"show_nsfw"`
}

// GetPreferences returns the viewer's stored configuration overlay and
// mute sets. A viewer with no stored preferences gets a zero overlay.
func (s *Service) GetPreferences(ctx context.Context, viewerID string) (*Preferences, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("viewer_id is required: %w", ErrInvalidArgument)
	}

	s.prefsMu.RLock()
	overlay := s.prefs[viewerID]
	s.prefsMu.RUnlock()

	profile := s.profileFor(ctx, viewerID)
	return &Preferences{
		Config:        overlay,
		MutedUsers:    sortedKeys(profile.MutedUsers),
		MutedKeywords: sortedKeys(profile.MutedKeywords),
		ShowNSFW:      profile.ShowNSFW,
	}, nil
}

// UpdatePreferences stores the viewer's configuration overlay. Only
// positive fields take effect at resolution time; bounds are validated
// here so a bad overlay never poisons assembly. The viewer's cached
// timeline is invalidated.
func (s *Service) UpdatePreferences(ctx context.Context, viewerID string, pref models.TimelineConfig) error {
	if viewerID == "" {
		return fmt.Errorf("viewer_id is required: %w", ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update preferences: %w", ErrDeadlineExceeded)
	}
	if err := validatePreference(pref); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidArgument)
	}

	s.prefsMu.Lock()
	s.prefs[viewerID] = pref
	s.prefsMu.Unlock()

	s.cache.InvalidateTimeline(viewerID)
	s.logger.Debug().Str("viewer_id", viewerID).Msg("preferences updated")
	return nil
}

// SetShowNSFW flips the viewer's NSFW opt-in and invalidates the cached
// timeline.
func (s *Service) SetShowNSFW(ctx context.Context, viewerID string, show bool) error {
	if viewerID == "" {
		return fmt.Errorf("viewer_id is required: %w", ErrInvalidArgument)
	}
	profile := s.profileFor(ctx, viewerID).Clone()
	profile.ShowNSFW = show
	profile.Touch()
	s.cache.PutProfile(viewerID, profile, s.cfg.Cache.ProfileTTL)
	s.cache.InvalidateTimeline(viewerID)
	return nil
}

// AddMute mutes a user or keyword for the viewer. Keyword values are
// lowercased; the cached timeline is invalidated so the mute applies on
// the next read.
func (s *Service) AddMute(ctx context.Context, viewerID string, kind MuteKind, value string) error {
	if err := validateMute(viewerID, kind, value); err != nil {
		return err
	}

	profile := s.profileFor(ctx, viewerID).Clone()
	switch kind {
	case MuteUser:
		if profile.MutedUsers == nil {
			profile.MutedUsers = make(map[string]bool)
		}
		profile.MutedUsers[value] = true
	case MuteKeyword:
		if profile.MutedKeywords == nil {
			profile.MutedKeywords = make(map[string]bool)
		}
		profile.MutedKeywords[strings.ToLower(value)] = true
	}
	profile.Touch()

	s.cache.PutProfile(viewerID, profile, s.cfg.Cache.ProfileTTL)
	s.cache.InvalidateTimeline(viewerID)
	return nil
}

// RemoveMute lifts a mute. Removing the last entry drops the set
// entirely. Removing an absent value is a no-op, not an error.
func (s *Service) RemoveMute(ctx context.Context, viewerID string, kind MuteKind, value string) error {
	if err := validateMute(viewerID, kind, value); err != nil {
		return err
	}

	profile := s.profileFor(ctx, viewerID).Clone()
	switch kind {
	case MuteUser:
		delete(profile.MutedUsers, value)
		if len(profile.MutedUsers) == 0 {
			profile.MutedUsers = nil
		}
	case MuteKeyword:
		delete(profile.MutedKeywords, strings.ToLower(value))
		if len(profile.MutedKeywords) == 0 {
			profile.MutedKeywords = nil
		}
	}
	profile.Touch()

	s.cache.PutProfile(viewerID, profile, s.cfg.Cache.ProfileTTL)
	s.cache.InvalidateTimeline(viewerID)
	return nil
}

// preference returns the stored overlay for a viewer.
func (s *Service) preference(viewerID string) (models.TimelineConfig, bool) {
	s.prefsMu.RLock()
	defer s.prefsMu.RUnlock()
	pref, ok := s.prefs[viewerID]
	return pref, ok
}

// validatePreference bounds-checks an overlay. Zero values are always
// acceptable (they mean "keep the default").
func validatePreference(pref models.TimelineConfig) error {
	if pref.MaxItems < 0 || pref.MaxItems > maxPreferenceItems {
		return fmt.Errorf("max_items must be in [0, %d], got %d", maxPreferenceItems, pref.MaxItems)
	}
	if pref.MaxAgeHours < 0 || pref.MaxAgeHours > maxPreferenceAgeHours {
		return fmt.Errorf("max_age_hours must be in [0, %d], got %d", maxPreferenceAgeHours, pref.MaxAgeHours)
	}
	if pref.MinScoreThreshold < 0 || pref.MinScoreThreshold > 1 {
		return fmt.Errorf("min_score_threshold must be in [0, 1], got %f", pref.MinScoreThreshold)
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"weight recency", pref.Weights.Recency},
		{"weight engagement", pref.Weights.Engagement},
		{"weight author_affinity", pref.Weights.AuthorAffinity},
		{"weight content_quality", pref.Weights.ContentQuality},
		{"weight diversity", pref.Weights.Diversity},
		{"ratio following", pref.Ratios.Following},
		{"ratio recommended", pref.Ratios.Recommended},
		{"ratio trending", pref.Ratios.Trending},
		{"ratio lists", pref.Ratios.Lists},
	} {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", w.name, w.value)
		}
	}
	if pref.Caps.Following < 0 || pref.Caps.Recommended < 0 || pref.Caps.Trending < 0 || pref.Caps.Lists < 0 {
		return fmt.Errorf("source caps must be non-negative")
	}
	return nil
}

func validateMute(viewerID string, kind MuteKind, value string) error {
	if viewerID == "" {
		return fmt.Errorf("viewer_id is required: %w", ErrInvalidArgument)
	}
	if value == "" {
		return fmt.Errorf("mute value is required: %w", ErrInvalidArgument)
	}
	if kind != MuteUser && kind != MuteKeyword {
		return fmt.Errorf("unknown mute kind %q: %w", kind, ErrInvalidArgument)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return []string{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
