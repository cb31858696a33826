// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// Block reasons reported per removed note.
const (
	ReasonMutedAuthor  = "muted_author"
	ReasonMutedKeyword = "muted_keyword"
	ReasonNSFW         = "nsfw"
	ReasonSuspended    = "author_suspended"
	ReasonSpam         = "spam"
)

// ctxCheckInterval is how many notes are processed between context checks.
const ctxCheckInterval = 64

// ContentFilter removes notes a viewer must not see: personal mutes
// (authors and keywords), NSFW content without opt-in, suspended authors,
// and notes matching the spam signature.
//
// A single ContentFilter is shared across requests and safe for concurrent
// use. The per-viewer keyword matcher is built from the profile on each
// call; muted keyword lists are small and the trie build is cheap, so no
// per-viewer compiled state needs invalidating.
type ContentFilter struct {
	spam *SpamDetector
}

// NewContentFilter builds a filter with the default spam signature.
func NewContentFilter() *ContentFilter {
	return &ContentFilter{spam: NewSpamDetector(DefaultSpamConfig())}
}

// NewContentFilterWith builds a filter with a custom spam configuration.
func NewContentFilterWith(cfg SpamConfig) *ContentFilter {
	return &ContentFilter{spam: NewSpamDetector(cfg)}
}

// Filter returns the subset of notes the viewer may see, preserving input
// order. Errors mean the caller must show nothing, never the unfiltered
// input.
func (f *ContentFilter) Filter(ctx context.Context, notes []models.Note, viewerID string, profile *models.ViewerProfile) ([]models.Note, error) {
	if err := ctx.Err(); err != nil {
		metrics.FilterFailures.Inc()
		return nil, err
	}
	if profile == nil {
		metrics.FilterFailures.Inc()
		return nil, fmt.Errorf("content filter requires a viewer profile (viewer %s)", viewerID)
	}

	keywords := newKeywordMatcher(profile.MutedKeywords)

	kept := make([]models.Note, 0, len(notes))
	blocked := 0
	for i := range notes {
		if i > 0 && i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				metrics.FilterFailures.Inc()
				return nil, err
			}
		}
		reason, drop := f.blockReason(&notes[i], profile, keywords)
		if drop {
			metrics.RecordFilterBlock(reason)
			blocked++
			continue
		}
		kept = append(kept, notes[i])
	}

	if blocked > 0 {
		logging.Debug().
			Str("viewer_id", viewerID).
			Int("blocked", blocked).
			Int("kept", len(kept)).
			Msg("[FILTER] Removed notes for viewer")
	}
	return kept, nil
}

// blockReason evaluates the rules cheapest-first and returns the first one
// that applies.
func (f *ContentFilter) blockReason(note *models.Note, profile *models.ViewerProfile, keywords *keywordMatcher) (string, bool) {
	if profile.HasMutedUser(note.AuthorID) {
		return ReasonMutedAuthor, true
	}
	if note.AuthorSuspended {
		return ReasonSuspended, true
	}
	if note.NSFW && !profile.ShowNSFW {
		return ReasonNSFW, true
	}
	if keywords.Matches(note) {
		return ReasonMutedKeyword, true
	}
	if _, spam := f.spam.Check(note); spam {
		return ReasonSpam, true
	}
	return "", false
}

// keywordMatcher matches a viewer's muted keywords against note text
// (whole-word, case-insensitive) and hashtag metadata (exact, ignoring
// case). A nil matcher matches nothing.
type keywordMatcher struct {
	text *cache.PatternSet
	tags map[string]struct{}
}

func newKeywordMatcher(muted map[string]bool) *keywordMatcher {
	if len(muted) == 0 {
		return nil
	}
	patterns := make([]string, 0, len(muted))
	tags := make(map[string]struct{}, len(muted))
	for kw, on := range muted {
		if !on {
			continue
		}
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		patterns = append(patterns, kw)
		tags[strings.ToLower(kw)] = struct{}{}
	}
	if len(patterns) == 0 {
		return nil
	}
	return &keywordMatcher{
		text: cache.NewPatternSet(patterns, false),
		tags: tags,
	}
}

func (m *keywordMatcher) Matches(note *models.Note) bool {
	if m == nil {
		return false
	}
	if m.text.ContainsWord(note.TextContent) {
		return true
	}
	for _, tag := range note.Hashtags {
		if _, mutedTag := m.tags[strings.ToLower(tag)]; mutedTag {
			return true
		}
	}
	return false
}
