// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// Signal normalization constants. Every signal lands in [0,1] before the
// weighted sum.
const (
	// recencyHalfLifeHours halves the recency signal every six hours.
	recencyHalfLifeHours = 6.0

	// velocityCeiling is the engagements-per-hour rate treated as maximal.
	velocityCeiling = 10.0

	followedAffinity   = 0.8
	unfollowedAffinity = 0.1
	globalScoreWeight  = 0.2

	qualityBase           = 0.5
	qualityLengthBoost    = 0.10
	qualityShortPenalty   = 0.20
	qualityMediaBoost     = 0.15
	qualityHashtagBoost   = 0.08
	qualityMentionBoost   = 0.12
	qualityLinkPenalty    = 0.05
	qualitySpamPenalty    = 0.10
	qualityRateCeiling    = 0.30
	qualityRateMultiplier = 2.0

	personalTagBoost        = 0.05
	personalActiveHourBoost = 0.10
)

// authorAffinity blends the follow relationship, recorded viewer-to-author
// history and the author's global engagement reputation. The strongest of
// the three wins, clipped to 1.
func (e *Engine) authorAffinity(viewerID, authorID string, profile *models.ViewerProfile) float64 {
	affinity := unfollowedAffinity
	if profile.IsFollowing(authorID) {
		affinity = followedAffinity
	}

	e.mu.RLock()
	historical := e.viewerAffinity[viewerID][authorID]
	global := e.authorScores[authorID]
	e.mu.RUnlock()

	if stored := profile.AffinityFor(authorID); stored > historical {
		historical = stored
	}
	affinity = math.Max(affinity, historical)
	affinity = math.Max(affinity, global*globalScoreWeight)
	return math.Min(1.0, affinity)
}

// contentQuality scores intrinsic note quality from length, media,
// hashtag/mention hygiene and the observed engagement rate.
func contentQuality(note *models.Note) float64 {
	quality := qualityBase

	length := len(note.TextContent)
	switch {
	case length >= 50 && length <= 280:
		quality += qualityLengthBoost
	case length < 10:
		quality -= qualityShortPenalty
	}

	if note.HasMedia {
		quality += qualityMediaBoost
	}
	if models.ContainsURL(note.TextContent) {
		quality -= qualityLinkPenalty
	}

	tags := noteHashtags(note)
	switch {
	case len(tags) >= 1 && len(tags) <= 5:
		quality += qualityHashtagBoost
	case len(tags) > 10:
		quality -= qualitySpamPenalty
	}

	if mentions := noteMentions(note); len(mentions) >= 1 && len(mentions) <= 3 {
		quality += qualityMentionBoost
	}

	quality += math.Min(qualityRateCeiling, note.EngagementRate()*qualityRateMultiplier)

	return clamp01(quality)
}

// engagementVelocity is engagements per hour normalized against
// velocityCeiling. Notes with zero or negative age score zero.
func engagementVelocity(note *models.Note, now time.Time) float64 {
	ageHours := now.Sub(note.CreatedAt).Hours()
	if ageHours <= 0 {
		return 0
	}
	velocity := float64(note.TotalEngagements()) / ageHours
	return math.Min(1.0, velocity/velocityCeiling)
}

// recency decays exponentially with note age.
func recency(note *models.Note, now time.Time) float64 {
	return math.Exp(-note.AgeHours(now) * math.Ln2 / recencyHalfLifeHours)
}

// personalization rewards notes matching the viewer's engaged hashtags and
// notes created inside the viewer's active hours.
func (e *Engine) personalization(viewerID string, note *models.Note, profile *models.ViewerProfile) float64 {
	score := 0.0

	if profile.ActiveAt(note.CreatedAt.UTC().Hour()) {
		score += personalActiveHourBoost
	}

	tags := noteHashtags(note)
	if len(tags) > 0 {
		e.mu.RLock()
		engaged := e.engagedTags[viewerID]
		for _, tag := range tags {
			if engaged[tag] || profile.EngagedHashtags[tag] {
				score += personalTagBoost
			}
		}
		e.mu.RUnlock()
	}

	return math.Min(1.0, score)
}

// weightedSum folds the five signals into one score. The personalization
// signal takes the diversity weight slot; diversity itself acts through the
// shaping pass.
func weightedSum(sig models.RankingSignals, w models.SignalWeights) float64 {
	return sig.AuthorAffinity*w.AuthorAffinity +
		sig.ContentQuality*w.ContentQuality +
		sig.EngagementVelocity*w.Engagement +
		sig.Recency*w.Recency +
		sig.Personalization*w.Diversity
}

// noteHashtags prefers the pre-extracted hashtag list and falls back to
// scanning the text for notes produced without one. Tags are lowercased so
// they compare against engaged-hashtag sets.
func noteHashtags(note *models.Note) []string {
	if len(note.Hashtags) > 0 {
		tags := make([]string, len(note.Hashtags))
		for i, tag := range note.Hashtags {
			tags[i] = strings.ToLower(tag)
		}
		return tags
	}
	return models.ExtractHashtags(note.TextContent)
}

func noteMentions(note *models.Note) []string {
	if len(note.Mentions) > 0 {
		return note.Mentions
	}
	return models.ExtractMentions(note.TextContent)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
