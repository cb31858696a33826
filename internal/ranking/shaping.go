// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package ranking

import (
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// Shaping constants. The diversity pass scales its adjustments by the
// configured diversity weight; the repetition pass applies fixed steps in
// score order.
const (
	diversityAuthorThreshold = 3
	diversityAuthorPenalty   = 0.05
	diversityUniqueTagBoost  = 0.02

	authorSoftCap       = 2
	authorPenaltyStep   = 0.06
	backToBackPenalty   = 0.05
	noveltyBoost        = 0.04
	tagSaturationFloor  = 4
	tagSaturationStep   = 0.01
	tagUniqueBatchBoost = 0.02

	freshnessWindow = 30 * time.Minute
	freshnessBoost  = 0.02
	discoveryBoost  = 0.01
)

// applyDiversityShaping penalizes authors flooding the batch and rewards
// notes carrying a hashtag unique within it. Adjustments scale with the
// diversity weight and the pass is order-independent.
func applyDiversityShaping(items []models.RankedItem, weight float64) {
	if len(items) <= 1 || weight <= 0 {
		return
	}

	authorCount := make(map[string]int, len(items))
	tagFrequency := make(map[string]int)
	for i := range items {
		authorCount[items[i].Note.AuthorID]++
		for _, tag := range noteHashtags(&items[i].Note) {
			tagFrequency[tag]++
		}
	}

	for i := range items {
		adjustment := 0.0

		if n := authorCount[items[i].Note.AuthorID]; n > diversityAuthorThreshold {
			adjustment -= float64(n-diversityAuthorThreshold) * diversityAuthorPenalty
		}
		for _, tag := range noteHashtags(&items[i].Note) {
			if tagFrequency[tag] == 1 {
				adjustment += diversityUniqueTagBoost
			}
		}

		items[i].FinalScore += adjustment * weight
		if items[i].FinalScore < 0 {
			items[i].FinalScore = 0
		}
	}
}

// applyRepetitionControl walks the batch in its current (score) order and
// dampens runs of the same author or topic. Authors past the soft cap lose
// score per extra slot, back-to-back repeats lose more, and an author's
// first appearance earns a novelty boost. Hashtags saturating the batch are
// penalized while singletons get a nudge.
func applyRepetitionControl(items []models.RankedItem) {
	if len(items) <= 1 {
		return
	}

	tagFrequency := make(map[string]int)
	for i := range items {
		for _, tag := range noteHashtags(&items[i].Note) {
			tagFrequency[tag]++
		}
	}

	seen := make(map[string]int, len(items))
	lastAuthor := ""
	for i := range items {
		author := items[i].Note.AuthorID
		seen[author]++
		count := seen[author]

		if count > authorSoftCap {
			items[i].FinalScore -= float64(count-authorSoftCap) * authorPenaltyStep
		}
		if lastAuthor != "" && lastAuthor == author {
			items[i].FinalScore -= backToBackPenalty
		}
		lastAuthor = author

		if count == 1 {
			items[i].FinalScore += noveltyBoost
		}

		for _, tag := range noteHashtags(&items[i].Note) {
			switch freq := tagFrequency[tag]; {
			case freq == 1:
				items[i].FinalScore += tagUniqueBatchBoost
			case freq > tagSaturationFloor:
				items[i].FinalScore -= tagSaturationStep
			}
		}

		if items[i].FinalScore < 0 {
			items[i].FinalScore = 0
		}
	}
}

// applyFreshnessBoost nudges very recent notes and non-following sources up
// a notch. Hybrid timelines only.
func applyFreshnessBoost(items []models.RankedItem, now time.Time) {
	for i := range items {
		age := now.Sub(items[i].Note.CreatedAt)
		if age >= 0 && age <= freshnessWindow {
			items[i].FinalScore += freshnessBoost
		}
		if items[i].Source != models.SourceFollowing {
			items[i].FinalScore += discoveryBoost
		}
	}
}
