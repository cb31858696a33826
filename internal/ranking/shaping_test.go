// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package ranking

import (
	"testing"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

func shapedItem(noteID, authorID string, score float64, tags ...string) models.RankedItem {
	return models.RankedItem{
		Note: models.Note{
			NoteID:      noteID,
			AuthorID:    authorID,
			TextContent: "some note body long enough to not matter here",
			Hashtags:    tags,
		},
		FinalScore: score,
	}
}

func TestApplyDiversityShapingAuthorFlood(t *testing.T) {
	items := []models.RankedItem{
		shapedItem("n1", "flood", 0.5),
		shapedItem("n2", "flood", 0.5),
		shapedItem("n3", "flood", 0.5),
		shapedItem("n4", "flood", 0.5),
		shapedItem("n5", "flood", 0.5),
		shapedItem("n6", "other", 0.5),
	}

	applyDiversityShaping(items, 1.0)

	// Five appearances: 2 over the threshold of 3, 0.05 each.
	for i := 0; i < 5; i++ {
		if !almostEqual(items[i].FinalScore, 0.4) {
			t.Errorf("flooded author item %d score = %f, want 0.4", i, items[i].FinalScore)
		}
	}
	if !almostEqual(items[5].FinalScore, 0.5) {
		t.Errorf("single-appearance author score = %f, want 0.5", items[5].FinalScore)
	}
}

func TestApplyDiversityShapingUniqueTag(t *testing.T) {
	items := []models.RankedItem{
		shapedItem("n1", "a1", 0.5, "shared"),
		shapedItem("n2", "a2", 0.5, "shared"),
		shapedItem("n3", "a3", 0.5, "solo"),
	}

	applyDiversityShaping(items, 1.0)

	if !almostEqual(items[0].FinalScore, 0.5) || !almostEqual(items[1].FinalScore, 0.5) {
		t.Errorf("shared-tag scores = %f, %f, want 0.5 each", items[0].FinalScore, items[1].FinalScore)
	}
	if !almostEqual(items[2].FinalScore, 0.52) {
		t.Errorf("unique-tag score = %f, want 0.52", items[2].FinalScore)
	}
}

func TestApplyDiversityShapingWeightScales(t *testing.T) {
	items := []models.RankedItem{
		shapedItem("n1", "a1", 0.5, "solo"),
		shapedItem("n2", "a2", 0.5),
	}

	applyDiversityShaping(items, 0.1)

	if !almostEqual(items[0].FinalScore, 0.502) {
		t.Errorf("scaled unique-tag score = %f, want 0.502", items[0].FinalScore)
	}
}

func TestApplyDiversityShapingNoOps(t *testing.T) {
	single := []models.RankedItem{shapedItem("n1", "a1", 0.5)}
	applyDiversityShaping(single, 1.0)
	if !almostEqual(single[0].FinalScore, 0.5) {
		t.Errorf("single-item batch changed: %f", single[0].FinalScore)
	}

	zeroWeight := []models.RankedItem{
		shapedItem("n1", "a1", 0.5, "solo"),
		shapedItem("n2", "a2", 0.5),
	}
	applyDiversityShaping(zeroWeight, 0)
	if !almostEqual(zeroWeight[0].FinalScore, 0.5) {
		t.Errorf("zero-weight batch changed: %f", zeroWeight[0].FinalScore)
	}
}

func TestApplyDiversityShapingFloorsAtZero(t *testing.T) {
	items := []models.RankedItem{
		shapedItem("n1", "flood", 0.01),
		shapedItem("n2", "flood", 0.01),
		shapedItem("n3", "flood", 0.01),
		shapedItem("n4", "flood", 0.01),
		shapedItem("n5", "flood", 0.01),
	}

	applyDiversityShaping(items, 1.0)

	for i := range items {
		if items[i].FinalScore < 0 {
			t.Errorf("item %d score = %f, want >= 0", i, items[i].FinalScore)
		}
	}
}

func TestApplyRepetitionControlAuthorRuns(t *testing.T) {
	items := []models.RankedItem{
		shapedItem("n1", "a", 0.5),
		shapedItem("n2", "a", 0.5),
		shapedItem("n3", "a", 0.5),
		shapedItem("n4", "b", 0.5),
	}

	applyRepetitionControl(items)

	// First appearance: novelty boost.
	if !almostEqual(items[0].FinalScore, 0.54) {
		t.Errorf("first item score = %f, want 0.54", items[0].FinalScore)
	}
	// Second: back-to-back penalty only (still inside the soft cap).
	if !almostEqual(items[1].FinalScore, 0.45) {
		t.Errorf("second item score = %f, want 0.45", items[1].FinalScore)
	}
	// Third: one step over the cap plus back-to-back.
	if !almostEqual(items[2].FinalScore, 0.39) {
		t.Errorf("third item score = %f, want 0.39", items[2].FinalScore)
	}
	// New author: novelty boost again.
	if !almostEqual(items[3].FinalScore, 0.54) {
		t.Errorf("fourth item score = %f, want 0.54", items[3].FinalScore)
	}
}

func TestApplyRepetitionControlTagFrequency(t *testing.T) {
	items := []models.RankedItem{
		shapedItem("n1", "a1", 0.5, "hot"),
		shapedItem("n2", "a2", 0.5, "hot"),
		shapedItem("n3", "a3", 0.5, "hot"),
		shapedItem("n4", "a4", 0.5, "hot"),
		shapedItem("n5", "a5", 0.5, "hot"),
		shapedItem("n6", "a6", 0.5, "rare"),
	}

	applyRepetitionControl(items)

	// "hot" appears 5 times (> 4): saturation penalty on top of novelty.
	if !almostEqual(items[0].FinalScore, 0.53) {
		t.Errorf("saturated-tag score = %f, want 0.53", items[0].FinalScore)
	}
	// "rare" is a singleton: boost on top of novelty.
	if !almostEqual(items[5].FinalScore, 0.56) {
		t.Errorf("singleton-tag score = %f, want 0.56", items[5].FinalScore)
	}
}

func TestApplyRepetitionControlFloorsAtZero(t *testing.T) {
	items := []models.RankedItem{
		shapedItem("n1", "a", 0.0),
		shapedItem("n2", "a", 0.0),
		shapedItem("n3", "a", 0.01),
	}

	applyRepetitionControl(items)

	for i := range items {
		if items[i].FinalScore < 0 {
			t.Errorf("item %d score = %f, want >= 0", i, items[i].FinalScore)
		}
	}
}

func TestApplyFreshnessBoost(t *testing.T) {
	now := time.Now().UTC()

	items := []models.RankedItem{
		shapedItem("n1", "a1", 0.5),
		shapedItem("n2", "a2", 0.5),
		shapedItem("n3", "a3", 0.5),
		shapedItem("n4", "a4", 0.5),
	}
	items[0].Note.CreatedAt = now.Add(-10 * time.Minute) // fresh
	items[0].Source = models.SourceFollowing
	items[1].Note.CreatedAt = now.Add(-10 * time.Minute) // fresh + discovery
	items[1].Source = models.SourceRecommended
	items[2].Note.CreatedAt = now.Add(-2 * time.Hour) // stale
	items[2].Source = models.SourceFollowing
	items[3].Note.CreatedAt = now.Add(-2 * time.Hour) // discovery only
	items[3].Source = models.SourceTrending

	applyFreshnessBoost(items, now)

	if !almostEqual(items[0].FinalScore, 0.52) {
		t.Errorf("fresh following score = %f, want 0.52", items[0].FinalScore)
	}
	if !almostEqual(items[1].FinalScore, 0.53) {
		t.Errorf("fresh recommended score = %f, want 0.53", items[1].FinalScore)
	}
	if !almostEqual(items[2].FinalScore, 0.5) {
		t.Errorf("stale following score = %f, want 0.5", items[2].FinalScore)
	}
	if !almostEqual(items[3].FinalScore, 0.51) {
		t.Errorf("stale trending score = %f, want 0.51", items[3].FinalScore)
	}
}
