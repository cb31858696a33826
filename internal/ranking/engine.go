// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package ranking

import (
	"context"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
)

// Affinity increments per engagement action. Affinity and global author
// scores are monotonically increasing with a ceiling of 1.
const (
	affinityLike    = 0.05
	affinityReshare = 0.10
	affinityReply   = 0.15
	affinityFollow  = 0.30

	globalScoreStep = 0.01
	affinityCeiling = 1.0
)

// chronologicalReason marks items scored by creation time alone.
const chronologicalReason = "chronological"

// ctxCheckInterval bounds how many candidates are scored between context
// cancellation checks.
const ctxCheckInterval = 64

// Candidate pairs one note with the source that produced it. The source
// feeds the hybrid discovery boost and survives into the ranked item.
type Candidate struct {
	Note   models.Note
	Source models.Source
}

// Engine scores candidate batches for one viewer. It is safe for
// concurrent use: the affinity tables sit behind a dedicated lock and
// RecordEngagement is their only mutator.
type Engine struct {
	logger zerolog.Logger

	mu             sync.RWMutex
	viewerAffinity map[string]map[string]float64
	authorScores   map[string]float64
	engagedTags    map[string]map[string]bool

	batchesScored       atomic.Int64
	candidatesScored    atomic.Int64
	engagementsRecorded atomic.Int64
}

// NewEngine creates a ranking engine with empty affinity tables.
func NewEngine() *Engine {
	return &Engine{
		logger:         logging.WithComponent("ranking"),
		viewerAffinity: make(map[string]map[string]float64),
		authorScores:   make(map[string]float64),
		engagedTags:    make(map[string]map[string]bool),
	}
}

// Score ranks candidates for the viewer under the given configuration.
//
// CHRONOLOGICAL timelines score by creation time alone and skip every
// shaping pass. Otherwise each candidate gets the five-signal weighted sum,
// then diversity shaping, repetition control in score order and (for
// HYBRID) the freshness micro-boost. Scores never go below zero and the
// result is sorted by score, recency, note id.
func (e *Engine) Score(ctx context.Context, candidates []Candidate, viewerID string, profile *models.ViewerProfile, cfg models.TimelineConfig) ([]models.RankedItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if profile == nil {
		profile = models.NewViewerProfile(viewerID)
	}

	now := time.Now().UTC()
	items := make([]models.RankedItem, 0, len(candidates))

	if cfg.Algorithm == models.AlgorithmChronological {
		for i := range candidates {
			items = append(items, models.RankedItem{
				Note:            candidates[i].Note,
				Source:          candidates[i].Source,
				FinalScore:      float64(candidates[i].Note.CreatedAt.Unix()),
				InjectedAt:      now,
				InjectionReason: chronologicalReason,
			})
		}
		slices.SortFunc(items, models.CompareRanked)
		e.recordBatch(len(items))
		return items, nil
	}

	for i := range candidates {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		note := &candidates[i].Note
		signals := models.RankingSignals{
			AuthorAffinity:     e.authorAffinity(viewerID, note.AuthorID, profile),
			ContentQuality:     contentQuality(note),
			EngagementVelocity: engagementVelocity(note, now),
			Recency:            recency(note, now),
			Personalization:    e.personalization(viewerID, note, profile),
		}
		items = append(items, models.RankedItem{
			Note:            candidates[i].Note,
			Source:          candidates[i].Source,
			FinalScore:      weightedSum(signals, cfg.Weights),
			Signals:         signals,
			InjectedAt:      now,
			InjectionReason: candidates[i].Source.String(),
		})
	}

	applyDiversityShaping(items, cfg.Weights.Diversity)
	slices.SortFunc(items, models.CompareRanked)
	applyRepetitionControl(items)
	if cfg.Algorithm == models.AlgorithmHybrid {
		applyFreshnessBoost(items, now)
	}
	slices.SortFunc(items, models.CompareRanked)

	e.recordBatch(len(items))
	e.logger.Debug().
		Str("viewer_id", viewerID).
		Int("candidates", len(items)).
		Float64("avg_score", averageScore(items)).
		Msg("scoring complete")

	return items, nil
}

// RecordEngagement applies one viewer interaction to the affinity tables
// and returns the resulting viewer-to-author affinity. Hide mutates
// nothing. Duration is dwell time reported by the client, logged for model
// tuning but not yet a scoring input.
func (e *Engine) RecordEngagement(viewerID string, note *models.Note, action models.EngagementAction, duration time.Duration) float64 {
	e.engagementsRecorded.Add(1)

	if action == models.ActionHide {
		e.mu.RLock()
		current := e.viewerAffinity[viewerID][note.AuthorID]
		e.mu.RUnlock()
		return current
	}

	delta := affinityDelta(action)
	tags := noteHashtags(note)

	e.mu.Lock()
	byAuthor := e.viewerAffinity[viewerID]
	if byAuthor == nil {
		byAuthor = make(map[string]float64)
		e.viewerAffinity[viewerID] = byAuthor
	}
	affinity := math.Min(affinityCeiling, byAuthor[note.AuthorID]+delta)
	byAuthor[note.AuthorID] = affinity

	e.authorScores[note.AuthorID] = math.Min(affinityCeiling, e.authorScores[note.AuthorID]+globalScoreStep)

	if len(tags) > 0 {
		engaged := e.engagedTags[viewerID]
		if engaged == nil {
			engaged = make(map[string]bool)
			e.engagedTags[viewerID] = engaged
		}
		for _, tag := range tags {
			engaged[tag] = true
		}
	}
	e.mu.Unlock()

	e.logger.Debug().
		Str("viewer_id", viewerID).
		Str("note_id", note.NoteID).
		Str("action", string(action)).
		Dur("duration", duration).
		Float64("affinity", affinity).
		Msg("engagement recorded")

	return affinity
}

// AffinityFor returns the recorded viewer-to-author affinity, zero when
// none exists.
func (e *Engine) AffinityFor(viewerID, authorID string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.viewerAffinity[viewerID][authorID]
}

// Stats reports engine counters for the ops surface.
type Stats struct {
	BatchesScored       int64 `json:"batches_scored"`
	CandidatesScored    int64 `json:"candidates_scored"`
	EngagementsRecorded int64 `json:"engagements_recorded"`
	TrackedViewers      int   `json:"tracked_viewers"`
	TrackedAuthors      int   `json:"tracked_authors"`
}

// Stats returns a point-in-time snapshot of engine activity.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	viewers := len(e.viewerAffinity)
	authors := len(e.authorScores)
	e.mu.RUnlock()

	return Stats{
		BatchesScored:       e.batchesScored.Load(),
		CandidatesScored:    e.candidatesScored.Load(),
		EngagementsRecorded: e.engagementsRecorded.Load(),
		TrackedViewers:      viewers,
		TrackedAuthors:      authors,
	}
}

func (e *Engine) recordBatch(n int) {
	e.batchesScored.Add(1)
	e.candidatesScored.Add(int64(n))
}

func affinityDelta(action models.EngagementAction) float64 {
	switch action {
	case models.ActionLike:
		return affinityLike
	case models.ActionReshare:
		return affinityReshare
	case models.ActionReply:
		return affinityReply
	case models.ActionFollow:
		return affinityFollow
	default:
		return 0
	}
}

func averageScore(items []models.RankedItem) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for i := range items {
		sum += items[i].FinalScore
	}
	return sum / float64(len(items))
}
