// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/ranking"
	"github.com/tomtom215/chronographus/internal/sources"
)

// softDeadlineShare is the fraction of the remaining request budget each
// source fetch gets. A slow source costs at most this share; the merge
// proceeds with whatever returned.
const softDeadlineShare = 0.4

// servePage answers one timeline read: cache hit if fresh, otherwise a
// full assembly with write-back, then pagination.
func (s *Service) servePage(ctx context.Context, req Request, cfg models.TimelineConfig) (*models.TimelinePage, error) {
	if cached, ok := s.cache.GetTimeline(req.ViewerID); ok {
		s.cacheServes.Add(1)
		return s.pageFrom(cached.Items, cached.Metadata, req.ViewerID, req.Offset, req.Limit), nil
	}

	items, md, err := s.assemble(ctx, req, cfg)
	if err != nil {
		return nil, err
	}
	s.writeBack(req.ViewerID, items, md)
	return s.pageFrom(items, md, req.ViewerID, req.Offset, req.Limit), nil
}

// assemble runs the full pipeline: parallel candidate fetch, dedup,
// filter, rank, cap enforcement and the optional external re-rank.
func (s *Service) assemble(ctx context.Context, req Request, cfg models.TimelineConfig) ([]models.RankedItem, models.TimelineMetadata, error) {
	start := time.Now()
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.cfg.Timeline.AssemblyBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeline.AssemblyBudget)
		defer cancel()
	}

	profile := s.profileFor(ctx, req.ViewerID)

	candidates, err := s.fetchCandidates(ctx, req.ViewerID, cfg)
	if err != nil {
		return nil, models.TimelineMetadata{}, err
	}

	candidates, err = s.filterCandidates(ctx, candidates, req.ViewerID, profile)
	if err != nil {
		return nil, models.TimelineMetadata{}, err
	}

	items, algorithmUsed, err := s.score(ctx, candidates, req.ViewerID, profile, cfg)
	if err != nil {
		return nil, models.TimelineMetadata{}, err
	}

	items = enforceCaps(items, cfg)

	if req.UseOverdrive {
		items = s.applyOverdrive(ctx, req.ViewerID, items, cfg.MaxItems)
	}

	weights := cfg.Weights
	weights.Normalize()
	md := models.TimelineMetadata{
		AlgorithmUsed:   algorithmUsed.String(),
		SignalWeights:   weights.ToMap(),
		TotalItems:      len(items),
		LastUpdated:     time.Now().UTC(),
		TimelineVersion: models.TimelineVersion,
	}

	s.assemblies.Add(1)
	metrics.RecordAssembly(algorithmUsed.String(), time.Since(start), len(items))
	s.logger.Debug().
		Str("viewer_id", req.ViewerID).
		Str("algorithm", algorithmUsed.String()).
		Int("items", len(items)).
		Dur("elapsed", time.Since(start)).
		Msg("timeline assembled")

	return items, md, nil
}

// fetchResult carries one source's contribution back to the merge.
type fetchResult struct {
	source models.Source
	notes  []models.Note
	err    error
}

// fetchCandidates runs one goroutine per quota-bearing source, each under
// the per-source soft deadline, then merges in source-ordinal order with
// first-occurrence-wins dedup.
func (s *Service) fetchCandidates(ctx context.Context, viewerID string, cfg models.TimelineConfig) ([]ranking.Candidate, error) {
	since := time.Now().Add(-time.Duration(cfg.MaxAgeHours) * time.Hour)
	soft := s.softDeadline(ctx)

	results := make(chan fetchResult, len(models.AllSources))
	var wg sync.WaitGroup
	active := 0

	for _, kind := range models.AllSources {
		src, ok := s.sources[kind]
		if !ok {
			continue
		}
		quota := cfg.SourceQuota(kind)
		if fetchCap := s.cfg.Sources.FetchLimit; fetchCap > 0 && quota > fetchCap {
			quota = fetchCap
		}
		if quota <= 0 {
			continue
		}

		active++
		wg.Add(1)
		go func(kind models.Source, src sources.Source, quota int) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, soft)
			defer cancel()

			fetchStart := time.Now()
			notes, err := src.Fetch(fetchCtx, viewerID, cfg, since, quota)
			metrics.RecordSourceFetch(kind.String(), time.Since(fetchStart), len(notes), err)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("source", kind.String()).
					Str("viewer_id", viewerID).
					Msg("source fetch failed, proceeding without it")
				results <- fetchResult{source: kind, err: err}
				return
			}
			results <- fetchResult{source: kind, notes: notes}
		}(kind, src, quota)
	}

	wg.Wait()
	close(results)

	bySource := make(map[models.Source][]models.Note, active)
	failures := 0
	var firstErr error
	for r := range results {
		if r.err != nil {
			failures++
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		bySource[r.source] = r.notes
	}

	seen := make(map[string]bool)
	var merged []ranking.Candidate
	for _, kind := range models.AllSources {
		for _, note := range bySource[kind] {
			if seen[note.NoteID] {
				continue
			}
			seen[note.NoteID] = true
			merged = append(merged, ranking.Candidate{Note: note, Source: kind})
		}
	}

	if len(merged) == 0 && active > 0 && failures == active {
		if ctx.Err() != nil || errors.Is(firstErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("no source returned within budget: %w", ErrDeadlineExceeded)
		}
		return nil, fmt.Errorf("all candidate sources failed: %v: %w", firstErr, ErrUnavailable)
	}
	return merged, nil
}

// filterCandidates runs the content filter over the merged candidates and
// rebuilds the candidate slice from the surviving notes. Filter errors
// fail the request closed.
func (s *Service) filterCandidates(ctx context.Context, candidates []ranking.Candidate, viewerID string, profile *models.ViewerProfile) ([]ranking.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	notes := make([]models.Note, len(candidates))
	sourceByID := make(map[string]models.Source, len(candidates))
	for i := range candidates {
		notes[i] = candidates[i].Note
		sourceByID[candidates[i].Note.NoteID] = candidates[i].Source
	}

	allowed, err := s.filter.Filter(ctx, notes, viewerID, profile)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("content filter: %w", ErrDeadlineExceeded)
		}
		return nil, fmt.Errorf("content filter: %v: %w", err, ErrInternal)
	}

	out := make([]ranking.Candidate, 0, len(allowed))
	for i := range allowed {
		out = append(out, ranking.Candidate{Note: allowed[i], Source: sourceByID[allowed[i].NoteID]})
	}
	return out, nil
}

// score ranks the candidates, falling back to chronological ordering when
// the ranker fails for any reason other than request cancellation.
func (s *Service) score(ctx context.Context, candidates []ranking.Candidate, viewerID string, profile *models.ViewerProfile, cfg models.TimelineConfig) ([]models.RankedItem, models.Algorithm, error) {
	items, err := s.ranker.Score(ctx, candidates, viewerID, profile, cfg)
	if err == nil {
		return items, cfg.Algorithm, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil, cfg.Algorithm, fmt.Errorf("ranker: %w", ErrDeadlineExceeded)
	}

	metrics.RecordRankerFallback()
	s.logger.Warn().
		Err(err).
		Str("viewer_id", viewerID).
		Msg("ranker failed, falling back to chronological")

	fallback := cfg
	fallback.Algorithm = models.AlgorithmChronological
	items, err = s.ranker.Score(ctx, candidates, viewerID, profile, fallback)
	if err != nil {
		return nil, fallback.Algorithm, fmt.Errorf("chronological fallback: %v: %w", err, ErrInternal)
	}
	return items, fallback.Algorithm, nil
}

// enforceCaps walks the score-sorted items applying per-source caps, the
// overall item budget and the score threshold.
func enforceCaps(items []models.RankedItem, cfg models.TimelineConfig) []models.RankedItem {
	out := make([]models.RankedItem, 0, min(len(items), cfg.MaxItems))
	counts := make(map[models.Source]int, len(models.AllSources))
	for i := range items {
		if len(out) >= cfg.MaxItems {
			break
		}
		if items[i].FinalScore < cfg.MinScoreThreshold {
			break
		}
		limit := cfg.Caps.Effective(items[i].Source, cfg.MaxItems)
		if counts[items[i].Source] >= limit {
			continue
		}
		counts[items[i].Source]++
		out = append(out, items[i])
	}
	return out
}

// applyOverdrive sends the current ordering to the external re-ranker.
// Matched ids take the returned score, unmatched keep theirs, and a
// breaker-open or failed call leaves the ordering untouched.
func (s *Service) applyOverdrive(ctx context.Context, viewerID string, items []models.RankedItem, limit int) []models.RankedItem {
	if s.reranker == nil || len(items) == 0 {
		return items
	}

	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].Note.NoteID
	}

	scores, err := s.reranker.RankForYou(ctx, viewerID, ids, limit)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("viewer_id", viewerID).
			Msg("overdrive re-rank unavailable, keeping local order")
		return items
	}

	for i := range items {
		if score, ok := scores[items[i].Note.NoteID]; ok {
			// Scores are externally supplied; final_score stays non-negative.
			items[i].FinalScore = max(score, 0)
			items[i].InjectionReason = "overdrive"
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].FinalScore > items[j].FinalScore
	})
	return items
}

// writeBack stores the assembled timeline in the tiered cache.
func (s *Service) writeBack(viewerID string, items []models.RankedItem, md models.TimelineMetadata) {
	s.cache.PutTimeline(viewerID, &cache.CachedTimeline{
		Items:       items,
		Metadata:    md,
		AssembledAt: time.Now().UTC(),
	}, s.cfg.Timeline.CacheTTL)
}

// pageFrom recomputes the read-position metadata and paginates.
func (s *Service) pageFrom(items []models.RankedItem, md models.TimelineMetadata, viewerID string, offset, limit int) *models.TimelinePage {
	lastRead, _ := s.cache.GetLastRead(viewerID)
	md.TotalItems = len(items)
	md.NewItemsSinceLastFetch = countNewItems(items, lastRead)
	pageItems, info := models.Paginate(items, offset, limit)
	return &models.TimelinePage{Items: pageItems, Metadata: md, Pagination: info}
}

// countNewItems counts items injected after the viewer's last-read mark.
// A zero mark counts everything.
func countNewItems(items []models.RankedItem, lastRead time.Time) int {
	n := 0
	for i := range items {
		if items[i].InjectedAt.After(lastRead) {
			n++
		}
	}
	return n
}

// softDeadline derives the per-source fetch budget from the remaining
// request budget.
func (s *Service) softDeadline(ctx context.Context) time.Duration {
	remaining := s.cfg.Timeline.AssemblyBudget
	if deadline, ok := ctx.Deadline(); ok {
		remaining = time.Until(deadline)
	}
	if remaining <= 0 {
		remaining = time.Second
	}
	soft := time.Duration(float64(remaining) * softDeadlineShare)
	if soft <= 0 {
		soft = time.Millisecond
	}
	return soft
}
