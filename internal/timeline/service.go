// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package timeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/ranking"
	"github.com/tomtom215/chronographus/internal/sources"
)

// Ranker scores candidate batches and records engagement into the
// affinity tables.
type Ranker interface {
	Score(ctx context.Context, candidates []ranking.Candidate, viewerID string, profile *models.ViewerProfile, cfg models.TimelineConfig) ([]models.RankedItem, error)
	RecordEngagement(viewerID string, note *models.Note, action models.EngagementAction, duration time.Duration) float64
}

// ContentFilter removes notes the viewer must not see. Implementations
// fail closed: an error means no notes pass.
type ContentFilter interface {
	Filter(ctx context.Context, notes []models.Note, viewerID string, profile *models.ViewerProfile) ([]models.Note, error)
}

// NoteStore is the note lookup surface the service needs beyond what the
// candidate sources cover.
type NoteStore interface {
	GetNote(noteID string) (models.Note, bool)
	NotesByAuthors(ctx context.Context, authors []string, since time.Time, limit int) ([]models.Note, error)
}

// FollowGraph resolves who a viewer follows, used to prime new profiles.
type FollowGraph interface {
	Following(ctx context.Context, viewerID string) ([]string, error)
}

// EngagementSink is the append-only analytics log. Append failures are
// absorbed; ranking-state recording still happens.
type EngagementSink interface {
	Append(ctx context.Context, event models.EngagementEvent) error
}

// UpdatePublisher pushes incremental updates into a viewer's open stream
// sessions.
type UpdatePublisher interface {
	Publish(viewerID string, update models.TimelineUpdate)
}

// Request carries one timeline read with its per-request overrides.
// Zero-valued override fields mean "no override". Limit is taken as
// given: zero yields an empty page with pagination intact, so callers
// resolve an omitted limit to their default before building a Request.
type Request struct {
	ViewerID  string
	Algorithm models.Algorithm
	Offset    int
	Limit     int

	ABWeights      map[models.Source]float64
	Caps           map[models.Source]int
	DiscoveryShare *float64
	UseOverdrive   bool
}

// RefreshRequest asks for a cache-busting regeneration.
type RefreshRequest struct {
	ViewerID string
	Since    time.Time
	MaxItems int
}

// EngagementRequest records one viewer interaction with a note.
type EngagementRequest struct {
	ViewerID        string
	NoteID          string
	Action          models.EngagementAction
	DurationSeconds float64
}

// Deps wires the service's collaborators. Cache, Filter, Ranker, Notes
// and at least one Source are required; Graph, Reranker, Events and
// Notifier are optional.
type Deps struct {
	Config   *config.Config
	Cache    *cache.TieredCache
	Sources  []sources.Source
	Filter   ContentFilter
	Ranker   Ranker
	Notes    NoteStore
	Graph    FollowGraph
	Reranker Reranker
	Events   EngagementSink
	Notifier UpdatePublisher
}

// Service assembles, caches and serves viewer timelines.
type Service struct {
	cfg  *config.Config
	base models.TimelineConfig

	cache    *cache.TieredCache
	sources  map[models.Source]sources.Source
	filter   ContentFilter
	ranker   Ranker
	notes    NoteStore
	graph    FollowGraph
	reranker Reranker
	events   EngagementSink
	notifier UpdatePublisher

	prefsMu sync.RWMutex
	prefs   map[string]models.TimelineConfig

	refreshMu   sync.Mutex
	lastRefresh map[string]time.Time

	assemblies    atomic.Int64
	cacheServes   atomic.Int64
	refreshDenied atomic.Int64

	logger zerolog.Logger
}

// NewService builds the timeline service.
func NewService(deps Deps) (*Service, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("timeline: config is required")
	}
	if deps.Cache == nil {
		return nil, fmt.Errorf("timeline: cache is required")
	}
	if deps.Filter == nil {
		return nil, fmt.Errorf("timeline: filter is required")
	}
	if deps.Ranker == nil {
		return nil, fmt.Errorf("timeline: ranker is required")
	}
	if deps.Notes == nil {
		return nil, fmt.Errorf("timeline: note store is required")
	}
	if len(deps.Sources) == 0 {
		return nil, fmt.Errorf("timeline: at least one candidate source is required")
	}

	byKind := make(map[models.Source]sources.Source, len(deps.Sources))
	for _, src := range deps.Sources {
		if _, dup := byKind[src.Kind()]; dup {
			return nil, fmt.Errorf("timeline: duplicate source %s", src.Kind())
		}
		byKind[src.Kind()] = src
	}

	return &Service{
		cfg:         deps.Config,
		base:        deps.Config.Timeline.ToModel(),
		cache:       deps.Cache,
		sources:     byKind,
		filter:      deps.Filter,
		ranker:      deps.Ranker,
		notes:       deps.Notes,
		graph:       deps.Graph,
		reranker:    deps.Reranker,
		events:      deps.Events,
		notifier:    deps.Notifier,
		prefs:       make(map[string]models.TimelineConfig),
		lastRefresh: make(map[string]time.Time),
		logger:      logging.WithComponent("timeline"),
	}, nil
}

// GetTimeline serves the general timeline with the fully resolved
// configuration.
func (s *Service) GetTimeline(ctx context.Context, req Request) (*models.TimelinePage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	cfg := s.resolveConfig(req)
	return s.servePage(ctx, req, cfg)
}

// GetForYouTimeline serves the discovery timeline. The algorithm is
// forced to hybrid and the request may opt into the external re-ranker.
func (s *Service) GetForYouTimeline(ctx context.Context, req Request) (*models.TimelinePage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Algorithm == models.AlgorithmUnspecified || req.Algorithm == models.AlgorithmChronological {
		req.Algorithm = models.AlgorithmHybrid
	}
	cfg := s.resolveConfig(req)
	return s.servePage(ctx, req, cfg)
}

// GetFollowingTimeline serves the follows-only timeline: chronological,
// following ratio 1, every other source zeroed.
func (s *Service) GetFollowingTimeline(ctx context.Context, req Request) (*models.TimelinePage, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	req.Algorithm = models.AlgorithmChronological
	req.UseOverdrive = false
	cfg := s.resolveConfig(req)
	cfg.Ratios = models.SourceRatios{Following: 1}
	return s.servePage(ctx, req, cfg)
}

// GetUserTimeline serves one target author's notes, newest first,
// filtered for the viewer but never ranked or cached.
func (s *Service) GetUserTimeline(ctx context.Context, viewerID, targetUserID string, offset, limit int) (*models.TimelinePage, error) {
	if viewerID == "" || targetUserID == "" {
		return nil, fmt.Errorf("viewer and target user are required: %w", ErrInvalidArgument)
	}
	if limit < 0 {
		return nil, fmt.Errorf("limit must be non-negative: %w", ErrInvalidArgument)
	}

	fetchLimit := s.cfg.Sources.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = offset + limit
	}
	notes, err := s.notes.NotesByAuthors(ctx, []string{targetUserID}, time.Time{}, fetchLimit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("user timeline fetch: %w", ErrDeadlineExceeded)
		}
		return nil, fmt.Errorf("user timeline fetch: %v: %w", err, ErrUnavailable)
	}

	profile := s.profileFor(ctx, viewerID)
	allowed, err := s.filter.Filter(ctx, notes, viewerID, profile)
	if err != nil {
		return nil, fmt.Errorf("user timeline filter: %v: %w", err, ErrInternal)
	}

	now := time.Now().UTC()
	source := models.SourceRecommended
	if profile.IsFollowing(targetUserID) {
		source = models.SourceFollowing
	}
	items := make([]models.RankedItem, 0, len(allowed))
	for i := range allowed {
		items = append(items, models.RankedItem{
			Note:            allowed[i],
			Source:          source,
			FinalScore:      float64(allowed[i].CreatedAt.Unix()),
			InjectedAt:      now,
			InjectionReason: "user_timeline",
		})
	}

	md := models.TimelineMetadata{
		AlgorithmUsed:   models.AlgorithmChronological.String(),
		SignalWeights:   s.base.Weights.ToMap(),
		TotalItems:      len(items),
		LastUpdated:     now,
		TimelineVersion: models.TimelineVersion,
	}
	pageItems, info := models.Paginate(items, offset, limit)
	return &models.TimelinePage{Items: pageItems, Metadata: md, Pagination: info}, nil
}

// RefreshTimeline invalidates the viewer's cached timeline, regenerates
// it, returns only items newer than Since (when set) and notifies the
// viewer's open stream sessions. Refreshes are throttled per viewer.
func (s *Service) RefreshTimeline(ctx context.Context, req RefreshRequest) (*models.TimelinePage, error) {
	if req.ViewerID == "" {
		return nil, fmt.Errorf("viewer_id is required: %w", ErrInvalidArgument)
	}
	if req.MaxItems < 0 {
		return nil, fmt.Errorf("max_items must be non-negative: %w", ErrInvalidArgument)
	}
	if !s.allowRefresh(req.ViewerID) {
		s.refreshDenied.Add(1)
		return nil, fmt.Errorf("refresh throttled for %s: %w", req.ViewerID, ErrRateLimited)
	}

	s.cache.InvalidateTimeline(req.ViewerID)

	cfg := s.resolveConfig(Request{ViewerID: req.ViewerID})
	if req.MaxItems > 0 && req.MaxItems < cfg.MaxItems {
		cfg.MaxItems = req.MaxItems
	}

	items, md, err := s.assemble(ctx, Request{ViewerID: req.ViewerID}, cfg)
	if err != nil {
		return nil, err
	}
	s.writeBack(req.ViewerID, items, md)

	fresh := items
	if !req.Since.IsZero() {
		fresh = make([]models.RankedItem, 0, len(items))
		for i := range items {
			if items[i].Note.CreatedAt.After(req.Since) {
				fresh = append(fresh, items[i])
			}
		}
	}
	if req.MaxItems > 0 && len(fresh) > req.MaxItems {
		fresh = fresh[:req.MaxItems]
	}

	if s.notifier != nil {
		s.notifier.Publish(req.ViewerID, models.TimelineUpdate{
			UpdateType: models.UpdateTimelineRefresh,
			Timestamp:  time.Now().UTC(),
		})
	}

	md.TotalItems = len(fresh)
	pageItems, info := models.Paginate(fresh, 0, max(len(fresh), 1))
	return &models.TimelinePage{Items: pageItems, Metadata: md, Pagination: info}, nil
}

// MarkTimelineRead advances the viewer's last-read mark. The mark is
// monotonic: an older timestamp never rewinds it.
func (s *Service) MarkTimelineRead(ctx context.Context, viewerID string, readUntil time.Time) error {
	if viewerID == "" {
		return fmt.Errorf("viewer_id is required: %w", ErrInvalidArgument)
	}
	if readUntil.IsZero() {
		return fmt.Errorf("read_until is required: %w", ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mark read: %w", ErrDeadlineExceeded)
	}
	if current, ok := s.cache.GetLastRead(viewerID); ok && current.After(readUntil) {
		return nil
	}
	s.cache.SetLastRead(viewerID, readUntil, s.cfg.Cache.LastReadTTL)
	return nil
}

// RecordEngagement folds one interaction into the ranking state, mirrors
// the resulting affinity into the stored profile and appends the event to
// the analytics log. Analytics failures degrade to ranking-state-only.
func (s *Service) RecordEngagement(ctx context.Context, req EngagementRequest) error {
	if req.ViewerID == "" || req.NoteID == "" {
		return fmt.Errorf("viewer_id and note_id are required: %w", ErrInvalidArgument)
	}
	if !models.ValidEngagementAction(string(req.Action)) {
		return fmt.Errorf("unknown action %q: %w", req.Action, ErrInvalidArgument)
	}
	if req.DurationSeconds < 0 {
		return fmt.Errorf("duration_seconds must be non-negative: %w", ErrInvalidArgument)
	}

	note, ok := s.notes.GetNote(req.NoteID)
	if !ok {
		return fmt.Errorf("unknown note %q: %w", req.NoteID, ErrInvalidArgument)
	}

	duration := time.Duration(req.DurationSeconds * float64(time.Second))
	affinity := s.ranker.RecordEngagement(req.ViewerID, &note, req.Action, duration)

	profile := s.profileFor(ctx, req.ViewerID)
	profile = profile.Clone()
	if profile.AuthorAffinity == nil {
		profile.AuthorAffinity = make(map[string]float64)
	}
	profile.AuthorAffinity[note.AuthorID] = affinity
	if req.Action != models.ActionHide {
		if profile.EngagedHashtags == nil {
			profile.EngagedHashtags = make(map[string]bool)
		}
		for _, tag := range note.Hashtags {
			profile.EngagedHashtags[tag] = true
		}
	}
	if req.Action == models.ActionFollow {
		if profile.Follows == nil {
			profile.Follows = make(map[string]bool)
		}
		profile.Follows[note.AuthorID] = true
	}
	profile.EngagementCount++
	profile.Touch()
	s.cache.PutProfile(req.ViewerID, profile, s.cfg.Cache.ProfileTTL)

	if s.events != nil {
		event := models.EngagementEvent{
			EventID:         uuid.NewString(),
			ViewerID:        req.ViewerID,
			NoteID:          req.NoteID,
			AuthorID:        note.AuthorID,
			Action:          req.Action,
			DurationSeconds: req.DurationSeconds,
			OccurredAt:      time.Now().UTC(),
		}
		if err := s.events.Append(ctx, event); err != nil {
			metrics.EngagementStoreErrors.Inc()
			s.logger.Warn().
				Err(err).
				Str("viewer_id", req.ViewerID).
				Str("note_id", req.NoteID).
				Msg("engagement log append failed, ranking state still updated")
		}
	}

	metrics.RecordEngagement(string(req.Action))
	return nil
}

// Stats is a point-in-time service counter snapshot for the health
// surface.
type Stats struct {
	Assemblies         int64 `json:"assemblies"`
	CacheServes        int64 `json:"cache_serves"`
	RefreshesThrottled int64 `json:"refreshes_throttled"`
	StoredPreferences  int   `json:"stored_preferences"`
}

// Stats returns the current service counters.
func (s *Service) Stats() Stats {
	s.prefsMu.RLock()
	prefCount := len(s.prefs)
	s.prefsMu.RUnlock()
	return Stats{
		Assemblies:         s.assemblies.Load(),
		CacheServes:        s.cacheServes.Load(),
		RefreshesThrottled: s.refreshDenied.Load(),
		StoredPreferences:  prefCount,
	}
}

// allowRefresh enforces the per-viewer refresh throttle.
func (s *Service) allowRefresh(viewerID string) bool {
	minInterval := s.cfg.Timeline.RefreshMinInterval
	if minInterval <= 0 {
		return true
	}
	now := time.Now()
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if last, ok := s.lastRefresh[viewerID]; ok && now.Sub(last) < minInterval {
		return false
	}
	s.lastRefresh[viewerID] = now
	return true
}

// profileFor returns the viewer's profile, creating and caching a
// defaulted one primed with the follow set on first sight.
func (s *Service) profileFor(ctx context.Context, viewerID string) *models.ViewerProfile {
	if profile, ok := s.cache.GetProfile(viewerID); ok {
		return profile
	}
	profile := models.NewViewerProfile(viewerID)
	if s.graph != nil {
		if follows, err := s.graph.Following(ctx, viewerID); err == nil {
			for _, authorID := range follows {
				profile.Follows[authorID] = true
			}
		} else {
			s.logger.Warn().
				Err(err).
				Str("viewer_id", viewerID).
				Msg("follow graph unavailable while priming profile")
		}
	}
	s.cache.PutProfile(viewerID, profile, s.cfg.Cache.ProfileTTL)
	return profile
}

// resolveConfig layers stored preferences and request overrides over the
// service defaults.
func (s *Service) resolveConfig(req Request) models.TimelineConfig {
	cfg := s.base

	if pref, ok := s.preference(req.ViewerID); ok {
		applyPreference(&cfg, pref)
	}

	if req.Algorithm != models.AlgorithmUnspecified {
		cfg.Algorithm = req.Algorithm
	}
	for src, w := range req.ABWeights {
		if w > 0 {
			cfg.ABWeights.Set(src, w)
		}
	}
	for src, c := range req.Caps {
		if c >= 0 {
			cfg.Caps.Set(src, c)
		}
	}
	if req.DiscoveryShare != nil {
		cfg.ApplyDiscoveryShare(*req.DiscoveryShare)
	}
	return cfg
}

// applyPreference overlays a viewer preference onto cfg. Only positive
// fields override; zero values keep the resolved default.
func applyPreference(cfg *models.TimelineConfig, pref models.TimelineConfig) {
	if pref.Algorithm != models.AlgorithmUnspecified {
		cfg.Algorithm = pref.Algorithm
	}
	if pref.MaxItems > 0 {
		cfg.MaxItems = pref.MaxItems
	}
	if pref.MaxAgeHours > 0 {
		cfg.MaxAgeHours = pref.MaxAgeHours
	}
	if pref.MinScoreThreshold > 0 {
		cfg.MinScoreThreshold = pref.MinScoreThreshold
	}
	if pref.Weights.Recency > 0 {
		cfg.Weights.Recency = pref.Weights.Recency
	}
	if pref.Weights.Engagement > 0 {
		cfg.Weights.Engagement = pref.Weights.Engagement
	}
	if pref.Weights.AuthorAffinity > 0 {
		cfg.Weights.AuthorAffinity = pref.Weights.AuthorAffinity
	}
	if pref.Weights.ContentQuality > 0 {
		cfg.Weights.ContentQuality = pref.Weights.ContentQuality
	}
	if pref.Weights.Diversity > 0 {
		cfg.Weights.Diversity = pref.Weights.Diversity
	}
	if pref.Ratios.Following > 0 {
		cfg.Ratios.Following = pref.Ratios.Following
	}
	if pref.Ratios.Recommended > 0 {
		cfg.Ratios.Recommended = pref.Ratios.Recommended
	}
	if pref.Ratios.Trending > 0 {
		cfg.Ratios.Trending = pref.Ratios.Trending
	}
	if pref.Ratios.Lists > 0 {
		cfg.Ratios.Lists = pref.Ratios.Lists
	}
	if pref.Caps.Following > 0 {
		cfg.Caps.Following = pref.Caps.Following
	}
	if pref.Caps.Recommended > 0 {
		cfg.Caps.Recommended = pref.Caps.Recommended
	}
	if pref.Caps.Trending > 0 {
		cfg.Caps.Trending = pref.Caps.Trending
	}
	if pref.Caps.Lists > 0 {
		cfg.Caps.Lists = pref.Caps.Lists
	}
}

// validateRequest rejects malformed reads.
func validateRequest(req Request) error {
	if req.ViewerID == "" {
		return fmt.Errorf("viewer_id is required: %w", ErrInvalidArgument)
	}
	if req.Limit < 0 {
		return fmt.Errorf("limit must be non-negative: %w", ErrInvalidArgument)
	}
	return nil
}
