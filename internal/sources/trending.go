// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package sources

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/models"
)

const (
	// defaultTrendingWindow is the engagement window providers scan.
	defaultTrendingWindow = 24 * time.Hour

	// defaultTrendingRefresh is how often the provider pools rebuild.
	defaultTrendingRefresh = time.Hour

	// trendScanLimit bounds the store scan per provider refresh.
	trendScanLimit = 1000

	// trendPoolSize bounds each provider's snapshot pool.
	trendPoolSize = 100

	// trendLeaderboardSize is how many hashtags/topics count as trending.
	trendLeaderboardSize = 10
)

// TrendProvider produces one trending dimension's candidate pool.
// Refresh recomputes the pool from the note store; implementations must
// return a deterministic ordering for identical input.
type TrendProvider interface {
	Name() string
	Refresh(ctx context.Context) ([]models.Note, error)
}

// TrendingSource is the viewer-agnostic composite of three trending
// providers. Hashtag-trending notes take floor(limit*0.5) of a fetch,
// topic-trending floor(limit*0.3), videos the remainder; the merge is
// sorted by likes+reshares+replies descending and truncated.
//
// Provider pools are snapshots: Fetch never touches the store, and a
// failed refresh keeps the previous snapshot.
type TrendingSource struct {
	hashtags TrendProvider
	topics   TrendProvider
	videos   TrendProvider

	refreshInterval time.Duration

	mu           sync.RWMutex
	hashtagPool  []models.Note
	topicPool    []models.Note
	videoPool    []models.Note
	lastRefresh  time.Time
	refreshCount int64

	logger zerolog.Logger
}

// NewTrendingSource creates the composite trending source with the
// standard hashtag/topic/video provider stack. Non-positive window or
// interval values fall back to 24h and 1h.
func NewTrendingSource(notes NoteReader, window, refreshInterval time.Duration) *TrendingSource {
	if window <= 0 {
		window = defaultTrendingWindow
	}
	if refreshInterval <= 0 {
		refreshInterval = defaultTrendingRefresh
	}
	return &TrendingSource{
		hashtags:        NewHashtagTrendProvider(notes, window),
		topics:          NewTopicTrendProvider(notes, window),
		videos:          NewVideoTrendProvider(notes, window),
		refreshInterval: refreshInterval,
		logger:          logging.WithComponent("sources.trending"),
	}
}

// Kind implements Source.
func (s *TrendingSource) Kind() models.Source {
	return models.SourceTrending
}

// Fetch implements Source. The viewer id is ignored; trending is shared
// across viewers and downstream mute filtering personalizes it.
func (s *TrendingSource) Fetch(ctx context.Context, _ string, _ models.TimelineConfig, since time.Time, maxCount int) ([]models.Note, error) {
	if maxCount <= 0 {
		return nil, nil
	}
	s.maybeRefresh(ctx)

	hashtagLimit, topicLimit, videoLimit := trendingSplit(maxCount)

	s.mu.RLock()
	merged := make([]models.Note, 0, maxCount)
	seen := make(map[string]bool, maxCount)
	merged = takeFromPool(merged, seen, s.hashtagPool, since, hashtagLimit)
	merged = takeFromPool(merged, seen, s.topicPool, since, topicLimit)
	merged = takeFromPool(merged, seen, s.videoPool, since, videoLimit)
	s.mu.RUnlock()

	sort.Slice(merged, func(i, j int) bool {
		si := merged[i].Likes + merged[i].Reshares + merged[i].Replies
		sj := merged[j].Likes + merged[j].Reshares + merged[j].Replies
		if si != sj {
			return si > sj
		}
		return merged[i].NoteID < merged[j].NoteID
	})

	return truncate(merged, maxCount), nil
}

// Refresh rebuilds all provider pools. A provider failure keeps its
// previous pool and does not fail the refresh as a whole.
func (s *TrendingSource) Refresh(ctx context.Context) {
	hashtagPool := s.refreshProvider(ctx, s.hashtags)
	topicPool := s.refreshProvider(ctx, s.topics)
	videoPool := s.refreshProvider(ctx, s.videos)

	s.mu.Lock()
	defer s.mu.Unlock()
	if hashtagPool != nil {
		s.hashtagPool = hashtagPool
	}
	if topicPool != nil {
		s.topicPool = topicPool
	}
	if videoPool != nil {
		s.videoPool = videoPool
	}
	s.lastRefresh = time.Now()
	s.refreshCount++
}

// refreshProvider returns the new pool or nil when the provider failed.
func (s *TrendingSource) refreshProvider(ctx context.Context, p TrendProvider) []models.Note {
	pool, err := p.Refresh(ctx)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("provider", p.Name()).
			Msg("trending provider refresh failed, keeping previous snapshot")
		return nil
	}
	if pool == nil {
		pool = []models.Note{}
	}
	return pool
}

// maybeRefresh populates the pools inline when the background refresher
// has not run yet or the snapshot is stale.
func (s *TrendingSource) maybeRefresh(ctx context.Context) {
	s.mu.RLock()
	stale := s.lastRefresh.IsZero() || time.Since(s.lastRefresh) > s.refreshInterval
	s.mu.RUnlock()
	if stale {
		s.Refresh(ctx)
	}
}

// trendingSplit apportions a fetch limit across the three providers.
func trendingSplit(limit int) (hashtags, topics, videos int) {
	hashtags = limit / 2
	topics = limit * 3 / 10
	videos = limit - hashtags - topics
	return hashtags, topics, videos
}

// takeFromPool appends up to n unseen pool notes created after since.
func takeFromPool(dst []models.Note, seen map[string]bool, pool []models.Note, since time.Time, n int) []models.Note {
	taken := 0
	for _, note := range pool {
		if taken >= n {
			break
		}
		if seen[note.NoteID] || !note.CreatedAt.After(since) {
			continue
		}
		seen[note.NoteID] = true
		dst = append(dst, note)
		taken++
	}
	return dst
}

// RefreshService runs the trending refresh on an interval as a suture
// service. The first refresh happens immediately on start so the pools
// are warm before the first request needs them.
type RefreshService struct {
	source   *TrendingSource
	interval time.Duration
	logger   zerolog.Logger
}

// NewRefreshService wraps a trending source in a supervised refresher.
func NewRefreshService(source *TrendingSource, interval time.Duration) *RefreshService {
	if interval <= 0 {
		interval = defaultTrendingRefresh
	}
	return &RefreshService{
		source:   source,
		interval: interval,
		logger:   logging.WithComponent("sources.trending.refresher"),
	}
}

// Serve implements suture.Service.
func (r *RefreshService) Serve(ctx context.Context) error {
	r.source.Refresh(ctx)
	r.logger.Debug().Dur("interval", r.interval).Msg("trending pools refreshed")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.source.Refresh(ctx)
			r.logger.Debug().Msg("trending pools refreshed")
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (r *RefreshService) String() string {
	return "trending-refresher"
}

// HashtagTrendProvider surfaces notes that carry one of the currently
// hottest hashtags, where heat is total likes+reshares+replies across the
// engagement window.
type HashtagTrendProvider struct {
	notes  NoteReader
	window time.Duration
}

// NewHashtagTrendProvider creates the hashtag dimension provider.
func NewHashtagTrendProvider(notes NoteReader, window time.Duration) *HashtagTrendProvider {
	return &HashtagTrendProvider{notes: notes, window: window}
}

// Name implements TrendProvider.
func (p *HashtagTrendProvider) Name() string { return "hashtags" }

// Refresh implements TrendProvider.
func (p *HashtagTrendProvider) Refresh(ctx context.Context) ([]models.Note, error) {
	recent, err := p.notes.RecentNotes(ctx, time.Now().Add(-p.window), trendScanLimit)
	if err != nil {
		return nil, err
	}

	heat := make(map[string]float64)
	for i := range recent {
		engagement := float64(recent[i].Likes + recent[i].Reshares + recent[i].Replies)
		for _, tag := range recent[i].Hashtags {
			heat[strings.ToLower(tag)] += engagement
		}
	}

	leaders := topKeys(heat, trendLeaderboardSize)
	if len(leaders) == 0 {
		return []models.Note{}, nil
	}

	pool := make([]models.Note, 0, trendPoolSize)
	for i := range recent {
		if noteCarriesTag(&recent[i], leaders) {
			pool = append(pool, recent[i])
		}
	}
	return finishPool(pool), nil
}

// TopicTrendProvider surfaces notes containing hot plain-text topics:
// lowercase word tokens at least four characters long, excluding
// hashtags, mentions and links, weighted by note engagement.
type TopicTrendProvider struct {
	notes  NoteReader
	window time.Duration
}

// NewTopicTrendProvider creates the topic dimension provider.
func NewTopicTrendProvider(notes NoteReader, window time.Duration) *TopicTrendProvider {
	return &TopicTrendProvider{notes: notes, window: window}
}

// Name implements TrendProvider.
func (p *TopicTrendProvider) Name() string { return "topics" }

// Refresh implements TrendProvider.
func (p *TopicTrendProvider) Refresh(ctx context.Context) ([]models.Note, error) {
	recent, err := p.notes.RecentNotes(ctx, time.Now().Add(-p.window), trendScanLimit)
	if err != nil {
		return nil, err
	}

	heat := make(map[string]float64)
	tokensByNote := make([][]string, len(recent))
	for i := range recent {
		tokens := topicTokens(recent[i].TextContent)
		tokensByNote[i] = tokens
		engagement := float64(recent[i].Likes + recent[i].Reshares + recent[i].Replies)
		for _, token := range tokens {
			heat[token] += engagement
		}
	}

	leaders := topKeys(heat, trendLeaderboardSize)
	if len(leaders) == 0 {
		return []models.Note{}, nil
	}

	pool := make([]models.Note, 0, trendPoolSize)
	for i := range recent {
		for _, token := range tokensByNote[i] {
			if leaders[token] {
				pool = append(pool, recent[i])
				break
			}
		}
	}
	return finishPool(pool), nil
}

// VideoTrendProvider surfaces media notes ranked by view count.
type VideoTrendProvider struct {
	notes  NoteReader
	window time.Duration
}

// NewVideoTrendProvider creates the video dimension provider.
func NewVideoTrendProvider(notes NoteReader, window time.Duration) *VideoTrendProvider {
	return &VideoTrendProvider{notes: notes, window: window}
}

// Name implements TrendProvider.
func (p *VideoTrendProvider) Name() string { return "videos" }

// Refresh implements TrendProvider.
func (p *VideoTrendProvider) Refresh(ctx context.Context) ([]models.Note, error) {
	recent, err := p.notes.RecentNotes(ctx, time.Now().Add(-p.window), trendScanLimit)
	if err != nil {
		return nil, err
	}

	pool := make([]models.Note, 0, trendPoolSize)
	for i := range recent {
		if recent[i].HasMedia {
			pool = append(pool, recent[i])
		}
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Views != pool[j].Views {
			return pool[i].Views > pool[j].Views
		}
		return pool[i].NoteID < pool[j].NoteID
	})
	return truncate(pool, trendPoolSize), nil
}

// topKeys returns the k highest-weighted keys as a membership set.
// Keys are pushed in sorted order so equal weights resolve identically
// across refreshes.
func topKeys(heat map[string]float64, k int) map[string]bool {
	if len(heat) == 0 {
		return nil
	}
	keys := make([]string, 0, len(heat))
	for key := range heat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	board := cache.NewTopK[string](k)
	for _, key := range keys {
		board.Push(key, key, heat[key])
	}

	leaders := make(map[string]bool, k)
	for _, entry := range board.Descending() {
		leaders[entry.Key] = true
	}
	return leaders
}

// finishPool orders a provider pool by engagement descending and caps it.
func finishPool(pool []models.Note) []models.Note {
	sort.Slice(pool, func(i, j int) bool {
		si := pool[i].Likes + pool[i].Reshares + pool[i].Replies
		sj := pool[j].Likes + pool[j].Reshares + pool[j].Replies
		if si != sj {
			return si > sj
		}
		return pool[i].NoteID < pool[j].NoteID
	})
	return truncate(pool, trendPoolSize)
}

func noteCarriesTag(note *models.Note, leaders map[string]bool) bool {
	for _, tag := range note.Hashtags {
		if leaders[strings.ToLower(tag)] {
			return true
		}
	}
	return false
}

// topicTokens extracts candidate topic words from note text.
func topicTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if strings.HasPrefix(field, "#") || strings.HasPrefix(field, "@") ||
			strings.HasPrefix(field, "http://") || strings.HasPrefix(field, "https://") {
			continue
		}
		token := strings.Trim(field, ".,!?:;\"'()[]")
		if len(token) >= 4 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
