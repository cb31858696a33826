// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/auth"
	"github.com/tomtom215/chronographus/internal/authz"
	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/filter"
	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/ranking"
	"github.com/tomtom215/chronographus/internal/sources"
	"github.com/tomtom215/chronographus/internal/store"
	"github.com/tomtom215/chronographus/internal/timeline"
)

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			DefaultPageSize:   20,
			MaxPageSize:       100,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
		Auth: config.AuthConfig{Mode: "header"},
		Timeline: config.TimelineConfig{
			Algorithm:            "hybrid",
			MaxItems:             50,
			MaxAgeHours:          24,
			MinScoreThreshold:    0.1,
			WeightRecency:        0.30,
			WeightEngagement:     0.25,
			WeightAuthorAffinity: 0.20,
			WeightContentQuality: 0.15,
			WeightDiversity:      0.10,
			RatioFollowing:       0.7,
			RatioRecommended:     0.2,
			RatioTrending:        0.1,
			AssemblyBudget:       2 * time.Second,
			CacheTTL:             5 * time.Minute,
			RefreshMinInterval:   30 * time.Second,
		},
		Cache: config.CacheConfig{
			ProfileTTL:  10 * time.Minute,
			LastReadTTL: 24 * time.Hour,
		},
		Sources: config.SourcesConfig{
			FetchLimit:              200,
			FollowSetTTL:            10 * time.Minute,
			RecommendedLookback:     24 * time.Hour,
			TrendingRefreshInterval: time.Hour,
			TrendingWindowHours:     24,
		},
	}
}

// fixture bundles the assembled HTTP surface with the seedable store
// behind it.
type fixture struct {
	router  http.Handler
	store   *store.MemoryStore
	service *timeline.Service
	cache   *cache.TieredCache
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil, nil)
}

// newFixtureWith builds the full chain over real collaborators.
// tweakCfg runs before any component is constructed; tweakDeps runs
// after the default dependency set is assembled.
func newFixtureWith(t *testing.T, tweakCfg func(*config.Config), tweakDeps func(*HandlerDeps)) *fixture {
	t.Helper()

	cfg := testConfig()
	if tweakCfg != nil {
		tweakCfg(cfg)
	}

	st := store.NewMemoryStore()
	tc, err := cache.NewTieredCache(cache.TieredConfig{})
	if err != nil {
		t.Fatalf("NewTieredCache failed: %v", err)
	}
	t.Cleanup(func() { _ = tc.Close() })

	svc, err := timeline.NewService(timeline.Deps{
		Config: cfg,
		Cache:  tc,
		Sources: []sources.Source{
			sources.NewFollowingSource(st, st, 0),
			sources.NewRecommendedSource(st, st, 0),
			sources.NewTrendingSource(st, 0, 0),
			sources.NewListsSource(st, st),
		},
		Filter: filter.NewContentFilter(),
		Ranker: ranking.NewEngine(),
		Notes:  st,
		Graph:  st,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	guard, err := authz.NewGuard(cfg.Auth)
	if err != nil {
		t.Fatalf("NewGuard failed: %v", err)
	}

	deps := HandlerDeps{
		Config:  cfg,
		Service: svc,
		Authn:   auth.NewHeaderAuthenticator(cfg.Auth.SharedTokenHash),
		Guard:   guard,
		Cache:   tc,
	}
	if tweakDeps != nil {
		tweakDeps(&deps)
	}

	handlers, err := NewHandlers(deps)
	if err != nil {
		t.Fatalf("NewHandlers failed: %v", err)
	}

	return &fixture{
		router:  NewRouter(cfg, handlers).Setup(),
		store:   st,
		service: svc,
		cache:   tc,
	}
}

// do sends one request through the router, asserting the caller via the
// gateway identity header when userID is non-empty.
func (f *fixture) do(t *testing.T, method, target, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, target, reader)
	if userID != "" {
		r.Header.Set("x-user-id", userID)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

// envelope mirrors Response with a raw data block for typed decoding.
type envelope struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	ErrorCode    string          `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
	Details      json.RawMessage `json:"details"`
	Meta         *Meta           `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return env
}

// decodeData asserts a success envelope and decodes its data block.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("Expected success envelope, got %s: %s", env.ErrorCode, env.ErrorMessage)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	return env
}

// seedNote stores a filter-passing note.
func seedNote(st *store.MemoryStore, id, author string, createdAt time.Time) {
	st.PutNote(models.Note{
		NoteID:      id,
		AuthorID:    author,
		TextContent: "morning thoughts about " + id,
		CreatedAt:   createdAt,
	})
}

func TestGetTimelineEnvelope(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", now.Add(-3*time.Hour))
	seedNote(f.store, "n2", "bob", now.Add(-2*time.Hour))
	seedNote(f.store, "n3", "bob", now.Add(-time.Hour))

	rec := f.do(t, http.MethodGet, "/api/v1/timeline?viewer_id=alice", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload timelinePayload
	env := decodeData(t, rec, &payload)

	if len(payload.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(payload.Items))
	}
	for _, item := range payload.Items {
		if item.Note.AuthorID != "bob" {
			t.Errorf("Expected only followed authors, got note by %q", item.Note.AuthorID)
		}
		if item.Signals != nil {
			t.Error("Expected signals elided without the opt-in parameter")
		}
	}
	if payload.Metadata.TimelineVersion != models.TimelineVersion {
		t.Errorf("Expected timeline version %q, got %q",
			models.TimelineVersion, payload.Metadata.TimelineVersion)
	}
	if env.Meta == nil || env.Meta.Pagination == nil {
		t.Fatal("Expected a pagination block in meta")
	}
	if env.Meta.Pagination.TotalCount != 3 {
		t.Errorf("Expected total_count 3, got %d", env.Meta.Pagination.TotalCount)
	}
	if env.Meta.Pagination.Limit != 20 {
		t.Errorf("Expected default page size 20, got %d", env.Meta.Pagination.Limit)
	}
	if env.Meta.Pagination.HasNext {
		t.Error("Expected has_next false for a single page")
	}
	if env.Meta.RequestID == "" {
		t.Error("Expected a request id in meta")
	}
}

func TestGetTimelineRankingSignalsOptIn(t *testing.T) {
	f := newFixture(t)
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline?viewer_id=alice&include_ranking_signals=true", "alice", nil)

	var payload timelinePayload
	decodeData(t, rec, &payload)
	if len(payload.Items) == 0 {
		t.Fatal("Expected at least one item")
	}
	if payload.Items[0].Signals == nil {
		t.Error("Expected a signal breakdown with include_ranking_signals=true")
	}
}

func TestGetTimelineRequiresViewerID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/timeline", "alice", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.ErrorCode != CodeInvalidArgument {
		t.Errorf("Expected INVALID_ARGUMENT envelope, got success=%v code=%q",
			env.Success, env.ErrorCode)
	}
}

func TestGetTimelineUnknownAlgorithm(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline?viewer_id=alice&algorithm=phrenology", "alice", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.ErrorCode != CodeInvalidArgument {
		t.Errorf("Expected error code INVALID_ARGUMENT, got %q", env.ErrorCode)
	}
}

func TestGetTimelineNegativeLimit(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline?viewer_id=alice&limit=-5", "alice", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTimelineLimitZero(t *testing.T) {
	f := newFixture(t)
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline?viewer_id=alice&limit=0", "alice", nil)

	var payload timelinePayload
	env := decodeData(t, rec, &payload)
	if len(payload.Items) != 0 {
		t.Fatalf("Expected no items for limit=0, got %d", len(payload.Items))
	}
	if env.Meta.Pagination.TotalCount != 1 {
		t.Errorf("Expected total_count 1, got %d", env.Meta.Pagination.TotalCount)
	}
	if !env.Meta.Pagination.HasNext {
		t.Error("Expected has_next set when items exist beyond the empty page")
	}
}

func TestGetTimelineCrossViewerDenied(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/timeline?viewer_id=alice", "mallory", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.ErrorCode != CodeUnauthorized {
		t.Errorf("Expected error code UNAUTHORIZED, got %q", env.ErrorCode)
	}
}

func TestGetTimelineAdminCrossViewer(t *testing.T) {
	f := newFixture(t)
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/timeline?viewer_id=alice", nil)
	r.Header.Set("x-user-id", "ops")
	r.Header.Set("x-admin", "true")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected admin cross-viewer read to pass, got %d: %s",
			rec.Code, rec.Body.String())
	}
}

func TestGetTimelineUnassertedCaller(t *testing.T) {
	f := newFixture(t)
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodGet, "/api/v1/timeline?viewer_id=alice", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected unasserted gateway caller to pass, got %d", rec.Code)
	}
}

func TestGetTimelineLimitClamped(t *testing.T) {
	f := newFixtureWith(t, func(cfg *config.Config) {
		cfg.API.MaxPageSize = 5
	}, nil)

	now := time.Now().UTC()
	authors := []string{"bob", "carol", "dan"}
	for _, author := range authors {
		f.store.Follow("alice", author)
	}
	for i := 0; i < 9; i++ {
		seedNote(f.store, fmt.Sprintf("n%d", i), authors[i%3],
			now.Add(-time.Duration(i+1)*time.Minute))
	}

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline?viewer_id=alice&limit=50", "alice", nil)

	var payload timelinePayload
	env := decodeData(t, rec, &payload)
	if len(payload.Items) != 5 {
		t.Fatalf("Expected limit clamped to 5 items, got %d", len(payload.Items))
	}
	if env.Meta.Pagination.Limit != 5 {
		t.Errorf("Expected reported limit 5, got %d", env.Meta.Pagination.Limit)
	}
	if !env.Meta.Pagination.HasNext {
		t.Error("Expected has_next true past the first page")
	}
}

func TestForYouTimelineForcesHybrid(t *testing.T) {
	f := newFixture(t)
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline/foryou?viewer_id=alice&algorithm=chronological", "alice", nil)

	var payload timelinePayload
	decodeData(t, rec, &payload)
	if payload.Metadata.AlgorithmUsed != models.AlgorithmHybrid.String() {
		t.Errorf("Expected algorithm hybrid on the discovery surface, got %q",
			payload.Metadata.AlgorithmUsed)
	}
}

func TestFollowingTimelineExcludesUnfollowed(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.store.Follow("alice", "bob")
	seedNote(f.store, "old", "bob", now.Add(-2*time.Hour))
	seedNote(f.store, "new", "bob", now.Add(-time.Hour))
	seedNote(f.store, "stranger", "carol", now.Add(-30*time.Minute))

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline/following?viewer_id=alice", "alice", nil)

	var payload timelinePayload
	decodeData(t, rec, &payload)
	if len(payload.Items) != 2 {
		t.Fatalf("Expected 2 followed-author items, got %d", len(payload.Items))
	}
	if payload.Items[0].Note.NoteID != "new" || payload.Items[1].Note.NoteID != "old" {
		t.Errorf("Expected newest-first order [new old], got [%s %s]",
			payload.Items[0].Note.NoteID, payload.Items[1].Note.NoteID)
	}
	if payload.Metadata.AlgorithmUsed != models.AlgorithmChronological.String() {
		t.Errorf("Expected chronological algorithm, got %q", payload.Metadata.AlgorithmUsed)
	}
}

func TestGetUserTimeline(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	seedNote(f.store, "b1", "bob", now.Add(-2*time.Hour))
	seedNote(f.store, "b2", "bob", now.Add(-time.Hour))
	seedNote(f.store, "c1", "carol", now.Add(-time.Hour))

	rec := f.do(t, http.MethodGet,
		"/api/v1/timeline/user/bob?viewer_id=alice", "alice", nil)

	var payload timelinePayload
	decodeData(t, rec, &payload)
	if len(payload.Items) != 2 {
		t.Fatalf("Expected 2 items from the target author, got %d", len(payload.Items))
	}
	if payload.Items[0].Note.NoteID != "b2" {
		t.Errorf("Expected newest note first, got %q", payload.Items[0].Note.NoteID)
	}
	for _, item := range payload.Items {
		if item.Note.AuthorID != "bob" {
			t.Errorf("Expected only bob's notes, got one by %q", item.Note.AuthorID)
		}
	}
}

func TestRefreshTimelineThrottled(t *testing.T) {
	f := newFixture(t)
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	body := map[string]interface{}{"viewer_id": "alice"}
	rec := f.do(t, http.MethodPost, "/api/v1/timeline/refresh", "alice", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected first refresh to pass, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/api/v1/timeline/refresh", "alice", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected immediate second refresh throttled, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.ErrorCode != CodeRateLimited {
		t.Errorf("Expected error code RATE_LIMITED, got %q", env.ErrorCode)
	}
}

func TestRefreshTimelineValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/timeline/refresh", "alice",
		map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.ErrorCode != CodeInvalidArgument {
		t.Errorf("Expected error code INVALID_ARGUMENT, got %q", env.ErrorCode)
	}
	if len(env.Details) == 0 {
		t.Error("Expected per-field validation details")
	}
}

func TestMarkTimelineReadReceipt(t *testing.T) {
	f := newFixture(t)
	readUntil := time.Now().UTC().Truncate(time.Second)

	rec := f.do(t, http.MethodPost, "/api/v1/timeline/read", "alice",
		map[string]interface{}{"viewer_id": "alice", "read_until": readUntil})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var receipt readReceipt
	decodeData(t, rec, &receipt)
	if receipt.ViewerID != "alice" {
		t.Errorf("Expected receipt for alice, got %q", receipt.ViewerID)
	}
	if !receipt.ReadUntil.Equal(readUntil) {
		t.Errorf("Expected read_until %v echoed, got %v", readUntil, receipt.ReadUntil)
	}
}

func TestMarkTimelineReadMalformedBody(t *testing.T) {
	f := newFixture(t)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/timeline/read",
		bytes.NewReader([]byte("{not json")))
	r.Header.Set("x-user-id", "alice")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.ErrorCode != CodeInvalidArgument {
		t.Errorf("Expected error code INVALID_ARGUMENT, got %q", env.ErrorCode)
	}
}

func TestRecordEngagement(t *testing.T) {
	f := newFixture(t)
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodPost, "/api/v1/engagement", "alice",
		map[string]interface{}{"viewer_id": "alice", "note_id": "n1", "action": "like"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var receipt engagementReceipt
	decodeData(t, rec, &receipt)
	if receipt.NoteID != "n1" || receipt.Action != "like" {
		t.Errorf("Expected receipt for n1/like, got %s/%s", receipt.NoteID, receipt.Action)
	}
}

func TestRecordEngagementUnknownNote(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/engagement", "alice",
		map[string]interface{}{"viewer_id": "alice", "note_id": "ghost", "action": "like"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestRecordEngagementInvalidAction(t *testing.T) {
	f := newFixture(t)
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodPost, "/api/v1/engagement", "alice",
		map[string]interface{}{"viewer_id": "alice", "note_id": "n1", "action": "bookmark"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.ErrorCode != CodeInvalidArgument {
		t.Errorf("Expected error code INVALID_ARGUMENT, got %q", env.ErrorCode)
	}
	if len(env.Details) == 0 {
		t.Error("Expected validation details naming the action field")
	}
}

func TestRecordEngagementCrossViewerDenied(t *testing.T) {
	f := newFixture(t)
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodPost, "/api/v1/engagement", "mallory",
		map[string]interface{}{"viewer_id": "alice", "note_id": "n1", "action": "like"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", rec.Code)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/preferences", "alice",
		map[string]interface{}{
			"viewer_id": "alice",
			"config":    map[string]interface{}{"max_items": 10},
			"show_nsfw": true,
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/v1/preferences?viewer_id=alice", "alice", nil)
	var prefs timeline.Preferences
	decodeData(t, rec, &prefs)
	if prefs.Config.MaxItems != 10 {
		t.Errorf("Expected stored max_items 10, got %d", prefs.Config.MaxItems)
	}
	if !prefs.ShowNSFW {
		t.Error("Expected show_nsfw true after update")
	}
}

func TestPreferencesRejectsOutOfRange(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/preferences", "alice",
		map[string]interface{}{
			"viewer_id": "alice",
			"config":    map[string]interface{}{"max_items": 100000},
		})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestMuteLifecycle(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	f.store.Follow("alice", "bob")
	f.store.Follow("alice", "carol")
	seedNote(f.store, "b1", "bob", now.Add(-time.Hour))
	seedNote(f.store, "c1", "carol", now.Add(-time.Hour))

	rec := f.do(t, http.MethodPost, "/api/v1/preferences/mutes", "alice",
		map[string]interface{}{"viewer_id": "alice", "kind": "user", "value": "bob"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var prefs timeline.Preferences
	decodeData(t, rec, &prefs)
	if len(prefs.MutedUsers) != 1 || prefs.MutedUsers[0] != "bob" {
		t.Fatalf("Expected muted_users [bob], got %v", prefs.MutedUsers)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/timeline?viewer_id=alice", "alice", nil)
	var payload timelinePayload
	decodeData(t, rec, &payload)
	for _, item := range payload.Items {
		if item.Note.AuthorID == "bob" {
			t.Errorf("Expected muted author excluded, got note %q", item.Note.NoteID)
		}
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/preferences/mutes", "alice",
		map[string]interface{}{"viewer_id": "alice", "kind": "user", "value": "bob"})
	decodeData(t, rec, &prefs)
	if len(prefs.MutedUsers) != 0 {
		t.Errorf("Expected muted_users empty after removal, got %v", prefs.MutedUsers)
	}
}

func TestMuteUnknownKind(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/preferences/mutes", "alice",
		map[string]interface{}{"viewer_id": "alice", "kind": "hashtag", "value": "golang"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var payload healthPayload
	decodeData(t, rec, &payload)
	if payload.Status != "ok" {
		t.Errorf("Expected status ok, got %q", payload.Status)
	}
	if payload.TimelineVersion != models.TimelineVersion {
		t.Errorf("Expected timeline version %q, got %q",
			models.TimelineVersion, payload.TimelineVersion)
	}
	if _, ok := payload.Components["timeline"]; !ok {
		t.Error("Expected a timeline component block")
	}
	if _, ok := payload.Components["cache"]; !ok {
		t.Error("Expected a cache component block")
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/nonsense", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.ErrorCode != CodeNotFound {
		t.Errorf("Expected error code NOT_FOUND, got %q", env.ErrorCode)
	}
}

func TestMethodNotAllowedEnvelope(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/api/v1/timeline", "alice", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected status 405, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.ErrorCode != CodeInvalidArgument {
		t.Errorf("Expected error code INVALID_ARGUMENT, got %q", env.ErrorCode)
	}
}

func TestTimelineRateLimited(t *testing.T) {
	f := newFixtureWith(t, nil, func(deps *HandlerDeps) {
		deps.Limiter = auth.NewRateLimiter(config.APIConfig{
			RateLimitRPM:   60,
			RateLimitBurst: 1,
		})
	})
	f.store.Follow("alice", "bob")
	seedNote(f.store, "n1", "bob", time.Now().UTC().Add(-time.Hour))

	rec := f.do(t, http.MethodGet, "/api/v1/timeline?viewer_id=alice", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected first request admitted, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/timeline?viewer_id=alice", "alice", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected second request limited, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.ErrorCode != CodeRateLimited {
		t.Errorf("Expected error code RATE_LIMITED, got %q", env.ErrorCode)
	}
}
