// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package ranking

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func midLengthText() string {
	return strings.Repeat("x", 100)
}

func TestAuthorAffinity(t *testing.T) {
	e := NewEngine()
	profile := models.NewViewerProfile("viewer-1")
	profile.Follows["followed"] = true

	if got := e.authorAffinity("viewer-1", "followed", profile); !almostEqual(got, 0.8) {
		t.Errorf("followed author affinity = %f, want 0.8", got)
	}
	if got := e.authorAffinity("viewer-1", "stranger", profile); !almostEqual(got, 0.1) {
		t.Errorf("unfollowed author affinity = %f, want 0.1", got)
	}

	// Historical affinity beats the follow base when higher.
	profile.AuthorAffinity["followed"] = 0.95
	if got := e.authorAffinity("viewer-1", "followed", profile); !almostEqual(got, 0.95) {
		t.Errorf("historical affinity = %f, want 0.95", got)
	}

	// Global reputation contributes at 20% weight.
	e.mu.Lock()
	e.authorScores["reputable"] = 1.0
	e.mu.Unlock()
	if got := e.authorAffinity("viewer-1", "reputable", profile); !almostEqual(got, 0.2) {
		t.Errorf("global reputation affinity = %f, want 0.2", got)
	}

	// Never exceeds 1.
	profile.AuthorAffinity["capped"] = 5.0
	if got := e.authorAffinity("viewer-1", "capped", profile); got > 1.0 {
		t.Errorf("affinity = %f, want <= 1", got)
	}
}

func TestAuthorAffinityEngineTable(t *testing.T) {
	e := NewEngine()
	profile := models.NewViewerProfile("viewer-1")

	e.mu.Lock()
	e.viewerAffinity["viewer-1"] = map[string]float64{"author-1": 0.6}
	e.mu.Unlock()

	if got := e.authorAffinity("viewer-1", "author-1", profile); !almostEqual(got, 0.6) {
		t.Errorf("engine-table affinity = %f, want 0.6", got)
	}
}

func TestContentQuality(t *testing.T) {
	tests := []struct {
		name string
		note models.Note
		want float64
	}{
		{
			name: "plain medium text",
			note: models.Note{TextContent: midLengthText()},
			want: 0.6,
		},
		{
			name: "very short text penalized",
			note: models.Note{TextContent: "hi"},
			want: 0.3,
		},
		{
			name: "media boost",
			note: models.Note{TextContent: midLengthText(), HasMedia: true},
			want: 0.75,
		},
		{
			name: "link penalty",
			note: models.Note{TextContent: "read this https://example.com/article " + strings.Repeat("y", 60)},
			want: 0.55,
		},
		{
			name: "reasonable hashtags boost",
			note: models.Note{TextContent: midLengthText(), Hashtags: []string{"go", "dev", "news"}},
			want: 0.68,
		},
		{
			name: "hashtag spam penalty",
			note: models.Note{TextContent: midLengthText(), Hashtags: []string{
				"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10", "t11",
			}},
			want: 0.5,
		},
		{
			name: "mention boost",
			note: models.Note{TextContent: midLengthText(), Mentions: []string{"alice", "bob"}},
			want: 0.72,
		},
		{
			name: "engagement rate capped at 0.3",
			note: models.Note{TextContent: midLengthText(), Views: 100, Likes: 1000},
			want: 0.9,
		},
		{
			name: "clamped at 1",
			note: models.Note{
				TextContent: midLengthText(),
				HasMedia:    true,
				Hashtags:    []string{"go"},
				Mentions:    []string{"alice"},
				Views:       10,
				Likes:       100,
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentQuality(&tt.note); !almostEqual(got, tt.want) {
				t.Errorf("contentQuality() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEngagementVelocity(t *testing.T) {
	now := time.Now().UTC()

	fresh := models.Note{CreatedAt: now, Likes: 100}
	if got := engagementVelocity(&fresh, now); got != 0 {
		t.Errorf("zero-age velocity = %f, want 0", got)
	}

	future := models.Note{CreatedAt: now.Add(time.Hour), Likes: 100}
	if got := engagementVelocity(&future, now); got != 0 {
		t.Errorf("future-note velocity = %f, want 0", got)
	}

	// 5 engagements in one hour: 5/hr against a ceiling of 10/hr.
	moderate := models.Note{CreatedAt: now.Add(-time.Hour), Likes: 3, Replies: 2}
	if got := engagementVelocity(&moderate, now); !almostEqual(got, 0.5) {
		t.Errorf("moderate velocity = %f, want 0.5", got)
	}

	viral := models.Note{CreatedAt: now.Add(-time.Hour), Likes: 10000}
	if got := engagementVelocity(&viral, now); !almostEqual(got, 1.0) {
		t.Errorf("viral velocity = %f, want 1.0 (capped)", got)
	}
}

func TestRecency(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"brand new", 0, 1.0},
		{"one half-life", 6 * time.Hour, 0.5},
		{"two half-lives", 12 * time.Hour, 0.25},
		{"future clamps to new", -time.Hour, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := models.Note{CreatedAt: now.Add(-tt.age)}
			got := recency(&note, now)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("recency(age=%v) = %f, want %f", tt.age, got, tt.want)
			}
		})
	}
}

func TestPersonalization(t *testing.T) {
	e := NewEngine()
	profile := models.NewViewerProfile("viewer-1")

	activeHour := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	quietHour := time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC)

	active := models.Note{CreatedAt: activeHour, TextContent: "plain"}
	if got := e.personalization("viewer-1", &active, profile); !almostEqual(got, 0.1) {
		t.Errorf("active-hour personalization = %f, want 0.1", got)
	}

	quiet := models.Note{CreatedAt: quietHour, TextContent: "plain"}
	if got := e.personalization("viewer-1", &quiet, profile); got != 0 {
		t.Errorf("quiet-hour personalization = %f, want 0", got)
	}

	profile.EngagedHashtags["golang"] = true
	profile.EngagedHashtags["music"] = true
	tagged := models.Note{CreatedAt: quietHour, TextContent: "notes", Hashtags: []string{"GoLang", "music", "other"}}
	if got := e.personalization("viewer-1", &tagged, profile); !almostEqual(got, 0.1) {
		t.Errorf("two engaged tags = %f, want 0.1", got)
	}

	// Engine-side engaged tags count too.
	e.mu.Lock()
	e.engagedTags["viewer-1"] = map[string]bool{"other": true}
	e.mu.Unlock()
	if got := e.personalization("viewer-1", &tagged, profile); !almostEqual(got, 0.15) {
		t.Errorf("engine engaged tag added = %f, want 0.15", got)
	}
}

func TestPersonalizationCapped(t *testing.T) {
	e := NewEngine()
	profile := models.NewViewerProfile("viewer-1")

	tags := make([]string, 25)
	for i := range tags {
		tags[i] = "tag" + string(rune('a'+i))
		profile.EngagedHashtags[tags[i]] = true
	}
	note := models.Note{
		CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Hashtags:  tags,
	}
	if got := e.personalization("viewer-1", &note, profile); !almostEqual(got, 1.0) {
		t.Errorf("personalization = %f, want capped at 1.0", got)
	}
}

func TestWeightedSum(t *testing.T) {
	signals := models.RankingSignals{
		AuthorAffinity:     0.8,
		ContentQuality:     0.6,
		EngagementVelocity: 0.4,
		Recency:            1.0,
		Personalization:    0.2,
	}
	weights := models.DefaultTimelineConfig().Weights

	want := 0.8*0.20 + 0.6*0.15 + 0.4*0.25 + 1.0*0.30 + 0.2*0.10
	if got := weightedSum(signals, weights); !almostEqual(got, want) {
		t.Errorf("weightedSum() = %f, want %f", got, want)
	}
}

func TestNoteHashtagsLowercased(t *testing.T) {
	withField := models.Note{TextContent: "ignored #skipped", Hashtags: []string{"Go", "DEV"}}
	got := noteHashtags(&withField)
	if len(got) != 2 || got[0] != "go" || got[1] != "dev" {
		t.Errorf("noteHashtags() = %v, want [go dev]", got)
	}

	fromText := models.Note{TextContent: "shipping #GoLang today"}
	got = noteHashtags(&fromText)
	if len(got) != 1 || got[0] != "golang" {
		t.Errorf("noteHashtags() from text = %v, want [golang]", got)
	}
}
