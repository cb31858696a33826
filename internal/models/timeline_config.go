// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Algorithm selects the timeline assembly strategy.
type Algorithm int

const (
	AlgorithmUnspecified Algorithm = iota
	// AlgorithmChronological orders purely by creation time; ranking signals
	// and shaping passes are skipped.
	AlgorithmChronological
	// AlgorithmHybrid blends the five ranking signals and applies the
	// shaping passes, including the freshness micro-boost.
	AlgorithmHybrid
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmChronological:
		return "chronological"
	case AlgorithmHybrid:
		return "hybrid"
	default:
		return "unspecified"
	}
}

// ParseAlgorithm resolves an algorithm name. Empty input maps to
// AlgorithmUnspecified so callers can distinguish "absent" from invalid.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "":
		return AlgorithmUnspecified, nil
	case "chronological":
		return AlgorithmChronological, nil
	case "hybrid":
		return AlgorithmHybrid, nil
	default:
		return AlgorithmUnspecified, fmt.Errorf("unknown algorithm %q", s)
	}
}

// MarshalJSON encodes the algorithm as its lowercase name.
func (a Algorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a lowercase algorithm name.
func (a *Algorithm) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseAlgorithm(name)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// SignalWeights scales the contribution of each ranking signal to the final
// score. Diversity acts as a multiplier on the diversity shaping pass rather
// than as a scoring-time weight; the personalization signal takes the
// remaining weight slot.
type SignalWeights struct {
	Recency        float64 `json:"recency"`
	Engagement     float64 `json:"engagement"`
	AuthorAffinity float64 `json:"author_affinity"`
	ContentQuality float64 `json:"content_quality"`
	Diversity      float64 `json:"diversity"`
}

// Sum returns the total of all weight components.
func (w SignalWeights) Sum() float64 {
	return w.Recency + w.Engagement + w.AuthorAffinity + w.ContentQuality + w.Diversity
}

// Normalize rescales the weights to sum to 1. A zero sum leaves the weights
// untouched.
func (w *SignalWeights) Normalize() {
	sum := w.Sum()
	if sum <= 0 {
		return
	}
	w.Recency /= sum
	w.Engagement /= sum
	w.AuthorAffinity /= sum
	w.ContentQuality /= sum
	w.Diversity /= sum
}

// ToMap exposes the weights for response metadata.
func (w SignalWeights) ToMap() map[string]float64 {
	return map[string]float64{
		"recency":         w.Recency,
		"engagement":      w.Engagement,
		"author_affinity": w.AuthorAffinity,
		"content_quality": w.ContentQuality,
		"diversity":       w.Diversity,
	}
}

// SourceRatios splits the candidate budget across sources. Ratios are
// expected to sum to 1; the per-source quota is floor(maxItems*ratio*ab).
type SourceRatios struct {
	Following   float64 `json:"following"`
	Recommended float64 `json:"recommended"`
	Trending    float64 `json:"trending"`
	Lists       float64 `json:"lists"`
}

// For returns the ratio for one source.
func (r SourceRatios) For(s Source) float64 {
	switch s {
	case SourceFollowing:
		return r.Following
	case SourceRecommended:
		return r.Recommended
	case SourceTrending:
		return r.Trending
	case SourceLists:
		return r.Lists
	default:
		return 0
	}
}

// Sum returns the total of all ratios.
func (r SourceRatios) Sum() float64 {
	return r.Following + r.Recommended + r.Trending + r.Lists
}

// SourceCaps bounds how many items each source may contribute to one
// assembled timeline. A cap of zero or below means "no explicit cap" and
// falls back to the overall item limit.
type SourceCaps struct {
	Following   int `json:"following"`
	Recommended int `json:"recommended"`
	Trending    int `json:"trending"`
	Lists       int `json:"lists"`
}

// For returns the raw cap for one source.
func (c SourceCaps) For(s Source) int {
	switch s {
	case SourceFollowing:
		return c.Following
	case SourceRecommended:
		return c.Recommended
	case SourceTrending:
		return c.Trending
	case SourceLists:
		return c.Lists
	default:
		return 0
	}
}

// Set assigns the cap for one source.
func (c *SourceCaps) Set(s Source, n int) {
	switch s {
	case SourceFollowing:
		c.Following = n
	case SourceRecommended:
		c.Recommended = n
	case SourceTrending:
		c.Trending = n
	case SourceLists:
		c.Lists = n
	}
}

// Effective resolves the enforced cap for one source given the overall
// item budget.
func (c SourceCaps) Effective(s Source, maxItems int) int {
	n := c.For(s)
	if n <= 0 || n > maxItems {
		return maxItems
	}
	return n
}

// ABWeights multiplies per-source quotas for experiment overrides. The
// neutral weight is 1.
type ABWeights struct {
	Following   float64 `json:"following"`
	Recommended float64 `json:"recommended"`
	Trending    float64 `json:"trending"`
	Lists       float64 `json:"lists"`
}

// NeutralABWeights returns multipliers of 1 for every source.
func NeutralABWeights() ABWeights {
	return ABWeights{Following: 1, Recommended: 1, Trending: 1, Lists: 1}
}

// For returns the multiplier for one source, treating unset (zero or
// negative) values as neutral.
func (a ABWeights) For(s Source) float64 {
	var w float64
	switch s {
	case SourceFollowing:
		w = a.Following
	case SourceRecommended:
		w = a.Recommended
	case SourceTrending:
		w = a.Trending
	case SourceLists:
		w = a.Lists
	}
	if w <= 0 {
		return 1
	}
	return w
}

// Set assigns the multiplier for one source.
func (a *ABWeights) Set(s Source, w float64) {
	switch s {
	case SourceFollowing:
		a.Following = w
	case SourceRecommended:
		a.Recommended = w
	case SourceTrending:
		a.Trending = w
	case SourceLists:
		a.Lists = w
	}
}

// TimelineConfig carries the per-request assembly parameters. Values are
// resolved from service defaults, then stored viewer preferences (positive
// fields only), then per-request overrides.
type TimelineConfig struct {
	Algorithm Algorithm `json:"algorithm"`

	MaxItems          int     `json:"max_items"`
	MaxAgeHours       int     `json:"max_age_hours"`
	MinScoreThreshold float64 `json:"min_score_threshold"`

	Weights   SignalWeights `json:"weights"`
	Ratios    SourceRatios  `json:"ratios"`
	Caps      SourceCaps    `json:"caps"`
	ABWeights ABWeights     `json:"ab_weights"`
}

// DefaultTimelineConfig returns the assembly defaults: hybrid ranking over
// 50 items from the last 24 hours, score floor 0.1, the standard weight and
// ratio mix, no explicit source caps, neutral A/B multipliers.
func DefaultTimelineConfig() TimelineConfig {
	return TimelineConfig{
		Algorithm:         AlgorithmHybrid,
		MaxItems:          50,
		MaxAgeHours:       24,
		MinScoreThreshold: 0.1,
		Weights: SignalWeights{
			Recency:        0.30,
			Engagement:     0.25,
			AuthorAffinity: 0.20,
			ContentQuality: 0.15,
			Diversity:      0.10,
		},
		Ratios: SourceRatios{
			Following:   0.7,
			Recommended: 0.2,
			Trending:    0.1,
			Lists:       0,
		},
		ABWeights: NeutralABWeights(),
	}
}

// Validate rejects configurations that cannot drive the pipeline.
func (c TimelineConfig) Validate() error {
	if c.MaxItems <= 0 {
		return fmt.Errorf("max_items must be positive, got %d", c.MaxItems)
	}
	if c.MaxAgeHours <= 0 {
		return fmt.Errorf("max_age_hours must be positive, got %d", c.MaxAgeHours)
	}
	if c.MinScoreThreshold < 0 {
		return fmt.Errorf("min_score_threshold must be non-negative, got %f", c.MinScoreThreshold)
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"recency", c.Weights.Recency},
		{"engagement", c.Weights.Engagement},
		{"author_affinity", c.Weights.AuthorAffinity},
		{"content_quality", c.Weights.ContentQuality},
		{"diversity", c.Weights.Diversity},
		{"ratio.following", c.Ratios.Following},
		{"ratio.recommended", c.Ratios.Recommended},
		{"ratio.trending", c.Ratios.Trending},
		{"ratio.lists", c.Ratios.Lists},
	} {
		if w.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", w.name, w.value)
		}
	}
	if c.Caps.Following < 0 || c.Caps.Recommended < 0 || c.Caps.Trending < 0 || c.Caps.Lists < 0 {
		return fmt.Errorf("source caps must be non-negative")
	}
	return nil
}

// ApplyDiscoveryShare rescales the non-following ratios so they sum to
// share while following takes the remainder. Shares outside [0,1] are
// clamped. When the current non-following mix is zero the whole share goes
// to recommended.
func (c *TimelineConfig) ApplyDiscoveryShare(share float64) {
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	nonFollowing := c.Ratios.Recommended + c.Ratios.Trending + c.Ratios.Lists
	if nonFollowing <= 0 {
		c.Ratios = SourceRatios{Following: 1 - share, Recommended: share}
		return
	}
	scale := share / nonFollowing
	c.Ratios.Recommended *= scale
	c.Ratios.Trending *= scale
	c.Ratios.Lists *= scale
	c.Ratios.Following = 1 - share
}

// SourceQuota derives one source's fetch budget from its ratio, the A/B
// multiplier and the cap.
func (c TimelineConfig) SourceQuota(s Source) int {
	quota := int(float64(c.MaxItems) * c.Ratios.For(s) * c.ABWeights.For(s))
	if quota < 0 {
		quota = 0
	}
	if limit := c.Caps.Effective(s, c.MaxItems); quota > limit {
		quota = limit
	}
	return quota
}
