// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package filter

import (
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/models"
)

// Spam signal identifiers returned by SpamDetector.Check.
const (
	SignalPhrase   = "phrase"
	SignalRun      = "punctuation_run"
	SignalCaps     = "caps_ratio"
	SignalHashtags = "hashtag_flood"
)

// SpamConfig tunes the spam signature.
type SpamConfig struct {
	// Phrases are matched whole-word and case-insensitive.
	Phrases []string

	// MaxHashtags is the hashtag count above which a note is spam.
	MaxHashtags int

	// CapsRatio is the uppercase-letter ratio above which a note is spam,
	// applied only to texts of at least CapsMinLength runes. Only letters
	// count toward the ratio.
	CapsRatio     float64
	CapsMinLength int

	// ExclamationRun and DollarRun are the consecutive-character run
	// lengths that trip the repeated punctuation check.
	ExclamationRun int
	DollarRun      int
}

// DefaultSpamConfig returns the production signature.
func DefaultSpamConfig() SpamConfig {
	return SpamConfig{
		Phrases:        []string{"click here", "buy now", "limited time", "act fast", "free money"},
		MaxHashtags:    10,
		CapsRatio:      0.7,
		CapsMinLength:  10,
		ExclamationRun: 5,
		DollarRun:      3,
	}
}

// SpamDetector applies the spam signature to notes. Safe for concurrent
// use; the phrase automaton is built once at construction.
type SpamDetector struct {
	cfg     SpamConfig
	phrases *cache.PatternSet
}

// NewSpamDetector builds a detector for the given configuration.
func NewSpamDetector(cfg SpamConfig) *SpamDetector {
	var phrases *cache.PatternSet
	if len(cfg.Phrases) > 0 {
		phrases = cache.NewPatternSet(cfg.Phrases, false)
	}
	return &SpamDetector{cfg: cfg, phrases: phrases}
}

// Check reports whether the note matches the spam signature and which
// signal tripped first.
func (d *SpamDetector) Check(note *models.Note) (string, bool) {
	text := note.TextContent

	if d.phrases != nil && d.phrases.ContainsWord(text) {
		return SignalPhrase, true
	}
	if hasRun(text, '!', d.cfg.ExclamationRun) || hasRun(text, '$', d.cfg.DollarRun) {
		return SignalRun, true
	}
	if d.capsExcessive(text) {
		return SignalCaps, true
	}
	if d.cfg.MaxHashtags > 0 && hashtagCount(note) > d.cfg.MaxHashtags {
		return SignalHashtags, true
	}
	return "", false
}

// capsExcessive reports whether the uppercase ratio of text exceeds the
// configured limit. Texts shorter than CapsMinLength runes are exempt so
// short interjections are not penalized.
func (d *SpamDetector) capsExcessive(text string) bool {
	if d.cfg.CapsRatio <= 0 {
		return false
	}
	if utf8.RuneCountInString(text) < d.cfg.CapsMinLength {
		return false
	}
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(upper)/float64(letters) > d.cfg.CapsRatio
}

// hasRun reports whether text contains n or more consecutive occurrences
// of ch.
func hasRun(text string, ch byte, n int) bool {
	if n <= 0 {
		return false
	}
	run := 0
	for i := 0; i < len(text); i++ {
		if text[i] == ch {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// hashtagCount prefers the hashtag metadata carried by the note, falling
// back to extraction from text for sources that do not populate it.
func hashtagCount(note *models.Note) int {
	if len(note.Hashtags) > 0 {
		return len(note.Hashtags)
	}
	return len(models.ExtractHashtags(note.TextContent))
}
