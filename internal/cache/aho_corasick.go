// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Match represents a single pattern match in the searched text.
//
// Start and End are byte offsets into the searched text. For a
// case-insensitive matcher they refer to the case-folded text, which can
// differ from the original when folding changes rune widths.
type Match struct {
	Pattern string // the pattern that matched, as stored
	Data    any    // optional data attached to the pattern
	Start   int    // byte offset of the match start
	End     int    // byte offset just past the match end
}

// acPattern is a pattern with optional attached data.
type acPattern struct {
	text string
	data any
}

// acNode is a node in the Aho-Corasick trie.
type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int // indexes into patterns that terminate at this node
	depth    int
}

func newAcNode(depth int) *acNode {
	return &acNode{
		children: make(map[rune]*acNode),
		depth:    depth,
	}
}

// AhoCorasick is a multi-pattern string matcher. It finds all
// occurrences of all patterns in a single pass over the text, which
// keeps the content filter O(text) regardless of how many keywords a
// viewer mutes.
//
// Patterns are added with AddPattern and the automaton is compiled with
// Build. Searching before Build, or after adding patterns without
// rebuilding, returns no matches. The intended use is build-once: the
// filter compiles a new matcher whenever viewer preferences change.
type AhoCorasick struct {
	mu            sync.RWMutex
	root          *acNode
	patterns      []acPattern
	built         bool
	caseSensitive bool
}

// NewAhoCorasick creates an empty matcher.
// When caseSensitive is false, patterns and searched text are folded
// with strings.ToLower before matching.
func NewAhoCorasick(caseSensitive bool) *AhoCorasick {
	return &AhoCorasick{
		root:          newAcNode(0),
		caseSensitive: caseSensitive,
	}
}

// AddPattern adds a pattern with optional attached data.
// Empty patterns are ignored. Build must be called before searching.
func (ac *AhoCorasick) AddPattern(text string, data any) {
	if text == "" {
		return
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	if !ac.caseSensitive {
		text = strings.ToLower(text)
	}
	ac.patterns = append(ac.patterns, acPattern{text: text, data: data})
	ac.built = false
}

// AddPatterns adds multiple patterns without attached data.
func (ac *AhoCorasick) AddPatterns(texts []string) {
	for _, text := range texts {
		ac.AddPattern(text, nil)
	}
}

// Build compiles the automaton: inserts all patterns into the trie and
// wires failure links breadth-first so that every node's failure points
// to the longest proper suffix of its path that is also a trie prefix.
func (ac *AhoCorasick) Build() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.root = newAcNode(0)

	for i, p := range ac.patterns {
		node := ac.root
		for _, ch := range p.text {
			child, ok := node.children[ch]
			if !ok {
				child = newAcNode(node.depth + 1)
				node.children[ch] = child
			}
			node = child
		}
		node.output = append(node.output, i)
	}

	// BFS to assign failure links level by level
	queue := make([]*acNode, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failure = ac.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil {
				if next, ok := fail.children[ch]; ok {
					child.failure = next
					break
				}
				fail = fail.failure
			}
			if child.failure == nil || child.failure == child {
				child.failure = ac.root
			}

			// Inherit matches that end at the failure node
			child.output = append(child.output, child.failure.output...)
		}
	}

	ac.built = true
}

// Search returns all matches of all patterns in text.
// Returns nil if the automaton has not been built.
func (ac *AhoCorasick) Search(text string) []Match {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return nil
	}
	return ac.searchLocked(ac.fold(text))
}

// SearchFirst returns the first match in text, or nil if none.
// The first match is the one with the lowest end position.
func (ac *AhoCorasick) SearchFirst(text string) *Match {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return nil
	}

	searchText := ac.fold(text)
	node := ac.root

	for i, ch := range searchText {
		node = ac.advance(node, ch)

		if len(node.output) > 0 {
			p := ac.patterns[node.output[0]]
			end := i + utf8.RuneLen(ch)
			return &Match{
				Pattern: p.text,
				Data:    p.data,
				Start:   end - len(p.text),
				End:     end,
			}
		}
	}

	return nil
}

// Contains reports whether any pattern occurs in text.
func (ac *AhoCorasick) Contains(text string) bool {
	return ac.SearchFirst(text) != nil
}

// SearchWords returns matches that begin and end on word boundaries.
// A boundary is the text edge or any rune that is not a letter, digit,
// or underscore. This is what muted keywords use: muting "cat" blocks
// "cat videos" but not "concatenate".
func (ac *AhoCorasick) SearchWords(text string) []Match {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return nil
	}

	folded := ac.fold(text)
	var words []Match
	for _, m := range ac.searchLocked(folded) {
		if isWordBounded(folded, m.Start, m.End) {
			words = append(words, m)
		}
	}
	return words
}

// ContainsWord reports whether any pattern occurs in text as a whole word.
func (ac *AhoCorasick) ContainsWord(text string) bool {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	if !ac.built || len(ac.patterns) == 0 {
		return false
	}

	folded := ac.fold(text)
	for _, m := range ac.searchLocked(folded) {
		if isWordBounded(folded, m.Start, m.End) {
			return true
		}
	}
	return false
}

// MatchCount returns the total number of pattern occurrences in text.
func (ac *AhoCorasick) MatchCount(text string) int {
	return len(ac.Search(text))
}

// PatternCount returns the number of patterns added.
func (ac *AhoCorasick) PatternCount() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return len(ac.patterns)
}

// Clear removes all patterns and resets the automaton.
func (ac *AhoCorasick) Clear() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.root = newAcNode(0)
	ac.patterns = nil
	ac.built = false
}

func (ac *AhoCorasick) fold(text string) string {
	if ac.caseSensitive {
		return text
	}
	return strings.ToLower(text)
}

// searchLocked scans already-folded text. Caller holds at least RLock
// and has verified the automaton is built.
func (ac *AhoCorasick) searchLocked(searchText string) []Match {
	var matches []Match
	node := ac.root

	for i, ch := range searchText {
		node = ac.advance(node, ch)

		for _, patternIdx := range node.output {
			p := ac.patterns[patternIdx]
			end := i + utf8.RuneLen(ch)
			matches = append(matches, Match{
				Pattern: p.text,
				Data:    p.data,
				Start:   end - len(p.text),
				End:     end,
			})
		}
	}

	return matches
}

// advance follows failure links until ch can be consumed, then takes
// the transition. Stays at root when no transition exists.
func (ac *AhoCorasick) advance(node *acNode, ch rune) *acNode {
	for node != ac.root && node.children[ch] == nil {
		node = node.failure
	}
	if next, ok := node.children[ch]; ok {
		return next
	}
	return ac.root
}

// isWordBounded reports whether text[start:end] is delimited by
// non-word runes or text edges on both sides.
func isWordBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PatternSet is an immutable set of phrases compiled into an
// AhoCorasick matcher. This is the form the content filter consumes:
// it compiles a fresh set whenever viewer preferences change, so the
// automaton never mutates after Build.
type PatternSet struct {
	ac *AhoCorasick
}

// NewPatternSet compiles patterns into a ready-to-search set.
// Matching is case-insensitive unless caseSensitive is set.
func NewPatternSet(patterns []string, caseSensitive bool) *PatternSet {
	ac := NewAhoCorasick(caseSensitive)
	ac.AddPatterns(patterns)
	ac.Build()
	return &PatternSet{ac: ac}
}

// Contains reports whether any pattern occurs in text as a substring.
func (ps *PatternSet) Contains(text string) bool {
	return ps.ac.Contains(text)
}

// ContainsWord reports whether any pattern occurs in text as a whole word.
func (ps *PatternSet) ContainsWord(text string) bool {
	return ps.ac.ContainsWord(text)
}

// FirstMatch returns the first pattern found as a substring of text.
func (ps *PatternSet) FirstMatch(text string) (string, bool) {
	if m := ps.ac.SearchFirst(text); m != nil {
		return m.Pattern, true
	}
	return "", false
}

// FirstWordMatch returns the first pattern found as a whole word in text.
func (ps *PatternSet) FirstWordMatch(text string) (string, bool) {
	matches := ps.ac.SearchWords(text)
	if len(matches) == 0 {
		return "", false
	}
	first := matches[0]
	for _, m := range matches[1:] {
		if m.End < first.End {
			first = m
		}
	}
	return first.Pattern, true
}

// Size returns the number of compiled patterns.
func (ps *PatternSet) Size() int {
	return ps.ac.PatternCount()
}
