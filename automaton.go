package mana

import (
	"strings"
	"sync"

	"github.com/blevesearch/vellum/levenshtein"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUTOMATON FACTORY
// ═══════════════════════════════════════════════════════════════════════════
// Building a Levenshtein automaton builder is expensive: it precomputes the
// parametric transition tables for every state shape at the given edit
// distance. spec.md §4.1 requires this work happen at most once per distance
// bound, process-wide, thread-safe. We mirror the original's
// once_cell::Lazy<LevBuilder> statics (original_source/src/search/mod.rs:
// LEVDIST0, LEVDIST1, LEVDIST2) with sync.Once-guarded package singletons.
// ═══════════════════════════════════════════════════════════════════════════

// MaxEditDistance is the largest bound any automaton factory supports.
const MaxEditDistance = 2

var (
	levBuilders  [MaxEditDistance + 1]*levenshtein.LevenshteinAutomatonBuilder
	levBuildOnce [MaxEditDistance + 1]sync.Once
	levBuildErr  [MaxEditDistance + 1]error
)

// automatonFactory returns the process-wide, lazily-built Levenshtein
// automaton builder for the given max edit distance. Construction happens
// at most once per distance bound; subsequent calls reuse the memoized
// builder.
func automatonFactory(maxDistance uint8) (*levenshtein.LevenshteinAutomatonBuilder, error) {
	if maxDistance > MaxEditDistance {
		maxDistance = MaxEditDistance
	}
	levBuildOnce[maxDistance].Do(func() {
		// transposition=true counts a swap of two adjacent bytes as a single
		// edit (spec.md §4.1).
		levBuilders[maxDistance], levBuildErr[maxDistance] = levenshtein.NewLevenshteinAutomatonBuilder(maxDistance, true)
	})
	return levBuilders[maxDistance], levBuildErr[maxDistance]
}

// WordAutomaton pairs a compiled DFA with the means to recover, for any
// accepting state the FST search lands on, the exact edit distance between
// the matched surface word and the original query word (spec.md §4.1).
type WordAutomaton struct {
	dfa       *levenshtein.DFA
	isPrefix  bool
	maxEdits  uint8
	wholeWord string
}

// Start, Accept, IsMatch, CanMatch and WillAlwaysMatch make WordAutomaton
// satisfy vellum.Automaton, so it can drive an FST search directly.
func (a *WordAutomaton) Start() int                        { return a.dfa.Start() }
func (a *WordAutomaton) IsMatch(s int) bool                 { return a.dfa.IsMatch(s) }
func (a *WordAutomaton) CanMatch(s int) bool                { return a.dfa.CanMatch(s) }
func (a *WordAutomaton) WillAlwaysMatch(s int) bool         { return a.dfa.WillAlwaysMatch(s) }
func (a *WordAutomaton) Accept(s int, b byte) int           { return a.dfa.Accept(s, b) }

// Distance returns the edit distance recorded at an accepting state.
func (a *WordAutomaton) Distance(state int) EditDistance {
	return uint8(a.dfa.Distance(state).Distance())
}

// buildWholeWordAutomaton builds an automaton accepting strings within
// maxDistance edits of word, exactly (spec.md §4.1 "whole-word automaton").
func buildWholeWordAutomaton(word string, maxDistance uint8) (*WordAutomaton, error) {
	builder, err := automatonFactory(maxDistance)
	if err != nil {
		return nil, err
	}
	dfa, err := builder.BuildDfa(word, maxDistance)
	if err != nil {
		return nil, err
	}
	return &WordAutomaton{dfa: dfa, isPrefix: false, maxEdits: maxDistance, wholeWord: word}, nil
}

// buildPrefixAutomaton builds an automaton accepting any string whose
// prefix lies within maxDistance edits of word (spec.md §4.1 "prefix
// automaton").
func buildPrefixAutomaton(word string, maxDistance uint8) (*WordAutomaton, error) {
	builder, err := automatonFactory(maxDistance)
	if err != nil {
		return nil, err
	}
	dfa, err := builder.BuildDfaWithPrefix(word, maxDistance)
	if err != nil {
		return nil, err
	}
	return &WordAutomaton{dfa: dfa, isPrefix: true, maxEdits: maxDistance, wholeWord: word}, nil
}

// GenerateQueryAutomata implements spec.md §4.2: given a query string, it
// lowercases and classifies each token, decides whether it may act as a
// prefix, chooses a distance bound by byte length, and compiles the
// matching automaton.
//
// An empty token list returns an empty slice; the orchestrator then takes
// the no-query branch (spec.md §4.2, last paragraph).
func GenerateQueryAutomata(query string) ([]expandedToken, error) {
	tokens := QueryTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	trailing := endsWithWhitespace(query)
	n := len(tokens)

	out := make([]expandedToken, 0, n)
	for i, tok := range tokens {
		word := strings.ToLower(tok.Word)
		quoted := tok.IsQuoted() || len(word) <= 3

		isLast := i == n-1
		isPrefix := isLast && !trailing && !quoted

		distance := distanceBound(word, quoted)

		var automaton *WordAutomaton
		var err error
		if isPrefix {
			automaton, err = buildPrefixAutomaton(word, distance)
		} else {
			automaton, err = buildWholeWordAutomaton(word, distance)
		}
		if err != nil {
			return nil, err
		}

		out = append(out, expandedToken{word: word, isPrefix: isPrefix, automaton: automaton})
	}
	return out, nil
}

// distanceBound implements spec.md §4.2 step 3's distance-bound table:
// quoted tokens are always exact; free tokens scale with byte length.
func distanceBound(word string, quoted bool) uint8 {
	if quoted {
		return 0
	}
	switch {
	case len(word) <= 4:
		return 0
	case len(word) <= 8:
		return 1
	default:
		return 2
	}
}

// expandedToken is the per-token output of query-to-automaton generation
// (spec.md §4.2 step 4's "(word, is_prefix, automaton)" tuple).
type expandedToken struct {
	word      string
	isPrefix  bool
	automaton *WordAutomaton
}
