package mana

// ═══════════════════════════════════════════════════════════════════════════
// WORD EXPANDER
// ═══════════════════════════════════════════════════════════════════════════
// spec.md §4.3: given the index's FST and the automata produced from a query
// (§4.2), derive every surface word within each token's edit-distance bound,
// its exact distance, and its postings — then union those postings per
// token. Per-token work is independent, so each entry could run on its own
// goroutine; this implementation keeps it sequential since the FST search
// itself already streams in order and the per-token work is typically
// dwarfed by the automaton construction memoized in automaton.go.
// ═══════════════════════════════════════════════════════════════════════════

// DerivedWord is one surface word the index contains within a token's edit
// distance bound.
type DerivedWord struct {
	Distance EditDistance
	Postings *Bitmap
}

// WordEntry is one query token's row of the DerivedWordTable: its derived
// words and the union of all their postings.
type WordEntry struct {
	Token       expandedToken
	Words       map[string]DerivedWord
	UnionBitmap *Bitmap
}

// DerivedWordTable is the per-query output of word expansion: one WordEntry
// per original query token, in query order.
type DerivedWordTable []WordEntry

// ExpandWords implements spec.md §4.3: it intersects each token's automaton
// with index's FST, recovers the exact edit distance for every match,
// fetches that word's postings, and accumulates the per-token union.
//
// Invariant I2 requires every FST word matched here to also exist in
// word_docids; a mismatch is the indexer's bug, surfaced as ErrDataIntegrity
// rather than silently skipped.
func ExpandWords(index Index, tokens []expandedToken) (DerivedWordTable, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	fst, err := index.WordsFST()
	if err != nil {
		return nil, err
	}

	table := make(DerivedWordTable, len(tokens))
	for i, tok := range tokens {
		entry := WordEntry{
			Token:       tok,
			Words:       make(map[string]DerivedWord),
			UnionBitmap: NewBitmap(),
		}

		err := fst.Search(tok.automaton, func(word string, state int) error {
			postings, err := index.WordDocids(word)
			if err != nil {
				return err
			}
			if postings.IsEmpty() {
				return dataIntegrityf("fst word %q has no entry in word_docids", word)
			}

			entry.Words[word] = DerivedWord{
				Distance: tok.automaton.Distance(state),
				Postings: postings,
			}
			entry.UnionBitmap.Or(postings)
			return nil
		})
		if err != nil {
			return nil, err
		}

		table[i] = entry
	}
	return table, nil
}

// FoundWords returns the union of every surface word matched across table,
// satisfying found_words(Q,S) ⊆ FST_words(S) by construction: every key came
// from an FST search.
func (table DerivedWordTable) FoundWords() map[string]struct{} {
	found := make(map[string]struct{})
	for _, entry := range table {
		for word := range entry.Words {
			found[word] = struct{}{}
		}
	}
	return found
}
