package mana

import (
	"container/heap"
	"log/slog"
	"sort"
)

// ═══════════════════════════════════════════════════════════════════════════
// MDFS — MANA DEPTH-FIRST SEARCH
// ═══════════════════════════════════════════════════════════════════════════
// spec.md §4.5: enumerate the candidate set in non-decreasing proximity,
// where proximity measures how tightly a document's occurrences of the
// query's words sit together. The four contract properties (P1 non-decreasing
// proximity, P2 disjoint batches, P3 union-equals-candidates, P4 never an
// empty batch) are the only thing callers may rely on; the exact priority
// formulation is left open by design.
//
// This implementation treats each adjacent pair of query-token positions as
// a "lane". A lane's bitmap at level p is the union, over every pair of
// derived words (one per position), of WordPairProximityDocids(w1, w2, p).
// A document's overall proximity is the smallest p at which it appears in
// every lane's *cumulative* bitmap (levels 0..p unioned together) — i.e. the
// point by which every adjacent pair of query words has been shown to
// co-occur in the document. A single-token query has no lanes, so every
// candidate is emitted as one proximity-0 batch.
//
// The frontier is the set of proximity levels not yet drained, kept in a
// min-heap (spec.md §4.5's "priority frontier keyed by tentative proximity
// lower bounds"); popping it in order is what gives property P1 for free.
// Within a level, the word pairs contributing to a lane are visited in the
// deterministic tie-break order spec.md §4.5 prescribes (ascending
// query-word index, then surface word byte order), even though the union
// itself does not depend on visit order, so no batch depends on it either.
// ═══════════════════════════════════════════════════════════════════════════

// proximityHeap is a min-heap of not-yet-visited proximity levels.
type proximityHeap []int

func (h proximityHeap) Len() int            { return len(h) }
func (h proximityHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h proximityHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *proximityHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *proximityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// lane pairs two adjacent query-token entries whose derived words must be
// checked for co-occurrence proximity.
type lane struct {
	left, right WordEntry
	cumulative  *Bitmap // union of every level's bitmap visited so far
}

// wordPair is one (left word, right word) combination considered by a lane,
// ordered per spec.md §4.5's deterministic tie-break.
type wordPair struct {
	left, right string
}

// MDFS is the stateful, pull-based enumerator described by spec.md §4.5.
type MDFS struct {
	index     Index
	residual  *Bitmap
	lanes     []*lane
	frontier  *proximityHeap
	singleton bool // true when the query has exactly one token: no lanes
	err       error
	log       *slog.Logger
}

// NewMDFS constructs an MDFS enumerator over candidates, using table to
// derive lanes between consecutive query-token positions.
func NewMDFS(index Index, table DerivedWordTable, candidates *Bitmap) *MDFS {
	m := &MDFS{
		index:    index,
		residual: candidates.Clone(),
		log:      slog.Default().With("component", "mdfs"),
	}

	if len(table) <= 1 {
		m.singleton = true
		return m
	}

	for i := 0; i+1 < len(table); i++ {
		m.lanes = append(m.lanes, &lane{
			left:       table[i],
			right:      table[i+1],
			cumulative: NewBitmap(),
		})
	}

	h := make(proximityHeap, 0, MaxProximity+1)
	for p := 0; p <= MaxProximity; p++ {
		h = append(h, p)
	}
	heap.Init(&h)
	m.frontier = &h
	return m
}

// Next returns the next (proximity, bitmap) batch, or ok=false once the
// candidate residue is exhausted.
func (m *MDFS) Next() (proximity uint8, batch *Bitmap, ok bool) {
	if m.residual.IsEmpty() {
		return 0, nil, false
	}

	if m.singleton {
		batch := m.residual
		m.residual = NewBitmap()
		return 0, batch, true
	}

	for m.frontier.Len() > 0 {
		level := heap.Pop(m.frontier).(int)

		matched, err := m.matchedAtLevel(level)
		if err != nil {
			// Posting-list fetch errors propagate as a query failure
			// (spec.md §4.5 "Failure"); Next has no error return, so the
			// orchestrator checks m.err via Err after a false Next.
			m.err = err
			return 0, nil, false
		}
		matched.And(m.residual)
		if matched.IsEmpty() {
			continue
		}

		m.residual.AndNot(matched)
		return uint8(level), matched, true
	}

	// Every lane's cumulative bitmap has reached MaxProximity and still
	// left documents unresolved (should not happen given index.go's
	// recordProximities coverage guarantee, but surfaces any residue
	// rather than silently dropping it).
	if !m.residual.IsEmpty() {
		batch := m.residual
		m.residual = NewBitmap()
		return MaxProximity, batch, true
	}
	return 0, nil, false
}

// Err returns the error that caused the last Next to return ok=false, or
// nil if the enumerator was simply exhausted.
func (m *MDFS) Err() error { return m.err }

// matchedAtLevel returns the documents for which every lane's cumulative
// bitmap (levels 0..level) now contains them, intersected across lanes.
func (m *MDFS) matchedAtLevel(level int) (*Bitmap, error) {
	var intersection *Bitmap
	for _, l := range m.lanes {
		laneBitmap, err := m.laneUnionAtLevel(l, level)
		if err != nil {
			return nil, err
		}
		l.cumulative.Or(laneBitmap)

		if intersection == nil {
			intersection = l.cumulative.Clone()
		} else {
			intersection.And(l.cumulative)
		}
	}
	if intersection == nil {
		return NewBitmap(), nil
	}
	return intersection, nil
}

// laneUnionAtLevel unions WordPairProximityDocids(w1, w2, level) over every
// word pair the lane considers, visited in deterministic tie-break order.
func (m *MDFS) laneUnionAtLevel(l *lane, level int) (*Bitmap, error) {
	pairs := lanePairs(l)
	union := NewBitmap()
	for _, p := range pairs {
		bm, err := m.index.WordPairProximityDocids(p.left, p.right, uint8(level))
		if err != nil {
			return nil, err
		}
		union.Or(bm)
	}
	return union, nil
}

// lanePairs enumerates a lane's word pairs in ascending query-word index
// order — always (left, right) here since the lane itself is already
// positioned — then by surface word byte order within each side.
func lanePairs(l *lane) []wordPair {
	lefts := sortedKeys(l.left.Words)
	rights := sortedKeys(l.right.Words)

	pairs := make([]wordPair, 0, len(lefts)*len(rights))
	for _, lw := range lefts {
		for _, rw := range rights {
			pairs = append(pairs, wordPair{left: lw, right: rw})
		}
	}
	return pairs
}

func sortedKeys(words map[string]DerivedWord) []string {
	keys := make([]string, 0, len(words))
	for w := range words {
		keys = append(keys, w)
	}
	sort.Strings(keys)
	return keys
}
