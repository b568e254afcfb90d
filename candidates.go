package mana

import "sort"

// ═══════════════════════════════════════════════════════════════════════════
// CANDIDATE ENGINE
// ═══════════════════════════════════════════════════════════════════════════
// spec.md §4.4: intersect the per-token posting unions, smallest first, then
// optionally intersect a facet bitmap. Sorting ascending by union cardinality
// before intersecting is a correctness-preserving performance contract (§9
// "Popularity-first intersection"), not a cosmetic choice — intersecting the
// smallest sets first keeps every intermediate result as small as possible.
// ═══════════════════════════════════════════════════════════════════════════

// WordsCandidates implements spec.md §4.4 steps 1-2: the intersection of
// every entry's union bitmap, smallest first. An empty table has no
// well-defined candidate set; callers check len(table) before calling this.
func WordsCandidates(table DerivedWordTable) *Bitmap {
	if len(table) == 0 {
		return NewBitmap()
	}

	unions := make([]*Bitmap, len(table))
	for i, entry := range table {
		unions[i] = entry.UnionBitmap
	}
	sort.Slice(unions, func(i, j int) bool {
		return unions[i].GetCardinality() < unions[j].GetCardinality()
	})

	candidates := unions[0].Clone()
	for _, union := range unions[1:] {
		candidates.And(union)
	}
	return candidates
}

// Candidates implements spec.md §4.4 fully: word intersection, optionally
// narrowed by a facet bitmap (step 3).
func Candidates(table DerivedWordTable, facet *Bitmap) *Bitmap {
	candidates := WordsCandidates(table)
	if facet != nil {
		candidates.And(facet)
	}
	return candidates
}
