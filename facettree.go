package mana

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════
// FACET NUMBER TREE
// ═══════════════════════════════════════════════════════════════════════════
// spec.md §4.6: "The index stores, per numeric facet, a level-based sorted
// tree whose leaves enumerate documents in ascending numeric-value order."
// No existing file implements this directly, but the shape is the same
// idea as the skip list in skiplist.go: a handful of wide "express lane"
// levels sit above many narrow ones so a walk can skip a whole subtree
// once it proves disjoint from the documents being filtered, instead of
// visiting every leaf.
//
// Level 0 holds one group per distinct facet value, in ascending order.
// Each level above groups facetFanout consecutive groups from the level
// below into one node whose bitmap is their union, so a single cardinality
// check prunes an entire range at once.
// ═══════════════════════════════════════════════════════════════════════════

const facetFanout = 8

// facetGroup is one node of the tree: either a leaf (value is meaningful,
// children is nil) or an internal node (children indexes the level below).
type facetGroup struct {
	value    float64
	bitmap   *Bitmap
	children []int
}

// FacetNumberTree is the sorted numeric tree for one faceted field.
type FacetNumberTree struct {
	levels [][]facetGroup // levels[0] = leaves, ascending by value
}

// BuildFacetNumberTree builds a tree from a field's (value -> docids)
// mapping. Values need not be pre-sorted or pre-deduplicated.
func BuildFacetNumberTree(values map[float64]*Bitmap) *FacetNumberTree {
	leafValues := make([]float64, 0, len(values))
	for v := range values {
		leafValues = append(leafValues, v)
	}
	sort.Float64s(leafValues)

	leaves := make([]facetGroup, len(leafValues))
	for i, v := range leafValues {
		leaves[i] = facetGroup{value: v, bitmap: values[v].Clone()}
	}

	tree := &FacetNumberTree{levels: [][]facetGroup{leaves}}
	for len(tree.levels[len(tree.levels)-1]) > 1 {
		below := tree.levels[len(tree.levels)-1]
		var above []facetGroup
		for start := 0; start < len(below); start += facetFanout {
			end := start + facetFanout
			if end > len(below) {
				end = len(below)
			}
			union := NewBitmap()
			children := make([]int, 0, end-start)
			for i := start; i < end; i++ {
				union.Or(below[i].bitmap)
				children = append(children, i)
			}
			above = append(above, facetGroup{bitmap: union, children: children})
		}
		tree.levels = append(tree.levels, above)
	}
	return tree
}

// FacetVisitor is invoked once per distinct facet value encountered during
// a walk, with the subset of documents carrying that value. It returns
// whether the walk should continue.
type FacetVisitor func(value float64, docids *Bitmap) bool

// Walk enumerates (value, docids ∩ documents) pairs in direction order,
// stopping early once visit returns false (spec.md §4.6). An empty tree or
// a tree with no intersection yields no calls to visit.
func (t *FacetNumberTree) Walk(direction Direction, documents *Bitmap, visit FacetVisitor) {
	if len(t.levels) == 0 {
		return
	}
	top := len(t.levels) - 1
	for i := range t.levels[top] {
		idx := i
		if direction == Desc {
			idx = len(t.levels[top]) - 1 - i
		}
		if !t.recurse(top, idx, direction, documents, visit) {
			return
		}
	}
}

// recurse walks one node of levels[level], returning false once visit has
// asked to stop.
func (t *FacetNumberTree) recurse(level, idx int, direction Direction, documents *Bitmap, visit FacetVisitor) bool {
	group := t.levels[level][idx]
	if !group.bitmap.Intersects(documents) {
		return true
	}

	if level == 0 {
		matched := roaringAnd(group.bitmap, documents)
		if matched.IsEmpty() {
			return true
		}
		return visit(group.value, matched)
	}

	n := len(group.children)
	for i := 0; i < n; i++ {
		childIdx := group.children[i]
		if direction == Desc {
			childIdx = group.children[n-1-i]
		}
		if !t.recurse(level-1, childIdx, direction, documents, visit) {
			return false
		}
	}
	return true
}

func roaringAnd(a, b *Bitmap) *Bitmap {
	return roaring.And(a, b)
}
