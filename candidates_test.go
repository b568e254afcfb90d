package mana

import "testing"

func entryWithUnion(ids ...DocumentId) WordEntry {
	return WordEntry{UnionBitmap: BitmapOf(ids...)}
}

func TestWordsCandidates_Intersection(t *testing.T) {
	table := DerivedWordTable{
		entryWithUnion(1, 2, 3, 4),
		entryWithUnion(2, 3, 4, 5),
	}
	got := WordsCandidates(table)
	want := BitmapOf(2, 3, 4)
	if !got.Equals(want) {
		t.Errorf("got %v, want %v", bitmapToIDs(got), bitmapToIDs(want))
	}
}

func TestWordsCandidates_SingleEntry(t *testing.T) {
	table := DerivedWordTable{entryWithUnion(1, 2, 3)}
	got := WordsCandidates(table)
	if !got.Equals(BitmapOf(1, 2, 3)) {
		t.Errorf("expected the lone union unchanged, got %v", bitmapToIDs(got))
	}
}

func TestWordsCandidates_Empty(t *testing.T) {
	got := WordsCandidates(nil)
	if !got.IsEmpty() {
		t.Errorf("expected an empty candidate set, got %v", bitmapToIDs(got))
	}
}

func TestCandidates_WithFacet(t *testing.T) {
	table := DerivedWordTable{
		entryWithUnion(1, 2, 3, 4),
		entryWithUnion(2, 3, 4, 5),
	}
	facet := BitmapOf(3, 4, 100)
	got := Candidates(table, facet)
	want := BitmapOf(3, 4)
	if !got.Equals(want) {
		t.Errorf("got %v, want %v", bitmapToIDs(got), bitmapToIDs(want))
	}
}

func TestCandidates_NoFacet(t *testing.T) {
	table := DerivedWordTable{entryWithUnion(1, 2)}
	got := Candidates(table, nil)
	if !got.Equals(BitmapOf(1, 2)) {
		t.Errorf("expected no narrowing without a facet, got %v", bitmapToIDs(got))
	}
}
