package mana

import "testing"

func buildProximityIndex(t *testing.T) Index {
	t.Helper()
	docs := []Document{
		{ID: 1, Text: []string{"hello world"}},
		{ID: 2, Text: []string{"hello big gap here world"}},
		{ID: 3, Text: []string{"world alone"}},
		{ID: 4, Text: []string{"hello alone"}},
	}
	config := AnalyzerConfig{MinTokenLength: 1, EnableStemming: false, EnableStopwords: false}
	idx, err := BuildMemoryIndex(docs, config, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return idx
}

func TestMDFS_EmitsInNonDecreasingProximity(t *testing.T) {
	idx := buildProximityIndex(t)

	hello, _ := idx.WordDocids("hello")
	world, _ := idx.WordDocids("world")
	table := DerivedWordTable{
		{Words: map[string]DerivedWord{"hello": {Distance: 0, Postings: hello}}, UnionBitmap: hello},
		{Words: map[string]DerivedWord{"world": {Distance: 0, Postings: world}}, UnionBitmap: world},
	}

	candidates := BitmapOf(1, 2)
	mdfs := NewMDFS(idx, table, candidates)

	var lastProximity uint8
	var seen []DocumentId
	batches := 0
	for {
		proximity, batch, ok := mdfs.Next()
		if !ok {
			if err := mdfs.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			break
		}
		batches++
		if batch.IsEmpty() {
			t.Fatal("MDFS must never yield an empty batch")
		}
		if proximity < lastProximity {
			t.Fatalf("proximity regressed: %d after %d", proximity, lastProximity)
		}
		lastProximity = proximity
		seen = append(seen, bitmapToIDs(batch)...)
	}

	if batches != 2 {
		t.Fatalf("expected 2 batches (doc 1 close, doc 2 far), got %d", batches)
	}
	if len(seen) != 2 {
		t.Fatalf("expected the union of batches to equal the candidates, got %v", seen)
	}
	union := BitmapOf(seen...)
	if !union.Equals(candidates) {
		t.Errorf("union of batches %v != candidates %v", bitmapToIDs(union), bitmapToIDs(candidates))
	}
}

func TestMDFS_SingleTokenQueryYieldsOneBatch(t *testing.T) {
	idx := buildProximityIndex(t)
	hello, _ := idx.WordDocids("hello")
	table := DerivedWordTable{
		{Words: map[string]DerivedWord{"hello": {Distance: 0, Postings: hello}}, UnionBitmap: hello},
	}

	mdfs := NewMDFS(idx, table, hello)
	proximity, batch, ok := mdfs.Next()
	if !ok {
		t.Fatalf("expected a batch, mdfs err: %v", mdfs.Err())
	}
	if proximity != 0 {
		t.Errorf("expected proximity 0 for a single-token query, got %d", proximity)
	}
	if !batch.Equals(hello) {
		t.Errorf("expected the full candidate set in one batch, got %v", bitmapToIDs(batch))
	}

	if _, _, ok := mdfs.Next(); ok {
		t.Error("expected MDFS to be exhausted after the only batch")
	}
}

func TestMDFS_EmptyCandidatesYieldsNothing(t *testing.T) {
	idx := buildProximityIndex(t)
	table := DerivedWordTable{
		{Words: map[string]DerivedWord{"hello": {Distance: 0}}, UnionBitmap: NewBitmap()},
		{Words: map[string]DerivedWord{"world": {Distance: 0}}, UnionBitmap: NewBitmap()},
	}
	mdfs := NewMDFS(idx, table, NewBitmap())
	if _, _, ok := mdfs.Next(); ok {
		t.Error("expected no batches for an empty candidate set")
	}
}
