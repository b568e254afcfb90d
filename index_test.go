package mana

import "testing"

func TestBuildMemoryIndex_WordDocids(t *testing.T) {
	docs := []Document{
		{ID: 1, Text: []string{"machine learning is fun"}},
		{ID: 2, Text: []string{"deep learning and machine learning"}},
		{ID: 3, Text: []string{"python programming is great"}},
	}

	idx, err := BuildMemoryIndex(docs, DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bm, err := idx.WordDocids("machin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the default analyzer config stems "machine" to "machin".
	if bm.GetCardinality() != 2 || !bm.Contains(1) || !bm.Contains(2) {
		t.Errorf("expected docs {1,2} for 'machin', got %v", bitmapToIDs(bm))
	}

	universe, err := idx.DocumentIds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if universe.GetCardinality() != 3 {
		t.Errorf("expected 3 documents, got %d", universe.GetCardinality())
	}
}

func TestBuildMemoryIndex_WordPairProximity(t *testing.T) {
	docs := []Document{
		{ID: 1, Text: []string{"hello world"}},
	}
	config := AnalyzerConfig{MinTokenLength: 1, EnableStemming: false, EnableStopwords: false}
	idx, err := BuildMemoryIndex(docs, config, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bm, err := idx.WordPairProximityDocids("hello", "world", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bm.GetCardinality() != 1 || !bm.Contains(1) {
		t.Errorf("expected doc 1 at proximity 1 between adjacent words, got %v", bitmapToIDs(bm))
	}

	far, err := idx.WordPairProximityDocids("hello", "world", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !far.IsEmpty() {
		t.Errorf("expected no documents at proximity 0 for adjacent words one apart, got %v", bitmapToIDs(far))
	}
}

func TestBuildMemoryIndex_FacetNumberValues(t *testing.T) {
	docs := []Document{
		{ID: 1, Text: []string{"shoe"}, Facets: map[FieldId]float64{1: 9}},
		{ID: 2, Text: []string{"shoe"}, Facets: map[FieldId]float64{1: 3}},
	}
	idx, err := BuildMemoryIndex(docs, DefaultConfig(), nil, map[FieldId]FacetType{1: FacetFloat})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree, err := idx.FacetNumberValues(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var order []float64
	tree.Walk(Asc, BitmapOf(1, 2), func(value float64, docids *Bitmap) bool {
		order = append(order, value)
		return true
	})
	if len(order) != 2 || order[0] != 3 || order[1] != 9 {
		t.Errorf("expected ascending [3, 9], got %v", order)
	}

	if _, err := idx.FacetNumberValues(2); err == nil {
		t.Error("expected a configuration error for a non-faceted field")
	}
}
