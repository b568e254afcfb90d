package mana

import "testing"

func TestExpandWords_ExactAndFuzzy(t *testing.T) {
	docs := []Document{
		{ID: 1, Text: []string{"hello world"}},
		{ID: 2, Text: []string{"hallo world"}},
		{ID: 3, Text: []string{"goodbye world"}},
	}
	config := AnalyzerConfig{MinTokenLength: 1, EnableStemming: false, EnableStopwords: false}
	idx, err := BuildMemoryIndex(docs, config, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tokens, err := GenerateQueryAutomata("hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table, err := ExpandWords(idx, tokens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(table))
	}

	helloEntry := table[0]
	if _, ok := helloEntry.Words["hello"]; !ok {
		t.Error("expected exact match 'hello'")
	}
	if _, ok := helloEntry.Words["hallo"]; !ok {
		t.Error("expected fuzzy match 'hallo' at distance 1")
	}
	if d := helloEntry.Words["hallo"].Distance; d != 1 {
		t.Errorf("expected distance 1 for hallo, got %d", d)
	}
	if !helloEntry.UnionBitmap.Contains(1) || !helloEntry.UnionBitmap.Contains(2) {
		t.Errorf("expected union to contain docs 1 and 2, got %v", bitmapToIDs(helloEntry.UnionBitmap))
	}

	found := table.FoundWords()
	if _, ok := found["world"]; !ok {
		t.Error("expected 'world' among found words")
	}
}

func TestExpandWords_EmptyTokens(t *testing.T) {
	idx, err := BuildMemoryIndex(nil, DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table, err := ExpandWords(idx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != nil {
		t.Errorf("expected nil table for an empty token list, got %v", table)
	}
}
