package mana

import "testing"

func TestBuildWordFST_Contains(t *testing.T) {
	fst, err := BuildWordFST([]string{"hello", "world", "hallo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, word := range []string{"hello", "world", "hallo"} {
		found, err := fst.Contains(word)
		if err != nil {
			t.Fatalf("Contains(%q): unexpected error: %v", word, err)
		}
		if !found {
			t.Errorf("expected %q to be present in the fst", word)
		}
	}

	found, err := fst.Contains("absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("did not expect an unindexed word to be found")
	}
}

func TestBuildWordFST_DuplicatesIgnored(t *testing.T) {
	fst, err := BuildWordFST([]string{"hello", "hello", "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found, err := fst.Contains("hello")
	if err != nil || !found {
		t.Fatalf("expected hello present, found=%v err=%v", found, err)
	}
}

func TestWordFST_SearchFindsExactAndFuzzyMatches(t *testing.T) {
	fst, err := BuildWordFST([]string{"hello", "hallo", "help", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	automaton, err := buildWholeWordAutomaton("hello", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches := make(map[string]int)
	err = fst.Search(automaton, func(word string, state int) error {
		matches[word] = int(automaton.Distance(state))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d, ok := matches["hello"]; !ok || d != 0 {
		t.Errorf("expected hello at distance 0, got %v present=%v", d, ok)
	}
	if d, ok := matches["hallo"]; !ok || d != 1 {
		t.Errorf("expected hallo at distance 1, got %v present=%v", d, ok)
	}
	if _, ok := matches["world"]; ok {
		t.Error("did not expect world to match an automaton built for hello")
	}
}

func TestSortStrings(t *testing.T) {
	words := []string{"banana", "apple", "cherry"}
	sortStrings(words)
	want := []string{"apple", "banana", "cherry"}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("sortStrings mismatch at %d: got %q, want %q", i, words[i], want[i])
		}
	}
}
