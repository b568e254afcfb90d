package mana

import "testing"

func TestQueryTokens_FreeWords(t *testing.T) {
	tokens := QueryTokens("hello world")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Word != "hello" || tokens[0].Kind != Free {
		t.Errorf("unexpected first token: %+v", tokens[0])
	}
	if tokens[1].Word != "world" || tokens[1].Kind != Free {
		t.Errorf("unexpected second token: %+v", tokens[1])
	}
}

func TestQueryTokens_QuotedSpan(t *testing.T) {
	tokens := QueryTokens(`"a" cat`)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Word != "a" || !tokens[0].IsQuoted() {
		t.Errorf("expected quoted token %q, got %+v", "a", tokens[0])
	}
	if tokens[1].Word != "cat" || tokens[1].IsQuoted() {
		t.Errorf("expected free token %q, got %+v", "cat", tokens[1])
	}
}

func TestQueryTokens_UnterminatedQuote(t *testing.T) {
	tokens := QueryTokens(`"hello world`)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Word != "hello world" || !tokens[0].IsQuoted() {
		t.Errorf("expected the whole trailing quote consumed, got %+v", tokens[0])
	}
}

func TestQueryTokens_Empty(t *testing.T) {
	if tokens := QueryTokens(""); len(tokens) != 0 {
		t.Errorf("expected no tokens for empty query, got %v", tokens)
	}
	if tokens := QueryTokens("   "); len(tokens) != 0 {
		t.Errorf("expected no tokens for whitespace-only query, got %v", tokens)
	}
}

func TestEndsWithWhitespace(t *testing.T) {
	if endsWithWhitespace("hello ") != true {
		t.Error("expected trailing space to be detected")
	}
	if endsWithWhitespace("hello") != false {
		t.Error("did not expect trailing space")
	}
	if endsWithWhitespace("") != false {
		t.Error("empty query has no trailing whitespace")
	}
}
