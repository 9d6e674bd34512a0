package lexer

import (
	"testing"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/token"
)

// toks lexes src and returns just the token kinds, discarding the
// trailing Eof, so tests can compare against a short literal slice.
func toks(t *testing.T, src string) []token.Kind {
	t.Helper()
	all := Tokenize(src)
	if len(all) == 0 || all[len(all)-1].Kind != token.Eof {
		t.Fatalf("expected Tokenize to end in an Eof token, got %v", all)
	}
	kinds := make([]token.Kind, len(all)-1)
	for i, tok := range all[:len(all)-1] {
		kinds[i] = tok.Kind
	}
	return kinds
}

func kindsEqual(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenizeKeywordsAndIdentifiers(t *testing.T) {
	got := toks(t, "def extern foo")
	want := []token.Kind{token.Def, token.Extern, token.Identifier}
	if !kindsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeNumberWithFraction(t *testing.T) {
	all := Tokenize("3.14")
	if len(all) != 2 || all[0].Kind != token.Number || all[0].Num != 3.14 {
		t.Fatalf("unexpected tokens: %+v", all)
	}
}

func TestTokenizeCommentIsSkippedToEndOfLine(t *testing.T) {
	got := toks(t, "1 # a comment\n2")
	want := []token.Kind{token.Number, token.Number}
	if !kindsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeUnaryBinaryKeywordsAndPunctuation(t *testing.T) {
	got := toks(t, "unary binary (a, b);")
	want := []token.Kind{
		token.UnaryKw, token.BinaryKw,
		token.OpenParen, token.Identifier, token.Comma, token.Identifier, token.CloseParen,
		token.Semicolon,
	}
	if !kindsEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeUnrecognizedCharBecomesOperator(t *testing.T) {
	all := Tokenize("a < b")
	if len(all) != 4 || all[1].Kind != token.Operator || all[1].Str != "<" {
		t.Fatalf("unexpected tokens: %+v", all)
	}
}

func TestCursorPeekAndNextPastEndYieldsEof(t *testing.T) {
	c := NewCursor(Tokenize("1"))
	if c.Peek().Kind != token.Number {
		t.Fatalf("expected Number, got %v", c.Peek().Kind)
	}
	c.Next()
	if c.Peek().Kind != token.Eof {
		t.Fatalf("expected Eof, got %v", c.Peek().Kind)
	}
	// Past the end, Peek/Next keep yielding Eof rather than panicking.
	c.Next()
	c.Next()
	if c.Peek().Kind != token.Eof {
		t.Fatalf("expected Eof past the end of input, got %v", c.Peek().Kind)
	}
}
