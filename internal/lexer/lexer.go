// Package lexer tokenizes Kaleidoscope source text eagerly, producing a
// finite token sequence terminated by token.Eof (spec.md §4.1).
//
// Generalized from the teacher's streaming, one-token-at-a-time scanner
// (bootstrap/syntax/lexer.go's NextToken) into an eager whole-file pass:
// the parser here needs to mutate its precedence table mid-parse, but
// never needs to re-lex, so materializing the full token slice up front
// keeps the parser's cursor bookkeeping simple.
package lexer

import (
	"strconv"
	"unicode"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/token"
)

// Tokenize lexes the entire source string and returns its token sequence,
// always ending in a single token.Eof. Lexing never fails: any character
// that doesn't start a keyword, identifier, number, or punctuation mark
// becomes a single-character token.Operator and is left for the parser to
// reject if it isn't a recognized operator.
func Tokenize(src string) []token.Token {
	var toks []token.Token
	runes := []rune(src)
	i := 0
	line := 1

	for i < len(runes) {
		c := runes[i]

		switch {
		case c == '\n':
			line++
			i++
		case unicode.IsSpace(c):
			i++
		case c == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case isIdentStart(c):
			start := i
			for i < len(runes) && isIdentCont(runes[i]) {
				i++
			}
			text := string(runes[start:i])
			if kw, ok := token.Keywords[text]; ok {
				toks = append(toks, token.Token{Kind: kw, Line: line})
			} else {
				toks = append(toks, token.Token{Kind: token.Identifier, Str: text, Line: line})
			}
		case c >= '0' && c <= '9':
			start := i
			for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
				i++
			}
			if i < len(runes) && runes[i] == '.' {
				i++
				for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
					i++
				}
			}
			// Built entirely from digits and at most one '.' above, so this
			// always parses.
			val, _ := strconv.ParseFloat(string(runes[start:i]), 64)
			toks = append(toks, token.Token{Kind: token.Number, Num: val, Line: line})
		case c == '(':
			toks = append(toks, token.Token{Kind: token.OpenParen, Line: line})
			i++
		case c == ')':
			toks = append(toks, token.Token{Kind: token.CloseParen, Line: line})
			i++
		case c == ',':
			toks = append(toks, token.Token{Kind: token.Comma, Line: line})
			i++
		case c == ';':
			toks = append(toks, token.Token{Kind: token.Semicolon, Line: line})
			i++
		default:
			toks = append(toks, token.Token{Kind: token.Operator, Str: string(c), Line: line})
			i++
		}
	}

	toks = append(toks, token.Token{Kind: token.Eof, Line: line})
	return toks
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentCont(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// Cursor is a second-pass API over an eagerly lexed token sequence: Peek
// inspects the current token without consuming it, Next returns it and
// advances. Past the end of the sequence, Peek and Next both yield an
// unending stream of Eof tokens.
type Cursor struct {
	toks []token.Token
	pos  int
}

// NewCursor wraps an already-lexed token sequence for parsing.
func NewCursor(toks []token.Token) *Cursor {
	return &Cursor{toks: toks}
}

// Peek returns the current token without advancing the cursor.
func (c *Cursor) Peek() token.Token {
	if c.pos >= len(c.toks) {
		return token.Token{Kind: token.Eof}
	}
	return c.toks[c.pos]
}

// Next returns the current token and advances the cursor past it.
func (c *Cursor) Next() token.Token {
	t := c.Peek()
	if c.pos < len(c.toks) {
		c.pos++
	}
	return t
}
