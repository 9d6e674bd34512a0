// Package token defines the lexical tokens produced by the Kaleidoscope
// lexer.
package token

import "fmt"

// Kind enumerates the kinds of tokens the lexer produces.
type Kind int

const (
	Def Kind = iota
	Extern
	If
	Then
	Else
	For
	In
	BinaryKw
	UnaryKw
	VarKw
	Identifier
	Number
	Operator
	OpenParen
	CloseParen
	Comma
	Semicolon
	Eof
)

var kindNames = map[Kind]string{
	Def:        "def",
	Extern:     "extern",
	If:         "if",
	Then:       "then",
	Else:       "else",
	For:        "for",
	In:         "in",
	BinaryKw:   "binary",
	UnaryKw:    "unary",
	VarKw:      "var",
	Identifier: "identifier",
	Number:     "number",
	Operator:   "operator",
	OpenParen:  "(",
	CloseParen: ")",
	Comma:      ",",
	Semicolon:  ";",
	Eof:        "eof",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Keywords maps identifier text to the reserved keyword it denotes.
var Keywords = map[string]Kind{
	"def":    Def,
	"extern": Extern,
	"if":     If,
	"then":   Then,
	"else":   Else,
	"for":    For,
	"in":     In,
	"binary": BinaryKw,
	"unary":  UnaryKw,
	"var":    VarKw,
}

// Token is a single lexical unit. Str carries the identifier text or the
// single-character operator spelling; Num carries the decoded value of a
// Number token. Line is a 1-based source line counter, per spec.md's
// decision not to track full source positions.
type Token struct {
	Kind Kind
	Str  string
	Num  float64
	Line int
}

func (t Token) String() string {
	switch t.Kind {
	case Identifier, Operator:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Str)
	case Number:
		return fmt.Sprintf("number(%g)", t.Num)
	default:
		return t.Kind.String()
	}
}
