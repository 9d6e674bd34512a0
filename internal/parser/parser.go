// Package parser implements the Kaleidoscope recursive-descent parser
// with operator-precedence climbing over a user-extensible precedence
// table (spec.md §4.2).
//
// Generalized from the teacher's (node, ok bool)-returning parser
// (bootstrap/syntax/parser.go, parse_expr.go): the teacher walks a fixed
// table of precedence levels seeded at construction, since Chai has no
// user-definable operators. Kaleidoscope does, so the table here is a
// mutable map[byte]int that `def binary<op> <prec>` updates mid-parse,
// and every climbing step re-reads it rather than a closed-over snapshot.
package parser

import (
	"fmt"

	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ast"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/lexer"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/token"
)

// ParseError is the error type returned by Parse: a single message tied
// to the line on which it was detected. Kaleidoscope has no error
// recovery, so a program yields at most one ParseError.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parser holds the mutable parse-time state: the token cursor, the
// binary-operator precedence table, and the set of currently known
// unary operator characters.
type Parser struct {
	cur      *lexer.Cursor
	binPrec  map[byte]int
	unaryOps map[byte]bool
}

// defaultPrecedence is the built-in binary-operator precedence table
// per spec.md §4.2: `=` at 2, `<` at 10, `+`/`-` at 20, `*` at 40. `/`
// is deliberately left unseeded.
var defaultPrecedence = map[byte]int{
	'=': 2,
	'<': 10,
	'+': 20,
	'-': 20,
	'*': 40,
}

// BuiltinPrecedence returns a fresh copy of the built-in precedence
// table, letting callers (e.g. the CLI driver) tell a config-supplied
// override apart from a brand-new operator before seeding New.
func BuiltinPrecedence() map[byte]int {
	cp := make(map[byte]int, len(defaultPrecedence))
	for op, prec := range defaultPrecedence {
		cp[op] = prec
	}
	return cp
}

// New creates a parser over already-lexed source, seeding the binary
// precedence table with defaultPrecedence.
//
// extraPrecedence is the config-driven hook SPEC_FULL.md's Configuration
// bullet names: each map passed in is merged over the built-in table
// (later maps winning ties), so a `kaleidoscope.toml` `[precedence]`
// table can both add new operators and override a built-in one.
func New(toks []token.Token, extraPrecedence ...map[byte]int) *Parser {
	p := &Parser{
		cur:      lexer.NewCursor(toks),
		binPrec:  BuiltinPrecedence(),
		unaryOps: map[byte]bool{},
	}

	for _, extra := range extraPrecedence {
		for op, prec := range extra {
			p.binPrec[op] = prec
		}
	}

	return p
}

// Parse consumes the entire token sequence and returns the top-level
// items in source order. The first error aborts parsing entirely, per
// spec.md §7.
func (p *Parser) Parse() ([]ast.TopLevelItem, error) {
	var items []ast.TopLevelItem

	for {
		for p.cur.Peek().Kind == token.Semicolon {
			p.cur.Next()
		}

		if p.cur.Peek().Kind == token.Eof {
			break
		}

		var item ast.TopLevelItem
		var err error

		switch p.cur.Peek().Kind {
		case token.Def:
			item, err = p.parseDef()
		case token.Extern:
			item, err = p.parseExtern()
		default:
			item, err = p.parseTopExpr()
		}

		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.cur.Peek().Line, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes the current token if it has the given kind, else
// reports an error naming what was expected.
func (p *Parser) expect(k token.Kind) error {
	if p.cur.Peek().Kind != k {
		return p.errorf("expected %s but found %s", k, p.cur.Peek().Kind)
	}
	p.cur.Next()
	return nil
}

// parseTopExpr parses a bare top-level expression and wraps it in the
// synthetic `_top_level_expr` function, per spec.md §4.2.
func (p *Parser) parseTopExpr() (ast.TopLevelItem, error) {
	line := p.cur.Peek().Line
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	if p.cur.Peek().Kind == token.Semicolon {
		p.cur.Next()
	}

	return &ast.FuncDef{Fn: &ast.Function{
		Proto: &ast.Prototype{Name: ast.TopLevelExprName, Kind: ast.KindFunction, Line: line},
		Body:  expr,
	}}, nil
}

// parseExtern parses `extern proto (';')?`.
func (p *Parser) parseExtern() (ast.TopLevelItem, error) {
	p.cur.Next() // consume 'extern'

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}

	if p.cur.Peek().Kind == token.Semicolon {
		p.cur.Next()
	}

	return &ast.ExternDecl{Proto: proto}, nil
}

// parseDef parses `def proto expr`. For a binary-operator prototype, the
// precedence is registered into the table before the body is parsed, so
// a recursive reference to the operator itself parses correctly (the
// design note in spec.md §9 this package is built around).
func (p *Parser) parseDef() (ast.TopLevelItem, error) {
	p.cur.Next() // consume 'def'

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}

	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	return &ast.FuncDef{Fn: &ast.Function{Proto: proto, Body: body}}, nil
}
