package parser

import (
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ast"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/token"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/util"
)

// parsePrototype parses a function, unary-operator, or binary-operator
// signature: `ident '(' (ident)* ')'`, `unary <op> '(' ident ')'`, or
// `binary <op> number? '(' ident ident ')'`.
func (p *Parser) parsePrototype() (*ast.Prototype, error) {
	line := p.cur.Peek().Line

	switch p.cur.Peek().Kind {
	case token.UnaryKw:
		p.cur.Next()
		if p.cur.Peek().Kind != token.Operator {
			return nil, p.errorf("expected an operator character after 'unary'")
		}
		op := p.cur.Next().Str[0]

		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		if len(params) != 1 {
			return nil, p.errorf("unary operator 'unary%c' must take exactly one argument", op)
		}

		p.unaryOps[op] = true
		return &ast.Prototype{Name: "unary" + string(op), Params: params, Kind: ast.KindUnaryOp, OpChar: op, Line: line}, nil

	case token.BinaryKw:
		p.cur.Next()
		if p.cur.Peek().Kind != token.Operator {
			return nil, p.errorf("expected an operator character after 'binary'")
		}
		op := p.cur.Next().Str[0]

		prec := 30
		if p.cur.Peek().Kind == token.Number {
			prec = int(p.cur.Next().Num)
			if prec <= 0 {
				return nil, p.errorf("binary operator precedence must be positive")
			}
		}

		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		if len(params) != 2 {
			return nil, p.errorf("binary operator 'binary%c' must take exactly two arguments", op)
		}

		// Registered before the body parses so a recursive use of the
		// operator inside its own definition climbs correctly.
		p.binPrec[op] = prec

		return &ast.Prototype{Name: "binary" + string(op), Params: params, Kind: ast.KindBinaryOp, OpChar: op, Precedence: prec, Line: line}, nil

	case token.Identifier:
		name := p.cur.Next().Str
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		return &ast.Prototype{Name: name, Params: params, Kind: ast.KindFunction, Line: line}, nil

	default:
		return nil, p.errorf("expected function name or operator keyword in prototype")
	}
}

// parseParamList parses `'(' (ident)* ')'`. Kaleidoscope separates
// parameters by whitespace, not commas.
func (p *Parser) parseParamList() ([]string, error) {
	if err := p.expect(token.OpenParen); err != nil {
		return nil, err
	}

	var params []string
	for p.cur.Peek().Kind == token.Identifier {
		name := p.cur.Next().Str
		if util.Contains(params, name) {
			return nil, p.errorf("duplicate parameter name %q", name)
		}
		params = append(params, name)
	}

	if err := p.expect(token.CloseParen); err != nil {
		return nil, err
	}

	return params, nil
}
