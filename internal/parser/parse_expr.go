package parser

import (
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/ast"
	"github.com/frederikgramkortegaard/rust-kaleidoscope/internal/token"
)

// parseExpr climbs the precedence table starting from a unary-primary
// operand, per spec.md §4.2. minPrec is the lowest precedence an
// operator must have to be consumed at this level; callers recurse with
// the just-seen operator's precedence (+1 for left-associativity, which
// every Kaleidoscope binary operator uses, '=' included).
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(minPrec, lhs)
}

func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) (ast.Expr, error) {
	for {
		tok := p.cur.Peek()
		if tok.Kind != token.Operator {
			return lhs, nil
		}

		op := tok.Str[0]
		prec, known := p.binPrec[op]
		if !known || prec < minPrec {
			return lhs, nil
		}

		line := tok.Line
		p.cur.Next()

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		// If the next operator binds tighter than this one, let it grab
		// rhs first.
		nextTok := p.cur.Peek()
		if nextTok.Kind == token.Operator {
			nextPrec, nextKnown := p.binPrec[nextTok.Str[0]]
			if nextKnown && nextPrec > prec {
				rhs, err = p.parseBinOpRHS(prec+1, rhs)
				if err != nil {
					return nil, err
				}
			}
		}

		if op == '=' {
			varExpr, ok := lhs.(*ast.VariableExpr)
			if !ok {
				return nil, &ParseError{Line: line, Msg: "destination of '=' must be a variable"}
			}
			lhs = &ast.AssignExpr{Name: varExpr.Name, Value: rhs, Line: line}
		} else {
			lhs = &ast.BinaryExpr{Op: op, LHS: lhs, RHS: rhs, Line: line}
		}
	}
}

// parseUnary parses an optional leading user-defined unary operator
// followed by a primary expression. A leading operator character that
// isn't a known unary operator falls through to parsePrimary, which
// rejects it as an unexpected token, so `-1` before any `unary-` is ever
// defined is a parse error rather than silently misparsed.
func (p *Parser) parseUnary() (ast.Expr, error) {
	tok := p.cur.Peek()
	if tok.Kind != token.Operator || !p.unaryOps[tok.Str[0]] {
		return p.parsePrimary()
	}

	op := tok.Str[0]
	line := tok.Line
	p.cur.Next()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &ast.UnaryExpr{Op: op, Operand: operand, Line: line}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur.Peek()

	switch tok.Kind {
	case token.Number:
		p.cur.Next()
		return &ast.NumberExpr{Value: tok.Num}, nil

	case token.OpenParen:
		p.cur.Next()
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.CloseParen); err != nil {
			return nil, err
		}
		return expr, nil

	case token.Identifier:
		return p.parseIdentifierExpr()

	case token.If:
		return p.parseIf()

	case token.For:
		return p.parseFor()

	case token.VarKw:
		return p.parseVar()

	default:
		return nil, p.errorf("unexpected token %s while parsing an expression", tok.Kind)
	}
}

// parseIdentifierExpr parses a bare variable reference or a call
// `ident '(' (expr (',' expr)*)? ')'`.
func (p *Parser) parseIdentifierExpr() (ast.Expr, error) {
	tok := p.cur.Next()
	name := tok.Str

	if p.cur.Peek().Kind != token.OpenParen {
		return &ast.VariableExpr{Name: name, Line: tok.Line}, nil
	}

	p.cur.Next() // consume '('

	var args []ast.Expr
	if p.cur.Peek().Kind != token.CloseParen {
		for {
			arg, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.cur.Peek().Kind != token.Comma {
				break
			}
			p.cur.Next()
		}
	}

	if err := p.expect(token.CloseParen); err != nil {
		return nil, err
	}

	return &ast.CallExpr{Callee: name, Args: args, Line: tok.Line}, nil
}

// parseIf parses `if expr then expr else expr`.
func (p *Parser) parseIf() (ast.Expr, error) {
	line := p.cur.Next().Line // consume 'if'

	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Then); err != nil {
		return nil, err
	}
	thenBr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Else); err != nil {
		return nil, err
	}
	elseBr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	return &ast.IfExpr{Cond: cond, ThenBr: thenBr, ElseBr: elseBr, Line: line}, nil
}

// parseFor parses `for ident '=' expr ',' expr (',' expr)? in expr`.
func (p *Parser) parseFor() (ast.Expr, error) {
	line := p.cur.Next().Line // consume 'for'

	if p.cur.Peek().Kind != token.Identifier {
		return nil, p.errorf("expected loop variable name after 'for'")
	}
	varName := p.cur.Next().Str

	if p.cur.Peek().Kind != token.Operator || p.cur.Peek().Str != "=" {
		return nil, p.errorf("expected '=' after for-loop variable")
	}
	p.cur.Next()

	start, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	end, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	var step ast.Expr
	if p.cur.Peek().Kind == token.Comma {
		p.cur.Next()
		step, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(token.In); err != nil {
		return nil, err
	}

	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	return &ast.ForExpr{Var: varName, Start: start, End: end, Step: step, Body: body, Line: line}, nil
}

// parseVar parses `var ident ('=' expr)? (',' ident ('=' expr)?)* in expr`.
func (p *Parser) parseVar() (ast.Expr, error) {
	line := p.cur.Next().Line // consume 'var'

	var bindings []ast.VarBinding
	for {
		if p.cur.Peek().Kind != token.Identifier {
			return nil, p.errorf("expected identifier after 'var'")
		}
		name := p.cur.Next().Str

		var init ast.Expr
		if p.cur.Peek().Kind == token.Operator && p.cur.Peek().Str == "=" {
			p.cur.Next()
			var err error
			init, err = p.parseExpr(0)
			if err != nil {
				return nil, err
			}
		}

		bindings = append(bindings, ast.VarBinding{Name: name, Init: init})

		if p.cur.Peek().Kind != token.Comma {
			break
		}
		p.cur.Next()
	}

	if err := p.expect(token.In); err != nil {
		return nil, err
	}

	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	return &ast.VarExpr{Bindings: bindings, Body: body, Line: line}, nil
}
