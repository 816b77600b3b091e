package parser

import (
	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/token"
)

// binopPriority gives each binary operator token a left/right binding power
// for precedence climbing; `or` binds loosest, `*`/`/`/`%` tightest. All of
// Kaon's binary operators are left-associative, so left == right for every
// entry (spec.md has no exponentiation operator to require a right-leaning
// pair).
var binopPriority = map[token.Token]struct{ left, right int }{
	token.EQEQ:   {3, 3},
	token.BANGEQ: {3, 3},
	token.LT:     {4, 4},
	token.LTEQ:   {4, 4},
	token.GT:     {4, 4},
	token.GTEQ:   {4, 4},
	token.PIPE:   {5, 5},
	token.CARET:  {6, 6},

	token.AMPERSAND: {7, 7},
	token.PLUS:      {8, 8},
	token.MINUS:     {8, 8},
	token.STAR:      {9, 9},
	token.SLASH:     {9, 9},
	token.PERCENT:   {9, 9},
}

const unaryPriority = 10

var binOpFromToken = map[token.Token]ast.BinOp{
	token.PLUS:      ast.OpAdd,
	token.MINUS:     ast.OpSub,
	token.STAR:      ast.OpMul,
	token.SLASH:     ast.OpDiv,
	token.PERCENT:   ast.OpMod,
	token.GT:        ast.OpGt,
	token.GTEQ:      ast.OpGte,
	token.LT:        ast.OpLt,
	token.LTEQ:      ast.OpLte,
	token.EQEQ:      ast.OpEq,
	token.BANGEQ:    ast.OpNeq,
	token.AMPERSAND: ast.OpBitAnd,
	token.PIPE:      ast.OpBitOr,
	token.CARET:     ast.OpBitXor,
}

// parseExpr parses the full expression grammar: `or` binds loosest, then
// `and`, then the binary-operator precedence ladder of binopPriority.
func (p *parser) parseExpr() ast.Expr {
	return p.parseOrExpr()
}

func (p *parser) parseOrExpr() ast.Expr {
	left := p.parseAndExpr()
	for p.tok.Kind == token.OR {
		p.advance()
		right := p.parseAndExpr()
		left = &ast.OrExpr{Lhs: left, Rhs: right, SpanInfo: left.Span().Union(right.Span())}
	}
	return left
}

func (p *parser) parseAndExpr() ast.Expr {
	left := p.parseBinExpr(0)
	for p.tok.Kind == token.AND {
		p.advance()
		right := p.parseBinExpr(0)
		left = &ast.AndExpr{Lhs: left, Rhs: right, SpanInfo: left.Span().Union(right.Span())}
	}
	return left
}

// parseBinExpr implements precedence climbing over binopPriority, for
// operators strictly tighter than priority.
func (p *parser) parseBinExpr(priority int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		prio, ok := binopPriority[p.tok.Kind]
		if !ok || prio.left <= priority {
			return left
		}
		op := p.tok.Kind
		p.advance()
		right := p.parseBinExpr(prio.right)
		left = &ast.BinExpr{
			Op:       binOpFromToken[op],
			Lhs:      left,
			Rhs:      right,
			SpanInfo: left.Span().Union(right.Span()),
		}
	}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	switch p.tok.Kind {
	case token.MINUS:
		start := p.tok.Span
		p.advance()
		x := p.parseBinExpr(unaryPriority)
		return &ast.UnaryExpr{Op: ast.OpNegate, X: x, SpanInfo: start.Union(x.Span())}
	case token.BANG, token.NOT:
		start := p.tok.Span
		p.advance()
		x := p.parseBinExpr(unaryPriority)
		return &ast.UnaryExpr{Op: ast.OpNot, X: x, SpanInfo: start.Union(x.Span())}
	default:
		return p.parsePostfixExpr()
	}
}

// parsePostfixExpr parses a primary expression followed by any chain of
// `(args)`, `[index]`, `.name` or `:name` suffixes.
func (p *parser) parsePostfixExpr() ast.Expr {
	x := p.parsePrimaryExpr()
	for {
		switch p.tok.Kind {
		case token.LPAREN:
			p.advance()
			var args []ast.Expr
			for p.tok.Kind != token.RPAREN {
				args = append(args, p.parseExpr())
				if p.tok.Kind == token.COMMA {
					p.advance()
				} else {
					break
				}
			}
			end := p.expect(token.RPAREN)
			x = &ast.FunCallExpr{Callee: x, Args: args, SpanInfo: x.Span().Union(end)}
		case token.LBRACK:
			p.advance()
			idx := p.parseExpr()
			end := p.expect(token.RBRACK)
			x = &ast.IndexExpr{Recv: x, Index: idx, SpanInfo: x.Span().Union(end)}
		case token.DOT:
			p.advance()
			name := p.parseIdent()
			x = &ast.MemberExpr{Recv: x, Name: name, SpanInfo: x.Span().Union(name.Span())}
		case token.COLON:
			// A literal never names a class, so a colon after one separates
			// a map entry's key from its value.
			switch x.(type) {
			case *ast.StringExpr, *ast.NumberExpr, *ast.BoolExpr, *ast.NilExpr, *ast.UnitExpr:
				return x
			}
			p.advance()
			name := p.parseIdent()
			x = &ast.AssocExpr{Recv: x, Name: name, SpanInfo: x.Span().Union(name.Span())}
		default:
			return x
		}
	}
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	span := p.tok.Span
	switch p.tok.Kind {
	case token.NUMBER:
		v := p.tok.Num
		p.advance()
		return &ast.NumberExpr{Value: v, SpanInfo: span}
	case token.STRING:
		v := p.tok.Lit
		p.advance()
		return &ast.StringExpr{Value: v, SpanInfo: span}
	case token.TRUE:
		p.advance()
		return &ast.BoolExpr{Value: true, SpanInfo: span}
	case token.FALSE:
		p.advance()
		return &ast.BoolExpr{Value: false, SpanInfo: span}
	case token.NIL:
		p.advance()
		return &ast.NilExpr{SpanInfo: span}
	case token.UNIT:
		p.advance()
		return &ast.UnitExpr{SpanInfo: span}
	case token.SELF:
		p.advance()
		return &ast.SelfExpr{SpanInfo: span}
	case token.IDENT:
		return p.parseIdent()
	case token.LBRACK:
		return p.parseListExpr()
	case token.LBRACE:
		return p.parseMapExpr()
	case token.FUN:
		return p.parseFunExpr()
	case token.LPAREN:
		return p.parseParenOrTupleExpr()
	default:
		p.errorf(span, "unexpected token %s in expression", p.tok.Kind)
		return &ast.NilExpr{SpanInfo: span} // unreachable: errorf panics
	}
}

func (p *parser) parseListExpr() *ast.ListExpr {
	start := p.expect(token.LBRACK)
	var items []ast.Expr
	for p.tok.Kind != token.RBRACK {
		items = append(items, p.parseExpr())
		if p.tok.Kind == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBRACK)
	return &ast.ListExpr{Items: items, SpanInfo: start.Union(end)}
}

func (p *parser) parseMapExpr() *ast.MapExpr {
	start := p.expect(token.LBRACE)
	var items []ast.MapEntry
	for p.tok.Kind != token.RBRACE {
		key := p.parseExpr()
		p.expect(token.COLON)
		val := p.parseExpr()
		items = append(items, ast.MapEntry{Key: key, Value: val})
		if p.tok.Kind == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.RBRACE)
	return &ast.MapExpr{Items: items, SpanInfo: start.Union(end)}
}

func (p *parser) parseFunExpr() *ast.FunExpr {
	start := p.expect(token.FUN)
	fn := p.parseScriptFun(nil)
	return &ast.FunExpr{Fun: fn, SpanInfo: start.Union(fn.Body.Span())}
}

// parseParenOrTupleExpr disambiguates `()` (Unit), `(expr)` (Paren) and
// `(expr, ...)` (Tuple), per spec.md §3.1.
func (p *parser) parseParenOrTupleExpr() ast.Expr {
	start := p.expect(token.LPAREN)
	if p.tok.Kind == token.RPAREN {
		end := p.tok.Span
		p.advance()
		return &ast.UnitExpr{SpanInfo: start.Union(end)}
	}
	first := p.parseExpr()
	if p.tok.Kind != token.COMMA {
		end := p.expect(token.RPAREN)
		return &ast.ParenExpr{X: first, SpanInfo: start.Union(end)}
	}
	items := []ast.Expr{first}
	for p.tok.Kind == token.COMMA {
		p.advance()
		if p.tok.Kind == token.RPAREN {
			break // trailing comma
		}
		items = append(items, p.parseExpr())
	}
	end := p.expect(token.RPAREN)
	return &ast.TupleExpr{Items: items, SpanInfo: start.Union(end)}
}
