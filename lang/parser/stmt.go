package parser

import (
	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/token"
)

// parseStmtsUntil parses statements until the current token is end (not
// consumed), wrapping them in a Block spanning from the first statement (or
// the current position, if empty) to the last.
func (p *parser) parseStmtsUntil(end token.Token) *ast.Block {
	start := p.tok.Span
	var stmts []ast.Stmt
	for p.tok.Kind != end && p.tok.Kind != token.EOF {
		if stmt := p.parseStmt(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	span := start
	if len(stmts) > 0 {
		span = start.Union(stmts[len(stmts)-1].Span())
	}
	return &ast.Block{Stmts: stmts, SpanInfo: span}
}

// parseBlock parses a `{ stmts }` block.
func (p *parser) parseBlock() *ast.Block {
	lb := p.expect(token.LBRACE)
	block := p.parseStmtsUntil(token.RBRACE)
	rb := p.expect(token.RBRACE)
	block.SpanInfo = lb.Union(rb)
	return block
}

func (p *parser) parseStmt() (stmt ast.Stmt) {
	startOff := p.tok.Span.Offset
	defer func() {
		if err := recover(); err != nil {
			if err == errPanicMode {
				stmt = &ast.BadStmt{SpanInfo: p.syncAfterError()}
				// a sync token that could not start this statement (e.g. a
				// stray `}`) is skipped so the caller's loop makes progress.
				if p.tok.Span.Offset == startOff && p.tok.Kind != token.EOF {
					p.advance()
				}
				return
			}
			panic(err)
		}
	}()

	switch p.tok.Kind {
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.LOOP:
		return p.parseLoopStmt()
	case token.LBRACE:
		return &ast.BlockStmt{Body: p.parseBlock()}
	case token.VAR:
		return p.parseVarDecl()
	case token.CON:
		return p.parseConDecl()
	case token.FUN:
		return p.parseFunStmt()
	case token.CLASS:
		return p.parseClassStmt()
	case token.TRAIT:
		return p.parseTraitStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		span := p.tok.Span
		p.advance()
		return &ast.BreakStmt{SpanInfo: span}
	case token.CONTINUE:
		span := p.tok.Span
		p.advance()
		return &ast.ContinueStmt{SpanInfo: span}
	case token.IMPORT:
		return p.parseImportStmt()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	start := p.expect(token.IF)
	cond := p.parseExpr()
	then := p.parseBlock()
	stmt := &ast.IfStmt{Cond: cond, Then: then, SpanInfo: start.Union(then.Span())}
	if p.tok.Kind == token.ELSE {
		p.advance()
		if p.tok.Kind == token.IF {
			elseIf := p.parseIfStmt()
			stmt.Else = &ast.Block{Stmts: []ast.Stmt{elseIf}, SpanInfo: elseIf.Span()}
		} else {
			stmt.Else = p.parseBlock()
		}
		stmt.SpanInfo = start.Union(stmt.Else.Span())
	}
	return stmt
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	start := p.expect(token.WHILE)
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, SpanInfo: start.Union(body.Span())}
}

func (p *parser) parseLoopStmt() *ast.LoopStmt {
	start := p.expect(token.LOOP)
	body := p.parseBlock()
	return &ast.LoopStmt{Body: body, SpanInfo: start.Union(body.Span())}
}

func (p *parser) parseIdent() *ast.IdentExpr {
	span := p.tok.Span
	lit := p.tok.Lit
	p.expect(token.IDENT)
	return &ast.IdentExpr{Name: lit, SpanInfo: span}
}

// parseTypeAnnotation parses an optional `: Type` annotation, returning nil
// if none is present. Type annotations are parsed but never enforced (spec.md
// Non-goals: no static type checking).
func (p *parser) parseTypeAnnotation() ast.Expr {
	if p.tok.Kind != token.COLON {
		return nil
	}
	p.advance()
	return p.parseTypeExpr()
}

func (p *parser) parseTypeExpr() ast.Expr {
	start := p.tok.Span
	segs := []string{p.tok.Lit}
	p.expect(token.IDENT)
	last := start
	for p.tok.Kind == token.DOT {
		p.advance()
		last = p.tok.Span
		segs = append(segs, p.tok.Lit)
		p.expect(token.IDENT)
	}
	return &ast.TypeExpr{Path: ast.TypePath{Segments: segs}, SpanInfo: start.Union(last)}
}

func (p *parser) parseVarDecl() *ast.VarDeclStmt {
	start := p.expect(token.VAR)
	name := p.parseIdent()
	typ := p.parseTypeAnnotation()
	var init ast.Expr
	end := name.Span()
	if typ != nil {
		end = typ.Span()
	}
	if p.tok.Kind == token.EQ {
		p.advance()
		init = p.parseExpr()
		end = init.Span()
	}
	return &ast.VarDeclStmt{Name: name, Type: typ, Init: init, SpanInfo: start.Union(end)}
}

func (p *parser) parseConDecl() *ast.ConDeclStmt {
	start := p.expect(token.CON)
	name := p.parseIdent()
	typ := p.parseTypeAnnotation()
	p.expect(token.EQ)
	init := p.parseExpr()
	return &ast.ConDeclStmt{Name: name, Type: typ, Init: init, SpanInfo: start.Union(init.Span())}
}

// parseScriptFun parses the shared `(params) [-> type] { body }` tail of a
// function declaration or expression. name may be nil for anonymous
// functions.
func (p *parser) parseScriptFun(name *ast.IdentExpr) *ast.ScriptFun {
	p.expect(token.LPAREN)
	var params []*ast.IdentExpr
	var paramTypes []ast.Expr
	for p.tok.Kind != token.RPAREN {
		params = append(params, p.parseIdent())
		paramTypes = append(paramTypes, p.parseTypeAnnotation())
		if p.tok.Kind == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	var retType ast.Expr
	if p.tok.Kind == token.ARROW {
		p.advance()
		retType = p.parseTypeExpr()
	}
	body := p.parseBlock()
	return &ast.ScriptFun{
		Name:       name,
		Params:     params,
		ParamTypes: paramTypes,
		ReturnType: retType,
		Body:       body,
	}
}

func (p *parser) parseFunStmt() *ast.FunStmt {
	start := p.expect(token.FUN)
	name := p.parseIdent()
	fn := p.parseScriptFun(name)
	return &ast.FunStmt{Fun: fn, SpanInfo: start.Union(fn.Body.Span())}
}

func (p *parser) parseConstructorStmt() *ast.ConstructorStmt {
	start := p.expect(token.CONSTRUCTOR)
	name := p.parseIdent()
	p.expect(token.LPAREN)
	var params []*ast.IdentExpr
	for p.tok.Kind != token.RPAREN {
		params = append(params, p.parseIdent())
		if p.tok.Kind == token.COMMA {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.ConstructorStmt{Name: name, Params: params, Body: body, SpanInfo: start.Union(body.Span())}
}

func (p *parser) parseClassStmt() *ast.ClassStmt {
	start := p.expect(token.CLASS)
	name := p.parseIdent()
	var parent *ast.IdentExpr
	if p.tok.Kind == token.COLON {
		p.advance()
		parent = p.parseIdent()
	}
	p.expect(token.LBRACE)
	class := &ast.Class{Name: name, Parent: parent}
	for p.tok.Kind != token.RBRACE && p.tok.Kind != token.EOF {
		switch p.tok.Kind {
		case token.VAR:
			class.Fields = append(class.Fields, p.parseVarDecl())
		case token.FUN:
			class.Methods = append(class.Methods, p.parseFunStmt())
		case token.CONSTRUCTOR:
			class.Constructors = append(class.Constructors, p.parseConstructorStmt())
		default:
			p.errorf(p.tok.Span, "expected field, method or constructor, found %s", p.tok.Kind)
		}
	}
	end := p.expect(token.RBRACE)
	return &ast.ClassStmt{Class: class, SpanInfo: start.Union(end)}
}

func (p *parser) parseTraitStmt() *ast.TraitStmt {
	start := p.expect(token.TRAIT)
	name := p.parseIdent()
	p.expect(token.LBRACE)
	trait := &ast.Trait{Name: name}
	for p.tok.Kind != token.RBRACE && p.tok.Kind != token.EOF {
		p.expect(token.FUN)
		mname := p.parseIdent()
		p.expect(token.LPAREN)
		var params []*ast.IdentExpr
		for p.tok.Kind != token.RPAREN {
			params = append(params, p.parseIdent())
			if p.tok.Kind == token.COMMA {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RPAREN)
		var def *ast.Block
		if p.tok.Kind == token.LBRACE {
			def = p.parseBlock()
		}
		trait.Methods = append(trait.Methods, &ast.TraitMethod{Name: mname, Params: params, Default: def})
	}
	end := p.expect(token.RBRACE)
	trait.SpanInfo = start.Union(end)
	return &ast.TraitStmt{Trait: trait}
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.expect(token.RETURN)
	span := start
	var val ast.Expr
	if !p.at(token.RBRACE, token.EOF) {
		val = p.parseExpr()
		span = start.Union(val.Span())
	}
	return &ast.ReturnStmt{Value: val, SpanInfo: span}
}

func (p *parser) parseImportStmt() *ast.ImportStmt {
	start := p.expect(token.IMPORT)
	path := p.parseExpr()
	return &ast.ImportStmt{Path: path, SpanInfo: start.Union(path.Span())}
}

// parseSimpleStmt parses an assignment or a bare expression statement; both
// start with an expression.
func (p *parser) parseSimpleStmt() ast.Stmt {
	x := p.parseExpr()
	if p.tok.Kind == token.EQ {
		p.advance()
		val := p.parseExpr()
		return &ast.AssignStmt{Target: x, Value: val, SpanInfo: x.Span().Union(val.Span())}
	}
	return &ast.ExprStmt{X: x}
}
