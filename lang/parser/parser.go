// Package parser implements a recursive-descent parser that turns a token
// stream from lang/scanner into the lang/ast tree consumed by the resolver
// and compiler. Lexing and parsing are explicitly out of scope for the core
// (spec.md §1: "a lexer and a parser are assumed available"), but a
// complete, runnable module needs one; this package follows the teacher's
// (github.com/mna/nenuphar) hand-written parser style: a single struct
// holding scanner + lookahead token, an expect-based token consumer, and
// panic/recover error synchronization rather than threading errors through
// every return value.
package parser

import (
	"fmt"

	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/scanner"
	"github.com/kaon-lang/kaon/lang/token"
)

// ErrorList collects parse errors in the order they were reported.
type ErrorList struct {
	Errors []Error
}

// Error is a single parse error at a source span.
type Error struct {
	Span token.Span
	Msg  string
}

func (e Error) String() string { return fmt.Sprintf("%s: %s", e.Span, e.Msg) }

func (l *ErrorList) Add(span token.Span, msg string) {
	l.Errors = append(l.Errors, Error{Span: span, Msg: msg})
}

func (l *ErrorList) Err() error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l
}

func (l *ErrorList) Error() string {
	if len(l.Errors) == 1 {
		return l.Errors[0].String()
	}
	return fmt.Sprintf("%s (and %d more errors)", l.Errors[0].String(), len(l.Errors)-1)
}

// errPanicMode is the sentinel recovered by parseStmt to resynchronize after
// a malformed statement.
var errPanicMode = fmt.Errorf("parser: panic mode")

// Parse parses src (a single source file/chunk) and returns its AST. The
// returned error, if non-nil, is an *ErrorList.
func Parse(src *token.Source) (*ast.Chunk, error) {
	var p parser
	p.init(src)
	chunk := p.parseChunk()
	return chunk, p.errors.Err()
}

type parser struct {
	src     *token.Source
	scan    scanner.Scanner
	errors  ErrorList
	tok     scanner.Token
}

func (p *parser) init(src *token.Source) {
	p.src = src
	p.scan.Init(src, p.errors.Add)
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scan.Scan()
}

// expect consumes the current token if it matches kind, reporting an error
// and entering panic mode otherwise. It returns the consumed token's span.
func (p *parser) expect(kind token.Token) token.Span {
	if p.tok.Kind != kind {
		p.errorExpected(kind)
	}
	span := p.tok.Span
	p.advance()
	return span
}

func (p *parser) at(kinds ...token.Token) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

func (p *parser) errorExpected(want token.Token) {
	p.errors.Add(p.tok.Span, fmt.Sprintf("expected %s, found %s", want, p.tok.Kind))
	panic(errPanicMode)
}

func (p *parser) errorf(span token.Span, format string, args ...any) {
	p.errors.Add(span, fmt.Sprintf(format, args...))
	panic(errPanicMode)
}

// syncToks are statement-starting tokens safe to resynchronize on after a
// parse error; each is a position we can resume parsing at, not one we
// consume first.
var syncToks = map[token.Token]bool{
	token.IF:          true,
	token.WHILE:       true,
	token.LOOP:        true,
	token.VAR:         true,
	token.CON:         true,
	token.FUN:         true,
	token.CLASS:       true,
	token.TRAIT:       true,
	token.RETURN:      true,
	token.BREAK:       true,
	token.CONTINUE:    true,
	token.IMPORT:      true,
	token.RBRACE:      true,
	token.EOF:         true,
}

// syncAfterError advances past tokens until one of syncToks is reached,
// returning the span at that point.
func (p *parser) syncAfterError() token.Span {
	for !syncToks[p.tok.Kind] {
		p.advance()
	}
	return p.tok.Span
}

func (p *parser) parseChunk() *ast.Chunk {
	block := p.parseStmtsUntil(token.EOF)
	p.expect(token.EOF)
	return &ast.Chunk{Source: p.src, Block: block}
}
