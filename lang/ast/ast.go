// Package ast defines the syntax tree types consumed by the compiler, per
// spec.md §3.1. Every node carries a source span; statements and expressions
// are otherwise plain data, walked directly by the resolver and compiler
// through type switches rather than a Visitor indirection — the tree shape
// is closed and small enough that this reads more plainly.
package ast

import "github.com/kaon-lang/kaon/lang/token"

// Node is any syntax tree node.
type Node interface {
	Span() token.Span
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Chunk is the root of a parsed source file: a top-level block plus the
// source it was parsed from. The module body is itself treated as a
// function scope (so top-level `var`/`con` bindings are locals of the
// module function, not a separate global table), and Scope is filled in by
// the resolver.
type Chunk struct {
	Source *token.Source
	Block  *Block
	Scope  *FuncScope
}

func (c *Chunk) Span() token.Span { return c.Block.Span() }

// Block is an ordered sequence of statements bounded by `{` `}` (or the
// whole file, at the top level).
type Block struct {
	Stmts    []Stmt
	SpanInfo token.Span
}

func (b *Block) Span() token.Span { return b.SpanInfo }
