package ast

import "github.com/kaon-lang/kaon/lang/token"

// BinOp is a binary operator, per spec.md §3.1: "+ - * / % > >= < <= == != & | ^".
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpGt
	OpGte
	OpLt
	OpLte
	OpEq
	OpNeq
	OpBitAnd
	OpBitOr
	OpBitXor
)

// UnaryOp is a unary operator: `-`, `!`.
type UnaryOp uint8

const (
	OpNegate UnaryOp = iota
	OpNot
)

// NumberExpr is a numeric literal. The lexical text is kept for diagnostics
// as well as the parsed value.
type NumberExpr struct {
	Value    float64
	SpanInfo token.Span
}

func (e *NumberExpr) Span() token.Span { return e.SpanInfo }
func (*NumberExpr) exprNode()          {}

// StringExpr is a string literal; Value is already unescaped.
type StringExpr struct {
	Value    string
	SpanInfo token.Span
}

func (e *StringExpr) Span() token.Span { return e.SpanInfo }
func (*StringExpr) exprNode()          {}

// BoolExpr is `true` or `false`.
type BoolExpr struct {
	Value    bool
	SpanInfo token.Span
}

func (e *BoolExpr) Span() token.Span { return e.SpanInfo }
func (*BoolExpr) exprNode()          {}

// UnitExpr is the `()` literal.
type UnitExpr struct {
	SpanInfo token.Span
}

func (e *UnitExpr) Span() token.Span { return e.SpanInfo }
func (*UnitExpr) exprNode()          {}

// NilExpr is the `nil` literal.
type NilExpr struct {
	SpanInfo token.Span
}

func (e *NilExpr) Span() token.Span { return e.SpanInfo }
func (*NilExpr) exprNode()          {}

// SelfExpr is the `self` keyword, valid only inside methods and
// constructors, where it is bound as an implicit local named "self".
type SelfExpr struct {
	SpanInfo token.Span
	Binding  *Binding // set by the resolver
}

func (e *SelfExpr) Span() token.Span { return e.SpanInfo }
func (*SelfExpr) exprNode()          {}

// Binding classifies how an IdentExpr resolves; filled in by the resolver
// (lang/resolver), consumed by the compiler. It is intentionally declared
// here (not in lang/resolver) so ast has no dependency on resolver.
type BindingKind uint8

const (
	BindUnresolved BindingKind = iota
	BindLocal
	BindUpvalue
	BindGlobal
)

// Binding is the resolution result attached to an IdentExpr by the
// resolver.
type Binding struct {
	Kind  BindingKind
	Index int // local slot, upvalue index, or -1 for BindGlobal (name is used instead)
	Const bool
}

// IdentExpr is a bare identifier reference.
type IdentExpr struct {
	Name     string
	SpanInfo token.Span
	Binding  *Binding // set by the resolver
}

func (e *IdentExpr) Span() token.Span { return e.SpanInfo }
func (*IdentExpr) exprNode()          {}

// BinExpr is `lhs op rhs`.
type BinExpr struct {
	Op       BinOp
	Lhs, Rhs Expr
	SpanInfo token.Span
}

func (e *BinExpr) Span() token.Span { return e.SpanInfo }
func (*BinExpr) exprNode()          {}

// UnaryExpr is `op expr`.
type UnaryExpr struct {
	Op       UnaryOp
	X        Expr
	SpanInfo token.Span
}

func (e *UnaryExpr) Span() token.Span { return e.SpanInfo }
func (*UnaryExpr) exprNode()          {}

// IndexExpr is `recv[idx]`.
type IndexExpr struct {
	Recv, Index Expr
	SpanInfo    token.Span
}

func (e *IndexExpr) Span() token.Span { return e.SpanInfo }
func (*IndexExpr) exprNode()          {}

// ParenExpr is `(expr)`.
type ParenExpr struct {
	X        Expr
	SpanInfo token.Span
}

func (e *ParenExpr) Span() token.Span { return e.SpanInfo }
func (*ParenExpr) exprNode()          {}

// ListExpr is `[a, b, c]`.
type ListExpr struct {
	Items    []Expr
	SpanInfo token.Span
}

func (e *ListExpr) Span() token.Span { return e.SpanInfo }
func (*ListExpr) exprNode()          {}

// TupleExpr is `(a, b, c)`.
type TupleExpr struct {
	Items    []Expr
	SpanInfo token.Span
}

func (e *TupleExpr) Span() token.Span { return e.SpanInfo }
func (*TupleExpr) exprNode()          {}

// MapEntry is one `key: value` pair of a map literal.
type MapEntry struct {
	Key, Value Expr
}

// MapExpr is `{ key: value, ... }`, an ordered sequence of entries (order
// preserved for display per spec.md §3.3/§4.3).
type MapExpr struct {
	Items    []MapEntry
	SpanInfo token.Span
}

func (e *MapExpr) Span() token.Span { return e.SpanInfo }
func (*MapExpr) exprNode()          {}

// OrExpr is `lhs or rhs`, short-circuiting.
type OrExpr struct {
	Lhs, Rhs Expr
	SpanInfo token.Span
}

func (e *OrExpr) Span() token.Span { return e.SpanInfo }
func (*OrExpr) exprNode()          {}

// AndExpr is `lhs and rhs`, short-circuiting.
type AndExpr struct {
	Lhs, Rhs Expr
	SpanInfo token.Span
}

func (e *AndExpr) Span() token.Span { return e.SpanInfo }
func (*AndExpr) exprNode()          {}

// FunCallExpr is `callee(args...)`.
type FunCallExpr struct {
	Callee   Expr
	Args     []Expr
	SpanInfo token.Span
}

func (e *FunCallExpr) Span() token.Span { return e.SpanInfo }
func (*FunCallExpr) exprNode()          {}

// MemberExpr is `recv.name`.
type MemberExpr struct {
	Recv     Expr
	Name     *IdentExpr
	SpanInfo token.Span
}

func (e *MemberExpr) Span() token.Span { return e.SpanInfo }
func (*MemberExpr) exprNode()          {}

// AssocExpr is `Recv:name`, a class-qualified (unbound) member lookup.
type AssocExpr struct {
	Recv     Expr
	Name     *IdentExpr
	SpanInfo token.Span
}

func (e *AssocExpr) Span() token.Span { return e.SpanInfo }
func (*AssocExpr) exprNode()          {}

// FunExpr is an anonymous function expression, `fun(params) { body }`.
type FunExpr struct {
	Fun      *ScriptFun
	SpanInfo token.Span
}

func (e *FunExpr) Span() token.Span { return e.SpanInfo }
func (*FunExpr) exprNode()          {}

// TypePath is a (possibly qualified, though Kaon only uses single segments)
// type name appearing in an annotation.
type TypePath struct {
	Segments []string
}

// TypeExpr is a type annotation expression (parameter/return types).
// Annotations are parsed but never enforced (spec.md Non-goals: no static
// type checking); they are retained so tooling built atop this core can use
// them.
type TypeExpr struct {
	Path     TypePath
	SpanInfo token.Span
}

func (e *TypeExpr) Span() token.Span { return e.SpanInfo }
func (*TypeExpr) exprNode()          {}
