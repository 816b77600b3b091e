package ast

import "github.com/kaon-lang/kaon/lang/token"

// IfStmt is `if cond { then } else { else_ }`, per spec.md §3.1. Else is
// nil when there is no else clause; it may itself hold a single nested
// IfStmt for `else if` chains (wrapped in a Block of one statement).
type IfStmt struct {
	Cond     Expr
	Then     *Block
	Else     *Block
	SpanInfo token.Span
}

func (s *IfStmt) Span() token.Span { return s.SpanInfo }
func (*IfStmt) stmtNode()          {}

// WhileStmt is `while cond { body }`.
type WhileStmt struct {
	Cond     Expr
	Body     *Block
	SpanInfo token.Span
}

func (s *WhileStmt) Span() token.Span { return s.SpanInfo }
func (*WhileStmt) stmtNode()          {}

// LoopStmt is `loop { body }`, an unconditional loop exited only via break.
type LoopStmt struct {
	Body     *Block
	SpanInfo token.Span
}

func (s *LoopStmt) Span() token.Span { return s.SpanInfo }
func (*LoopStmt) stmtNode()          {}

// BlockStmt is a bare `{ ... }` used as a statement; it introduces a new
// lexical scope with no other control-flow effect.
type BlockStmt struct {
	Body *Block
}

func (s *BlockStmt) Span() token.Span { return s.Body.Span() }
func (*BlockStmt) stmtNode()          {}

// VarDeclStmt is `var name [: type] = init`. Init and Type may be nil.
type VarDeclStmt struct {
	Name     *IdentExpr
	Type     Expr
	Init     Expr
	SpanInfo token.Span
}

func (s *VarDeclStmt) Span() token.Span { return s.SpanInfo }
func (*VarDeclStmt) stmtNode()          {}

// ConDeclStmt is `con name [: type] = init`, an immutable binding. Init is
// mandatory.
type ConDeclStmt struct {
	Name     *IdentExpr
	Type     Expr
	Init     Expr
	SpanInfo token.Span
}

func (s *ConDeclStmt) Span() token.Span { return s.SpanInfo }
func (*ConDeclStmt) stmtNode()          {}

// AssignStmt is `target = value`, where target is an IdentExpr, IndexExpr
// or MemberExpr.
type AssignStmt struct {
	Target   Expr
	Value    Expr
	SpanInfo token.Span
}

func (s *AssignStmt) Span() token.Span { return s.SpanInfo }
func (*AssignStmt) stmtNode()          {}

// FunAccess is the access modifier of a function or method declaration.
type FunAccess uint8

const (
	Public FunAccess = iota
	Private
)

// ScriptFun is the shared shape of a `fun` declaration or expression: a
// name (empty for anonymous function expressions), parameters with
// optional per-parameter type annotations, an optional return type, and a
// body.
type ScriptFun struct {
	Name       *IdentExpr // nil for function expressions
	Params     []*IdentExpr
	ParamTypes []Expr // parallel to Params, entries may be nil
	ReturnType Expr   // nil if unannotated
	Body       *Block
	Access     FunAccess
	Scope      *FuncScope // filled in by the resolver
}

// FunStmt is `fun name(params) { body }`.
type FunStmt struct {
	Fun      *ScriptFun
	SpanInfo token.Span
}

func (s *FunStmt) Span() token.Span { return s.SpanInfo }
func (*FunStmt) stmtNode()          {}

// Class is the body of a `class` declaration: an optional parent, fields,
// methods and constructors.
type Class struct {
	Name         *IdentExpr
	Parent       *IdentExpr // nil if no "extends" clause
	Fields       []*VarDeclStmt
	Methods      []*FunStmt
	Constructors []*ConstructorStmt
}

// ClassStmt is `class Name [: Parent] { ... }`.
type ClassStmt struct {
	Class    *Class
	SpanInfo token.Span
}

func (s *ClassStmt) Span() token.Span { return s.SpanInfo }
func (*ClassStmt) stmtNode()          {}

// TraitMethod is a single method signature inside a `trait` declaration,
// with an optional default implementation (see SPEC_FULL.md §4.1.7).
type TraitMethod struct {
	Name    *IdentExpr
	Params  []*IdentExpr
	Default *Block // nil if the trait leaves this method abstract
	Scope   *FuncScope // filled in by the resolver, only when Default != nil
}

// Trait is the body of a `trait` declaration.
type Trait struct {
	Name     *IdentExpr
	Methods  []*TraitMethod
	SpanInfo token.Span
}

// TraitStmt is `trait Name { ... }`.
type TraitStmt struct {
	Trait *Trait
}

func (s *TraitStmt) Span() token.Span { return s.Trait.SpanInfo }
func (*TraitStmt) stmtNode()          {}

// ConstructorStmt is `constructor name(params) { body }` inside a class
// body.
type ConstructorStmt struct {
	Name     *IdentExpr
	Params   []*IdentExpr
	Body     *Block
	SpanInfo token.Span
	Scope    *FuncScope // filled in by the resolver
}

func (s *ConstructorStmt) Span() token.Span { return s.SpanInfo }
func (*ConstructorStmt) stmtNode()          {}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	Value    Expr // nil for bare `return`
	SpanInfo token.Span
}

func (s *ReturnStmt) Span() token.Span { return s.SpanInfo }
func (*ReturnStmt) stmtNode()          {}

// BreakStmt is `break`.
type BreakStmt struct {
	SpanInfo token.Span
}

func (s *BreakStmt) Span() token.Span { return s.SpanInfo }
func (*BreakStmt) stmtNode()          {}

// ContinueStmt is `continue`.
type ContinueStmt struct {
	SpanInfo token.Span
}

func (s *ContinueStmt) Span() token.Span { return s.SpanInfo }
func (*ContinueStmt) stmtNode()          {}

// ImportStmt is `import expr`.
type ImportStmt struct {
	Path     Expr
	SpanInfo token.Span
}

func (s *ImportStmt) Span() token.Span { return s.SpanInfo }
func (*ImportStmt) stmtNode()          {}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Span() token.Span { return s.X.Span() }
func (*ExprStmt) stmtNode()          {}

// BadStmt is a placeholder for a span the parser could not make sense of; it
// is never emitted by a syntactically valid program and the compiler refuses
// to compile a tree containing one.
type BadStmt struct {
	SpanInfo token.Span
}

func (s *BadStmt) Span() token.Span { return s.SpanInfo }
func (*BadStmt) stmtNode()          {}
