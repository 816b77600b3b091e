// Much of the compiler package is adapted from the Starlark source code:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler lowers a resolved ast.Chunk into bytecode Functions.
// Unlike github.com/mna/nenuphar's lang/compiler — which builds a control
// flow graph of basic blocks and linearizes it with a DFS pass to support
// goto-like defer/catch control transfers — Kaon's surface grammar has no
// goto, labels, defer or catch, so this package emits directly in a single
// pass, back-patching jump targets once they become known (spec.md §4.1,
// SPEC_FULL.md §4.1).
package compiler

import (
	"math"

	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/token"
)

const maxConstants = 1<<16 - 1 // wide constant/name operands are a single u16

// Compile lowers a resolved chunk (see lang/resolver) into its module
// Function. The chunk must already have been resolved successfully; Compile
// does not re-run name resolution.
func Compile(chunk *ast.Chunk) (*Function, error) {
	var c compState
	fn := c.compileFunc("<module>", nil, chunk.Scope, nil, chunk.Block.Stmts, moduleEpilogue)
	return fn, c.errors.Err()
}

// epilogueKind selects how a function's implicit trailing return is
// compiled, per spec.md §4.1.3/§4.1.4.
type epilogueKind uint8

const (
	moduleEpilogue      epilogueKind = iota // implicit `return unit`
	functionEpilogue                        // implicit `return unit`
	constructorEpilogue                     // implicit `return self` (self is local slot 0)
)

type compState struct {
	errors ast.CompileErrorList
}

// emitter holds the in-progress state for one Function (module, nested fun,
// method, or constructor). Nested functions get their own emitter, chained
// through parent for symmetry with the resolver's funcFrame chain, though
// codegen itself never needs to walk back up it: capture descriptors are
// already fully resolved by the time compileFunc runs.
type emitter struct {
	c      *compState
	parent *emitter
	fn     *Function
	scope  *ast.FuncScope

	stack         int // current operand-stack depth above the reserved locals region
	maxStack      int
	loops         []loopCtx
	localHighWater int // one past the highest local slot assigned so far
}

type loopCtx struct {
	headPC     int
	breakJumps []int
}

func (c *compState) compileFunc(name string, parent *emitter, scope *ast.FuncScope, params []*ast.IdentExpr, stmts []ast.Stmt, epilogue epilogueKind) *Function {
	fn := &Function{Name: name}
	fn.fromFuncScope(scope)
	for _, p := range params {
		fn.Params = append(fn.Params, p.Name)
	}
	fn.NumParams = len(params)
	e := &emitter{c: c, parent: parent, fn: fn, scope: scope}
	for _, s := range stmts {
		e.stmt(s)
	}
	switch epilogue {
	case constructorEpilogue:
		e.emit(LOADLOCAL, 0)
		e.emitU8(0)
		e.emit(RETURN, 0)
	default:
		e.emitConst(Constant{Kind: ConstUnit}, 0)
		e.emit(RETURN, 0)
	}
	fn.MaxStack = e.maxStack
	fn.constIndex = nil
	return fn
}

func (e *emitter) errorf(kind ast.CompileErrorKind, span token.Span, format string, args ...any) {
	e.c.errors.Add(kind, span, format, args...)
}

func (e *emitter) line(span token.Span) int32 {
	if span.Source == nil {
		return 0
	}
	line, _ := span.Source.LineCol(span.Offset)
	return int32(line)
}

// adjust tracks the operand-stack depth so Function.MaxStack can be sized;
// it does not affect codegen.
func (e *emitter) adjust(delta int) {
	e.stack += delta
	if e.stack > e.maxStack {
		e.maxStack = e.stack
	}
}

func (e *emitter) emit(op Opcode, line int32) {
	e.fn.Code = append(e.fn.Code, byte(op))
	e.fn.Lines = append(e.fn.Lines, line)
	if int(stackEffectTable[op]) != variableStackEffect {
		e.adjust(int(stackEffectTable[op]))
	}
}

func (e *emitter) emitU8(b byte) {
	e.fn.Code = append(e.fn.Code, b)
	e.fn.Lines = append(e.fn.Lines, e.fn.Lines[len(e.fn.Lines)-1])
}

func (e *emitter) emitU16(v uint16) {
	e.fn.Code = append(e.fn.Code, byte(v>>8), byte(v))
	last := e.fn.Lines[len(e.fn.Lines)-1]
	e.fn.Lines = append(e.fn.Lines, last, last)
}

// emitConst interns v in the current function's constant pool and emits
// CONST or CONSTLONG depending on the resulting index's width.
func (e *emitter) emitConst(v Constant, line int32) {
	idx := e.fn.AddConstant(v)
	if idx > maxConstants {
		e.errorf(ast.TooManyConstants, token.Span{}, "too many constants in function (max %d)", maxConstants)
		idx = 0
	}
	if idx < 256 {
		e.emit(CONST, line)
		e.emitU8(byte(idx))
	} else {
		e.emit(CONSTLONG, line)
		e.emitU16(uint16(idx))
	}
}

// nameConst interns name as a string constant and returns its index for use
// as a GETPROP/SETPROP/GETGLOBAL/... operand (always u16-wide, see isWide
// in opcode.go).
func (e *emitter) nameConst(name string) uint16 {
	idx := e.fn.AddConstant(Constant{Kind: ConstString, Str: name})
	if idx > maxConstants {
		e.errorf(ast.TooManyConstants, token.Span{}, "too many constants in function (max %d)", maxConstants)
		idx = 0
	}
	return uint16(idx)
}

func (e *emitter) emitJump(op Opcode, line int32) int {
	e.emit(op, line)
	pos := len(e.fn.Code)
	e.emitU16(0)
	return pos
}

func (e *emitter) patchJump(pos int) {
	offset := len(e.fn.Code) - (pos + 2)
	e.fn.Code[pos] = byte(uint16(offset) >> 8)
	e.fn.Code[pos+1] = byte(uint16(offset))
}

func (e *emitter) emitLoop(headPC int, line int32) {
	e.emit(LOOP, line)
	pos := len(e.fn.Code)
	e.emitU16(0)
	offset := (pos + 2) - headPC
	e.fn.Code[pos] = byte(uint16(offset) >> 8)
	e.fn.Code[pos+1] = byte(uint16(offset))
}

func (e *emitter) pc() int { return len(e.fn.Code) }

// trackLocal records that slot has been assigned, so a later loop body can
// tell which of the slots it declared (trackLocal called anywhere between
// the loop's before/after snapshots) need closing on every iteration.
func (e *emitter) trackLocal(slot int) {
	if slot+1 > e.localHighWater {
		e.localHighWater = slot + 1
	}
}

// closeLoopLocals emits CLOSEUPVAL for every local slot first assigned in
// [from, e.localHighWater) that scope.Captured marks as captured by a
// nested closure. A while/loop body is compiled once but its declarations
// re-execute every iteration on the same fixed slot (frame-style storage
// never allocates a fresh slot per iteration), so without this a closure
// formed in iteration N would keep observing writes from iteration N+1
// onward instead of the value live when it was created.
func (e *emitter) closeLoopLocals(from int, line int32) {
	for slot := from; slot < e.localHighWater; slot++ {
		if slot < len(e.scope.Captured) && e.scope.Captured[slot] {
			e.emit(CLOSEUPVAL, line)
			e.emitU8(byte(slot))
		}
	}
}

// ---- statements ----

func (e *emitter) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		e.stmt(s)
	}
}

func (e *emitter) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.IfStmt:
		e.ifStmt(s)
	case *ast.WhileStmt:
		e.whileStmt(s)
	case *ast.LoopStmt:
		e.loopStmt(s)
	case *ast.BlockStmt:
		e.stmts(s.Body.Stmts)
	case *ast.VarDeclStmt:
		e.declStmt(s.Init, s.Name, s.SpanInfo)
	case *ast.ConDeclStmt:
		e.declStmt(s.Init, s.Name, s.SpanInfo)
	case *ast.AssignStmt:
		e.assignStmt(s)
	case *ast.FunStmt:
		e.funDecl(s.Fun)
	case *ast.ClassStmt:
		e.classDecl(s.Class)
	case *ast.TraitStmt:
		e.traitDecl(s.Trait)
	case *ast.ReturnStmt:
		if s.Value != nil {
			e.expr(s.Value)
		} else {
			e.emitConst(Constant{Kind: ConstUnit}, e.line(s.SpanInfo))
		}
		e.emit(RETURN, e.line(s.SpanInfo))
	case *ast.BreakStmt:
		loop := &e.loops[len(e.loops)-1]
		loop.breakJumps = append(loop.breakJumps, e.emitJump(JUMP, e.line(s.SpanInfo)))
	case *ast.ContinueStmt:
		loop := &e.loops[len(e.loops)-1]
		e.emitLoop(loop.headPC, e.line(s.SpanInfo))
	case *ast.ImportStmt:
		e.expr(s.Path)
		e.emit(POP, e.line(s.SpanInfo))
	case *ast.ExprStmt:
		e.expr(s.X)
		e.emit(POP, e.line(s.X.Span()))
	case *ast.BadStmt:
		e.errorf(ast.UndefinedName, s.SpanInfo, "refusing to compile a syntax error")
	}
}

// declStmt compiles `var`/`con name = init`. The local's storage is a fixed
// frame slot reserved for the whole function's lifetime (resolver slots are
// never reused across sibling blocks, see lang/resolver's funcFrame.addLocal),
// so initialization is just: compute the value on the temp operand stack,
// then SAVELOCAL pops it into that slot.
func (e *emitter) declStmt(init ast.Expr, name *ast.IdentExpr, span token.Span) {
	if init != nil {
		e.expr(init)
	} else {
		e.emitConst(Constant{Kind: ConstNil}, e.line(span))
	}
	e.emit(SAVELOCAL, e.line(span))
	e.emitU8(byte(name.Binding.Index))
	e.trackLocal(name.Binding.Index)
}

func (e *emitter) ifStmt(s *ast.IfStmt) {
	line := e.line(s.SpanInfo)
	e.expr(s.Cond)
	elseJump := e.emitJump(JUMPFALSE, line)
	e.stmts(s.Then.Stmts)
	if s.Else != nil {
		endJump := e.emitJump(JUMP, line)
		e.patchJump(elseJump)
		e.stmts(s.Else.Stmts)
		e.patchJump(endJump)
	} else {
		e.patchJump(elseJump)
	}
}

func (e *emitter) whileStmt(s *ast.WhileStmt) {
	line := e.line(s.SpanInfo)
	head := e.pc()
	e.expr(s.Cond)
	exitJump := e.emitJump(JUMPFALSE, line)
	e.loops = append(e.loops, loopCtx{headPC: head})
	localsBefore := e.localHighWater
	e.stmts(s.Body.Stmts)
	e.closeLoopLocals(localsBefore, line)
	loop := e.loops[len(e.loops)-1]
	e.loops = e.loops[:len(e.loops)-1]
	e.emitLoop(head, line)
	e.patchJump(exitJump)
	for _, pos := range loop.breakJumps {
		e.patchJump(pos)
	}
}

func (e *emitter) loopStmt(s *ast.LoopStmt) {
	line := e.line(s.SpanInfo)
	head := e.pc()
	e.loops = append(e.loops, loopCtx{headPC: head})
	localsBefore := e.localHighWater
	e.stmts(s.Body.Stmts)
	e.closeLoopLocals(localsBefore, line)
	loop := e.loops[len(e.loops)-1]
	e.loops = e.loops[:len(e.loops)-1]
	e.emitLoop(head, line)
	for _, pos := range loop.breakJumps {
		e.patchJump(pos)
	}
}

func (e *emitter) assignStmt(s *ast.AssignStmt) {
	line := e.line(s.SpanInfo)
	switch t := s.Target.(type) {
	case *ast.IdentExpr:
		e.expr(s.Value)
		e.storeBinding(t.Binding, t.Name, line)
	case *ast.IndexExpr:
		e.expr(t.Recv)
		e.expr(t.Index)
		e.expr(s.Value)
		e.emit(SETINDEX, line)
	case *ast.MemberExpr:
		e.expr(t.Recv)
		e.expr(s.Value)
		e.emit(SETPROP, line)
		e.emitU16(e.nameConst(t.Name.Name))
	}
}

func (e *emitter) storeBinding(b *ast.Binding, name string, line int32) {
	switch b.Kind {
	case ast.BindLocal:
		e.emit(SAVELOCAL, line)
		e.emitU8(byte(b.Index))
		e.trackLocal(b.Index)
	case ast.BindUpvalue:
		e.emit(SETUPVAL, line)
		e.emitU8(byte(b.Index))
	case ast.BindGlobal:
		e.emit(SETGLOBAL, line)
		e.emitU16(e.nameConst(name))
	}
}

func (e *emitter) funDecl(fn *ast.ScriptFun) {
	line := e.line(fn.Name.SpanInfo)
	e.closure(fn.Name.Name, fn.Scope, fn.Params, fn.Body.Stmts, functionEpilogue, line)
	e.storeBinding(fn.Name.Binding, fn.Name.Name, line)
}

// closure compiles a nested function body into its own Function (added as a
// ConstFunc constant of the enclosing function) and emits the CLOSURE
// instruction plus its capture descriptors (spec.md §4.1.4).
func (e *emitter) closure(name string, scope *ast.FuncScope, params []*ast.IdentExpr, stmts []ast.Stmt, epilogue epilogueKind, line int32) {
	nested := e.c.compileFunc(name, e, scope, params, stmts, epilogue)
	idx := e.fn.AddConstant(Constant{Kind: ConstFunc, Func: nested})
	e.emit(CLOSURE, line)
	e.adjust(1)
	e.emitU16(uint16(idx))
	for _, cp := range nested.Captures {
		e.emitU8(byte(cp.Kind))
		e.emitU8(byte(cp.Index))
	}
}

// traitDecl compiles a trait declaration into a class-shaped value with no
// parent and no constructors: a CLASS instruction followed by one DEFMETHOD
// per method that supplies a default body (SPEC_FULL.md §4.1.7). Methods
// left abstract (no default) are not registered, so vm reports
// UndefinedMember if an implementing class never supplies them; there is no
// "implements"/"uses" clause binding a class to a trait structurally, a
// deliberate simplification recorded in DESIGN.md.
func (e *emitter) traitDecl(t *ast.Trait) {
	line := e.line(t.SpanInfo)
	e.emit(CLASS, line)
	e.emitU16(e.nameConst(t.Name.Name))
	for _, m := range t.Methods {
		if m.Default == nil {
			continue
		}
		e.closure(m.Name.Name, m.Scope, m.Params, m.Default.Stmts, functionEpilogue, line)
		e.emit(DEFMETHOD, line)
		e.emitU16(e.nameConst(m.Name.Name))
	}
	e.storeBinding(t.Name.Binding, t.Name.Name, line)
}

func (e *emitter) classDecl(cl *ast.Class) {
	line := e.line(cl.Name.SpanInfo)
	e.emit(CLASS, line)
	e.emitU16(e.nameConst(cl.Name.Name))
	if cl.Parent != nil {
		e.expr(cl.Parent)
		e.emit(INHERIT, line)
	}
	for _, f := range cl.Fields {
		if f.Init != nil {
			e.expr(f.Init)
		} else {
			e.emitConst(Constant{Kind: ConstNil}, line)
		}
		e.emit(DEFFIELD, line)
		e.emitU16(e.nameConst(f.Name.Name))
	}
	for _, m := range cl.Methods {
		e.closure(m.Fun.Name.Name, m.Fun.Scope, m.Fun.Params, m.Fun.Body.Stmts, functionEpilogue, line)
		e.emit(DEFMETHOD, line)
		e.emitU16(e.nameConst(m.Fun.Name.Name))
	}
	for _, ctor := range cl.Constructors {
		e.closure(ctor.Name.Name, ctor.Scope, ctor.Params, ctor.Body.Stmts, constructorEpilogue, line)
		e.emit(DEFCONSTRUCTOR, line)
		e.emitU16(e.nameConst(ctor.Name.Name))
	}
	e.storeBinding(cl.Name.Binding, cl.Name.Name, line)
}

// ---- expressions ----

func (e *emitter) expr(x ast.Expr) {
	switch x := x.(type) {
	case *ast.NumberExpr:
		e.emitConst(Constant{Kind: ConstNumber, Num: x.Value}, e.line(x.SpanInfo))
	case *ast.StringExpr:
		e.emitConst(Constant{Kind: ConstString, Str: x.Value}, e.line(x.SpanInfo))
	case *ast.BoolExpr:
		e.emitConst(Constant{Kind: ConstBool, Bool: x.Value}, e.line(x.SpanInfo))
	case *ast.UnitExpr:
		e.emitConst(Constant{Kind: ConstUnit}, e.line(x.SpanInfo))
	case *ast.NilExpr:
		e.emitConst(Constant{Kind: ConstNil}, e.line(x.SpanInfo))
	case *ast.SelfExpr:
		e.loadBinding(x.Binding, "self", e.line(x.SpanInfo))
	case *ast.IdentExpr:
		e.loadBinding(x.Binding, x.Name, e.line(x.SpanInfo))
	case *ast.BinExpr:
		e.expr(x.Lhs)
		e.expr(x.Rhs)
		e.emit(binOpcode[x.Op], e.line(x.SpanInfo))
	case *ast.UnaryExpr:
		e.expr(x.X)
		if x.Op == ast.OpNegate {
			e.emit(NEGATE, e.line(x.SpanInfo))
		} else {
			e.emit(NOT, e.line(x.SpanInfo))
		}
	case *ast.IndexExpr:
		e.expr(x.Recv)
		e.expr(x.Index)
		e.emit(GETINDEX, e.line(x.SpanInfo))
	case *ast.ParenExpr:
		e.expr(x.X)
	case *ast.ListExpr:
		for _, it := range x.Items {
			e.expr(it)
		}
		e.emitCollection(MAKELIST, len(x.Items), len(x.Items), e.line(x.SpanInfo))
	case *ast.TupleExpr:
		for _, it := range x.Items {
			e.expr(it)
		}
		e.emitCollection(MAKETUPLE, len(x.Items), len(x.Items), e.line(x.SpanInfo))
	case *ast.MapExpr:
		for _, entry := range x.Items {
			e.expr(entry.Key)
			e.expr(entry.Value)
		}
		e.emitCollection(MAKEMAP, len(x.Items), 2*len(x.Items), e.line(x.SpanInfo))
	case *ast.OrExpr:
		e.expr(x.Lhs)
		line := e.line(x.SpanInfo)
		end := e.emitJump(JUMPIFTRUE, line)
		e.emit(POP, line)
		e.expr(x.Rhs)
		e.patchJump(end)
	case *ast.AndExpr:
		e.expr(x.Lhs)
		line := e.line(x.SpanInfo)
		end := e.emitJump(JUMPIFFALSE, line)
		e.emit(POP, line)
		e.expr(x.Rhs)
		e.patchJump(end)
	case *ast.FunCallExpr:
		e.expr(x.Callee)
		for _, a := range x.Args {
			e.expr(a)
		}
		line := e.line(x.SpanInfo)
		e.emit(CALL, line)
		e.emitU8(byte(len(x.Args)))
		e.adjust(-len(x.Args)) // pop callee+args, push one result (net already -len(args) from args; account callee+result here)
	case *ast.MemberExpr:
		e.expr(x.Recv)
		e.emit(GETPROP, e.line(x.SpanInfo))
		e.emitU16(e.nameConst(x.Name.Name))
	case *ast.AssocExpr:
		e.expr(x.Recv)
		e.emit(GETASSOC, e.line(x.SpanInfo))
		e.emitU16(e.nameConst(x.Name.Name))
	case *ast.FunExpr:
		e.closure(anonName, x.Fun.Scope, x.Fun.Params, x.Fun.Body.Stmts, functionEpilogue, e.line(x.SpanInfo))
	case *ast.TypeExpr:
		// type annotations never reach codegen
	}
}

const anonName = "<anonymous>"

func (e *emitter) loadBinding(b *ast.Binding, name string, line int32) {
	switch b.Kind {
	case ast.BindLocal:
		e.emit(LOADLOCAL, line)
		e.emitU8(byte(b.Index))
	case ast.BindUpvalue:
		e.emit(GETUPVAL, line)
		e.emitU8(byte(b.Index))
	case ast.BindGlobal:
		e.emit(GETGLOBAL, line)
		e.emitU16(e.nameConst(name))
	}
}

// emitCollection emits a MAKE* opcode. n is the operand (element count for
// MAKELIST/MAKETUPLE, entry count for MAKEMAP); popCount is how many values
// it actually pops off the stack (n for list/tuple, 2*n for a map's
// key/value pairs) — tracked manually since the true effect depends on a
// runtime operand, not the fixed per-opcode stackEffectTable.
func (e *emitter) emitCollection(op Opcode, n, popCount int, line int32) {
	e.emit(op, line)
	if n > math.MaxUint8 {
		n = math.MaxUint8 // collection literals this large are not expected in practice
	}
	e.emitU8(byte(n))
	e.adjust(-popCount + 1)
}

var binOpcode = [...]Opcode{
	ast.OpAdd:    ADD,
	ast.OpSub:    SUB,
	ast.OpMul:    MUL,
	ast.OpDiv:    DIV,
	ast.OpMod:    MOD,
	ast.OpGt:     GT,
	ast.OpGte:    GTE,
	ast.OpLt:     LT,
	ast.OpLte:    LTE,
	ast.OpEq:     EQL,
	ast.OpNeq:    NEQ,
	ast.OpBitAnd: BITAND,
	ast.OpBitOr:  BITOR,
	ast.OpBitXor: BITXOR,
}
