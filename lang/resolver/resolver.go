// Package resolver implements scope resolution over a parsed ast.Chunk: it
// classifies every identifier as a local, a captured upvalue, or a global,
// and builds the capture-descriptor lists the compiler needs to emit
// CLOSURE instructions (spec.md §4.1.2). It is adapted from the scope
// analysis of github.com/mna/nenuphar's lang/resolver — the same
// block/function-frame chain and bind/use shape — simplified for a language
// with no goto, labels, defer or catch, and generalized from the teacher's
// single-level Cell/Free promotion to full multi-level upvalue chains so a
// deeply nested closure can re-capture across more than one enclosing
// function.
package resolver

import (
	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/token"
)

const maxLocals = 256 // LoadLocal/SaveLocal operands are a single u8 (spec.md §4.2.2)

// IsGlobal reports whether name is a valid global binding (typically a
// native function or host-registered value); the resolver consults it for
// any identifier not found in the local/upvalue chain.
type IsGlobal func(name string) bool

// Resolve resolves every identifier in chunk, attaching an *ast.Binding to
// each ast.IdentExpr reference and an *ast.FuncScope to chunk and every
// nested ScriptFun/ConstructorStmt. The returned error, if non-nil, is an
// *ast.CompileErrorList.
func Resolve(chunk *ast.Chunk, isGlobal IsGlobal) error {
	var r resolver
	r.isGlobal = isGlobal
	if isGlobal == nil {
		r.isGlobal = func(string) bool { return false }
	}
	r.resolveChunk(chunk)
	return r.errors.Err()
}

// funcFrame tracks one function-shaped scope: the module chunk, a
// ScriptFun, or a ConstructorStmt.
type funcFrame struct {
	parent    *funcFrame
	scope     *ast.FuncScope
	loopDepth int
	// upvalueKeys mirrors scope.Upvalues, recording the (kind, index) pair
	// already captured so a second reference to the same enclosing variable
	// reuses the existing upvalue slot instead of creating a duplicate.
	upvalueKeys []ast.UpvalueDesc
}

func (f *funcFrame) addLocal() int {
	idx := f.scope.NumLocals
	f.scope.NumLocals++
	f.scope.Captured = append(f.scope.Captured, false)
	return idx
}

// addUpvalue returns the index of an upvalue in f matching desc, creating
// one if none exists yet.
func (f *funcFrame) addUpvalue(desc ast.UpvalueDesc) int {
	for i, existing := range f.upvalueKeys {
		if existing == desc {
			return i
		}
	}
	idx := len(f.upvalueKeys)
	f.upvalueKeys = append(f.upvalueKeys, desc)
	f.scope.Upvalues = append(f.scope.Upvalues, desc)
	return idx
}

// block is one lexical block (chunk top level, function body, if/while/loop
// body, bare block statement). Blocks chain across function boundaries: a
// nested function's root block's parent is the block active where the
// function was declared, which is how use() walks outward to find captured
// variables.
type block struct {
	parent *block
	fn     *funcFrame
	names  map[string]*ast.Binding
	isLoop bool
}

type resolver struct {
	env      *block
	errors   ast.CompileErrorList
	isGlobal IsGlobal
}

func (r *resolver) push(b *block) {
	if b.fn == nil {
		b.fn = r.env.fn
	}
	b.parent = r.env
	b.names = make(map[string]*ast.Binding)
	r.env = b
}

func (r *resolver) pop() {
	r.env = r.env.parent
}

func (r *resolver) errorf(kind ast.CompileErrorKind, span token.Span, format string, args ...any) {
	r.errors.Add(kind, span, format, args...)
}

func (r *resolver) resolveChunk(chunk *ast.Chunk) {
	scope := &ast.FuncScope{}
	chunk.Scope = scope
	frame := &funcFrame{scope: scope}
	r.push(&block{fn: frame})
	r.stmts(chunk.Block.Stmts)
	r.pop()
}

func (r *resolver) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.stmt(s)
	}
}

func (r *resolver) blockStmt(b *ast.Block) {
	r.push(&block{})
	r.stmts(b.Stmts)
	r.pop()
}

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.IfStmt:
		r.expr(s.Cond)
		r.blockStmt(s.Then)
		if s.Else != nil {
			r.blockStmt(s.Else)
		}
	case *ast.WhileStmt:
		r.expr(s.Cond)
		r.env.fn.loopDepth++
		r.push(&block{isLoop: true})
		r.stmts(s.Body.Stmts)
		r.pop()
		r.env.fn.loopDepth--
	case *ast.LoopStmt:
		r.env.fn.loopDepth++
		r.push(&block{isLoop: true})
		r.stmts(s.Body.Stmts)
		r.pop()
		r.env.fn.loopDepth--
	case *ast.BlockStmt:
		r.blockStmt(s.Body)
	case *ast.VarDeclStmt:
		if s.Type != nil {
			r.expr(s.Type)
		}
		if s.Init != nil {
			r.expr(s.Init)
		}
		r.bind(s.Name, false)
	case *ast.ConDeclStmt:
		if s.Type != nil {
			r.expr(s.Type)
		}
		r.expr(s.Init)
		r.bind(s.Name, true)
	case *ast.AssignStmt:
		r.expr(s.Value)
		r.assignTarget(s.Target)
	case *ast.FunStmt:
		r.bind(s.Fun.Name, true)
		r.function(s.Fun)
	case *ast.ClassStmt:
		r.bind(s.Class.Name, true)
		r.class(s.Class)
	case *ast.TraitStmt:
		r.bind(s.Trait.Name, true)
		r.trait(s.Trait)
	case *ast.ReturnStmt:
		if s.Value != nil {
			r.expr(s.Value)
		}
	case *ast.BreakStmt:
		if r.env.fn.loopDepth == 0 {
			r.errorf(ast.BreakOutsideLoop, s.SpanInfo, "break outside of a loop")
		}
	case *ast.ContinueStmt:
		if r.env.fn.loopDepth == 0 {
			r.errorf(ast.ContinueOutsideLoop, s.SpanInfo, "continue outside of a loop")
		}
	case *ast.ImportStmt:
		r.expr(s.Path)
	case *ast.ExprStmt:
		r.expr(s.X)
	case *ast.BadStmt:
		// already reported by the parser
	}
}

func (r *resolver) assignTarget(target ast.Expr) {
	switch t := target.(type) {
	case *ast.IdentExpr:
		r.use(t)
		if t.Binding != nil && t.Binding.Const {
			r.errorf(ast.AssignToConst, t.SpanInfo, "cannot assign to immutable binding %q", t.Name)
		}
	case *ast.IndexExpr:
		r.expr(t.Recv)
		r.expr(t.Index)
	case *ast.MemberExpr:
		r.expr(t.Recv)
	default:
		r.errorf(ast.InvalidAssignmentTarget, target.Span(), "invalid assignment target")
	}
}

func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.NumberExpr, *ast.StringExpr, *ast.BoolExpr, *ast.UnitExpr, *ast.NilExpr:
		// leaves, nothing to resolve
	case *ast.SelfExpr:
		e.Binding = r.resolveName("self", e.SpanInfo)
	case *ast.IdentExpr:
		r.use(e)
	case *ast.BinExpr:
		r.expr(e.Lhs)
		r.expr(e.Rhs)
	case *ast.UnaryExpr:
		r.expr(e.X)
	case *ast.IndexExpr:
		r.expr(e.Recv)
		r.expr(e.Index)
	case *ast.ParenExpr:
		r.expr(e.X)
	case *ast.ListExpr:
		for _, it := range e.Items {
			r.expr(it)
		}
	case *ast.TupleExpr:
		for _, it := range e.Items {
			r.expr(it)
		}
	case *ast.MapExpr:
		for _, entry := range e.Items {
			r.expr(entry.Key)
			r.expr(entry.Value)
		}
	case *ast.OrExpr:
		r.expr(e.Lhs)
		r.expr(e.Rhs)
	case *ast.AndExpr:
		r.expr(e.Lhs)
		r.expr(e.Rhs)
	case *ast.FunCallExpr:
		r.expr(e.Callee)
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.MemberExpr:
		r.expr(e.Recv)
	case *ast.AssocExpr:
		r.expr(e.Recv)
	case *ast.FunExpr:
		r.function(e.Fun)
	case *ast.TypeExpr:
		// type annotations are not resolved against bindings (spec.md
		// Non-goals: no static type checking)
	}
}

// function resolves a ScriptFun (declaration or expression): parameters
// become locals of a new function frame, bound before the body is walked.
func (r *resolver) function(fn *ast.ScriptFun) {
	scope := &ast.FuncScope{}
	fn.Scope = scope
	frame := &funcFrame{parent: r.env.fn, scope: scope}
	r.push(&block{fn: frame})
	for i, p := range fn.Params {
		r.bind(p, false)
		if fn.ParamTypes[i] != nil {
			r.expr(fn.ParamTypes[i])
		}
	}
	if fn.ReturnType != nil {
		r.expr(fn.ReturnType)
	}
	r.stmts(fn.Body.Stmts)
	r.pop()
}

// constructor resolves a ConstructorStmt. self occupies local slot 0, ahead
// of its declared parameters.
func (r *resolver) constructor(c *ast.ConstructorStmt) {
	scope := &ast.FuncScope{}
	c.Scope = scope
	frame := &funcFrame{parent: r.env.fn, scope: scope}
	r.push(&block{fn: frame})
	r.bindSelf()
	for _, p := range c.Params {
		r.bind(p, false)
	}
	r.stmts(c.Body.Stmts)
	r.pop()
}

func (r *resolver) class(cl *ast.Class) {
	if cl.Parent != nil {
		r.use(cl.Parent)
	}
	seen := make(map[string]bool)
	for _, f := range cl.Fields {
		if f.Init != nil {
			r.expr(f.Init)
		}
		if seen[f.Name.Name] {
			r.errorf(ast.DuplicateField, f.Name.SpanInfo, "duplicate field %q", f.Name.Name)
		}
		seen[f.Name.Name] = true
	}
	for _, m := range cl.Methods {
		// methods run with self occupying local slot 0, like constructors
		scope := &ast.FuncScope{}
		m.Fun.Scope = scope
		frame := &funcFrame{parent: r.env.fn, scope: scope}
		r.push(&block{fn: frame})
		r.bindSelf()
		for i, p := range m.Fun.Params {
			r.bind(p, false)
			if m.Fun.ParamTypes[i] != nil {
				r.expr(m.Fun.ParamTypes[i])
			}
		}
		r.stmts(m.Fun.Body.Stmts)
		r.pop()
	}
	for _, c := range cl.Constructors {
		r.constructor(c)
	}
}

// trait resolves each method with a default body the same way a class
// method is resolved; abstract methods (no default) declare no scope, per
// SPEC_FULL.md §4.1.7.
func (r *resolver) trait(t *ast.Trait) {
	for _, m := range t.Methods {
		if m.Default == nil {
			continue
		}
		scope := &ast.FuncScope{}
		m.Scope = scope
		frame := &funcFrame{parent: r.env.fn, scope: scope}
		r.push(&block{fn: frame})
		r.bindSelf()
		for _, p := range m.Params {
			r.bind(p, false)
		}
		r.stmts(m.Default.Stmts)
		r.pop()
	}
}

// bindSelf declares the implicit "self" local occupying slot 0 of a method
// or constructor frame.
func (r *resolver) bindSelf() {
	idx := r.env.fn.addLocal()
	r.env.names["self"] = &ast.Binding{Kind: ast.BindLocal, Index: idx, Const: true}
}

// bind declares a new local in the current block. Shadowing across nested
// blocks is allowed; redeclaring within the same block is an error.
func (r *resolver) bind(ident *ast.IdentExpr, isConst bool) {
	if _, ok := r.env.names[ident.Name]; ok {
		r.errorf(ast.DuplicateLocal, ident.SpanInfo, "already declared in this block: %s", ident.Name)
		return
	}
	if r.env.fn.scope.NumLocals >= maxLocals {
		r.errorf(ast.TooManyLocals, ident.SpanInfo, "too many locals in function (max %d)", maxLocals)
		return
	}
	idx := r.env.fn.addLocal()
	bdg := &ast.Binding{Kind: ast.BindLocal, Index: idx, Const: isConst}
	r.env.names[ident.Name] = bdg
	ident.Binding = bdg
}

// use resolves a reference to ident: a local of the current function, an
// upvalue captured from an enclosing function, or a global.
func (r *resolver) use(ident *ast.IdentExpr) {
	ident.Binding = r.resolveName(ident.Name, ident.SpanInfo)
}

// resolveName looks up name in the current block/function chain, walking
// outward: a match in the current function is a local, a match in an
// enclosing function is captured as an upvalue (building the capture chain
// through every intermediate frame), and no match at all falls back to
// isGlobal.
func (r *resolver) resolveName(name string, span token.Span) *ast.Binding {
	startFrame := r.env.fn
	for env := r.env; env != nil; env = env.parent {
		bdg, ok := env.names[name]
		if !ok {
			continue
		}
		if env.fn == startFrame {
			return bdg
		}
		idx := r.capture(startFrame, env.fn, bdg)
		return &ast.Binding{Kind: ast.BindUpvalue, Index: idx, Const: bdg.Const}
	}
	if r.isGlobal(name) {
		return &ast.Binding{Kind: ast.BindGlobal, Index: -1}
	}
	r.errorf(ast.UndefinedName, span, "undefined name: %s", name)
	return &ast.Binding{Kind: ast.BindGlobal, Index: -1}
}

// capture builds (or reuses) the chain of upvalue descriptors from declFrame
// down to frame, marking the originating local as captured. It returns the
// upvalue index in frame that closures compiled in frame should reference.
func (r *resolver) capture(frame, declFrame *funcFrame, declBdg *ast.Binding) int {
	if frame.parent == declFrame {
		declFrame.scope.Captured[declBdg.Index] = true
		return frame.addUpvalue(ast.UpvalueDesc{Kind: ast.UpvalueFromLocal, Index: declBdg.Index})
	}
	parentIdx := r.capture(frame.parent, declFrame, declBdg)
	return frame.addUpvalue(ast.UpvalueDesc{Kind: ast.UpvalueFromUpvalue, Index: parentIdx})
}
