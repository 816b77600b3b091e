package ast

// UpvalueKind says whether a closure's captured upvalue is read directly
// from an enclosing function's local slot, or re-captured from an upvalue
// already held by the immediately enclosing function (spec.md §4.1.2: the
// capture descriptor is either `Local(slot)` or `NonLocal(slot)`).
type UpvalueKind uint8

const (
	UpvalueFromLocal UpvalueKind = iota
	UpvalueFromUpvalue
)

// UpvalueDesc is one entry of a function's capture list, built by the
// resolver and consumed by the compiler to emit a CLOSURE instruction's
// capture descriptors.
type UpvalueDesc struct {
	Kind  UpvalueKind
	Index int // enclosing local slot (UpvalueFromLocal) or enclosing upvalue index (UpvalueFromUpvalue)
}

// FuncScope is the resolver's summary of one function-shaped scope: a
// Chunk (the implicit top-level function), a ScriptFun, or a
// ConstructorStmt. It records how many local slots the function needs and
// what it must capture from its enclosing scope to build a Closure.
type FuncScope struct {
	NumLocals int
	// Captured[i] is true when local slot i is captured by a nested
	// function; the vm closes such a slot's upvalue when the frame returns
	// or, for a loop body's locals, at the end of each iteration.
	Captured []bool
	Upvalues []UpvalueDesc
}
