package vm

import (
	"github.com/kaon-lang/kaon/lang/compiler"
	"github.com/kaon-lang/kaon/lang/value"
)

// frame records one active call: a running compiler.Function, its
// resolved upvalues (nil for a bare *value.Function with no captures), the
// program counter and the operand-stack index of local slot 0. Unlike the
// teacher's Frame (which stores a types.Value callable and recomputes its
// position lazily), a Kaon frame always has a concrete compiler.Function in
// hand because every Callable that reaches the call dispatch in vm.go
// (Function, Closure, Constructor body, InstanceMethod) ultimately runs
// compiled bytecode.
type frame struct {
	fn       *compiler.Function
	upvalues []*value.Cell
	ip       int
	base     int
}

func (fr *frame) line() int32 {
	if fr.ip > 0 && fr.ip <= len(fr.fn.Lines) {
		return fr.fn.Lines[fr.ip-1]
	}
	return 0
}

// openUpvalue is a node in the vm's sorted-by-descending-stack-index list
// of upvalues still pointing at a live stack slot (per spec.md §4.2.3),
// so sibling closures capturing the same local observe the same Cell
// until the frame that owns the slot returns or the loop iteration it
// belongs to ends.
type openUpvalue struct {
	stackIndex int
	cell       *value.Cell
	next       *openUpvalue
}

// findOrCreateOpenUpvalue returns the open upvalue for stackIndex, creating
// and linking a new one (sharing the live stack slot's current value) if
// none exists yet.
func (m *VM) findOrCreateOpenUpvalue(stackIndex int) *value.Cell {
	var prev *openUpvalue
	ov := m.openUpvalues
	for ov != nil && ov.stackIndex > stackIndex {
		prev = ov
		ov = ov.next
	}
	if ov != nil && ov.stackIndex == stackIndex {
		return ov.cell
	}
	cell := value.NewCell(m.stack[stackIndex])
	created := &openUpvalue{stackIndex: stackIndex, cell: cell, next: ov}
	if prev == nil {
		m.openUpvalues = created
	} else {
		prev.next = created
	}
	return cell
}

// openUpvalueAt returns the open upvalue cell backing stackIndex, or nil if
// that slot has no open upvalue. LOADLOCAL/SAVELOCAL consult this so a local
// captured by a still-live closure stays a single shared cell rather than
// diverging into a frozen copy on one side (spec.md §4.2.3's "live stack
// slot" requirement).
func (m *VM) openUpvalueAt(stackIndex int) *value.Cell {
	for ov := m.openUpvalues; ov != nil && ov.stackIndex >= stackIndex; ov = ov.next {
		if ov.stackIndex == stackIndex {
			return ov.cell
		}
	}
	return nil
}

// openUpvalueStackIndex reports the stack slot backing an already-resolved
// upvalue cell, so SETUPVAL can mirror a closure's write back onto the
// owning frame's own slot while the upvalue is still open.
func (m *VM) openUpvalueStackIndex(cell *value.Cell) (int, bool) {
	for ov := m.openUpvalues; ov != nil; ov = ov.next {
		if ov.cell == cell {
			return ov.stackIndex, true
		}
	}
	return 0, false
}

// closeUpvaluesFrom closes (detaches from the stack) every open upvalue at
// or above stackIndex, copying the stack's current value into the cell so
// later reads/writes go through the cell instead of the (about-to-be
// truncated) stack slot.
func (m *VM) closeUpvaluesFrom(stackIndex int) {
	for m.openUpvalues != nil && m.openUpvalues.stackIndex >= stackIndex {
		ov := m.openUpvalues
		ov.cell.Set(m.stack[ov.stackIndex])
		m.openUpvalues = ov.next
	}
}
