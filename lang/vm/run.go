package vm

import (
	"github.com/kaon-lang/kaon/lang/compiler"
	"github.com/kaon-lang/kaon/lang/value"
)

// run executes fr's bytecode to completion (a RETURN instruction),
// returning the function's result. Nested calls recurse back into run via
// m.call/m.callValue, mirroring the teacher's recursive Call/run pair
// rather than a single flattened dispatch loop over an explicit frame
// stack — the frame stack (m.frames) exists for trace/CLOSEUPVAL purposes,
// not to drive dispatch.
func (m *VM) run(fr *frame) (value.Value, error) {
	code := fr.fn.Code

	readU8 := func() int {
		b := int(code[fr.ip])
		fr.ip++
		return b
	}
	readU16 := func() int {
		v := int(code[fr.ip])<<8 | int(code[fr.ip+1])
		fr.ip += 2
		return v
	}

	fail := func(kind RuntimeErrorKind, format string, args ...any) (value.Value, error) {
		err := newError(kind, fr.line(), format, args...)
		err.Trace = m.trace()
		m.closeUpvaluesFrom(fr.base)
		m.stack = m.stack[:fr.base]
		return nil, err
	}

	for fr.ip < len(code) {
		op := compiler.Opcode(code[fr.ip])
		fr.ip++

		switch op {
		case compiler.NOP:
			// no-op

		case compiler.POP:
			if _, err := m.pop(); err != nil {
				return fail(StackUnderflow, "%s", err)
			}

		case compiler.DUP:
			top := m.stack[len(m.stack)-1]
			m.stack = append(m.stack, top)

		case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD,
			compiler.BITAND, compiler.BITOR, compiler.BITXOR:
			y, _ := m.pop()
			x, _ := m.pop()
			if xs, ok := x.(value.String); ok && op == compiler.ADD {
				ys, ok := y.(value.String)
				if !ok {
					return fail(TypeError, "cannot add string and %s", y.Type())
				}
				if err := m.push(value.Concat(xs, ys)); err != nil {
					return fail(StackOverflow, "%s", err)
				}
				break
			}
			z, err := value.Arith(op, x, y)
			if err != nil {
				if err == value.ErrDivisionByZero {
					return fail(DivisionByZero, "division by zero")
				}
				return fail(TypeError, "%s", err)
			}
			if err := m.push(z); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.GT, compiler.GTE, compiler.LT, compiler.LTE, compiler.EQL, compiler.NEQ:
			y, _ := m.pop()
			x, _ := m.pop()
			ok, err := value.Compare(op, x, y)
			if err != nil {
				return fail(TypeError, "%s", err)
			}
			if err := m.push(value.Boolean(ok)); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.NEGATE:
			x, _ := m.pop()
			n, ok := x.(value.Number)
			if !ok {
				return fail(TypeError, "cannot negate %s", x.Type())
			}
			if err := m.push(-n); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.NOT:
			x, _ := m.pop()
			if err := m.push(value.Boolean(!value.Truth(x))); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.CONST:
			idx := readU8()
			if err := m.push(constValue(fr.fn.Constants[idx])); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.CONSTLONG:
			idx := readU16()
			if err := m.push(constValue(fr.fn.Constants[idx])); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.LOADLOCAL:
			slot := readU8()
			v := m.stack[fr.base+slot]
			if cell := m.openUpvalueAt(fr.base + slot); cell != nil {
				v = cell.Get()
			}
			if err := m.push(v); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.SAVELOCAL:
			slot := readU8()
			v, _ := m.pop()
			m.stack[fr.base+slot] = v
			if cell := m.openUpvalueAt(fr.base + slot); cell != nil {
				cell.Set(v)
			}

		case compiler.GETUPVAL:
			idx := readU8()
			if err := m.push(fr.upvalues[idx].Get()); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.SETUPVAL:
			idx := readU8()
			v, _ := m.pop()
			cell := fr.upvalues[idx]
			cell.Set(v)
			if stackIndex, ok := m.openUpvalueStackIndex(cell); ok {
				m.stack[stackIndex] = v
			}

		case compiler.CLOSEUPVAL:
			slot := readU8()
			m.closeUpvaluesFrom(fr.base + slot)

		case compiler.GETGLOBAL:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			v, ok := m.Globals[name]
			if !ok {
				return fail(NameNotDefined, "undefined name %q", name)
			}
			if err := m.push(v); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.SETGLOBAL:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			v, _ := m.pop()
			m.Globals[name] = v

		case compiler.GETINDEX:
			i, _ := m.pop()
			recv, _ := m.pop()
			v, err := m.index(recv, i, fr.line())
			if err != nil {
				return fail(IndexOutOfRange, "%s", err)
			}
			if err := m.push(v); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.SETINDEX:
			v, _ := m.pop()
			i, _ := m.pop()
			recv, _ := m.pop()
			if err := m.setIndex(recv, i, v); err != nil {
				return fail(IndexOutOfRange, "%s", err)
			}

		case compiler.GETPROP:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			recv, _ := m.pop()
			v, err := m.getProp(recv, name)
			if err != nil {
				return fail(UndefinedMember, "%s", err)
			}
			if err := m.push(v); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.SETPROP:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			v, _ := m.pop()
			recv, _ := m.pop()
			if err := m.setProp(recv, name, v); err != nil {
				return fail(UndefinedMember, "%s", err)
			}

		case compiler.GETASSOC:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			recv, _ := m.pop()
			class, ok := recv.(*value.Class)
			if !ok {
				return fail(TypeError, "%s is not a class", recv.Type())
			}
			v, err := class.Assoc(name)
			if err != nil || v == nil {
				return fail(UndefinedMember, "%s has no associated member %q", class.ClassName, name)
			}
			if err := m.push(v); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.MAKELIST:
			n := readU8()
			elems := append([]value.Value(nil), m.stack[len(m.stack)-n:]...)
			m.stack = m.stack[:len(m.stack)-n]
			if err := m.push(value.NewList(elems)); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.MAKETUPLE:
			n := readU8()
			elems := append([]value.Value(nil), m.stack[len(m.stack)-n:]...)
			m.stack = m.stack[:len(m.stack)-n]
			if err := m.push(value.NewTuple(elems)); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.MAKEMAP:
			n := readU8()
			mp := value.NewMap(n)
			start := len(m.stack) - 2*n
			for i := 0; i < n; i++ {
				k := m.stack[start+2*i]
				v := m.stack[start+2*i+1]
				mp.SetKey(k, v)
			}
			m.stack = m.stack[:start]
			if err := m.push(mp); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.JUMP:
			off := readU16()
			fr.ip += off

		case compiler.LOOP:
			off := readU16()
			fr.ip -= off

		case compiler.JUMPFALSE:
			off := readU16()
			cond, _ := m.pop()
			if !value.Truth(cond) {
				fr.ip += off
			}

		case compiler.JUMPIFFALSE:
			off := readU16()
			cond := m.stack[len(m.stack)-1]
			if !value.Truth(cond) {
				fr.ip += off
			}

		case compiler.JUMPIFTRUE:
			off := readU16()
			cond := m.stack[len(m.stack)-1]
			if value.Truth(cond) {
				fr.ip += off
			}

		case compiler.CALL:
			argc := readU8()
			result, err := m.call(argc)
			if err != nil {
				if rerr, ok := err.(*RuntimeError); ok {
					// errors raised by the call itself (not inside a callee's
					// frame) are anchored here; a callee's fail already traced
					// every frame.
					if rerr.Line == 0 {
						rerr.Line = fr.line()
					}
					if rerr.Trace == nil {
						rerr.Trace = m.trace()
					}
				}
				m.closeUpvaluesFrom(fr.base)
				m.stack = m.stack[:fr.base]
				return nil, err
			}
			if err := m.push(result); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.CLOSURE:
			idx := readU16()
			childFn := fr.fn.Constants[idx].Func
			cells := make([]*value.Cell, len(childFn.Captures))
			for i := range cells {
				kind := readU8()
				index := readU8()
				if compiler.CaptureKind(kind) == compiler.CaptureFromLocal {
					cells[i] = m.findOrCreateOpenUpvalue(fr.base + index)
				} else {
					cells[i] = fr.upvalues[index]
				}
			}
			if err := m.push(value.NewClosure(childFn, cells)); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.CLASS:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			if err := m.push(value.NewClass(name)); err != nil {
				return fail(StackOverflow, "%s", err)
			}

		case compiler.INHERIT:
			sup, _ := m.pop()
			supClass, ok := sup.(*value.Class)
			if !ok {
				return fail(TypeError, "cannot inherit from %s", sup.Type())
			}
			sub := m.stack[len(m.stack)-1].(*value.Class)
			sub.Parent = supClass

		case compiler.DEFFIELD:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			v, _ := m.pop()
			class := m.stack[len(m.stack)-1].(*value.Class)
			class.Fields = append(class.Fields, name)
			class.FieldDefaults[name] = v

		case compiler.DEFMETHOD:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			v, _ := m.pop()
			class := m.stack[len(m.stack)-1].(*value.Class)
			class.Methods[name] = v.(*value.Closure)

		case compiler.DEFCONSTRUCTOR:
			idx := readU16()
			name := fr.fn.Constants[idx].Str
			v, _ := m.pop()
			class := m.stack[len(m.stack)-1].(*value.Class)
			class.Constructors[name] = v.(*value.Closure)

		case compiler.RETURN:
			result, _ := m.pop()
			m.closeUpvaluesFrom(fr.base)
			m.stack = m.stack[:fr.base]
			return result, nil

		default:
			return fail(TypeError, "illegal opcode %s", op)
		}
	}
	return value.UnitValue, nil
}

// trace walks the active frame stack outward, most recent first, for a
// RuntimeError's call trace.
func (m *VM) trace() []TraceEntry {
	t := make([]TraceEntry, 0, len(m.frames))
	for i := len(m.frames) - 1; i >= 0; i-- {
		fr := m.frames[i]
		t = append(t, TraceEntry{FuncName: fr.fn.Name, Line: fr.line()})
	}
	return t
}

func constValue(c compiler.Constant) value.Value {
	switch c.Kind {
	case compiler.ConstNumber:
		return value.Number(c.Num)
	case compiler.ConstString:
		return value.String(c.Str)
	case compiler.ConstBool:
		return value.Boolean(c.Bool)
	case compiler.ConstNil:
		return value.NilValue
	case compiler.ConstUnit:
		return value.UnitValue
	case compiler.ConstFunc:
		return value.NewFunction(c.Func)
	default:
		return value.NilValue
	}
}

func (m *VM) index(recv, idx value.Value, line int32) (value.Value, error) {
	if mp, ok := recv.(value.Mapping); ok {
		v, found, err := mp.Get(idx)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, newError(IndexOutOfRange, line, "key %v not found", idx)
		}
		return v, nil
	}
	ix, ok := recv.(value.Indexable)
	if !ok {
		return nil, newError(TypeError, line, "%s is not indexable", recv.Type())
	}
	n, ok := idx.(value.Number)
	if !ok {
		return nil, newError(TypeError, line, "index must be a number, got %s", idx.Type())
	}
	return ix.Index(int(n))
}

func (m *VM) setIndex(recv, idx, v value.Value) error {
	if mp, ok := recv.(value.HasSetKey); ok {
		return mp.SetKey(idx, v)
	}
	ix, ok := recv.(value.HasSetIndex)
	if !ok {
		return newError(TypeError, 0, "%s does not support index assignment", recv.Type())
	}
	n, ok := idx.(value.Number)
	if !ok {
		return newError(TypeError, 0, "index must be a number, got %s", idx.Type())
	}
	return ix.SetIndex(int(n), v)
}

func (m *VM) getProp(recv value.Value, name string) (value.Value, error) {
	ha, ok := recv.(value.HasAttrs)
	if !ok {
		return nil, newError(UndefinedMember, 0, "%s has no member %q", recv.Type(), name)
	}
	v, err := ha.Attr(name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, newError(UndefinedMember, 0, "%s has no member %q", recv.Type(), name)
	}
	return v, nil
}

func (m *VM) setProp(recv value.Value, name string, v value.Value) error {
	hs, ok := recv.(value.HasSetField)
	if !ok {
		return newError(UndefinedMember, 0, "%s has no settable member %q", recv.Type(), name)
	}
	return hs.SetField(name, v)
}
