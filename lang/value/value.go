// Package value defines the runtime value model executed by lang/vm: a
// closed set of concrete types sharing the Value interface, plus the
// optional capability interfaces (Callable, Indexable, Mapping, HasAttrs...)
// that the virtual machine type-switches on to implement GETINDEX, GETPROP,
// CALL and friends without a central kind enum.
package value

import "github.com/kaon-lang/kaon/lang/compiler"

// Value is implemented by every value Kaon bytecode can push onto the
// operand stack: Number, Boolean, String, *List, *Tuple, *Map, *NativeFun,
// *Function, *Closure, *Class, *Instance, *Constructor, *InstanceMethod,
// *External, Unit and Nil.
type Value interface {
	String() string
	Type() string
}

// Callable marks a value that may appear as the callee of a CALL
// instruction: *Function, *Closure, *NativeFun, *Class, *Constructor and
// *InstanceMethod. Only NativeFun can execute itself (it wraps a Go
// function); the others carry compiled bytecode or a class/method
// reference and must be invoked by lang/vm, which type-switches on the
// concrete type to set up the right call frame. Callable is deliberately
// thin so that value has no dependency on vm.
type Callable interface {
	Value
	Name() string
}

// Indexable is a sequence of known length that supports GETINDEX.
type Indexable interface {
	Value
	Index(i int) (Value, error)
	Len() int
}

// HasSetIndex additionally supports SETINDEX.
type HasSetIndex interface {
	Indexable
	SetIndex(i int, v Value) error
}

// Iterable abstracts a sequence that corelib helpers walk without
// requiring random access.
type Iterable interface {
	Value
	Iterate() Iterator
}

// Iterator yields the elements of an Iterable. Done must be called once the
// caller is finished, mirroring the teacher's iterator protocol.
type Iterator interface {
	Next(p *Value) bool
	Done()
}

// Mapping is implemented by values that support keyed lookup through
// GETINDEX (`m[k]`).
type Mapping interface {
	Value
	Get(k Value) (v Value, found bool, err error)
}

// HasSetKey additionally supports keyed assignment.
type HasSetKey interface {
	Mapping
	SetKey(k, v Value) error
}

// HasAttrs is implemented by values whose fields or methods are reachable
// through GETPROP (a dot expression). A (nil, nil) result from Attr means
// "no such member" and is turned into an UndefinedMember runtime error by
// the vm.
type HasAttrs interface {
	Value
	Attr(name string) (Value, error)
	AttrNames() []string
}

// HasSetField is implemented by values whose fields may be written through
// SETPROP.
type HasSetField interface {
	HasAttrs
	SetField(name string, v Value) error
}

// Ordered is implemented by values comparable with GT/GTE/LT/LTE.
type Ordered interface {
	Value
	Cmp(y Value) (int, error)
}

// HasEqual lets a type define EQL/NEQ semantics other than identity.
type HasEqual interface {
	Value
	Equals(y Value) (bool, error)
}

// ArithOp identifies the binary arithmetic/comparison opcode a caller is
// asking a value to evaluate. Reusing compiler.Opcode rather than a parallel
// enum keeps the vocabulary in one place: the vm always dispatches Arith
// with the exact opcode it just fetched.
type ArithOp = compiler.Opcode

// NoSuchAttrError is returned by HasAttrs.Attr/HasSetField.SetField to
// signal a missing member; the vm reports it as an UndefinedMember error.
type NoSuchAttrError string

func (e NoSuchAttrError) Error() string { return string(e) }

// Truth reports whether v is truthy under Kaon's truthiness rules: only Nil
// and the boolean false are falsy; every other value, including Unit,
// Number(0), the empty string and empty lists/maps, is truthy.
func Truth(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Boolean:
		return bool(v)
	default:
		return true
	}
}
