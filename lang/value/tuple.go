package value

import (
	"fmt"
	"strings"
)

// Tuple represents an immutable fixed-size sequence produced by MAKETUPLE.
// Only the spine is immutable; the elements themselves may be mutable
// values such as *List.
type Tuple struct {
	elems []Value
}

// UnitTuple is the zero-length tuple, distinct from the Unit value: an
// empty tuple is a zero-length sequence, Unit is the absence of a value.
// The `()` literal evaluates to Unit, not to this tuple.
var UnitTuple = NewTuple(nil)

var (
	_ Value     = (*Tuple)(nil)
	_ Indexable = (*Tuple)(nil)
	_ Iterable  = (*Tuple)(nil)
	_ HasEqual  = (*Tuple)(nil)
)

func NewTuple(elems []Value) *Tuple { return &Tuple{elems: elems} }

func (t *Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range t.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	if len(t.elems) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

func (t *Tuple) Type() string { return "tuple" }
func (t *Tuple) Len() int     { return len(t.elems) }

func (t *Tuple) Index(i int) (Value, error) {
	if i < 0 || i >= len(t.elems) {
		return nil, fmt.Errorf("tuple index %d out of range [0, %d)", i, len(t.elems))
	}
	return t.elems[i], nil
}

func (t *Tuple) Iterate() Iterator { return &tupleIterator{elems: t.elems} }

func (t *Tuple) Equals(y Value) (bool, error) {
	o, ok := y.(*Tuple)
	if !ok {
		return false, nil
	}
	if len(t.elems) != len(o.elems) {
		return false, nil
	}
	for i, e := range t.elems {
		eq, err := Equal(e, o.elems[i])
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

type tupleIterator struct{ elems []Value }

func (it *tupleIterator) Next(p *Value) bool {
	if len(it.elems) == 0 {
		return false
	}
	*p = it.elems[0]
	it.elems = it.elems[1:]
	return true
}

func (it *tupleIterator) Done() {}

// Equal implements the EQL opcode for any pair of values: HasEqual is tried
// first, then Ordered (cmp == 0), then identity for everything else.
func Equal(x, y Value) (bool, error) {
	if hx, ok := x.(HasEqual); ok {
		return hx.Equals(y)
	}
	if ox, ok := x.(Ordered); ok {
		// Cmp fails only for operands of different types, which are unequal.
		c, err := ox.Cmp(y)
		return err == nil && c == 0, nil
	}
	return x == y, nil
}
