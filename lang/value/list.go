package value

import (
	"fmt"
	"strings"
)

// List is Kaon's mutable sequence type, produced by MAKELIST and by
// corelib's append().
type List struct {
	elems []Value
}

var (
	_ Value       = (*List)(nil)
	_ Indexable   = (*List)(nil)
	_ HasSetIndex = (*List)(nil)
	_ Iterable    = (*List)(nil)
)

// NewList returns a list containing the given elements. The caller must not
// retain elems afterward.
func NewList(elems []Value) *List { return &List{elems: elems} }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range l.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l *List) Type() string { return "list" }
func (l *List) Len() int     { return len(l.elems) }

func (l *List) Index(i int) (Value, error) {
	if i < 0 || i >= len(l.elems) {
		return nil, fmt.Errorf("list index %d out of range [0, %d)", i, len(l.elems))
	}
	return l.elems[i], nil
}

func (l *List) SetIndex(i int, v Value) error {
	if i < 0 || i >= len(l.elems) {
		return fmt.Errorf("list index %d out of range [0, %d)", i, len(l.elems))
	}
	l.elems[i] = v
	return nil
}

// Append grows the list in place, backing corelib's append() builtin.
func (l *List) Append(v Value) { l.elems = append(l.elems, v) }

func (l *List) Iterate() Iterator { return &listIterator{elems: l.elems} }

type listIterator struct{ elems []Value }

func (it *listIterator) Next(p *Value) bool {
	if len(it.elems) == 0 {
		return false
	}
	*p = it.elems[0]
	it.elems = it.elems[1:]
	return true
}

func (it *listIterator) Done() {}
