package value

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"
)

// Map is Kaon's hash map type, produced by MAKEMAP and read by corelib's
// keys(). It layers an insertion-order key list on top of swiss.Map, which
// has no iteration order of its own, so String() and Iterate() render
// entries in the order they were first written, matching how a script
// author would expect a literal map display to read.
type Map struct {
	m    *swiss.Map[Value, Value]
	keys []Value
}

var (
	_ Value     = (*Map)(nil)
	_ Mapping   = (*Map)(nil)
	_ HasSetKey = (*Map)(nil)
	_ Iterable  = (*Map)(nil)
)

// NewMap returns an empty map with initial capacity for size entries.
func NewMap(size int) *Map {
	return &Map{m: swiss.NewMap[Value, Value](uint32(size))}
}

func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := m.m.Get(k)
		fmt.Fprintf(&sb, "%s: %s", k, v)
	}
	sb.WriteByte('}')
	return sb.String()
}

func (m *Map) Type() string { return "map" }

func (m *Map) Get(k Value) (Value, bool, error) {
	v, ok := m.m.Get(k)
	return v, ok, nil
}

func (m *Map) SetKey(k, v Value) error {
	if _, exists := m.m.Get(k); !exists {
		m.keys = append(m.keys, k)
	}
	m.m.Put(k, v)
	return nil
}

func (m *Map) Len() int { return m.m.Count() }

func (m *Map) Iterate() Iterator { return &mapIterator{m: m, i: 0} }

type mapIterator struct {
	m *Map
	i int
}

func (it *mapIterator) Next(p *Value) bool {
	if it.i >= len(it.m.keys) {
		return false
	}
	k := it.m.keys[it.i]
	it.i++
	v, _ := it.m.m.Get(k)
	*p = NewTuple([]Value{k, v})
	return true
}

func (it *mapIterator) Done() {}
