package value

import "fmt"

// String is Kaon's UTF-8 string type. Indexing yields single-rune strings,
// matching the scanner's own rune-oriented view of source text.
type String string

var (
	_ Value     = String("")
	_ Ordered   = String("")
	_ Indexable = String("")
	_ Iterable  = String("")
)

func (s String) String() string { return string(s) }
func (s String) Type() string   { return "string" }

func (s String) Cmp(y Value) (int, error) {
	o, ok := y.(String)
	if !ok {
		return 0, fmt.Errorf("cannot compare string with %s", y.Type())
	}
	switch {
	case s < o:
		return -1, nil
	case s > o:
		return +1, nil
	default:
		return 0, nil
	}
}

func (s String) Len() int { return len([]rune(string(s))) }

func (s String) Index(i int) (Value, error) {
	r := []rune(string(s))
	if i < 0 || i >= len(r) {
		return nil, fmt.Errorf("string index %d out of range [0, %d)", i, len(r))
	}
	return String(r[i]), nil
}

func (s String) Iterate() Iterator {
	return &stringIterator{runes: []rune(string(s))}
}

type stringIterator struct{ runes []rune }

func (it *stringIterator) Next(p *Value) bool {
	if len(it.runes) == 0 {
		return false
	}
	*p = String(it.runes[0])
	it.runes = it.runes[1:]
	return true
}

func (it *stringIterator) Done() {}

// Concat implements the `+` opcode for two strings; the vm checks operand
// kinds before delegating here rather than routing strings through Arith,
// since string concatenation is not a numeric opcode.
func Concat(x, y String) String { return x + y }
