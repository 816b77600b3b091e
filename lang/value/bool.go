package value

import "fmt"

// Boolean is Kaon's boolean type.
type Boolean bool

var (
	_ Value    = Boolean(false)
	_ HasEqual = Boolean(false)
)

func (b Boolean) String() string { return fmt.Sprintf("%t", bool(b)) }
func (b Boolean) Type() string   { return "bool" }

func (b Boolean) Equals(y Value) (bool, error) {
	o, ok := y.(Boolean)
	if !ok {
		return false, nil
	}
	return b == o, nil
}
