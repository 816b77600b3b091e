package value

import (
	"fmt"
	"math"

	"github.com/kaon-lang/kaon/lang/compiler"
)

// Compare evaluates a GT/GTE/LT/LTE/EQL/NEQ opcode for two operands. EQL and
// NEQ are defined for any pair of values via Equal; the ordering operators
// require both operands to implement Ordered.
func Compare(op compiler.Opcode, x, y Value) (bool, error) {
	switch op {
	case compiler.EQL:
		return Equal(x, y)
	case compiler.NEQ:
		eq, err := Equal(x, y)
		return !eq, err
	}

	ox, ok := x.(Ordered)
	if !ok {
		return false, fmt.Errorf("%s is not ordered", x.Type())
	}
	// IEEE-754: every ordered comparison involving a NaN is false, which
	// Cmp's three-way int result cannot represent on its own.
	if isNaN(x) || isNaN(y) {
		return false, nil
	}
	c, err := ox.Cmp(y)
	if err != nil {
		return false, err
	}
	switch op {
	case compiler.GT:
		return c > 0, nil
	case compiler.GTE:
		return c >= 0, nil
	case compiler.LT:
		return c < 0, nil
	case compiler.LTE:
		return c <= 0, nil
	default:
		return false, fmt.Errorf("not a comparison opcode: %s", op)
	}
}

func isNaN(v Value) bool {
	n, ok := v.(Number)
	return ok && math.IsNaN(float64(n))
}
