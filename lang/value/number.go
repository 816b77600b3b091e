package value

import (
	"fmt"
	"math"

	"github.com/kaon-lang/kaon/lang/compiler"
)

// Number is Kaon's sole numeric type, a float64 per spec.
type Number float64

var (
	_ Value    = Number(0)
	_ Ordered  = Number(0)
	_ HasEqual = Number(0)
)

func (n Number) String() string { return fmt.Sprintf("%g", float64(n)) }
func (n Number) Type() string   { return "number" }

func (n Number) Cmp(y Value) (int, error) {
	o, ok := y.(Number)
	if !ok {
		return 0, fmt.Errorf("cannot compare number with %s", y.Type())
	}
	switch {
	case n < o:
		return -1, nil
	case n > o:
		return +1, nil
	default:
		return 0, nil
	}
}

// Equals implements IEEE-754 equality: a NaN operand compares unequal to
// everything, itself included, so EQL/NEQ never route a NaN through Cmp's
// coarser "neither less nor greater" equality.
func (n Number) Equals(y Value) (bool, error) {
	o, ok := y.(Number)
	if !ok {
		return false, nil
	}
	if math.IsNaN(float64(n)) || math.IsNaN(float64(o)) {
		return false, nil
	}
	return n == o, nil
}

// Arith evaluates a binary ADD/SUB/MUL/DIV/MOD/BITAND/BITOR/BITXOR opcode
// for two Number operands. DIV/MOD by zero report DivisionByZero via the
// sentinel error ErrDivisionByZero, which the vm maps to its runtime error
// taxonomy.
func Arith(op ArithOp, x, y Value) (Value, error) {
	a, ok := x.(Number)
	if !ok {
		return nil, fmt.Errorf("cannot apply %s to %s", op, x.Type())
	}
	b, ok := y.(Number)
	if !ok {
		return nil, fmt.Errorf("cannot apply %s to %s", op, y.Type())
	}
	switch op {
	case compiler.ADD:
		return a + b, nil
	case compiler.SUB:
		return a - b, nil
	case compiler.MUL:
		return a * b, nil
	case compiler.DIV:
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return a / b, nil
	case compiler.MOD:
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return Number(int64(a) % int64(b)), nil
	case compiler.BITAND:
		return Number(int64(a) & int64(b)), nil
	case compiler.BITOR:
		return Number(int64(a) | int64(b)), nil
	case compiler.BITXOR:
		return Number(int64(a) ^ int64(b)), nil
	default:
		return nil, fmt.Errorf("not an arithmetic opcode: %s", op)
	}
}

// ErrDivisionByZero is returned by Arith for DIV/MOD with a zero divisor.
var ErrDivisionByZero = fmt.Errorf("division by zero")
