package value

import (
	"fmt"

	"github.com/kaon-lang/kaon/lang/compiler"
)

// Function is the runtime handle for a compiled, non-capturing function: a
// script-level `fun` declaration or expression that closes over nothing.
// lang/vm calls it directly by pushing a new frame over Code; it is the
// runtime counterpart to compiler.Function the way the teacher's
// machine.Function is the runtime counterpart to compiler.Funcode.
type Function struct {
	Code *compiler.Function
}

var (
	_ Value    = (*Function)(nil)
	_ Callable = (*Function)(nil)
)

func NewFunction(code *compiler.Function) *Function { return &Function{Code: code} }

func (fn *Function) String() string { return fmt.Sprintf("function(%s)", fn.Name()) }
func (fn *Function) Type() string   { return "function" }
func (fn *Function) Name() string {
	if fn.Code.Name == "" {
		return "<anonymous>"
	}
	return fn.Code.Name
}

// Closure is a Function paired with the upvalue cells its CLOSURE
// instruction captured, one per compiler.Capture entry in Code.Captures, in
// the same order.
type Closure struct {
	Code     *compiler.Function
	Upvalues []*Cell
}

var (
	_ Value    = (*Closure)(nil)
	_ Callable = (*Closure)(nil)
)

func NewClosure(code *compiler.Function, upvalues []*Cell) *Closure {
	return &Closure{Code: code, Upvalues: upvalues}
}

func (c *Closure) String() string { return fmt.Sprintf("function(%s)", c.Name()) }
func (c *Closure) Type() string   { return "function" }
func (c *Closure) Name() string {
	if c.Code.Name == "" {
		return "<anonymous>"
	}
	return c.Code.Name
}

// NativeFun wraps a Go function exposed to scripts via
// Vm.RegisterNative. Unlike Function/Closure it can execute itself:
// lang/vm's CALL handling for a *NativeFun is just "invoke Fn directly",
// with no bytecode frame to push.
type NativeFun struct {
	FnName   string
	Arity    int
	Variadic bool
	Fn       func(args []Value) (Value, error)
}

var (
	_ Value    = (*NativeFun)(nil)
	_ Callable = (*NativeFun)(nil)
)

func (n *NativeFun) String() string { return fmt.Sprintf("builtin(%s)", n.FnName) }
func (n *NativeFun) Type() string   { return "builtin" }
func (n *NativeFun) Name() string   { return n.FnName }

// Call invokes the wrapped Go function after checking arity, reporting an
// ArityMismatch-flavored error on a fixed-arity mismatch.
func (n *NativeFun) Call(args []Value) (Value, error) {
	if !n.Variadic && len(args) != n.Arity {
		return nil, fmt.Errorf("%s expects %d argument(s), got %d", n.FnName, n.Arity, len(args))
	}
	if n.Variadic && len(args) < n.Arity {
		return nil, fmt.Errorf("%s expects at least %d argument(s), got %d", n.FnName, n.Arity, len(args))
	}
	return n.Fn(args)
}
