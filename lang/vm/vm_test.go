package vm_test

import (
	"testing"

	"github.com/kaon-lang/kaon/lang/compiler"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/resolver"
	"github.com/kaon-lang/kaon/lang/token"
	"github.com/kaon-lang/kaon/lang/value"
	"github.com/kaon-lang/kaon/lang/vm"
)

// run compiles and executes src with a "print" global that appends each call
// to the returned slice, and an "append" global mirroring the corelib
// builtin of the same name, matching lang/compiler's own parse-resolve-
// compile pipeline helper.
func run(t *testing.T, src string) ([]value.Value, error) {
	t.Helper()
	chunk, err := parser.Parse(token.NewSource("test", src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	isGlobal := func(name string) bool { return name == "print" || name == "append" }
	if err := resolver.Resolve(chunk, isGlobal); err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	fn, err := compiler.Compile(chunk)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	m := vm.New()
	var printed []value.Value
	m.RegisterNative("print", 0, true, func(args []value.Value) (value.Value, error) {
		printed = append(printed, args...)
		return value.UnitValue, nil
	})
	m.RegisterNative("append", 2, false, func(args []value.Value) (value.Value, error) {
		list, ok := args[0].(*value.List)
		if !ok {
			return nil, value.NoSuchAttrError("append expects a list")
		}
		list.Append(args[1])
		return list, nil
	})

	_, err = m.Interpret(fn)
	return printed, err
}

func TestArithmeticAndComparison(t *testing.T) {
	printed, err := run(t, `
		print(1 + 2 * 3)
		print(10 % 3)
		print(2 > 1)
		print("foo" + "bar")
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"7", "1", "true", "foobar"}
	if len(printed) != len(want) {
		t.Fatalf("printed = %v, want %d values", printed, len(want))
	}
	for i, w := range want {
		if printed[i].String() != w {
			t.Errorf("printed[%d] = %s, want %s", i, printed[i].String(), w)
		}
	}
}

func TestLocalVariableReadWrite(t *testing.T) {
	printed, err := run(t, `
		var x = 1
		x = x + 41
		print(x)
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(printed) != 1 || printed[0].String() != "42" {
		t.Fatalf("printed = %v, want [42]", printed)
	}
}

func TestClosureSharesUpvalueAcrossCalls(t *testing.T) {
	printed, err := run(t, `
		fun makeCounter() {
			var n = 0
			fun inc() {
				n = n + 1
				return n
			}
			return inc
		}
		var c = makeCounter()
		print(c())
		print(c())
		print(c())
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1", "2", "3"}
	for i, w := range want {
		if printed[i].String() != w {
			t.Errorf("printed[%d] = %s, want %s", i, printed[i].String(), w)
		}
	}
}

// TestClosureObservesOwningFrameWriteWhileOpen exercises the ordering where
// a closure captures a still-live local, the owning frame then writes to
// that local directly (not through the closure), and the closure is called
// before the owning frame returns: the open upvalue must reflect the
// owning frame's write, not a copy frozen at closure-creation time.
func TestClosureObservesOwningFrameWriteWhileOpen(t *testing.T) {
	printed, err := run(t, `
		fun outer() {
			var n = 0
			fun get() { return n }
			n = 5
			return get()
		}
		print(outer())
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(printed) != 1 || printed[0].String() != "5" {
		t.Fatalf("printed = %v, want [5]", printed)
	}
}

// TestClosureOverLoopVariableIsFreshPerIteration exercises the scenario
// where each iteration of a while loop declares its own local (a fresh
// stack slot per the frame-style storage model) and closes over it; the
// closures must not all observe the loop's final value.
func TestClosureOverLoopVariableIsFreshPerIteration(t *testing.T) {
	printed, err := run(t, `
		fun makeClosures() {
			var fns = []
			var i = 0
			while i < 3 {
				var j = i
				fns = append(fns, fun() { return j })
				i = i + 1
			}
			return fns
		}
		var fns = makeClosures()
		print(fns[0]())
		print(fns[1]())
		print(fns[2]())
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"0", "1", "2"}
	for i, w := range want {
		if printed[i].String() != w {
			t.Errorf("printed[%d] = %s, want %s", i, printed[i].String(), w)
		}
	}
}

func TestClassInstantiationAndInheritance(t *testing.T) {
	printed, err := run(t, `
		class Shape {
			fun name() {
				return "shape"
			}
		}
		class Circle : Shape {
			fun name() {
				return "circle"
			}
		}
		print(Circle().name())
		print(Shape:name())
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"circle", "shape"}
	for i, w := range want {
		if printed[i].String() != w {
			t.Errorf("printed[%d] = %s, want %s", i, printed[i].String(), w)
		}
	}
}

func TestNamedConstructorSetsFields(t *testing.T) {
	printed, err := run(t, `
		class Point {
			var x
			var y

			constructor new(px, py) {
				self.x = px
				self.y = py
			}

			fun sum() {
				return self.x + self.y
			}
		}
		var p = Point(3, 4)
		print(p.sum())
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(printed) != 1 || printed[0].String() != "7" {
		t.Fatalf("printed = %v, want [7]", printed)
	}
}

func TestTraitMethodWithoutDefaultIsUndefinedMember(t *testing.T) {
	_, err := run(t, `
		trait Named {
			fun name()
		}
		class Widget {
		}
		print(Widget().name())
	`)
	if err == nil {
		t.Fatalf("want an UndefinedMember error, got none")
	}
	rerr, ok := err.(*vm.RuntimeError)
	if !ok {
		t.Fatalf("want *vm.RuntimeError, got %T (%v)", err, err)
	}
	if rerr.Kind != vm.UndefinedMember {
		t.Fatalf("want UndefinedMember, got %s", rerr.Kind)
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := run(t, `print(1 / 0)`)
	rerr, ok := err.(*vm.RuntimeError)
	if !ok {
		t.Fatalf("want *vm.RuntimeError, got %T (%v)", err, err)
	}
	if rerr.Kind != vm.DivisionByZero {
		t.Fatalf("want DivisionByZero, got %s", rerr.Kind)
	}
}

func TestCallingANonCallableValue(t *testing.T) {
	_, err := run(t, `
		var x = 1
		print(x())
	`)
	rerr, ok := err.(*vm.RuntimeError)
	if !ok {
		t.Fatalf("want *vm.RuntimeError, got %T (%v)", err, err)
	}
	if rerr.Kind != vm.NotCallable {
		t.Fatalf("want NotCallable, got %s", rerr.Kind)
	}
}

func TestArityMismatch(t *testing.T) {
	_, err := run(t, `
		fun add(a, b) {
			return a + b
		}
		print(add(1))
	`)
	rerr, ok := err.(*vm.RuntimeError)
	if !ok {
		t.Fatalf("want *vm.RuntimeError, got %T (%v)", err, err)
	}
	if rerr.Kind != vm.ArityMismatch {
		t.Fatalf("want ArityMismatch, got %s", rerr.Kind)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	_, err := run(t, `
		var xs = [1, 2, 3]
		print(xs[10])
	`)
	rerr, ok := err.(*vm.RuntimeError)
	if !ok {
		t.Fatalf("want *vm.RuntimeError, got %T (%v)", err, err)
	}
	if rerr.Kind != vm.IndexOutOfRange {
		t.Fatalf("want IndexOutOfRange, got %s", rerr.Kind)
	}
}
