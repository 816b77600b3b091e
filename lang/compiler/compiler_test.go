package compiler

import (
	"testing"

	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/resolver"
	"github.com/kaon-lang/kaon/lang/token"
)

func compile(t *testing.T, src string) *Function {
	t.Helper()
	chunk, err := parser.Parse(token.NewSource("test", src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := resolver.Resolve(chunk, func(name string) bool { return name == "print" }); err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	fn, err := Compile(chunk)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return fn
}

func opcodes(fn *Function) []Opcode {
	var ops []Opcode
	code := fn.Code
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		ops = append(ops, op)
		pc += 1 + operandSize(op)
		if op == CLOSURE {
			idx := int(code[pc-2])<<8 | int(code[pc-1])
			pc += 2 * len(fn.Constants[idx].Func.Captures)
		}
	}
	return ops
}

func containsOp(ops []Opcode, want Opcode) bool {
	for _, op := range ops {
		if op == want {
			return true
		}
	}
	return false
}

func TestCompileArithmetic(t *testing.T) {
	fn := compile(t, "1 + 2 * 3")
	ops := opcodes(fn)
	want := []Opcode{CONST, CONST, CONST, MUL, ADD, POP, CONST, RETURN}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i, op := range want {
		if ops[i] != op {
			t.Errorf("op[%d] = %s, want %s", i, ops[i], op)
		}
	}
}

func TestCompileVarDeclAndAssignUseSameSlot(t *testing.T) {
	fn := compile(t, `
		var x = 1
		x = 2
	`)
	ops := opcodes(fn)
	if !containsOp(ops, SAVELOCAL) {
		t.Fatalf("want a SAVELOCAL instruction, got %v", ops)
	}
	count := 0
	for _, op := range ops {
		if op == SAVELOCAL {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("want 2 SAVELOCAL (decl + assign), got %d", count)
	}
}

func TestCompileIfElseBranches(t *testing.T) {
	fn := compile(t, `
		if 1 < 2 {
			var a = 1
		} else {
			var b = 2
		}
	`)
	ops := opcodes(fn)
	if !containsOp(ops, JUMPFALSE) || !containsOp(ops, JUMP) {
		t.Fatalf("want JUMPFALSE and JUMP for if/else, got %v", ops)
	}
}

func TestCompileWhileLoopEmitsBackwardLoop(t *testing.T) {
	fn := compile(t, `
		var i = 0
		while i < 4 {
			i = i + 1
		}
	`)
	ops := opcodes(fn)
	if !containsOp(ops, LOOP) {
		t.Fatalf("want a backward LOOP instruction, got %v", ops)
	}
}

func TestCompileBreakPatchesToLoopExit(t *testing.T) {
	fn := compile(t, `
		loop {
			break
		}
	`)
	ops := opcodes(fn)
	if !containsOp(ops, JUMP) || !containsOp(ops, LOOP) {
		t.Fatalf("want break (JUMP) and the loop's own LOOP, got %v", ops)
	}
}

func TestCompileShortCircuitOr(t *testing.T) {
	fn := compile(t, "true or false")
	ops := opcodes(fn)
	if !containsOp(ops, JUMPIFTRUE) {
		t.Fatalf("want JUMPIFTRUE for `or`, got %v", ops)
	}
}

func TestCompileShortCircuitAnd(t *testing.T) {
	fn := compile(t, "true and false")
	ops := opcodes(fn)
	if !containsOp(ops, JUMPIFFALSE) {
		t.Fatalf("want JUMPIFFALSE for `and`, got %v", ops)
	}
}

func TestCompileClosureCapturesOuterLocal(t *testing.T) {
	fn := compile(t, `
		fun outer() {
			var x = 1
			fun inner() {
				return x
			}
		}
	`)
	if len(fn.Constants) == 0 || fn.Constants[0].Kind != ConstFunc {
		t.Fatalf("want outer's Function as the first constant, got %#v", fn.Constants)
	}
	outerFn := fn.Constants[0].Func
	found := false
	for _, c := range outerFn.Constants {
		if c.Kind == ConstFunc {
			found = true
			if len(c.Func.Captures) != 1 || c.Func.Captures[0].Kind != CaptureFromLocal {
				t.Fatalf("want inner to capture x from a local, got %#v", c.Func.Captures)
			}
		}
	}
	if !found {
		t.Fatal("inner function constant not found")
	}
}

func TestCompileTraitEmitsClassWithDefaultMethodsOnly(t *testing.T) {
	fn := compile(t, `
		trait Greeter {
			fun greet()
			fun shout() {
				return self.greet()
			}
		}
	`)
	ops := opcodes(fn)
	if !containsOp(ops, CLASS) || !containsOp(ops, DEFMETHOD) {
		t.Fatalf("want a CLASS with one DEFMETHOD (shout only), got %v", ops)
	}
	defs := 0
	for _, op := range ops {
		if op == DEFMETHOD {
			defs++
		}
	}
	if defs != 1 {
		t.Fatalf("want exactly one DEFMETHOD (shout only), got %d in %v", defs, ops)
	}
	if containsOp(ops, DEFCONSTRUCTOR) {
		t.Fatalf("traits never define constructors, got %v", ops)
	}
}

func TestCompileClassEmitsDefinitionOpcodes(t *testing.T) {
	fn := compile(t, `
		class Counter {
			var count
			constructor new(start) {
				self.count = start
			}
			fun increment() {
				self.count = self.count + 1
			}
		}
	`)
	ops := opcodes(fn)
	for _, want := range []Opcode{CLASS, DEFFIELD, DEFMETHOD, DEFCONSTRUCTOR} {
		if !containsOp(ops, want) {
			t.Errorf("want %s in class compilation, got %v", want, ops)
		}
	}
}

func TestCompileClassInheritance(t *testing.T) {
	fn := compile(t, `
		class Animal {}
		class Dog : Animal {}
	`)
	ops := opcodes(fn)
	if !containsOp(ops, INHERIT) {
		t.Fatalf("want INHERIT for `: Animal`, got %v", ops)
	}
}

func TestCompileGlobalFallback(t *testing.T) {
	fn := compile(t, `print(1)`)
	ops := opcodes(fn)
	if !containsOp(ops, GETGLOBAL) {
		t.Fatalf("want GETGLOBAL for the unresolved-local print call, got %v", ops)
	}
}

func TestCompileMemberAssignment(t *testing.T) {
	fn := compile(t, `
		class Box { var v }
		var b = Box()
		b.v = 1
	`)
	ops := opcodes(fn)
	if !containsOp(ops, SETPROP) {
		t.Fatalf("want SETPROP for member assignment, got %v", ops)
	}
}

func TestCompileConstantDeduplication(t *testing.T) {
	fn := compile(t, `
		var a = 1
		var b = 1
		var c = "hi"
		var d = "hi"
	`)
	numCount, strCount := 0, 0
	for _, c := range fn.Constants {
		switch c.Kind {
		case ConstNumber:
			numCount++
		case ConstString:
			strCount++
		}
	}
	if numCount != 1 {
		t.Errorf("want the literal 1 deduplicated to one constant, got %d", numCount)
	}
	if strCount != 1 {
		t.Errorf(`want the literal "hi" deduplicated to one constant, got %d`, strCount)
	}
}

func TestCompileTooManyConstantsIsReported(t *testing.T) {
	var c compState
	fn := &Function{Name: "f", Constants: make([]Constant, maxConstants+1)}
	e := &emitter{c: &c, fn: fn}
	e.emitConst(Constant{Kind: ConstNumber, Num: -1}, 1)
	if err := c.errors.Err(); err == nil {
		t.Fatal("want a TooManyConstants error")
	} else if list, ok := err.(*ast.CompileErrorList); !ok || list.Errors[0].Kind != ast.TooManyConstants {
		t.Fatalf("want TooManyConstants, got %v", err)
	}
}
