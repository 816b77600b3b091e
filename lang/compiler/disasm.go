package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders fn and every Function reachable through its constant
// pool as human-readable text, one instruction per line, for the `disasm`
// CLI subcommand and for debugging. It has no corresponding assembler: unlike
// the teacher's asm.go (a full text<->bytecode round trip used to write
// Funcode test fixtures by hand), Kaon bytecode is only ever produced by
// Compile, so only the read direction is needed here.
func Disassemble(fn *Function) string {
	var sb strings.Builder
	dasmFunc(&sb, fn, map[*Function]bool{})
	return sb.String()
}

func dasmFunc(sb *strings.Builder, fn *Function, seen map[*Function]bool) {
	if seen[fn] {
		return
	}
	seen[fn] = true

	fmt.Fprintf(sb, "function %s (%d params, %d locals, %d upvalues, maxstack %d)\n",
		fn.Name, fn.NumParams, fn.NumLocals, len(fn.Captures), fn.MaxStack)

	code := fn.Code
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		start := pc
		pc++
		switch operandSize(op) {
		case 0:
			fmt.Fprintf(sb, "  %04d %s\n", start, op)
		case 1:
			arg := code[pc]
			pc++
			fmt.Fprintf(sb, "  %04d %s %d%s\n", start, op, arg, constAnnotation(fn, op, int(arg)))
		case 2:
			arg := int(code[pc])<<8 | int(code[pc+1])
			pc += 2
			if isJump(op) {
				target := pc + arg
				if op == LOOP {
					target = pc - arg
				}
				fmt.Fprintf(sb, "  %04d %s -> %04d\n", start, op, target)
			} else {
				fmt.Fprintf(sb, "  %04d %s %d%s\n", start, op, arg, constAnnotation(fn, op, arg))
			}
		}
		if op == CLOSURE {
			idx := int(code[pc-2])<<8 | int(code[pc-1])
			if idx < len(fn.Constants) && fn.Constants[idx].Kind == ConstFunc {
				pc += 2 * len(fn.Constants[idx].Func.Captures)
			}
		}
	}

	for _, c := range fn.Constants {
		if c.Kind == ConstFunc {
			dasmFunc(sb, c.Func, seen)
		}
	}
}

// constAnnotation appends `; <literal>` for instructions whose operand
// indexes the constant pool, so a human reading the dump doesn't have to
// cross-reference the table by hand.
func constAnnotation(fn *Function, op Opcode, idx int) string {
	switch op {
	case CONST, CONSTLONG:
		if idx < len(fn.Constants) {
			return fmt.Sprintf("  ; %s", constLiteral(fn.Constants[idx]))
		}
	case GETGLOBAL, SETGLOBAL, GETPROP, SETPROP, GETASSOC, CLASS, DEFFIELD, DEFMETHOD, DEFCONSTRUCTOR:
		if idx < len(fn.Constants) && fn.Constants[idx].Kind == ConstString {
			return fmt.Sprintf("  ; %q", fn.Constants[idx].Str)
		}
	}
	return ""
}

func constLiteral(c Constant) string {
	switch c.Kind {
	case ConstNumber:
		return fmt.Sprintf("%g", c.Num)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstNil:
		return "nil"
	case ConstUnit:
		return "()"
	case ConstFunc:
		return fmt.Sprintf("<function %s>", c.Func.Name)
	default:
		return "?"
	}
}
