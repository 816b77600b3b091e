package parser

import (
	"testing"

	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/token"
)

func parse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	chunk, err := Parse(token.NewSource("test", src))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return chunk
}

func TestParseArithmeticPrecedence(t *testing.T) {
	chunk := parse(t, "5 * (10 - 3) - 2")
	if len(chunk.Block.Stmts) != 1 {
		t.Fatalf("want 1 stmt, got %d", len(chunk.Block.Stmts))
	}
	es, ok := chunk.Block.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("want ExprStmt, got %T", chunk.Block.Stmts[0])
	}
	top, ok := es.X.(*ast.BinExpr)
	if !ok || top.Op != ast.OpSub {
		t.Fatalf("want top-level OpSub BinExpr, got %#v", es.X)
	}
	mul, ok := top.Lhs.(*ast.BinExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("want lhs OpMul BinExpr, got %#v", top.Lhs)
	}
	paren, ok := mul.Rhs.(*ast.ParenExpr)
	if !ok {
		t.Fatalf("want parenthesized rhs, got %#v", mul.Rhs)
	}
	sub, ok := paren.X.(*ast.BinExpr)
	if !ok || sub.Op != ast.OpSub {
		t.Fatalf("want inner OpSub BinExpr, got %#v", paren.X)
	}
}

func TestParseShortCircuitOr(t *testing.T) {
	chunk := parse(t, "true or false and false")
	es := chunk.Block.Stmts[0].(*ast.ExprStmt)
	or, ok := es.X.(*ast.OrExpr)
	if !ok {
		t.Fatalf("want OrExpr at top level, got %#v", es.X)
	}
	if _, ok := or.Rhs.(*ast.AndExpr); !ok {
		t.Fatalf("want AndExpr to bind tighter than or, got %#v", or.Rhs)
	}
}

func TestParseWhileLoop(t *testing.T) {
	chunk := parse(t, `
		var sum = 0
		var i = 0
		while i < 10 {
			sum = sum + i
			i = i + 1
		}
	`)
	if len(chunk.Block.Stmts) != 3 {
		t.Fatalf("want 3 stmts, got %d", len(chunk.Block.Stmts))
	}
	while, ok := chunk.Block.Stmts[2].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("want WhileStmt, got %T", chunk.Block.Stmts[2])
	}
	if len(while.Body.Stmts) != 2 {
		t.Fatalf("want 2 stmts in while body, got %d", len(while.Body.Stmts))
	}
}

func TestParseClassWithConstructorAndMethod(t *testing.T) {
	chunk := parse(t, `
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
	cls, ok := chunk.Block.Stmts[0].(*ast.ClassStmt)
	if !ok {
		t.Fatalf("want ClassStmt, got %T", chunk.Block.Stmts[0])
	}
	if len(cls.Class.Fields) != 1 {
		t.Fatalf("want 1 field, got %d", len(cls.Class.Fields))
	}
	if len(cls.Class.Constructors) != 1 {
		t.Fatalf("want 1 constructor, got %d", len(cls.Class.Constructors))
	}
	if len(cls.Class.Methods) != 1 {
		t.Fatalf("want 1 method, got %d", len(cls.Class.Methods))
	}
}

func TestParseClassInheritance(t *testing.T) {
	chunk := parse(t, `class Dog : Animal { }`)
	cls := chunk.Block.Stmts[0].(*ast.ClassStmt)
	if cls.Class.Parent == nil || cls.Class.Parent.Name != "Animal" {
		t.Fatalf("want parent Animal, got %#v", cls.Class.Parent)
	}
}

func TestParseFunCallAndMember(t *testing.T) {
	chunk := parse(t, `print(obj.name, obj:describe())`)
	es := chunk.Block.Stmts[0].(*ast.ExprStmt)
	call, ok := es.X.(*ast.FunCallExpr)
	if !ok {
		t.Fatalf("want FunCallExpr, got %#v", es.X)
	}
	if len(call.Args) != 2 {
		t.Fatalf("want 2 args, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].(*ast.MemberExpr); !ok {
		t.Fatalf("want MemberExpr for first arg, got %#v", call.Args[0])
	}
	inner, ok := call.Args[1].(*ast.FunCallExpr)
	if !ok {
		t.Fatalf("want FunCallExpr for second arg, got %#v", call.Args[1])
	}
	if _, ok := inner.Callee.(*ast.AssocExpr); !ok {
		t.Fatalf("want AssocExpr callee, got %#v", inner.Callee)
	}
}

func TestParseUnitAndTuple(t *testing.T) {
	chunk := parse(t, `
		var a = ()
		var b = (1)
		var c = (1, 2, 3)
	`)
	if _, ok := chunk.Block.Stmts[0].(*ast.VarDeclStmt).Init.(*ast.UnitExpr); !ok {
		t.Error("want UnitExpr for ()")
	}
	if _, ok := chunk.Block.Stmts[1].(*ast.VarDeclStmt).Init.(*ast.ParenExpr); !ok {
		t.Error("want ParenExpr for (1)")
	}
	tup, ok := chunk.Block.Stmts[2].(*ast.VarDeclStmt).Init.(*ast.TupleExpr)
	if !ok || len(tup.Items) != 3 {
		t.Errorf("want 3-item TupleExpr, got %#v", chunk.Block.Stmts[2].(*ast.VarDeclStmt).Init)
	}
}

func TestParseListAndMapLiterals(t *testing.T) {
	chunk := parse(t, `
		var l = [1, 2, 3]
		var m = { "a": 1, "b": 2 }
	`)
	list, ok := chunk.Block.Stmts[0].(*ast.VarDeclStmt).Init.(*ast.ListExpr)
	if !ok || len(list.Items) != 3 {
		t.Errorf("want 3-item ListExpr, got %#v", chunk.Block.Stmts[0].(*ast.VarDeclStmt).Init)
	}
	m, ok := chunk.Block.Stmts[1].(*ast.VarDeclStmt).Init.(*ast.MapExpr)
	if !ok || len(m.Items) != 2 {
		t.Errorf("want 2-entry MapExpr, got %#v", chunk.Block.Stmts[1].(*ast.VarDeclStmt).Init)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	chunk := parse(t, `
		fun add(a: Number, b: Number) -> Number {
			return a + b
		}
	`)
	fn, ok := chunk.Block.Stmts[0].(*ast.FunStmt)
	if !ok {
		t.Fatalf("want FunStmt, got %T", chunk.Block.Stmts[0])
	}
	if fn.Fun.Name.Name != "add" {
		t.Errorf("want name add, got %s", fn.Fun.Name.Name)
	}
	if len(fn.Fun.Params) != 2 {
		t.Fatalf("want 2 params, got %d", len(fn.Fun.Params))
	}
	if fn.Fun.ReturnType == nil {
		t.Error("want non-nil return type")
	}
}

func TestParseErrorRecoverySynchronizes(t *testing.T) {
	_, err := Parse(token.NewSource("test", `
		var x = )
		var y = 2
	`))
	if err == nil {
		t.Fatal("want a parse error")
	}
}
