package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dumper writes an indented, line-per-node textual rendering of a syntax
// tree, for the parse/resolve/disasm CLI subcommands. It walks the tree
// directly through a type switch, the same style the resolver and compiler
// use on this tree instead of a Visitor indirection (see the package doc
// comment): one more consumer of the closed node set, not a second
// traversal abstraction.
type Dumper struct {
	W         io.Writer
	ShowSpans bool // include each node's source span in its line
	ShowBind  bool // include resolver Binding/FuncScope info, once present
}

// Dump prints n and its descendants.
func (d *Dumper) Dump(n Node) {
	d.node(n, 0)
}

func (d *Dumper) line(depth int, format string, args ...any) {
	fmt.Fprintf(d.W, "%s%s\n", strings.Repeat(". ", depth), fmt.Sprintf(format, args...))
}

func (d *Dumper) head(depth int, n Node, name string) {
	if d.ShowSpans {
		d.line(depth, "%s @%s", name, n.Span())
	} else {
		d.line(depth, "%s", name)
	}
}

func (d *Dumper) node(n Node, depth int) {
	if n == nil {
		return
	}
	switch x := n.(type) {
	case *Chunk:
		d.head(depth, x, "Chunk")
		d.node(x.Block, depth+1)

	case *Block:
		d.head(depth, x, "Block")
		for _, s := range x.Stmts {
			d.node(s, depth+1)
		}

	// statements
	case *IfStmt:
		d.head(depth, x, "If")
		d.node(x.Cond, depth+1)
		d.node(x.Then, depth+1)
		if x.Else != nil {
			d.node(x.Else, depth+1)
		}

	case *WhileStmt:
		d.head(depth, x, "While")
		d.node(x.Cond, depth+1)
		d.node(x.Body, depth+1)

	case *LoopStmt:
		d.head(depth, x, "Loop")
		d.node(x.Body, depth+1)

	case *BlockStmt:
		d.head(depth, x, "BlockStmt")
		d.node(x.Body, depth+1)

	case *VarDeclStmt:
		d.head(depth, x, fmt.Sprintf("VarDecl %s", x.Name.Name))
		if x.Type != nil {
			d.node(x.Type, depth+1)
		}
		if x.Init != nil {
			d.node(x.Init, depth+1)
		}

	case *ConDeclStmt:
		d.head(depth, x, fmt.Sprintf("ConDecl %s", x.Name.Name))
		if x.Type != nil {
			d.node(x.Type, depth+1)
		}
		d.node(x.Init, depth+1)

	case *AssignStmt:
		d.head(depth, x, "Assign")
		d.node(x.Target, depth+1)
		d.node(x.Value, depth+1)

	case *FunStmt:
		d.funcScope(x.Fun, depth, "FunStmt "+x.Fun.Name.Name)

	case *ClassStmt:
		d.class(x.Class, depth)

	case *TraitStmt:
		d.trait(x.Trait, depth)

	case *ConstructorStmt:
		d.head(depth, x, fmt.Sprintf("Constructor %s(%s)", x.Name.Name, paramList(x.Params)))
		d.scopeLine(x.Scope, depth+1)
		d.node(x.Body, depth+1)

	case *ReturnStmt:
		d.head(depth, x, "Return")
		if x.Value != nil {
			d.node(x.Value, depth+1)
		}

	case *BreakStmt:
		d.head(depth, x, "Break")

	case *ContinueStmt:
		d.head(depth, x, "Continue")

	case *ImportStmt:
		d.head(depth, x, "Import")
		d.node(x.Path, depth+1)

	case *ExprStmt:
		d.head(depth, x, "ExprStmt")
		d.node(x.X, depth+1)

	case *BadStmt:
		d.head(depth, x, "Bad")

	// expressions
	case *NumberExpr:
		d.head(depth, x, fmt.Sprintf("Number %g", x.Value))

	case *StringExpr:
		d.head(depth, x, fmt.Sprintf("String %q", x.Value))

	case *BoolExpr:
		d.head(depth, x, fmt.Sprintf("Bool %v", x.Value))

	case *UnitExpr:
		d.head(depth, x, "Unit")

	case *NilExpr:
		d.head(depth, x, "Nil")

	case *SelfExpr:
		d.head(depth, x, "Self"+bindingSuffix(d.ShowBind, x.Binding))

	case *IdentExpr:
		d.head(depth, x, fmt.Sprintf("Ident %s%s", x.Name, bindingSuffix(d.ShowBind, x.Binding)))

	case *BinExpr:
		d.head(depth, x, fmt.Sprintf("Bin %s", binOpName(x.Op)))
		d.node(x.Lhs, depth+1)
		d.node(x.Rhs, depth+1)

	case *UnaryExpr:
		d.head(depth, x, fmt.Sprintf("Unary %s", unaryOpName(x.Op)))
		d.node(x.X, depth+1)

	case *IndexExpr:
		d.head(depth, x, "Index")
		d.node(x.Recv, depth+1)
		d.node(x.Index, depth+1)

	case *ParenExpr:
		d.head(depth, x, "Paren")
		d.node(x.X, depth+1)

	case *ListExpr:
		d.head(depth, x, "List")
		for _, it := range x.Items {
			d.node(it, depth+1)
		}

	case *TupleExpr:
		d.head(depth, x, "Tuple")
		for _, it := range x.Items {
			d.node(it, depth+1)
		}

	case *MapExpr:
		d.head(depth, x, "Map")
		for _, e := range x.Items {
			d.line(depth+1, "Entry")
			d.node(e.Key, depth+2)
			d.node(e.Value, depth+2)
		}

	case *OrExpr:
		d.head(depth, x, "Or")
		d.node(x.Lhs, depth+1)
		d.node(x.Rhs, depth+1)

	case *AndExpr:
		d.head(depth, x, "And")
		d.node(x.Lhs, depth+1)
		d.node(x.Rhs, depth+1)

	case *FunCallExpr:
		d.head(depth, x, "Call")
		d.node(x.Callee, depth+1)
		for _, a := range x.Args {
			d.node(a, depth+1)
		}

	case *MemberExpr:
		d.head(depth, x, fmt.Sprintf("Member .%s", x.Name.Name))
		d.node(x.Recv, depth+1)

	case *AssocExpr:
		d.head(depth, x, fmt.Sprintf("Assoc :%s", x.Name.Name))
		d.node(x.Recv, depth+1)

	case *FunExpr:
		d.funcScope(x.Fun, depth, "FunExpr")

	case *TypeExpr:
		d.head(depth, x, fmt.Sprintf("Type %s", strings.Join(x.Path.Segments, ".")))

	default:
		d.line(depth, "<unknown node %T>", n)
	}
}

func (d *Dumper) class(c *Class, depth int) {
	d.line(depth, "Class %s", c.Name.Name)
	if c.Parent != nil {
		d.line(depth+1, "extends %s", c.Parent.Name)
	}
	for _, f := range c.Fields {
		d.node(f, depth+1)
	}
	for _, m := range c.Methods {
		d.node(m, depth+1)
	}
	for _, ct := range c.Constructors {
		d.node(ct, depth+1)
	}
}

func (d *Dumper) trait(t *Trait, depth int) {
	d.line(depth, "Trait %s", t.Name.Name)
	for _, m := range t.Methods {
		if m.Default != nil {
			d.line(depth+1, "Method %s(%s) [default]", m.Name.Name, paramList(m.Params))
			d.scopeLine(m.Scope, depth+2)
			d.node(m.Default, depth+2)
		} else {
			d.line(depth+1, "Method %s(%s) [abstract]", m.Name.Name, paramList(m.Params))
		}
	}
}

func (d *Dumper) funcScope(f *ScriptFun, depth int, label string) {
	name := label
	if name == "FunExpr" && f.Name != nil {
		name = "FunExpr " + f.Name.Name
	}
	d.line(depth, "%s(%s)", name, paramList(f.Params))
	d.scopeLine(f.Scope, depth+1)
	d.node(f.Body, depth+1)
}

func (d *Dumper) scopeLine(scope *FuncScope, depth int) {
	if !d.ShowBind || scope == nil {
		return
	}
	d.line(depth, "scope: locals=%d upvalues=%d", scope.NumLocals, len(scope.Upvalues))
}

func bindingSuffix(show bool, b *Binding) string {
	if !show || b == nil {
		return ""
	}
	switch b.Kind {
	case BindLocal:
		return fmt.Sprintf(" [local %d]", b.Index)
	case BindUpvalue:
		return fmt.Sprintf(" [upvalue %d]", b.Index)
	case BindGlobal:
		return " [global]"
	default:
		return " [unresolved]"
	}
}

func paramList(params []*IdentExpr) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func binOpName(op BinOp) string {
	names := [...]string{"+", "-", "*", "/", "%", ">", ">=", "<", "<=", "==", "!=", "&", "|", "^"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

func unaryOpName(op UnaryOp) string {
	if op == OpNot {
		return "!"
	}
	return "-"
}
