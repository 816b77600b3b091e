package sourcemap_test

import (
	"strings"
	"testing"

	"github.com/kaon-lang/kaon/internal/sourcemap"
	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/token"
)

func TestExcerptUnderlinesSpan(t *testing.T) {
	src := token.NewSource("test", "var x = 1 + \n")
	span := token.MakeSpan(src, 4, 5) // "x"
	out := sourcemap.Excerpt(span, "bad thing")

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "bad thing") {
		t.Errorf("header line = %q, want it to mention the message", lines[0])
	}
	if lines[1] != "var x = 1 + " {
		t.Errorf("source line = %q", lines[1])
	}
	if lines[2] != "    ^" {
		t.Errorf("caret line = %q, want 4 spaces then a single caret", lines[2])
	}
}

func TestParseErrorsRendersEachEntry(t *testing.T) {
	src := token.NewSource("test", "var = 1")
	_, err := parser.Parse(src)
	if err == nil {
		t.Fatal("want a parse error for a missing identifier")
	}
	list := err.(*parser.ErrorList)
	out := sourcemap.ParseErrors(list)
	if out == "" {
		t.Fatal("want non-empty rendered output")
	}
}

func TestCompileErrorsRendersKindAndMessage(t *testing.T) {
	src := token.NewSource("test", "var x = 1")
	span := token.MakeSpan(src, 0, 3)
	list := &ast.CompileErrorList{}
	list.Add(ast.UndefinedName, span, "name %q is not defined", "y")

	out := sourcemap.CompileErrors(list)
	if !strings.Contains(out, "UndefinedName") || !strings.Contains(out, `"y"`) {
		t.Fatalf("got %q", out)
	}
}
