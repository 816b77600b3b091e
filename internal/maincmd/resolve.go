package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/kaon-lang/kaon/internal/sourcemap"
	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/corelib"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/resolver"
	"github.com/kaon-lang/kaon/lang/token"
)

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFile(stdio, args[0], c.ShowSpans)
}

// ResolveFile parses and resolves path, then dumps the AST annotated with
// binding and scope information.
func ResolveFile(stdio mainer.Stdio, path string, showSpans bool) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}
	src := token.NewSource(path, string(text))

	chunk, perr := parser.Parse(src)
	if perr != nil {
		if list, ok := perr.(*parser.ErrorList); ok {
			fmt.Fprintln(stdio.Stderr, sourcemap.ParseErrors(list))
		}
		return perr
	}

	if rerr := resolver.Resolve(chunk, corelib.IsGlobal); rerr != nil {
		if list, ok := rerr.(*ast.CompileErrorList); ok {
			fmt.Fprintln(stdio.Stderr, sourcemap.CompileErrors(list))
		}
		return rerr
	}

	d := ast.Dumper{W: stdio.Stdout, ShowSpans: showSpans, ShowBind: true}
	d.Dump(chunk)
	return nil
}
