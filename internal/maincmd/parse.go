package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/kaon-lang/kaon/internal/sourcemap"
	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/token"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFile(stdio, args[0], c.ShowSpans)
}

// ParseFile parses path and dumps the resulting AST to stdio.Stdout.
func ParseFile(stdio mainer.Stdio, path string, showSpans bool) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}
	src := token.NewSource(path, string(text))

	chunk, perr := parser.Parse(src)
	if perr != nil {
		if list, ok := perr.(*parser.ErrorList); ok {
			fmt.Fprintln(stdio.Stderr, sourcemap.ParseErrors(list))
			return perr
		}
		return printError(stdio, perr)
	}

	d := ast.Dumper{W: stdio.Stdout, ShowSpans: showSpans}
	d.Dump(chunk)
	return nil
}
