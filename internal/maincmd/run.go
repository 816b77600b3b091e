package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/kaon-lang/kaon/internal/sourcemap"
	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/compiler"
	"github.com/kaon-lang/kaon/lang/corelib"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/resolver"
	"github.com/kaon-lang/kaon/lang/token"
	"github.com/kaon-lang/kaon/lang/vm"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFile(stdio, args[0])
}

// compileFile runs a source file through the parse/resolve/compile
// pipeline, printing any diagnostic to stdio.Stderr.
func compileFile(stdio mainer.Stdio, path string) (*compiler.Function, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, printError(stdio, err)
	}
	src := token.NewSource(path, string(text))

	chunk, perr := parser.Parse(src)
	if perr != nil {
		if list, ok := perr.(*parser.ErrorList); ok {
			fmt.Fprintln(stdio.Stderr, sourcemap.ParseErrors(list))
		}
		return nil, perr
	}

	if rerr := resolver.Resolve(chunk, corelib.IsGlobal); rerr != nil {
		if list, ok := rerr.(*ast.CompileErrorList); ok {
			fmt.Fprintln(stdio.Stderr, sourcemap.CompileErrors(list))
		}
		return nil, rerr
	}

	fn, cerr := compiler.Compile(chunk)
	if cerr != nil {
		if list, ok := cerr.(*ast.CompileErrorList); ok {
			fmt.Fprintln(stdio.Stderr, sourcemap.CompileErrors(list))
		}
		return nil, cerr
	}
	return fn, nil
}

// RunFile compiles path and executes it to completion, with the core
// library installed as the default global environment.
func RunFile(stdio mainer.Stdio, path string) error {
	fn, err := compileFile(stdio, path)
	if err != nil {
		return err
	}

	m := vm.New()
	m.Stdout = stdio.Stdout
	corelib.Register(m)

	if _, err := m.Interpret(fn); err != nil {
		return printError(stdio, err)
	}
	return nil
}
