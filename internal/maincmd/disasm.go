package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/kaon-lang/kaon/lang/compiler"
)

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisasmFile(stdio, args[0])
}

// DisasmFile compiles path and prints the disassembled bytecode of its
// module function and every nested function it declares.
func DisasmFile(stdio mainer.Stdio, path string) error {
	fn, err := compileFile(stdio, path)
	if err != nil {
		return err
	}
	fmt.Fprint(stdio.Stdout, compiler.Disassemble(fn))
	return nil
}
