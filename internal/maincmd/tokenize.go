package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/kaon-lang/kaon/lang/scanner"
	"github.com/kaon-lang/kaon/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFile(stdio, args[0])
}

// TokenizeFile scans path and prints every token's span, kind and, when
// the token has one (identifiers, keywords, numbers, strings), its literal
// text, one per line.
func TokenizeFile(stdio mainer.Stdio, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return printError(stdio, err)
	}
	src := token.NewSource(path, string(text))

	var s scanner.Scanner
	var scanErr error
	s.Init(src, func(span token.Span, msg string) {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", span, msg)
		scanErr = fmt.Errorf("%s: lexical error", path)
	})

	for {
		tok := s.Scan()
		fmt.Fprintf(stdio.Stdout, "%s: %s", tok.Span, tok.Kind)
		if tok.Lit != "" {
			fmt.Fprintf(stdio.Stdout, " %q", tok.Lit)
		}
		fmt.Fprintln(stdio.Stdout)
		if tok.Kind == token.EOF {
			break
		}
	}
	return scanErr
}
