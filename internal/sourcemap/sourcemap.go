// Package sourcemap renders a token.Span against its token.Source as a
// caret-excerpt diagnostic: the offending line of source text followed by a
// line of carets under the offending span. It serves the parse/resolve
// compile-phase diagnostics (parser.Error, ast.CompileError), which carry
// spans; lang/vm's RuntimeError intentionally carries only a line number
// (see DESIGN.md), so runtime diagnostics print as plain "line N: ..." text
// instead of going through this package.
package sourcemap

import (
	"fmt"
	"strings"

	"github.com/kaon-lang/kaon/lang/ast"
	"github.com/kaon-lang/kaon/lang/parser"
	"github.com/kaon-lang/kaon/lang/token"
)

// Excerpt renders a single-span diagnostic: a header line naming the
// source position and the message, the source line itself, and a caret
// line underlining the span (clamped to the line's own width for a span
// that continues past a line break).
func Excerpt(span token.Span, message string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", span, message)
	if span.Source == nil {
		return sb.String()
	}
	line, col := span.Source.LineCol(span.Offset)
	text := span.Source.Line(line)
	sb.WriteString(text)
	sb.WriteByte('\n')

	width := span.Len
	if width < 1 {
		width = 1
	}
	if col-1+width > len([]rune(text)) {
		width = len([]rune(text)) - (col - 1)
		if width < 1 {
			width = 1
		}
	}
	sb.WriteString(strings.Repeat(" ", col-1))
	sb.WriteString(strings.Repeat("^", width))
	return sb.String()
}

// ParseErrors renders every error in a *parser.ErrorList as a caret
// excerpt, separated by a blank line.
func ParseErrors(list *parser.ErrorList) string {
	parts := make([]string, len(list.Errors))
	for i, e := range list.Errors {
		parts[i] = Excerpt(e.Span, e.Msg)
	}
	return strings.Join(parts, "\n\n")
}

// CompileErrors renders every error in an *ast.CompileErrorList as a caret
// excerpt, separated by a blank line.
func CompileErrors(list *ast.CompileErrorList) string {
	parts := make([]string, len(list.Errors))
	for i, e := range list.Errors {
		parts[i] = Excerpt(e.Span, fmt.Sprintf("%s: %s", e.Kind, e.Msg))
	}
	return strings.Join(parts, "\n\n")
}
