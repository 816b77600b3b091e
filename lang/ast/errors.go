package ast

import (
	"fmt"

	"github.com/kaon-lang/kaon/lang/token"
)

// CompileErrorKind classifies a resolver or compiler diagnostic, per
// spec.md §4.1.6.
type CompileErrorKind uint8

const (
	UndefinedName CompileErrorKind = iota
	DuplicateLocal
	DuplicateField
	BreakOutsideLoop
	ContinueOutsideLoop
	ReturnOutsideFunction
	InvalidAssignmentTarget
	AssignToConst
	TooManyLocals
	TooManyConstants
)

var compileErrorKindNames = [...]string{
	UndefinedName:            "UndefinedName",
	DuplicateLocal:           "DuplicateLocal",
	DuplicateField:           "DuplicateField",
	BreakOutsideLoop:         "BreakOutsideLoop",
	ContinueOutsideLoop:      "ContinueOutsideLoop",
	ReturnOutsideFunction:    "ReturnOutsideFunction",
	InvalidAssignmentTarget:  "InvalidAssignmentTarget",
	AssignToConst:            "AssignToConst",
	TooManyLocals:            "TooManyLocals",
	TooManyConstants:         "TooManyConstants",
}

func (k CompileErrorKind) String() string {
	if int(k) < len(compileErrorKindNames) {
		return compileErrorKindNames[k]
	}
	return "CompileError"
}

// CompileError is a single resolver- or compiler-phase diagnostic, anchored
// to the source span where it was detected.
type CompileError struct {
	Kind CompileErrorKind
	Span token.Span
	Msg  string
}

func (e CompileError) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

func (e CompileError) Error() string { return e.String() }

// CompileErrorList collects CompileErrors in detection order.
type CompileErrorList struct {
	Errors []CompileError
}

func (l *CompileErrorList) Add(kind CompileErrorKind, span token.Span, format string, args ...any) {
	l.Errors = append(l.Errors, CompileError{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)})
}

func (l *CompileErrorList) Err() error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l
}

func (l *CompileErrorList) Error() string {
	if len(l.Errors) == 1 {
		return l.Errors[0].String()
	}
	return fmt.Sprintf("%s (and %d more errors)", l.Errors[0].String(), len(l.Errors)-1)
}
