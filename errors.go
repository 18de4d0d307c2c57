package main

import (
	"errors"
	"fmt"
)

// SyntaxError is raised by the lexer and the parser. Parsing stops at the
// first one.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line <= 0 {
		return "syntax error: " + e.Msg
	}
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Msg)
}

func syntaxErrorf(line int, format string, args ...any) error {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Runtime error kinds. A *RuntimeError unwraps to one of these.
var (
	ErrUndeclared      = errors.New("undeclared variable")
	ErrRedeclared      = errors.New("redeclaration of a variable")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrZeroDivision    = errors.New("zero division")
	ErrUnknownFunction = errors.New("unknown function")
	ErrNotCallable     = errors.New("not callable")
	ErrArguments       = errors.New("invalid arguments")
	ErrLibrary         = errors.New("unresolvable library")
	ErrReturn          = errors.New("non-processable return")
	ErrNoMain          = errors.New("missing main function")
	ErrBreak           = errors.New("break outside loop")
	ErrRecursion       = errors.New("maximum call depth exceeded")
	ErrOperator        = errors.New("unknown operator")
	ErrNative          = errors.New("native function failed")
)

// RuntimeError is raised by the interpreter. Execution aborts at the first
// one; nothing inside the interpreter recovers from it.
type RuntimeError struct {
	Line int
	Kind error
	Msg  string
}

func (e *RuntimeError) Error() string {
	if e.Line <= 0 {
		return fmt.Sprintf("runtime error (%v): %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("runtime error at line %d (%v): %s", e.Line, e.Kind, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return e.Kind }

func runtimeErrorf(line int, kind error, format string, args ...any) error {
	return &RuntimeError{Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
