package compiler

import "fmt"

// Error is a compile-time failure. The grammar guarantees these are
// unreachable in practice; they exist to make compileStatement and
// compileExpression total functions.
type Error struct {
	Message string
	Line    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("compile error at line %d: %s", e.Line, e.Message)
}
