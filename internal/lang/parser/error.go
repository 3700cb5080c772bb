// Package parser implements AutoDrone's two statement grammars (family-1
// block/keyword syntax and family-2 brace/semicolon syntax) over the shared
// token stream shape, funneling both into the single ast.Program tree.
package parser

import "fmt"

// Error is a fatal ParseError, carrying position and an optional hint.
type Error struct {
	Message string
	Line    int
	Column  int
	Hint    string
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("parse error at line %d, column %d: %s (%s)", e.Line, e.Column, e.Message, e.Hint)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Warning is a non-fatal diagnostic accumulated while parsing.
type Warning struct {
	Message string
	Line    int
	Column  int
}
