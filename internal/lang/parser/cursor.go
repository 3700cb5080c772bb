package parser

import (
	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/token"
)

// cursor is the shared token-stream reader used by both statement
// grammars and the shared expression grammar.
type cursor struct {
	tokens   []token.Token
	pos      int
	warnings []Warning
}

func newCursor(tokens []token.Token) *cursor {
	return &cursor{tokens: tokens}
}

func (c *cursor) peek() token.Token {
	return c.tokens[c.pos]
}

func (c *cursor) peekAt(offset int) token.Token {
	idx := c.pos + offset
	if idx >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1] // EOF
	}
	return c.tokens[idx]
}

func (c *cursor) advance() token.Token {
	tok := c.tokens[c.pos]
	if c.pos < len(c.tokens)-1 {
		c.pos++
	}
	return tok
}

func (c *cursor) check(kind token.Kind) bool {
	return c.peek().Kind == kind
}

func (c *cursor) match(kind token.Kind) bool {
	if c.check(kind) {
		c.advance()
		return true
	}
	return false
}

func (c *cursor) expect(kind token.Kind, hint string) (token.Token, error) {
	if c.check(kind) {
		return c.advance(), nil
	}
	tok := c.peek()
	return token.Token{}, &Error{
		Message: "expected " + kind.String() + ", got " + tok.Kind.String(),
		Line:    tok.Line,
		Column:  tok.Column,
		Hint:    hint,
	}
}

// skipNewlines consumes any run of NEWLINE tokens; family-1 statements are
// one-per-logical-line, so statement boundaries skip blank separators freely.
func (c *cursor) skipNewlines() {
	for c.check(token.NEWLINE) {
		c.advance()
	}
}

func (c *cursor) addWarning(message string, pos token.Token) {
	c.warnings = append(c.warnings, Warning{Message: message, Line: pos.Line, Column: pos.Column})
}

// checkUnreachableAfterWhileTrue scans a finished statement list for a
// `while true`/`while (true)` statement followed by further statements in
// the same body, warning at the first statement after it.
func (c *cursor) checkUnreachableAfterWhileTrue(stmts []ast.Statement) {
	for i, s := range stmts {
		w, ok := s.(*ast.While)
		if !ok || !isLiteralTrue(w.Cond) {
			continue
		}
		if i+1 < len(stmts) {
			next := stmts[i+1].Position()
			c.warnings = append(c.warnings, Warning{
				Message: "Code after while-true is unreachable",
				Line:    next.Line,
				Column:  next.Column,
			})
		}
	}
}

func isLiteralTrue(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.ValueType == ast.ValueBool && lit.Value == true
}
