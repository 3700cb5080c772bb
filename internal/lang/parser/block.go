package parser

import (
	"fmt"
	"strconv"

	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/token"
)

// ParseBlockLang parses a family-1 (indentation-free block/keyword) token
// stream into the shared ast.Program.
func ParseBlockLang(tokens []token.Token) (*ast.Program, []Warning, error) {
	c := newCursor(tokens)
	startTok := c.peek()
	c.skipNewlines()

	var body []ast.Statement
	for !c.check(token.EOF) {
		if c.check(token.KW_END) {
			tok := c.peek()
			return nil, c.warnings, &Error{
				Message: "unexpected 'end' with no matching block opener",
				Line:    tok.Line,
				Column:  tok.Column,
				Hint:    "this 'end' is unmatched; each 'end' closes one if, loop, or while block",
			}
		}
		stmt, err := c.parseBlockStatement()
		if err != nil {
			return nil, c.warnings, err
		}
		body = append(body, stmt)
		c.skipNewlines()
	}

	c.checkUnreachableAfterWhileTrue(body)
	return &ast.Program{Pos: astPos(startTok), Body: body}, c.warnings, nil
}

// parseBlockStatement parses exactly one family-1 statement.
func (c *cursor) parseBlockStatement() (ast.Statement, error) {
	tok := c.peek()

	switch tok.Kind {
	case token.KW_MOVE:
		return c.parseBlockMove()
	case token.KW_TURN:
		return c.parseBlockTurn()
	case token.KW_COLLECT:
		c.advance()
		return &ast.Collect{Pos: astPos(tok)}, nil
	case token.KW_WAIT:
		return c.parseBlockWait()
	case token.KW_LOG:
		return c.parseBlockLog()
	case token.KW_IF:
		return c.parseBlockIf()
	case token.KW_LOOP:
		return c.parseBlockLoop()
	case token.KW_WHILE:
		return c.parseBlockWhile()
	default:
		return nil, &Error{
			Message: "expected a statement, got " + tok.Kind.String(),
			Line:    tok.Line,
			Column:  tok.Column,
			Hint:    "statements are move, turn, collect, wait, log, if, loop, or while",
		}
	}
}

func (c *cursor) parseBlockMove() (ast.Statement, error) {
	tok := c.advance() // 'move'
	switch c.peek().Kind {
	case token.KW_FORWARD:
		c.advance()
		return &ast.Move{Pos: astPos(tok), Dir: ast.MoveForward}, nil
	case token.KW_BACK:
		c.advance()
		return &ast.Move{Pos: astPos(tok), Dir: ast.MoveBack}, nil
	default:
		next := c.peek()
		return nil, &Error{
			Message: "expected 'forward' or 'back' after 'move'",
			Line:    next.Line,
			Column:  next.Column,
		}
	}
}

func (c *cursor) parseBlockTurn() (ast.Statement, error) {
	tok := c.advance() // 'turn'
	switch c.peek().Kind {
	case token.KW_LEFT:
		c.advance()
		return &ast.Turn{Pos: astPos(tok), Dir: ast.TurnLeft}, nil
	case token.KW_RIGHT:
		c.advance()
		return &ast.Turn{Pos: astPos(tok), Dir: ast.TurnRight}, nil
	default:
		next := c.peek()
		return nil, &Error{
			Message: "expected 'left' or 'right' after 'turn'",
			Line:    next.Line,
			Column:  next.Column,
		}
	}
}

func (c *cursor) parseBlockWait() (ast.Statement, error) {
	tok := c.advance() // 'wait'
	ticks := 1
	if c.check(token.NUMBER) {
		numTok := c.advance()
		n, _ := strconv.Atoi(numTok.Value)
		ticks = n
	}
	return &ast.Wait{Pos: astPos(tok), Ticks: ticks}, nil
}

func (c *cursor) parseBlockLog() (ast.Statement, error) {
	tok := c.advance() // 'log'
	expr, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Log{Pos: astPos(tok), Expr: expr}, nil
}

func (c *cursor) parseBlockIf() (ast.Statement, error) {
	tok := c.advance() // 'if'
	cond, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.COLON, "open the if body with ':'"); err != nil {
		return nil, err
	}
	c.skipNewlines()
	consequent, err := c.parseBlockBody(token.KW_ELIF, token.KW_ELSE, token.KW_END)
	if err != nil {
		return nil, err
	}

	node := &ast.If{Pos: astPos(tok), Cond: cond, Consequent: consequent}

	switch c.peek().Kind {
	case token.KW_ELIF:
		alt, err := c.parseBlockElif()
		if err != nil {
			return nil, err
		}
		node.Alternate = alt
		return node, nil

	case token.KW_ELSE:
		c.advance()
		if _, err := c.expect(token.COLON, "open the else body with ':'"); err != nil {
			return nil, err
		}
		c.skipNewlines()
		altBlock, err := c.parseBlockBody(token.KW_END)
		if err != nil {
			return nil, err
		}
		node.Alternate = altBlock
		if _, err := c.expect(token.KW_END, "close the if statement with 'end'"); err != nil {
			return nil, err
		}
		return node, nil

	case token.KW_END:
		c.advance()
		return node, nil

	default:
		next := c.peek()
		return nil, &Error{Message: "expected 'elif', 'else', or 'end'", Line: next.Line, Column: next.Column}
	}
}

// parseBlockElif parses a chain of elif clauses, lowering each into a
// nested *ast.If stored as the parent's Alternate.
func (c *cursor) parseBlockElif() (*ast.If, error) {
	tok := c.advance() // 'elif'
	cond, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.COLON, "open the elif body with ':'"); err != nil {
		return nil, err
	}
	c.skipNewlines()
	consequent, err := c.parseBlockBody(token.KW_ELIF, token.KW_ELSE, token.KW_END)
	if err != nil {
		return nil, err
	}

	node := &ast.If{Pos: astPos(tok), Cond: cond, Consequent: consequent}

	switch c.peek().Kind {
	case token.KW_ELIF:
		alt, err := c.parseBlockElif()
		if err != nil {
			return nil, err
		}
		node.Alternate = alt
		return node, nil

	case token.KW_ELSE:
		c.advance()
		if _, err := c.expect(token.COLON, "open the else body with ':'"); err != nil {
			return nil, err
		}
		c.skipNewlines()
		altBlock, err := c.parseBlockBody(token.KW_END)
		if err != nil {
			return nil, err
		}
		node.Alternate = altBlock
		if _, err := c.expect(token.KW_END, "close the if statement with 'end'"); err != nil {
			return nil, err
		}
		return node, nil

	case token.KW_END:
		c.advance()
		return node, nil

	default:
		next := c.peek()
		return nil, &Error{Message: "expected 'elif', 'else', or 'end'", Line: next.Line, Column: next.Column}
	}
}

func (c *cursor) parseBlockLoop() (ast.Statement, error) {
	tok := c.advance() // 'loop'
	sign := 1
	if c.check(token.MINUS) {
		c.advance()
		sign = -1
	}
	numTok, err := c.expect(token.NUMBER, "name the iteration count after 'loop'")
	if err != nil {
		return nil, err
	}
	n, _ := strconv.Atoi(numTok.Value)
	count := sign * n
	if _, err := c.expect(token.COLON, "open the loop body with ':'"); err != nil {
		return nil, err
	}
	c.skipNewlines()
	body, err := c.parseBlockBody(token.KW_END)
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.KW_END, "close the loop with 'end'"); err != nil {
		return nil, err
	}

	if count <= 0 {
		c.addWarning(fmt.Sprintf("LOOP with %d iterations will never execute", count), tok)
	} else if count > 1000 {
		c.addWarning("Large loop count may impact performance", tok)
	}

	return &ast.Loop{Pos: astPos(tok), Count: count, Body: body}, nil
}

func (c *cursor) parseBlockWhile() (ast.Statement, error) {
	tok := c.advance() // 'while'
	cond, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.COLON, "open the while body with ':'"); err != nil {
		return nil, err
	}
	c.skipNewlines()
	body, err := c.parseBlockBody(token.KW_END)
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.KW_END, "close the while loop with 'end'"); err != nil {
		return nil, err
	}

	return &ast.While{Pos: astPos(tok), Cond: cond, Body: body}, nil
}

// parseBlockBody parses statements until one of the given terminator kinds
// is found at the top level, without consuming the terminator.
func (c *cursor) parseBlockBody(terminators ...token.Kind) (*ast.Block, error) {
	startTok := c.peek()
	var stmts []ast.Statement
	for {
		c.skipNewlines()
		if c.isOneOf(terminators...) || c.check(token.EOF) {
			break
		}
		stmt, err := c.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if c.check(token.EOF) {
		tok := c.peek()
		return nil, &Error{Message: "unexpected end of input, block not closed with 'end'", Line: tok.Line, Column: tok.Column}
	}
	c.checkUnreachableAfterWhileTrue(stmts)
	return &ast.Block{Pos: astPos(startTok), Statements: stmts}, nil
}

func (c *cursor) isOneOf(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if c.check(k) {
			return true
		}
	}
	return false
}
