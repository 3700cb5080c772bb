package parser

import (
	"fmt"
	"strconv"

	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/token"
)

// ParseBraceLang parses a family-2 (brace/semicolon) token stream into the
// shared ast.Program.
func ParseBraceLang(tokens []token.Token) (*ast.Program, []Warning, error) {
	c := newCursor(tokens)
	startTok := c.peek()
	c.skipNewlines()

	var body []ast.Statement
	for !c.check(token.EOF) {
		stmt, err := c.parseBraceStatement()
		if err != nil {
			return nil, c.warnings, err
		}
		body = append(body, stmt)
		c.skipNewlines()
	}

	c.checkUnreachableAfterWhileTrue(body)
	return &ast.Program{Pos: astPos(startTok), Body: body}, c.warnings, nil
}

func (c *cursor) parseBraceStatement() (ast.Statement, error) {
	tok := c.peek()

	switch tok.Kind {
	case token.KW_MOVE:
		return c.parseBraceCallStatement(moveDirFor(tok.Value))
	case token.KW_TURN:
		return c.parseBraceCallStatement(turnDirFor(tok.Value))
	case token.KW_SCAN:
		return c.parseBraceScanStatement()
	case token.KW_COLLECT:
		return c.parseBraceCallStatement(nil)
	case token.KW_WAIT:
		return c.parseBraceWait()
	case token.KW_LOG:
		return c.parseBraceLog()
	case token.KW_IF:
		return c.parseBraceIf()
	case token.KW_FOR:
		return c.parseBraceFor()
	case token.KW_WHILE:
		return c.parseBraceWhile()
	default:
		return nil, &Error{
			Message: "expected a statement, got " + tok.Kind.String(),
			Line:    tok.Line,
			Column:  tok.Column,
			Hint:    "statements are move_forward/move_back, turn_left/turn_right, collect, wait, log, if, for, or while, each terminated with ';'",
		}
	}
}

func moveDirFor(spelling string) *ast.MoveDir {
	var d ast.MoveDir
	if spelling == "move_back" {
		d = ast.MoveBack
	} else {
		d = ast.MoveForward
	}
	return &d
}

func turnDirFor(spelling string) *ast.MoveDir {
	var d ast.MoveDir
	if spelling == "turn_right" {
		d = ast.MoveDir(ast.TurnRight)
	} else {
		d = ast.MoveDir(ast.TurnLeft)
	}
	return &d
}

// parseBraceCallStatement handles the function-call-style statements that
// carry no arguments: move_forward(), move_back(), turn_left(), turn_right(),
// collect(). The lexer has already folded the surface spelling into the
// token's Value field during lexing, so dispatch happens on the token
// consumed by the caller, not here; dir is nil for collect.
func (c *cursor) parseBraceCallStatement(dir *ast.MoveDir) (ast.Statement, error) {
	tok := c.advance()
	if _, err := c.expect(token.LPAREN, "call statements take empty parens, e.g. collect()"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.RPAREN, "close the empty argument list"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.SEMICOLON, "terminate the statement with ';'"); err != nil {
		return nil, err
	}

	switch tok.Kind {
	case token.KW_MOVE:
		return &ast.Move{Pos: astPos(tok), Dir: ast.MoveDir(*dir)}, nil
	case token.KW_TURN:
		return &ast.Turn{Pos: astPos(tok), Dir: ast.TurnDir(*dir)}, nil
	default: // token.KW_COLLECT
		return &ast.Collect{Pos: astPos(tok)}, nil
	}
}

// parseBraceScanStatement handles scan()/scan_left()/scan_right() used as a
// statement. The shared AST has no bare expression-statement node, so the
// call is wrapped in a Log: the VM still performs the scan (consuming scan
// energy/cooldown) and emits its result as a LOG event.
func (c *cursor) parseBraceScanStatement() (ast.Statement, error) {
	tok := c.advance() // scan/scan_left/scan_right
	ident := &ast.Identifier{Pos: astPos(tok), Name: tok.Value}
	expr, err := c.parsePostfix(ident)
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.SEMICOLON, "terminate the statement with ';'"); err != nil {
		return nil, err
	}
	return &ast.Log{Pos: astPos(tok), Expr: expr}, nil
}

func (c *cursor) parseBraceWait() (ast.Statement, error) {
	tok := c.advance() // 'wait'
	if _, err := c.expect(token.LPAREN, "wait takes a tick count in parens, e.g. wait(3)"); err != nil {
		return nil, err
	}
	ticks := 1
	if c.check(token.NUMBER) {
		numTok := c.advance()
		n, _ := strconv.Atoi(numTok.Value)
		ticks = n
	}
	if _, err := c.expect(token.RPAREN, "close wait's argument list"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.SEMICOLON, "terminate the statement with ';'"); err != nil {
		return nil, err
	}
	return &ast.Wait{Pos: astPos(tok), Ticks: ticks}, nil
}

func (c *cursor) parseBraceLog() (ast.Statement, error) {
	tok := c.advance() // 'log'
	if _, err := c.expect(token.LPAREN, "log takes its argument in parens, e.g. log(energy)"); err != nil {
		return nil, err
	}
	expr, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.RPAREN, "close log's argument list"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.SEMICOLON, "terminate the statement with ';'"); err != nil {
		return nil, err
	}
	return &ast.Log{Pos: astPos(tok), Expr: expr}, nil
}

func (c *cursor) parseBraceIf() (ast.Statement, error) {
	tok := c.advance() // 'if'
	if _, err := c.expect(token.LPAREN, "condition the if on a parenthesized expression"); err != nil {
		return nil, err
	}
	cond, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.RPAREN, "close the if condition"); err != nil {
		return nil, err
	}
	consequent, err := c.parseBraceBlock()
	if err != nil {
		return nil, err
	}

	node := &ast.If{Pos: astPos(tok), Cond: cond, Consequent: consequent}

	c.skipNewlines()
	if !c.check(token.KW_ELSE) {
		return node, nil
	}
	c.advance() // 'else'

	c.skipNewlines()
	if c.check(token.KW_IF) {
		// else-if chain lowers to a nested If stored as Alternate.
		nested, err := c.parseBraceIf()
		if err != nil {
			return nil, err
		}
		node.Alternate = nested
		return node, nil
	}

	altBlock, err := c.parseBraceBlock()
	if err != nil {
		return nil, err
	}
	node.Alternate = altBlock
	return node, nil
}

// parseBraceFor lowers a C-style counting loop
// `for (int i = a; i < b; i++) { ... }` to ast.Loop{Count: b-a}. The
// language exposes no loop variable, so only the iteration count survives
// translation.
func (c *cursor) parseBraceFor() (ast.Statement, error) {
	tok := c.advance() // 'for'
	if _, err := c.expect(token.LPAREN, "for takes a C-style header in parens"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.KW_INT, "declare the loop variable with int"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.IDENTIFIER, "name the loop variable"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.ASSIGN, "initialize the loop variable with '='"); err != nil {
		return nil, err
	}
	startTok, err := c.expect(token.NUMBER, "the loop variable must start from a numeric literal")
	if err != nil {
		return nil, err
	}
	start, _ := strconv.Atoi(startTok.Value)
	if _, err := c.expect(token.SEMICOLON, "separate the for header clauses with ';'"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.IDENTIFIER, "the condition must compare the loop variable"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.LT, "the for condition must be a '<' bound, e.g. i < 10"); err != nil {
		return nil, err
	}
	endTok, err := c.expect(token.NUMBER, "the loop bound must be a numeric literal")
	if err != nil {
		return nil, err
	}
	end, _ := strconv.Atoi(endTok.Value)
	if _, err := c.expect(token.SEMICOLON, "separate the for header clauses with ';'"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.IDENTIFIER, "the increment clause must name the loop variable"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.INCR, "the for loop must increment by one with '++'"); err != nil {
		return nil, err
	}
	if _, err := c.expect(token.RPAREN, "close the for header"); err != nil {
		return nil, err
	}

	body, err := c.parseBraceBlock()
	if err != nil {
		return nil, err
	}

	count := end - start
	if count <= 0 {
		c.addWarning(fmt.Sprintf("LOOP with %d iterations will never execute", count), tok)
	} else if count > 1000 {
		c.addWarning("Large loop count may impact performance", tok)
	}

	return &ast.Loop{Pos: astPos(tok), Count: count, Body: body}, nil
}

func (c *cursor) parseBraceWhile() (ast.Statement, error) {
	tok := c.advance() // 'while'
	if _, err := c.expect(token.LPAREN, "condition the while loop on a parenthesized expression"); err != nil {
		return nil, err
	}
	cond, err := c.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := c.expect(token.RPAREN, "close the while condition"); err != nil {
		return nil, err
	}
	body, err := c.parseBraceBlock()
	if err != nil {
		return nil, err
	}

	return &ast.While{Pos: astPos(tok), Cond: cond, Body: body}, nil
}

// parseBraceBlock parses a '{' ... '}' body.
func (c *cursor) parseBraceBlock() (*ast.Block, error) {
	c.skipNewlines()
	openTok, err := c.expect(token.LBRACE, "open the block with '{'")
	if err != nil {
		return nil, err
	}

	var stmts []ast.Statement
	for {
		c.skipNewlines()
		if c.check(token.RBRACE) || c.check(token.EOF) {
			break
		}
		stmt, err := c.parseBraceStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}

	if _, err := c.expect(token.RBRACE, "close the block with '}'"); err != nil {
		return nil, err
	}

	c.checkUnreachableAfterWhileTrue(stmts)
	return &ast.Block{Pos: astPos(openTok), Statements: stmts}, nil
}
