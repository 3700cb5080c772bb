package parser

import (
	"strconv"

	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/token"
)

// knownNames is the fixed read-only namespace statements may reference;
// referencing anything outside it produces an unknown-identifier warning.
var knownNames = map[string]bool{
	"energy":     true,
	"x":          true,
	"y":          true,
	"facing":     true,
	"inventory":  true,
	"scan":       true,
	"scan_left":  true,
	"scan_right": true,
	"true":       true,
	"false":      true,
}

// parseExpression parses the shared expression grammar at full precedence:
// or, and, comparison, additive, unary, primary (weakest to strongest).
func (c *cursor) parseExpression() (ast.Expression, error) {
	return c.parseOr()
}

func (c *cursor) parseOr() (ast.Expression, error) {
	left, err := c.parseAnd()
	if err != nil {
		return nil, err
	}
	for c.check(token.KW_OR) {
		pos := c.advance()
		right, err := c.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: astPos(pos), Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseAnd() (ast.Expression, error) {
	left, err := c.parseComparison()
	if err != nil {
		return nil, err
	}
	for c.check(token.KW_AND) {
		pos := c.advance()
		right, err := c.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: astPos(pos), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

var comparisonOps = map[token.Kind]ast.BinaryOp{
	token.EQ:  ast.OpEq,
	token.NEQ: ast.OpNeq,
	token.LT:  ast.OpLt,
	token.GT:  ast.OpGt,
	token.LTE: ast.OpLte,
	token.GTE: ast.OpGte,
}

func (c *cursor) parseComparison() (ast.Expression, error) {
	left, err := c.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[c.peek().Kind]
		if !ok {
			return left, nil
		}
		pos := c.advance()
		right, err := c.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: astPos(pos), Op: op, Left: left, Right: right}
	}
}

func (c *cursor) parseAdditive() (ast.Expression, error) {
	left, err := c.parseUnary()
	if err != nil {
		return nil, err
	}
	for c.check(token.PLUS) || c.check(token.MINUS) {
		op := ast.OpAdd
		if c.peek().Kind == token.MINUS {
			op = ast.OpSub
		}
		pos := c.advance()
		right, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: astPos(pos), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseUnary() (ast.Expression, error) {
	if c.check(token.KW_NOT) {
		pos := c.advance()
		operand, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: astPos(pos), Op: "not", Operand: operand}, nil
	}
	return c.parsePrimary()
}

// parsePrimary parses a literal, identifier, or parenthesized expression,
// then folds in any postfix call/member chain.
func (c *cursor) parsePrimary() (ast.Expression, error) {
	tok := c.peek()

	var expr ast.Expression

	switch tok.Kind {
	case token.NUMBER:
		c.advance()
		val, _ := strconv.ParseFloat(tok.Value, 64)
		expr = &ast.Literal{Pos: astPos(tok), Value: val, ValueType: ast.ValueNumber}

	case token.STRING:
		c.advance()
		expr = &ast.Literal{Pos: astPos(tok), Value: tok.Value, ValueType: ast.ValueString}

	case token.KW_TRUE:
		c.advance()
		expr = &ast.Literal{Pos: astPos(tok), Value: true, ValueType: ast.ValueBool}

	case token.KW_FALSE:
		c.advance()
		expr = &ast.Literal{Pos: astPos(tok), Value: false, ValueType: ast.ValueBool}

	case token.KW_FORWARD, token.KW_BACK, token.KW_LEFT, token.KW_RIGHT:
		// Direction-keyword-as-string, family-1 only.
		c.advance()
		expr = &ast.Literal{Pos: astPos(tok), Value: tok.Value, ValueType: ast.ValueString}

	case token.IDENTIFIER, token.KW_SCAN:
		c.advance()
		name := tok.Value
		if !knownNames[name] {
			c.addWarning("Unknown variable or function", tok)
		}
		ident := &ast.Identifier{Pos: astPos(tok), Name: name}
		if c.check(token.LPAREN) {
			call, err := c.parseCallArgs(ident)
			if err != nil {
				return nil, err
			}
			expr = call
		} else {
			expr = ident
		}

	case token.LPAREN:
		c.advance()
		inner, err := c.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(token.RPAREN, "close the parenthesized expression"); err != nil {
			return nil, err
		}
		expr = inner

	default:
		return nil, &Error{
			Message: "unexpected token " + tok.Kind.String() + " in expression",
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}

	return c.parsePostfix(expr)
}

func (c *cursor) parseCallArgs(callee *ast.Identifier) (ast.Expression, error) {
	openParen := c.advance() // '('
	var args []ast.Expression
	if !c.check(token.RPAREN) {
		for {
			arg, err := c.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := c.expect(token.RPAREN, "close the call's argument list"); err != nil {
		return nil, err
	}
	return &ast.Call{Pos: astPos(openParen), Callee: callee, Arguments: args}, nil
}

// parsePostfix folds in left-associative call/member chains after a primary
// expression: postfix chains of call(args) and member.name are
// left-associative.
func (c *cursor) parsePostfix(expr ast.Expression) (ast.Expression, error) {
	for {
		switch {
		case c.check(token.DOT):
			dotTok := c.advance()
			propTok, err := c.expect(token.IDENTIFIER, "name the property after '.'")
			if err != nil {
				return nil, &Error{Message: "missing property name after '.'", Line: dotTok.Line, Column: dotTok.Column}
			}
			expr = &ast.Member{Pos: astPos(dotTok), Object: expr, Property: propTok.Value}

		case c.check(token.LPAREN):
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				tok := c.peek()
				return nil, &Error{Message: "call target must be an identifier", Line: tok.Line, Column: tok.Column}
			}
			call, err := c.parseCallArgs(ident)
			if err != nil {
				return nil, err
			}
			expr = call

		default:
			return expr, nil
		}
	}
}

func astPos(tok token.Token) ast.Pos {
	return ast.Pos{Line: tok.Line, Column: tok.Column}
}
