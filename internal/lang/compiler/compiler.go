package compiler

import (
	"github.com/dronelab/autodrone/internal/lang/ast"
)

// Program is a compiled script: a flat instruction array plus the map from
// instruction index back to originating source line.
type Program struct {
	Instructions []Instruction
	SourceMap    map[int]int
}

// compiler holds the state of one forward compilation pass.
type compiler struct {
	instructions []Instruction
	sourceMap    map[int]int
}

// Compile lowers an ast.Program into bytecode.
func Compile(prog *ast.Program) (*Program, error) {
	c := &compiler{sourceMap: make(map[int]int)}
	for _, stmt := range prog.Body {
		if err := c.compileStatement(stmt); err != nil {
			return nil, err
		}
	}
	c.emit(HALT, nil, prog.Pos.Line)
	return &Program{Instructions: c.instructions, SourceMap: c.sourceMap}, nil
}

// emit appends an instruction and records its source line, returning its
// index.
func (c *compiler) emit(op Op, arg interface{}, line int) int {
	idx := len(c.instructions)
	c.instructions = append(c.instructions, Instruction{Op: op, Arg: arg, Line: line})
	if line > 0 {
		c.sourceMap[idx] = line
	}
	return idx
}

// here returns the index the next emitted instruction will occupy.
func (c *compiler) here() int {
	return len(c.instructions)
}

// patch sets instr[idx]'s jump target to addr.
func (c *compiler) patch(idx, addr int) {
	c.instructions[idx].Arg = addr
}

func (c *compiler) compileStatement(stmt ast.Statement) error {
	switch n := stmt.(type) {
	case *ast.Move:
		c.emit(MOVE, string(n.Dir), n.Pos.Line)

	case *ast.Turn:
		c.emit(TURN, string(n.Dir), n.Pos.Line)

	case *ast.Collect:
		c.emit(COLLECT, nil, n.Pos.Line)

	case *ast.Wait:
		c.emit(WAIT, n.Ticks, n.Pos.Line)

	case *ast.Log:
		if err := c.compileExpression(n.Expr); err != nil {
			return err
		}
		c.emit(LOG, nil, n.Pos.Line)

	case *ast.If:
		return c.compileIf(n)

	case *ast.While:
		return c.compileWhile(n)

	case *ast.Loop:
		return c.compileLoop(n)

	default:
		return &Error{Message: "unsupported statement node", Line: stmt.Position().Line}
	}
	return nil
}

// compileIf: compile cond; JUMP_IF_FALSE(?) J1; compile then; if alt
// exists emit JUMP(?) J2, patch J1 to here; compile alt; patch J2 to
// here; otherwise patch J1 to here.
func (c *compiler) compileIf(n *ast.If) error {
	if err := c.compileExpression(n.Cond); err != nil {
		return err
	}
	j1 := c.emit(JUMP_IF_FALSE, nil, n.Pos.Line)

	if err := c.compileBlock(n.Consequent); err != nil {
		return err
	}

	if n.Alternate == nil {
		c.patch(j1, c.here())
		return nil
	}

	j2 := c.emit(JUMP, nil, n.Pos.Line)
	c.patch(j1, c.here())

	switch alt := n.Alternate.(type) {
	case *ast.Block:
		if err := c.compileBlock(alt); err != nil {
			return err
		}
	case *ast.If:
		if err := c.compileIf(alt); err != nil {
			return err
		}
	default:
		return &Error{Message: "unsupported if-alternate node", Line: n.Pos.Line}
	}

	c.patch(j2, c.here())
	return nil
}

// compileWhile: L0=here; compile cond; JUMP_IF_FALSE(?) J; compile body;
// JUMP(L0); patch J to here.
func (c *compiler) compileWhile(n *ast.While) error {
	l0 := c.here()
	if err := c.compileExpression(n.Cond); err != nil {
		return err
	}
	j := c.emit(JUMP_IF_FALSE, nil, n.Pos.Line)

	if err := c.compileBlock(n.Body); err != nil {
		return err
	}
	c.emit(JUMP, l0, n.Pos.Line)
	c.patch(j, c.here())
	return nil
}

// compileLoop lowers `loop count: body end`. count is always an integer
// literal (the parser rejects anything else), so compiling it as
// max(0, count) copies of the body is the simplest correct form. It also
// sidesteps needing a stack-duplicate opcode the instruction set doesn't
// have, which a condition-and-jump counter loop would: every comparison
// op here pops both its operands, so a loop counter tested with GT can't
// survive past the first iteration's condition check without one.
func (c *compiler) compileLoop(n *ast.Loop) error {
	count := n.Count
	if count < 0 {
		count = 0
	}
	for i := 0; i < count; i++ {
		if err := c.compileBlock(n.Body); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileBlock(b *ast.Block) error {
	for _, stmt := range b.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// compileExpression lowers expressions post-order: binary ops compile
// left, then right, then emit the operator; Call pushes args in source
// order then emits CALL; Member compiles its object then emits MEMBER.
func (c *compiler) compileExpression(expr ast.Expression) error {
	switch n := expr.(type) {
	case *ast.Literal:
		c.emit(PUSH, n.Value, n.Pos.Line)

	case *ast.Identifier:
		c.emit(LOAD, n.Name, n.Pos.Line)

	case *ast.Binary:
		if err := c.compileExpression(n.Left); err != nil {
			return err
		}
		if err := c.compileExpression(n.Right); err != nil {
			return err
		}
		op, err := binaryOp(n.Op)
		if err != nil {
			return err
		}
		c.emit(op, nil, n.Pos.Line)

	case *ast.Unary:
		if err := c.compileExpression(n.Operand); err != nil {
			return err
		}
		c.emit(NOT, nil, n.Pos.Line)

	case *ast.Call:
		for _, arg := range n.Arguments {
			if err := c.compileExpression(arg); err != nil {
				return err
			}
		}
		c.emit(CALL, CallArg{Name: n.Callee.Name, Argc: len(n.Arguments)}, n.Pos.Line)

	case *ast.Member:
		if err := c.compileExpression(n.Object); err != nil {
			return err
		}
		c.emit(MEMBER, n.Property, n.Pos.Line)

	default:
		return &Error{Message: "unsupported expression node", Line: expr.Position().Line}
	}
	return nil
}

func binaryOp(op ast.BinaryOp) (Op, error) {
	switch op {
	case ast.OpAdd:
		return ADD, nil
	case ast.OpSub:
		return SUB, nil
	case ast.OpEq:
		return EQ, nil
	case ast.OpNeq:
		return NEQ, nil
	case ast.OpLt:
		return LT, nil
	case ast.OpGt:
		return GT, nil
	case ast.OpLte:
		return LTE, nil
	case ast.OpGte:
		return GTE, nil
	case ast.OpAnd:
		return AND, nil
	case ast.OpOr:
		return OR, nil
	default:
		return NOP, &Error{Message: "unknown binary operator " + string(op)}
	}
}
