package vm

import (
	"strings"

	"github.com/dronelab/autodrone/internal/lang/compiler"
)

// dispatch executes one instruction, advancing ip unless the instruction
// itself sets it (JUMP family), and returns an Action for action opcodes.
func (m *VM) dispatch(instr compiler.Instruction) (*Action, error) {
	switch instr.Op {
	case compiler.MOVE:
		m.ip++
		act := &Action{Kind: ActionMove, Arg: instr.Arg, Line: instr.Line}
		m.emit(EventAction, act)
		return act, nil

	case compiler.TURN:
		m.ip++
		act := &Action{Kind: ActionTurn, Arg: instr.Arg, Line: instr.Line}
		m.emit(EventAction, act)
		return act, nil

	case compiler.COLLECT:
		m.ip++
		act := &Action{Kind: ActionCollect, Line: instr.Line}
		m.emit(EventAction, act)
		return act, nil

	case compiler.WAIT:
		m.ip++
		act := &Action{Kind: ActionWait, Arg: instr.Arg, Line: instr.Line}
		m.emit(EventAction, act)
		return act, nil

	case compiler.LOG:
		val, err := m.pop(instr.Line)
		if err != nil {
			return nil, err
		}
		m.emit(EventLog, val)
		m.ip++
		return nil, nil

	case compiler.PUSH:
		m.push(instr.Arg)
		m.ip++
		return nil, nil

	case compiler.POP:
		if _, err := m.pop(instr.Line); err != nil {
			return nil, err
		}
		m.ip++
		return nil, nil

	case compiler.LOAD:
		name, _ := instr.Arg.(string)
		val, err := m.load(name, instr.Line)
		if err != nil {
			return nil, err
		}
		m.push(val)
		m.ip++
		return nil, nil

	case compiler.CALL:
		call, _ := instr.Arg.(compiler.CallArg)
		args := make([]interface{}, call.Argc)
		for i := call.Argc - 1; i >= 0; i-- {
			v, err := m.pop(instr.Line)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		result, err := m.call(call.Name, args, instr.Line)
		if err != nil {
			return nil, err
		}
		m.push(result)
		m.ip++
		return nil, nil

	case compiler.MEMBER:
		prop, _ := instr.Arg.(string)
		obj, err := m.pop(instr.Line)
		if err != nil {
			return nil, err
		}
		val, err := m.member(obj, prop, instr.Line)
		if err != nil {
			return nil, err
		}
		m.push(val)
		m.ip++
		return nil, nil

	case compiler.ADD, compiler.SUB:
		return nil, m.arith(instr)

	case compiler.EQ, compiler.NEQ, compiler.LT, compiler.GT, compiler.LTE, compiler.GTE:
		return nil, m.compare(instr)

	case compiler.AND, compiler.OR:
		return nil, m.logical(instr)

	case compiler.NOT:
		v, err := m.pop(instr.Line)
		if err != nil {
			return nil, err
		}
		m.push(!truthy(v))
		m.ip++
		return nil, nil

	case compiler.JUMP:
		addr, _ := instr.Arg.(int)
		m.ip = addr
		return nil, nil

	case compiler.JUMP_IF_FALSE:
		v, err := m.pop(instr.Line)
		if err != nil {
			return nil, err
		}
		if !truthy(v) {
			addr, _ := instr.Arg.(int)
			m.ip = addr
		} else {
			m.ip++
		}
		return nil, nil

	case compiler.JUMP_IF_TRUE:
		v, err := m.pop(instr.Line)
		if err != nil {
			return nil, err
		}
		if truthy(v) {
			addr, _ := instr.Arg.(int)
			m.ip = addr
		} else {
			m.ip++
		}
		return nil, nil

	case compiler.HALT:
		m.state = Halted
		m.emit(EventStateChange, m.state)
		m.ip++
		return nil, nil

	case compiler.NOP:
		m.ip++
		return nil, nil

	default:
		return nil, errUnknownOpcode(instr.Op.String(), instr.Line)
	}
}

func (m *VM) push(v interface{}) {
	m.stack = append(m.stack, v)
}

func (m *VM) pop(line int) (interface{}, error) {
	if len(m.stack) == 0 {
		return nil, errStackUnderflow(line)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *VM) arith(instr compiler.Instruction) error {
	right, err := m.pop(instr.Line)
	if err != nil {
		return err
	}
	left, err := m.pop(instr.Line)
	if err != nil {
		return err
	}
	l, lok := toFloat(left)
	r, rok := toFloat(right)
	if !lok || !rok {
		return &RuntimeError{Kind: "BadMember", Message: "arithmetic requires numeric operands", Line: instr.Line}
	}
	var result float64
	switch instr.Op {
	case compiler.ADD:
		result = l + r
	case compiler.SUB:
		result = l - r
	}
	m.push(result)
	m.ip++
	return nil
}

func (m *VM) compare(instr compiler.Instruction) error {
	right, err := m.pop(instr.Line)
	if err != nil {
		return err
	}
	left, err := m.pop(instr.Line)
	if err != nil {
		return err
	}
	var result bool
	if lf, lok := toFloat(left); lok {
		if rf, rok := toFloat(right); rok {
			result = numericCompare(instr.Op, lf, rf)
			m.push(result)
			m.ip++
			return nil
		}
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		result = stringCompare(instr.Op, ls, rs)
	} else {
		result = stringCompare(instr.Op, toDisplay(left), toDisplay(right))
	}
	m.push(result)
	m.ip++
	return nil
}

func numericCompare(op compiler.Op, l, r float64) bool {
	switch op {
	case compiler.EQ:
		return l == r
	case compiler.NEQ:
		return l != r
	case compiler.LT:
		return l < r
	case compiler.GT:
		return l > r
	case compiler.LTE:
		return l <= r
	case compiler.GTE:
		return l >= r
	}
	return false
}

func stringCompare(op compiler.Op, l, r string) bool {
	switch op {
	case compiler.EQ:
		return l == r
	case compiler.NEQ:
		return l != r
	case compiler.LT:
		return l < r
	case compiler.GT:
		return l > r
	case compiler.LTE:
		return l <= r
	case compiler.GTE:
		return l >= r
	}
	return false
}

// logical applies AND/OR with already-evaluated operands; both sides were
// pushed unconditionally during compilation, so this matches short-circuit
// truthiness without actual short-circuit evaluation.
func (m *VM) logical(instr compiler.Instruction) error {
	right, err := m.pop(instr.Line)
	if err != nil {
		return err
	}
	left, err := m.pop(instr.Line)
	if err != nil {
		return err
	}
	var result bool
	if instr.Op == compiler.AND {
		result = truthy(left) && truthy(right)
	} else {
		result = truthy(left) || truthy(right)
	}
	m.push(result)
	m.ip++
	return nil
}

func (m *VM) load(name string, line int) (interface{}, error) {
	switch strings.ToLower(name) {
	case "energy":
		return m.world.Energy(), nil
	case "x":
		return m.world.X(), nil
	case "y":
		return m.world.Y(), nil
	case "facing":
		return m.world.Facing(), nil
	case "inventory":
		return m.world.Inventory(), nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return nil, errUnknownIdentifier(name, line)
	}
}

func (m *VM) call(name string, args []interface{}, line int) (interface{}, error) {
	switch strings.ToLower(name) {
	case "scan", "scan_left", "scan_right":
		return m.world.Scan(strings.ToLower(name))
	default:
		return nil, errUnknownFunction(name, line)
	}
}

func (m *VM) member(obj interface{}, prop string, line int) (interface{}, error) {
	if fields, ok := obj.(map[string]float64); ok {
		if val, ok := fields[prop]; ok {
			return val, nil
		}
	}
	return nil, errBadMember(prop, line)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}

func toFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func toDisplay(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
