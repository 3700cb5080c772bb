package vm

import (
	"time"

	"github.com/dronelab/autodrone/internal/lang/compiler"
)

// State is the VM's execution state machine.
type State string

const (
	Ready   State = "READY"
	Running State = "RUNNING"
	Paused  State = "PAUSED"
	Halted  State = "HALTED"
	Errored State = "ERROR"
)

const (
	DefaultMaxInstructions   = 10000
	DefaultMaxLoopIterations = 1000

	historyCap = 1000
)

// WorldView is the read-only surface the VM queries for LOAD and CALL.
// The VM never mutates the world directly; action opcodes are handed back
// to the driver as Action descriptors instead.
type WorldView interface {
	Energy() float64
	X() float64
	Y() float64
	Facing() string
	Inventory() map[string]float64
	// Scan dispatches one of the fixed scan variants (scan, scan_left,
	// scan_right) and returns the observed tile kind as a string.
	Scan(name string) (string, error)
}

// Options configures instruction and loop budgets.
type Options struct {
	MaxInstructions   int
	MaxLoopIterations int
}

func (o Options) withDefaults() Options {
	if o.MaxInstructions <= 0 {
		o.MaxInstructions = DefaultMaxInstructions
	}
	if o.MaxLoopIterations <= 0 {
		o.MaxLoopIterations = DefaultMaxLoopIterations
	}
	return o
}

// WorldSnapshotter lets the VM capture and restore opaque external
// simulator state atomically alongside its own ip/stack history, so that
// rewind() restores the VM and the grid-world together as a single unit
// per tick. A VM with no snapshotter set only rewinds its own state.
type WorldSnapshotter interface {
	SnapshotWorld() interface{}
	RestoreWorld(interface{})
}

// snapshot is the full VM state captured before each tick, enabling
// rewind().
type snapshot struct {
	ip               int
	stack            []interface{}
	instructionCount int
	state            State
	world            interface{}
}

// VM is a stepwise bytecode interpreter. It advances exactly one
// instruction per Tick() call and never blocks.
type VM struct {
	program *compiler.Program
	world   WorldView
	opts    Options

	ip               int
	stack            []interface{}
	instructionCount int
	state            State

	history     []snapshot
	eventLog    []Event
	subscribers map[EventKind][]Subscriber

	worldSnap WorldSnapshotter

	clock func() int64
}

// New creates a VM ready to execute program against world.
func New(program *compiler.Program, world WorldView, opts Options) *VM {
	return &VM{
		program:     program,
		world:       world,
		opts:        opts.withDefaults(),
		state:       Ready,
		subscribers: make(map[EventKind][]Subscriber),
		clock:       func() int64 { return time.Now().UnixNano() },
	}
}

// SetWorldSnapshotter installs the hook the VM uses to snapshot/restore
// external simulator state in lockstep with its own history. Callers that
// want rewind() to roll back the simulator as well as the VM must set this
// before the first Tick().
func (m *VM) SetWorldSnapshotter(s WorldSnapshotter) {
	m.worldSnap = s
}

// State returns the VM's current execution state.
func (m *VM) State() State { return m.state }

// EventLog returns the append-only event log accumulated so far.
func (m *VM) EventLog() []Event { return m.eventLog }

// InstructionCount returns the number of instructions executed so far.
func (m *VM) InstructionCount() int { return m.instructionCount }

// Run transitions READY to RUNNING, or resets first if HALTED/ERROR.
func (m *VM) Run() {
	if m.state == Halted || m.state == Errored {
		m.Reset()
	}
	m.state = Running
}

// Pause transitions RUNNING to PAUSED.
func (m *VM) Pause() {
	if m.state == Running {
		m.state = Paused
	}
}

// Stop forces the VM to HALTED.
func (m *VM) Stop() {
	m.state = Halted
	m.emit(EventStateChange, m.state)
}

// Reset discards history, log, stack, and counters, returning to READY.
func (m *VM) Reset() {
	m.ip = 0
	m.stack = nil
	m.instructionCount = 0
	m.history = nil
	m.eventLog = nil
	m.state = Ready
}

// GetCurrentLine reports the source line for the instruction about to
// execute, or 0 if unmapped.
func (m *VM) GetCurrentLine() int {
	if line, ok := m.program.SourceMap[m.ip]; ok {
		return line
	}
	return 0
}

// Tick advances exactly one instruction while RUNNING or PAUSED.
func (m *VM) Tick() (*Action, error) {
	if m.state != Running && m.state != Paused {
		return nil, nil
	}

	if m.instructionCount >= m.opts.MaxInstructions {
		m.state = Errored
		err := errInstructionLimit(m.opts.MaxInstructions)
		m.emit(EventError, err)
		return nil, err
	}

	if m.ip >= len(m.program.Instructions) {
		m.state = Halted
		m.emit(EventStateChange, m.state)
		return nil, nil
	}

	m.pushHistory()
	m.instructionCount++

	instr := m.program.Instructions[m.ip]
	action, err := m.dispatch(instr)
	if err != nil {
		m.state = Errored
		m.emit(EventError, map[string]interface{}{"error": err.Error(), "line": instr.Line})
		return nil, err
	}
	return action, nil
}

func (m *VM) pushHistory() {
	stackCopy := make([]interface{}, len(m.stack))
	copy(stackCopy, m.stack)

	var worldState interface{}
	if m.worldSnap != nil {
		worldState = m.worldSnap.SnapshotWorld()
	}

	m.history = append(m.history, snapshot{
		ip:               m.ip,
		stack:            stackCopy,
		instructionCount: m.instructionCount,
		state:            m.state,
		world:            worldState,
	})
	if len(m.history) > historyCap {
		m.history = m.history[len(m.history)-historyCap:]
	}
}

// Rewind undoes the last n ticks by restoring the snapshot taken before the
// n-th most recent tick (Rewind(1) returns to just before the last tick),
// truncating history from that point. Returns false if n < 1 or there isn't
// enough history.
func (m *VM) Rewind(n int) bool {
	idx := len(m.history) - n
	if idx < 0 || idx >= len(m.history) {
		return false
	}
	snap := m.history[idx]
	m.ip = snap.ip
	m.stack = make([]interface{}, len(snap.stack))
	copy(m.stack, snap.stack)
	m.instructionCount = snap.instructionCount
	m.state = Paused
	m.history = m.history[:idx]
	if m.worldSnap != nil && snap.world != nil {
		m.worldSnap.RestoreWorld(snap.world)
	}
	m.emit(EventStateChange, m.state)
	return true
}
