package vm

import (
	"testing"

	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/compiler"
)

type fakeWorld struct {
	energy float64
	x, y   float64
	facing string
	inv    map[string]float64
	scanFn func(string) (string, error)
}

func (f *fakeWorld) Energy() float64               { return f.energy }
func (f *fakeWorld) X() float64                    { return f.x }
func (f *fakeWorld) Y() float64                    { return f.y }
func (f *fakeWorld) Facing() string                { return f.facing }
func (f *fakeWorld) Inventory() map[string]float64 { return f.inv }
func (f *fakeWorld) Scan(name string) (string, error) {
	if f.scanFn != nil {
		return f.scanFn(name)
	}
	return "empty", nil
}

func newTestWorld() *fakeWorld {
	return &fakeWorld{energy: 100, facing: "east", inv: map[string]float64{"crystal": 0}}
}

func runToHalt(t *testing.T, m *VM) {
	t.Helper()
	m.Run()
	for i := 0; i < 100000; i++ {
		if m.State() != Running && m.State() != Paused {
			return
		}
		m.Tick()
	}
	t.Fatal("program did not halt within iteration budget")
}

func TestTickReturnsActionForMove(t *testing.T) {
	prog, _ := compiler.Compile(mustParseMoveProgram())
	m := New(prog, newTestWorld(), Options{})
	m.Run()
	action, err := m.Tick()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action == nil || action.Kind != ActionMove {
		t.Fatalf("expected MOVE action, got %+v", action)
	}
}

func TestTickHaltsAtEndOfProgram(t *testing.T) {
	prog, _ := compiler.Compile(mustParseMoveProgram())
	m := New(prog, newTestWorld(), Options{})
	runToHalt(t, m)
	if m.State() != Halted {
		t.Fatalf("expected HALTED, got %s", m.State())
	}
}

func TestInstructionLimitSetsErrorState(t *testing.T) {
	// An infinite while(true) loop with no action opcode to keep the
	// instruction budget tight for the test.
	instrs := []compiler.Instruction{
		{Op: compiler.PUSH, Arg: true},
		{Op: compiler.JUMP_IF_FALSE, Arg: 3},
		{Op: compiler.JUMP, Arg: 0},
		{Op: compiler.HALT},
	}
	prog := &compiler.Program{Instructions: instrs, SourceMap: map[int]int{}}
	m := New(prog, newTestWorld(), Options{MaxInstructions: 5})
	m.Run()
	var lastErr error
	for i := 0; i < 10; i++ {
		_, err := m.Tick()
		if err != nil {
			lastErr = err
			break
		}
	}
	if lastErr == nil {
		t.Fatal("expected InstructionLimit error")
	}
	if m.State() != Errored {
		t.Fatalf("expected ERROR state, got %s", m.State())
	}
}

func TestRewindRestoresPriorState(t *testing.T) {
	prog, _ := compiler.Compile(mustParseMoveProgram())
	m := New(prog, newTestWorld(), Options{})
	m.Run()
	m.Tick() // MOVE
	beforeIP := m.ip
	m.Tick() // HALT
	if !m.Rewind(1) {
		t.Fatal("expected rewind to succeed")
	}
	if m.ip != beforeIP {
		t.Errorf("expected ip restored to %d, got %d", beforeIP, m.ip)
	}
	if m.State() != Paused {
		t.Errorf("expected PAUSED after rewind, got %s", m.State())
	}
}

type fakeSnapshotter struct {
	value int
}

func (f *fakeSnapshotter) SnapshotWorld() interface{} { return f.value }
func (f *fakeSnapshotter) RestoreWorld(v interface{}) { f.value = v.(int) }

func TestRewindRestoresWorldSnapshotInLockstep(t *testing.T) {
	prog, _ := compiler.Compile(mustParseMoveProgram())
	m := New(prog, newTestWorld(), Options{})
	snap := &fakeSnapshotter{value: 1}
	m.SetWorldSnapshotter(snap)

	m.Run()
	m.Tick() // MOVE, snapshots world at value=1
	snap.value = 2
	m.Tick() // HALT, snapshots world at value=2
	snap.value = 3

	if !m.Rewind(1) {
		t.Fatal("expected rewind to succeed")
	}
	if snap.value != 2 {
		t.Errorf("expected rewind to restore world snapshot to 2, got %d", snap.value)
	}
}

func TestRewindFailsWithoutEnoughHistory(t *testing.T) {
	prog, _ := compiler.Compile(mustParseMoveProgram())
	m := New(prog, newTestWorld(), Options{})
	m.Run()
	if m.Rewind(5) {
		t.Fatal("expected rewind to fail with insufficient history")
	}
}

func TestLoadUnknownIdentifierErrors(t *testing.T) {
	instrs := []compiler.Instruction{
		{Op: compiler.LOAD, Arg: "warp_speed", Line: 1},
		{Op: compiler.HALT},
	}
	prog := &compiler.Program{Instructions: instrs, SourceMap: map[int]int{}}
	m := New(prog, newTestWorld(), Options{})
	m.Run()
	_, err := m.Tick()
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != "UnknownIdentifier" {
		t.Fatalf("expected UnknownIdentifier error, got %v", err)
	}
}

func TestEventSubscriberReceivesLogEvent(t *testing.T) {
	instrs := []compiler.Instruction{
		{Op: compiler.PUSH, Arg: "hello"},
		{Op: compiler.LOG},
		{Op: compiler.HALT},
	}
	prog := &compiler.Program{Instructions: instrs, SourceMap: map[int]int{}}
	m := New(prog, newTestWorld(), Options{})
	var got []Event
	m.Subscribe(EventLog, func(e Event) { got = append(got, e) })
	runToHalt(t, m)
	if len(got) != 1 || got[0].Data != "hello" {
		t.Fatalf("expected one LOG event with data 'hello', got %+v", got)
	}
}

func mustParseMoveProgram() *ast.Program {
	return &ast.Program{Body: []ast.Statement{
		&ast.Move{Pos: ast.Pos{Line: 1}, Dir: ast.MoveForward},
	}}
}
