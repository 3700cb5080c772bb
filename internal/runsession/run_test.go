package runsession

import (
	"testing"

	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/compiler"
	"github.com/dronelab/autodrone/internal/lang/vm"
	"github.com/dronelab/autodrone/internal/level"
)

func corridorLevel() *level.Level {
	return &level.Level{
		Name:   "corridor",
		Width:  5,
		Height: 3,
		Grid: []string{
			"#####",
			"#..C#",
			"#####",
		},
		StartX:      1,
		StartY:      1,
		StartFacing: level.East,
		StartEnergy: 100,
		MaxEnergy:   100,
		Objectives:  []level.Objective{{Type: "collect", Resource: "crystal", Count: 1}},
	}
}

func moveThenCollectProgram() *compiler.Program {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.Move{Pos: ast.Pos{Line: 1}, Dir: ast.MoveForward},
		&ast.Move{Pos: ast.Pos{Line: 2}, Dir: ast.MoveForward},
		&ast.Collect{Pos: ast.Pos{Line: 3}},
	}}
	out, _ := compiler.Compile(prog)
	return out
}

func TestRunStepsDriveWorld(t *testing.T) {
	run := NewRun("abcd", corridorLevel(), moveThenCollectProgram(), vm.Options{})
	if err := run.RunToCompletion(100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.World.Inventory.Crystal != 1 {
		t.Errorf("expected crystal collected, got inventory %+v", run.World.Inventory)
	}
}

func TestManagerAddGetDelete(t *testing.T) {
	mgr := NewManager()
	run := NewRun("", corridorLevel(), moveThenCollectProgram(), vm.Options{})
	if err := mgr.Add(run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated ID")
	}
	got, err := mgr.Get(run.ID)
	if err != nil || got != run {
		t.Fatalf("expected to retrieve the same run, got %v, %v", got, err)
	}
	if err := mgr.Delete(run.ID); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, err := mgr.Get(run.ID); err == nil {
		t.Fatal("expected ErrRunNotFound after delete")
	}
}
