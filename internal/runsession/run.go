package runsession

import (
	"time"

	"github.com/dronelab/autodrone/internal/lang/compiler"
	"github.com/dronelab/autodrone/internal/lang/vm"
	"github.com/dronelab/autodrone/internal/level"
	"github.com/dronelab/autodrone/internal/world"
)

// Run pairs one compiled program with one VM and one World, implementing
// the driver loop: tick the VM, apply any returned action to the World,
// stop the VM once the world leaves the playing state.
type Run struct {
	ID    string
	Level *level.Level

	VM    *vm.VM
	World *world.World

	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewRun wires a fresh World/VM pair for lvl around the already compiled
// program. The VM's
// rewind history snapshots the World through the same adapter it queries
// for LOAD/CALL, so VM.Rewind rolls back the simulator atomically with the
// VM's own ip/stack state.
func NewRun(id string, lvl *level.Level, program *compiler.Program, opts vm.Options) *Run {
	w := world.New(lvl)
	adapter := &worldAdapter{w: w}
	m := vm.New(program, adapter, opts)
	m.SetWorldSnapshotter(adapter)
	now := time.Now()
	return &Run{ID: id, Level: lvl, VM: m, World: w, CreatedAt: now, LastAccessedAt: now}
}

// Step advances the VM exactly one instruction, applies any action to the
// World, and stops the VM if the World has left the playing state.
func (r *Run) Step() (*vm.Action, error) {
	action, err := r.VM.Tick()
	if err != nil {
		return action, err
	}
	if action != nil {
		r.applyAction(action)
	}
	if r.World.Status != world.Playing {
		r.VM.Stop()
	}
	return action, nil
}

func (r *Run) applyAction(action *vm.Action) {
	switch action.Kind {
	case vm.ActionMove:
		dir, _ := action.Arg.(string)
		r.World.ExecuteMove(world.RelDir(dir))

	case vm.ActionTurn:
		dir, _ := action.Arg.(string)
		r.World.ExecuteTurn(world.TurnDir(dir))

	case vm.ActionCollect:
		r.World.ExecuteCollect()

	case vm.ActionWait:
		ticks, _ := action.Arg.(int)
		r.World.ExecuteWait(ticks)
	}
}

// RunToCompletion ticks the run until the VM is no longer RUNNING/PAUSED or
// maxTicks is reached, whichever comes first.
func (r *Run) RunToCompletion(maxTicks int) error {
	r.VM.Run()
	for i := 0; i < maxTicks; i++ {
		if r.VM.State() != vm.Running && r.VM.State() != vm.Paused {
			return nil
		}
		if _, err := r.Step(); err != nil {
			return err
		}
	}
	return nil
}
