package runsession

import (
	"github.com/dronelab/autodrone/internal/world"
)

// worldAdapter exposes a *world.World as the read-only vm.WorldView surface
// the VM queries for LOAD/CALL, keeping internal/lang/vm decoupled from the
// concrete simulator type.
type worldAdapter struct {
	w *world.World
}

func (a *worldAdapter) Energy() float64 { return float64(a.w.Drone.Energy) }
func (a *worldAdapter) X() float64      { return float64(a.w.Drone.X) }
func (a *worldAdapter) Y() float64      { return float64(a.w.Drone.Y) }
func (a *worldAdapter) Facing() string  { return string(a.w.Drone.Facing) }

func (a *worldAdapter) Inventory() map[string]float64 {
	return map[string]float64{
		"crystal":    float64(a.w.Inventory.Crystal),
		"data":       float64(a.w.Inventory.Data),
		"energyCell": float64(a.w.Inventory.EnergyCell),
	}
}

var scanDirByName = map[string]world.ScanDir{
	"scan":       world.ScanForward,
	"scan_left":  world.ScanLeft,
	"scan_right": world.ScanRight,
}

func (a *worldAdapter) Scan(name string) (string, error) {
	dir := scanDirByName[name]
	return a.w.Scan(dir), nil
}

// SnapshotWorld and RestoreWorld implement vm.WorldSnapshotter, letting the
// VM's rewind() roll the simulator back in lockstep with its own ip/stack
// history instead of only the VM's internal state.
func (a *worldAdapter) SnapshotWorld() interface{} {
	return a.w.Snapshot()
}

func (a *worldAdapter) RestoreWorld(snap interface{}) {
	a.w.Restore(snap.(*world.Snapshot))
}
