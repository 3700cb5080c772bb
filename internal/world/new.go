package world

import "github.com/dronelab/autodrone/internal/level"

// New builds a World from an immutable level definition. The returned
// World retains a pristine Snapshot internally so Reset never needs to
// re-read the level.
func New(lvl *level.Level) *World {
	grid := make([][]TileKind, lvl.Height)
	revealed := make([][]bool, lvl.Height)
	for y := 0; y < lvl.Height; y++ {
		grid[y] = make([]TileKind, lvl.Width)
		revealed[y] = make([]bool, lvl.Width)
		for x := 0; x < lvl.Width; x++ {
			tile, _ := lvl.TileAt(x, y)
			grid[y][x] = tile
		}
	}

	objectives := make([]Objective, len(lvl.Objectives))
	for i, o := range lvl.Objectives {
		objectives[i] = Objective{Type: o.Type, Resource: o.Resource, Count: o.Count}
	}

	w := &World{
		Grid:     grid,
		Revealed: revealed,
		FogOfWar: lvl.FogOfWar,
		Drone: Drone{
			X:         lvl.StartX,
			Y:         lvl.StartY,
			Facing:    Facing(lvl.StartFacing),
			Energy:    lvl.StartEnergy,
			MaxEnergy: lvl.MaxEnergy,
		},
		Status:        Playing,
		StatusMessage: "",
		Objectives:    objectives,
		scanRadius:    lvl.ScanRadius,
	}

	w.revealSquare(w.Drone.X, w.Drone.Y, w.scanRadius)
	w.initial = w.snapshotValue()

	return w
}

// Reset restores the World to the configuration it was constructed with.
func (w *World) Reset() {
	if w.initial == nil {
		return
	}
	w.restoreValue(w.initial)
}
