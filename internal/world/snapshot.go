package world

// Snapshot is an opaque, deep-copied capture of every mutable World field,
// used by the VM's rewind mechanism and by Reset. Snapshot/Restore round
// trips are exact: grid, revealed mask, drone pose, stats, cooldown, status,
// and objective completion all copy by value.
type Snapshot struct {
	grid     [][]TileKind
	revealed [][]bool

	drone     Drone
	inventory Inventory

	scanCooldown int
	stats        Stats

	status             Status
	statusMessage      string
	objectivesComplete bool
}

// Snapshot captures the current World state.
func (w *World) Snapshot() *Snapshot {
	return w.snapshotValue()
}

// Restore overwrites the World's state with a previously captured Snapshot.
// The caller retains ownership of snap; Restore copies out of it, so the
// same snapshot may be restored more than once.
func (w *World) Restore(snap *Snapshot) {
	w.restoreValue(snap)
}

func (w *World) snapshotValue() *Snapshot {
	grid := make([][]TileKind, len(w.Grid))
	for y, row := range w.Grid {
		grid[y] = append([]TileKind(nil), row...)
	}

	revealed := make([][]bool, len(w.Revealed))
	for y, row := range w.Revealed {
		revealed[y] = append([]bool(nil), row...)
	}

	return &Snapshot{
		grid:               grid,
		revealed:           revealed,
		drone:              w.Drone,
		inventory:          w.Inventory,
		scanCooldown:       w.ScanCooldown,
		stats:              w.Stats,
		status:             w.Status,
		statusMessage:      w.StatusMessage,
		objectivesComplete: w.objectivesComplete,
	}
}

func (w *World) restoreValue(snap *Snapshot) {
	grid := make([][]TileKind, len(snap.grid))
	for y, row := range snap.grid {
		grid[y] = append([]TileKind(nil), row...)
	}
	revealed := make([][]bool, len(snap.revealed))
	for y, row := range snap.revealed {
		revealed[y] = append([]bool(nil), row...)
	}

	w.Grid = grid
	w.Revealed = revealed
	w.Drone = snap.drone
	w.Inventory = snap.inventory
	w.ScanCooldown = snap.scanCooldown
	w.Stats = snap.stats
	w.Status = snap.status
	w.StatusMessage = snap.statusMessage
	w.objectivesComplete = snap.objectivesComplete
}
