// Package world implements the deterministic grid-world drone simulator: a
// tile grid, drone pose, energy accounting, inventory, fog of war, and the
// primitive actions (move, turn, collect, wait, scan) that the virtual
// machine drives one tick at a time.
//
// World mutates only through its action methods and Restore, and is
// otherwise reset to its initial configuration via Reset. It never logs,
// never returns a Go error for in-game failures, and never touches a
// clock or PRNG; determinism is the whole point.
package world
