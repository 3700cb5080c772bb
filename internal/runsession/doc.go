// Package runsession owns the pairing of one compiled program, one
// *vm.VM, and one *world.World per run, keyed by a short human-shareable
// ID.
package runsession
