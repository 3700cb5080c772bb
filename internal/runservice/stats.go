package runservice

import (
	"fmt"

	"github.com/dronelab/autodrone/internal/analyzer"
	"github.com/dronelab/autodrone/internal/lang/vm"
	"github.com/dronelab/autodrone/internal/runsession"
	"github.com/dronelab/autodrone/internal/world"
)

// statsFromRun builds the analyzer's input from a run's terminal World and
// VM event log.
func statsFromRun(run *runsession.Run) analyzer.RunStats {
	w := run.World
	return analyzer.RunStats{
		EnergyUsed:       w.Stats.EnergyUsed,
		EnergyWasted:     w.Stats.EnergyWasted,
		Ticks:            w.Stats.Ticks,
		Moves:            w.Stats.Moves,
		Turns:            w.Stats.Turns,
		Scans:            w.Stats.Scans,
		Won:              w.Status == world.Won,
		Energy:           w.Drone.Energy,
		ConsecutiveTurns: hasConsecutiveTurns(run.VM.EventLog()),
		UnmetObjectives:  unmetObjectives(w),
	}
}

func hasConsecutiveTurns(events []vm.Event) bool {
	prevWasTurn := false
	for _, ev := range events {
		if ev.Type != vm.EventAction {
			continue
		}
		action, ok := ev.Data.(*vm.Action)
		if !ok {
			prevWasTurn = false
			continue
		}
		if action.Kind == vm.ActionTurn {
			if prevWasTurn {
				return true
			}
			prevWasTurn = true
		} else {
			prevWasTurn = false
		}
	}
	return false
}

func unmetObjectives(w *world.World) []string {
	var unmet []string
	for _, obj := range w.Objectives {
		if obj.Type != "collect" {
			continue
		}
		if inventoryCount(w, obj.Resource) < obj.Count {
			unmet = append(unmet, fmt.Sprintf("collect %d %s", obj.Count, obj.Resource))
		}
	}
	return unmet
}

func inventoryCount(w *world.World, resource string) int {
	switch resource {
	case "crystal":
		return w.Inventory.Crystal
	case "data":
		return w.Inventory.Data
	case "energyCell":
		return w.Inventory.EnergyCell
	default:
		return 0
	}
}
