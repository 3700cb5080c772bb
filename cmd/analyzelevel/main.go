// Command analyzelevel prints quick, human-readable heuristics about level
// JSON files in a directory: dimensions, energy budget, resource counts,
// and tiles that are out of energy range of the nearest charger.
package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/dronelab/autodrone/internal/level"
)

type point struct{ x, y int }

func main() {
	levelsDir := flag.String("dir", "levels", "directory containing level JSON files")
	flag.Parse()

	names := flag.Args()
	if len(names) == 0 {
		all, err := level.ListDir(*levelsDir)
		if err != nil {
			fmt.Printf("error listing levels: %v\n", err)
			return
		}
		names = all
	}

	for _, name := range names {
		fmt.Printf("\n=== Analyzing %s ===\n", name)
		analyzeLevel(*levelsDir, name)
	}
}

func analyzeLevel(dir, name string) {
	lvl, err := level.LoadByName(dir, name)
	if err != nil {
		fmt.Printf("error loading %s: %v\n", filepath.Join(dir, name), err)
		return
	}

	fmt.Printf("Name: %s\n", lvl.Name)
	fmt.Printf("Grid Size: %d x %d\n", lvl.Width, lvl.Height)
	fmt.Printf("Start Energy: %d, Max Energy: %d\n", lvl.StartEnergy, lvl.MaxEnergy)
	fmt.Printf("Optimal Energy: %d, Optimal Steps: %d\n", lvl.OptimalEnergy, lvl.OptimalSteps)

	var chargers, resources []point
	start := point{lvl.StartX, lvl.StartY}

	for y, row := range lvl.Grid {
		for x := range row {
			kind, ok := lvl.TileAt(x, y)
			if !ok {
				continue
			}
			switch kind {
			case level.Charger:
				chargers = append(chargers, point{x, y})
			case level.Crystal, level.Data, level.EnergyCell:
				resources = append(resources, point{x, y})
			}
		}
	}
	chargers = append(chargers, start)

	fmt.Printf("Chargers (including start): %d\n", len(chargers))
	fmt.Printf("Resource tiles: %d\n", len(resources))

	var unreachable []point
	for y, row := range lvl.Grid {
		for x := range row {
			kind, ok := lvl.TileAt(x, y)
			if !ok || kind == level.Wall {
				continue
			}
			if minManhattan(point{x, y}, chargers) > lvl.MaxEnergy {
				unreachable = append(unreachable, point{x, y})
			}
		}
	}

	if len(unreachable) > 0 {
		fmt.Printf("warning: %d tiles are further than max energy from any charger\n", len(unreachable))
		for i, p := range unreachable {
			if i >= 5 {
				fmt.Printf("  ... and %d more\n", len(unreachable)-5)
				break
			}
			fmt.Printf("  unreachable: (%d, %d)\n", p.x, p.y)
		}
	} else {
		fmt.Println("all traversable tiles are within energy range of a charger")
	}
}

func minManhattan(p point, others []point) int {
	best := -1
	for _, o := range others {
		d := abs(p.x-o.x) + abs(p.y-o.y)
		if best == -1 || d < best {
			best = d
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
