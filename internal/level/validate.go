package level

import "fmt"

const (
	minDimension = 3
	maxDimension = 100
)

// Validate checks a Level for structural correctness and winnability: grid
// dimensions, legend consistency, and named collect objectives.
func Validate(l *Level) error {
	if l.Name == "" {
		return fmt.Errorf("level validation: name is required")
	}
	if l.Width < minDimension || l.Width > maxDimension {
		return fmt.Errorf("level validation: width must be between %d and %d, got %d", minDimension, maxDimension, l.Width)
	}
	if l.Height < minDimension || l.Height > maxDimension {
		return fmt.Errorf("level validation: height must be between %d and %d, got %d", minDimension, maxDimension, l.Height)
	}
	if len(l.Grid) != l.Height {
		return fmt.Errorf("level validation: grid must have %d rows to match height, got %d", l.Height, len(l.Grid))
	}
	for i, row := range l.Grid {
		if len(row) != l.Width {
			return fmt.Errorf("level validation: row %d must have %d columns to match width, got %d", i, l.Width, len(row))
		}
		for j := 0; j < len(row); j++ {
			if _, ok := glyphFor(row[j]); !ok {
				return fmt.Errorf("level validation: invalid tile glyph %q at row %d, col %d", row[j], i, j)
			}
		}
	}

	if l.StartX < 0 || l.StartX >= l.Width || l.StartY < 0 || l.StartY >= l.Height {
		return fmt.Errorf("level validation: start position (%d,%d) is out of bounds", l.StartX, l.StartY)
	}
	if startTile, _ := l.TileAt(l.StartX, l.StartY); startTile == Wall {
		return fmt.Errorf("level validation: start position (%d,%d) is a wall", l.StartX, l.StartY)
	}

	switch l.StartFacing {
	case North, East, South, West:
	default:
		return fmt.Errorf("level validation: startFacing must be one of north/east/south/west, got %q", l.StartFacing)
	}

	if l.MaxEnergy <= 0 {
		return fmt.Errorf("level validation: maxEnergy must be positive, got %d", l.MaxEnergy)
	}
	if l.StartEnergy < 0 || l.StartEnergy > l.MaxEnergy {
		return fmt.Errorf("level validation: startEnergy must be between 0 and maxEnergy (%d), got %d", l.MaxEnergy, l.StartEnergy)
	}

	if l.FogOfWar && l.ScanRadius <= 0 {
		return fmt.Errorf("level validation: scanRadius must be positive when fogOfWar is enabled")
	}

	if len(l.Objectives) == 0 {
		return fmt.Errorf("level validation: at least one objective is required")
	}
	for i, obj := range l.Objectives {
		if obj.Type != "collect" {
			return fmt.Errorf("level validation: objective %d has unsupported type %q", i, obj.Type)
		}
		switch obj.Resource {
		case "crystal", "data", "energyCell":
		default:
			return fmt.Errorf("level validation: objective %d has unsupported resource %q", i, obj.Resource)
		}
		if obj.Count <= 0 {
			return fmt.Errorf("level validation: objective %d count must be positive, got %d", i, obj.Count)
		}
	}

	return validateReachability(l)
}

// validateReachability performs a flood fill (BFS over passable tiles) from
// the start position and ensures that, for every objective, at least its
// count of matching resource tiles is reachable, and that a charger is
// reachable whenever optimalEnergy exceeds startEnergy. A grid can contain
// internal walls, so
// reachability is checked exactly rather than by distance heuristic.
func validateReachability(l *Level) error {
	visited := make([][]bool, l.Height)
	for y := range visited {
		visited[y] = make([]bool, l.Width)
	}

	type point struct{ x, y int }
	queue := []point{{l.StartX, l.StartY}}
	visited[l.StartY][l.StartX] = true

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		for _, d := range []point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
			nx, ny := p.x+d.x, p.y+d.y
			if nx < 0 || nx >= l.Width || ny < 0 || ny >= l.Height || visited[ny][nx] {
				continue
			}
			tile, _ := l.TileAt(nx, ny)
			if tile == Wall {
				continue
			}
			visited[ny][nx] = true
			queue = append(queue, point{nx, ny})
		}
	}

	resourceTiles := map[string]TileKind{
		"crystal":    Crystal,
		"data":       Data,
		"energyCell": EnergyCell,
	}

	hasCharger := false
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			tile, _ := l.TileAt(x, y)
			if tile == Charger && visited[y][x] {
				hasCharger = true
			}
		}
	}

	for _, obj := range l.Objectives {
		want := resourceTiles[obj.Resource]
		count := 0
		for y := 0; y < l.Height; y++ {
			for x := 0; x < l.Width; x++ {
				tile, _ := l.TileAt(x, y)
				if tile == want && visited[y][x] {
					count++
				}
			}
		}
		if count < obj.Count {
			return fmt.Errorf("level validation: objective requires %d of resource %q but only %d are reachable from the start position", obj.Count, obj.Resource, count)
		}
	}

	if !hasCharger && l.OptimalEnergy > l.StartEnergy {
		return fmt.Errorf("level validation: no reachable charger, and optimalEnergy (%d) exceeds startEnergy (%d)", l.OptimalEnergy, l.StartEnergy)
	}

	return nil
}
