package world

// leftOf and rightOf are the fixed facing-rotation tables. back is derived
// as two rights.
var leftOf = map[Facing]Facing{
	North: West,
	West:  South,
	South: East,
	East:  North,
}

var rightOf = map[Facing]Facing{
	North: East,
	East:  South,
	South: West,
	West:  North,
}

func backOf(f Facing) Facing {
	return rightOf[rightOf[f]]
}

// deltaFor returns the unit (dx, dy) step for moving one cell in facing f,
// with +x east and +y south.
func deltaFor(f Facing) (int, int) {
	switch f {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// absoluteFacing resolves a relative move direction against the drone's
// current facing to the absolute facing it implies.
func absoluteFacing(current Facing, rel RelDir) Facing {
	switch rel {
	case Forward:
		return current
	case Back:
		return backOf(current)
	case Left:
		return leftOf[current]
	case Right:
		return rightOf[current]
	default:
		return current
	}
}
