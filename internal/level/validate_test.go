package level

import "testing"

func validLevel() *Level {
	return &Level{
		Name:        "scenario",
		Width:       5,
		Height:      3,
		Grid:        []string{"#####", "#..C#", "#####"},
		StartX:      1,
		StartY:      1,
		StartFacing: East,
		StartEnergy: 100,
		MaxEnergy:   100,
		Objectives:  []Objective{{Type: "collect", Resource: "crystal", Count: 1}},
	}
}

func TestValidateAcceptsWellFormedLevel(t *testing.T) {
	if err := Validate(validLevel()); err != nil {
		t.Fatalf("expected valid level to pass, got %v", err)
	}
}

func TestValidateRejectsMissingName(t *testing.T) {
	l := validLevel()
	l.Name = ""
	if err := Validate(l); err == nil {
		t.Fatal("expected an error for a missing name")
	}
}

func TestValidateRejectsDimensionMismatch(t *testing.T) {
	l := validLevel()
	l.Height = 4
	if err := Validate(l); err == nil {
		t.Fatal("expected an error when grid rows don't match height")
	}
}

func TestValidateRejectsRowWidthMismatch(t *testing.T) {
	l := validLevel()
	l.Grid[1] = "#..C"
	if err := Validate(l); err == nil {
		t.Fatal("expected an error when a row's length doesn't match width")
	}
}

func TestValidateRejectsUnknownGlyph(t *testing.T) {
	l := validLevel()
	l.Grid[1] = "#..?"
	l.Width = len(l.Grid[1])
	if err := Validate(l); err == nil {
		t.Fatal("expected an error for an unknown tile glyph")
	}
}

func TestValidateRejectsOutOfBoundsStart(t *testing.T) {
	l := validLevel()
	l.StartX = 10
	if err := Validate(l); err == nil {
		t.Fatal("expected an error for an out-of-bounds start position")
	}
}

func TestValidateRejectsStartOnWall(t *testing.T) {
	l := validLevel()
	l.StartX, l.StartY = 0, 0
	if err := Validate(l); err == nil {
		t.Fatal("expected an error for starting on a wall")
	}
}

func TestValidateRejectsBadFacing(t *testing.T) {
	l := validLevel()
	l.StartFacing = Facing("northwest")
	if err := Validate(l); err == nil {
		t.Fatal("expected an error for an invalid facing")
	}
}

func TestValidateRejectsStartEnergyAboveMax(t *testing.T) {
	l := validLevel()
	l.StartEnergy = l.MaxEnergy + 1
	if err := Validate(l); err == nil {
		t.Fatal("expected an error when startEnergy exceeds maxEnergy")
	}
}

func TestValidateRejectsFogWithoutScanRadius(t *testing.T) {
	l := validLevel()
	l.FogOfWar = true
	l.ScanRadius = 0
	if err := Validate(l); err == nil {
		t.Fatal("expected an error when fogOfWar is set but scanRadius is not positive")
	}
}

func TestValidateRejectsNoObjectives(t *testing.T) {
	l := validLevel()
	l.Objectives = nil
	if err := Validate(l); err == nil {
		t.Fatal("expected an error when no objectives are defined")
	}
}

func TestValidateRejectsUnreachableObjective(t *testing.T) {
	l := validLevel()
	// Wall off the crystal entirely so it can never be reached.
	l.Grid = []string{"#####", "#.#C#", "#####"}
	if err := Validate(l); err == nil {
		t.Fatal("expected an error for an unreachable objective resource")
	}
}

func TestValidateRejectsInsufficientObjectiveCount(t *testing.T) {
	l := validLevel()
	l.Objectives = []Objective{{Type: "collect", Resource: "crystal", Count: 2}}
	if err := Validate(l); err == nil {
		t.Fatal("expected an error when fewer resources are reachable than the objective requires")
	}
}

func TestValidateRejectsMissingChargerWhenEnergyInsufficient(t *testing.T) {
	l := validLevel()
	l.StartEnergy = 10
	l.OptimalEnergy = 50
	if err := Validate(l); err == nil {
		t.Fatal("expected an error when optimalEnergy exceeds startEnergy with no reachable charger")
	}
}

func TestValidateAcceptsChargerCoveringOptimalEnergyGap(t *testing.T) {
	l := validLevel()
	l.Grid = []string{"#####", "#.@C#", "#####"}
	l.StartEnergy = 10
	l.OptimalEnergy = 50
	if err := Validate(l); err != nil {
		t.Fatalf("expected a reachable charger to satisfy the energy requirement, got %v", err)
	}
}

func TestTileAtReturnsFalseOutOfBounds(t *testing.T) {
	l := validLevel()
	if _, ok := l.TileAt(-1, 0); ok {
		t.Fatal("expected TileAt to report out-of-bounds as not-ok")
	}
	if _, ok := l.TileAt(0, 10); ok {
		t.Fatal("expected TileAt to report out-of-bounds as not-ok")
	}
}

func TestTileAtResolvesGlyphs(t *testing.T) {
	l := validLevel()
	kind, ok := l.TileAt(3, 1)
	if !ok || kind != Crystal {
		t.Fatalf("expected crystal at (3,1), got %v, %v", kind, ok)
	}
}
