package runservice

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCorridorLevel(t *testing.T, dir string) {
	t.Helper()
	content := `{
		"name": "corridor",
		"width": 5,
		"height": 3,
		"grid": ["#####", "#..C#", "#####"],
		"startX": 1,
		"startY": 1,
		"startFacing": "east",
		"startEnergy": 100,
		"maxEnergy": 100,
		"objectives": [{"type": "collect", "resource": "crystal", "count": 1}],
		"optimalEnergy": 10,
		"optimalSteps": 5
	}`
	if err := os.WriteFile(filepath.Join(dir, "corridor.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture level: %v", err)
	}
}

func TestServiceCreateRunTickAndScore(t *testing.T) {
	dir := t.TempDir()
	writeCorridorLevel(t, dir)

	svc := New(dir)
	ctx := context.Background()

	summary, err := svc.CreateRun(ctx, "corridor", "move forward\nmove forward\ncollect\n", SyntaxBlock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.RunToCompletion(ctx, summary.ID, 1000); err != nil {
		t.Fatalf("unexpected error running to completion: %v", err)
	}

	final, err := svc.GetState(ctx, summary.ID)
	if err != nil {
		t.Fatalf("unexpected error getting state: %v", err)
	}
	if final.Inventory["crystal"] != 1 {
		t.Errorf("expected crystal collected, got %+v", final.Inventory)
	}

	result, err := svc.Score(ctx, summary.ID)
	if err != nil {
		t.Fatalf("unexpected error scoring: %v", err)
	}
	if result.CompletionScore != 10 {
		t.Errorf("expected completion score 10 for a won run, got %d", result.CompletionScore)
	}
}

func TestServiceRewindAfterTick(t *testing.T) {
	dir := t.TempDir()
	writeCorridorLevel(t, dir)
	svc := New(dir)
	ctx := context.Background()

	summary, err := svc.CreateRun(ctx, "corridor", "move forward\n", SyntaxBlock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	startX, startEnergy := summary.X, summary.Energy

	if _, err := svc.Tick(ctx, summary.ID); err != nil {
		t.Fatalf("unexpected error ticking: %v", err)
	}

	after, err := svc.GetState(ctx, summary.ID)
	if err != nil {
		t.Fatalf("unexpected error getting state: %v", err)
	}
	if after.X == startX || after.Energy == startEnergy {
		t.Fatalf("expected the move to change world state, got X=%d energy=%d", after.X, after.Energy)
	}

	rewound, err := svc.Rewind(ctx, summary.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error rewinding: %v", err)
	}
	if rewound.X != startX {
		t.Errorf("expected rewind to restore X to %d, got %d", startX, rewound.X)
	}
	if rewound.Energy != startEnergy {
		t.Errorf("expected rewind to restore energy to %d, got %d", startEnergy, rewound.Energy)
	}
}
