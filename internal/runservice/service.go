// Package runservice is the orchestration facade over the language core
// and the run session manager: one Service fronting compilation, run
// lifecycle, and level loading for the API, WebSocket, and MCP transports.
package runservice

import (
	"context"
	"fmt"

	"github.com/dronelab/autodrone/internal/analyzer"
	"github.com/dronelab/autodrone/internal/lang/ast"
	"github.com/dronelab/autodrone/internal/lang/compiler"
	"github.com/dronelab/autodrone/internal/lang/lexer/blocklang"
	"github.com/dronelab/autodrone/internal/lang/lexer/bracelang"
	"github.com/dronelab/autodrone/internal/lang/parser"
	"github.com/dronelab/autodrone/internal/lang/vm"
	"github.com/dronelab/autodrone/internal/level"
	"github.com/dronelab/autodrone/internal/runsession"
)

// Syntax selects which surface grammar to parse a script with.
type Syntax string

const (
	SyntaxBlock Syntax = "block"
	SyntaxBrace Syntax = "brace"
)

// RunSummary is the subset of run state returned to API/MCP callers.
type RunSummary struct {
	ID                string
	VMState           vm.State
	WorldStatus       string
	InstructionCount  int
	CurrentLine       int
	Energy, X, Y      int
	Facing            string
	Inventory         map[string]int
	Warnings          []string
}

// Service is the orchestration facade: compile source, create a run,
// advance it, rewind it, and score it.
type Service struct {
	levelsDir string
	runs      *runsession.Manager
}

// New creates a Service that loads levels from levelsDir.
func New(levelsDir string) *Service {
	return &Service{levelsDir: levelsDir, runs: runsession.NewManager()}
}

// CreateRun compiles source under syntax against the named level and
// registers a new run, returning its summary.
func (s *Service) CreateRun(ctx context.Context, levelName, source string, syntax Syntax) (*RunSummary, error) {
	lvl, err := level.LoadByName(s.levelsDir, levelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %s: %w", levelName, err)
	}
	if err := level.Validate(lvl); err != nil {
		return nil, fmt.Errorf("level %s failed validation: %w", levelName, err)
	}

	program, warnings, err := Compile(source, syntax)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}

	run := runsession.NewRun("", lvl, program, vm.Options{})
	if err := s.runs.Add(run); err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}

	summary := s.summarize(run)
	summary.Warnings = warnings
	return summary, nil
}

// Compile parses source with the selected syntax and lowers it to
// bytecode, collecting any non-fatal parser warnings as strings.
func Compile(source string, syntax Syntax) (*compiler.Program, []string, error) {
	var (
		astProg  *ast.Program
		warnings []parser.Warning
	)

	switch syntax {
	case SyntaxBrace:
		tokens, lexErr := bracelang.Lex(source)
		if lexErr != nil {
			return nil, nil, lexErr
		}
		p, w, parseErr := parser.ParseBraceLang(tokens)
		if parseErr != nil {
			return nil, nil, parseErr
		}
		astProg, warnings = p, w

	default:
		tokens, lexErr := blocklang.Lex(source)
		if lexErr != nil {
			return nil, nil, lexErr
		}
		p, w, parseErr := parser.ParseBlockLang(tokens)
		if parseErr != nil {
			return nil, nil, parseErr
		}
		astProg, warnings = p, w
	}

	out, err := compiler.Compile(astProg)
	if err != nil {
		return nil, nil, err
	}

	warningStrings := make([]string, len(warnings))
	for i, w := range warnings {
		warningStrings[i] = fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return out, warningStrings, nil
}

func (s *Service) summarize(run *runsession.Run) *RunSummary {
	return &RunSummary{
		ID:               run.ID,
		VMState:          run.VM.State(),
		WorldStatus:      string(run.World.Status),
		InstructionCount: run.VM.InstructionCount(),
		CurrentLine:      run.VM.GetCurrentLine(),
		Energy:           run.World.Drone.Energy,
		X:                run.World.Drone.X,
		Y:                run.World.Drone.Y,
		Facing:           string(run.World.Drone.Facing),
		Inventory: map[string]int{
			"crystal":    run.World.Inventory.Crystal,
			"data":       run.World.Inventory.Data,
			"energyCell": run.World.Inventory.EnergyCell,
		},
	}
}

// Tick advances one run by exactly one instruction.
func (s *Service) Tick(ctx context.Context, runID string) (*RunSummary, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}
	if run.VM.State() == vm.Ready {
		run.VM.Run()
	}
	if _, err := run.Step(); err != nil {
		return nil, fmt.Errorf("tick failed: %w", err)
	}
	return s.summarize(run), nil
}

// RunToCompletion ticks a run until it halts, errors, or hits maxTicks.
func (s *Service) RunToCompletion(ctx context.Context, runID string, maxTicks int) (*RunSummary, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}
	if err := run.RunToCompletion(maxTicks); err != nil {
		return nil, fmt.Errorf("run failed: %w", err)
	}
	return s.summarize(run), nil
}

// Rewind undoes the run's last n ticks.
func (s *Service) Rewind(ctx context.Context, runID string, n int) (*RunSummary, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}
	if !run.VM.Rewind(n) {
		return nil, fmt.Errorf("insufficient history to rewind %d ticks", n)
	}
	return s.summarize(run), nil
}

// GetState returns a run's current summary without advancing it.
func (s *Service) GetState(ctx context.Context, runID string) (*RunSummary, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}
	return s.summarize(run), nil
}

// GetEvents returns a run's full event log.
func (s *Service) GetEvents(ctx context.Context, runID string) ([]vm.Event, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, err
	}
	return run.VM.EventLog(), nil
}

// Score analyzes a run's terminal state against its level's par values.
func (s *Service) Score(ctx context.Context, runID string) (analyzer.Result, error) {
	run, err := s.runs.Get(runID)
	if err != nil {
		return analyzer.Result{}, err
	}
	stats := statsFromRun(run)
	par := analyzer.LevelPar{
		OptimalEnergy: run.Level.OptimalEnergy,
		OptimalSteps:  run.Level.OptimalSteps,
		TimeLimit:     run.Level.TimeLimit,
	}
	return analyzer.Analyze(stats, par), nil
}

// ListLevels returns the names of every level available under the
// configured levels directory.
func (s *Service) ListLevels(ctx context.Context) ([]string, error) {
	return level.ListDir(s.levelsDir)
}

// GetLevel loads one level definition by name.
func (s *Service) GetLevel(ctx context.Context, name string) (*level.Level, error) {
	return level.LoadByName(s.levelsDir, name)
}
