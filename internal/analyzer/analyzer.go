// Package analyzer scores a finished run against a level's par values and
// produces improvement suggestions.
package analyzer

import "math"

// RunStats is the subset of VM/world state the analyzer needs.
type RunStats struct {
	EnergyUsed   int
	EnergyWasted int
	Ticks        int
	Moves        int
	Turns        int
	Scans        int
	Won          bool
	Energy       int // energy remaining at end of run

	// ConsecutiveTurns is true if two consecutive TURN action events
	// appeared anywhere in the run's event log.
	ConsecutiveTurns bool

	// UnmetObjectives lists collect objectives not satisfied at run end,
	// in level order, as "collect N R" descriptions.
	UnmetObjectives []string
}

// LevelPar supplies the par values a level defines for scoring.
type LevelPar struct {
	OptimalEnergy int
	OptimalSteps  int
	TimeLimit     int
}

// Result is the analyzer's verdict for one run.
type Result struct {
	EnergyScore     int
	StepsScore      int
	TimeScore       int
	CompletionScore int
	Score           int
	Stars           int
	Suggestions     []string
}

// Analyze scores stats against par and produces suggestions, using a
// weighted formula across energy, steps, time, and completion.
func Analyze(stats RunStats, par LevelPar) Result {
	r := Result{}

	r.EnergyScore = capScore(40, ratio(par.OptimalEnergy, max1(stats.EnergyUsed))*40)
	r.StepsScore = capScore(30, ratio(par.OptimalSteps, max1(stats.Ticks))*30)
	r.TimeScore = maxInt(0, 20-stats.Ticks/10)
	if stats.Won {
		r.CompletionScore = 10
	}

	r.Score = r.EnergyScore + r.StepsScore + r.TimeScore + r.CompletionScore
	r.Stars = starsFor(r.Score)
	r.Suggestions = suggestionsFor(stats, r.Score, r.Stars)

	return r
}

func ratio(optimal, actual int) float64 {
	if actual == 0 {
		actual = 1
	}
	return float64(optimal) / float64(actual)
}

func capScore(cap int, raw float64) int {
	rounded := int(math.Round(raw))
	if rounded > cap {
		return cap
	}
	if rounded < 0 {
		return 0
	}
	return rounded
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func starsFor(score int) int {
	switch {
	case score >= 90:
		return 5
	case score >= 75:
		return 4
	case score >= 60:
		return 3
	case score >= 40:
		return 2
	case score >= 20:
		return 1
	default:
		return 0
	}
}

// suggestionsFor applies a fixed sequence of suggestion patterns, then the
// override rules for perfect score and high-star silence.
func suggestionsFor(stats RunStats, score, stars int) []string {
	var suggestions []string

	if !stats.Won {
		if stats.Energy <= 0 {
			suggestions = append(suggestions, "ran out of energy")
		} else if len(stats.UnmetObjectives) > 0 {
			suggestions = append(suggestions, "objective not met: "+stats.UnmetObjectives[0])
		}
	}

	if float64(stats.Turns) > float64(stats.Moves)*0.5 {
		suggestions = append(suggestions, "too many turns")
	}
	if stats.EnergyWasted > 10 {
		suggestions = append(suggestions, "wasted energy on failed actions")
	}
	if float64(stats.Scans) > float64(stats.Moves)*2 {
		suggestions = append(suggestions, "excessive scanning")
	}
	if stats.ConsecutiveTurns {
		suggestions = append(suggestions, "combine turns")
	}
	if stats.Ticks > 100 && float64(stats.Moves) < float64(stats.Ticks)*0.3 {
		suggestions = append(suggestions, "low movement ratio")
	}

	if score == 100 {
		return []string{"Perfect score!"}
	}
	if stars >= 4 && len(suggestions) == 0 {
		suggestions = append(suggestions, "Great run!")
	}

	return suggestions
}
