package csp

import (
	"fmt"
	"time"
)

// Propagator selects the consistency algorithm run after each assignment.
type Propagator string

const (
	// ForwardChecking prunes only values invalidated by the latest
	// assignment's route.
	ForwardChecking Propagator = "forward-checking"
	// AC3 enforces arc consistency to a fixpoint after every assignment and
	// as a preprocessing pass before search.
	AC3 Propagator = "ac3"
)

// Config carries the recognized solver options. The zero value is not valid;
// use DefaultConfig as a base.
type Config struct {
	Propagator    Propagator
	FirstSolution bool          // stop at the first feasible assignment
	NodeBudget    int64         // 0 = unlimited
	TimeBudget    time.Duration // 0 = unlimited
	// Chronological disables backjumping and undoes one assignment at a
	// time. Same verdicts, more nodes; kept for comparison runs.
	Chronological bool
	// Improve applies a 2-opt pass to the returned best solution's routes.
	// Off by default so that comparison runs report raw search cost.
	Improve bool
}

// DefaultConfig returns the solver defaults: forward checking, exhaustive
// search, no budgets.
func DefaultConfig() Config {
	return Config{Propagator: ForwardChecking}
}

func (c Config) validate() error {
	switch c.Propagator {
	case ForwardChecking, AC3:
	default:
		return fmt.Errorf("unknown propagator %q", c.Propagator)
	}
	if c.NodeBudget < 0 {
		return fmt.Errorf("node budget must be >= 0")
	}
	if c.TimeBudget < 0 {
		return fmt.Errorf("time budget must be >= 0")
	}
	return nil
}
