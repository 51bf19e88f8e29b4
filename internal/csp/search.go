package csp

import (
	"context"
	"time"
)

// Status is the user-visible verdict of a solve run.
type Status string

const (
	// StatusOptimal: the tree was exhausted and the best solution found is
	// provably minimal under the model.
	StatusOptimal Status = "optimal"
	// StatusFeasible: search stopped before exhausting the tree (budget or
	// first-solution mode); the solution, when present, is feasible but not
	// proven optimal.
	StatusFeasible Status = "feasible"
	// StatusInfeasible: the tree was exhausted with no feasible assignment.
	StatusInfeasible Status = "infeasible"
)

// Result is the outcome of Solve. Solution is nil for StatusInfeasible and
// for budget stops that found nothing yet.
type Result struct {
	Status    Status
	Solution  *Solution
	Proven    bool // true only after exhaustive completion
	Budgeted  bool // true when a node/time budget ended the search
	Nodes     int64
	Backjumps int64
	Elapsed   time.Duration
}

type searcher struct {
	p   *Problem
	cfg Config
	d   *Domains
	st  *partial
	ev  *evaluator

	ctx      context.Context
	deadline time.Time

	nodes     int64
	backjumps int64
	budgeted  bool
}

// Solve searches the instance under the given configuration. The instance
// has already been validated by NewProblem; cfg errors are reported before
// any search work. Cancellation of ctx is cooperative: the loop notices it
// at the next variable selection and returns the best solution found so far.
func Solve(ctx context.Context, p *Problem, cfg Config) (Result, error) {
	return solve(ctx, p, cfg, nil)
}

// SolveObserved is Solve with a callback invoked on every strictly improving
// complete solution, for callers that stream anytime progress. The callback
// runs on the search goroutine and must not retain the solution's slices.
func SolveObserved(ctx context.Context, p *Problem, cfg Config, onImproved func(*Solution)) (Result, error) {
	return solve(ctx, p, cfg, onImproved)
}

func solve(ctx context.Context, p *Problem, cfg Config, onImproved func(*Solution)) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	s := &searcher{
		p:   p,
		cfg: cfg,
		d:   NewDomains(p.NumCustomers(), p.NumVehicles()),
		st:  newPartial(p),
		ev:  &evaluator{onImproved: onImproved},
		ctx: ctx,
	}
	if cfg.TimeBudget > 0 {
		s.deadline = start.Add(cfg.TimeBudget)
	}

	infeasible := pruneRoot(s.st, s.d) != noWipeout
	if !infeasible && cfg.Propagator == AC3 {
		infeasible = ac3(s.st, s.d, -1) != noWipeout
	}
	if !infeasible {
		s.explore()
	}

	res := Result{
		Nodes:     s.nodes,
		Backjumps: s.backjumps,
		Budgeted:  s.budgeted,
		Elapsed:   time.Since(start),
	}
	best := s.ev.best
	switch {
	case best == nil && !s.budgeted:
		res.Status = StatusInfeasible
		res.Proven = true
	case best == nil:
		res.Status = StatusFeasible
	case s.budgeted || cfg.FirstSolution:
		res.Status = StatusFeasible
		res.Solution = best
	default:
		res.Status = StatusOptimal
		res.Solution = best
		res.Proven = true
	}
	if res.Solution != nil && cfg.Improve {
		res.Solution = improveRoutes(p, res.Solution)
	}
	return res, nil
}

// overBudget is the cooperative stop predicate, checked once per Select
// step. There is no preemption inside a propagation call.
func (s *searcher) overBudget() bool {
	if s.cfg.NodeBudget > 0 && s.nodes >= s.cfg.NodeBudget {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return true
	}
	return s.ctx.Err() != nil
}

// explore runs one node of the depth-first search. It returns stop=true when
// the whole search must end (budget hit or first-solution found), otherwise
// the conflict set of the subtree: the set of earlier-assigned variables
// whose decisions participated in every failure below this node. When the
// current variable is absent from a child's conflict set, the child's
// failure cannot be repaired here, and the set is passed through unchanged —
// that pass-through is the backjump.
func (s *searcher) explore() (stop bool, conf bitset) {
	if s.overBudget() {
		s.budgeted = true
		return true, bitset{}
	}

	v := selectVariable(s.st, s.d)
	if v < 0 {
		sol := buildSolution(s.p, s.st)
		s.ev.offer(sol)
		if s.cfg.FirstSolution {
			return true, bitset{}
		}
		// Keep searching for improvements: implicate every assigned
		// variable so the unwind stays chronological and complete.
		return false, s.st.assigned.clone()
	}

	conf = newBitset(s.p.NumCustomers())
	s.d.Causes(v, &conf)

	choices, infeasible := orderValues(s.st, s.d, v)
	conf.unionWith(infeasible)

	for _, ch := range choices {
		s.nodes++
		mark := s.d.Snapshot()
		s.st.assign(v, ch.vehicle, ch.pos, mark)

		if wiped := propagate(s.cfg, s.st, s.d, v); wiped != noWipeout {
			wc := newBitset(s.p.NumCustomers())
			s.d.Causes(wiped, &wc)
			conf.unionWith(wc)
		} else {
			stop, sub := s.explore()
			if stop {
				s.st.unassign()
				s.d.Restore(mark)
				return true, bitset{}
			}
			if !s.cfg.Chronological && !sub.has(v) {
				// This variable is not implicated: jump past it.
				s.backjumps++
				s.st.unassign()
				s.d.Restore(mark)
				return false, sub
			}
			sub.remove(v)
			conf.unionWith(sub)
		}

		s.st.unassign()
		s.d.Restore(mark)
	}

	if s.cfg.Chronological {
		// Chronological mode reports every earlier variable as implicated,
		// which degrades the jump target to the previous assignment.
		return false, s.st.assigned.clone()
	}
	conf.remove(v)
	return false, conf
}
