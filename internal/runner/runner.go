// Package runner bridges wire-level instances and solve requests to the
// solver: it maps model records to csp types, runs the search, and maps the
// result back. Both the API's background jobs and the benchmark CLI go
// through it.
package runner

import (
	"context"
	"time"

	"vrpsolve/internal/csp"
	"vrpsolve/internal/model"
)

// BuildConfig maps a SolveRequest onto a solver Config. Unknown propagator
// strings are passed through and rejected by the solver, so validation lives
// in one place.
func BuildConfig(req model.SolveRequest) csp.Config {
	cfg := csp.DefaultConfig()
	if req.Propagator != "" {
		cfg.Propagator = csp.Propagator(req.Propagator)
	}
	cfg.FirstSolution = req.FirstSolution
	cfg.Chronological = req.Chronological
	cfg.Improve = req.Improve
	cfg.NodeBudget = req.NodeBudget
	cfg.TimeBudget = time.Duration(req.TimeBudgetMs) * time.Millisecond
	return cfg
}

// BuildProblem maps a stored instance onto a validated solver Problem.
func BuildProblem(inst model.Instance) (*csp.Problem, error) {
	depot := toCustomer(inst.Depot)
	customers := make([]csp.Customer, len(inst.Customers))
	for i, c := range inst.Customers {
		customers[i] = toCustomer(c)
	}
	vehicles := make([]csp.Vehicle, len(inst.Vehicles))
	for k, v := range inst.Vehicles {
		vehicles[k] = csp.Vehicle{ID: v.ID, Capacity: v.Capacity}
	}
	return csp.NewProblem(depot, customers, vehicles)
}

// Run solves one request against one instance. onImproved, when non-nil, is
// called with the wire form of each strictly better incumbent as search
// progresses.
func Run(ctx context.Context, inst model.Instance, req model.SolveRequest, onImproved func(model.SolveResult)) (model.SolveResult, error) {
	p, err := BuildProblem(inst)
	if err != nil {
		return model.SolveResult{}, err
	}
	cfg := BuildConfig(req)

	var observe func(*csp.Solution)
	if onImproved != nil {
		observe = func(sol *csp.Solution) {
			onImproved(model.SolveResult{
				Status: string(csp.StatusFeasible),
				Total:  sol.Total,
				Routes: toRoutes(sol),
			})
		}
	}

	res, err := csp.SolveObserved(ctx, p, cfg, observe)
	if err != nil {
		return model.SolveResult{}, err
	}
	return ToResult(res), nil
}

// ToResult maps a solver Result to its wire form.
func ToResult(res csp.Result) model.SolveResult {
	out := model.SolveResult{
		Status:    string(res.Status),
		Proven:    res.Proven,
		Budgeted:  res.Budgeted,
		Nodes:     res.Nodes,
		Backjumps: res.Backjumps,
		ElapsedMs: float64(res.Elapsed) / float64(time.Millisecond),
	}
	if res.Solution != nil {
		out.Total = res.Solution.Total
		out.Routes = toRoutes(res.Solution)
	}
	return out
}

func toCustomer(c model.Customer) csp.Customer {
	return csp.Customer{
		ID:      c.ID,
		X:       c.Location.X,
		Y:       c.Location.Y,
		Demand:  c.Demand,
		Ready:   c.Ready,
		Due:     c.Due,
		Service: c.Service,
	}
}

func toRoutes(sol *csp.Solution) []model.Route {
	routes := make([]model.Route, len(sol.Routes))
	for i, r := range sol.Routes {
		stops := make([]model.Stop, len(r.Stops))
		for j, s := range r.Stops {
			stops[j] = model.Stop{
				CustomerID: s.CustomerID,
				Arrival:    s.Arrival,
				Start:      s.Start,
				Departure:  s.Departure,
			}
		}
		routes[i] = model.Route{
			VehicleID: r.VehicleID,
			Load:      r.Load,
			Distance:  r.Distance,
			Stops:     stops,
		}
	}
	return routes
}
