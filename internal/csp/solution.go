package csp

// StopVisit is one serviced customer on a route with its schedule: arrival
// at the location, service start (after any waiting), and departure.
type StopVisit struct {
	CustomerID int
	Arrival    float64
	Start      float64
	Departure  float64
}

// Route is one vehicle's completed tour: depot, stops in visit order, depot.
// Distance includes the return leg to the depot.
type Route struct {
	VehicleID int
	Stops     []StopVisit
	Load      int
	Distance  float64
}

// Solution is a complete, constraint-satisfying assignment of every customer
// to a vehicle with the implied visiting orders and the grand total distance.
type Solution struct {
	Routes []Route
	Total  float64
}

// buildSolution materializes the current complete assignment: replays each
// route's schedule and sums distances. Only called with every variable
// assigned and every route time-window feasible.
func buildSolution(p *Problem, st *partial) *Solution {
	sol := &Solution{Routes: make([]Route, 0, len(st.routes))}
	for k := range st.routes {
		r := scheduleRoute(p, k, st.routes[k].order)
		if len(r.Stops) == 0 {
			continue
		}
		sol.Routes = append(sol.Routes, r)
		sol.Total += r.Distance
	}
	return sol
}

func scheduleRoute(p *Problem, k int, order []int) Route {
	r := Route{VehicleID: p.Vehicle(k).ID}
	t := 0.0
	prev := 0
	for _, v := range order {
		loc := p.Loc(v)
		c := p.Customer(v)
		r.Distance += p.Distance(prev, loc)
		t += p.TravelTime(prev, loc)
		arrival := t
		if t < c.Ready {
			t = c.Ready
		}
		r.Stops = append(r.Stops, StopVisit{
			CustomerID: c.ID,
			Arrival:    arrival,
			Start:      t,
			Departure:  t + c.Service,
		})
		t += c.Service
		r.Load += c.Demand
		prev = loc
	}
	r.Distance += p.Distance(prev, 0)
	return r
}

// evaluator retains the best complete solution found so far. Replacement is
// strict less-than on total distance, so re-finding an equal-cost assignment
// never churns the best record.
type evaluator struct {
	best       *Solution
	onImproved func(*Solution)
}

func (e *evaluator) offer(sol *Solution) bool {
	if e.best != nil && sol.Total >= e.best.Total {
		return false
	}
	e.best = sol
	if e.onImproved != nil {
		e.onImproved(sol)
	}
	return true
}

// improveRoutes applies an in-route 2-opt pass to each route of a finished
// solution, keeping only reversals that preserve time-window feasibility.
// Assignment of customers to vehicles is untouched.
func improveRoutes(p *Problem, sol *Solution) *Solution {
	out := &Solution{Routes: make([]Route, 0, len(sol.Routes))}
	for _, r := range sol.Routes {
		k := vehicleIndex(p, r.VehicleID)
		order := make([]int, 0, len(r.Stops))
		for _, stp := range r.Stops {
			order = append(order, customerIndex(p, stp.CustomerID))
		}
		best := order
		bestDist := orderDistance(p, best)
		improved := true
		for improved {
			improved = false
			for i := 0; i < len(best)-1; i++ {
				for j := i + 1; j < len(best); j++ {
					cand := twoOptSwap(best, i, j)
					if !timeFeasible(p, cand) {
						continue
					}
					if d := orderDistance(p, cand); d+1e-9 < bestDist {
						best = cand
						bestDist = d
						improved = true
					}
				}
			}
		}
		out.Routes = append(out.Routes, scheduleRoute(p, k, best))
		out.Total += bestDist
	}
	return out
}

func twoOptSwap(order []int, i, j int) []int {
	out := make([]int, len(order))
	copy(out, order[:i])
	pos := i
	for q := j; q >= i; q-- {
		out[pos] = order[q]
		pos++
	}
	copy(out[pos:], order[j+1:])
	return out
}

func orderDistance(p *Problem, order []int) float64 {
	total := 0.0
	prev := 0
	for _, v := range order {
		total += p.Distance(prev, p.Loc(v))
		prev = p.Loc(v)
	}
	return total + p.Distance(prev, 0)
}

func timeFeasible(p *Problem, order []int) bool {
	t := 0.0
	prev := 0
	for _, v := range order {
		loc := p.Loc(v)
		t += p.TravelTime(prev, loc)
		c := p.Customer(v)
		if t < c.Ready {
			t = c.Ready
		}
		if t > c.Due {
			return false
		}
		t += c.Service
		prev = loc
	}
	return true
}

func vehicleIndex(p *Problem, id int) int {
	for k := 0; k < p.NumVehicles(); k++ {
		if p.Vehicle(k).ID == id {
			return k
		}
	}
	return -1
}

func customerIndex(p *Problem, id int) int {
	for i := 0; i < p.NumCustomers(); i++ {
		if p.Customer(i).ID == id {
			return i
		}
	}
	return -1
}
