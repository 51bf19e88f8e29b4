package csp

import "math"

// decision is one composite search decision: variable, vehicle, and the
// insertion position inside that vehicle's route, plus everything needed to
// undo it in O(1).
type decision struct {
	variable int
	vehicle  int
	pos      int
	delta    float64 // route-cost increase this decision produced
	mark     int     // domain trail mark taken before propagation
}

// routeState is one vehicle's partial route: visit order by variable index
// and the accumulated load.
type routeState struct {
	order []int
	load  int
}

// partial is the search loop's exclusively owned mutable state: per-vehicle
// routes and the ordered decision stack. Propagators receive it read-only for
// the duration of one propagation call.
type partial struct {
	p         *Problem
	routes    []routeState
	vehicleOf []int // variable -> vehicle, or -1 when unassigned
	assigned  bitset
	decisions []decision
	total     float64
}

func newPartial(p *Problem) *partial {
	st := &partial{
		p:         p,
		routes:    make([]routeState, p.NumVehicles()),
		vehicleOf: make([]int, p.NumCustomers()),
		assigned:  newBitset(p.NumCustomers()),
	}
	for i := range st.vehicleOf {
		st.vehicleOf[i] = -1
	}
	return st
}

func (st *partial) numAssigned() int { return len(st.decisions) }

// members returns the set of variables currently riding vehicle k.
func (st *partial) members(k int) bitset {
	m := newBitset(st.p.NumCustomers())
	for _, v := range st.routes[k].order {
		m.add(v)
	}
	return m
}

// scheduleFeasible replays a visit order from the depot and reports whether
// every service can start within its window. A vehicle arriving early waits
// until the window opens.
func (st *partial) scheduleFeasible(order []int) bool {
	p := st.p
	t := 0.0
	prev := 0 // depot location
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

// insertDelta is the marginal distance increase of putting variable v at
// position pos in route k. The depot bounds both ends of the route.
func (st *partial) insertDelta(k, v, pos int) float64 {
	p := st.p
	order := st.routes[k].order
	prev := 0
	if pos > 0 {
		prev = p.Loc(order[pos-1])
	}
	next := 0
	if pos < len(order) {
		next = p.Loc(order[pos])
	}
	loc := p.Loc(v)
	return p.Distance(prev, loc) + p.Distance(loc, next) - p.Distance(prev, next)
}

// feasibleAt reports whether variable v fits in route k at position pos:
// capacity plus a full time-window replay of the extended route.
func (st *partial) feasibleAt(k, v, pos int) bool {
	r := st.routes[k]
	c := st.p.Customer(v)
	if r.load+c.Demand > st.p.Vehicle(k).Capacity {
		return false
	}
	tmp := make([]int, 0, len(r.order)+1)
	tmp = append(tmp, r.order[:pos]...)
	tmp = append(tmp, v)
	tmp = append(tmp, r.order[pos:]...)
	return st.scheduleFeasible(tmp)
}

// canExtend reports whether any insertion position in route k accepts
// variable v. Adding further customers to a route never re-opens a closed
// position (loads only grow, schedules only tighten), so a false result
// stays false for every extension of the current partial assignment.
func (st *partial) canExtend(v, k int) bool {
	for pos := 0; pos <= len(st.routes[k].order); pos++ {
		if st.feasibleAt(k, v, pos) {
			return true
		}
	}
	return false
}

// bestInsertion returns the cheapest feasible insertion position for v in
// route k. ok is false when no position is feasible.
func (st *partial) bestInsertion(v, k int) (pos int, delta float64, ok bool) {
	best := math.MaxFloat64
	bestPos := -1
	for p := 0; p <= len(st.routes[k].order); p++ {
		if !st.feasibleAt(k, v, p) {
			continue
		}
		if d := st.insertDelta(k, v, p); d < best {
			best = d
			bestPos = p
		}
	}
	if bestPos < 0 {
		return 0, 0, false
	}
	return bestPos, best, true
}

// assign commits the composite decision (v, k, pos). The caller has already
// checked feasibility.
func (st *partial) assign(v, k, pos, mark int) {
	delta := st.insertDelta(k, v, pos)
	r := &st.routes[k]
	r.order = append(r.order, 0)
	copy(r.order[pos+1:], r.order[pos:])
	r.order[pos] = v
	r.load += st.p.Customer(v).Demand
	st.vehicleOf[v] = k
	st.assigned.add(v)
	st.total += delta
	st.decisions = append(st.decisions, decision{variable: v, vehicle: k, pos: pos, delta: delta, mark: mark})
}

// unassign pops the most recent decision and returns it.
func (st *partial) unassign() decision {
	dec := st.decisions[len(st.decisions)-1]
	st.decisions = st.decisions[:len(st.decisions)-1]
	r := &st.routes[dec.vehicle]
	copy(r.order[dec.pos:], r.order[dec.pos+1:])
	r.order = r.order[:len(r.order)-1]
	r.load -= st.p.Customer(dec.variable).Demand
	st.vehicleOf[dec.variable] = -1
	st.assigned.remove(dec.variable)
	st.total -= dec.delta
	return dec
}
