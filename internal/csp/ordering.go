package csp

import "sort"

// selectVariable picks the next customer to assign: smallest current domain
// (fail-first / MRV), ties broken by higher demand, then by lower customer id
// so runs are deterministic. Returns -1 when every variable is assigned.
func selectVariable(st *partial, d *Domains) int {
	best := -1
	bestSize := 0
	for v := 0; v < st.p.NumCustomers(); v++ {
		if st.assigned.has(v) {
			continue
		}
		size := d.Size(v)
		if best < 0 {
			best, bestSize = v, size
			continue
		}
		if size != bestSize {
			if size < bestSize {
				best, bestSize = v, size
			}
			continue
		}
		cb, cv := st.p.Customer(best), st.p.Customer(v)
		if cv.Demand > cb.Demand || (cv.Demand == cb.Demand && cv.ID < cb.ID) {
			best, bestSize = v, size
		}
	}
	return best
}

// valueChoice is one candidate composite value for a variable: the vehicle,
// the cheapest feasible insertion position in its route, and the marginal
// distance that insertion costs.
type valueChoice struct {
	vehicle int
	pos     int
	delta   float64
}

// orderValues ranks the variable's remaining candidate vehicles by ascending
// insertion cost (cheapest insertion first), ties by vehicle id. Vehicles
// whose routes currently admit no feasible insertion yield no choice; their
// route members are accumulated into infeasible so the caller can charge the
// dead value to the assignments that closed it.
func orderValues(st *partial, d *Domains, v int) (choices []valueChoice, infeasible bitset) {
	infeasible = newBitset(st.p.NumCustomers())
	d.Each(v, func(k int) {
		pos, delta, ok := st.bestInsertion(v, k)
		if !ok {
			infeasible.unionWith(st.members(k))
			return
		}
		choices = append(choices, valueChoice{vehicle: k, pos: pos, delta: delta})
	})
	sort.SliceStable(choices, func(i, j int) bool {
		if choices[i].delta != choices[j].delta {
			return choices[i].delta < choices[j].delta
		}
		return choices[i].vehicle < choices[j].vehicle
	})
	return choices, infeasible
}
