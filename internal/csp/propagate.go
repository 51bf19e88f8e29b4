package csp

// Propagation reduces the domains of unassigned variables after a tentative
// assignment (or, for AC-3, as a preprocessing pass) and reports the first
// domain wipeout. Every removal lands on the Domains trail with the set of
// assigned variables implicated, so Restore undoes a propagation exactly and
// wipeout conflict sets can be rebuilt from provenance.
//
// Both propagators are idempotent: re-running either on an unchanged state
// removes nothing.

// noWipeout is returned when propagation reaches a fixpoint with every
// domain non-empty.
const noWipeout = -1

// pruneRoot removes root-infeasible values before search: vehicles whose
// capacity cannot take the customer at all, or that cannot reach the customer
// inside its window even on an otherwise empty route. These removals carry no
// causes; they are permanent for the whole search.
func pruneRoot(st *partial, d *Domains) (wiped int) {
	for v := 0; v < st.p.NumCustomers(); v++ {
		_, wipe := d.Restrict(v, noCauses, func(k int) bool {
			return st.canExtend(v, k)
		})
		if wipe {
			return v
		}
	}
	return noWipeout
}

// forwardCheck runs after variable just was assigned to vehicle k. Only
// values equal to k can have become infeasible (no other route changed), so
// each unassigned variable is checked against route k alone. Removals are
// attributed to the current members of route k.
func forwardCheck(st *partial, d *Domains, just int) (wiped int) {
	k := st.vehicleOf[just]
	causes := st.members(k)
	for u := 0; u < st.p.NumCustomers(); u++ {
		if st.assigned.has(u) || !d.Has(u, k) {
			continue
		}
		if st.canExtend(u, k) {
			continue
		}
		if d.Remove(u, k, causes) {
			return u
		}
	}
	return noWipeout
}

// arc is a directed pair of unassigned variables under the shared-vehicle
// resource constraint.
type arc struct{ from, to int }

// ac3 enforces arc consistency over the unassigned variables. Pass just < 0
// for the preprocessing invocation (removals carry no causes); otherwise
// just is the variable whose assignment triggered the run.
//
// The binary constraint follows the committed-assignment reading: values of
// two unassigned variables conflict only when they name the same vehicle and
// that vehicle cannot take both customers together. A support therefore
// always exists while the neighbor's domain holds any other vehicle; the
// interesting case is a neighbor pinned to a single vehicle.
func ac3(st *partial, d *Domains, just int) (wiped int) {
	p := st.p
	unassigned := make([]int, 0, p.NumCustomers())
	for v := 0; v < p.NumCustomers(); v++ {
		if !st.assigned.has(v) {
			unassigned = append(unassigned, v)
		}
	}

	// Unary pass first: drop values with no feasible insertion left. This
	// subsumes forward checking when triggered by an assignment.
	for _, u := range unassigned {
		_, wipe := d.Restrict(u, ac3Causes(st, d, just, -1), func(k int) bool {
			return st.canExtend(u, k)
		})
		if wipe {
			return u
		}
	}

	work := make([]arc, 0, len(unassigned)*len(unassigned))
	for _, u := range unassigned {
		for _, w := range unassigned {
			if u != w {
				work = append(work, arc{from: u, to: w})
			}
		}
	}
	for len(work) > 0 {
		a := work[0]
		work = work[1:]
		removed, wipe := revise(st, d, a.from, a.to, just)
		if wipe {
			return a.from
		}
		if removed {
			for _, w := range unassigned {
				if w != a.from && w != a.to && !st.assigned.has(w) {
					work = append(work, arc{from: w, to: a.from})
				}
			}
		}
	}
	return noWipeout
}

// revise removes from dom(u) every vehicle with no supporting value in
// dom(w). With the committed-assignment constraint the only unsupported case
// is: dom(w) = {k} and vehicle k cannot carry both u and w.
func revise(st *partial, d *Domains, u, w, just int) (removed, wipeout bool) {
	n, wipe := d.Restrict(u, ac3Causes(st, d, just, w), func(k int) bool {
		support := false
		d.Each(w, func(m int) {
			if support {
				return
			}
			if m != k || jointlyFits(st, u, w, k) {
				support = true
			}
		})
		return support
	})
	return n > 0, wipe
}

// jointlyFits reports whether route k can take customers u and w together:
// joint capacity, plus each individually insertable. Joint time-window
// interaction is left to search; checking it here could prune assignments
// that a different insertion order keeps feasible.
func jointlyFits(st *partial, u, w, k int) bool {
	p := st.p
	r := st.routes[k]
	if r.load+p.Customer(u).Demand+p.Customer(w).Demand > p.Vehicle(k).Capacity {
		return false
	}
	return st.canExtend(u, k) && st.canExtend(w, k)
}

// ac3Causes builds the implicated-variable set for an AC-3 removal: the
// trigger assignment's route members, plus (for binary revisions) whatever
// pruned the neighbor's domain down to its current values.
func ac3Causes(st *partial, d *Domains, just, neighbor int) bitset {
	causes := newBitset(st.p.NumCustomers())
	if just >= 0 {
		causes.unionWith(st.members(st.vehicleOf[just]))
	}
	if neighbor >= 0 {
		d.Causes(neighbor, &causes)
	}
	return causes
}

// propagate dispatches on the configured propagator after an assignment.
func propagate(cfg Config, st *partial, d *Domains, just int) (wiped int) {
	if cfg.Propagator == AC3 {
		return ac3(st, d, just)
	}
	return forwardCheck(st, d, just)
}
