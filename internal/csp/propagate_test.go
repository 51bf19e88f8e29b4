package csp

import "testing"

func mustProblem(t *testing.T, customers []Customer, vehicles []Vehicle) *Problem {
	t.Helper()
	p, err := NewProblem(testDepot(), customers, vehicles)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return p
}

// wide builds customers at the given coordinates with a [0,1000] window and
// no service time, so feasibility reduces to capacity.
func wide(demands []int, coords [][2]float64) []Customer {
	out := make([]Customer, len(demands))
	for i := range demands {
		out[i] = Customer{ID: i + 1, X: coords[i][0], Y: coords[i][1], Demand: demands[i], Ready: 0, Due: 1000}
	}
	return out
}

func TestPruneRootDropsUnreachableVehicle(t *testing.T) {
	// Customer 2 sits 100 units out with a window closing at 50: no vehicle
	// can reach it, so its domain wipes at the root.
	customers := []Customer{
		{ID: 1, X: 1, Y: 0, Demand: 1, Due: 100},
		{ID: 2, X: 100, Y: 0, Demand: 1, Due: 50},
	}
	p := mustProblem(t, customers, []Vehicle{{ID: 1, Capacity: 10}, {ID: 2, Capacity: 10}})
	st := newPartial(p)
	d := NewDomains(p.NumCustomers(), p.NumVehicles())
	if wiped := pruneRoot(st, d); wiped != 1 {
		t.Fatalf("pruneRoot: wiped=%d, want 1", wiped)
	}
}

func TestForwardCheckRemovesOverloadedVehicle(t *testing.T) {
	p := mustProblem(t,
		wide([]int{30, 20}, [][2]float64{{1, 0}, {0, 1}}),
		[]Vehicle{{ID: 1, Capacity: 40}, {ID: 2, Capacity: 40}})
	st := newPartial(p)
	d := NewDomains(p.NumCustomers(), p.NumVehicles())
	if wiped := pruneRoot(st, d); wiped != noWipeout {
		t.Fatalf("unexpected root wipeout on %d", wiped)
	}

	st.assign(0, 0, 0, d.Snapshot()) // customer 1 -> vehicle 1
	if wiped := forwardCheck(st, d, 0); wiped != noWipeout {
		t.Fatalf("unexpected wipeout on %d", wiped)
	}
	if d.Has(1, 0) {
		t.Fatal("vehicle 1 must be pruned from customer 2 (30+20 > 40)")
	}
	if !d.Has(1, 1) {
		t.Fatal("vehicle 2 must stay in customer 2's domain")
	}

	// Provenance: the removal is charged to the route member.
	causes := newBitset(p.NumCustomers())
	d.Causes(1, &causes)
	if !causes.has(0) {
		t.Fatal("removal must be attributed to the assigned variable")
	}
}

func TestForwardCheckReportsWipeout(t *testing.T) {
	p := mustProblem(t,
		wide([]int{30, 20}, [][2]float64{{1, 0}, {0, 1}}),
		[]Vehicle{{ID: 1, Capacity: 40}})
	st := newPartial(p)
	d := NewDomains(p.NumCustomers(), p.NumVehicles())
	st.assign(0, 0, 0, d.Snapshot())
	if wiped := forwardCheck(st, d, 0); wiped != 1 {
		t.Fatalf("wiped=%d, want 1", wiped)
	}
}

func TestForwardCheckIdempotentAndRestorable(t *testing.T) {
	p := mustProblem(t,
		wide([]int{30, 20, 10}, [][2]float64{{1, 0}, {0, 1}, {1, 1}}),
		[]Vehicle{{ID: 1, Capacity: 40}, {ID: 2, Capacity: 40}})
	st := newPartial(p)
	d := NewDomains(p.NumCustomers(), p.NumVehicles())
	before := d.snapshotSets()
	mark := d.Snapshot()
	st.assign(0, 0, 0, mark)

	if wiped := forwardCheck(st, d, 0); wiped != noWipeout {
		t.Fatal("unexpected wipeout")
	}
	after := d.snapshotSets()
	trailLen := d.Snapshot()
	if wiped := forwardCheck(st, d, 0); wiped != noWipeout {
		t.Fatal("second run: unexpected wipeout")
	}
	if d.Snapshot() != trailLen || !domainsEqual(after, d.snapshotSets()) {
		t.Fatal("forward checking is not idempotent")
	}

	st.unassign()
	d.Restore(mark)
	if !domainsEqual(before, d.snapshotSets()) {
		t.Fatal("restore did not undo forward checking exactly")
	}
}

func TestAC3PinnedNeighborPrunesSharedVehicle(t *testing.T) {
	// Customer 1 (demand 35) only fits vehicle 1 (cap 50); vehicle 2 (cap 30)
	// is pruned at the root. AC-3 must then deny vehicle 1 to customer 2
	// (demand 20): 35+20 > 50 and customer 1 has nowhere else to go.
	p := mustProblem(t,
		wide([]int{35, 20}, [][2]float64{{1, 0}, {0, 1}}),
		[]Vehicle{{ID: 1, Capacity: 50}, {ID: 2, Capacity: 30}})
	st := newPartial(p)
	d := NewDomains(p.NumCustomers(), p.NumVehicles())
	if wiped := pruneRoot(st, d); wiped != noWipeout {
		t.Fatal("unexpected root wipeout")
	}
	if d.Has(0, 1) {
		t.Fatal("vehicle 2 must be pruned from customer 1 at the root")
	}
	if wiped := ac3(st, d, -1); wiped != noWipeout {
		t.Fatal("unexpected AC-3 wipeout")
	}
	if d.Has(1, 0) {
		t.Fatal("AC-3 must prune vehicle 1 from customer 2")
	}
	if !d.Has(1, 1) {
		t.Fatal("customer 2 must keep vehicle 2")
	}
}

func TestAC3DetectsJointInfeasibility(t *testing.T) {
	// Both customers pinned to the single vehicle, which cannot carry both.
	p := mustProblem(t,
		wide([]int{30, 30}, [][2]float64{{1, 0}, {0, 1}}),
		[]Vehicle{{ID: 1, Capacity: 50}})
	st := newPartial(p)
	d := NewDomains(p.NumCustomers(), p.NumVehicles())
	if wiped := pruneRoot(st, d); wiped != noWipeout {
		t.Fatal("unexpected root wipeout")
	}
	if wiped := ac3(st, d, -1); wiped == noWipeout {
		t.Fatal("AC-3 must wipe out: vehicle cannot carry both customers")
	}
}

func TestAC3Idempotent(t *testing.T) {
	p := mustProblem(t,
		wide([]int{35, 20, 5}, [][2]float64{{1, 0}, {0, 1}, {2, 2}}),
		[]Vehicle{{ID: 1, Capacity: 50}, {ID: 2, Capacity: 30}})
	st := newPartial(p)
	d := NewDomains(p.NumCustomers(), p.NumVehicles())
	_ = pruneRoot(st, d)
	if wiped := ac3(st, d, -1); wiped != noWipeout {
		t.Fatal("unexpected wipeout")
	}
	sets := d.snapshotSets()
	trailLen := d.Snapshot()
	if wiped := ac3(st, d, -1); wiped != noWipeout {
		t.Fatal("second run: unexpected wipeout")
	}
	if d.Snapshot() != trailLen || !domainsEqual(sets, d.snapshotSets()) {
		t.Fatal("AC-3 is not idempotent")
	}
}
