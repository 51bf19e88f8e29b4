package csp

import "testing"

func domainsEqual(a, b []bitset) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}

func TestDomainsRestrictAndWipeout(t *testing.T) {
	d := NewDomains(2, 3)
	if d.Size(0) != 3 {
		t.Fatalf("full domain: got %d, want 3", d.Size(0))
	}
	removed, wipe := d.Restrict(0, noCauses, func(k int) bool { return k == 1 })
	if removed != 2 || wipe {
		t.Fatalf("restrict: removed=%d wipe=%v", removed, wipe)
	}
	if !d.Has(0, 1) || d.Has(0, 0) || d.Has(0, 2) {
		t.Fatal("restrict kept wrong values")
	}
	// Wipeout is a distinguished outcome, reported on the removal that
	// empties the set.
	if wipe := d.Remove(0, 1, noCauses); !wipe {
		t.Fatal("removing last value must report wipeout")
	}
	// Removing an absent value is a no-op and not a wipeout report.
	if wipe := d.Remove(0, 1, noCauses); wipe {
		t.Fatal("no-op removal must not report wipeout")
	}
}

func TestDomainsRestoreIsExact(t *testing.T) {
	d := NewDomains(4, 5)
	_, _ = d.Restrict(1, noCauses, func(k int) bool { return k < 3 })
	before := d.snapshotSets()
	mark := d.Snapshot()

	_, _ = d.Restrict(0, noCauses, func(k int) bool { return k%2 == 0 })
	_ = d.Remove(1, 2, noCauses)
	_, _ = d.Restrict(3, noCauses, func(k int) bool { return false })
	inner := d.Snapshot()
	_ = d.Remove(2, 4, noCauses)

	d.Restore(inner)
	d.Restore(mark)
	if !domainsEqual(before, d.snapshotSets()) {
		t.Fatal("restore did not reproduce the snapshot state exactly")
	}
	if d.Snapshot() != mark {
		t.Fatal("trail not truncated to the mark")
	}
}

func TestDomainsNestedRestore(t *testing.T) {
	d := NewDomains(3, 4)
	states := make([][]bitset, 0, 4)
	marks := make([]int, 0, 4)
	for i := 0; i < 3; i++ {
		states = append(states, d.snapshotSets())
		marks = append(marks, d.Snapshot())
		_ = d.Remove(i, i, noCauses)
		_, _ = d.Restrict(i, noCauses, func(k int) bool { return k != 3 })
	}
	for i := 2; i >= 0; i-- {
		d.Restore(marks[i])
		if !domainsEqual(states[i], d.snapshotSets()) {
			t.Fatalf("nested restore level %d not exact", i)
		}
	}
}

func TestDomainsCauses(t *testing.T) {
	d := NewDomains(3, 4)
	c1 := newBitset(3)
	c1.add(1)
	c2 := newBitset(3)
	c2.add(2)
	_ = d.Remove(0, 0, c1)
	_ = d.Remove(0, 1, c2)
	_ = d.Remove(1, 0, c2) // different variable, must not leak into 0's causes
	got := newBitset(3)
	d.Causes(0, &got)
	want := newBitset(3)
	want.add(1)
	want.add(2)
	if !got.equal(want) {
		t.Fatalf("causes: got %v, want %v", got.words, want.words)
	}
}

func TestBitsetOps(t *testing.T) {
	b := newBitset(130)
	for _, v := range []int{0, 63, 64, 129} {
		b.add(v)
	}
	if b.count() != 4 {
		t.Fatalf("count: got %d", b.count())
	}
	if b.max() != 129 {
		t.Fatalf("max: got %d", b.max())
	}
	var seen []int
	b.each(func(v int) { seen = append(seen, v) })
	want := []int{0, 63, 64, 129}
	for i, v := range want {
		if seen[i] != v {
			t.Fatalf("each order: got %v, want %v", seen, want)
		}
	}
	b.remove(64)
	if b.has(64) || !b.has(63) {
		t.Fatal("remove touched the wrong bit")
	}
	if fullBitset(3).max() != 2 {
		t.Fatal("fullBitset max")
	}
	if !newBitset(10).empty() {
		t.Fatal("fresh bitset must be empty")
	}
}
