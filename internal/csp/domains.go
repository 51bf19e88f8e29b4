package csp

import "math/bits"

// bitset is a fixed-width set of small non-negative integers, used both for
// candidate-vehicle domains and for conflict sets over variables.
type bitset struct {
	words []uint64
}

func newBitset(n int) bitset {
	return bitset{words: make([]uint64, (n+63)/64)}
}

func fullBitset(n int) bitset {
	b := newBitset(n)
	for i := 0; i < n; i++ {
		b.words[i>>6] |= 1 << uint(i&63)
	}
	return b
}

func (b bitset) has(v int) bool { return b.words[v>>6]&(1<<uint(v&63)) != 0 }
func (b *bitset) add(v int)     { b.words[v>>6] |= 1 << uint(v&63) }
func (b *bitset) remove(v int)  { b.words[v>>6] &^= 1 << uint(v&63) }

func (b bitset) count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (b bitset) empty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

func (b bitset) clone() bitset {
	return bitset{words: append([]uint64(nil), b.words...)}
}

func (b *bitset) unionWith(o bitset) {
	for i := range o.words {
		b.words[i] |= o.words[i]
	}
}

func (b *bitset) subtract(o bitset) {
	for i := range o.words {
		b.words[i] &^= o.words[i]
	}
}

func (b bitset) equal(o bitset) bool {
	for i := range b.words {
		if b.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// each calls f for every member in ascending order.
func (b bitset) each(f func(v int)) {
	for wi, w := range b.words {
		for w != 0 {
			v := wi<<6 + bits.TrailingZeros64(w)
			f(v)
			w &= w - 1
		}
	}
}

// max returns the largest member, or -1 if the set is empty.
func (b bitset) max() int {
	for wi := len(b.words) - 1; wi >= 0; wi-- {
		if w := b.words[wi]; w != 0 {
			return wi<<6 + 63 - bits.LeadingZeros64(w)
		}
	}
	return -1
}

// noCauses marks trail entries produced by preprocessing rather than by
// assigned variables. Such removals are permanent within the search and never
// enter a conflict set.
var noCauses = bitset{}

type trailEntry struct {
	variable int
	removed  bitset // mask of vehicle ids removed in this step
	causes   bitset // assigned variables implicated in the removal
}

// Domains holds the candidate-vehicle set of every unassigned variable plus
// the trail that makes every restriction reversible. Restrictions only shrink
// domains; Restore re-inserts exactly the values removed since the snapshot,
// so a restore leaves the store bit-identical to its state at snapshot time.
type Domains struct {
	sets     []bitset
	trail    []trailEntry
	vehicles int
}

// NewDomains builds full domains: every vehicle is a candidate for every
// variable.
func NewDomains(numVars, numVehicles int) *Domains {
	d := &Domains{
		sets:     make([]bitset, numVars),
		vehicles: numVehicles,
	}
	for i := range d.sets {
		d.sets[i] = fullBitset(numVehicles)
	}
	return d
}

// Snapshot returns a mark for the current trail position.
func (d *Domains) Snapshot() int { return len(d.trail) }

// Restore undoes every restriction pushed since the mark, in reverse order.
func (d *Domains) Restore(mark int) {
	for i := len(d.trail) - 1; i >= mark; i-- {
		e := d.trail[i]
		d.sets[e.variable].unionWith(e.removed)
	}
	d.trail = d.trail[:mark]
}

// Size returns the current cardinality of a variable's domain.
func (d *Domains) Size(variable int) int { return d.sets[variable].count() }

// Has reports whether vehicle k is still a candidate for the variable.
func (d *Domains) Has(variable, k int) bool { return d.sets[variable].has(k) }

// Each iterates the variable's current candidates in ascending vehicle order.
func (d *Domains) Each(variable int, f func(k int)) { d.sets[variable].each(f) }

// Remove drops a single vehicle from a variable's domain, recording the
// removal on the trail with its implicated variables. It reports whether the
// domain wiped out. Removing an absent value is a no-op.
func (d *Domains) Remove(variable, k int, causes bitset) (wipeout bool) {
	if !d.sets[variable].has(k) {
		return false
	}
	mask := newBitset(d.vehicles)
	mask.add(k)
	d.sets[variable].remove(k)
	d.trail = append(d.trail, trailEntry{variable: variable, removed: mask, causes: causes})
	return d.sets[variable].empty()
}

// Restrict removes every candidate failing keep, as one trail entry. The
// returned wipeout flag is the distinguished empty-domain outcome; callers
// must not treat a false return and an empty set as equivalent.
func (d *Domains) Restrict(variable int, causes bitset, keep func(k int) bool) (removed int, wipeout bool) {
	mask := newBitset(d.vehicles)
	d.sets[variable].each(func(k int) {
		if !keep(k) {
			mask.add(k)
		}
	})
	if mask.empty() {
		return 0, false
	}
	d.sets[variable].subtract(mask)
	d.trail = append(d.trail, trailEntry{variable: variable, removed: mask, causes: causes})
	return mask.count(), d.sets[variable].empty()
}

// Causes unions into the given set every assigned variable whose propagation
// removed values from the variable, by scanning the live trail.
func (d *Domains) Causes(variable int, into *bitset) {
	for _, e := range d.trail {
		if e.variable == variable {
			into.unionWith(e.causes)
		}
	}
}

// snapshotSets deep-copies the current domain sets. Test hook for the
// rollback-exactness property.
func (d *Domains) snapshotSets() []bitset {
	out := make([]bitset, len(d.sets))
	for i, s := range d.sets {
		out[i] = s.clone()
	}
	return out
}
