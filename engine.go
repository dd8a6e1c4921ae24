// Copyright (c) 2014 Utkan Güngördü <utkan@freeconsole.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package dysect

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Table is C6: the DySECT engine's independent variant, where growth
// allocates a fresh doubled subtable and migrates into it rather than
// resizing the existing allocation in place (TableInPlace, in
// engine_inplace.go, makes the opposite tradeoff).
type Table[K constraints.Integer, V any] struct {
	tuning Tuning
	hasher keyHasher[K]
	split  splitterConfig
	disp   displacer[K, V]

	subtables []subtable[K, V]
	nLarge    int
	bitsSmall uint64
	bitsLarge uint64

	n            int
	capacity     int
	growThresh   int
	shrinkThresh int
}

// New constructs a Table sized so that capacityHint elements fit under
// tuning.Alpha without an immediate grow (spec.md §4.6's construction
// algorithm). A capacityHint of 0 yields the minimum T-subtable table.
func New[K constraints.Integer, V any](tuning Tuning, capacityHint int) *Table[K, V] {
	return newTable[K, V](tuning, capacityHint)
}

func newTable[K constraints.Integer, V any](tuning Tuning, capacityHint int) *Table[K, V] {
	tuning.validate()
	t := &Table[K, V]{tuning: tuning}

	tabWidth := log2Floor(tuning.Subtables)
	t.split = newSplitterConfig(tabWidth, tuning.FanOut, tuning.DualPair, tuning.LinearCombine)
	t.hasher = newKeyHasher[K](t.split.rawHashesNeeded(), tuning.Seed)

	switch tuning.Displacer {
	case DisplacerRandomWalk:
		t.disp = newRandomWalkDisplacer[K, V](tuning.StepBudget, int64(tuning.Seed))
	default:
		t.disp = bfsDisplacer[K, V]{steps: tuning.StepBudget}
	}

	avg := float64(capacityHint) * tuning.Alpha / float64(tuning.Subtables*tuning.BucketSize)
	sizeSmall := uint64(1)
	for avg > float64(sizeSmall<<1) {
		sizeSmall <<= 1
	}

	nLarge := 0
	if float64(sizeSmall) < avg {
		nLarge = int(math.Floor(float64(capacityHint)*tuning.Alpha/float64(sizeSmall)/float64(tuning.BucketSize))) - tuning.Subtables
		if nLarge < 0 {
			nLarge = 0
		}
	}

	subtables := make([]subtable[K, V], tuning.Subtables)
	for i := 0; i < tuning.Subtables; i++ {
		size := sizeSmall
		if i < nLarge {
			size = sizeSmall << 1
		}
		subtables[i] = newSubtable[K, V](int(size), tuning.BucketSize)
	}
	t.subtables = subtables
	t.nLarge = nLarge
	t.bitsSmall = sizeSmall - 1
	t.bitsLarge = sizeSmall<<1 - 1
	t.capacity = (nLarge + tuning.Subtables) * int(sizeSmall) * tuning.BucketSize

	if nLarge == tuning.Subtables {
		t.nLarge = 0
		t.bitsSmall = t.bitsLarge
		t.bitsLarge = t.bitsLarge<<1 + 1
	}

	t.growThresh = ceilDiv(t.capacity+int(t.bitsLarge+1)*tuning.BucketSize, tuning.Alpha)
	t.shrinkThresh = 0

	return t
}

func log2Floor(x int) uint {
	var n uint
	for x > 1 {
		x >>= 1
		n++
	}
	return n
}

func ceilDiv(numerator int, alpha float64) int {
	return int(math.Ceil(float64(numerator) / alpha))
}

// --- displaceHost ---

func (t *Table[K, V]) bucketSize() int { return t.tuning.BucketSize }
func (t *Table[K, V]) fanOut() int     { return t.tuning.FanOut }
func (t *Table[K, V]) hashOf(k K) hashedValue {
	return t.hasher.hash(k)
}

func (t *Table[K, V]) bucketsFor(hv hashedValue) [maxFanOut]*bucket[K, V] {
	probes := t.split.split(hv)
	var out [maxFanOut]*bucket[K, V]
	for i := 0; i < t.tuning.FanOut; i++ {
		out[i] = t.bucketAt(probes[i])
	}
	return out
}

func (t *Table[K, V]) bucketAt(p probeLoc) *bucket[K, V] {
	loc := p.loc & t.bitmask(p.tab)
	return t.subtables[p.tab].bucket(int(loc))
}

func (t *Table[K, V]) bitmask(tab int) uint64 {
	if tab < t.nLarge {
		return t.bitsLarge
	}
	return t.bitsSmall
}

// --- bookkeeping ---

func (t *Table[K, V]) logger() Logger {
	if t.tuning.Logger != nil {
		return t.tuning.Logger
	}
	return defaultLogger
}

func (t *Table[K, V]) recordInsert() {
	if r := t.tuning.Recorder; r != nil {
		r.Insert()
		r.SetSize(t.n)
	}
}

func (t *Table[K, V]) recordDisplacement(steps int) {
	if r := t.tuning.Recorder; r != nil {
		r.Insert()
		r.Displacement(steps)
		r.SetSize(t.n)
	}
}

func (t *Table[K, V]) recordErase() {
	if r := t.tuning.Recorder; r != nil {
		r.Erase()
		r.SetSize(t.n)
	}
}

func (t *Table[K, V]) recordGrow() {
	if r := t.tuning.Recorder; r != nil {
		r.Grow()
		r.SetCapacity(t.capacity)
	}
}

func (t *Table[K, V]) recordShrink() {
	if r := t.tuning.Recorder; r != nil {
		r.Shrink()
		r.SetCapacity(t.capacity)
	}
}

// --- public accessors ---

// Len returns the number of stored elements.
func (t *Table[K, V]) Len() int { return t.n }

// Empty reports whether the table holds no elements.
func (t *Table[K, V]) Empty() bool { return t.n == 0 }

// Capacity returns the total number of cells currently allocated
// across all subtables.
func (t *Table[K, V]) Capacity() int { return t.capacity }

// LoadFactor returns n/capacity.
func (t *Table[K, V]) LoadFactor() float64 {
	if t.capacity == 0 {
		return 0
	}
	return float64(t.n) / float64(t.capacity)
}

// Entry is a handle onto a stored cell, returned by Insert and Find.
// It stays valid until the next structural operation (Insert, Erase,
// grow, or shrink) touches the table.
type Entry[K constraints.Integer, V any] struct {
	c *cell[K, V]
}

func (e *Entry[K, V]) Key() K       { return e.c.key }
func (e *Entry[K, V]) Value() V     { return e.c.val }
func (e *Entry[K, V]) SetValue(v V) { e.c.val = v }

// Find looks up k without modifying the table.
func (t *Table[K, V]) Find(k K) (*Entry[K, V], bool) {
	buckets := t.bucketsFor(t.hasher.hash(k))
	for i := 0; i < t.tuning.FanOut; i++ {
		if ptr := buckets[i].findPtr(k); ptr != nil {
			return &Entry[K, V]{c: ptr}, true
		}
	}
	return nil, false
}

// Get returns the value stored for k, or ErrKeyNotFound.
func (t *Table[K, V]) Get(k K) (V, error) {
	e, ok := t.Find(k)
	if !ok {
		var zero V
		return zero, errKeyNotFound()
	}
	return e.Value(), nil
}

// Count reports 1 if k is present, 0 otherwise (no multi-mapping).
func (t *Table[K, V]) Count(k K) int {
	if _, ok := t.Find(k); ok {
		return 1
	}
	return 0
}

// At returns a pointer to k's value, inserting the zero value first
// if k is absent.
func (t *Table[K, V]) At(k K) *V {
	var zero V
	e, _ := t.Insert(k, zero)
	return &e.c.val
}

// Insert places (k, v), growing the table first if the element count
// has crossed growThresh. It reports whether a new element was added;
// an existing key's value is left untouched, matching map semantics.
func (t *Table[K, V]) Insert(k K, v V) (*Entry[K, V], bool) {
	if k == 0 {
		panic("dysect: cannot insert the sentinel key (zero)")
	}
	if t.n > t.growThresh {
		t.grow()
	}
	c, inserted, failed := t.tryInsert(k, v)
	if failed {
		if t.tuning.FixErrors {
			t.grow()
			return t.Insert(k, v)
		}
		return nil, false
	}
	return &Entry[K, V]{c: c}, inserted
}

// tryInsert attempts to place (k, v) without considering growth. It
// returns the cell, whether a new element was added, and whether
// every candidate bucket was full and the displacer also failed.
func (t *Table[K, V]) tryInsert(k K, v V) (c *cell[K, V], inserted bool, failed bool) {
	hv := t.hasher.hash(k)
	buckets := t.bucketsFor(hv)

	bestIdx := -1
	bestFree := 0
	var ptrs [maxFanOut]*cell[K, V]
	for i := 0; i < t.tuning.FanOut; i++ {
		free, ptr := buckets[i].probePtr(k)
		ptrs[i] = ptr
		if free < 0 {
			return ptr, false, false
		}
		if i == 0 || free > bestFree {
			bestFree, bestIdx = free, i
		}
	}

	if bestFree > 0 {
		*ptrs[bestIdx] = cell[K, V]{key: k, val: v}
		t.n++
		t.recordInsert()
		return ptrs[bestIdx], true, false
	}

	steps, placed := t.disp.insert(t, k, v, hv)
	if steps >= 0 {
		t.n++
		t.recordDisplacement(steps)
		return placed, true, false
	}
	return nil, false, true
}

// Erase removes k, shrinking the table afterward if n has dropped
// below shrinkThresh. It returns 1 if k was present, 0 otherwise.
func (t *Table[K, V]) Erase(k K) int {
	hv := t.hasher.hash(k)
	buckets := t.bucketsFor(hv)
	for i := 0; i < t.tuning.FanOut; i++ {
		if buckets[i].remove(k) {
			t.n--
			t.recordErase()
			if t.n < t.shrinkThresh {
				t.shrink()
			}
			return 1
		}
	}
	return 0
}

// Displacement returns how many slots precede k's slot when its
// candidate buckets are laid end to end in the order given by the hash
// splitter (each bucket searched before k's own counts its full size),
// or -1 if k isn't present.
func (t *Table[K, V]) Displacement(k K) int {
	hv := t.hasher.hash(k)
	buckets := t.bucketsFor(hv)
	disp := 0
	bs := t.tuning.BucketSize
	for i := 0; i < t.tuning.FanOut; i++ {
		td := buckets[i].displacement(k)
		disp += td
		if td < bs {
			return disp
		}
	}
	return -1
}

// Clear empties the table, keeping its current Tuning.
func (t *Table[K, V]) Clear() {
	*t = *newTable[K, V](t.tuning, 0)
}

// grow doubles exactly one subtable (the gradual growth protocol),
// migrating its contents into a fresh, twice-as-large replacement
// before updating the growth/shrink thresholds (spec.md §4.6).
func (t *Table[K, V]) grow() {
	flag := t.bitsSmall + 1
	tab := t.nLarge
	newSize := t.bitsLarge + 1
	target := newSubtable[K, V](int(newSize), t.tuning.BucketSize)

	t.migrateGrow(tab, flag, &target)
	t.subtables[tab] = target

	t.capacity += int(flag) * t.tuning.BucketSize
	t.nLarge++
	if t.nLarge == t.tuning.Subtables {
		t.nLarge = 0
		t.bitsSmall = t.bitsLarge
		t.bitsLarge = t.bitsLarge<<1 + 1
	}

	t.growThresh = ceilDiv(t.capacity+int(t.bitsLarge+1)*t.tuning.BucketSize, t.tuning.Alpha)
	t.shrinkThresh = ceilDiv(t.capacity-int(t.bitsLarge+1)*t.tuning.BucketSize, t.tuning.Alpha)
	if t.shrinkThresh < 0 {
		t.shrinkThresh = 0
	}

	t.logger().Debugf("dysect: grow subtable=%d capacity=%d n=%d", tab, t.capacity, t.n)
	t.recordGrow()
}

// migrateGrow splits subtable tab's flag buckets into target's 2*flag
// buckets: bucket i's residents land in target bucket i or i+flag
// depending on which of their candidate (subtable, offset) pairs
// matches first, mirroring the original's migrate_grw.
func (t *Table[K, V]) migrateGrow(tab int, flag uint64, target *subtable[K, V]) {
	src := &t.subtables[tab]
	for i := uint64(0); i < flag; i++ {
		curr := src.bucket(int(i))
		lo := target.bucket(int(i))
		hi := target.bucket(int(i + flag))
		loN, hiN := 0, 0

		for j := 0; j < t.tuning.BucketSize; j++ {
			c := curr.cells[j]
			if c.empty() {
				break
			}
			probes := t.split.split(t.hasher.hash(c.key))
			for ti := 0; ti < t.tuning.FanOut; ti++ {
				if probes[ti].tab != tab || probes[ti].loc&t.bitsSmall != i {
					continue
				}
				if probes[ti].loc&flag != 0 {
					hi.cells[hiN] = c
					hiN++
				} else {
					lo.cells[loN] = c
					loN++
				}
				break
			}
		}
	}
}

// shrink halves the newest large subtable, spilling any residents
// that no longer fit into a temporary buffer and reinserting them
// afterward. Reinsertion never triggers a nested grow mid-shrink
// (spec.md §9's safe-reimplementation guidance for the shrink-recovery
// open question); if the spilled elements don't fit even so, the
// table grows exactly once at the end and retries.
func (t *Table[K, V]) shrink() {
	if t.nLarge > 0 {
		t.nLarge--
	} else {
		t.nLarge = t.tuning.Subtables - 1
		t.bitsSmall >>= 1
		t.bitsLarge >>= 1
	}
	tab := t.nLarge
	newSize := t.bitsSmall + 1
	target := newSubtable[K, V](int(newSize), t.tuning.BucketSize)

	var spill []cell[K, V]
	t.migrateShrink(tab, &target, &spill)
	t.subtables[tab] = target
	t.n -= len(spill)

	var failed []cell[K, V]
	for _, c := range spill {
		if _, _, bad := t.tryInsert(c.key, c.val); bad {
			failed = append(failed, c)
		}
	}
	if len(failed) > 0 {
		t.grow()
		for _, c := range failed {
			if _, _, bad := t.tryInsert(c.key, c.val); bad {
				panic("dysect: shrink spill reinsertion failed after growth")
			}
		}
	}

	t.capacity -= int(newSize) * t.tuning.BucketSize
	t.growThresh = ceilDiv(t.capacity+int(t.bitsLarge+1)*t.tuning.BucketSize, t.tuning.Alpha)
	t.shrinkThresh = ceilDiv(t.capacity-int(t.bitsLarge+1)*t.tuning.BucketSize, t.tuning.Alpha)
	if t.shrinkThresh < 0 || (t.bitsSmall == 0 && t.nLarge == 0) {
		t.shrinkThresh = 0
	}

	t.logger().Debugf("dysect: shrink subtable=%d capacity=%d n=%d spilled=%d", tab, t.capacity, t.n, len(spill))
	t.recordShrink()
}

// migrateShrink merges subtable tab's 2*flag buckets back down into
// target's flag buckets. Each halved bucket's low half keeps whatever
// already matches bucket i; the high half's residents are appended if
// there's still room, or spilled into *spill for later reinsertion
// elsewhere in the table.
func (t *Table[K, V]) migrateShrink(tab int, target *subtable[K, V], spill *[]cell[K, V]) {
	flag := t.bitsSmall + 1
	src := &t.subtables[tab]
	bs := t.tuning.BucketSize

	for i := uint64(0); i < flag; i++ {
		lo := src.bucket(int(i))
		hi := src.bucket(int(i + flag))
		tar := target.bucket(int(i))
		ind := 0

		for j := 0; j < bs; j++ {
			c := lo.cells[j]
			if c.empty() {
				break
			}
			if t.belongsTo(c.key, tab, i) {
				tar.cells[ind] = c
				ind++
			}
		}
		for j := 0; j < bs; j++ {
			c := hi.cells[j]
			if c.empty() {
				break
			}
			if ind >= bs {
				*spill = append(*spill, c)
				continue
			}
			if t.belongsTo(c.key, tab, i) {
				tar.cells[ind] = c
				ind++
			}
		}
	}
}

func (t *Table[K, V]) belongsTo(k K, tab int, base uint64) bool {
	probes := t.split.split(t.hasher.hash(k))
	for ti := 0; ti < t.tuning.FanOut; ti++ {
		if probes[ti].tab == tab && probes[ti].loc&t.bitsSmall == base {
			return true
		}
	}
	return false
}

// Iterator walks every occupied cell across all subtables, in
// subtable-then-bucket-then-slot order. It is not restartable (see
// Iterate) and is invalidated by any structural change to the table.
type Iterator[K constraints.Integer, V any] struct {
	table *Table[K, V]
	tab   int
	idx   int
	slot  int
	cur   *cell[K, V]
}

// Iterate returns a fresh, forward-only Iterator positioned before the
// first element.
func (t *Table[K, V]) Iterate() *Iterator[K, V] {
	return &Iterator[K, V]{table: t, tab: 0, idx: 0, slot: -1}
}

// Next advances to the next occupied cell, returning false once
// exhausted.
func (it *Iterator[K, V]) Next() bool {
	t := it.table
	for {
		it.slot++
		if it.slot >= t.tuning.BucketSize {
			it.slot = 0
			it.idx++
		}
		for it.tab < len(t.subtables) && it.idx >= t.subtables[it.tab].size() {
			it.tab++
			it.idx = 0
		}
		if it.tab >= len(t.subtables) {
			it.cur = nil
			return false
		}
		c := &t.subtables[it.tab].buckets[it.idx].cells[it.slot]
		if !c.empty() {
			it.cur = c
			return true
		}
	}
}

func (it *Iterator[K, V]) Key() K   { return it.cur.key }
func (it *Iterator[K, V]) Value() V { return it.cur.val }
func (it *Iterator[K, V]) Entry() *Entry[K, V] {
	return &Entry[K, V]{c: it.cur}
}
