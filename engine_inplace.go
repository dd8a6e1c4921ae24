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

// TableInPlace is C6's in-place variant: each subtable is allocated
// with spare capacity up front, so a grow that stays within that
// budget extends the live subtable by re-slicing instead of
// allocating a fresh replacement and migrating into it (engine.go's
// Table does the latter). See subtable_inplace.go and reserve.go.
type TableInPlace[K constraints.Integer, V any] struct {
	tuning Tuning
	hasher keyHasher[K]
	split  splitterConfig
	disp   displacer[K, V]

	subtables []subtableInPlace[K, V]
	nLarge    int
	bitsSmall uint64
	bitsLarge uint64

	n            int
	capacity     int
	growThresh   int
	shrinkThresh int
}

// NewInPlace constructs a TableInPlace sized like New, additionally
// honoring tuning.ReserveFactor for each subtable's initial
// over-reservation.
func NewInPlace[K constraints.Integer, V any](tuning Tuning, capacityHint int) *TableInPlace[K, V] {
	tuning.validate()
	if tuning.ReserveFactor < 1 {
		tuning.ReserveFactor = 2
	}
	t := &TableInPlace[K, V]{tuning: tuning}

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

	subtables := make([]subtableInPlace[K, V], tuning.Subtables)
	for i := 0; i < tuning.Subtables; i++ {
		size := sizeSmall
		if i < nLarge {
			size = sizeSmall << 1
		}
		subtables[i] = newSubtableInPlace[K, V](int(size), tuning.BucketSize, tuning.ReserveFactor)
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

// --- displaceHost ---

func (t *TableInPlace[K, V]) bucketSize() int         { return t.tuning.BucketSize }
func (t *TableInPlace[K, V]) fanOut() int             { return t.tuning.FanOut }
func (t *TableInPlace[K, V]) hashOf(k K) hashedValue  { return t.hasher.hash(k) }

func (t *TableInPlace[K, V]) bucketsFor(hv hashedValue) [maxFanOut]*bucket[K, V] {
	probes := t.split.split(hv)
	var out [maxFanOut]*bucket[K, V]
	for i := 0; i < t.tuning.FanOut; i++ {
		out[i] = t.bucketAt(probes[i])
	}
	return out
}

func (t *TableInPlace[K, V]) bucketAt(p probeLoc) *bucket[K, V] {
	loc := p.loc & t.bitmask(p.tab)
	return t.subtables[p.tab].bucket(int(loc))
}

func (t *TableInPlace[K, V]) bitmask(tab int) uint64 {
	if tab < t.nLarge {
		return t.bitsLarge
	}
	return t.bitsSmall
}

func (t *TableInPlace[K, V]) logger() Logger {
	if t.tuning.Logger != nil {
		return t.tuning.Logger
	}
	return defaultLogger
}

func (t *TableInPlace[K, V]) recordInsert() {
	if r := t.tuning.Recorder; r != nil {
		r.Insert()
		r.SetSize(t.n)
	}
}

func (t *TableInPlace[K, V]) recordDisplacement(steps int) {
	if r := t.tuning.Recorder; r != nil {
		r.Insert()
		r.Displacement(steps)
		r.SetSize(t.n)
	}
}

func (t *TableInPlace[K, V]) recordErase() {
	if r := t.tuning.Recorder; r != nil {
		r.Erase()
		r.SetSize(t.n)
	}
}

func (t *TableInPlace[K, V]) recordGrow() {
	if r := t.tuning.Recorder; r != nil {
		r.Grow()
		r.SetCapacity(t.capacity)
	}
}

func (t *TableInPlace[K, V]) recordShrink() {
	if r := t.tuning.Recorder; r != nil {
		r.Shrink()
		r.SetCapacity(t.capacity)
	}
}

// --- public accessors (identical contracts to Table) ---

func (t *TableInPlace[K, V]) Len() int      { return t.n }
func (t *TableInPlace[K, V]) Empty() bool   { return t.n == 0 }
func (t *TableInPlace[K, V]) Capacity() int { return t.capacity }

func (t *TableInPlace[K, V]) LoadFactor() float64 {
	if t.capacity == 0 {
		return 0
	}
	return float64(t.n) / float64(t.capacity)
}

func (t *TableInPlace[K, V]) Find(k K) (*Entry[K, V], bool) {
	buckets := t.bucketsFor(t.hasher.hash(k))
	for i := 0; i < t.tuning.FanOut; i++ {
		if ptr := buckets[i].findPtr(k); ptr != nil {
			return &Entry[K, V]{c: ptr}, true
		}
	}
	return nil, false
}

func (t *TableInPlace[K, V]) Get(k K) (V, error) {
	e, ok := t.Find(k)
	if !ok {
		var zero V
		return zero, errKeyNotFound()
	}
	return e.Value(), nil
}

func (t *TableInPlace[K, V]) Count(k K) int {
	if _, ok := t.Find(k); ok {
		return 1
	}
	return 0
}

func (t *TableInPlace[K, V]) At(k K) *V {
	var zero V
	e, _ := t.Insert(k, zero)
	return &e.c.val
}

func (t *TableInPlace[K, V]) Insert(k K, v V) (*Entry[K, V], bool) {
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

func (t *TableInPlace[K, V]) tryInsert(k K, v V) (c *cell[K, V], inserted bool, failed bool) {
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

func (t *TableInPlace[K, V]) Erase(k K) int {
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

func (t *TableInPlace[K, V]) Displacement(k K) int {
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

func (t *TableInPlace[K, V]) Clear() {
	fresh := NewInPlace[K, V](t.tuning, 0)
	*t = *fresh
}

// grow doubles exactly one subtable in place: growTo extends its
// bucket slice (re-slicing within the reserved capacity when
// possible), then migrateGrow redistributes each affected bucket's
// residents between its old position and the newly opened one.
func (t *TableInPlace[K, V]) grow() {
	flag := t.bitsSmall + 1
	tab := t.nLarge
	newSize := int(t.bitsLarge + 1)

	t.subtables[tab].growTo(newSize, t.tuning.BucketSize)
	t.migrateGrow(tab, flag)

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

	t.logger().Debugf("dysect: grow (in-place) subtable=%d capacity=%d n=%d", tab, t.capacity, t.n)
	t.recordGrow()
}

// migrateGrow redistributes subtable tab's first flag buckets between
// themselves and the flag freshly opened buckets at [flag, 2*flag),
// using a snapshot of each old bucket's contents since bucket i is
// cleared and repopulated in place.
func (t *TableInPlace[K, V]) migrateGrow(tab int, flag uint64) {
	src := &t.subtables[tab]
	bs := t.tuning.BucketSize
	snapshot := make([]cell[K, V], bs)

	for i := uint64(0); i < flag; i++ {
		lo := src.bucket(int(i))
		hi := src.bucket(int(i + flag))

		n := 0
		for j := 0; j < bs; j++ {
			if lo.cells[j].empty() {
				break
			}
			snapshot[n] = lo.cells[j]
			n++
		}
		for j := 0; j < bs; j++ {
			lo.cells[j] = cell[K, V]{}
		}

		loN, hiN := 0, 0
		for j := 0; j < n; j++ {
			c := snapshot[j]
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

// shrink mirrors Table.shrink, operating on the in-place subtable
// representation: it merges the halved subtable's contents down with
// migrateShrink, then truncates the live length with shrinkTo
// (leaving the over-reservation and its virtual-memory ledger intact
// for a future regrowth).
func (t *TableInPlace[K, V]) shrink() {
	if t.nLarge > 0 {
		t.nLarge--
	} else {
		t.nLarge = t.tuning.Subtables - 1
		t.bitsSmall >>= 1
		t.bitsLarge >>= 1
	}
	tab := t.nLarge
	newSize := int(t.bitsSmall + 1)

	var spill []cell[K, V]
	t.migrateShrink(tab, &spill)
	t.subtables[tab].shrinkTo(newSize)
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

	t.capacity -= newSize * t.tuning.BucketSize
	t.growThresh = ceilDiv(t.capacity+int(t.bitsLarge+1)*t.tuning.BucketSize, t.tuning.Alpha)
	t.shrinkThresh = ceilDiv(t.capacity-int(t.bitsLarge+1)*t.tuning.BucketSize, t.tuning.Alpha)
	if t.shrinkThresh < 0 || (t.bitsSmall == 0 && t.nLarge == 0) {
		t.shrinkThresh = 0
	}

	t.logger().Debugf("dysect: shrink (in-place) subtable=%d capacity=%d n=%d spilled=%d", tab, t.capacity, t.n, len(spill))
	t.recordShrink()
}

// migrateShrink merges subtable tab's 2*flag live buckets down to
// flag buckets, spilling anything that doesn't fit into *spill.
func (t *TableInPlace[K, V]) migrateShrink(tab int, spill *[]cell[K, V]) {
	flag := t.bitsSmall + 1
	src := &t.subtables[tab]
	bs := t.tuning.BucketSize

	for i := uint64(0); i < flag; i++ {
		lo := src.bucket(int(i))
		hi := src.bucket(int(i + flag))

		loCells := make([]cell[K, V], bs)
		hiCells := make([]cell[K, V], bs)
		loN, hiN := 0, 0
		for j := 0; j < bs; j++ {
			if lo.cells[j].empty() {
				break
			}
			loCells[loN] = lo.cells[j]
			loN++
		}
		for j := 0; j < bs; j++ {
			if hi.cells[j].empty() {
				break
			}
			hiCells[hiN] = hi.cells[j]
			hiN++
		}

		for j := 0; j < bs; j++ {
			lo.cells[j] = cell[K, V]{}
		}

		ind := 0
		for j := 0; j < loN; j++ {
			c := loCells[j]
			if t.belongsTo(c.key, tab, i) {
				lo.cells[ind] = c
				ind++
			}
		}
		for j := 0; j < hiN; j++ {
			c := hiCells[j]
			if ind >= bs {
				*spill = append(*spill, c)
				continue
			}
			if t.belongsTo(c.key, tab, i) {
				lo.cells[ind] = c
				ind++
			}
		}
	}
}

func (t *TableInPlace[K, V]) belongsTo(k K, tab int, base uint64) bool {
	probes := t.split.split(t.hasher.hash(k))
	for ti := 0; ti < t.tuning.FanOut; ti++ {
		if probes[ti].tab == tab && probes[ti].loc&t.bitsSmall == base {
			return true
		}
	}
	return false
}

// IteratorInPlace walks every occupied cell of a TableInPlace; see
// Iterator for the forward-only, non-restartable contract.
type IteratorInPlace[K constraints.Integer, V any] struct {
	table *TableInPlace[K, V]
	tab   int
	idx   int
	slot  int
	cur   *cell[K, V]
}

func (t *TableInPlace[K, V]) Iterate() *IteratorInPlace[K, V] {
	return &IteratorInPlace[K, V]{table: t, tab: 0, idx: 0, slot: -1}
}

func (it *IteratorInPlace[K, V]) Next() bool {
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

func (it *IteratorInPlace[K, V]) Key() K   { return it.cur.key }
func (it *IteratorInPlace[K, V]) Value() V { return it.cur.val }
func (it *IteratorInPlace[K, V]) Entry() *Entry[K, V] {
	return &Entry[K, V]{c: it.cur}
}
