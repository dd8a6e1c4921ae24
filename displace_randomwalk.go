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
	"math/rand"

	"golang.org/x/exp/constraints"
)

// randomWalkDisplacer implements cyclic random-walk displacement: it
// repeatedly swaps the incoming cell into a randomly chosen bucket
// slot, following the evicted resident to one of its other candidate
// buckets, until something lands in a bucket with free space or the
// step budget runs out. Grounded on the original's
// dstrat_rwalk_cyclic.h.
type randomWalkDisplacer[K constraints.Integer, V any] struct {
	steps int
	rng   *rand.Rand
}

func newRandomWalkDisplacer[K constraints.Integer, V any](steps int, seed int64) *randomWalkDisplacer[K, V] {
	return &randomWalkDisplacer[K, V]{steps: steps, rng: rand.New(rand.NewSource(seed))}
}

type rwRecord[K constraints.Integer, V any] struct {
	c    cell[K, V]
	buck *bucket[K, V]
}

func (d *randomWalkDisplacer[K, V]) insert(host displaceHost[K, V], k K, v V, hv hashedValue) (int, *cell[K, V]) {
	nh := host.fanOut()
	bs := host.bucketSize()
	if nh < 2 {
		return -1, nil
	}

	buckets := host.bucketsFor(hv)
	tb := buckets[d.rng.Intn(nh)]
	tp := cell[K, V]{key: k, val: v}
	var pos *cell[K, V]

	queue := make([]rwRecord[K, V], 0, d.steps+1)
	queue = append(queue, rwRecord[K, V]{c: tp, buck: tb})

	steps := 0
	for !tb.space() && steps < d.steps {
		r := d.rng.Intn(bs)
		if tp.key == k {
			pos = &tb.cells[r]
		}
		tp = tb.replace(r, tp)

		cands := host.bucketsFor(host.hashOf(tp.key))
		choice := cands[d.rng.Intn(nh-1)]
		if choice == tb {
			choice = cands[nh-1]
		}
		tb = choice

		queue = append(queue, rwRecord[K, V]{c: tp, buck: tb})
		steps++
	}

	if tb.insert(tp.key, tp.val) {
		if tp.key == k {
			pos = tb.findPtr(tp.key)
		}
		return len(queue) - 1, pos
	}

	// Step budget exhausted: walk the chain back in reverse. queue[j].buck
	// currently holds queue[j].c (written in place by an earlier swap);
	// restoring it means taking that back out and reinstating
	// queue[j+1].c, the resident it displaced. The last queue entry was
	// never written anywhere (it's the homeless cell that failed to find
	// a home), so the loop only ever touches queue[0..len-2].
	for j := len(queue) - 1; j >= 1; j-- {
		prev := queue[j-1]
		cur := queue[j]
		if !prev.buck.remove(prev.c.key) {
			return -1, nil
		}
		if !prev.buck.insert(cur.c.key, cur.c.val) {
			return -1, nil
		}
	}
	return -1, nil
}
