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
	"unsafe"

	"golang.org/x/exp/constraints"
)

// subtableInPlace is C5's in-place variant: its bucket slice is
// allocated with spare capacity up front (the over-reservation), so
// growth within that budget just re-slices instead of allocating and
// copying. A parallel reservation tracks the equivalent real
// virtual-memory commitment (reserve.go) purely for observability.
type subtableInPlace[K constraints.Integer, V any] struct {
	buckets []bucket[K, V]
	res     *reservation
}

func bucketStride[K constraints.Integer, V any]() int {
	var b bucket[K, V]
	return int(unsafe.Sizeof(b))
}

// newSubtableInPlace allocates a bucket slice of length nBuckets with
// capacity reserveFactor times larger, and opens a matching virtual
// reservation ledger sized to that same reserved capacity.
func newSubtableInPlace[K constraints.Integer, V any](nBuckets, bucketSize, reserveFactor int) subtableInPlace[K, V] {
	if reserveFactor < 1 {
		reserveFactor = 1
	}
	maxBuckets := nBuckets * reserveFactor
	if maxBuckets < nBuckets {
		maxBuckets = nBuckets
	}
	buckets := make([]bucket[K, V], nBuckets, maxBuckets)
	for i := range buckets {
		buckets[i] = newBucket[K, V](bucketSize)
	}
	stride := bucketStride[K, V]()
	res := newReservation(maxBuckets * stride)
	res.commit(nBuckets * stride)
	return subtableInPlace[K, V]{buckets: buckets, res: res}
}

func (s *subtableInPlace[K, V]) size() int { return len(s.buckets) }

func (s *subtableInPlace[K, V]) bucket(i int) *bucket[K, V] { return &s.buckets[i] }

// growTo extends the subtable to newLen buckets. When the original
// over-reservation still has room, this re-slices in place (no copy);
// otherwise it falls back to a fresh, larger allocation, doubling the
// reservation budget for subsequent growths.
func (s *subtableInPlace[K, V]) growTo(newLen, bucketSize int) {
	stride := bucketStride[K, V]()
	if newLen <= cap(s.buckets) {
		old := len(s.buckets)
		s.buckets = s.buckets[:newLen]
		for i := old; i < newLen; i++ {
			s.buckets[i] = newBucket[K, V](bucketSize)
		}
		s.res.commit(newLen * stride)
		return
	}

	grownCap := newLen * 2
	grown := make([]bucket[K, V], newLen, grownCap)
	copy(grown, s.buckets)
	for i := len(s.buckets); i < newLen; i++ {
		grown[i] = newBucket[K, V](bucketSize)
	}
	s.buckets = grown

	s.res.release()
	s.res = newReservation(grownCap * stride)
	s.res.commit(newLen * stride)
}

// shrinkTo truncates the subtable's live length to newLen, leaving the
// over-reserved capacity and virtual-memory ledger untouched so a
// later regrowth within budget still avoids a copy.
func (s *subtableInPlace[K, V]) shrinkTo(newLen int) {
	s.buckets = s.buckets[:newLen]
}
