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

import "golang.org/x/exp/constraints"

// subtable is C5's independent variant: a plain growable slice of
// buckets. Growth replaces the slice wholesale (migrate copies into a
// freshly allocated subtable); there is no attempt at reusing the
// backing array, which is exactly the tradeoff the in-place variant
// (subtable_inplace.go) exists to avoid.
type subtable[K constraints.Integer, V any] struct {
	buckets []bucket[K, V]
}

func newSubtable[K constraints.Integer, V any](nBuckets, bucketSize int) subtable[K, V] {
	buckets := make([]bucket[K, V], nBuckets)
	for i := range buckets {
		buckets[i] = newBucket[K, V](bucketSize)
	}
	return subtable[K, V]{buckets: buckets}
}

func (s *subtable[K, V]) size() int { return len(s.buckets) }

func (s *subtable[K, V]) bucket(i int) *bucket[K, V] { return &s.buckets[i] }
