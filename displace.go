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

// displaceHost is the minimal read/write view of the engine a
// displacement strategy needs: hashing, candidate-bucket lookup, and
// the two tuning constants that bound the search. spec.md §9 calls for
// replacing the original's CRTP/friend coupling between engine and
// displacer with exactly this kind of narrow interface.
type displaceHost[K constraints.Integer, V any] interface {
	bucketSize() int
	fanOut() int
	hashOf(k K) hashedValue
	bucketsFor(hv hashedValue) [maxFanOut]*bucket[K, V]
}

// displacer is C4: given a key that doesn't fit in any of its h
// candidate buckets, it rearranges resident elements to open a slot.
// It returns the number of displacement steps taken (>= 0) and a
// pointer to the cell the key now occupies, or (-1, nil) on failure
// within the step budget.
type displacer[K constraints.Integer, V any] interface {
	insert(host displaceHost[K, V], k K, v V, hv hashedValue) (int, *cell[K, V])
}
