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
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// maxRawHashes bounds how many independent 64-bit hash evaluations a
// hashedValue carries. It comfortably covers every (dualPair, h,
// linearCombine) combination the engine exposes: dual-pair mode needs at
// most ceil(h/2) evaluations, single-pair mode needs at most h (or 2 when
// linear combination is enabled).
const maxRawHashes = 4

// hashedValue is the 64-bit-per-slot record the splitter extracts probe
// locations from, one raw evaluation per underlying hash function.
type hashedValue struct {
	raw [maxRawHashes]uint64
}

// keyHasher evaluates the configured number of independent, seeded 64-bit
// hashes for a key. Each slot is deterministic and stateless beyond its
// construction-time seed, matching the contract in spec.md §4.1.
type keyHasher[K constraints.Integer] struct {
	seeds [maxRawHashes]uint64
	n     int
}

// newKeyHasher builds a hasher producing n independent hash values, each
// seeded from base plus a large per-slot offset — the same
// seed-spacing scheme as the teacher's xx_32 per-function seeding,
// generalized to 64-bit output via xxhash.
func newKeyHasher[K constraints.Integer](n int, base uint64) keyHasher[K] {
	if n > maxRawHashes {
		panic("dysect: hasher requires more raw hash slots than supported")
	}
	h := keyHasher[K]{n: n}
	for i := 0; i < n; i++ {
		h.seeds[i] = base + 2345745572344267838 + uint64(i)*8768656543548765336
	}
	return h
}

func (h keyHasher[K]) hash(k K) hashedValue {
	var out hashedValue
	var buf [8]byte
	for i := 0; i < h.n; i++ {
		binary.LittleEndian.PutUint64(buf[:], uint64(k)^h.seeds[i])
		out.raw[i] = xxhash.Sum64(buf[:])
	}
	return out
}
