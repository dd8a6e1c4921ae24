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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyHasherDeterministic(t *testing.T) {
	h := newKeyHasher[uint64](3, 42)
	a := h.hash(12345)
	b := h.hash(12345)
	assert.Equal(t, a, b)
}

func TestKeyHasherSlotsIndependent(t *testing.T) {
	h := newKeyHasher[uint64](2, 0)
	hv := h.hash(7)
	assert.NotEqual(t, hv.raw[0], hv.raw[1])
}

func TestKeyHasherDifferentSeedsDiverge(t *testing.T) {
	h1 := newKeyHasher[uint64](1, 1)
	h2 := newKeyHasher[uint64](1, 2)
	assert.NotEqual(t, h1.hash(7).raw[0], h2.hash(7).raw[0])
}

func TestKeyHasherRejectsTooManySlots(t *testing.T) {
	assert.Panics(t, func() { newKeyHasher[uint64](maxRawHashes+1, 0) })
}
