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
	"github.com/stretchr/testify/require"
)

func TestSplitterTabWithinRange(t *testing.T) {
	cfg := newSplitterConfig(8, 3, true, true)
	hv := hashedValue{raw: [maxRawHashes]uint64{0xdeadbeefcafef00d, 0x1122334455667788}}

	probes := cfg.split(hv)
	for i := 0; i < 3; i++ {
		assert.GreaterOrEqual(t, probes[i].tab, 0)
		assert.Less(t, probes[i].tab, 1<<8)
	}
}

func TestSplitterDeterministic(t *testing.T) {
	cfg := newSplitterConfig(6, 4, true, true)
	hv := hashedValue{raw: [maxRawHashes]uint64{1, 2, 3, 4}}

	a := cfg.split(hv)
	b := cfg.split(hv)
	assert.Equal(t, a, b)
}

func TestSplitterRejectsOutOfRangeFanOut(t *testing.T) {
	assert.Panics(t, func() { newSplitterConfig(4, 0, true, true) })
	assert.Panics(t, func() { newSplitterConfig(4, maxFanOut+1, true, true) })
}

func TestSplitterSinglePairMode(t *testing.T) {
	cfg := newSplitterConfig(10, 2, false, true)
	hv := hashedValue{raw: [maxRawHashes]uint64{0x0102030405060708, 0x1020304050607080}}

	probes := cfg.split(hv)
	require.Less(t, probes[0].tab, 1<<10)
	require.Less(t, probes[1].tab, 1<<10)
}

func TestBitmaskOfWideWidth(t *testing.T) {
	assert.Equal(t, ^uint64(0), bitmaskOf(64))
	assert.Equal(t, ^uint64(0), bitmaskOf(100))
	assert.Equal(t, uint64(0xFF), bitmaskOf(8))
}
