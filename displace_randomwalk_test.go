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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomWalkDisplacerRoundTrip(t *testing.T) {
	tu := Tuning{
		BucketSize: 4,
		Subtables:  32,
		FanOut:     3,
		Alpha:      1.2,
		StepBudget: 128,
		FixErrors:  true,
		Displacer:  DisplacerRandomWalk,
		Seed:       99,
	}
	tab := New[uint64, int](tu, 64)

	rng := rand.New(rand.NewSource(11))
	keys := make([]uint64, 0, 2000)
	seen := make(map[uint64]bool)
	for len(keys) < 2000 {
		k := rng.Uint64()
		if k == 0 || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
		_, ok := tab.Insert(k, int(k%1000))
		require.True(t, ok)
	}

	for _, k := range keys {
		e, ok := tab.Find(k)
		require.True(t, ok)
		assert.Equal(t, int(k%1000), e.Value())
	}
}

func TestRandomWalkDisplacerNeedsAtLeastTwoCandidates(t *testing.T) {
	d := newRandomWalkDisplacer[uint64, int](10, 1)
	host := newTable[uint64, int](Tuning{
		BucketSize: 2,
		Subtables:  1,
		FanOut:     1,
		Alpha:      1.1,
		StepBudget: 10,
	}, 4)

	steps, cell := d.insert(host, 1, 1, host.hashOf(1))
	assert.Equal(t, -1, steps)
	assert.Nil(t, cell)
}
