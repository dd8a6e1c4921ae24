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

func TestBucketInsertFindDenseLeft(t *testing.T) {
	b := newBucket[uint64, string](4)

	assert.True(t, b.insert(1, "a"))
	assert.True(t, b.insert(2, "b"))
	assert.True(t, b.insert(3, "c"))

	v, ok := b.find(2)
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = b.find(99)
	assert.False(t, ok)

	assert.True(t, b.space())
	assert.True(t, b.insert(4, "d"))
	assert.False(t, b.space())
	assert.False(t, b.insert(5, "e"))
}

func TestBucketRemoveKeepsDenseLeft(t *testing.T) {
	b := newBucket[uint64, int](4)
	b.insert(1, 10)
	b.insert(2, 20)
	b.insert(3, 30)

	require.True(t, b.remove(2))
	// 3 should have moved into slot 1 (swap with last occupied).
	v, ok := b.find(3)
	require.True(t, ok)
	assert.Equal(t, 30, v)
	assert.True(t, b.cells[2].empty())

	_, ok = b.find(2)
	assert.False(t, ok)
}

func TestBucketPopShiftsLeft(t *testing.T) {
	b := newBucket[uint64, int](4)
	b.insert(1, 10)
	b.insert(2, 20)
	b.insert(3, 30)

	v, ok := b.pop(1)
	require.True(t, ok)
	assert.Equal(t, 10, v)

	// Everything after the popped slot should have shifted left, not
	// swapped, so order among survivors is preserved.
	assert.Equal(t, uint64(2), b.cells[0].key)
	assert.Equal(t, uint64(3), b.cells[1].key)
	assert.True(t, b.cells[2].empty())
}

func TestBucketProbe(t *testing.T) {
	b := newBucket[uint64, int](4)
	assert.Equal(t, 4, b.probe(1))

	b.insert(1, 10)
	assert.Equal(t, -1, b.probe(1))
	assert.Equal(t, 3, b.probe(2))

	b.insert(2, 20)
	b.insert(3, 30)
	b.insert(4, 40)
	assert.Equal(t, 0, b.probe(5))
}

func TestBucketDisplacement(t *testing.T) {
	b := newBucket[uint64, int](4)
	b.insert(1, 10)
	b.insert(2, 20)

	assert.Equal(t, 0, b.displacement(1))
	assert.Equal(t, 1, b.displacement(2))
	assert.Equal(t, 4, b.displacement(99))
}
