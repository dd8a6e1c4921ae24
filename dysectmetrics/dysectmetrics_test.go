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

package dysectmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderRegistersAndUpdatesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, prometheus.Labels{"table": "test"})

	r.Insert()
	r.SetSize(3)
	r.Grow()
	r.SetCapacity(128)
	r.Displacement(5)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	require.Greater(t, count, 0)
	require.Equal(t, 3.0, testutil.ToFloat64(r.size))
	require.Equal(t, 128.0, testutil.ToFloat64(r.capacity))
}

func TestRecorderWithNilRegistererDoesNotPanic(t *testing.T) {
	r := New(nil, nil)
	r.Insert()
	r.Erase()
	r.SetSize(1)
}
