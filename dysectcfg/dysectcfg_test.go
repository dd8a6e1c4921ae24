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

package dysectcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dysect"
)

func TestParseOverridesDefaults(t *testing.T) {
	yamlDoc := []byte(`
bucket_size: 4
subtables: 64
fan_out: 2
alpha: 1.25
displacer: random-walk
`)
	tu, err := Parse(yamlDoc)
	require.NoError(t, err)

	assert.Equal(t, 4, tu.BucketSize)
	assert.Equal(t, 64, tu.Subtables)
	assert.Equal(t, 2, tu.FanOut)
	assert.Equal(t, 1.25, tu.Alpha)
	assert.Equal(t, dysect.DisplacerRandomWalk, tu.Displacer)

	// Fields the document didn't mention fall back to DefaultTuning.
	def := dysect.DefaultTuning()
	assert.Equal(t, def.StepBudget, tu.StepBudget)
	assert.Equal(t, def.FixErrors, tu.FixErrors)
}

func TestParseEmptyDocumentYieldsDefaults(t *testing.T) {
	tu, err := Parse([]byte(``))
	require.NoError(t, err)
	assert.Equal(t, dysect.DefaultTuning().BucketSize, tu.BucketSize)
	assert.Equal(t, dysect.DisplacerBFS, tu.Displacer)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("bucket_size: [this is not an int"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/tuning.yaml")
	assert.Error(t, err)
}
