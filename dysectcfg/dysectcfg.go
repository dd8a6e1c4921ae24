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

// Package dysectcfg loads a dysect.Tuning from YAML, the way a
// deployment would hand the engine its bucket size, subtable count,
// and memory-utilization target without recompiling.
package dysectcfg

import (
	"os"

	"gopkg.in/yaml.v2"

	"dysect"
)

// File is the on-disk shape of a Tuning: field names match dysect.Tuning
// but lowercase with underscores for YAML, and Displacer is a string so config
// files stay human-readable.
type File struct {
	BucketSize    int     `yaml:"bucket_size"`
	Subtables     int     `yaml:"subtables"`
	FanOut        int     `yaml:"fan_out"`
	Alpha         float64 `yaml:"alpha"`
	StepBudget    int     `yaml:"step_budget"`
	FixErrors     bool    `yaml:"fix_errors"`
	Displacer     string  `yaml:"displacer"` // "bfs" or "random-walk"
	Seed          uint64  `yaml:"seed"`
	DualPair      bool    `yaml:"dual_pair"`
	LinearCombine bool    `yaml:"linear_combine"`
	ReserveFactor int     `yaml:"reserve_factor"`
}

// Load reads and parses a YAML tuning file from path, starting from
// dysect.DefaultTuning so any field the file omits keeps its default.
func Load(path string) (dysect.Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dysect.Tuning{}, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a dysect.Tuning, same defaulting rule
// as Load.
func Parse(data []byte) (dysect.Tuning, error) {
	def := dysect.DefaultTuning()
	f := File{
		BucketSize:    def.BucketSize,
		Subtables:     def.Subtables,
		FanOut:        def.FanOut,
		Alpha:         def.Alpha,
		StepBudget:    def.StepBudget,
		FixErrors:     def.FixErrors,
		Displacer:     def.Displacer.String(),
		Seed:          def.Seed,
		DualPair:      def.DualPair,
		LinearCombine: def.LinearCombine,
		ReserveFactor: def.ReserveFactor,
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return dysect.Tuning{}, err
	}

	t := dysect.Tuning{
		BucketSize:    f.BucketSize,
		Subtables:     f.Subtables,
		FanOut:        f.FanOut,
		Alpha:         f.Alpha,
		StepBudget:    f.StepBudget,
		FixErrors:     f.FixErrors,
		Seed:          f.Seed,
		DualPair:      f.DualPair,
		LinearCombine: f.LinearCombine,
		ReserveFactor: f.ReserveFactor,
	}
	switch f.Displacer {
	case "random-walk":
		t.Displacer = dysect.DisplacerRandomWalk
	default:
		t.Displacer = dysect.DisplacerBFS
	}
	return t, nil
}
