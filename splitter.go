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

// maxFanOut bounds h, the number of candidate buckets per key. spec.md
// documents typical values of 2-4; this cap keeps the per-probe
// scratch arrays (probe locations, candidate buckets) fixed-size
// instead of heap-allocated.
const maxFanOut = 4

// probeLoc is one (subtable, in-table-offset) candidate produced by the
// splitter, per spec.md §3's hashed-value bit-field record.
type probeLoc struct {
	tab int
	loc uint64
}

// splitterConfig implements C2: it turns a hashedValue into up to h
// probeLoc candidates via bit-field extraction, optionally synthesizing
// probes beyond the first two via linear combination (spec.md §4.2).
type splitterConfig struct {
	tabWidth      uint
	h             int
	dualPair      bool
	linearCombine bool
}

func newSplitterConfig(tabWidth uint, h int, dualPair, linearCombine bool) splitterConfig {
	if h < 1 || h > maxFanOut {
		panic("dysect: h must be in [1, maxFanOut]")
	}
	return splitterConfig{
		tabWidth:      tabWidth,
		h:             h,
		dualPair:      dualPair,
		linearCombine: linearCombine,
	}
}

// rawHashesNeeded mirrors hasher.h's n_hfct computation: how many
// independent 64-bit hash evaluations this configuration consumes.
func (s splitterConfig) rawHashesNeeded() int {
	pairs := s.h
	if s.linearCombine {
		pairs = 2
	}
	if s.dualPair {
		return (pairs + 1) / 2
	}
	return pairs
}

func bitmaskOf(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// splitPair extracts (tab, loc) from one raw 64-bit hash. In dual-pair
// mode the raw value holds two independent 32-bit (tab, loc) pairs and
// half selects the low (0) or high (1) one; in single-pair mode the
// entire 64 bits are one (tab, loc) pair and half is ignored.
func splitPair(raw uint64, tabWidth uint, dualPair bool, half int) (tab, loc uint64) {
	if dualPair {
		if half == 1 {
			raw >>= 32
		}
		tabMask := bitmaskOf(tabWidth)
		locMask := bitmaskOf(32 - tabWidth)
		return raw & tabMask, (raw >> tabWidth) & locMask
	}
	tabMask := bitmaskOf(tabWidth)
	locMask := bitmaskOf(64 - tabWidth)
	return raw & tabMask, (raw >> tabWidth) & locMask
}

// split produces the h probe locations for hv. Only the first s.h
// entries of the returned array are meaningful.
func (s splitterConfig) split(hv hashedValue) [maxFanOut]probeLoc {
	var out [maxFanOut]probeLoc

	tab0, loc0 := splitPair(hv.raw[0], s.tabWidth, s.dualPair, 0)
	var tab1, loc1 uint64
	if s.dualPair {
		tab1, loc1 = splitPair(hv.raw[0], s.tabWidth, true, 1)
	} else if s.h > 1 {
		tab1, loc1 = splitPair(hv.raw[1], s.tabWidth, false, 0)
	}

	tabMask := bitmaskOf(s.tabWidth)
	locWidthBase := uint(32)
	if !s.dualPair {
		locWidthBase = 64
	}
	locMask := bitmaskOf(locWidthBase - s.tabWidth)

	for i := 0; i < s.h; i++ {
		switch {
		case i == 0:
			out[i] = probeLoc{tab: int(tab0), loc: loc0}
		case i == 1:
			out[i] = probeLoc{tab: int(tab1), loc: loc1}
		case s.linearCombine:
			tabStep := tab1 | 1
			locStep := loc1 | 1
			out[i] = probeLoc{
				tab: int((tab0 + uint64(i)*tabStep) & tabMask),
				loc: (loc0 + uint64(i)*locStep) & locMask,
			}
		case s.dualPair:
			t, l := splitPair(hv.raw[i/2], s.tabWidth, true, i%2)
			out[i] = probeLoc{tab: int(t), loc: l}
		default:
			t, l := splitPair(hv.raw[i], s.tabWidth, false, 0)
			out[i] = probeLoc{tab: int(t), loc: l}
		}
	}
	return out
}
