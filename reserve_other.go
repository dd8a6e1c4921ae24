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

//go:build !linux && !darwin
// +build !linux,!darwin

package dysect

// virtualBacking is a no-op ledger on platforms without mmap/mprotect;
// TableInPlace still works, it just can't demonstrate the real
// virtual-memory commit-on-touch mechanics (spec.md §9's anticipated
// portability deviation).
type virtualBacking struct{}

func newVirtualBacking(maxBytes int) virtualBacking { return virtualBacking{} }

func (virtualBacking) commit(from, to int) {}

func (virtualBacking) release() {}
