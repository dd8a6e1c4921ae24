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

//go:build linux || darwin
// +build linux darwin

package dysect

import "golang.org/x/sys/unix"

var pageSize = unix.Getpagesize()

// virtualBacking reserves a range of virtual address space up front
// with PROT_NONE and MAP_NORESERVE, then mprotects a growing prefix to
// PROT_READ|PROT_WRITE as commit is asked to extend it. The backing
// slice itself is never dereferenced for Go values; it is a
// page-granularity ledger, not cell storage (see reserve.go).
type virtualBacking struct {
	mem []byte
}

func newVirtualBacking(maxBytes int) virtualBacking {
	if maxBytes <= 0 {
		return virtualBacking{}
	}
	mem, err := unix.Mmap(-1, 0, maxBytes, unix.PROT_NONE,
		unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_NORESERVE)
	if err != nil {
		// Falls back to a no-op ledger; commit becomes a bookkeeping
		// no-op and the caller's real (Go-managed) storage is
		// unaffected either way.
		return virtualBacking{}
	}
	return virtualBacking{mem: mem}
}

func (b virtualBacking) commit(from, to int) {
	if b.mem == nil {
		return
	}
	lo := from &^ (pageSize - 1)
	hi := (to + pageSize - 1) &^ (pageSize - 1)
	if hi > len(b.mem) {
		hi = len(b.mem)
	}
	if lo >= hi {
		return
	}
	unix.Mprotect(b.mem[lo:hi], unix.PROT_READ|unix.PROT_WRITE)
}

func (b virtualBacking) release() {
	if b.mem == nil {
		return
	}
	unix.Munmap(b.mem)
}
