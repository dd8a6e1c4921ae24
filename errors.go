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

import "github.com/pkg/errors"

// ErrKeyNotFound is returned by Get when the requested key has no entry.
// Test with errors.Is, not direct comparison, since Get wraps it with
// call-site context.
var ErrKeyNotFound = errors.New("dysect: key not found")

// errKeyNotFound wraps ErrKeyNotFound with a stack trace for the caller's
// benefit while keeping errors.Is(err, ErrKeyNotFound) working.
func errKeyNotFound() error {
	return errors.WithStack(ErrKeyNotFound)
}
