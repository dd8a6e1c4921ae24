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

import "github.com/aristanetworks/glog"

// Logger receives debug-level notices about grow/shrink/rehash events.
// The default implementation is gated behind glog's verbosity flag so it
// costs nothing on the hot path when verbose logging isn't enabled.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type glogLogger struct{ level glog.Level }

func (l glogLogger) Debugf(format string, args ...interface{}) {
	if glog.V(l.level) {
		glog.Infof(format, args...)
	}
}

// defaultLogger is used by engines constructed without an explicit
// Logger in their Tuning.
var defaultLogger Logger = glogLogger{level: 2}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
