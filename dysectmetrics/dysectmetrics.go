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

// Package dysectmetrics provides a Prometheus-backed dysect.Recorder,
// the optional instrumentation hook the engine calls on every insert,
// erase, grow, shrink, and displacement.
package dysectmetrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder implements dysect.Recorder with a small family of
// Prometheus collectors. Register it once per process; multiple
// tables may share one Recorder if name collisions in constLabels are
// avoided by the caller.
type Recorder struct {
	inserts       prometheus.Counter
	erases        prometheus.Counter
	grows         prometheus.Counter
	shrinks       prometheus.Counter
	displacements prometheus.Histogram
	size          prometheus.Gauge
	capacity      prometheus.Gauge
}

// New builds a Recorder and registers its collectors with reg. The
// constLabels map distinguishes multiple tables sharing one registry,
// e.g. {"table": "sessions"}.
func New(reg prometheus.Registerer, constLabels prometheus.Labels) *Recorder {
	r := &Recorder{
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dysect",
			Name:        "inserts_total",
			Help:        "Number of successful inserts.",
			ConstLabels: constLabels,
		}),
		erases: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dysect",
			Name:        "erases_total",
			Help:        "Number of successful erases.",
			ConstLabels: constLabels,
		}),
		grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dysect",
			Name:        "grows_total",
			Help:        "Number of subtable growth events.",
			ConstLabels: constLabels,
		}),
		shrinks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "dysect",
			Name:        "shrinks_total",
			Help:        "Number of subtable shrink events.",
			ConstLabels: constLabels,
		}),
		displacements: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "dysect",
			Name:        "displacement_steps",
			Help:        "Displacement chain length for inserts that needed one.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "dysect",
			Name:        "size",
			Help:        "Current number of stored elements.",
			ConstLabels: constLabels,
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "dysect",
			Name:        "capacity",
			Help:        "Current total cell capacity across all subtables.",
			ConstLabels: constLabels,
		}),
	}
	if reg != nil {
		reg.MustRegister(r.inserts, r.erases, r.grows, r.shrinks, r.displacements, r.size, r.capacity)
	}
	return r
}

func (r *Recorder) Insert()                    { r.inserts.Inc() }
func (r *Recorder) Erase()                     { r.erases.Inc() }
func (r *Recorder) Grow()                      { r.grows.Inc() }
func (r *Recorder) Shrink()                    { r.shrinks.Inc() }
func (r *Recorder) Displacement(steps int)     { r.displacements.Observe(float64(steps)) }
func (r *Recorder) SetSize(n int)              { r.size.Set(float64(n)) }
func (r *Recorder) SetCapacity(n int)          { r.capacity.Set(float64(n)) }
