// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes the Prometheus counters and histograms the engine
// and cache record, and an HTTP handler for `pathway serve --metrics-addr` to
// mount, the same promhttp.Handler wiring cmd/cie's `index` command uses
// behind a --metrics-addr flag.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups the metrics this module records. Callers hold one
// Registry per process and pass it to the engine/cache constructors that
// accept one.
type Registry struct {
	reg *prometheus.Registry

	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	ResolveLatency *prometheus.HistogramVec
	ResolveFailed  *prometheus.CounterVec

	QueriesTotal *prometheus.CounterVec
}

// New builds a Registry with its own prometheus.Registry, independent of
// the global default registry, so multiple Engine instances in the same
// process (e.g. tests) don't collide on metric registration.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pathway",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Raw and masked source cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pathway",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Raw and masked source cache misses requiring a recompute.",
		}),
		ResolveLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pathway",
			Subsystem: "resolve",
			Name:      "segment_duration_seconds",
			Help:      "Time to resolve one path, by namespace.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"namespace"}),
		ResolveFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pathway",
			Subsystem: "resolve",
			Name:      "segment_failures_total",
			Help:      "Paths that resolved to zero matches, by namespace.",
		}, []string{"namespace"}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pathway",
			Name:      "queries_total",
			Help:      "Engine queries served, by kind (complete, find_definition).",
		}, []string{"kind"}),
	}
}

// Handler returns the HTTP handler to mount at "/metrics".
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
