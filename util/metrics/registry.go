// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"errors"
	"net/http"

	"github.com/algorand/go-deadlock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry represents a single set of metrics registry
type Registry struct {
	reg *prometheus.Registry

	collectorsMu deadlock.Mutex
	collectors   map[string]prometheus.Collector
}

var defaultRegistry = makeDefaultRegistry()

func makeDefaultRegistry() *Registry {
	r := MakeRegistry()
	r.reg.MustRegister(collectors.NewGoCollector())
	r.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// MakeRegistry creates a new, empty metrics registry
func MakeRegistry() *Registry {
	return &Registry{
		reg:        prometheus.NewRegistry(),
		collectors: make(map[string]prometheus.Collector),
	}
}

// DefaultRegistry returns the default registry
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// register adds c under name. When a metric of that name already exists,
// the existing collector is returned so callers share it.
func (r *Registry) register(name string, c prometheus.Collector) prometheus.Collector {
	r.collectorsMu.Lock()
	defer r.collectorsMu.Unlock()
	if existing, ok := r.collectors[name]; ok {
		return existing
	}
	err := r.reg.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		c = are.ExistingCollector
	} else if err != nil {
		panic(err)
	}
	r.collectors[name] = c
	return c
}

// Deregister removes the named metric from the registry
func (r *Registry) Deregister(name string) {
	r.collectorsMu.Lock()
	defer r.collectorsMu.Unlock()
	if c, ok := r.collectors[name]; ok {
		r.reg.Unregister(c)
		delete(r.collectors, name)
	}
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gather returns the current metric families, mostly useful to tests
func (r *Registry) Gather() (map[string]float64, error) {
	families, err := r.reg.Gather()
	if err != nil {
		return nil, err
	}
	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue() + m.GetGauge().GetValue()
			values[mf.GetName()] += v
		}
	}
	return values, nil
}
