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
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Gauge represent a single gauge variable.
type Gauge struct {
	g prometheus.Gauge
}

// MakeGauge create a new gauge with the provided name and description.
func MakeGauge(metric MetricName) *Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: metric.Name,
		Help: metric.Description,
	})
	return &Gauge{g: DefaultRegistry().register(metric.Name, g).(prometheus.Gauge)}
}

// Set sets gauge to x
func (gauge *Gauge) Set(x uint64) {
	gauge.g.Set(float64(x))
}

// Add adds a signed delta to the gauge
func (gauge *Gauge) Add(delta int64) {
	gauge.g.Add(float64(delta))
}

// GetUint64Value returns the current value.
func (gauge *Gauge) GetUint64Value() uint64 {
	var m dto.Metric
	if gauge.g.Write(&m) != nil {
		return 0
	}
	return uint64(m.GetGauge().GetValue())
}
