/**
 * Copyright 2024 MaxPoint Interactive, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package tap

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "cascading_avro"
	metricsSubsystem = "tap"
)

// Metrics counts the tuples and part files that flow through taps, labelled
// by storage format.
type Metrics struct {
	mu         sync.Mutex
	registerer prometheus.Registerer
	registered bool

	tuplesRead    *prometheus.CounterVec
	tuplesWritten *prometheus.CounterVec
	partsRead     *prometheus.CounterVec
	partsWritten  *prometheus.CounterVec
}

func newCounterVec(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		},
		[]string{"format"},
	)
}

// NewMetrics creates tap metrics that register with registerer, or with the
// default registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		registerer:    registerer,
		tuplesRead:    newCounterVec("tuples_read_total", "Total number of tuples read from taps"),
		tuplesWritten: newCounterVec("tuples_written_total", "Total number of tuples written to taps"),
		partsRead:     newCounterVec("parts_read_total", "Total number of part files read"),
		partsWritten:  newCounterVec("parts_written_total", "Total number of part files written"),
	}
}

// Register registers the collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.tuplesRead,
		m.tuplesWritten,
		m.partsRead,
		m.partsWritten,
	}
	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

func (m *Metrics) tupleRead(format string) {
	if m != nil {
		m.tuplesRead.WithLabelValues(format).Inc()
	}
}

func (m *Metrics) tupleWritten(format string) {
	if m != nil {
		m.tuplesWritten.WithLabelValues(format).Inc()
	}
}

func (m *Metrics) partRead(format string) {
	if m != nil {
		m.partsRead.WithLabelValues(format).Inc()
	}
}

func (m *Metrics) partWritten(format string) {
	if m != nil {
		m.partsWritten.WithLabelValues(format).Inc()
	}
}
