// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package database

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess = "success"
	resultError   = "error"
)

// ConnectAttempts counts constructor connection attempts by kind and result.
// Use RegisterMetrics to register this with a Prometheus registry.
var ConnectAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hytalib_db_connects_total",
		Help: "Total number of database connection attempts",
	},
	[]string{"kind", "result"},
)

// RegisterMetrics registers database package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ConnectAttempts)
}

// poolCollector exports Stats of one pool as gauges.
type poolCollector struct {
	db      Database
	maxOpen *prometheus.Desc
	open    *prometheus.Desc
	inUse   *prometheus.Desc
	idle    *prometheus.Desc
}

// NewPoolCollector returns a collector reporting db's pool gauges, labelled
// with name and the engine kind.
func NewPoolCollector(name string, db Database) prometheus.Collector {
	labels := prometheus.Labels{"pool": name, "kind": string(db.Kind())}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc("hytalib_db_pool_"+metric, help, nil, labels)
	}
	return &poolCollector{
		db:      db,
		maxOpen: desc("max_connections", "Maximum number of open connections"),
		open:    desc("open_connections", "Number of open connections"),
		inUse:   desc("in_use_connections", "Number of connections currently in use"),
		idle:    desc("idle_connections", "Number of idle connections"),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxOpen
	ch <- c.open
	ch <- c.inUse
	ch <- c.idle
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.db.Stats()
	ch <- prometheus.MustNewConstMetric(c.maxOpen, prometheus.GaugeValue, float64(s.MaxOpen))
	ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, float64(s.Open))
	ch <- prometheus.MustNewConstMetric(c.inUse, prometheus.GaugeValue, float64(s.InUse))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle))
}

// RegisterPoolMetrics registers a pool collector for db under name.
func RegisterPoolMetrics(reg prometheus.Registerer, name string, db Database) error {
	return reg.Register(NewPoolCollector(name, db))
}

func resultLabel(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
