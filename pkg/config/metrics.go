// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package config

import "github.com/prometheus/client_golang/prometheus"

// Result label values.
const (
	resultSuccess = "success"
	resultError   = "error"
)

// StoreWrites counts full-file rewrites by operation and result.
// Use RegisterMetrics to register this with a Prometheus registry.
var StoreWrites = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hytalib_config_writes_total",
		Help: "Total number of configuration file rewrites",
	},
	[]string{"operation", "result"},
)

// StoreReloads counts file reads, including the one made at construction.
// Use RegisterMetrics to register this with a Prometheus registry.
var StoreReloads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hytalib_config_reloads_total",
		Help: "Total number of configuration file reloads",
	},
	[]string{"result"},
)

// RegisterMetrics registers config package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(StoreWrites)
	reg.MustRegister(StoreReloads)
}

func resultLabel(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
