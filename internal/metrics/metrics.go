// Package metrics exposes Prometheus metrics for DSpace calls and GraphQL
// operations.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docsgraph"

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	registry       *prometheus.Registry
	dspaceRequests *prometheus.CounterVec
	dspaceDuration *prometheus.HistogramVec
	operations     *prometheus.CounterVec
}

// New registers all collectors, including the Go runtime and process ones.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dspaceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dspace",
			Name:      "requests_total",
			Help:      "DSpace REST calls by operation and final HTTP status (0 on transport failure).",
		}, []string{"operation", "status"}),
		dspaceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dspace",
			Name:      "request_duration_seconds",
			Help:      "Duration of a DSpace call including the authentication handshake.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "operations_total",
			Help:      "GraphQL root fields resolved, by field and result message.",
		}, []string{"field", "msg"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.dspaceRequests,
		m.dspaceDuration,
		m.operations,
	)
	return m
}

// ObserveRequest implements dspace.Recorder.
func (m *Metrics) ObserveRequest(operation string, status int, elapsed time.Duration) {
	m.dspaceRequests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.dspaceDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveOperation counts one resolved GraphQL root field.
func (m *Metrics) ObserveOperation(field, msg string) {
	m.operations.WithLabelValues(field, msg).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
