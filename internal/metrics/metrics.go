// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitsettle"

// Metrics groups the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests  *prometheus.CounterVec
	rpcDurations *prometheus.HistogramVec
	rateLimited  *prometheus.CounterVec

	notifications *prometheus.CounterVec
	outboxBacklog prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling time in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_rate_limited_total",
			Help:      "RPC calls rejected by the per-caller rate limit.",
		}, []string{"procedure"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outbox delivery attempts by notification kind and result.",
		}, []string{"kind", "result"}),
		outboxBacklog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_batch_size",
			Help:      "Pending notifications picked up by the last dispatch cycle.",
		}),
	}
	m.registry.MustRegister(
		m.rpcRequests,
		m.rpcDurations,
		m.rateLimited,
		m.notifications,
		m.outboxBacklog,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRPC records one finished call. code is "ok" or a Connect code name.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDurations.WithLabelValues(procedure).Observe(seconds)
}

// RateLimited counts a rejected call.
func (m *Metrics) RateLimited(procedure string) {
	m.rateLimited.WithLabelValues(procedure).Inc()
}

// NotificationDelivered counts a successful delivery.
func (m *Metrics) NotificationDelivered(kind string) {
	m.notifications.WithLabelValues(kind, "delivered").Inc()
}

// NotificationFailed counts a failed delivery attempt.
func (m *Metrics) NotificationFailed(kind string) {
	m.notifications.WithLabelValues(kind, "failed").Inc()
}

// OutboxBatch records how many notifications a dispatch cycle picked up.
func (m *Metrics) OutboxBatch(n int) {
	m.outboxBacklog.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
