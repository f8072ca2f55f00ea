// Package metrics exposes the Prometheus collectors used by the HTTP layer
// and the plan synthesizer.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector bundles the service's Prometheus metrics. All methods are nil-safe
// so code paths under test can run without a registry.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	providerFailures *prometheus.CounterVec
	plansTotal       prometheus.Counter
}

// NewCollector registers the collectors on the default registry. Call it once
// per process.
func NewCollector(namespace string) *Collector {
	return &Collector{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by path, method and status code.",
		}, []string{"path", "method", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		providerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "External provider failures by provider and outcome (degraded or fatal).",
		}, []string{"provider", "outcome"}),
		plansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_created_total",
			Help:      "Route plans successfully synthesized and saved.",
		}),
	}
}

func (c *Collector) RecordRequest(path, method string, status int, durationSeconds float64) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(path).Observe(durationSeconds)
}

func (c *Collector) RecordProviderFailure(provider, outcome string) {
	if c == nil {
		return
	}
	c.providerFailures.WithLabelValues(provider, outcome).Inc()
}

func (c *Collector) RecordPlanCreated() {
	if c == nil {
		return
	}
	c.plansTotal.Inc()
}
