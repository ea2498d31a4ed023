package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded by the auth interceptor
const (
	RefreshSuccess = "success"
	RefreshDenied  = "denied"
	RefreshSkipped = "skipped"
)

// Metrics holds client-side counters on a dedicated registry so that
// several clients (and tests) never collide on the default registry.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
}

// NewMetrics creates and registers the client collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grc",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "HTTP exchanges with the GRC API by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grc",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP exchanges with the GRC API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grc",
			Subsystem: "client",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by outcome.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(m.requests, m.duration, m.refreshes)

	return m
}

// Registry returns the registry holding the client collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Requests exposes the request counter (used by tests)
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}

// Refreshes exposes the refresh counter (used by tests)
func (m *Metrics) Refreshes() *prometheus.CounterVec {
	return m.refreshes
}

// ObserveRefresh counts one refresh outcome
func (m *Metrics) ObserveRefresh(result string) {
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) observeRequest(method string, status int, d time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}
