// Package metrics holds the Prometheus collectors of the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/archdrive/internal/server/retry"
)

const namespace = "archdrive"

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	uploadAttempts *prometheus.CounterVec
	uploadRetries  prometheus.Counter
	uploadWait     prometheus.Histogram
	operations     *prometheus.CounterVec
}

// New registers the collectors on reg. Passing a fresh prometheus.Registry
// keeps tests isolated from the global default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		uploadAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_attempts_total",
			Help:      "Object put attempts, by outcome.",
		}, []string{"outcome"}),
		uploadRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_retries_total",
			Help:      "Waits scheduled between failed put attempts.",
		}),
		uploadWait: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_retry_delay_seconds",
			Help:      "Scheduled delay before a retried put.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "File and folder operations, by result.",
		}, []string{"operation", "result"}),
	}
}

// ObserveAttempt is meant to be passed to retry.WithObserver.
func (m *Metrics) ObserveAttempt(a retry.Attempt) {
	m.uploadAttempts.WithLabelValues(a.Outcome.String()).Inc()
	if a.Delay > 0 {
		m.uploadRetries.Inc()
		m.uploadWait.Observe(a.Delay.Seconds())
	}
}

// ObserveOperation counts one finished operation.
func (m *Metrics) ObserveOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
