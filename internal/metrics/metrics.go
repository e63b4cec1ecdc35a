// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samplefeed_backend_requests_total",
			Help: "Job source round trips by operation and outcome (ok/not_found/error).",
		},
		[]string{"operation", "outcome"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "samplefeed_backend_request_duration_seconds",
			Help:    "Job source round trip latency in seconds.",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samplefeed_api_requests_total",
			Help: "HTTP API requests by route and status code.",
		},
		[]string{"route", "code"},
	)
)

// Outcome labels of samplefeed_backend_requests_total.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(backendRequests, backendDuration, apiRequests)
	})
}

// ObserveBackend records one job source round trip that started at start.
func ObserveBackend(operation, outcome string, start time.Time) {
	op := norm(operation)
	backendDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	backendRequests.WithLabelValues(op, norm(outcome)).Inc()
}

// IncAPIRequest counts one served HTTP API request.
func IncAPIRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	apiRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
