// Package metrics defines the Prometheus instrumentation for Crewgate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for Crewgate.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RefreshesTotal   *prometheus.CounterVec
	ReplaysTotal     prometheus.Counter
	RefreshQueueSize prometheus.Gauge
	GuardChecksTotal *prometheus.CounterVec
	WhoAmICallsTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "crewgate",
				Name:      "requests_total",
				Help:      "Total number of API requests issued",
			},
			[]string{"method", "outcome"}, // outcome=ok/client_error/auth/forbidden/server_error/network
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "crewgate",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets, // 5ms to 10s
			},
			[]string{"method"},
		),
		RefreshesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "crewgate",
				Name:      "refreshes_total",
				Help:      "Total session refresh attempts",
			},
			[]string{"result"}, // result=success/failure
		),
		ReplaysTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "crewgate",
				Name:      "replays_total",
				Help:      "Total requests replayed after a successful refresh",
			},
		),
		RefreshQueueSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "crewgate",
				Name:      "refresh_queue_size",
				Help:      "Requests currently queued behind an in-flight refresh",
			},
		),
		GuardChecksTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "crewgate",
				Name:      "guard_checks_total",
				Help:      "Total session guard evaluations",
			},
			[]string{"decision"}, // decision=allowed/allowed_cached/denied/error
		),
		WhoAmICallsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "crewgate",
				Name:      "whoami_calls_total",
				Help:      "Total who-am-I profile fetches issued by the guard",
			},
		),
	}
}

// NewNopMetrics creates metrics bound to a throwaway registry.
// Useful for tests and for callers that do not expose metrics.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
