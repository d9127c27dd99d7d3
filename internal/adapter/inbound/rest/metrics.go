package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the REST surface.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	RateLimitRejections prometheus.Counter
	SummariesTotal      *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
// trackedIdentities, when non-nil, is exported as a gauge of rate-limited
// identities currently held in memory.
func NewMetrics(reg prometheus.Registerer, trackedIdentities func() float64) *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transformerbee_mcp",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "transformerbee_mcp",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RateLimitRejections: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "transformerbee_mcp",
				Name:      "rate_limit_rejections_total",
				Help:      "Total requests rejected by the rate limiter",
			},
		),
		SummariesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transformerbee_mcp",
				Name:      "summaries_total",
				Help:      "Total summarization requests by outcome",
			},
			[]string{"outcome"}, // outcome=ok/conversion_error/summarizer_error
		),
	}

	if trackedIdentities != nil {
		promauto.With(reg).NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "transformerbee_mcp",
				Name:      "rate_limit_identities",
				Help:      "Number of identities currently tracked by the rate limiter",
			},
			trackedIdentities,
		)
	}

	return m
}
