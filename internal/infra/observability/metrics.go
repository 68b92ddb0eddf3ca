package observability

import (
	"time"

	"github.com/madecentro/cartera-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the cartera gateway.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	upstreamRetries prometheus.Counter
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	degradedTotal   prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cartera_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cartera_upstream_errors_total",
				Help: "Total errors from the upstream ERP, by kind.",
			},
			[]string{"kind"},
		),
		upstreamRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cartera_upstream_retries_total",
				Help: "Total timeout-triggered retries against the upstream ERP.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cartera_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cartera_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cartera_requests_total",
				Help: "Total cartera requests processed.",
			},
			[]string{"status"},
		),
		degradedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cartera_degraded_responses_total",
				Help: "Total responses degraded to an empty statement.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter for a failure kind
// ("timeout", "transport", "circuit_open").
func (m *Metrics) IncrUpstreamError(kind string) {
	m.upstreamErrors.WithLabelValues(kind).Inc()
}

// IncrUpstreamRetry increments the retry counter.
func (m *Metrics) IncrUpstreamRetry() {
	m.upstreamRetries.Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrRequest increments the request counter with a status label
// ("success", "degraded", "error").
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrDegraded increments the degraded-response counter.
func (m *Metrics) IncrDegraded() {
	m.degradedTotal.Inc()
}

// GetSnapshot returns a snapshot of pipeline metrics suitable for the
// GET /v1/metrics/cartera endpoint.
func (m *Metrics) GetSnapshot() *domain.ServiceMetrics {
	success := getCounterValue(m.requestsTotal.WithLabelValues("success"))
	degraded := getCounterValue(m.requestsTotal.WithLabelValues("degraded"))
	errored := getCounterValue(m.requestsTotal.WithLabelValues("error"))
	total := success + degraded + errored

	upstreamErrs := getCounterValue(m.upstreamErrors.WithLabelValues("timeout")) +
		getCounterValue(m.upstreamErrors.WithLabelValues("transport")) +
		getCounterValue(m.upstreamErrors.WithLabelValues("circuit_open"))

	cacheHits := getCounterValue(m.cacheHits.WithLabelValues("cartera"))
	cacheMisses := getCounterValue(m.cacheMisses.WithLabelValues("cartera"))

	errorRate := float64(0)
	if total > 0 {
		errorRate = errored / total
	}
	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.ServiceMetrics{
		TotalRequests:   int64(total),
		ErrorRate:       errorRate,
		UpstreamErrors:  int64(upstreamErrs),
		UpstreamRetries: int64(getCounterValue(m.upstreamRetries)),
		CacheHitRate:    cacheHitRate,
		Period:          "all_time",
	}
}

// getCounterValue extracts the current float64 value from a counter.
func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
