package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PortalMetrics holds all Prometheus metrics for the portal service.
type PortalMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	WritesTotal     *prometheus.CounterVec
	RefreshTotal    *prometheus.CounterVec
	SnapshotDealers prometheus.Gauge
	MirrorFallbacks prometheus.Counter
	RateLimited     prometheus.Counter
}

// NewPortalMetrics initializes the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	f := promauto.With(reg)
	return &PortalMetrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealer_portal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dealer_portal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		WritesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealer_portal",
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Total number of store writes by outcome.",
		}, []string{"outcome"}), // outcome: ok, warning, rolled_back
		RefreshTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dealer_portal",
			Subsystem: "store",
			Name:      "refresh_total",
			Help:      "Total number of snapshot refreshes by result.",
		}, []string{"result"}),
		SnapshotDealers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "dealer_portal",
			Subsystem: "store",
			Name:      "snapshot_dealers",
			Help:      "Number of dealers in the published snapshot.",
		}),
		MirrorFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dealer_portal",
			Subsystem: "store",
			Name:      "mirror_fallbacks_total",
			Help:      "Total number of times the snapshot was served from the Redis mirror.",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dealer_portal",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}),
	}
}
