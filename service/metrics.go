package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the render service's Prometheus metrics. Each instance
// owns its registry so that several servers can coexist in one process.
type Metrics struct {
	Renders        *prometheus.CounterVec
	RenderErrors   *prometheus.CounterVec
	FramesRendered prometheus.Counter
	RenderDuration prometheus.Histogram
	Requests       *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ltc_renders_total",
			Help: "Total number of completed renders",
		}, []string{"variant"}),
		RenderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ltc_render_errors_total",
			Help: "Total number of rejected or failed renders",
		}, []string{"reason"}),
		FramesRendered: f.NewCounter(prometheus.CounterOpts{
			Name: "ltc_frames_rendered_total",
			Help: "Total number of LTC frames encoded and modulated",
		}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ltc_render_duration_seconds",
			Help:    "Time spent rendering and encoding a request",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8), // 1ms to ~16s
		}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ltc_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		registry: reg,
	}
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
