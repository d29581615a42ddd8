package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdpage_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mdpage_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mdpage_active_streams",
			Help: "Number of answers currently being streamed",
		},
	)

	StreamedFragments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mdpage_streamed_fragments_total",
			Help: "Total number of answer fragments sent to clients",
		},
	)

	StreamResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdpage_streams_total",
			Help: "Total number of answer streams by result",
		},
		[]string{"source", "result"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdpage_exports_total",
			Help: "Total number of document exports by result",
		},
		[]string{"result"},
	)

	ExportPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mdpage_export_pages",
			Help:    "Pages per exported document",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
