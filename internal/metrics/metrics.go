// Package metrics exposes mosaic's Prometheus instrumentation. All metrics
// share the "mosaic" namespace and register on the default registry;
// Handler serves them for the /metrics endpoint.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mosaic",
		Subsystem: "query",
		Name:      "total",
		Help:      "Query evaluations by status (ok, invalid)",
	}, []string{"status"})

	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mosaic",
		Subsystem: "query",
		Name:      "duration_seconds",
		Help:      "Query evaluation latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	mutationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mosaic",
		Subsystem: "persist",
		Name:      "mutations_total",
		Help:      "Label mutations accepted into the pipeline",
	})

	flushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mosaic",
		Subsystem: "persist",
		Name:      "flush_total",
		Help:      "Flush passes by status (ok, error)",
	}, []string{"status"})

	flushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mosaic",
		Subsystem: "persist",
		Name:      "flush_duration_seconds",
		Help:      "Flush pass latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	dirtyItems = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mosaic",
		Subsystem: "persist",
		Name:      "dirty_items",
		Help:      "Items modified since the last completed flush",
	})

	libraryItems = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mosaic",
		Subsystem: "library",
		Name:      "items",
		Help:      "Registered items",
	})

	libraryLabels = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mosaic",
		Subsystem: "library",
		Name:      "labels",
		Help:      "Registered labels",
	})

	thumbnailTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mosaic",
		Subsystem: "thumbs",
		Name:      "generated_total",
		Help:      "Thumbnail generations by status (ok, error)",
	}, []string{"status"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mosaic",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mosaic",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// ObserveQuery records one query evaluation.
func ObserveQuery(status string, seconds float64) {
	queryTotal.WithLabelValues(status).Inc()
	queryDuration.Observe(seconds)
}

// RecordMutation counts one mutation accepted into the pipeline.
func RecordMutation() {
	mutationsTotal.Inc()
}

// ObserveFlush records one flush pass.
func ObserveFlush(status string, seconds float64) {
	flushTotal.WithLabelValues(status).Inc()
	flushDuration.Observe(seconds)
}

// SetDirtyItems tracks the persister's dirty-set size.
func SetDirtyItems(n int) {
	dirtyItems.Set(float64(n))
}

// SetLibrarySize tracks the registered item and label counts.
func SetLibrarySize(items, labelCount int) {
	libraryItems.Set(float64(items))
	libraryLabels.Set(float64(labelCount))
}

// RecordThumbnail counts one thumbnail generation attempt.
func RecordThumbnail(status string) {
	thumbnailTotal.WithLabelValues(status).Inc()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(route string, code int, seconds float64) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
