// Package metrics provides Prometheus metrics for the document endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests.
	// Labels: method, status
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bucket",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method and status code",
		},
		[]string{"method", "status"},
	)

	// RequestDuration tracks request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bucket",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// DocumentItems is the item count of the last stored document.
	DocumentItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bucket",
			Subsystem: "document",
			Name:      "items",
			Help:      "Number of items in the last stored document",
		},
	)

	// DocumentBytes is the size of the last stored document.
	DocumentBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bucket",
			Subsystem: "document",
			Name:      "size_bytes",
			Help:      "Size in bytes of the last stored document",
		},
	)

	// DocumentWrites counts document replacements.
	// Labels: result (success, invalid, error)
	DocumentWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bucket",
			Subsystem: "document",
			Name:      "writes_total",
			Help:      "Total document replacements by result",
		},
		[]string{"result"},
	)

	// BackupsTotal counts snapshot runs.
	// Labels: result (success, skipped, error)
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bucket",
			Subsystem: "document",
			Name:      "backups_total",
			Help:      "Total document backup runs by result",
		},
		[]string{"result"},
	)
)

// ObserveStoredDocument records the shape of a document that was just written.
func ObserveStoredDocument(items, size int) {
	DocumentItems.Set(float64(items))
	DocumentBytes.Set(float64(size))
}
