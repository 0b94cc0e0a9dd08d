// Package obs holds the service's Prometheus metrics.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the document pipeline instruments. A nil *Metrics is
// safe to use; every method is a no-op on nil so tests and tools can
// run without a registry.
type Metrics struct {
	uploadsTotal   *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	downloadsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigedoc_document_uploads_total",
				Help: "Document upload pipeline runs by outcome.",
			},
			[]string{"outcome"},
		),
		uploadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sigedoc_document_upload_duration_seconds",
				Help:    "End-to-end upload pipeline latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		downloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigedoc_document_downloads_total",
				Help: "Document downloads by outcome.",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.uploadsTotal, m.uploadDuration, m.downloadsTotal)
	return m
}

// ObserveUpload records one pipeline run. The outcome is "ok" or the
// pipeline error kind.
func (m *Metrics) ObserveUpload(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(outcome).Inc()
	m.uploadDuration.Observe(seconds)
}

// ObserveDownload records one download attempt.
func (m *Metrics) ObserveDownload(outcome string) {
	if m == nil {
		return
	}
	m.downloadsTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the default Prometheus handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
