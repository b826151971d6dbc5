// Package metrics exposes Prometheus instrumentation for the scrape pipeline.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/use-agent/gleaner/models"
)

const namespace = "gleaner"

// Metrics holds the pipeline collectors. It implements scraper.Observer.
type Metrics struct {
	registry *prometheus.Registry

	RecordsTotal  *prometheus.CounterVec
	LoadSeconds   *prometheus.HistogramVec
	ResponseBytes prometheus.Histogram
	WordsTotal    prometheus.Counter
	BatchesActive prometheus.Gauge
	ExportsTotal  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records produced, by content bucket and HTTP status class.",
		}, []string{"bucket", "status"}),
		LoadSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_seconds",
			Help:      "Fetch plus extract time per URL.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"bucket"}),
		ResponseBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_bytes",
			Help:      "Response body size of fetched URLs.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		WordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_total",
			Help:      "Words extracted from successful records.",
		}),
		BatchesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batches_active",
			Help:      "Asynchronous batch jobs currently running.",
		}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export files written, by format and result.",
		}, []string{"format", "result"}),
	}
}

// ObserveRecord records one finished scrape.
func (m *Metrics) ObserveRecord(rec *models.ScrapedRecord, bucket string) {
	m.RecordsTotal.WithLabelValues(bucket, statusClass(rec.StatusCode)).Inc()
	m.LoadSeconds.WithLabelValues(bucket).Observe(rec.LoadTimeSeconds)
	if rec.ResponseSize > 0 {
		m.ResponseBytes.Observe(float64(rec.ResponseSize))
	}
	if rec.Succeeded() {
		m.WordsTotal.Add(float64(rec.WordCount))
	}
}

// ObserveExport counts one export attempt.
func (m *Metrics) ObserveExport(format string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ExportsTotal.WithLabelValues(format, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// statusClass buckets an HTTP status as "2xx".."5xx"; 0 becomes "none".
func statusClass(code int) string {
	if code <= 0 {
		return "none"
	}
	return strconv.Itoa(code/100) + "xx"
}
