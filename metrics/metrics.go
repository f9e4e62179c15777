// Package metrics collects run statistics in a Prometheus registry and
// exports them in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"avito-parser/models"
)

// Recorder holds the pipeline's collectors in a private registry.
type Recorder struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	titles          *prometheus.CounterVec
	failures        *prometheus.CounterVec
	retries         prometheus.Counter
	adsParsed       prometheus.Gauge
	coverage        *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "classifier_request_duration_seconds",
				Help:    "Duration of classification API requests by outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		titles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrichment_titles_total",
				Help: "Titles handled by the enricher by result",
			},
			[]string{"result"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "enrichment_errors_total",
				Help: "Failed classification attempts by kind",
			},
			[]string{"kind"},
		),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "enrichment_retries_total",
			Help: "Retried classification attempts",
		}),
		adsParsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "extractor_ads_parsed",
			Help: "Ads extracted from the saved pages in the last run",
		}),
		coverage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_coverage_combinations",
				Help: "Distinct catalog taxonomy combinations by state",
			},
			[]string{"state"},
		),
	}

	r.registry.MustRegister(r.requestDuration, r.titles, r.failures, r.retries, r.adsParsed, r.coverage)
	return r
}

// Registry exposes the underlying registry, e.g. for gathering in tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRequest records one classification API request.
func (r *Recorder) ObserveRequest(outcome string, d time.Duration) {
	r.requestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordAdsParsed stores the extractor's output size.
func (r *Recorder) RecordAdsParsed(n int) {
	r.adsParsed.Set(float64(n))
}

// RecordEnrichment adds the counters of one enrichment run.
func (r *Recorder) RecordEnrichment(s *models.EnrichmentStats) {
	r.titles.WithLabelValues("sent").Add(float64(s.TotalSent))
	r.titles.WithLabelValues("classified").Add(float64(s.TotalSuccess))
	r.titles.WithLabelValues("failed").Add(float64(s.TotalFailed))
	r.failures.WithLabelValues("rate_limit").Add(float64(s.RateLimitHits))
	r.failures.WithLabelValues("timeout").Add(float64(s.TimeoutErrors))
	r.failures.WithLabelValues("other").Add(float64(s.OtherErrors))
	r.retries.Add(float64(s.RetryCount))
}

// RecordCoverage stores the latest coverage report.
func (r *Recorder) RecordCoverage(c *models.CoverageReport) {
	r.coverage.WithLabelValues("total").Set(float64(c.TotalCombinations))
	r.coverage.WithLabelValues("covered").Set(float64(c.CoveredCombinations))
	r.coverage.WithLabelValues("missing").Set(float64(c.MissingCombinations))
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
