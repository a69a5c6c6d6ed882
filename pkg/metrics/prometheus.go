package metrics

import (
	"EconDash/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsTotal   *prometheus.CounterVec
	cacheHits   prometheus.Counter
	rows        *prometheus.GaugeVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a Prometheus recorder registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "econdash_pipeline_runs_total",
				Help: "Pipeline runs by outcome",
			},
			[]string{"status", "reason"},
		),
		cacheHits: f.NewCounter(
			prometheus.CounterOpts{
				Name: "econdash_pipeline_cache_hits_total",
				Help: "Loads served from the result cache",
			},
		),
		rows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "econdash_pipeline_rows",
				Help: "Row count produced by the last run, per stage",
			},
			[]string{"stage"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "econdash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "econdash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun counts one finished pipeline run.
func (r *Recorder) RecordRun(status models.Status, reason models.FailureKind) {
	r.runsTotal.WithLabelValues(string(status), string(reason)).Inc()
}

// RecordCacheHit counts a load answered from cache.
func (r *Recorder) RecordCacheHit() {
	r.cacheHits.Inc()
}

// RecordRows sets the row gauge for a stage (merged, cleaned, yearly).
func (r *Recorder) RecordRows(stage string, n int) {
	r.rows.WithLabelValues(stage).Set(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
