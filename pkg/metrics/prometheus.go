package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	filingsIngested *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	signals         *prometheus.CounterVec
	signalScore     *prometheus.GaugeVec
	escalations     *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		filingsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sedipull_filings_ingested_total",
				Help: "Total number of filing records accepted by the pipeline",
			},
			[]string{"symbol"},
		),
		dropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sedipull_records_dropped_total",
				Help: "Records rejected before scoring, by reason",
			},
			[]string{"reason"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sedipull_signals_total",
				Help: "Signals emitted by the scoring pipeline",
			},
			[]string{"symbol"},
		),
		signalScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sedipull_signal_score",
				Help: "Last raw score emitted for a symbol",
			},
			[]string{"symbol"},
		),
		escalations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sedipull_escalations_total",
				Help: "Securities escalated to deep analysis",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sedipull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sedipull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFilingIngested counts one accepted filing record.
func (r *Recorder) RecordFilingIngested(symbol string) {
	r.filingsIngested.WithLabelValues(symbol).Inc()
}

// RecordDropped counts a record rejected before scoring.
func (r *Recorder) RecordDropped(reason string) {
	r.dropped.WithLabelValues(reason).Inc()
}

// RecordSignal counts an emitted signal and tracks its raw score.
func (r *Recorder) RecordSignal(symbol string, score int) {
	r.signals.WithLabelValues(symbol).Inc()
	r.signalScore.WithLabelValues(symbol).Set(float64(score))
}

// RecordEscalation counts a security crossing the deep-analysis gate.
func (r *Recorder) RecordEscalation(symbol string) {
	r.escalations.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
