package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal    prometheus.Counter
	universeSize  prometheus.Gauge
	gappersFound  prometheus.Gauge
	patternsTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "momentum_scans_total",
				Help: "Total number of gap scans executed",
			},
		),
		universeSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "momentum_scan_universe_size",
				Help: "Number of instruments in the last scanned universe",
			},
		),
		gappersFound: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "momentum_scan_gappers_found",
				Help: "Number of gappers produced by the last scan",
			},
		),
		patternsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentum_pattern_detections_total",
				Help: "Detector runs by pattern, ticker and trigger outcome",
			},
			[]string{"pattern", "ticker", "triggered"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "momentum_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "momentum_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScan records one completed gap scan.
func (r *Recorder) RecordScan(universe, gappers int) {
	r.scansTotal.Inc()
	r.universeSize.Set(float64(universe))
	r.gappersFound.Set(float64(gappers))
}

// RecordPattern records a detector run and its outcome.
func (r *Recorder) RecordPattern(pattern, ticker string, triggered bool) {
	r.patternsTotal.WithLabelValues(pattern, ticker, strconv.FormatBool(triggered)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
