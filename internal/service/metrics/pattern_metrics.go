package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	PatternLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "momentum",
			Subsystem: "patterns",
			Name:      "latency_seconds",
			Help:      "Latency of pattern endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	PatternErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "momentum",
			Subsystem: "patterns",
			Name:      "errors_total",
			Help:      "Errors by pattern endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(PatternLatency, PatternErrors)
	})
}
