package metrics

import "github.com/prometheus/client_golang/prometheus"

// Estimation Prometheus metrics.
var (
	EstimationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biascal",
			Name:      "estimations_total",
			Help:      "Total number of bias estimation runs",
		},
		[]string{"method", "status"},
	)

	EstimationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "biascal",
			Name:      "estimation_duration_seconds",
			Help:      "Bias estimation duration in seconds, bootstrap included",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method"},
	)

	EstimationSampleSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "biascal",
			Name:      "estimation_sample_size",
			Help:      "Number of samples per estimation run",
			Buckets:   []float64{2, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"method"},
	)
)

var estMetricsRegistered bool

// RegisterEstimationMetrics registers estimation metrics. Must be called once from main.
func RegisterEstimationMetrics() {
	if estMetricsRegistered {
		return
	}
	prometheus.MustRegister(EstimationsTotal)
	prometheus.MustRegister(EstimationDuration)
	prometheus.MustRegister(EstimationSampleSize)
	estMetricsRegistered = true
}
