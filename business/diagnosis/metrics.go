package diagnosis

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess        = "success"
	outcomeInferenceError = "inference_error"
	outcomeBlendError     = "blend_error"
)

var (
	DiagnosisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermascan_diagnoses_total",
			Help: "Count of diagnoses by outcome.",
		},
		[]string{"outcome"},
	)

	TopClassTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermascan_top_class_total",
			Help: "Count of successful diagnoses by top-ranked class.",
		},
		[]string{"class"},
	)

	ClassifierLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dermascan_classifier_latency_seconds",
		Help:    "Latency of a single classifier forward pass.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(DiagnosisTotal, TopClassTotal, ClassifierLatency)
}
