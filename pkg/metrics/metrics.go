package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of every HTTP request, labelled by route template
	HTTPRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dermascan_http_request_latency_seconds",
		Help:    "Latency of HTTP requests by method, route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// Total number of HTTP requests served
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dermascan_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
)

func Init() {
	prometheus.MustRegister(
		HTTPRequestLatency,
		HTTPRequests,
	)
}
