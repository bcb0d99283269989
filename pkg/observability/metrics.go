// Package observability provides Prometheus metrics and weft middleware
// for monitoring applications built on the framework.
package observability

import "github.com/prometheus/client_golang/prometheus"

// HTTPBuckets defines histogram buckets suited for interactive HTTP
// handler latencies, ranging from 1ms to 10s.
var HTTPBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all dispatched requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weft_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records pipeline duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weft_request_duration_seconds",
			Help:    "Request duration",
			Buckets: HTTPBuckets,
		},
		[]string{"method"},
	)

	// RequestsInFlight tracks the number of requests currently inside
	// the middleware pipeline.
	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weft_requests_in_flight",
			Help: "Requests currently being processed",
		},
	)

	// PipelineErrorsTotal counts pipeline failures by error kind:
	// "http" for HTTPError rejections, "internal" for everything else.
	PipelineErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weft_pipeline_errors_total",
			Help: "Pipeline failures",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RequestsInFlight,
		PipelineErrorsTotal,
	)
}
