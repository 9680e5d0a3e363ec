package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegen_generations_total",
			Help: "Total number of course generations by output kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursegen_generation_duration_seconds",
			Help:    "End-to-end duration of a course generation.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"kind"},
	)

	NormalizeStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegen_normalize_stage_total",
			Help: "Model responses by the normalizer stage that produced the content.",
		},
		[]string{"stage"},
	)

	ImageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegen_image_requests_total",
			Help: "Resolved course images by asset category and outcome (generated or placeholder).",
		},
		[]string{"category", "outcome"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegen_provider_requests_total",
			Help: "Calls to external AI providers by provider and status.",
		},
		[]string{"provider", "status"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursegen_provider_request_duration_seconds",
			Help:    "Latency of external AI provider calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegen_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursegen_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var Jobs = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "coursegen_jobs_total",
		Help: "Generation jobs handled by the worker pool, by outcome.",
	},
	[]string{"outcome"},
)

var WSConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "coursegen_ws_connections",
		Help: "Open websocket connections.",
	},
)
