// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MongoOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_operation_duration_seconds",
			Help:    "Duration of MongoDB operations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	MongoErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_errors_total",
			Help: "MongoDB operation errors.",
		},
		[]string{"operation", "collection"},
	)

	ScribeUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_field_updates_total",
			Help: "Fields filled from transcripts, by field.",
		},
		[]string{"field"},
	)

	ScribeAutoSavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_auto_saves_total",
		Help: "History entries auto-saved from live sessions.",
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
