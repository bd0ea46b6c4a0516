// Package metrics declares the Prometheus series exported by the server and
// the thumbnail worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_http_requests_total",
			Help: "HTTP requests served, by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fm_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ThumbnailJobsEnqueued counts publish attempts by result (ok, error).
	ThumbnailJobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_thumbnail_jobs_enqueued_total",
			Help: "Thumbnail jobs published by the API server.",
		},
		[]string{"result"},
	)

	// ThumbnailJobsProcessed counts settled jobs by status (completed, failed).
	ThumbnailJobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fm_thumbnail_jobs_processed_total",
			Help: "Thumbnail jobs settled by the worker.",
		},
		[]string{"status"},
	)

	ThumbnailJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fm_thumbnail_job_duration_seconds",
			Help:    "Time spent generating the thumbnails of one image.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)
