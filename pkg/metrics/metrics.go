// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vlog_gallery"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Time spent handling HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	MediaBytesServed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_bytes_served_total",
		Help:      "Bytes streamed from the media root.",
	})

	ThumbnailGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "thumbnail_generations_total",
		Help:      "Thumbnail extractions by result (ok, error, cached).",
	}, []string{"result"})

	DurationProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duration_probes_total",
		Help:      "Duration probes by result (ok, error, cached).",
	}, []string{"result"})

	CatalogFilesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_files_skipped_total",
		Help:      "Video files dropped from a listing because they could not be processed.",
	})
)
