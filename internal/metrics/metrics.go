package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeledit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reeledit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reeledit_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Pipeline metrics
var (
	VideosUploadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reeledit_videos_uploaded_total",
			Help: "Total number of videos accepted by the upload endpoint",
		},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeledit_segmentation_jobs_total",
			Help: "Total number of segmentation jobs by terminal outcome",
		},
		[]string{"outcome"}, // "completed", "failed"
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reeledit_segmentation_jobs_active",
			Help: "Number of segmentation jobs currently running",
		},
	)

	SegmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeledit_segments_total",
			Help: "Total number of segment transcode invocations by result",
		},
		[]string{"result"}, // "ok", "error"
	)

	SegmentEncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reeledit_segment_encode_duration_seconds",
			Help:    "Wall-clock duration of one segment transcode invocation",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)
)

// Streaming metrics
var (
	BytesStreamedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reeledit_bytes_streamed_total",
			Help: "Total bytes written by the range-streaming responder",
		},
		[]string{"kind"}, // "video", "segment"
	)
)
