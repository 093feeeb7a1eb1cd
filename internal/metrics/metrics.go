package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GallerySaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pfg_gallery_saves_total",
			Help: "Gallery saves by kind (full, settings, images, chunk)",
		},
		[]string{"kind"},
	)

	SettingCoercions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pfg_setting_coercions_total",
			Help: "Setting values replaced by schema defaults",
		},
		[]string{"key"},
	)

	ChunksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pfg_chunks_received_total",
			Help: "Image chunks received by result (accumulated, committed, expired)",
		},
		[]string{"result"},
	)

	GalleriesMigrated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pfg_galleries_migrated_total",
			Help: "Galleries migrated from the legacy format",
		},
	)
)
