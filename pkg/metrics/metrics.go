// Package metrics holds the Prometheus collectors for catalog activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AssetsInserted counts files cataloged by insert.
	AssetsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assetcat_assets_inserted_total",
		Help: "Number of files cataloged",
	})

	// BytesInserted counts the bytes copied into the storage tree by insert.
	BytesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assetcat_bytes_inserted_total",
		Help: "Bytes copied into the catalog storage tree",
	})

	// AssetsUpdated counts row and sidecar updates by the resulting status.
	AssetsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetcat_assets_updated_total",
		Help: "Number of catalog rows updated",
	}, []string{"status"})

	// NameCollisions counts renames forced by an occupied destination name.
	NameCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assetcat_name_collisions_total",
		Help: "Number of placement name collisions resolved by renaming",
	})

	// ConsistencyErrors counts operations that left a row and its sidecar out of step.
	ConsistencyErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assetcat_consistency_errors_total",
		Help: "Number of operations that failed between the sidecar and row writes",
	})

	// HTTPRequests counts API requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetcat_http_requests_total",
		Help: "Number of HTTP requests served by the catalog API",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assetcat_http_request_duration_seconds",
		Help:    "Latency of HTTP requests served by the catalog API",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
