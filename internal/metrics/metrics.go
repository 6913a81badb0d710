package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Key-value store metrics
var (
	KVQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_kv_queries_total",
			Help: "Total number of key-value store queries",
		},
		[]string{"operation", "status"},
	)

	KVQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_gallery_kv_query_duration_seconds",
			Help:    "Key-value store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	SnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_gallery_snapshot_bytes",
			Help: "Size in bytes of the last persisted collection snapshot",
		},
	)
)

// Ingest metrics
var (
	IngestBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_gallery_ingest_batches_total",
			Help: "Total number of ingested batches",
		},
	)

	IngestInputsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_ingest_inputs_total",
			Help: "Total number of intake inputs by outcome",
		},
		[]string{"kind", "outcome"}, // outcome: accepted, unsupported, unreadable
	)

	IngestProbeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_gallery_ingest_probe_failures_total",
			Help: "Total number of image dimension probes that fell back to 0x0",
		},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_gallery_ingest_duration_seconds",
			Help:    "Time spent normalizing a batch",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Delete metrics
var (
	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_deletes_total",
			Help: "Total number of delete requests by outcome",
		},
		[]string{"outcome"}, // removed, missing, error
	)
)

// Poller metrics
var (
	PollerChecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_gallery_poller_checks_total",
			Help: "Total number of snapshot change checks",
		},
	)

	PollerChangesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_gallery_poller_changes_detected_total",
			Help: "Total number of external snapshot changes applied",
		},
	)

	PollerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_gallery_poller_errors_total",
			Help: "Total number of failed snapshot reads during polling",
		},
	)

	PollerCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_gallery_poller_check_duration_seconds",
			Help:    "Duration of a single snapshot change check",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	PollerRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_gallery_poller_running",
			Help: "Whether the change poller is running (1 = running, 0 = stopped)",
		},
	)
)

// Collection metrics
var (
	CollectionSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_gallery_collection_records",
			Help: "Number of records in the in-memory collection",
		},
	)

	AlbumCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_gallery_collection_albums",
			Help: "Number of albums derived from the collection",
		},
	)

	LocatorsLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_gallery_locators_live",
			Help: "Number of addressable blobs currently held",
		},
	)

	LocatorBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_gallery_locator_bytes",
			Help: "Total bytes held by live locators",
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts after a stale handle",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_gallery_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors",
		},
		[]string{"operation"},
	)
)
