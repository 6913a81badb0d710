// Package metrics declares the Prometheus collectors exported by the gallery
// service.
//
// All collectors are registered with the default registry through promauto
// when the package is imported, so callers only increment or observe them:
//
//	metrics.IngestBatchesTotal.Inc()
//	metrics.CollectionSize.Set(float64(len(records)))
//
// # Metric Families
//
//   - media_gallery_http_*: request counts, durations and in-flight gauge
//   - media_gallery_kv_*: key-value store query counts and latency
//   - media_gallery_ingest_*: batches, accepted and skipped inputs, probe failures
//   - media_gallery_delete_*: delete outcomes
//   - media_gallery_poller_*: poll checks, detected changes, errors
//   - media_gallery_collection_*: current collection and album counts
//   - media_gallery_locators_live: addressable blobs currently held in memory
//   - media_gallery_filesystem_*: intake stat/open retry behavior
//
// InitializeMetrics pre-populates label combinations so every series is
// present from the first scrape.
package metrics
