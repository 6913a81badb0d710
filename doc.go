// Package main provides the entry point for the media gallery server.
//
// The server mocks a phone's media library. Files are uploaded (or scanned
// from MEDIA_DIR) into an in-memory collection that is persisted as a
// single JSON snapshot in SQLite, grouped into albums, and filtered by
// search text. A background poller re-reads the snapshot so edits made by
// galleryctl or another process show up without a restart.
//
// # Application Lifecycle
//
//  1. Configuration Loading: optional TOML file (GALLERY_CONFIG), then
//     environment variables
//  2. Database Initialization: opens the SQLite key-value store in WAL mode
//  3. Session Open: reads the persisted permission flag; when access was
//     granted earlier the snapshot is restored and polling starts
//  4. HTTP Server Setup: routes, metrics and logging middleware
//  5. Graceful Shutdown: on SIGINT/SIGTERM the servers drain, the poller
//     stops and every blob is released
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080): the JSON API under /api plus health
//     probes
//  2. Metrics Server (default port 9090, optional): Prometheus metrics at
//     /metrics
//
// # Environment Variables
//
//	PORT               HTTP port (default 8080)
//	METRICS_PORT       metrics port (default 9090)
//	METRICS_ENABLED    serve /metrics (default true)
//	DATABASE_DIR       directory holding gallery.db (default /database)
//	MEDIA_DIR          directory scanned by POST /api/scan (optional)
//	POLL_INTERVAL      snapshot check interval (default 2s)
//	POLL_DIFF          change detector: count or content (default count)
//	SCAN_DELAY         simulated library scan on grant (default 800ms)
//	PROBE_WORKERS      concurrent dimension probes
//	PROBE_ORIENTATION  report EXIF-rotated dimensions (default false)
//	LOG_LEVEL          debug, info, warn or error
//	LOG_HEALTH_CHECKS  log probe requests (default true)
//	LOG_BLOBS          log blob requests (default false)
package main
