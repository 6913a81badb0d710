package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"media-gallery/internal/filesystem"
	"media-gallery/internal/handlers"
	"media-gallery/internal/kv"
	"media-gallery/internal/locator"
	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
	"media-gallery/internal/middleware"
	"media-gallery/internal/normalizer"
	"media-gallery/internal/poller"
	"media-gallery/internal/session"
	"media-gallery/internal/startup"
	"media-gallery/internal/store"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	metrics.InitializeMetrics()

	// Initialize database
	ctx := context.Background()
	dbStart := time.Now()
	db, err := kv.Open(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("failed to close database: %v", err)
		}
	}()
	startup.LogDatabaseInit(db.Path(), time.Since(dbStart))

	// Initialize collection, poller and session
	registry := locator.NewRegistry()
	collection := store.New(db, registry)
	norm := normalizer.New(registry, normalizer.Options{
		Prober: normalizer.ProberFor(config.ProbeOrientation),
	})

	detector, err := poller.DetectorFor(config.PollDiff)
	if err != nil {
		startup.LogFatal("Invalid poll detector: %v", err)
	}
	startup.LogPollerInit(config.PollInterval, config.PollDiff)
	poll := poller.New(collection, detector, config.PollInterval)

	sessionStart := time.Now()
	sess := session.New(db, collection, norm, poll, session.Options{ScanDelay: config.ScanDelay})
	if err := sess.Open(ctx); err != nil {
		startup.LogFatal("Failed to open gallery session: %v", err)
	}
	startup.LogSessionInit(string(sess.Status()), collection.Len(), time.Since(sessionStart))

	// Initialize handlers
	h := handlers.New(sess, registry, db, config)

	// Setup router
	router := setupRouter(h)
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggingConfig.LogBlobs = config.LogBlobs
	handler := middleware.Logger(loggingConfig)(router)

	// Create server
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // large folder uploads
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, sess, registry)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Permission
	api.HandleFunc("/permission", h.GetPermission).Methods("GET")
	api.HandleFunc("/permission/grant", h.GrantPermission).Methods("POST")
	api.HandleFunc("/permission/deny", h.DenyPermission).Methods("POST")
	api.HandleFunc("/permission/retry", h.RetryPermission).Methods("POST")

	// Media
	api.HandleFunc("/media", h.ListMedia).Methods("GET")
	api.HandleFunc("/media", h.UploadMedia).Methods("POST")
	api.HandleFunc("/media/{id}", h.DeleteMedia).Methods("DELETE")
	api.HandleFunc("/blob/{id}", h.GetBlob).Methods("GET", "HEAD")
	api.HandleFunc("/scan", h.TriggerScan).Methods("POST")

	// Albums, search and selection
	api.HandleFunc("/albums", h.ListAlbums).Methods("GET")
	api.HandleFunc("/albums/{name}/open", h.OpenAlbum).Methods("POST")
	api.HandleFunc("/query", h.GetQuery).Methods("GET")
	api.HandleFunc("/query", h.SetQuery).Methods("PUT")
	api.HandleFunc("/selection", h.GetSelection).Methods("GET")
	api.HandleFunc("/selection", h.SetSelection).Methods("PUT")
	api.HandleFunc("/selection", h.ClearSelection).Methods("DELETE")

	return r
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	r := mux.NewRouter()
	r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	r.HandleFunc("/health", h.LivenessCheck).Methods("GET")

	return &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, sess *session.Session, registry *locator.Registry) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Closing gallery session")
	closeGallery(sess, registry)
	startup.LogShutdownStepComplete("Poller stopped and blobs released")

	startup.LogShutdownComplete()
}

// closeGallery stops the session and drops any blobs no record referenced,
// such as uploads abandoned mid-ingest. It returns how many were dropped.
func closeGallery(sess *session.Session, registry *locator.Registry) int {
	sess.Close()
	n := registry.ReleaseAll()
	if n > 0 {
		logging.Info("Released %d orphaned blobs", n)
	}
	return n
}
