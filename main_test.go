package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"media-gallery/internal/handlers"
	"media-gallery/internal/kv"
	"media-gallery/internal/locator"
	"media-gallery/internal/normalizer"
	"media-gallery/internal/poller"
	"media-gallery/internal/session"
	"media-gallery/internal/startup"
	"media-gallery/internal/store"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	db, err := kv.Open(context.Background(), filepath.Join(t.TempDir(), kv.DefaultFileName))
	if err != nil {
		t.Fatalf("kv.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	registry := locator.NewRegistry()
	collection := store.New(db, registry)
	poll := poller.New(collection, poller.CountDetector{}, poller.DefaultInterval)
	sess := session.New(db, collection, normalizer.New(registry, normalizer.Options{}), poll, session.Options{ScanDelay: 0})
	t.Cleanup(sess.Close)

	return setupRouter(handlers.New(sess, registry, db, &startup.Config{}))
}

func TestSetupRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/livez", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/permission", http.StatusOK},
		{http.MethodGet, "/api/media", http.StatusForbidden},
		{http.MethodDelete, "/api/media/abc", http.StatusForbidden},
		{http.MethodGet, "/api/blob/not-a-uuid", http.StatusBadRequest},
		{http.MethodPost, "/api/scan", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestGrantThenListThroughRouter(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/permission/grant", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("grant status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/media?q=x", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("list status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestMetricsServer(t *testing.T) {
	srv := newMetricsServer("0", handlers.New(nil, locator.NewRegistry(), nil, &startup.Config{}))
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("/metrics status = %d", rr.Code)
	}
}

func TestCloseGalleryReleasesOrphanedBlobs(t *testing.T) {
	ctx := context.Background()
	memory := kv.NewMemory(nil)
	registry := locator.NewRegistry()
	collection := store.New(memory, registry)
	sess := session.New(memory, collection, normalizer.New(registry, normalizer.Options{}), poller.New(collection, nil, 0), session.Options{ScanDelay: 0})
	if err := sess.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := sess.Grant(ctx); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	if _, err := sess.Ingest(ctx, []normalizer.Input{{
		ContentType:  "video/mp4",
		Name:         "clip.mp4",
		LastModified: 1,
		Size:         4,
		Open:         func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("mp4!")), nil },
	}}); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if _, err := registry.Acquire(strings.NewReader("orphan"), "image/png"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if n := closeGallery(sess, registry); n != 1 {
		t.Errorf("closeGallery() = %d, want 1 orphaned blob", n)
	}
	if registry.Len() != 0 {
		t.Errorf("registry.Len() = %d after close, want 0", registry.Len())
	}
}
