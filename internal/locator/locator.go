// Package locator issues addressable handles for intake bytes, the
// equivalent of browser object URLs. Handles stay valid until released.
package locator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"media-gallery/internal/gallery"
	"media-gallery/internal/metrics"
)

// Scheme prefixes every locator issued by a Registry.
const Scheme = "blob:"

// ErrNotFound is returned when a locator was never issued or was released.
var ErrNotFound = errors.New("locator: not found")

// Blob is the content addressed by a locator.
type Blob struct {
	ContentType string
	Data        []byte
}

// Registry holds blobs in memory. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	blobs map[gallery.Locator]Blob
	bytes int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{blobs: make(map[gallery.Locator]Blob)}
}

// Acquire reads r fully and returns a new locator for its bytes.
func (r *Registry) Acquire(src io.Reader, contentType string) (gallery.Locator, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	loc := gallery.Locator(Scheme + uuid.NewString())

	r.mu.Lock()
	r.blobs[loc] = Blob{ContentType: contentType, Data: data}
	r.bytes += int64(len(data))
	r.updateGauges()
	r.mu.Unlock()

	return loc, nil
}

// Open returns a reader over the blob behind loc.
func (r *Registry) Open(loc gallery.Locator) (*bytes.Reader, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blob, ok := r.blobs[loc]
	if !ok {
		return nil, "", ErrNotFound
	}
	return bytes.NewReader(blob.Data), blob.ContentType, nil
}

// Release drops the blob behind loc. Releasing an unknown locator is a no-op;
// it reports whether anything was released.
func (r *Registry) Release(loc gallery.Locator) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	blob, ok := r.blobs[loc]
	if !ok {
		return false
	}
	delete(r.blobs, loc)
	r.bytes -= int64(len(blob.Data))
	r.updateGauges()
	return true
}

// ReleaseAll drops every blob and returns how many were held.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.blobs)
	r.blobs = make(map[gallery.Locator]Blob)
	r.bytes = 0
	r.updateGauges()
	return n
}

// Len returns the number of live locators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// updateGauges must be called with mu held.
func (r *Registry) updateGauges() {
	metrics.LocatorsLive.Set(float64(len(r.blobs)))
	metrics.LocatorBytes.Set(float64(r.bytes))
}

// ParseID extracts the identifier part of a locator so it can be used in a
// URL path. ok is false for locators this package did not issue.
func ParseID(loc gallery.Locator) (id string, ok bool) {
	s := string(loc)
	if !strings.HasPrefix(s, Scheme) {
		return "", false
	}
	id = strings.TrimPrefix(s, Scheme)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// FromID is the inverse of ParseID.
func FromID(id string) gallery.Locator {
	return gallery.Locator(Scheme + id)
}
