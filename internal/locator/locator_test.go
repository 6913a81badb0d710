package locator

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"media-gallery/internal/gallery"
)

// held returns the total size of live blobs.
func held(r *Registry) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bytes
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestAcquireOpenRelease(t *testing.T) {
	r := NewRegistry()

	loc, err := r.Acquire(strings.NewReader("pixels"), "image/png")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if !strings.HasPrefix(string(loc), Scheme) {
		t.Errorf("locator %q missing %q prefix", loc, Scheme)
	}
	if r.Len() != 1 || held(r) != 6 {
		t.Errorf("Len() = %d, bytes = %d, want 1 and 6", r.Len(), held(r))
	}

	rd, ct, err := r.Open(loc)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rd)
	if string(data) != "pixels" || ct != "image/png" {
		t.Errorf("Open() = (%q, %q), want (%q, %q)", data, ct, "pixels", "image/png")
	}

	if !r.Release(loc) {
		t.Error("Release() = false for a live locator")
	}
	if r.Release(loc) {
		t.Error("second Release() = true, want false")
	}
	if _, _, err := r.Open(loc); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() after release error = %v, want ErrNotFound", err)
	}
	if r.Len() != 0 || held(r) != 0 {
		t.Errorf("after release Len() = %d, bytes = %d", r.Len(), held(r))
	}
}

func TestAcquireReadFailure(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Acquire(failingReader{}, "image/jpeg"); err == nil {
		t.Fatal("Acquire() expected error for failing reader")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after failed acquire, want 0", r.Len())
	}
}

func TestLocatorsAreUnique(t *testing.T) {
	r := NewRegistry()
	seen := make(map[gallery.Locator]bool)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loc, err := r.Acquire(strings.NewReader("x"), "image/gif")
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			mu.Lock()
			seen[loc] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != 50 || r.Len() != 50 {
		t.Errorf("unique locators = %d, Len() = %d, want 50", len(seen), r.Len())
	}
}

func TestReleaseAll(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		if _, err := r.Acquire(strings.NewReader("abc"), "video/mp4"); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if n := r.ReleaseAll(); n != 3 {
		t.Errorf("ReleaseAll() = %d, want 3", n)
	}
	if r.Len() != 0 || held(r) != 0 {
		t.Errorf("after ReleaseAll Len() = %d, bytes = %d", r.Len(), held(r))
	}
}

func TestParseID(t *testing.T) {
	r := NewRegistry()
	loc, _ := r.Acquire(strings.NewReader("x"), "image/png")

	id, ok := ParseID(loc)
	if !ok {
		t.Fatalf("ParseID(%q) ok = false", loc)
	}
	if FromID(id) != loc {
		t.Errorf("FromID(ParseID(loc)) = %q, want %q", FromID(id), loc)
	}

	for _, bad := range []gallery.Locator{"", "blob:", "blob:not-a-uuid", "http://example.com/x"} {
		if _, ok := ParseID(bad); ok {
			t.Errorf("ParseID(%q) ok = true, want false", bad)
		}
	}
}
