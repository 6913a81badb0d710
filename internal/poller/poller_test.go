package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/kv"
	"media-gallery/internal/locator"
	"media-gallery/internal/store"
)

func rec(id string) gallery.MediaRecord {
	return gallery.MediaRecord{ID: id, Locator: gallery.Locator("blob:" + id), Kind: gallery.KindImage, AlbumName: "Camera"}
}

func writeSnapshot(t *testing.T, s kv.Store, records ...gallery.MediaRecord) {
	t.Helper()
	data, err := store.Encode(records)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := s.Set(context.Background(), kv.SnapshotKey, data); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

func running(p *Poller) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// gatedKV blocks the first snapshot read until release is closed.
type gatedKV struct {
	*kv.Memory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedKV) Get(ctx context.Context, key string) (string, error) {
	if key == kv.SnapshotKey {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.Memory.Get(ctx, key)
}

func TestDetectors(t *testing.T) {
	a, b, c := rec("a"), rec("b"), rec("c")

	tests := []struct {
		name      string
		current   []gallery.MediaRecord
		persisted []gallery.MediaRecord
		count     bool
		content   bool
	}{
		{"identical", []gallery.MediaRecord{a, b}, []gallery.MediaRecord{a, b}, false, false},
		{"grew", []gallery.MediaRecord{a}, []gallery.MediaRecord{a, b}, true, true},
		{"shrank", []gallery.MediaRecord{a, b}, []gallery.MediaRecord{b}, true, true},
		{"same length different record", []gallery.MediaRecord{a, b}, []gallery.MediaRecord{a, c}, false, true},
		{"reordered", []gallery.MediaRecord{a, b}, []gallery.MediaRecord{b, a}, false, true},
		{"both empty", nil, []gallery.MediaRecord{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (CountDetector{}).Changed(tt.current, tt.persisted); got != tt.count {
				t.Errorf("CountDetector.Changed() = %v, want %v", got, tt.count)
			}
			if got := (ContentDetector{}).Changed(tt.current, tt.persisted); got != tt.content {
				t.Errorf("ContentDetector.Changed() = %v, want %v", got, tt.content)
			}
		})
	}
}

func TestDetectorFor(t *testing.T) {
	tests := []struct {
		name    string
		want    ChangeDetector
		wantErr bool
	}{
		{"", CountDetector{}, false},
		{"count", CountDetector{}, false},
		{" Content ", ContentDetector{}, false},
		{"hash", nil, true},
	}
	for _, tt := range tests {
		got, err := DetectorFor(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectorFor(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectorFor(%q) = %T, want %T", tt.name, got, tt.want)
		}
	}
}

func TestPollOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("absent snapshot", func(t *testing.T) {
		s := store.New(kv.NewMemory(nil), nil)
		s.Replace([]gallery.MediaRecord{rec("a")})

		changed, err := New(s, nil, time.Second).PollOnce(ctx)
		if err != nil || changed {
			t.Fatalf("PollOnce() = %v, %v; want false, nil", changed, err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})

	t.Run("count change adopts snapshot", func(t *testing.T) {
		mem := kv.NewMemory(nil)
		s := store.New(mem, nil)
		writeSnapshot(t, mem, rec("x"), rec("y"))

		changed, err := New(s, nil, time.Second).PollOnce(ctx)
		if err != nil || !changed {
			t.Fatalf("PollOnce() = %v, %v; want true, nil", changed, err)
		}
		if got := s.Current(); len(got) != 2 || got[0].ID != "x" {
			t.Errorf("Current() = %+v", got)
		}
	})

	t.Run("count detector misses same-length edit", func(t *testing.T) {
		mem := kv.NewMemory(nil)
		s := store.New(mem, nil)
		s.Replace([]gallery.MediaRecord{rec("a")})
		writeSnapshot(t, mem, rec("b"))

		changed, err := New(s, CountDetector{}, time.Second).PollOnce(ctx)
		if err != nil || changed {
			t.Fatalf("PollOnce() = %v, %v; want false, nil", changed, err)
		}
		if s.Current()[0].ID != "a" {
			t.Error("count detector replaced collection")
		}

		changed, err = New(s, ContentDetector{}, time.Second).PollOnce(ctx)
		if err != nil || !changed {
			t.Fatalf("content PollOnce() = %v, %v; want true, nil", changed, err)
		}
		if s.Current()[0].ID != "b" {
			t.Error("content detector did not replace collection")
		}
	})

	t.Run("malformed snapshot leaves collection", func(t *testing.T) {
		mem := kv.NewMemory(map[string]string{kv.SnapshotKey: "{oops"})
		s := store.New(mem, nil)
		s.Replace([]gallery.MediaRecord{rec("a")})

		changed, err := New(s, nil, time.Second).PollOnce(ctx)
		if !errors.Is(err, store.ErrMalformedSnapshot) {
			t.Fatalf("PollOnce() error = %v, want ErrMalformedSnapshot", err)
		}
		if changed || s.Len() != 1 {
			t.Errorf("malformed snapshot changed collection: changed=%v len=%d", changed, s.Len())
		}
	})
}

func TestStartPicksUpExternalChange(t *testing.T) {
	mem := kv.NewMemory(nil)
	s := store.New(mem, nil)

	replaced := make(chan int, 4)
	s.Subscribe(func(records []gallery.MediaRecord) { replaced <- len(records) })

	p := New(s, nil, 10*time.Millisecond)
	p.Start(context.Background())
	defer p.Stop()

	if !running(p) {
		t.Fatal("poller not running after Start")
	}

	writeSnapshot(t, mem, rec("a"), rec("b"), rec("c"))

	select {
	case n := <-replaced:
		if n != 3 {
			t.Errorf("replaced with %d records, want 3", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not adopt external snapshot")
	}
}

func TestStopIsIdempotentAndRestartable(t *testing.T) {
	s := store.New(kv.NewMemory(nil), nil)
	p := New(s, nil, 5*time.Millisecond)

	p.Stop()

	p.Start(context.Background())
	p.Start(context.Background())
	p.Stop()
	p.Stop()
	if running(p) {
		t.Fatal("poller still running after Stop")
	}

	p.Start(context.Background())
	if !running(p) {
		t.Fatal("poller not running after restart")
	}
	p.Stop()
}

func TestStoppedPollerIgnoresChanges(t *testing.T) {
	mem := kv.NewMemory(nil)
	s := store.New(mem, nil)
	p := New(s, nil, 5*time.Millisecond)

	p.Start(context.Background())
	p.Stop()

	writeSnapshot(t, mem, rec("a"))
	time.Sleep(30 * time.Millisecond)

	if s.Len() != 0 {
		t.Errorf("stopped poller replaced collection: len=%d", s.Len())
	}
}

func TestContextCancelStopsLoop(t *testing.T) {
	s := store.New(kv.NewMemory(nil), nil)
	p := New(s, nil, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	// Stop still returns once the loop has observed cancellation.
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked after context cancel")
	}
}

func TestNewDefaults(t *testing.T) {
	p := New(store.New(kv.NewMemory(nil), nil), nil, 0)
	if p.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultInterval)
	}
	if _, ok := p.detector.(CountDetector); !ok {
		t.Errorf("detector = %T, want CountDetector", p.detector)
	}
}

func TestIngestDuringPollKeepsBlob(t *testing.T) {
	ctx := context.Background()
	registry := locator.NewRegistry()
	acquire := func(id string) gallery.MediaRecord {
		loc, err := registry.Acquire(strings.NewReader(id), "image/jpeg")
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		r := rec(id)
		r.Locator = loc
		return r
	}

	gate := &gatedKV{Memory: kv.NewMemory(nil), entered: make(chan struct{}), release: make(chan struct{})}
	s := store.New(gate, registry)
	if err := s.Ingest(ctx, []gallery.MediaRecord{acquire("a")}); err != nil {
		t.Fatalf("Ingest(a) error = %v", err)
	}
	b := acquire("b")

	p := New(s, CountDetector{}, time.Second)
	polled := make(chan error, 1)
	go func() {
		_, err := p.PollOnce(ctx)
		polled <- err
	}()
	<-gate.entered

	ingested := make(chan error, 1)
	go func() { ingested <- s.Ingest(ctx, []gallery.MediaRecord{b}) }()
	time.Sleep(20 * time.Millisecond)
	close(gate.release)

	if err := <-polled; err != nil {
		t.Fatalf("PollOnce() error = %v", err)
	}
	if err := <-ingested; err != nil {
		t.Fatalf("Ingest(b) error = %v", err)
	}

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, _, err := registry.Open(b.Locator); err != nil {
		t.Errorf("Open(b) error = %v; blob of a live record was released", err)
	}

	// A later poll sees the persisted state the ingest wrote.
	if changed, err := p.PollOnce(ctx); err != nil || changed {
		t.Errorf("follow-up PollOnce() = %v, %v; want false, nil", changed, err)
	}
}

func TestPollOnceCanceledContext(t *testing.T) {
	s := store.New(kv.NewMemory(map[string]string{kv.SnapshotKey: "[]"}), nil)
	p := New(s, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.PollOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("PollOnce() error = %v, want context.Canceled", err)
	}
}
