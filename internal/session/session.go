package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"media-gallery/internal/albums"
	"media-gallery/internal/gallery"
	"media-gallery/internal/kv"
	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
	"media-gallery/internal/normalizer"
	"media-gallery/internal/query"
	"media-gallery/internal/store"
)

// DefaultScanDelay simulates the time a device takes to scan its library.
const DefaultScanDelay = 800 * time.Millisecond

var log = logging.For("session")

var (
	// ErrPermissionRequired is returned by media operations before access
	// has been granted.
	ErrPermissionRequired = errors.New("session: media library permission required")
	// ErrNoSelection is returned when an index does not address a visible record.
	ErrNoSelection = errors.New("session: no such visible item")
)

// Normalizer turns intake inputs into records.
type Normalizer interface {
	Normalize(ctx context.Context, inputs []normalizer.Input) ([]gallery.MediaRecord, error)
}

// Poller is the background reconciliation task.
type Poller interface {
	Start(ctx context.Context)
	Stop()
}

// Update is delivered to listeners after every collection change.
type Update struct {
	Collection []gallery.MediaRecord `json:"collection"`
	Albums     []gallery.AlbumSummary `json:"albums"`
}

// Options configures a Session.
type Options struct {
	// ScanDelay is waited before restoring on grant. Zero disables it; a
	// negative value selects DefaultScanDelay.
	ScanDelay time.Duration
}

// Session is safe for concurrent use.
type Session struct {
	kv         kv.Store
	store      *store.Store
	normalizer Normalizer
	poller     Poller
	scanDelay  time.Duration

	mu        sync.RWMutex
	status    Status
	loading   int
	query     string
	selected  int // -1 when nothing is selected
	albums    []gallery.AlbumSummary
	listeners []func(Update)
}

// New creates a session over st. Call Open to read the persisted
// permission flag.
func New(kvStore kv.Store, st *store.Store, norm Normalizer, poll Poller, opts Options) *Session {
	delay := opts.ScanDelay
	if delay < 0 {
		delay = DefaultScanDelay
	}

	s := &Session{
		kv:         kvStore,
		store:      st,
		normalizer: norm,
		poller:     poll,
		scanDelay:  delay,
		status:     StatusUndetermined,
		selected:   -1,
		albums:     albums.Group(st.Current()),
	}
	st.Subscribe(s.onCollectionChange)
	return s
}

// Open loads the persisted permission flag. When it says granted the
// gallery is loaded and polling starts, as if Grant had been called.
func (s *Session) Open(ctx context.Context) error {
	value, err := s.kv.Get(ctx, kv.PermissionKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("failed to read permission: %w", err)
	}
	status := ParseStatus(value)

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	log.Info("permission status: %s", status)
	if status != StatusGranted {
		return nil
	}
	return s.activate(ctx)
}

// Status returns the permission state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Loading reports whether a restore or ingest is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Grant persists consent, loads the gallery and starts polling.
func (s *Session) Grant(ctx context.Context) error {
	if err := s.kv.Set(ctx, kv.PermissionKey, string(StatusGranted)); err != nil {
		return fmt.Errorf("failed to persist permission: %w", err)
	}

	s.mu.Lock()
	s.status = StatusGranted
	s.mu.Unlock()

	log.Info("media library access granted")
	return s.activate(ctx)
}

// Deny persists the refusal and stops polling.
func (s *Session) Deny(ctx context.Context) error {
	s.poller.Stop()

	if err := s.kv.Set(ctx, kv.PermissionKey, string(StatusDenied)); err != nil {
		return fmt.Errorf("failed to persist permission: %w", err)
	}

	s.mu.Lock()
	s.status = StatusDenied
	s.mu.Unlock()

	log.Info("media library access denied")
	return nil
}

// Retry moves a denied session back to undetermined so consent can be asked
// for again. Other states are left alone.
func (s *Session) Retry(ctx context.Context) error {
	if s.Status() != StatusDenied {
		return nil
	}
	if err := s.kv.Delete(ctx, kv.PermissionKey); err != nil {
		return fmt.Errorf("failed to reset permission: %w", err)
	}

	s.mu.Lock()
	s.status = StatusUndetermined
	s.mu.Unlock()
	return nil
}

func (s *Session) activate(ctx context.Context) error {
	if err := s.load(ctx); err != nil {
		return err
	}
	// polling outlives the request that granted access
	s.poller.Start(context.WithoutCancel(ctx))
	return nil
}

func (s *Session) load(ctx context.Context) error {
	done := s.beginLoading()
	defer done()

	if s.scanDelay > 0 {
		timer := time.NewTimer(s.scanDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	if err := s.store.Restore(ctx); err != nil {
		return fmt.Errorf("failed to load gallery: %w", err)
	}
	return nil
}

func (s *Session) beginLoading() func() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}
}

func (s *Session) requireGranted() error {
	if s.Status() != StatusGranted {
		return ErrPermissionRequired
	}
	return nil
}

// Ingest normalizes inputs and adds the accepted records to the
// collection. It returns the records that were added.
func (s *Session) Ingest(ctx context.Context, inputs []normalizer.Input) ([]gallery.MediaRecord, error) {
	if err := s.requireGranted(); err != nil {
		return nil, err
	}

	done := s.beginLoading()
	defer done()

	metrics.IngestBatchesTotal.Inc()

	batch, err := s.normalizer.Normalize(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize batch: %w", err)
	}
	if err := s.store.Ingest(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Delete removes the record with id. It reports whether a record was
// removed; when one was, the selection is cleared.
func (s *Session) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.requireGranted(); err != nil {
		return false, err
	}

	removed, err := s.store.Delete(ctx, id)
	if err != nil || !removed {
		return removed, err
	}

	s.mu.Lock()
	s.selected = -1
	s.mu.Unlock()
	return true, nil
}

// CurrentCollection returns every record, newest first.
func (s *Session) CurrentCollection() []gallery.MediaRecord {
	return s.store.Current()
}

// AlbumSummaries returns the albums of the current collection.
func (s *Session) AlbumSummaries() []gallery.AlbumSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]gallery.AlbumSummary, len(s.albums))
	copy(out, s.albums)
	return out
}

// Filter returns the records matching q.
func (s *Session) Filter(q string) []gallery.MediaRecord {
	return query.Filter(s.store.Current(), q)
}

// Query returns the active search text.
func (s *Session) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery replaces the active search text. The selection indexes the
// visible list, so it is cleared when the text changes.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q != s.query {
		s.query = q
		s.selected = -1
	}
}

// SelectAlbum makes the album's name the active search text.
func (s *Session) SelectAlbum(name string) {
	s.SetQuery(name)
}

// Visible returns the records matching the active search text.
func (s *Session) Visible() []gallery.MediaRecord {
	return s.Filter(s.Query())
}

// Select marks the visible record at index as selected.
func (s *Session) Select(index int) (gallery.MediaRecord, error) {
	current := s.store.Current()

	s.mu.Lock()
	defer s.mu.Unlock()

	visible := query.Filter(current, s.query)
	if index < 0 || index >= len(visible) {
		return gallery.MediaRecord{}, fmt.Errorf("%w: %d", ErrNoSelection, index)
	}
	s.selected = index
	return visible[index], nil
}

// Selected returns the selected record and its visible index.
func (s *Session) Selected() (gallery.MediaRecord, int, bool) {
	current := s.store.Current()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected < 0 {
		return gallery.MediaRecord{}, -1, false
	}
	visible := query.Filter(current, s.query)
	if s.selected >= len(visible) {
		return gallery.MediaRecord{}, -1, false
	}
	return visible[s.selected], s.selected, true
}

// ClearSelection drops the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = -1
}

// Subscribe registers fn to receive the collection and albums after every
// change. fn must not mutate the session.
func (s *Session) Subscribe(fn func(Update)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) onCollectionChange(records []gallery.MediaRecord) {
	summaries := albums.Group(records)
	metrics.AlbumCount.Set(float64(len(summaries)))

	s.mu.Lock()
	s.albums = summaries
	if s.selected >= 0 && s.selected >= len(query.Filter(records, s.query)) {
		s.selected = -1
	}
	listeners := append([]func(Update){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		cloned := make([]gallery.AlbumSummary, len(summaries))
		copy(cloned, summaries)
		fn(Update{Collection: gallery.Clone(records), Albums: cloned})
	}
}

// Close stops polling and releases every blob held by the collection.
func (s *Session) Close() {
	s.poller.Stop()
	s.store.Close()
	log.Info("session closed")
}
