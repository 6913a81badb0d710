package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"media-gallery/internal/gallery"
	"media-gallery/internal/kv"
	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
)

var log = logging.For("store")

// Releaser frees the bytes behind a locator.
type Releaser interface {
	Release(loc gallery.Locator) bool
}

type nopReleaser struct{}

func (nopReleaser) Release(gallery.Locator) bool { return false }

// Listener receives the collection after every change. Listeners run
// synchronously and in order; they may read the store but must not mutate it.
type Listener func(records []gallery.MediaRecord)

// Store is the collection of media records. It is safe for concurrent use.
type Store struct {
	kv       kv.Store
	locators Releaser

	mu      sync.RWMutex
	records []gallery.MediaRecord

	version uint64

	// notifyMu serializes listener calls. A change superseded before its
	// listeners ran is skipped, so listeners always move forward.
	notifyMu  sync.Mutex
	delivered uint64
	listeners []Listener
}

// New creates an empty store persisting to kvStore. locators may be nil
// when the caller does not own any blobs, as in galleryctl.
func New(kvStore kv.Store, locators Releaser) *Store {
	if locators == nil {
		locators = nopReleaser{}
	}
	return &Store{
		kv:       kvStore,
		locators: locators,
		records:  []gallery.MediaRecord{},
	}
}

// Subscribe registers fn to be called after every change.
func (s *Store) Subscribe(fn Listener) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Current returns a copy of the collection, newest first.
func (s *Store) Current() []gallery.MediaRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gallery.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns the record with id.
func (s *Store) Get(id string) (gallery.MediaRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return gallery.MediaRecord{}, false
	}
	return s.records[i], true
}

// Ingest prepends batch, which must already be sorted newest first, to the
// collection and persists the result. When persisting fails the collection
// is left unchanged, the batch's locators are released and the error is
// returned.
func (s *Store) Ingest(ctx context.Context, batch []gallery.MediaRecord) error {
	if len(batch) == 0 {
		return nil
	}

	s.mu.Lock()
	next := make([]gallery.MediaRecord, 0, len(batch)+len(s.records))
	next = append(next, batch...)
	next = append(next, s.records...)

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		for _, r := range batch {
			s.locators.Release(r.Locator)
		}
		return fmt.Errorf("failed to ingest %d records: %w", len(batch), err)
	}

	s.records = next
	log.Info("ingested %d records, collection now %d", len(batch), len(next))
	s.commitAndNotify()
	return nil
}

// Delete removes the record with id and persists the result. It reports
// whether a record was removed; an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		metrics.DeletesTotal.WithLabelValues("missing").Inc()
		log.Debug("delete of unknown id %s ignored", id)
		return false, nil
	}

	removed := s.records[i]
	next := slices.Concat(s.records[:i], s.records[i+1:])

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		metrics.DeletesTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("failed to delete %s: %w", id, err)
	}

	s.records = next
	s.locators.Release(removed.Locator)
	metrics.DeletesTotal.WithLabelValues("removed").Inc()
	log.Info("deleted %s (%s)", id, removed.DisplayName)
	s.commitAndNotify()
	return true, nil
}

// Clear removes every record and persists an empty snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.persist(ctx, []gallery.MediaRecord{}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	s.swapLocked([]gallery.MediaRecord{})
	s.commitAndNotify()
	return nil
}

// Persisted reads and decodes the snapshot without changing the store. It
// returns an error wrapping kv.ErrNotFound when nothing has been persisted
// and ErrMalformedSnapshot when the snapshot cannot be decoded.
func (s *Store) Persisted(ctx context.Context) ([]gallery.MediaRecord, error) {
	data, err := s.kv.Get(ctx, kv.SnapshotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Decode(data)
}

// Restore replaces the collection with the persisted snapshot. A missing
// snapshot leaves the collection untouched. A malformed one empties it.
// Only storage errors are returned.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	records, err := s.Persisted(ctx)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.mu.Unlock()
		log.Debug("no snapshot to restore")
		return nil
	case errors.Is(err, ErrMalformedSnapshot):
		log.Warn("discarding unreadable snapshot: %v", err)
		records = []gallery.MediaRecord{}
	case err != nil:
		s.mu.Unlock()
		return err
	}

	s.swapLocked(records)
	s.commitAndNotify()
	log.Info("restored %d records", len(records))
	return nil
}

// Reconcile adopts the persisted snapshot when changed reports that it
// differs from the collection. The snapshot is read and compared with the
// store locked, so a concurrent Ingest or Delete lands wholly before or after
// it and never has its records released underneath it.
func (s *Store) Reconcile(ctx context.Context, changed func(current, persisted []gallery.MediaRecord) bool) (bool, error) {
	s.mu.Lock()
	persisted, err := s.Persisted(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !changed(s.records, persisted) {
		s.mu.Unlock()
		return false, nil
	}

	log.Info("external change detected: %d -> %d records", len(s.records), len(persisted))
	s.swapLocked(persisted)
	s.commitAndNotify()
	return true, nil
}

// Replace adopts records wholesale without persisting them. Locators of
// records that are no longer present are released.
func (s *Store) Replace(records []gallery.MediaRecord) {
	s.mu.Lock()
	s.swapLocked(gallery.Clone(records))
	s.commitAndNotify()
}

// Close releases every locator still referenced by the collection.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		s.locators.Release(r.Locator)
	}
}

func (s *Store) swapLocked(next []gallery.MediaRecord) {
	keep := make(map[gallery.Locator]struct{}, len(next))
	for _, r := range next {
		keep[r.Locator] = struct{}{}
	}
	for _, r := range s.records {
		if _, ok := keep[r.Locator]; !ok {
			s.locators.Release(r.Locator)
		}
	}
	s.records = next
}

// commitAndNotify must be called with mu held; it releases mu.
func (s *Store) commitAndNotify() {
	s.version++
	version := s.version
	snapshot := gallery.Clone(s.records)
	s.mu.Unlock()

	metrics.CollectionSize.Set(float64(len(snapshot)))

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if version <= s.delivered {
		return
	}
	s.delivered = version

	for _, fn := range s.listeners {
		fn(gallery.Clone(snapshot))
	}
}

func (s *Store) persist(ctx context.Context, records []gallery.MediaRecord) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, kv.SnapshotKey, data)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r gallery.MediaRecord) bool {
		return r.ID == id
	})
}
