package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/kv"
	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
)

// DefaultInterval is the poll period used when none is configured.
const DefaultInterval = 2 * time.Second

var log = logging.For("poller")

// Source is the collection being reconciled. Reconcile must read, compare
// and adopt the snapshot atomically with respect to other mutations.
type Source interface {
	Reconcile(ctx context.Context, changed func(current, persisted []gallery.MediaRecord) bool) (bool, error)
}

// Poller periodically adopts the persisted snapshot when it has changed.
// It can be started and stopped any number of times.
type Poller struct {
	source   Source
	detector ChangeDetector
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped poller. A nil detector selects CountDetector and a
// non-positive interval selects DefaultInterval.
func New(source Source, detector ChangeDetector, interval time.Duration) *Poller {
	if detector == nil {
		detector = CountDetector{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		detector: detector,
		interval: interval,
	}
}

// Start begins polling in the background until Stop is called or ctx is
// canceled. Starting a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	metrics.PollerRunning.Set(1)
	go p.run(ctx, p.done)
}

// Stop cancels polling and waits for an in-flight check to finish. Stopping
// a stopped poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	metrics.PollerRunning.Set(0)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	log.Info("starting snapshot polling (interval: %v)", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
				log.Error("snapshot check failed: %v", err)
			}
		case <-ctx.Done():
			log.Info("snapshot polling stopped")
			return
		}
	}
}

// PollOnce compares the persisted snapshot with the collection and adopts
// it when the detector reports a change. It reports whether the collection
// was replaced. An absent snapshot is not a change. A malformed snapshot is
// an error and leaves the collection untouched.
func (p *Poller) PollOnce(ctx context.Context) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.PollerCheckDuration.Observe(time.Since(start).Seconds())
		metrics.PollerChecksTotal.Inc()
	}()

	changed, err := p.source.Reconcile(ctx, p.detector.Changed)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return false, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case err != nil:
		metrics.PollerErrors.Inc()
		return false, fmt.Errorf("failed to reconcile snapshot: %w", err)
	}

	if changed {
		metrics.PollerChangesDetected.Inc()
	}
	return changed, nil
}
