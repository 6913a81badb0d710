package normalizer

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
	"media-gallery/internal/metrics"
	"media-gallery/internal/workers"
)

// maxProbeWorkers caps concurrent probes regardless of CPU count.
const maxProbeWorkers = 16

var log = logging.For("normalizer")

// Input is one file-like intake item.
type Input struct {
	ContentType string
	Name        string
	// LastModified is milliseconds since the Unix epoch.
	LastModified int64
	// Size is the declared byte size. A negative value means unknown and
	// the size of the read content is used instead.
	Size int64
	// RelativePath is the slash-separated path of the item within a
	// selected folder, including the folder itself. Empty for loose files.
	RelativePath string
	Open         func() (io.ReadCloser, error)
}

// Acquirer issues and releases locators for content.
type Acquirer interface {
	Acquire(r io.Reader, contentType string) (gallery.Locator, error)
	Release(loc gallery.Locator) bool
}

// Options configures a Normalizer.
type Options struct {
	// Prober resolves image dimensions. Defaults to ConfigProber.
	Prober Prober
	// Workers bounds concurrent inputs. Zero sizes the pool from the CPU
	// budget and the prober's load.
	Workers int
	// NewID generates record ids. Defaults to random UUIDs.
	NewID func() string
}

// Normalizer converts intake inputs into records.
type Normalizer struct {
	locators Acquirer
	prober   Prober
	workers  int
	newID    func() string
}

// New creates a Normalizer that stores content in locators.
func New(locators Acquirer, opts Options) *Normalizer {
	n := &Normalizer{
		locators: locators,
		prober:   opts.Prober,
		workers:  opts.Workers,
		newID:    opts.NewID,
	}
	if n.prober == nil {
		n.prober = ConfigProber{}
	}
	if n.workers <= 0 {
		n.workers = workers.Size(loadOf(n.prober), maxProbeWorkers)
	}
	if n.newID == nil {
		n.newID = uuid.NewString
	}
	return n
}

// loadOf reports how CPU-heavy a prober is. OrientedProber decodes every
// pixel; the others read headers.
func loadOf(p Prober) workers.Load {
	if _, ok := p.(OrientedProber); ok {
		return workers.CPUBound
	}
	return workers.IOBound
}

// Normalize converts a batch of inputs into records sorted descending by
// CapturedAt. Inputs that are unsupported or unreadable are left out. The
// only error is ctx's, in which case every locator acquired for the batch
// has been released.
func (n *Normalizer) Normalize(ctx context.Context, inputs []Input) ([]gallery.MediaRecord, error) {
	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	results := make([]*gallery.MediaRecord, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = n.normalizeOne(inputs[i])
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		for _, rec := range results {
			if rec != nil {
				n.locators.Release(rec.Locator)
			}
		}
		return nil, err
	}

	records := make([]gallery.MediaRecord, 0, len(inputs))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	SortByCapturedDesc(records)

	log.Debug("normalized %d of %d inputs in %v", len(records), len(inputs), time.Since(start))
	return records, nil
}

// normalizeOne returns nil when the input is excluded from the batch.
func (n *Normalizer) normalizeOne(in Input) *gallery.MediaRecord {
	kind, ok := gallery.KindFromContentType(in.ContentType)
	if !ok {
		log.Debug("skipping %s: unsupported content type %q", in.Name, in.ContentType)
		metrics.IngestInputsTotal.WithLabelValues("unsupported", "unsupported").Inc()
		return nil
	}

	data, err := readInput(in)
	if err != nil {
		log.Warn("skipping %s: %v", in.Name, err)
		metrics.IngestInputsTotal.WithLabelValues(string(kind), "unreadable").Inc()
		return nil
	}

	loc, err := n.locators.Acquire(bytes.NewReader(data), in.ContentType)
	if err != nil {
		log.Warn("skipping %s: failed to acquire locator: %v", in.Name, err)
		metrics.IngestInputsTotal.WithLabelValues(string(kind), "unreadable").Inc()
		return nil
	}

	var width, height int
	if kind == gallery.KindImage {
		width, height, err = n.prober.Probe(bytes.NewReader(data))
		if err != nil {
			log.Debug("dimensions unavailable for %s: %v", in.Name, err)
			metrics.IngestProbeFailures.Inc()
			width, height = 0, 0
		}
	}

	size := in.Size
	if size < 0 {
		size = int64(len(data))
	}

	metrics.IngestInputsTotal.WithLabelValues(string(kind), "accepted").Inc()

	return &gallery.MediaRecord{
		ID:          n.newID(),
		Locator:     loc,
		Kind:        kind,
		DisplayName: in.Name,
		CapturedAt:  in.LastModified,
		ByteSize:    size,
		Width:       width,
		Height:      height,
		AlbumName:   gallery.AlbumFromPath(in.RelativePath),
	}
}

func readInput(in Input) ([]byte, error) {
	if in.Open == nil {
		return nil, fmt.Errorf("no content")
	}
	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open content: %w", err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			log.Warn("failed to close content for %s: %v", in.Name, err)
		}
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return data, nil
}

// SortByCapturedDesc orders records newest first. Records with equal
// capture times keep their relative order.
func SortByCapturedDesc(records []gallery.MediaRecord) {
	slices.SortStableFunc(records, func(a, b gallery.MediaRecord) int {
		return cmp.Compare(b.CapturedAt, a.CapturedAt)
	})
}
