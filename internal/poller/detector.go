package poller

import (
	"fmt"
	"slices"
	"strings"

	"media-gallery/internal/gallery"
)

// ChangeDetector decides whether the persisted snapshot differs from the
// in-memory collection.
type ChangeDetector interface {
	Changed(current, persisted []gallery.MediaRecord) bool
}

// CountDetector reports a change only when the record counts differ.
type CountDetector struct{}

// Changed implements ChangeDetector.
func (CountDetector) Changed(current, persisted []gallery.MediaRecord) bool {
	return len(current) != len(persisted)
}

// ContentDetector reports a change when any record or the order differs.
type ContentDetector struct{}

// Changed implements ChangeDetector.
func (ContentDetector) Changed(current, persisted []gallery.MediaRecord) bool {
	return !slices.Equal(current, persisted)
}

// DetectorFor maps a configuration name to a detector. The empty name
// selects CountDetector.
func DetectorFor(name string) (ChangeDetector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "count":
		return CountDetector{}, nil
	case "content":
		return ContentDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown change detector %q (want count or content)", name)
	}
}
