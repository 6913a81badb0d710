package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"media-gallery/internal/gallery"
)

// ErrMalformedSnapshot is returned when a persisted snapshot cannot be decoded.
var ErrMalformedSnapshot = errors.New("store: malformed snapshot")

// Encode serializes records as a JSON array.
func Encode(records []gallery.MediaRecord) (string, error) {
	if records == nil {
		records = []gallery.MediaRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(b), nil
}

// Decode parses a snapshot. Anything other than a JSON array of records
// whose ids are present and unique is reported as ErrMalformedSnapshot.
func Decode(data string) ([]gallery.MediaRecord, error) {
	var records []gallery.MediaRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if records == nil {
		// "null"
		return nil, fmt.Errorf("%w: not an array", ErrMalformedSnapshot)
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrMalformedSnapshot, i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformedSnapshot, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return records, nil
}
