// Package query selects the visible subset of a collection for a search
// string.
package query

import (
	"strings"

	"golang.org/x/text/cases"

	"media-gallery/internal/gallery"
)

// Filter returns the records whose display name or album name contains q,
// ignoring case. An empty q returns a copy of the whole collection. The
// result preserves collection order.
func Filter(records []gallery.MediaRecord, q string) []gallery.MediaRecord {
	if q == "" {
		return gallery.Clone(records)
	}

	fold := cases.Fold()
	needle := fold.String(q)

	out := make([]gallery.MediaRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(fold.String(r.DisplayName), needle) ||
			strings.Contains(fold.String(r.AlbumName), needle) {
			out = append(out, r)
		}
	}
	return out
}
