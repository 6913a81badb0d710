// Package albums derives album summaries from a collection.
package albums

import "media-gallery/internal/gallery"

// Group partitions records by album name. Albums appear in the order their
// name is first encountered, and each cover is the first record seen for
// that album. An empty collection yields an empty, non-nil slice.
func Group(records []gallery.MediaRecord) []gallery.AlbumSummary {
	summaries := make([]gallery.AlbumSummary, 0)
	index := make(map[string]int)

	for _, r := range records {
		if i, ok := index[r.AlbumName]; ok {
			summaries[i].ItemCount++
			continue
		}
		index[r.AlbumName] = len(summaries)
		summaries = append(summaries, gallery.AlbumSummary{
			AlbumName:    r.AlbumName,
			CoverLocator: r.Locator,
			ItemCount:    1,
		})
	}

	return summaries
}
