package gallery

import "strings"

// Kind is the media variant of a record.
type Kind string

const (
	// KindImage is a still image.
	KindImage Kind = "image"
	// KindVideo is a video clip.
	KindVideo Kind = "video"
)

// DefaultAlbum is the album assigned when an input carries no folder structure.
const DefaultAlbum = "Camera"

// Locator addresses the bytes behind a record. The runtime that issued it
// owns the bytes; a record only holds the reference.
type Locator string

// MediaRecord is one photo or video in the collection.
type MediaRecord struct {
	ID          string  `json:"id"`
	Locator     Locator `json:"url"`
	Kind        Kind    `json:"type"`
	DisplayName string  `json:"name"`
	// CapturedAt is milliseconds since the Unix epoch, taken from the
	// input's modification time.
	CapturedAt int64  `json:"date"`
	ByteSize   int64  `json:"size"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	AlbumName  string `json:"album"`
}

// AlbumSummary groups the records sharing an album name.
type AlbumSummary struct {
	AlbumName    string  `json:"name"`
	CoverLocator Locator `json:"coverUrl"`
	ItemCount    int     `json:"itemCount"`
}

// KindFromContentType classifies a declared content type by its prefix.
// ok is false for anything that is neither image/* nor video/*.
func KindFromContentType(contentType string) (kind Kind, ok bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage, true
	case strings.HasPrefix(ct, "video/"):
		return KindVideo, true
	default:
		return "", false
	}
}

// AlbumFromPath derives the album from a slash-separated relative path: the
// immediate parent folder when the path has at least two segments,
// DefaultAlbum otherwise.
func AlbumFromPath(relativePath string) string {
	if relativePath == "" {
		return DefaultAlbum
	}
	parts := strings.Split(relativePath, "/")
	if len(parts) < 2 {
		return DefaultAlbum
	}
	return parts[len(parts)-2]
}

// Clone returns a copy of records that does not share the backing array.
func Clone(records []MediaRecord) []MediaRecord {
	if records == nil {
		return []MediaRecord{}
	}
	out := make([]MediaRecord, len(records))
	copy(out, records)
	return out
}
