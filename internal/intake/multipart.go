package intake

import (
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"media-gallery/internal/normalizer"
)

// FromMultipart builds inputs from uploaded form files. lastModified and
// relativePaths are matched to files by position. Files without a
// timestamp are stamped with now; files without a relative path are loose
// files. mime/multipart strips directories from part filenames, so folder
// uploads must send the path separately.
func FromMultipart(files []*multipart.FileHeader, lastModified []int64, relativePaths []string, now time.Time) []normalizer.Input {
	inputs := make([]normalizer.Input, 0, len(files))

	for i, fh := range files {
		name := fh.Filename

		contentType := fh.Header.Get("Content-Type")
		if isGeneric(contentType) {
			if byExt := TypeByExtension(name); byExt != "" {
				contentType = byExt
			}
		}

		modified := now.UnixMilli()
		if i < len(lastModified) && lastModified[i] > 0 {
			modified = lastModified[i]
		}

		relativePath := ""
		if i < len(relativePaths) {
			relativePath = cleanRelative(relativePaths[i])
		}

		inputs = append(inputs, normalizer.Input{
			ContentType:  contentType,
			Name:         name,
			LastModified: modified,
			Size:         fh.Size,
			RelativePath: relativePath,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	return inputs
}

// cleanRelative normalizes a client-supplied path to slash form without
// leading slashes or dot segments.
func cleanRelative(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
