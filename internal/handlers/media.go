package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"media-gallery/internal/gallery"
	"media-gallery/internal/intake"
	"media-gallery/internal/locator"
	"media-gallery/internal/logging"
	"media-gallery/internal/session"
)

// maxUploadMemory is the part of a multipart upload kept in memory; the
// rest spills to temporary files.
const maxUploadMemory = 32 << 20

// MediaItem is a record plus its presentation labels.
type MediaItem struct {
	gallery.MediaRecord
	SizeLabel string `json:"sizeLabel"`
	DateLabel string `json:"dateLabel"`
	BlobURL   string `json:"blobUrl,omitempty"`
}

// MediaListResponse is returned by ListMedia and UploadMedia.
type MediaListResponse struct {
	Items   []MediaItem `json:"items"`
	Total   int         `json:"total"`
	Query   string      `json:"query"`
	Loading bool        `json:"loading"`
}

func (h *Handlers) toItems(records []gallery.MediaRecord) []MediaItem {
	items := make([]MediaItem, len(records))
	for i, rec := range records {
		items[i] = MediaItem{
			MediaRecord: rec,
			SizeLabel:   gallery.FormatSize(rec.ByteSize),
			DateLabel:   gallery.FormatDate(rec.CapturedAt, h.location),
			BlobURL:     blobURL(rec.Locator),
		}
	}
	return items
}

func blobURL(loc gallery.Locator) string {
	id, ok := locator.ParseID(loc)
	if !ok {
		return ""
	}
	return "/api/blob/" + id
}

// requireGranted writes a 403 and returns false before consent is given.
func (h *Handlers) requireGranted(w http.ResponseWriter) bool {
	if h.session.Status() != session.StatusGranted {
		writeSessionError(w, session.ErrPermissionRequired, "")
		return false
	}
	return true
}

// ListMedia returns the visible records. A q parameter overrides the
// active search text for this request only.
func (h *Handlers) ListMedia(w http.ResponseWriter, r *http.Request) {
	if !h.requireGranted(w) {
		return
	}

	q := h.session.Query()
	if values := r.URL.Query(); values.Has("q") {
		q = values.Get("q")
	}

	records := h.session.Filter(q)
	writeJSONStatusCode(w, MediaListResponse{
		Items:   h.toItems(records),
		Total:   len(h.session.CurrentCollection()),
		Query:   q,
		Loading: h.session.Loading(),
	}, http.StatusOK)
}

// UploadMedia ingests the files of a multipart form. Parts named "files"
// carry content; optional repeated "lastModified" (ms epoch) and
// "relativePath" values are matched to files by position.
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if !h.requireGranted(w) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("failed to remove multipart temp files: %v", err)
		}
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, "No files provided", http.StatusBadRequest)
		return
	}

	lastModified := parseMillis(r.MultipartForm.Value["lastModified"])
	inputs := intake.FromMultipart(files, lastModified, r.MultipartForm.Value["relativePath"], time.Now())

	added, err := h.session.Ingest(r.Context(), inputs)
	if err != nil {
		writeSessionError(w, err, "Failed to ingest media")
		return
	}

	logging.Info("ingested %d of %d uploaded files", len(added), len(files))
	writeJSONStatusCode(w, MediaListResponse{
		Items:   h.toItems(added),
		Total:   len(h.session.CurrentCollection()),
		Query:   h.session.Query(),
		Loading: h.session.Loading(),
	}, http.StatusCreated)
}

// parseMillis converts form values to timestamps; unparsable entries become
// zero so later values keep their positions.
func parseMillis(values []string) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			out[i] = ms
		}
	}
	return out
}

// DeleteMedia removes one record by id.
func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	removed, err := h.session.Delete(r.Context(), id)
	if err != nil {
		writeSessionError(w, err, "Failed to delete media")
		return
	}
	if !removed {
		writeJSONError(w, "Media not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
