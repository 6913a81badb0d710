package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"media-gallery/internal/gallery"
)

// AlbumItem is an album summary plus a URL for its cover.
type AlbumItem struct {
	gallery.AlbumSummary
	CoverURL string `json:"coverBlobUrl,omitempty"`
}

// ListAlbums returns the albums of the whole collection, ignoring the
// active search text.
func (h *Handlers) ListAlbums(w http.ResponseWriter, _ *http.Request) {
	if !h.requireGranted(w) {
		return
	}

	summaries := h.session.AlbumSummaries()
	items := make([]AlbumItem, len(summaries))
	for i, s := range summaries {
		items[i] = AlbumItem{AlbumSummary: s, CoverURL: blobURL(s.CoverLocator)}
	}
	writeJSONStatusCode(w, items, http.StatusOK)
}

// OpenAlbum makes the album's name the active search text and returns the
// records it now matches.
func (h *Handlers) OpenAlbum(w http.ResponseWriter, r *http.Request) {
	if !h.requireGranted(w) {
		return
	}

	name := mux.Vars(r)["name"]
	h.session.SelectAlbum(name)

	writeJSONStatusCode(w, MediaListResponse{
		Items:   h.toItems(h.session.Visible()),
		Total:   len(h.session.CurrentCollection()),
		Query:   name,
		Loading: h.session.Loading(),
	}, http.StatusOK)
}
