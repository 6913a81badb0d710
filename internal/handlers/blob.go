package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"media-gallery/internal/locator"
	"media-gallery/internal/logging"
)

// GetBlob serves the content behind a locator. Locators never change their
// bytes, so responses are cacheable for as long as the client likes.
func (h *Handlers) GetBlob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	loc := locator.FromID(id)
	if _, ok := locator.ParseID(loc); !ok {
		http.Error(w, "Invalid blob id", http.StatusBadRequest)
		return
	}

	reader, contentType, err := h.blobs.Open(loc)
	if err != nil {
		if errors.Is(err, locator.ErrNotFound) {
			http.Error(w, "Blob not found", http.StatusNotFound)
			return
		}
		logging.Error("failed to open blob %s: %v", id, err)
		http.Error(w, "Failed to open blob", http.StatusInternalServerError)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	http.ServeContent(w, r, "", time.Time{}, reader)
}
