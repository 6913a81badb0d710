package handlers

import (
	"net/http"

	"media-gallery/internal/intake"
	"media-gallery/internal/logging"
)

// ScanResponse reports the outcome of a media directory scan.
type ScanResponse struct {
	Found int         `json:"found"`
	Added int         `json:"added"`
	Items []MediaItem `json:"items"`
}

// TriggerScan walks the configured media directory and ingests what it
// finds as a single batch.
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if !h.scanEnabled {
		writeJSONError(w, "Scanning disabled (MEDIA_DIR not set)", http.StatusServiceUnavailable)
		return
	}
	if !h.requireGranted(w) {
		return
	}

	inputs, err := intake.ScanDir(r.Context(), h.mediaDir, h.retry)
	if err != nil {
		logging.Error("scan of %s failed: %v", h.mediaDir, err)
		writeJSONError(w, "Failed to scan media directory", http.StatusInternalServerError)
		return
	}

	added, err := h.session.Ingest(r.Context(), inputs)
	if err != nil {
		writeSessionError(w, err, "Failed to ingest scanned media")
		return
	}

	logging.Info("scan of %s added %d of %d files", h.mediaDir, len(added), len(inputs))
	writeJSONStatusCode(w, ScanResponse{
		Found: len(inputs),
		Added: len(added),
		Items: h.toItems(added),
	}, http.StatusCreated)
}
