package handlers

import (
	"net/http"

	"media-gallery/internal/gallery"
)

// SelectionResponse describes the selected record, if any.
type SelectionResponse struct {
	Selected bool       `json:"selected"`
	Index    int        `json:"index"`
	Item     *MediaItem `json:"item,omitempty"`
}

type selectionRequest struct {
	Index *int `json:"index"`
}

type queryRequest struct {
	Query string `json:"q"`
}

// GetSelection returns the selected visible record.
func (h *Handlers) GetSelection(w http.ResponseWriter, _ *http.Request) {
	if !h.requireGranted(w) {
		return
	}

	rec, index, ok := h.session.Selected()
	response := SelectionResponse{Selected: ok, Index: index}
	if ok {
		item := h.toItems([]gallery.MediaRecord{rec})[0]
		response.Item = &item
	}
	writeJSONStatusCode(w, response, http.StatusOK)
}

// SetSelection selects the visible record at the requested index.
func (h *Handlers) SetSelection(w http.ResponseWriter, r *http.Request) {
	if !h.requireGranted(w) {
		return
	}

	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil || req.Index == nil {
		writeJSONError(w, "Body must be {\"index\": n}", http.StatusBadRequest)
		return
	}

	rec, err := h.session.Select(*req.Index)
	if err != nil {
		writeSessionError(w, err, "Failed to select media")
		return
	}

	item := h.toItems([]gallery.MediaRecord{rec})[0]
	writeJSONStatusCode(w, SelectionResponse{Selected: true, Index: *req.Index, Item: &item}, http.StatusOK)
}

// ClearSelection drops the selection.
func (h *Handlers) ClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.session.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// GetQuery returns the active search text.
func (h *Handlers) GetQuery(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatusCode(w, queryRequest{Query: h.session.Query()}, http.StatusOK)
}

// SetQuery replaces the active search text and returns the visible records.
func (h *Handlers) SetQuery(w http.ResponseWriter, r *http.Request) {
	if !h.requireGranted(w) {
		return
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, "Body must be {\"q\": \"text\"}", http.StatusBadRequest)
		return
	}

	h.session.SetQuery(req.Query)
	writeJSONStatusCode(w, MediaListResponse{
		Items:   h.toItems(h.session.Visible()),
		Total:   len(h.session.CurrentCollection()),
		Query:   req.Query,
		Loading: h.session.Loading(),
	}, http.StatusOK)
}
