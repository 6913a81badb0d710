package handlers

import (
	"net/http"

	"media-gallery/internal/session"
)

// PermissionResponse reports the consent state.
type PermissionResponse struct {
	Status  session.Status `json:"status"`
	Loading bool           `json:"loading"`
}

func (h *Handlers) permissionResponse() PermissionResponse {
	return PermissionResponse{Status: h.session.Status(), Loading: h.session.Loading()}
}

// GetPermission returns the current consent state.
func (h *Handlers) GetPermission(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatusCode(w, h.permissionResponse(), http.StatusOK)
}

// GrantPermission records consent and loads the gallery. The response is
// sent once the simulated scan and restore have finished.
func (h *Handlers) GrantPermission(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Grant(r.Context()); err != nil {
		writeSessionError(w, err, "Failed to grant permission")
		return
	}
	writeJSONStatusCode(w, h.permissionResponse(), http.StatusOK)
}

// DenyPermission records the refusal and stops polling.
func (h *Handlers) DenyPermission(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Deny(r.Context()); err != nil {
		writeSessionError(w, err, "Failed to deny permission")
		return
	}
	writeJSONStatusCode(w, h.permissionResponse(), http.StatusOK)
}

// RetryPermission moves a denied session back to undetermined.
func (h *Handlers) RetryPermission(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Retry(r.Context()); err != nil {
		writeSessionError(w, err, "Failed to reset permission")
		return
	}
	writeJSONStatusCode(w, h.permissionResponse(), http.StatusOK)
}
