package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"media-gallery/internal/logging"
	"media-gallery/internal/session"
)

// maxJSONBody bounds small request bodies such as selection and query updates.
const maxJSONBody = 64 << 10

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatusCode writes v as JSON with the given status code.
func writeJSONStatusCode(w http.ResponseWriter, v interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatusCode(w, map[string]string{"error": message}, statusCode)
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writeSessionError maps session errors onto status codes. Anything the
// session does not name is logged and reported as an internal error.
func writeSessionError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, session.ErrPermissionRequired):
		writeJSONError(w, "Media library permission required", http.StatusForbidden)
	case errors.Is(err, session.ErrNoSelection):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logging.Error("%s: %v", message, err)
		writeJSONError(w, message, http.StatusInternalServerError)
	}
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
