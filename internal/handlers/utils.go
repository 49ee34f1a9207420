package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"webmedia/internal/logging"
	"webmedia/internal/thumbnail"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are only logged; the status is already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatus writes v with the given status code.
func writeJSONStatus(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatus(w, statusCode, map[string]string{"error": message})
}

// statusFor maps a processing error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, thumbnail.ErrInvalidAttribute),
		errors.Is(err, thumbnail.ErrUnsupportedFormat),
		errors.Is(err, thumbnail.ErrInvalidSource):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
