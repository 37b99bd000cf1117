package internal

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"inventory-dashboard/pkg/inventory"
)

const apiVersion = "1.0.0"

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, Details: details})
}

// writeData wraps v in the {data, meta} envelope
func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": v,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   apiVersion,
		},
	})
}

// writeLoadError reports a failed inventory load. The data source is
// server side, so every failure is a 5xx.
func writeLoadError(w http.ResponseWriter, err error) {
	var (
		loadErr   *inventory.LoadError
		headerErr *inventory.HeaderError
	)
	switch {
	case errors.Is(err, inventory.ErrFileNotFound):
		writeError(w, http.StatusServiceUnavailable, "DATA_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, inventory.ErrUnsupportedFormat):
		writeError(w, http.StatusInternalServerError, "UNSUPPORTED_FORMAT", err.Error(), nil)
	case errors.As(err, &headerErr):
		writeError(w, http.StatusInternalServerError, "MISSING_COLUMN", err.Error(), headerErr.Missing)
	case errors.As(err, &loadErr):
		writeError(w, http.StatusInternalServerError, "INVALID_DATA", err.Error(), loadErr.Samples)
	default:
		writeError(w, http.StatusInternalServerError, "LOAD_FAILED", "failed to load inventory", nil)
	}
}
