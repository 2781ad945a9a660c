package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/media-io/s3-signer/internal/apierr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response body", "error", err)
	}
}

func writeRedirect(w http.ResponseWriter, url string) {
	w.Header().Set("Location", url)
	w.WriteHeader(http.StatusFound)
}

func writeUnprocessable(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": detail})
}

// writeError maps a classified failure to its HTTP status. Parameter
// problems are the caller's to fix; everything else is logged with its
// operation context and reported as an internal error without leaking
// backend details.
func writeError(w http.ResponseWriter, err error) {
	switch apierr.KindOf(err) {
	case apierr.KindValidation:
		writeUnprocessable(w, err.Error())
	default:
		slog.Error("operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
