package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/potluckapp/potluck/internal/apperr"
)

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps an application error to its HTTP status. Unclassified
// errors become a generic 500 so internals never reach the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(apperr.KindOf(err))
	if status == http.StatusInternalServerError {
		slog.Error("Unhandled error", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindPolicy:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "invalid request body")
	}
	return nil
}
