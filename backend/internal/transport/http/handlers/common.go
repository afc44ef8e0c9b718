package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	relsvc "github.com/driftapp/drift/backend/internal/services/relationships"
	httperrors "github.com/driftapp/drift/backend/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	httperrors.WriteError(w, r, http.StatusBadRequest, code, message)
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, code, message string) {
	httperrors.WriteError(w, r, http.StatusUnauthorized, code, message)
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

func writeInternal(w http.ResponseWriter, r *http.Request, code, message string) {
	httperrors.WriteError(w, r, http.StatusInternalServerError, code, message)
}

// writeServiceError maps reconciler errors onto HTTP statuses. fallback is the
// message used for anything unexpected.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, relsvc.ErrInvalidArgument):
		writeBadRequest(w, r, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, relsvc.ErrNotFound):
		writeNotFound(w, r)
	case errors.Is(err, relsvc.ErrInvalidStateTransition):
		httperrors.WriteError(w, r, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, relsvc.ErrStorageUnavailable):
		httperrors.WriteError(w, r, http.StatusServiceUnavailable, "TEMP_UNAVAILABLE", "storage is temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		httperrors.WriteError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "request timed out")
	default:
		writeInternal(w, r, "INTERNAL_ERROR", fallback)
	}
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
