package handlers

import (
	"net/http"

	httperrors "github.com/driftapp/drift/backend/internal/transport/http/errors"
)

func Healthz(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, map[string]bool{"ok": true})
}
