// Package handlers provides the REST API for platform registry, sync and
// results endpoints.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apperrors "github.com/mateo-brl/powerlifting-manager-sub001/internal/errors"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
)

// Broadcaster pushes live events to connected scoring stations.
type Broadcaster interface {
	Broadcast(messageType string, data map[string]interface{})
}

// noopBroadcaster stands in when no hub is wired, so handlers never nil-check.
type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, map[string]interface{}) {}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("Failed to encode response", err, nil)
	}
}

// writeError maps application error codes onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.ErrInternal

	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
		switch appErr.Code {
		case apperrors.ErrNotFound, apperrors.ErrPlatformNotFound:
			status = http.StatusNotFound
		case apperrors.ErrValidation, apperrors.ErrInvalid, apperrors.ErrSyncPayloadInvalid:
			status = http.StatusBadRequest
		case apperrors.ErrDuplicate, apperrors.ErrPlatformInUse, apperrors.ErrSyncAlreadyMarked:
			status = http.StatusConflict
		}
	}

	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    string(code),
			"message": err.Error(),
		},
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, apperrors.New(apperrors.ErrValidation, message))
}
