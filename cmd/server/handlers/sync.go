package handlers

import (
	"net/http"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/db"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	syncpkg "github.com/mateo-brl/powerlifting-manager-sub001/internal/sync"
)

// SyncHandler exposes sync status, history and manual drain triggering.
type SyncHandler struct {
	repo           *db.Repository
	deliver        syncpkg.Deliverer
	deliverTimeout time.Duration
	hub            Broadcaster
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(repo *db.Repository, deliver syncpkg.Deliverer, deliverTimeout time.Duration, hub Broadcaster) *SyncHandler {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	if deliverTimeout <= 0 {
		deliverTimeout = 10 * time.Second
	}
	return &SyncHandler{
		repo:           repo,
		deliver:        deliver,
		deliverTimeout: deliverTimeout,
		hub:            hub,
	}
}

// GetStatus handles GET /api/sync/status.
// Reports per-platform pending counts and last sync times.
func (h *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	platforms, err := h.repo.ListPlatforms(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.repo.ListSyncLogs(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"statuses": syncpkg.CheckStatus(platforms, entries),
	})
}

// GetLogs handles GET /api/sync/logs.
func (h *SyncHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	entries, err := h.repo.ListSyncLogs(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// TriggerSync handles POST /api/sync/trigger.
// Runs one drain pass for the competition, independent of the background
// scheduler. Failed entries stay pending for the next pass.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	pending, err := h.repo.ListPendingSyncLogs(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}

	result := syncpkg.ProcessPending(r.Context(), pending, h.deliver, syncpkg.ProcessOptions{
		DeliverTimeout: h.deliverTimeout,
	})
	for _, id := range result.Delivered {
		if err := h.repo.MarkSynced(string(id)); err != nil {
			logging.Error("Failed to persist synced flip", err, map[string]interface{}{
				"entry_id": string(id),
			})
		}
	}

	h.hub.Broadcast("sync.completed", map[string]interface{}{
		"competition_id": competitionID,
		"processed":      result.Processed,
		"failed":         result.Failed,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"processed": result.Processed,
		"failed":    result.Failed,
	})
}
