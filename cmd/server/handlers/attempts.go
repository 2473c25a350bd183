package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/db"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	syncpkg "github.com/mateo-brl/powerlifting-manager-sub001/internal/sync"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/uuid"
)

// AttemptHandler records refereed attempts and fans them out.
type AttemptHandler struct {
	repo       *db.Repository
	dispatcher *syncpkg.Dispatcher
	hub        Broadcaster
}

// NewAttemptHandler creates an AttemptHandler.
func NewAttemptHandler(repo *db.Repository, dispatcher *syncpkg.Dispatcher, hub Broadcaster) *AttemptHandler {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	return &AttemptHandler{repo: repo, dispatcher: dispatcher, hub: hub}
}

// HandleCollection handles GET and POST /api/attempts.
func (h *AttemptHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *AttemptHandler) list(w http.ResponseWriter, r *http.Request) {
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	attempts, err := h.repo.ListAttempts(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}

func (h *AttemptHandler) create(w http.ResponseWriter, r *http.Request) {
	var attempt models.Attempt
	if err := json.NewDecoder(r.Body).Decode(&attempt); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	attempt.ID = models.UUID(uuid.New())
	if attempt.Timestamp == 0 {
		attempt.Timestamp = time.Now().UnixMilli()
	}

	if err := h.repo.CreateAttempt(&attempt); err != nil {
		writeError(w, err)
		return
	}

	h.fanOut(&attempt)
	writeJSON(w, http.StatusCreated, &attempt)
}

// fanOut propagates a recorded attempt to the other active platforms. The
// athlete lookup scopes the fan-out to the right competition.
func (h *AttemptHandler) fanOut(attempt *models.Attempt) {
	athlete, err := h.repo.GetAthlete(string(attempt.AthleteID))
	if err != nil {
		return
	}
	platforms, err := h.repo.ListPlatforms(string(athlete.CompetitionID))
	if err != nil {
		return
	}
	entries, err := h.dispatcher.DispatchAttemptResult(athlete.CompetitionID, attempt.PlatformID, attempt, platforms)
	if err != nil || len(entries) == 0 {
		return
	}
	if err := h.repo.AppendSyncLog(entries); err != nil {
		return
	}
	h.hub.Broadcast("sync.entry", map[string]interface{}{
		"sync_type": string(models.SyncTypeAttemptResult),
		"entity_id": string(attempt.ID),
		"targets":   len(entries),
	})
}
