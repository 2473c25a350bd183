package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/db"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	syncpkg "github.com/mateo-brl/powerlifting-manager-sub001/internal/sync"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/uuid"
)

// AthleteHandler handles athlete registration and edits. Every mutation
// fans out to the other active platforms through the dispatcher.
type AthleteHandler struct {
	repo       *db.Repository
	dispatcher *syncpkg.Dispatcher
	hub        Broadcaster
}

// NewAthleteHandler creates an AthleteHandler.
func NewAthleteHandler(repo *db.Repository, dispatcher *syncpkg.Dispatcher, hub Broadcaster) *AthleteHandler {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	return &AthleteHandler{repo: repo, dispatcher: dispatcher, hub: hub}
}

// HandleCollection handles GET and POST /api/athletes.
func (h *AthleteHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w)
	}
}

// HandleItem handles PUT /api/athletes/{id}.
func (h *AthleteHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/athletes/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	h.update(w, r, id)
}

func (h *AthleteHandler) list(w http.ResponseWriter, r *http.Request) {
	competitionID := r.URL.Query().Get("competition_id")
	if competitionID == "" {
		badRequest(w, "competition_id is required")
		return
	}

	athletes, err := h.repo.ListAthletes(competitionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"athletes": athletes})
}

func (h *AthleteHandler) create(w http.ResponseWriter, r *http.Request) {
	var athlete models.Athlete
	if err := json.NewDecoder(r.Body).Decode(&athlete); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if athlete.CompetitionID == "" || athlete.FirstName == "" || athlete.LastName == "" {
		badRequest(w, "competition_id, first_name and last_name are required")
		return
	}

	athlete.ID = models.UUID(uuid.New())
	athlete.CreatedAt = time.Now().UnixMilli()
	athlete.UpdatedAt = 0

	if err := h.repo.CreateAthlete(&athlete); err != nil {
		writeError(w, err)
		return
	}

	h.fanOut(&athlete)
	writeJSON(w, http.StatusCreated, &athlete)
}

func (h *AthleteHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	existing, err := h.repo.GetAthlete(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var athlete models.Athlete
	if err := json.NewDecoder(r.Body).Decode(&athlete); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	athlete.ID = existing.ID
	athlete.CompetitionID = existing.CompetitionID
	athlete.CreatedAt = existing.CreatedAt
	athlete.UpdatedAt = time.Now().UnixMilli()

	if err := h.repo.UpdateAthlete(&athlete); err != nil {
		writeError(w, err)
		return
	}

	h.fanOut(&athlete)
	writeJSON(w, http.StatusOK, &athlete)
}

// fanOut appends sync entries for an athlete mutation and notifies live
// clients. Fan-out failure is logged by the repository layer; the mutation
// itself already committed, so the response stays successful.
func (h *AthleteHandler) fanOut(athlete *models.Athlete) {
	platforms, err := h.repo.ListPlatforms(string(athlete.CompetitionID))
	if err != nil {
		return
	}
	entries, err := h.dispatcher.DispatchAthleteUpdate(athlete.CompetitionID, athlete.PlatformID, athlete, platforms)
	if err != nil || len(entries) == 0 {
		return
	}
	if err := h.repo.AppendSyncLog(entries); err != nil {
		return
	}
	h.hub.Broadcast("sync.entry", map[string]interface{}{
		"sync_type": string(models.SyncTypeAthleteUpdate),
		"entity_id": string(athlete.ID),
		"targets":   len(entries),
	})
}
