package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/db"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/uuid"
)

// PlatformHandler handles the platform registry endpoints.
type PlatformHandler struct {
	repo *db.Repository
	hub  Broadcaster
}

// NewPlatformHandler creates a PlatformHandler.
func NewPlatformHandler(repo *db.Repository, hub Broadcaster) *PlatformHandler {
	if hub == nil {
		hub = noopBroadcaster{}
	}
	return &PlatformHandler{repo: repo, hub: hub}
}

type platformRequest struct {
	CompetitionID string `json:"competition_id"`
	Name          string `json:"name"`
	Location      string `json:"location"`
	Active        *bool  `json:"active"`
}

// HandleCollection handles GET and POST /api/platforms.
func (h *PlatformHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w)
	}
}

// HandleItem handles GET, PUT and DELETE /api/platforms/{id}.
func (h *PlatformHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/platforms/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (h *PlatformHandler) list(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, map[string]interface{}{"platforms": platforms})
}

func (h *PlatformHandler) create(w http.ResponseWriter, r *http.Request) {
	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.CompetitionID == "" || req.Name == "" {
		badRequest(w, "competition_id and name are required")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	platform := &models.Platform{
		ID:            models.UUID(uuid.New()),
		CompetitionID: models.UUID(req.CompetitionID),
		Name:          req.Name,
		Location:      req.Location,
		Active:        active,
		CreatedAt:     time.Now().UnixMilli(),
	}

	if err := h.repo.CreatePlatform(platform); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast("platform.updated", map[string]interface{}{
		"platform_id": string(platform.ID),
		"action":      "created",
	})
	writeJSON(w, http.StatusCreated, platform)
}

func (h *PlatformHandler) get(w http.ResponseWriter, id string) {
	platform, err := h.repo.GetPlatform(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, platform)
}

func (h *PlatformHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	platform, err := h.repo.GetPlatform(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name != "" {
		platform.Name = req.Name
	}
	if req.Location != "" {
		platform.Location = req.Location
	}
	if req.Active != nil {
		platform.Active = *req.Active
	}

	if err := h.repo.UpdatePlatform(platform); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast("platform.updated", map[string]interface{}{
		"platform_id": string(platform.ID),
		"action":      "updated",
		"active":      platform.Active,
	})
	writeJSON(w, http.StatusOK, platform)
}

func (h *PlatformHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	force := r.URL.Query().Get("force") == "true"

	if err := h.repo.DeletePlatform(id, force); err != nil {
		writeError(w, err)
		return
	}

	h.hub.Broadcast("platform.updated", map[string]interface{}{
		"platform_id": id,
		"action":      "deleted",
	})
	w.WriteHeader(http.StatusNoContent)
}
