package sync

import (
	"encoding/json"
	"time"

	"github.com/mateo-brl/powerlifting-manager-sub001/internal/config"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/logging"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/uuid"
)

// Dispatcher turns local mutations into sync log entries, one per active
// target platform. It is a star broadcast: every platform fans out directly
// to every other active platform, with no relay. Dispatch has no side
// effects; durably storing the returned entries is the caller's job.
type Dispatcher struct {
	cfg config.SyncConfig
}

// NewDispatcher creates a Dispatcher with the given sync configuration.
func NewDispatcher(cfg config.SyncConfig) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// DispatchAthleteUpdate fans out an athlete edit to all other active platforms.
func (d *Dispatcher) DispatchAthleteUpdate(competitionID, sourcePlatformID models.UUID, athlete *models.Athlete, platforms []*models.Platform) ([]*models.SyncLogEntry, error) {
	if !d.cfg.AutoSync {
		return nil, nil
	}

	payload, err := json.Marshal(athlete)
	if err != nil {
		return nil, err
	}
	data := &SyncData{
		EntityType: EntityAthlete,
		EntityID:   string(athlete.ID),
		Action:     ActionUpdate,
		Payload:    payload,
	}
	return d.fanOut(competitionID, sourcePlatformID, models.SyncTypeAthleteUpdate, data, platforms)
}

// DispatchAttemptResult fans out a refereed attempt to all other active
// platforms. No-op when attempt syncing is disabled.
func (d *Dispatcher) DispatchAttemptResult(competitionID, sourcePlatformID models.UUID, attempt *models.Attempt, platforms []*models.Platform) ([]*models.SyncLogEntry, error) {
	if !d.cfg.AutoSync || !d.cfg.SyncAttempts {
		return nil, nil
	}

	payload, err := json.Marshal(attempt)
	if err != nil {
		return nil, err
	}
	data := &SyncData{
		EntityType: EntityAttempt,
		EntityID:   string(attempt.ID),
		Action:     ActionCreate,
		Payload:    payload,
	}
	return d.fanOut(competitionID, sourcePlatformID, models.SyncTypeAttemptResult, data, platforms)
}

// DispatchOrderChange broadcasts a lifting-order change to all other active
// platforms.
func (d *Dispatcher) DispatchOrderChange(competitionID, sourcePlatformID models.UUID, orderPayload json.RawMessage, platforms []*models.Platform) ([]*models.SyncLogEntry, error) {
	if !d.cfg.AutoSync {
		return nil, nil
	}

	data := &SyncData{
		EntityType: EntityOrder,
		EntityID:   "order_update",
		Action:     ActionUpdate,
		Payload:    orderPayload,
	}
	return d.fanOut(competitionID, sourcePlatformID, models.SyncTypeOrderChange, data, platforms)
}

// DispatchDeclaration broadcasts a declared next-attempt weight. Declarations
// reshuffle the bar order, so they ride the order_change sync type, but they
// are gated separately: a meet director can sync results without syncing
// declarations.
func (d *Dispatcher) DispatchDeclaration(competitionID, sourcePlatformID models.UUID, declarationPayload json.RawMessage, platforms []*models.Platform) ([]*models.SyncLogEntry, error) {
	if !d.cfg.AutoSync || !d.cfg.SyncDeclarations {
		return nil, nil
	}

	data := &SyncData{
		EntityType: EntityOrder,
		EntityID:   "order_update",
		Action:     ActionUpdate,
		Payload:    declarationPayload,
	}
	return d.fanOut(competitionID, sourcePlatformID, models.SyncTypeOrderChange, data, platforms)
}

// fanOut emits one entry per platform that is neither the source nor inactive.
func (d *Dispatcher) fanOut(competitionID, sourcePlatformID models.UUID, syncType models.SyncType, data *SyncData, platforms []*models.Platform) ([]*models.SyncLogEntry, error) {
	encoded, err := data.Encode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	var entries []*models.SyncLogEntry

	for _, target := range platforms {
		if target.ID == sourcePlatformID || !target.Active {
			continue
		}
		entries = append(entries, &models.SyncLogEntry{
			ID:               models.UUID(uuid.NewSortable()),
			CompetitionID:    competitionID,
			SourcePlatformID: sourcePlatformID,
			TargetPlatformID: target.ID,
			SyncType:         syncType,
			Data:             encoded,
			Synced:           false,
			Timestamp:        now,
		})
	}

	if len(entries) > 0 {
		logging.Debug("Dispatched sync entries", map[string]interface{}{
			"competition_id": string(competitionID),
			"source":         string(sourcePlatformID),
			"sync_type":      string(syncType),
			"targets":        len(entries),
		})
	}
	return entries, nil
}
