// Package sync provides cross-platform change propagation for a competition.
//
// Every local mutation on a scoring platform fans out as append-only sync
// log entries, one per active target platform. The dispatcher decides what
// to propagate; the processor drains pending entries through an injected
// delivery callback. Neither performs network transport itself.
package sync

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/mateo-brl/powerlifting-manager-sub001/internal/errors"
)

// EntityType tags the kind of record a sync payload carries.
type EntityType string

const (
	EntityAthlete EntityType = "athlete"
	EntityAttempt EntityType = "attempt"
	EntityOrder   EntityType = "order"
)

// Action tags the mutation a sync payload propagates.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// SyncData is the tagged union carried in a sync log entry's data column.
// Payload holds the serialized record; its shape depends on EntityType.
type SyncData struct {
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
}

// Validate checks the tag fields against the known kinds. Unknown kinds are
// rejected at the processor boundary instead of passing through silently.
func (d *SyncData) Validate() error {
	switch d.EntityType {
	case EntityAthlete, EntityAttempt, EntityOrder:
	default:
		return fmt.Errorf("unknown entity_type %q", d.EntityType)
	}
	switch d.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}
	if d.EntityID == "" {
		return fmt.Errorf("missing entity_id")
	}
	return nil
}

// Encode serializes a SyncData for storage in a sync log entry.
func (d *SyncData) Encode() (json.RawMessage, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncPayloadInvalid, "failed to encode sync payload", err)
	}
	return data, nil
}

// DecodeSyncData parses a sync log entry's data column back into the
// SyncData shape it was constructed from.
func DecodeSyncData(raw json.RawMessage) (*SyncData, error) {
	var d SyncData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncPayloadInvalid, "failed to decode sync payload", err)
	}
	if err := d.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSyncPayloadInvalid, "malformed sync payload", err)
	}
	return &d, nil
}
