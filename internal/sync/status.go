package sync

import (
	"github.com/mateo-brl/powerlifting-manager-sub001/internal/models"
)

// PlatformStatus summarizes one platform's synchronization state.
type PlatformStatus struct {
	PlatformID   models.UUID `json:"platform_id"`
	PlatformName string      `json:"platform_name"`
	PendingSyncs int         `json:"pending_syncs"`
	// LastSync is the timestamp of the most recent delivered entry touching
	// this platform, in Unix milliseconds; zero when nothing has synced yet.
	LastSync int64 `json:"last_sync,omitempty"`
	IsSynced bool  `json:"is_synced"`
}

// CheckStatus reports, for each platform, how many entries still await
// delivery and when the platform last took part in a successful sync.
// An entry touches a platform when the platform is its source or target.
func CheckStatus(platforms []*models.Platform, entries []*models.SyncLogEntry) []PlatformStatus {
	statuses := make([]PlatformStatus, 0, len(platforms))

	for _, p := range platforms {
		status := PlatformStatus{
			PlatformID:   p.ID,
			PlatformName: p.Name,
		}

		for _, e := range entries {
			if e.SourcePlatformID != p.ID && e.TargetPlatformID != p.ID {
				continue
			}
			if e.Synced {
				if e.Timestamp > status.LastSync {
					status.LastSync = e.Timestamp
				}
			} else {
				status.PendingSyncs++
			}
		}

		status.IsSynced = status.PendingSyncs == 0
		statuses = append(statuses, status)
	}

	return statuses
}
