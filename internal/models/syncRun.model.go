package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRun persists the report of one reconciliation pass so callers can
// inspect what the last sync did and which tracks it skipped.
type SyncRun struct {
	BaseModel
	UserID        string         `gorm:"type:text;not null;index:idx_sync_runs_user" json:"userId"`
	TracksFetched int            `gorm:"type:int;not null" json:"tracksFetched"`
	TracksSynced  int            `gorm:"type:int;not null" json:"tracksSynced"`
	TracksDeleted int            `gorm:"type:int;not null" json:"tracksDeleted"`
	ArtistsSynced int            `gorm:"type:int;not null" json:"artistsSynced"`
	Pruned        bool           `gorm:"not null"          json:"pruned"`
	Skipped       datatypes.JSON `gorm:"type:jsonb"        json:"skipped,omitempty"`
	StartedAt     time.Time      `gorm:"not null"          json:"startedAt"`
	DurationMS    int64          `gorm:"type:bigint;not null" json:"durationMs"`
}
