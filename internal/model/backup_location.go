package model

import "time"

type LocationStatus string

const (
	LocationStatusActive         LocationStatus = "active"
	LocationStatusInactive       LocationStatus = "inactive"
	LocationStatusDecommissioned LocationStatus = "decommissioned"
)

// BackupLocation is a physical or organizational backup site. Lifecycle
// mirrors RecoveryAgent: registered once, status-transitioned, never deleted.
type BackupLocation struct {
	LocationID       string         `gorm:"primaryKey;not null"`
	Name             string         `gorm:"not null"`
	Description      string
	LocationType     string
	GeographicRegion string
	Operator         string         `gorm:"not null"` // principal that registered and operates the site
	Status           LocationStatus `gorm:"not null;default:active"`
	ReliabilityScore int            `gorm:"not null"`
	RegisteredAt     time.Time      `gorm:"not null"`
}

func (BackupLocation) TableName() string {
	return "backup_locations"
}
