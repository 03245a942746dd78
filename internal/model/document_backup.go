package model

import "time"

type BackupStatus string

const (
	BackupStatusRecorded BackupStatus = "recorded"
	BackupStatusVerified BackupStatus = "verified"
	BackupStatusFailed   BackupStatus = "failed"
)

// DocumentBackup is the claimed replication state of a document at one
// location. One active row per (document, location), re-recording overwrites.
// VerifiedAt stays nil until the first successful verification.
type DocumentBackup struct {
	DocumentID     string       `gorm:"primaryKey;not null"`
	LocationID     string       `gorm:"primaryKey;not null"`
	BackupHash     string       `gorm:"not null"` // hex encoded, 32 bytes decoded
	BackupTime     time.Time    `gorm:"not null"`
	VerifiedAt     *time.Time
	Status         BackupStatus `gorm:"not null;default:recorded"`
	EncryptionType string
}

func (DocumentBackup) TableName() string {
	return "document_backups"
}
