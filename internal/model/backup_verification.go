package model

import "time"

type VerificationResult string

const (
	VerificationResultSuccess VerificationResult = "success"
	VerificationResultFailure VerificationResult = "failure"
)

// BackupVerification holds the latest verification outcome per
// (document, location). Latest wins, earlier outcomes are overwritten.
type BackupVerification struct {
	DocumentID         string             `gorm:"primaryKey;not null"`
	LocationID         string             `gorm:"primaryKey;not null"`
	VerifiedBy         string             `gorm:"not null"`
	VerificationTime   time.Time          `gorm:"not null"`
	VerificationResult VerificationResult `gorm:"not null"`
	Notes              string
}

func (BackupVerification) TableName() string {
	return "backup_verifications"
}
