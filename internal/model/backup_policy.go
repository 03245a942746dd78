package model

import "time"

// BackupPolicy is the declarative backup requirement for a document. The
// ledger never enforces it autonomously; it only exposes the numbers an
// external auditor compares against.
type BackupPolicy struct {
	DocumentID                 string    `gorm:"primaryKey;not null"`
	Owner                      string    `gorm:"not null"`
	MinBackupCount             int       `gorm:"not null"`
	BackupFrequencyHours       int       `gorm:"not null"`
	VerificationFrequencyHours int       `gorm:"not null"`
	EncryptionRequired         bool      `gorm:"not null"`
	LastPolicyUpdate           time.Time `gorm:"not null"`
}

func (BackupPolicy) TableName() string {
	return "backup_policies"
}
