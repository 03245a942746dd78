package model

import "time"

const RecoveryMethodSecureTransfer = "secure-transfer"

// RecoveryEvent is the audit record written exactly once, when a request is
// executed. Immutable thereafter.
type RecoveryEvent struct {
	RequestID      string    `gorm:"primaryKey;not null"`
	DocumentID     string    `gorm:"not null;index:idx_recovery_events_document_id"`
	Recipient      string    `gorm:"not null"`
	RecoveryTime   time.Time `gorm:"not null"`
	RecoveryMethod string    `gorm:"not null"`
	RecoveryNotes  string
}

func (RecoveryEvent) TableName() string {
	return "recovery_events"
}
