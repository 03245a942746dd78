package model

import "time"

// RecoveryApproval records one agent's sign-off on a request. The composite
// key makes a second approval by the same agent a constraint violation
// rather than a double count.
type RecoveryApproval struct {
	RequestID    string    `gorm:"primaryKey;not null"`
	AgentID      string    `gorm:"primaryKey;not null"`
	ApprovalTime time.Time `gorm:"not null"`
	Notes        string
}

func (RecoveryApproval) TableName() string {
	return "recovery_approvals"
}
