package model

import "time"

type AgentStatus string

const (
	AgentStatusActive    AgentStatus = "active"
	AgentStatusSuspended AgentStatus = "suspended"
	AgentStatusRevoked   AgentStatus = "revoked"
)

// RecoveryAgent is a trusted third party allowed to approve recovery
// requests. Agents are never deleted, only status-transitioned.
type RecoveryAgent struct {
	AgentID      string      `gorm:"primaryKey;not null"`
	Name         string      `gorm:"not null"`
	Organization string
	AgentAddress string      `gorm:"not null"` // principal that registered and controls the agent
	Status       AgentStatus `gorm:"not null;default:active"`
	TrustScore   int         `gorm:"not null"`
	RegisteredAt time.Time   `gorm:"not null"`
}

func (RecoveryAgent) TableName() string {
	return "recovery_agents"
}
