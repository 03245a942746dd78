package events

import (
	"context"
	"time"
)

const (
	TypeRecoveryExecuted = "recovery.executed"
	TypeBackupVerified   = "backup.verified"
)

// Event is the audit payload published when custody state changes hands.
type Event struct {
	Type       string    `json:"type"`
	DocumentID string    `json:"document_id"`
	Subject    string    `json:"subject"` // request id or location id
	Actor      string    `json:"actor"`
	Time       time.Time `json:"time"`
	Detail     string    `json:"detail,omitempty"`
}

// Publisher forwards audit events to an external stream. Publishing is
// best-effort bookkeeping; domain operations never fail on publish errors.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
