package model

import (
	"encoding/json"
	"time"
)

// RecoverySettings is the per-document recovery configuration. The owner may
// overwrite it at any time; doing so does not touch requests already in
// flight.
type RecoverySettings struct {
	DocumentID           string    `gorm:"primaryKey;not null"`
	Owner                string    `gorm:"not null"`
	RecoveryThreshold    int       `gorm:"not null"`
	RecoveryDelayHours   int       `gorm:"not null"`
	DesignatedRecipients string    `gorm:"not null"` // JSON array of principals
	RequestWindowHours   int       `gorm:"not null;default:0"` // 0 falls back to the global default
	LastUpdated          time.Time `gorm:"not null"`
}

func (RecoverySettings) TableName() string {
	return "recovery_settings"
}

// Recipients decodes the designated recipient list.
func (s *RecoverySettings) Recipients() ([]string, error) {
	var recipients []string
	if err := json.Unmarshal([]byte(s.DesignatedRecipients), &recipients); err != nil {
		return nil, err
	}
	return recipients, nil
}

// SetRecipients encodes the designated recipient list.
func (s *RecoverySettings) SetRecipients(recipients []string) error {
	data, err := json.Marshal(recipients)
	if err != nil {
		return err
	}
	s.DesignatedRecipients = string(data)
	return nil
}
