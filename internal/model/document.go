package model

import (
	"time"

	"gorm.io/gorm"
)

type DocumentStatus string

const (
	DocumentStatusActive   DocumentStatus = "active"
	DocumentStatusArchived DocumentStatus = "archived"
	DocumentStatusRevoked  DocumentStatus = "revoked"
)

// Document registers the identity and fingerprint of a document.
// Only the hash is tracked, the document bytes live elsewhere.
type Document struct {
	gorm.Model
	ID           string         `gorm:"primaryKey;not null"`
	Owner        string         `gorm:"not null;index:idx_documents_owner"`
	Name         string         `gorm:"not null"`
	Description  string
	DocumentHash string         `gorm:"not null"` // hex encoded, 32 bytes decoded
	Category     string
	Version      int64          `gorm:"not null;default:0"`
	Status       DocumentStatus `gorm:"not null;default:active"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentVersion records every hash a document has carried. A new row is
// appended on each update, the document row itself holds only the latest.
type DocumentVersion struct {
	DocumentID   string    `gorm:"primaryKey;not null"`
	Version      int64     `gorm:"primaryKey;not null"`
	DocumentHash string    `gorm:"not null"`
	UpdatedBy    string    `gorm:"not null"`
	UpdateTime   time.Time `gorm:"not null"`
	ChangeNotes  string
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}
