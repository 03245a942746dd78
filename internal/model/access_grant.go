package model

import "time"

const (
	AccessLevelRead  = "read"
	AccessLevelWrite = "write"
	AccessLevelAdmin = "admin"
)

// AccessGrant is a time-bounded permission on a document. One grant per
// (document, grantee) pair, re-granting overwrites.
type AccessGrant struct {
	DocumentID  string     `gorm:"primaryKey;not null"`
	Grantee     string     `gorm:"primaryKey;not null"`
	AccessLevel string     `gorm:"not null"`
	GrantedBy   string     `gorm:"not null"`
	GrantedAt   time.Time  `gorm:"not null"`
	ExpiresAt   *time.Time // nil means the grant never expires
}

func (AccessGrant) TableName() string {
	return "access_grants"
}

// ActiveAt reports whether the grant is usable at the given time.
func (g *AccessGrant) ActiveAt(now time.Time) bool {
	return g.ExpiresAt == nil || now.Before(*g.ExpiresAt)
}
