package model

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusExecuted RequestStatus = "executed"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusExpired  RequestStatus = "expired"
)

// Terminal reports whether no further transition may leave the status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusExecuted || s == RequestStatusRejected || s == RequestStatusExpired
}

// RecoveryRequest is one attempt by a designated recipient to take over
// access to a document. ApprovedAt is set the moment the approval count
// reaches the document's threshold; the cooling-off delay is measured from
// that instant, not from the individual approvals.
type RecoveryRequest struct {
	RequestID      string        `gorm:"primaryKey;not null"`
	DocumentID     string        `gorm:"not null;index:idx_recovery_requests_document_id"`
	Requester      string        `gorm:"not null"`
	RequestReason  string
	RequestTime    time.Time     `gorm:"not null"`
	Status         RequestStatus `gorm:"not null;default:pending"`
	ExpirationTime time.Time     `gorm:"not null"`
	ApprovedAt     *time.Time
}

func (RecoveryRequest) TableName() string {
	return "recovery_requests"
}

// ExpiredAt reports whether the request window has closed at the given time.
// Only pending and approved requests can expire.
func (r *RecoveryRequest) ExpiredAt(now time.Time) bool {
	if r.Status != RequestStatusPending && r.Status != RequestStatusApproved {
		return false
	}
	return now.After(r.ExpirationTime)
}
