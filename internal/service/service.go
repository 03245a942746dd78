package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/emrgen/custody/internal/model"
	"gorm.io/gorm"
)

// HashSize is the decoded length of every document and backup fingerprint.
const HashSize = 32

// DocumentDirectory is the slice of the document registry the recovery and
// backup services depend on. They never mutate registry state through it.
type DocumentDirectory interface {
	// GetDocumentOwner returns the current owner of the document.
	GetDocumentOwner(ctx context.Context, docID string) (string, error)
	// GetDocumentStatus returns the lifecycle status of the document.
	GetDocumentStatus(ctx context.Context, docID string) (model.DocumentStatus, error)
}

// AccessGranter is the slice of access control the recovery engine produces
// to. Granting through it is the terminal effect of a successful recovery.
type AccessGranter interface {
	GrantDocumentAccess(ctx context.Context, docID, grantee, accessLevel, grantedBy string, expiresAt *time.Time) error
}

// encodeHash validates the fingerprint length and returns its hex form.
func encodeHash(hash []byte) (string, error) {
	if len(hash) != HashSize {
		return "", fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidParameter, HashSize, len(hash))
	}
	return hex.EncodeToString(hash), nil
}

// notFound translates a store miss into the domain error, leaving other
// errors untouched.
func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return err
}

// isMissing reports whether err is a store miss.
func isMissing(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// clampScore keeps trust and reliability scores inside [0, 100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
