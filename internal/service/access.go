package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/store"
)

var _ AccessGranter = (*AccessService)(nil)

// NewAccessService creates a new AccessService.
func NewAccessService(store store.Store, clock clock.Clock, docs DocumentDirectory) *AccessService {
	return &AccessService{
		store: store,
		clock: clock,
		docs:  docs,
	}
}

// AccessService grants, revokes and checks time-bounded access to documents.
type AccessService struct {
	store store.Store
	clock clock.Clock
	docs  DocumentDirectory
}

type GrantAccessRequest struct {
	Caller      string
	DocumentID  string
	Grantee     string
	AccessLevel string
	ExpiresAt   *time.Time
}

// GrantAccess creates or overwrites the grant for (document, grantee).
// Owner only.
func (a *AccessService) GrantAccess(ctx context.Context, req *GrantAccessRequest) (*model.AccessGrant, error) {
	switch req.AccessLevel {
	case model.AccessLevelRead, model.AccessLevelWrite, model.AccessLevelAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown access level %q", ErrInvalidParameter, req.AccessLevel)
	}

	owner, err := a.docs.GetDocumentOwner(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if owner != req.Caller {
		return nil, fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
	}

	grant := &model.AccessGrant{
		DocumentID:  req.DocumentID,
		Grantee:     req.Grantee,
		AccessLevel: req.AccessLevel,
		GrantedBy:   req.Caller,
		GrantedAt:   a.clock.Now(),
		ExpiresAt:   req.ExpiresAt,
	}

	if err := a.store.UpsertAccessGrant(ctx, grant); err != nil {
		return nil, err
	}

	return grant, nil
}

type RevokeAccessRequest struct {
	Caller     string
	DocumentID string
	Grantee    string
}

// RevokeAccess removes the grant for (document, grantee). Owner only.
func (a *AccessService) RevokeAccess(ctx context.Context, req *RevokeAccessRequest) error {
	owner, err := a.docs.GetDocumentOwner(ctx, req.DocumentID)
	if err != nil {
		return err
	}
	if owner != req.Caller {
		return fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
	}

	if _, err := a.store.GetAccessGrant(ctx, req.DocumentID, req.Grantee); err != nil {
		return notFound(err, "access grant", req.Grantee)
	}

	return a.store.DeleteAccessGrant(ctx, req.DocumentID, req.Grantee)
}

// CheckAccess reports whether principal may read the document at the current
// time. The owner always has access; everyone else needs an unexpired grant.
func (a *AccessService) CheckAccess(ctx context.Context, docID, principal string) (bool, error) {
	owner, err := a.docs.GetDocumentOwner(ctx, docID)
	if err != nil {
		return false, err
	}
	if owner == principal {
		return true, nil
	}

	grant, err := a.store.GetAccessGrant(ctx, docID, principal)
	if err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, err
	}

	return grant.ActiveAt(a.clock.Now()), nil
}

// GetAccessGrant retrieves the grant for (document, grantee).
func (a *AccessService) GetAccessGrant(ctx context.Context, docID, grantee string) (*model.AccessGrant, error) {
	grant, err := a.store.GetAccessGrant(ctx, docID, grantee)
	if err != nil {
		return nil, notFound(err, "access grant", grantee)
	}
	return grant, nil
}

// GrantDocumentAccess implements AccessGranter. It bypasses the owner check:
// the only caller is the recovery engine, whose own state machine already
// gates the transfer.
func (a *AccessService) GrantDocumentAccess(ctx context.Context, docID, grantee, accessLevel, grantedBy string, expiresAt *time.Time) error {
	return a.store.UpsertAccessGrant(ctx, &model.AccessGrant{
		DocumentID:  docID,
		Grantee:     grantee,
		AccessLevel: accessLevel,
		GrantedBy:   grantedBy,
		GrantedAt:   a.clock.Now(),
		ExpiresAt:   expiresAt,
	})
}
