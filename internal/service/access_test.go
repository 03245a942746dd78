package service

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/custody/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantAndCheckAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	// owner has access without any grant
	ok, err := f.access.CheckAccess(ctx, docID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.access.CheckAccess(ctx, docID, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	expiry := f.clock.Now().Add(time.Hour)
	grant, err := f.access.GrantAccess(ctx, &GrantAccessRequest{
		Caller:      "alice",
		DocumentID:  docID,
		Grantee:     "bob",
		AccessLevel: model.AccessLevelRead,
		ExpiresAt:   &expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccessLevelRead, grant.AccessLevel)

	ok, err = f.access.CheckAccess(ctx, docID, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	// the grant lapses with the clock, the row stays
	f.clock.Advance(2 * time.Hour)
	ok, err = f.access.CheckAccess(ctx, docID, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.access.GetAccessGrant(ctx, docID, "bob")
	assert.NoError(t, err)
}

func TestGrantAccessOwnerOnly(t *testing.T) {
	f := newFixture(t)
	docID := f.newDocument(t, "alice")

	_, err := f.access.GrantAccess(context.Background(), &GrantAccessRequest{
		Caller:      "mallory",
		DocumentID:  docID,
		Grantee:     "mallory",
		AccessLevel: model.AccessLevelAdmin,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestGrantAccessRejectsUnknownLevel(t *testing.T) {
	f := newFixture(t)
	docID := f.newDocument(t, "alice")

	_, err := f.access.GrantAccess(context.Background(), &GrantAccessRequest{
		Caller:      "alice",
		DocumentID:  docID,
		Grantee:     "bob",
		AccessLevel: "owner",
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRevokeAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	_, err := f.access.GrantAccess(ctx, &GrantAccessRequest{
		Caller:      "alice",
		DocumentID:  docID,
		Grantee:     "bob",
		AccessLevel: model.AccessLevelWrite,
	})
	require.NoError(t, err)

	err = f.access.RevokeAccess(ctx, &RevokeAccessRequest{
		Caller:     "mallory",
		DocumentID: docID,
		Grantee:    "bob",
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = f.access.RevokeAccess(ctx, &RevokeAccessRequest{
		Caller:     "alice",
		DocumentID: docID,
		Grantee:    "bob",
	})
	require.NoError(t, err)

	ok, err := f.access.CheckAccess(ctx, docID, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.access.RevokeAccess(ctx, &RevokeAccessRequest{
		Caller:     "alice",
		DocumentID: docID,
		Grantee:    "bob",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
