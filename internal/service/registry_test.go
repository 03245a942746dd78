package service

import (
	"context"
	"testing"

	"github.com/emrgen/custody/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	docID := uuid.New().String()
	doc, err := f.registry.RegisterDocument(ctx, &RegisterDocumentRequest{
		Caller:       "alice",
		DocumentID:   docID,
		Name:         "will",
		DocumentHash: testHash(0x01),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.Owner)
	assert.Equal(t, model.DocumentStatusActive, doc.Status)
	assert.Equal(t, int64(0), doc.Version)

	// version history starts at the registration record
	v, err := f.registry.GetDocumentVersion(ctx, docID, 0)
	require.NoError(t, err)
	assert.Equal(t, "initial document registration", v.ChangeNotes)

	_, err = f.registry.RegisterDocument(ctx, &RegisterDocumentRequest{
		Caller:       "bob",
		DocumentID:   docID,
		Name:         "will",
		DocumentHash: testHash(0x01),
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegisterDocumentRejectsBadHash(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.RegisterDocument(context.Background(), &RegisterDocumentRequest{
		Caller:       "alice",
		DocumentID:   uuid.New().String(),
		Name:         "will",
		DocumentHash: []byte{0x01, 0x02},
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestUpdateDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	_, err := f.registry.UpdateDocument(ctx, &UpdateDocumentRequest{
		Caller:       "mallory",
		DocumentID:   docID,
		DocumentHash: testHash(0x02),
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	doc, err := f.registry.UpdateDocument(ctx, &UpdateDocumentRequest{
		Caller:       "alice",
		DocumentID:   docID,
		DocumentHash: testHash(0x02),
		ChangeNotes:  "amended",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)

	versions, err := f.registry.ListDocumentVersions(ctx, docID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "amended", versions[1].ChangeNotes)
}

func TestChangeDocumentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	_, err := f.registry.ChangeDocumentStatus(ctx, &ChangeDocumentStatusRequest{
		Caller:     "alice",
		DocumentID: docID,
		Status:     "destroyed",
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	doc, err := f.registry.ChangeDocumentStatus(ctx, &ChangeDocumentStatusRequest{
		Caller:     "alice",
		DocumentID: docID,
		Status:     model.DocumentStatusArchived,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusArchived, doc.Status)

	status, err := f.registry.GetDocumentStatus(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusArchived, status)
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	// prime the cache, the transfer must invalidate it
	owner, err := f.registry.GetDocumentOwner(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)

	_, err = f.registry.TransferOwnership(ctx, &TransferOwnershipRequest{
		Caller:     "alice",
		DocumentID: docID,
		NewOwner:   "bob",
	})
	require.NoError(t, err)

	owner, err = f.registry.GetDocumentOwner(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "bob", owner)
}

func TestGetDocumentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.GetDocument(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
}
