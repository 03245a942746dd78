package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emrgen/custody/internal/cache"
	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/store"
	"github.com/sirupsen/logrus"
)

const documentCacheTTL = time.Hour

var _ DocumentDirectory = (*RegistryService)(nil)

// NewRegistryService creates a new RegistryService.
func NewRegistryService(store store.Store, clock clock.Clock, kv cache.KV) *RegistryService {
	return &RegistryService{
		store: store,
		clock: clock,
		cache: kv,
	}
}

// RegistryService owns document identity, fingerprint and status. Recovery
// and backup reference documents through it but never mutate them, except
// for the ownership transfer at the end of a successful recovery.
type RegistryService struct {
	store store.Store
	clock clock.Clock
	cache cache.KV
}

type RegisterDocumentRequest struct {
	Caller       string
	DocumentID   string
	Name         string
	Description  string
	DocumentHash []byte
	Category     string
}

// RegisterDocument registers a new document with the caller as owner.
func (r *RegistryService) RegisterDocument(ctx context.Context, req *RegisterDocumentRequest) (*model.Document, error) {
	if req.DocumentID == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: document id and name are required", ErrInvalidParameter)
	}

	hash, err := encodeHash(req.DocumentHash)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	doc := &model.Document{
		ID:           req.DocumentID,
		Owner:        req.Caller,
		Name:         req.Name,
		Description:  req.Description,
		DocumentHash: hash,
		Category:     req.Category,
		Version:      0,
		Status:       model.DocumentStatusActive,
	}

	err = r.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetDocument(ctx, req.DocumentID); err == nil {
			return fmt.Errorf("document %q: %w", req.DocumentID, ErrAlreadyExists)
		} else if !isMissing(err) {
			return err
		}

		if err := tx.CreateDocument(ctx, doc); err != nil {
			return err
		}

		return tx.CreateDocumentVersion(ctx, &model.DocumentVersion{
			DocumentID:   doc.ID,
			Version:      0,
			DocumentHash: hash,
			UpdatedBy:    req.Caller,
			UpdateTime:   now,
			ChangeNotes:  "initial document registration",
		})
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

type UpdateDocumentRequest struct {
	Caller       string
	DocumentID   string
	Name         string
	Description  string
	DocumentHash []byte
	ChangeNotes  string
}

// UpdateDocument records a new fingerprint for the document and appends a
// version record. Owner only.
func (r *RegistryService) UpdateDocument(ctx context.Context, req *UpdateDocumentRequest) (*model.Document, error) {
	hash, err := encodeHash(req.DocumentHash)
	if err != nil {
		return nil, err
	}

	var doc *model.Document
	err = r.store.Transaction(ctx, func(tx store.Store) error {
		doc, err = tx.GetDocument(ctx, req.DocumentID)
		if err != nil {
			return notFound(err, "document", req.DocumentID)
		}

		if doc.Owner != req.Caller {
			return fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
		}

		doc.Version++
		doc.DocumentHash = hash
		if req.Name != "" {
			doc.Name = req.Name
		}
		if req.Description != "" {
			doc.Description = req.Description
		}

		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}

		return tx.CreateDocumentVersion(ctx, &model.DocumentVersion{
			DocumentID:   doc.ID,
			Version:      doc.Version,
			DocumentHash: hash,
			UpdatedBy:    req.Caller,
			UpdateTime:   r.clock.Now(),
			ChangeNotes:  req.ChangeNotes,
		})
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, req.DocumentID)
	return doc, nil
}

type ChangeDocumentStatusRequest struct {
	Caller     string
	DocumentID string
	Status     model.DocumentStatus
}

// ChangeDocumentStatus moves the document to a new lifecycle status. Owner only.
func (r *RegistryService) ChangeDocumentStatus(ctx context.Context, req *ChangeDocumentStatusRequest) (*model.Document, error) {
	switch req.Status {
	case model.DocumentStatusActive, model.DocumentStatusArchived, model.DocumentStatusRevoked:
	default:
		return nil, fmt.Errorf("%w: unknown document status %q", ErrInvalidParameter, req.Status)
	}

	var doc *model.Document
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, req.DocumentID)
		if err != nil {
			return notFound(err, "document", req.DocumentID)
		}

		if doc.Owner != req.Caller {
			return fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
		}

		doc.Status = req.Status
		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, req.DocumentID)
	return doc, nil
}

type TransferOwnershipRequest struct {
	Caller     string
	DocumentID string
	NewOwner   string
}

// TransferOwnership hands the document to a new owner. Owner only.
func (r *RegistryService) TransferOwnership(ctx context.Context, req *TransferOwnershipRequest) (*model.Document, error) {
	if req.NewOwner == "" {
		return nil, fmt.Errorf("%w: new owner is required", ErrInvalidParameter)
	}

	var doc *model.Document
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, req.DocumentID)
		if err != nil {
			return notFound(err, "document", req.DocumentID)
		}

		if doc.Owner != req.Caller {
			return fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
		}

		doc.Owner = req.NewOwner
		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, req.DocumentID)
	return doc, nil
}

// GetDocument retrieves a document, read-through cached.
func (r *RegistryService) GetDocument(ctx context.Context, docID string) (*model.Document, error) {
	if r.cache != nil {
		var cached model.Document
		hit, err := r.cache.Get(ctx, cache.DocumentKey(docID), &cached)
		if err != nil {
			logrus.Errorf("document cache read failed: %v", err)
		} else if hit {
			return &cached, nil
		}
	}

	doc, err := r.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, notFound(err, "document", docID)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cache.DocumentKey(docID), doc, documentCacheTTL); err != nil {
			logrus.Errorf("document cache write failed: %v", err)
		}
	}

	return doc, nil
}

// GetDocumentVersion retrieves one version record of a document.
func (r *RegistryService) GetDocumentVersion(ctx context.Context, docID string, version int64) (*model.DocumentVersion, error) {
	v, err := r.store.GetDocumentVersion(ctx, docID, version)
	if err != nil {
		return nil, notFound(err, "document version", fmt.Sprintf("%s@%d", docID, version))
	}
	return v, nil
}

// ListDocumentVersions retrieves the full version history of a document.
func (r *RegistryService) ListDocumentVersions(ctx context.Context, docID string) ([]*model.DocumentVersion, error) {
	return r.store.ListDocumentVersions(ctx, docID)
}

// GetDocumentOwner implements DocumentDirectory.
func (r *RegistryService) GetDocumentOwner(ctx context.Context, docID string) (string, error) {
	doc, err := r.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	return doc.Owner, nil
}

// GetDocumentStatus implements DocumentDirectory.
func (r *RegistryService) GetDocumentStatus(ctx context.Context, docID string) (model.DocumentStatus, error) {
	doc, err := r.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	return doc.Status, nil
}

func (r *RegistryService) invalidate(ctx context.Context, docID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, cache.DocumentKey(docID)); err != nil {
		logrus.Errorf("document cache invalidation failed: %v", err)
	}
}
