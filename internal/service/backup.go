package service

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/events"
	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/store"
	"github.com/sirupsen/logrus"
)

// VerifierPolicy selects who may verify a backup.
type VerifierPolicy int

const (
	// VerifierAgentsAndOperators accepts any active recovery agent or the
	// backup location's operator.
	VerifierAgentsAndOperators VerifierPolicy = iota
	// VerifierAgentsOnly accepts only active recovery agents.
	VerifierAgentsOnly
	// VerifierOperatorOnly accepts only the backup location's operator.
	VerifierOperatorOnly
)

// recognizedEncryption lists the encryption labels accepted when a policy
// requires encrypted backups.
var recognizedEncryption = mapset.NewSet(
	"aes-256",
	"aes-128",
	"chacha20-poly1305",
)

// NewBackupService creates a new BackupService.
func NewBackupService(
	store store.Store,
	clock clock.Clock,
	docs DocumentDirectory,
	publisher events.Publisher,
	collectors *metrics.Metrics,
	verifiers VerifierPolicy,
) *BackupService {
	return &BackupService{
		store:     store,
		clock:     clock,
		docs:      docs,
		events:    publisher,
		metrics:   collectors,
		verifiers: verifiers,
	}
}

// BackupService keeps the backup assurance ledger: per-document policies,
// backup records per location, and verification attestations. It records
// claims about backups, it never stores or moves document content.
type BackupService struct {
	store     store.Store
	clock     clock.Clock
	docs      DocumentDirectory
	events    events.Publisher
	metrics   *metrics.Metrics
	verifiers VerifierPolicy
}

type CreateBackupPolicyRequest struct {
	Caller                     string
	DocumentID                 string
	MinBackupCount             int
	BackupFrequencyHours       int
	VerificationFrequencyHours int
	EncryptionRequired         bool
}

// CreateBackupPolicy sets or overwrites a document's backup policy.
// Document owner only.
func (b *BackupService) CreateBackupPolicy(ctx context.Context, req *CreateBackupPolicyRequest) (*model.BackupPolicy, error) {
	if req.MinBackupCount < 1 {
		return nil, fmt.Errorf("%w: minimum backup count must be at least 1", ErrInvalidParameter)
	}
	if req.BackupFrequencyHours < 0 || req.VerificationFrequencyHours < 0 {
		return nil, fmt.Errorf("%w: frequencies must not be negative", ErrInvalidParameter)
	}

	owner, err := b.docs.GetDocumentOwner(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if owner != req.Caller {
		return nil, fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
	}

	policy := &model.BackupPolicy{
		DocumentID:                 req.DocumentID,
		Owner:                      owner,
		MinBackupCount:             req.MinBackupCount,
		BackupFrequencyHours:       req.BackupFrequencyHours,
		VerificationFrequencyHours: req.VerificationFrequencyHours,
		EncryptionRequired:         req.EncryptionRequired,
		LastPolicyUpdate:           b.clock.Now(),
	}
	if err := b.store.UpsertBackupPolicy(ctx, policy); err != nil {
		return nil, err
	}

	return policy, nil
}

type RecordBackupRequest struct {
	Caller         string
	DocumentID     string
	LocationID     string
	BackupHash     []byte
	EncryptionType string
}

// RecordBackup records that a copy of a document exists at a location. The
// caller must be the document owner or the location operator, and the
// location must be active. Re-recording for the same (document, location)
// pair overwrites the previous record and resets its verification.
func (b *BackupService) RecordBackup(ctx context.Context, req *RecordBackupRequest) (*model.DocumentBackup, error) {
	hash, err := encodeHash(req.BackupHash)
	if err != nil {
		return nil, err
	}

	now := b.clock.Now()
	var backup *model.DocumentBackup

	err = b.store.Transaction(ctx, func(tx store.Store) error {
		owner, err := b.docs.GetDocumentOwner(ctx, req.DocumentID)
		if err != nil {
			return err
		}

		location, err := tx.GetLocation(ctx, req.LocationID)
		if err != nil {
			return notFound(err, "backup location", req.LocationID)
		}
		if location.Status != model.LocationStatusActive {
			return fmt.Errorf("backup location %q is %s: %w", req.LocationID, location.Status, ErrInvalidState)
		}

		if req.Caller != owner && req.Caller != location.Operator {
			return fmt.Errorf("caller %q is neither owner nor operator for document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
		}

		if policy, err := tx.GetBackupPolicy(ctx, req.DocumentID); err == nil {
			if policy.EncryptionRequired && !recognizedEncryption.Contains(req.EncryptionType) {
				return fmt.Errorf("policy for document %q requires encryption, got %q: %w", req.DocumentID, req.EncryptionType, ErrPolicyViolation)
			}
		} else if !isMissing(err) {
			return err
		}

		backup = &model.DocumentBackup{
			DocumentID:     req.DocumentID,
			LocationID:     req.LocationID,
			BackupHash:     hash,
			BackupTime:     now,
			Status:         model.BackupStatusRecorded,
			EncryptionType: req.EncryptionType,
		}
		return tx.UpsertDocumentBackup(ctx, backup)
	})
	if err != nil {
		return nil, err
	}

	b.metrics.BackupsRecordedTotal.Inc()
	logrus.Infof("backup of document %s recorded at location %s", req.DocumentID, req.LocationID)
	return backup, nil
}

type VerifyBackupRequest struct {
	Caller     string
	DocumentID string
	LocationID string
	Success    bool
	Notes      string
}

// VerifyBackup attests to a backup's integrity. Acceptable verifiers depend
// on the configured VerifierPolicy. The latest verification wins, the
// backup's status follows the result, and the location's reliability score
// moves with it.
func (b *BackupService) VerifyBackup(ctx context.Context, req *VerifyBackupRequest) (*model.BackupVerification, error) {
	now := b.clock.Now()
	var verification *model.BackupVerification

	err := b.store.Transaction(ctx, func(tx store.Store) error {
		backup, err := tx.GetDocumentBackup(ctx, req.DocumentID, req.LocationID)
		if err != nil {
			return notFound(err, "document backup", req.DocumentID+"/"+req.LocationID)
		}

		location, err := tx.GetLocation(ctx, req.LocationID)
		if err != nil {
			return notFound(err, "backup location", req.LocationID)
		}

		if err := b.authorizeVerifier(ctx, tx, req.Caller, location); err != nil {
			return err
		}

		result := model.VerificationResultSuccess
		if !req.Success {
			result = model.VerificationResultFailure
		}

		verification = &model.BackupVerification{
			DocumentID:         req.DocumentID,
			LocationID:         req.LocationID,
			VerifiedBy:         req.Caller,
			VerificationTime:   now,
			VerificationResult: result,
			Notes:              req.Notes,
		}
		if err := tx.UpsertBackupVerification(ctx, verification); err != nil {
			return err
		}

		if req.Success {
			backup.Status = model.BackupStatusVerified
			backup.VerifiedAt = &now
			location.ReliabilityScore = clampScore(location.ReliabilityScore + 1)
		} else {
			backup.Status = model.BackupStatusFailed
			backup.VerifiedAt = nil
			location.ReliabilityScore = clampScore(location.ReliabilityScore - 2)
		}

		if err := tx.UpsertDocumentBackup(ctx, backup); err != nil {
			return err
		}
		return tx.UpdateLocation(ctx, location)
	})
	if err != nil {
		return nil, err
	}

	b.metrics.VerificationsTotal.WithLabelValues(string(verification.VerificationResult)).Inc()
	if err := b.events.Publish(ctx, events.Event{
		Type:       events.TypeBackupVerified,
		DocumentID: req.DocumentID,
		Subject:    req.LocationID,
		Actor:      req.Caller,
		Time:       now,
		Detail:     string(verification.VerificationResult),
	}); err != nil {
		logrus.Errorf("publishing verification event failed: %v", err)
	}

	return verification, nil
}

// authorizeVerifier applies the configured verifier policy to the caller.
func (b *BackupService) authorizeVerifier(ctx context.Context, tx store.Store, caller string, location *model.BackupLocation) error {
	isOperator := caller == location.Operator

	isAgent := false
	if _, err := tx.GetActiveAgentByAddress(ctx, caller); err == nil {
		isAgent = true
	} else if !isMissing(err) {
		return err
	}

	ok := false
	switch b.verifiers {
	case VerifierAgentsOnly:
		ok = isAgent
	case VerifierOperatorOnly:
		ok = isOperator
	default:
		ok = isAgent || isOperator
	}
	if !ok {
		return fmt.Errorf("caller %q may not verify backups at location %q: %w", caller, location.LocationID, ErrUnauthorized)
	}
	return nil
}

// GetBackupPolicy retrieves a document's backup policy.
func (b *BackupService) GetBackupPolicy(ctx context.Context, docID string) (*model.BackupPolicy, error) {
	policy, err := b.store.GetBackupPolicy(ctx, docID)
	if err != nil {
		return nil, notFound(err, "backup policy", docID)
	}
	return policy, nil
}

// GetDocumentBackup retrieves the backup record for (document, location).
func (b *BackupService) GetDocumentBackup(ctx context.Context, docID, locationID string) (*model.DocumentBackup, error) {
	backup, err := b.store.GetDocumentBackup(ctx, docID, locationID)
	if err != nil {
		return nil, notFound(err, "document backup", docID+"/"+locationID)
	}
	return backup, nil
}

// ListDocumentBackups retrieves all backup records of a document.
func (b *BackupService) ListDocumentBackups(ctx context.Context, docID string) ([]*model.DocumentBackup, error) {
	return b.store.ListDocumentBackups(ctx, docID)
}

// GetBackupVerification retrieves the latest verification for (document, location).
func (b *BackupService) GetBackupVerification(ctx context.Context, docID, locationID string) (*model.BackupVerification, error) {
	verification, err := b.store.GetBackupVerification(ctx, docID, locationID)
	if err != nil {
		return nil, notFound(err, "backup verification", docID+"/"+locationID)
	}
	return verification, nil
}

// ComplianceReport summarizes how a document's backups measure against its
// policy. Advisory only, nothing blocks on it.
type ComplianceReport struct {
	DocumentID     string
	MinBackupCount int
	BackupCount    int
	VerifiedCount  int
	Compliant      bool
}

// Compliance reports a document's standing against its backup policy. A
// document with no policy has nothing to comply with and reports compliant.
func (b *BackupService) Compliance(ctx context.Context, docID string) (*ComplianceReport, error) {
	backups, err := b.store.ListDocumentBackups(ctx, docID)
	if err != nil {
		return nil, err
	}

	report := &ComplianceReport{
		DocumentID:  docID,
		BackupCount: len(backups),
	}
	for _, backup := range backups {
		if backup.Status == model.BackupStatusVerified {
			report.VerifiedCount++
		}
	}

	policy, err := b.store.GetBackupPolicy(ctx, docID)
	if err != nil {
		if isMissing(err) {
			report.Compliant = true
			return report, nil
		}
		return nil, err
	}

	report.MinBackupCount = policy.MinBackupCount
	report.Compliant = report.BackupCount >= policy.MinBackupCount
	return report, nil
}
