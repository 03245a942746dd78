package service

import (
	"context"
	"testing"

	"github.com/emrgen/custody/internal/jobs"
	"github.com/emrgen/custody/internal/model"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBackupPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	_, err := f.backup.CreateBackupPolicy(ctx, &CreateBackupPolicyRequest{
		Caller:         "alice",
		DocumentID:     docID,
		MinBackupCount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.backup.CreateBackupPolicy(ctx, &CreateBackupPolicyRequest{
		Caller:         "mallory",
		DocumentID:     docID,
		MinBackupCount: 1,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	policy, err := f.backup.CreateBackupPolicy(ctx, &CreateBackupPolicyRequest{
		Caller:             "alice",
		DocumentID:         docID,
		MinBackupCount:     2,
		EncryptionRequired: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, policy.MinBackupCount)

	// overwriting is allowed
	policy, err = f.backup.CreateBackupPolicy(ctx, &CreateBackupPolicyRequest{
		Caller:         "alice",
		DocumentID:     docID,
		MinBackupCount: 3,
	})
	require.NoError(t, err)

	policy, err = f.backup.GetBackupPolicy(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 3, policy.MinBackupCount)
	assert.False(t, policy.EncryptionRequired)
}

func TestRecordBackup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	locationID := f.newLocation(t, "oscar")

	_, err := f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: uuid.New().String(),
		BackupHash: testHash(0x22),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "mallory",
		DocumentID: docID,
		LocationID: locationID,
		BackupHash: testHash(0x22),
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	backup, err := f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: locationID,
		BackupHash: testHash(0x22),
	})
	require.NoError(t, err)
	assert.Equal(t, model.BackupStatusRecorded, backup.Status)
	assert.Nil(t, backup.VerifiedAt)

	// the location operator may record as well, overwriting the claim
	backup, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "oscar",
		DocumentID: docID,
		LocationID: locationID,
		BackupHash: testHash(0x33),
	})
	require.NoError(t, err)

	backups, err := f.backup.ListDocumentBackups(ctx, docID)
	require.NoError(t, err)
	require.Len(t, backups, 1)

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.BackupsRecordedTotal))
}

func TestRecordBackupNeedsActiveLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	locationID := f.newLocation(t, "oscar")

	_, err := f.location.UpdateLocationStatus(ctx, &UpdateLocationStatusRequest{
		Caller:     "oscar",
		LocationID: locationID,
		Status:     model.LocationStatusInactive,
	})
	require.NoError(t, err)

	_, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: locationID,
		BackupHash: testHash(0x22),
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordBackupEncryptionPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	locationID := f.newLocation(t, "oscar")

	_, err := f.backup.CreateBackupPolicy(ctx, &CreateBackupPolicyRequest{
		Caller:             "alice",
		DocumentID:         docID,
		MinBackupCount:     1,
		EncryptionRequired: true,
	})
	require.NoError(t, err)

	_, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: locationID,
		BackupHash: testHash(0x22),
	})
	assert.ErrorIs(t, err, ErrPolicyViolation)

	backup, err := f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:         "alice",
		DocumentID:     docID,
		LocationID:     locationID,
		BackupHash:     testHash(0x22),
		EncryptionType: "aes-256",
	})
	require.NoError(t, err)
	assert.Equal(t, "aes-256", backup.EncryptionType)
}

func TestVerifyBackup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	locationID := f.newLocation(t, "oscar")
	f.newAgent(t, "carol")

	_, err := f.backup.VerifyBackup(ctx, &VerifyBackupRequest{
		Caller:     "oscar",
		DocumentID: docID,
		LocationID: locationID,
		Success:    true,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: locationID,
		BackupHash: testHash(0x22),
	})
	require.NoError(t, err)

	// neither operator nor agent
	_, err = f.backup.VerifyBackup(ctx, &VerifyBackupRequest{
		Caller:     "mallory",
		DocumentID: docID,
		LocationID: locationID,
		Success:    true,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the operator verifies, the backup and the location both move
	verification, err := f.backup.VerifyBackup(ctx, &VerifyBackupRequest{
		Caller:     "oscar",
		DocumentID: docID,
		LocationID: locationID,
		Success:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.VerificationResultSuccess, verification.VerificationResult)

	backup, err := f.backup.GetDocumentBackup(ctx, docID, locationID)
	require.NoError(t, err)
	assert.Equal(t, model.BackupStatusVerified, backup.Status)
	assert.NotNil(t, backup.VerifiedAt)

	location, err := f.location.GetBackupLocation(ctx, locationID)
	require.NoError(t, err)
	assert.Equal(t, DefaultReliabilityScore+1, location.ReliabilityScore)

	// a later failed verification by an agent wins
	verification, err = f.backup.VerifyBackup(ctx, &VerifyBackupRequest{
		Caller:     "carol",
		DocumentID: docID,
		LocationID: locationID,
		Success:    false,
		Notes:      "hash mismatch",
	})
	require.NoError(t, err)
	assert.Equal(t, model.VerificationResultFailure, verification.VerificationResult)

	latest, err := f.backup.GetBackupVerification(ctx, docID, locationID)
	require.NoError(t, err)
	assert.Equal(t, "carol", latest.VerifiedBy)
	assert.Equal(t, model.VerificationResultFailure, latest.VerificationResult)

	backup, err = f.backup.GetDocumentBackup(ctx, docID, locationID)
	require.NoError(t, err)
	assert.Equal(t, model.BackupStatusFailed, backup.Status)
	assert.Nil(t, backup.VerifiedAt)

	location, err = f.location.GetBackupLocation(ctx, locationID)
	require.NoError(t, err)
	assert.Equal(t, DefaultReliabilityScore-1, location.ReliabilityScore)
}

func TestCompliance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	// no policy, nothing to violate
	report, err := f.backup.Compliance(ctx, docID)
	require.NoError(t, err)
	assert.True(t, report.Compliant)

	_, err = f.backup.CreateBackupPolicy(ctx, &CreateBackupPolicyRequest{
		Caller:         "alice",
		DocumentID:     docID,
		MinBackupCount: 2,
	})
	require.NoError(t, err)

	locationA := f.newLocation(t, "oscar")
	_, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: locationA,
		BackupHash: testHash(0x22),
	})
	require.NoError(t, err)

	report, err = f.backup.Compliance(ctx, docID)
	require.NoError(t, err)
	assert.False(t, report.Compliant)
	assert.Equal(t, 1, report.BackupCount)

	locationB := f.newLocation(t, "peggy")
	_, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: locationB,
		BackupHash: testHash(0x22),
	})
	require.NoError(t, err)

	report, err = f.backup.Compliance(ctx, docID)
	require.NoError(t, err)
	assert.True(t, report.Compliant)
	assert.Equal(t, 2, report.BackupCount)
}

func TestComplianceSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	locationID := f.newLocation(t, "oscar")

	_, err := f.backup.CreateBackupPolicy(ctx, &CreateBackupPolicyRequest{
		Caller:         "alice",
		DocumentID:     docID,
		MinBackupCount: 2,
	})
	require.NoError(t, err)

	_, err = f.backup.RecordBackup(ctx, &RecordBackupRequest{
		Caller:     "alice",
		DocumentID: docID,
		LocationID: locationID,
		BackupHash: testHash(0x22),
	})
	require.NoError(t, err)

	task := jobs.NewComplianceTask(f.store, f.metrics, "@hourly")
	task.Run()

	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.NonCompliantDocuments), float64(1))
}
