package service

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/custody/internal/model"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// configureRecovery sets recovery settings for docID owned by owner.
func (f *fixture) configureRecovery(t *testing.T, owner, docID string, threshold, delayHours int, recipients ...string) {
	t.Helper()

	_, err := f.recovery.SetRecoverySettings(context.Background(), &SetRecoverySettingsRequest{
		Caller:               owner,
		DocumentID:           docID,
		RecoveryThreshold:    threshold,
		RecoveryDelayHours:   delayHours,
		DesignatedRecipients: recipients,
	})
	require.NoError(t, err)
}

func (f *fixture) openRequest(t *testing.T, caller, docID string) string {
	t.Helper()

	request, err := f.recovery.CreateRecoveryRequest(context.Background(), &CreateRecoveryRequestRequest{
		Caller:        caller,
		RequestID:     uuid.New().String(),
		DocumentID:    docID,
		RequestReason: "owner lost keys",
	})
	require.NoError(t, err)

	return request.RequestID
}

func TestSetRecoverySettingsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	_, err := f.recovery.SetRecoverySettings(ctx, &SetRecoverySettingsRequest{
		Caller:               "alice",
		DocumentID:           docID,
		RecoveryThreshold:    0,
		DesignatedRecipients: []string{"bob"},
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.recovery.SetRecoverySettings(ctx, &SetRecoverySettingsRequest{
		Caller:            "alice",
		DocumentID:        docID,
		RecoveryThreshold: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = f.recovery.SetRecoverySettings(ctx, &SetRecoverySettingsRequest{
		Caller:               "mallory",
		DocumentID:           docID,
		RecoveryThreshold:    1,
		DesignatedRecipients: []string{"mallory"},
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the owner may overwrite settings at any time
	f.configureRecovery(t, "alice", docID, 1, 0, "bob")
	f.configureRecovery(t, "alice", docID, 2, 24, "bob", "carol")

	settings, err := f.recovery.GetRecoverySettings(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, 2, settings.RecoveryThreshold)

	recipients, err := settings.Recipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, recipients)
}

func TestCreateRecoveryRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	// no settings yet
	_, err := f.recovery.CreateRecoveryRequest(ctx, &CreateRecoveryRequestRequest{
		Caller:     "bob",
		RequestID:  uuid.New().String(),
		DocumentID: docID,
	})
	assert.ErrorIs(t, err, ErrNotConfigured)

	f.configureRecovery(t, "alice", docID, 1, 0, "bob")

	_, err = f.recovery.CreateRecoveryRequest(ctx, &CreateRecoveryRequestRequest{
		Caller:     "mallory",
		RequestID:  uuid.New().String(),
		DocumentID: docID,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	requestID := f.openRequest(t, "bob", docID)

	request, err := f.recovery.GetRecoveryRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, request.Status)
	assert.True(t, request.ExpirationTime.Equal(f.clock.Now().Add(DefaultRequestWindow)))

	_, err = f.recovery.CreateRecoveryRequest(ctx, &CreateRecoveryRequestRequest{
		Caller:     "bob",
		RequestID:  requestID,
		DocumentID: docID,
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestApprovalThresholdNeedsDistinctAgents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	agentA := f.newAgent(t, "carol")
	agentB := f.newAgent(t, "dave")
	f.configureRecovery(t, "alice", docID, 2, 0, "bob")
	requestID := f.openRequest(t, "bob", docID)

	request, err := f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   agentA,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, request.Status)

	// the same agent cannot count twice
	_, err = f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   agentA,
	})
	assert.ErrorIs(t, err, ErrDuplicateApproval)

	request, err = f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "dave",
		RequestID: requestID,
		AgentID:   agentB,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, request.Status)
	require.NotNil(t, request.ApprovedAt)
	assert.Equal(t, f.clock.Now(), *request.ApprovedAt)
}

func TestApprovalRequiresActiveControlledAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	agentID := f.newAgent(t, "carol")
	f.configureRecovery(t, "alice", docID, 1, 0, "bob")
	requestID := f.openRequest(t, "bob", docID)

	_, err := f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   uuid.New().String(),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// only the controlling principal may act as the agent
	_, err = f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "mallory",
		RequestID: requestID,
		AgentID:   agentID,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.agents.UpdateAgentStatus(ctx, &UpdateAgentStatusRequest{
		Caller:  "carol",
		AgentID: agentID,
		Status:  model.AgentStatusSuspended,
	})
	require.NoError(t, err)

	_, err = f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   agentID,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExecuteRecoveryAfterDelay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	agentID := f.newAgent(t, "carol")
	f.configureRecovery(t, "alice", docID, 1, 2, "bob")
	requestID := f.openRequest(t, "bob", docID)

	_, err := f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   agentID,
	})
	require.NoError(t, err)

	// approved but the cooling-off delay has not passed
	_, err = f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:    "bob",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrDelayNotElapsed)

	f.clock.Advance(2*time.Hour - time.Second)
	_, err = f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:    "bob",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrDelayNotElapsed)

	// only the requester may execute
	f.clock.Advance(time.Second)
	_, err = f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:    "carol",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	event, err := f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:        "bob",
		RequestID:     requestID,
		RecoveryNotes: "handed over",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", event.Recipient)
	assert.Equal(t, model.RecoveryMethodSecureTransfer, event.RecoveryMethod)

	// execution granted the requester access
	ok, err := f.access.CheckAccess(ctx, docID, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	// the audit record is queryable and execution is one-shot
	_, err = f.recovery.GetRecoveryEvent(ctx, requestID)
	require.NoError(t, err)

	_, err = f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:    "bob",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RecoveryExecutedTotal))
}

func TestExecuteRequiresApproval(t *testing.T) {
	f := newFixture(t)
	docID := f.newDocument(t, "alice")
	f.configureRecovery(t, "alice", docID, 1, 0, "bob")
	requestID := f.openRequest(t, "bob", docID)

	_, err := f.recovery.ExecuteRecovery(context.Background(), &ExecuteRecoveryRequest{
		Caller:    "bob",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecoveryRequestExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	agentID := f.newAgent(t, "carol")
	f.configureRecovery(t, "alice", docID, 1, 0, "bob")
	requestID := f.openRequest(t, "bob", docID)

	f.clock.Advance(DefaultRequestWindow + time.Minute)

	_, err := f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   agentID,
	})
	assert.ErrorIs(t, err, ErrExpired)

	// the transition is persisted, not just reported
	request, err := f.recovery.GetRecoveryRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusExpired, request.Status)
	assert.True(t, request.Status.Terminal())

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RecoveryExpiredTotal))
}

func TestRequestWindowOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")

	_, err := f.recovery.SetRecoverySettings(ctx, &SetRecoverySettingsRequest{
		Caller:               "alice",
		DocumentID:           docID,
		RecoveryThreshold:    1,
		DesignatedRecipients: []string{"bob"},
		RequestWindowHours:   1,
	})
	require.NoError(t, err)

	requestID := f.openRequest(t, "bob", docID)

	request, err := f.recovery.GetRecoveryRequest(ctx, requestID)
	require.NoError(t, err)
	assert.True(t, request.ExpirationTime.Equal(f.clock.Now().Add(time.Hour)))

	f.clock.Advance(2 * time.Hour)
	request, err = f.recovery.GetRecoveryRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusExpired, request.Status)
}

func TestThresholdThenDelayScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	agentA := f.newAgent(t, "carol")
	agentB := f.newAgent(t, "dave")

	_, err := f.recovery.SetRecoverySettings(ctx, &SetRecoverySettingsRequest{
		Caller:               "alice",
		DocumentID:           docID,
		RecoveryThreshold:    2,
		RecoveryDelayHours:   24,
		DesignatedRecipients: []string{"bob"},
		RequestWindowHours:   72,
	})
	require.NoError(t, err)

	requestID := f.openRequest(t, "bob", docID)

	f.clock.Advance(time.Hour)
	request, err := f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   agentA,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, request.Status)

	f.clock.Advance(time.Hour)
	request, err = f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "dave",
		RequestID: requestID,
		AgentID:   agentB,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, request.Status)

	// the delay runs from the threshold-reaching approval at T+2h
	f.clock.Advance(23 * time.Hour)
	_, err = f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:    "bob",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrDelayNotElapsed)

	f.clock.Advance(time.Hour)
	event, err := f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:    "bob",
		RequestID: requestID,
	})
	require.NoError(t, err)
	assert.Equal(t, docID, event.DocumentID)

	_, err = f.recovery.ExecuteRecovery(ctx, &ExecuteRecoveryRequest{
		Caller:    "bob",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.RecoveryExecutedTotal))
}

func TestRejectRecoveryRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	docID := f.newDocument(t, "alice")
	agentID := f.newAgent(t, "carol")
	f.configureRecovery(t, "alice", docID, 1, 0, "bob")
	requestID := f.openRequest(t, "bob", docID)

	_, err := f.recovery.RejectRecoveryRequest(ctx, &RejectRecoveryRequestRequest{
		Caller:    "mallory",
		RequestID: requestID,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	request, err := f.recovery.RejectRecoveryRequest(ctx, &RejectRecoveryRequestRequest{
		Caller:    "alice",
		RequestID: requestID,
		Reason:    "owner is fine",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, request.Status)

	// a rejected request accepts no further approvals
	_, err = f.recovery.ApproveRecoveryRequest(ctx, &ApproveRecoveryRequestRequest{
		Caller:    "carol",
		RequestID: requestID,
		AgentID:   agentID,
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}
