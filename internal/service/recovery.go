package service

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/events"
	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultRequestWindow is how long a recovery request stays open when the
// document's settings do not override it.
const DefaultRequestWindow = 24 * time.Hour

// RecoveryConfig tunes the workflow policy knobs left open by the protocol:
// the request window fallback and the shape of the access grant produced by
// a successful execution.
type RecoveryConfig struct {
	RequestWindow time.Duration
	AccessLevel   string
	AccessTTL     time.Duration // 0 grants access without expiry
}

func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		RequestWindow: DefaultRequestWindow,
		AccessLevel:   model.AccessLevelRead,
		AccessTTL:     0,
	}
}

// NewRecoveryService creates a new RecoveryService.
func NewRecoveryService(
	store store.Store,
	clock clock.Clock,
	docs DocumentDirectory,
	access AccessGranter,
	publisher events.Publisher,
	collectors *metrics.Metrics,
	cfg RecoveryConfig,
) *RecoveryService {
	if cfg.RequestWindow <= 0 {
		cfg.RequestWindow = DefaultRequestWindow
	}
	if cfg.AccessLevel == "" {
		cfg.AccessLevel = model.AccessLevelRead
	}

	return &RecoveryService{
		store:   store,
		clock:   clock,
		docs:    docs,
		access:  access,
		events:  publisher,
		metrics: collectors,
		cfg:     cfg,
	}
}

// RecoveryService runs the threshold-based, time-delayed recovery workflow.
// Requests move pending -> approved -> executed, with pending -> rejected
// and pending/approved -> expired as the only other transitions. Expiration
// is checked lazily against the injected clock on every touch.
type RecoveryService struct {
	store   store.Store
	clock   clock.Clock
	docs    DocumentDirectory
	access  AccessGranter
	events  events.Publisher
	metrics *metrics.Metrics
	cfg     RecoveryConfig
}

type SetRecoverySettingsRequest struct {
	Caller               string
	DocumentID           string
	RecoveryThreshold    int
	RecoveryDelayHours   int
	DesignatedRecipients []string
	RequestWindowHours   int // 0 keeps the service-wide default
}

// SetRecoverySettings configures or overwrites a document's recovery
// settings. Document owner only.
func (r *RecoveryService) SetRecoverySettings(ctx context.Context, req *SetRecoverySettingsRequest) (*model.RecoverySettings, error) {
	if req.RecoveryThreshold < 1 {
		return nil, fmt.Errorf("%w: recovery threshold must be at least 1", ErrInvalidParameter)
	}
	if len(req.DesignatedRecipients) == 0 {
		return nil, fmt.Errorf("%w: designated recipients must not be empty", ErrInvalidParameter)
	}
	if req.RecoveryDelayHours < 0 {
		return nil, fmt.Errorf("%w: recovery delay must not be negative", ErrInvalidParameter)
	}

	owner, err := r.docs.GetDocumentOwner(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if owner != req.Caller {
		return nil, fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
	}

	settings := &model.RecoverySettings{
		DocumentID:         req.DocumentID,
		Owner:              owner,
		RecoveryThreshold:  req.RecoveryThreshold,
		RecoveryDelayHours: req.RecoveryDelayHours,
		RequestWindowHours: req.RequestWindowHours,
		LastUpdated:        r.clock.Now(),
	}
	if err := settings.SetRecipients(req.DesignatedRecipients); err != nil {
		return nil, err
	}

	if err := r.store.UpsertRecoverySettings(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

type CreateRecoveryRequestRequest struct {
	Caller        string
	RequestID     string
	DocumentID    string
	RequestReason string
}

// CreateRecoveryRequest opens a recovery request. The caller must be one of
// the document's designated recipients.
func (r *RecoveryService) CreateRecoveryRequest(ctx context.Context, req *CreateRecoveryRequestRequest) (*model.RecoveryRequest, error) {
	if req.RequestID == "" {
		return nil, fmt.Errorf("%w: request id is required", ErrInvalidParameter)
	}

	now := r.clock.Now()
	var request *model.RecoveryRequest

	err := r.store.Transaction(ctx, func(tx store.Store) error {
		settings, err := tx.GetRecoverySettings(ctx, req.DocumentID)
		if err != nil {
			if isMissing(err) {
				return fmt.Errorf("document %q: %w", req.DocumentID, ErrNotConfigured)
			}
			return err
		}

		recipients, err := settings.Recipients()
		if err != nil {
			return err
		}
		if !mapset.NewSet(recipients...).Contains(req.Caller) {
			return fmt.Errorf("caller %q is not a designated recipient for document %q: %w", req.Caller, req.DocumentID, ErrUnauthorized)
		}

		if _, err := tx.GetRecoveryRequest(ctx, req.RequestID); err == nil {
			return fmt.Errorf("recovery request %q: %w", req.RequestID, ErrAlreadyExists)
		} else if !isMissing(err) {
			return err
		}

		window := r.cfg.RequestWindow
		if settings.RequestWindowHours > 0 {
			window = time.Duration(settings.RequestWindowHours) * time.Hour
		}

		request = &model.RecoveryRequest{
			RequestID:      req.RequestID,
			DocumentID:     req.DocumentID,
			Requester:      req.Caller,
			RequestReason:  req.RequestReason,
			RequestTime:    now,
			Status:         model.RequestStatusPending,
			ExpirationTime: now.Add(window),
		}
		return tx.CreateRecoveryRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	r.metrics.RecoveryRequestsTotal.Inc()
	logrus.Infof("recovery request %s opened for document %s by %s", request.RequestID, request.DocumentID, request.Requester)
	return request, nil
}

// loadLiveRequest fetches a request and settles its expiration first. A
// lapsed request is persisted as expired and reported with ErrExpired, so
// no approval or execution can slip past the window.
func (r *RecoveryService) loadLiveRequest(ctx context.Context, requestID string) (*model.RecoveryRequest, error) {
	request, err := r.store.GetRecoveryRequest(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "recovery request", requestID)
	}

	if request.ExpiredAt(r.clock.Now()) {
		request.Status = model.RequestStatusExpired
		if err := r.store.UpdateRecoveryRequest(ctx, request); err != nil {
			return nil, err
		}
		r.metrics.RecoveryExpiredTotal.Inc()
		return nil, fmt.Errorf("recovery request %q: %w", requestID, ErrExpired)
	}

	return request, nil
}

type ApproveRecoveryRequestRequest struct {
	Caller    string
	RequestID string
	AgentID   string
	Notes     string
}

// ApproveRecoveryRequest records one agent's approval. The caller must
// control an active agent and may approve each request once. Reaching the
// document's threshold moves the request to approved; execution stays a
// separate call so the cooling-off delay is enforced independently.
func (r *RecoveryService) ApproveRecoveryRequest(ctx context.Context, req *ApproveRecoveryRequestRequest) (*model.RecoveryRequest, error) {
	now := r.clock.Now()

	request, err := r.loadLiveRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	err = r.store.Transaction(ctx, func(tx store.Store) error {
		if request.Status != model.RequestStatusPending {
			return fmt.Errorf("recovery request %q is %s: %w", req.RequestID, request.Status, ErrInvalidState)
		}

		agent, err := tx.GetAgent(ctx, req.AgentID)
		if err != nil {
			return notFound(err, "agent", req.AgentID)
		}
		if agent.Status != model.AgentStatusActive {
			return fmt.Errorf("agent %q is %s: %w", req.AgentID, agent.Status, ErrUnauthorized)
		}
		if agent.AgentAddress != req.Caller {
			return fmt.Errorf("caller %q does not control agent %q: %w", req.Caller, req.AgentID, ErrUnauthorized)
		}

		if _, err := tx.GetRecoveryApproval(ctx, req.RequestID, req.AgentID); err == nil {
			return fmt.Errorf("agent %q on request %q: %w", req.AgentID, req.RequestID, ErrDuplicateApproval)
		} else if !isMissing(err) {
			return err
		}

		if err := tx.CreateRecoveryApproval(ctx, &model.RecoveryApproval{
			RequestID:    req.RequestID,
			AgentID:      req.AgentID,
			ApprovalTime: now,
			Notes:        req.Notes,
		}); err != nil {
			return err
		}

		settings, err := tx.GetRecoverySettings(ctx, request.DocumentID)
		if err != nil {
			if isMissing(err) {
				return fmt.Errorf("document %q: %w", request.DocumentID, ErrNotConfigured)
			}
			return err
		}

		count, err := tx.CountRecoveryApprovals(ctx, req.RequestID)
		if err != nil {
			return err
		}

		if count >= int64(settings.RecoveryThreshold) {
			request.Status = model.RequestStatusApproved
			request.ApprovedAt = &now
			if err := tx.UpdateRecoveryRequest(ctx, request); err != nil {
				return err
			}
			logrus.Infof("recovery request %s reached threshold %d", req.RequestID, settings.RecoveryThreshold)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.RecoveryApprovalsTotal.Inc()
	return request, nil
}

type ExecuteRecoveryRequest struct {
	Caller        string
	RequestID     string
	RecoveryNotes string
}

// ExecuteRecovery completes an approved request once the cooling-off delay
// has elapsed, writing the audit event and granting the requester access.
// Re-executing an executed request fails with ErrInvalidState.
func (r *RecoveryService) ExecuteRecovery(ctx context.Context, req *ExecuteRecoveryRequest) (*model.RecoveryEvent, error) {
	now := r.clock.Now()

	request, err := r.loadLiveRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	var event *model.RecoveryEvent
	err = r.store.Transaction(ctx, func(tx store.Store) error {
		if request.Status != model.RequestStatusApproved {
			return fmt.Errorf("recovery request %q is %s: %w", req.RequestID, request.Status, ErrInvalidState)
		}

		if request.Requester != req.Caller {
			return fmt.Errorf("caller %q is not the requester of %q: %w", req.Caller, req.RequestID, ErrUnauthorized)
		}

		settings, err := tx.GetRecoverySettings(ctx, request.DocumentID)
		if err != nil {
			if isMissing(err) {
				return fmt.Errorf("document %q: %w", request.DocumentID, ErrNotConfigured)
			}
			return err
		}

		deadline := request.ApprovedAt.Add(time.Duration(settings.RecoveryDelayHours) * time.Hour)
		if now.Before(deadline) {
			return fmt.Errorf("recovery request %q executable at %s: %w", req.RequestID, deadline.Format(time.RFC3339), ErrDelayNotElapsed)
		}

		request.Status = model.RequestStatusExecuted
		if err := tx.UpdateRecoveryRequest(ctx, request); err != nil {
			return err
		}

		event = &model.RecoveryEvent{
			RequestID:      request.RequestID,
			DocumentID:     request.DocumentID,
			Recipient:      request.Requester,
			RecoveryTime:   now,
			RecoveryMethod: model.RecoveryMethodSecureTransfer,
			RecoveryNotes:  req.RecoveryNotes,
		}
		if err := tx.CreateRecoveryEvent(ctx, event); err != nil {
			return err
		}

		var expiresAt *time.Time
		if r.cfg.AccessTTL > 0 {
			expiry := now.Add(r.cfg.AccessTTL)
			expiresAt = &expiry
		}
		return r.access.GrantDocumentAccess(ctx, request.DocumentID, request.Requester, r.cfg.AccessLevel, "recovery", expiresAt)
	})
	if err != nil {
		return nil, err
	}

	r.metrics.RecoveryExecutedTotal.Inc()
	if err := r.events.Publish(ctx, events.Event{
		Type:       events.TypeRecoveryExecuted,
		DocumentID: event.DocumentID,
		Subject:    event.RequestID,
		Actor:      event.Recipient,
		Time:       now,
		Detail:     event.RecoveryMethod,
	}); err != nil {
		logrus.Errorf("publishing recovery event failed: %v", err)
	}

	logrus.Infof("recovery request %s executed, access granted to %s", event.RequestID, event.Recipient)
	return event, nil
}

type RejectRecoveryRequestRequest struct {
	Caller    string
	RequestID string
	Reason    string
}

// RejectRecoveryRequest closes a pending request. Callable by the document
// owner, giving the cooling-off rationale teeth: the true owner can shut a
// hostile request down before it gathers approvals.
func (r *RecoveryService) RejectRecoveryRequest(ctx context.Context, req *RejectRecoveryRequestRequest) (*model.RecoveryRequest, error) {
	request, err := r.loadLiveRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	err = r.store.Transaction(ctx, func(tx store.Store) error {
		if request.Status != model.RequestStatusPending {
			return fmt.Errorf("recovery request %q is %s: %w", req.RequestID, request.Status, ErrInvalidState)
		}

		owner, err := r.docs.GetDocumentOwner(ctx, request.DocumentID)
		if err != nil {
			return err
		}
		if owner != req.Caller {
			return fmt.Errorf("caller %q is not the owner of document %q: %w", req.Caller, request.DocumentID, ErrUnauthorized)
		}

		request.Status = model.RequestStatusRejected
		return tx.UpdateRecoveryRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// GetRecoverySettings retrieves a document's recovery settings.
func (r *RecoveryService) GetRecoverySettings(ctx context.Context, docID string) (*model.RecoverySettings, error) {
	settings, err := r.store.GetRecoverySettings(ctx, docID)
	if err != nil {
		return nil, notFound(err, "recovery settings", docID)
	}
	return settings, nil
}

// GetRecoveryRequest retrieves a request, transitioning it to expired first
// when its window has lapsed.
func (r *RecoveryService) GetRecoveryRequest(ctx context.Context, requestID string) (*model.RecoveryRequest, error) {
	request, err := r.store.GetRecoveryRequest(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "recovery request", requestID)
	}

	if request.ExpiredAt(r.clock.Now()) {
		request.Status = model.RequestStatusExpired
		if err := r.store.UpdateRecoveryRequest(ctx, request); err != nil {
			return nil, err
		}
		r.metrics.RecoveryExpiredTotal.Inc()
	}

	return request, nil
}

// GetRecoveryApproval retrieves the approval for (request, agent).
func (r *RecoveryService) GetRecoveryApproval(ctx context.Context, requestID, agentID string) (*model.RecoveryApproval, error) {
	approval, err := r.store.GetRecoveryApproval(ctx, requestID, agentID)
	if err != nil {
		return nil, notFound(err, "recovery approval", requestID+"/"+agentID)
	}
	return approval, nil
}

// GetRecoveryEvent retrieves the audit record for an executed request.
func (r *RecoveryService) GetRecoveryEvent(ctx context.Context, requestID string) (*model.RecoveryEvent, error) {
	event, err := r.store.GetRecoveryEvent(ctx, requestID)
	if err != nil {
		return nil, notFound(err, "recovery event", requestID)
	}
	return event, nil
}
