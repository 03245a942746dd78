package service

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/custody/internal/cache"
	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/model"
	"github.com/emrgen/custody/internal/store"
	"github.com/sirupsen/logrus"
)

// DefaultTrustScore is the neutral baseline a freshly registered agent
// starts from.
const DefaultTrustScore = 50

const agentCacheTTL = 30 * time.Minute

// NewAgentService creates a new AgentService. governance lists the
// principals allowed to run directory governance operations.
func NewAgentService(store store.Store, clock clock.Clock, kv cache.KV, governance []string) *AgentService {
	return &AgentService{
		store:      store,
		clock:      clock,
		cache:      kv,
		governance: mapset.NewSet(governance...),
	}
}

// AgentService is the directory of trusted third parties who may approve
// recovery requests.
type AgentService struct {
	store      store.Store
	clock      clock.Clock
	cache      cache.KV
	governance mapset.Set[string]
}

type RegisterAgentRequest struct {
	Caller       string
	AgentID      string
	Name         string
	Organization string
}

// RegisterAgent registers a new recovery agent controlled by the caller.
func (a *AgentService) RegisterAgent(ctx context.Context, req *RegisterAgentRequest) (*model.RecoveryAgent, error) {
	if req.AgentID == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: agent id and name are required", ErrInvalidParameter)
	}

	agent := &model.RecoveryAgent{
		AgentID:      req.AgentID,
		Name:         req.Name,
		Organization: req.Organization,
		AgentAddress: req.Caller,
		Status:       model.AgentStatusActive,
		TrustScore:   DefaultTrustScore,
		RegisteredAt: a.clock.Now(),
	}

	err := a.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetAgent(ctx, req.AgentID); err == nil {
			return fmt.Errorf("agent %q: %w", req.AgentID, ErrAlreadyExists)
		} else if !isMissing(err) {
			return err
		}

		return tx.CreateAgent(ctx, agent)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("registered recovery agent %s (%s)", agent.AgentID, agent.Name)
	return agent, nil
}

type UpdateAgentStatusRequest struct {
	Caller  string
	AgentID string
	Status  model.AgentStatus
}

// UpdateAgentStatus transitions an agent to a new status. Callable by
// governance or by the agent's own controller.
func (a *AgentService) UpdateAgentStatus(ctx context.Context, req *UpdateAgentStatusRequest) (*model.RecoveryAgent, error) {
	switch req.Status {
	case model.AgentStatusActive, model.AgentStatusSuspended, model.AgentStatusRevoked:
	default:
		return nil, fmt.Errorf("%w: unknown agent status %q", ErrInvalidParameter, req.Status)
	}

	var agent *model.RecoveryAgent
	err := a.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		agent, err = tx.GetAgent(ctx, req.AgentID)
		if err != nil {
			return notFound(err, "agent", req.AgentID)
		}

		if !a.governance.Contains(req.Caller) && agent.AgentAddress != req.Caller {
			return fmt.Errorf("caller %q may not administer agent %q: %w", req.Caller, req.AgentID, ErrUnauthorized)
		}

		agent.Status = req.Status
		return tx.UpdateAgent(ctx, agent)
	})
	if err != nil {
		return nil, err
	}

	a.invalidate(ctx, req.AgentID)
	return agent, nil
}

type UpdateTrustScoreRequest struct {
	Caller  string
	AgentID string
	Delta   int
}

// UpdateTrustScore adjusts an agent's trust score by delta, clamped to
// [0, 100]. Governance only.
func (a *AgentService) UpdateTrustScore(ctx context.Context, req *UpdateTrustScoreRequest) (*model.RecoveryAgent, error) {
	if !a.governance.Contains(req.Caller) {
		return nil, fmt.Errorf("caller %q is not a governance principal: %w", req.Caller, ErrUnauthorized)
	}

	var agent *model.RecoveryAgent
	err := a.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		agent, err = tx.GetAgent(ctx, req.AgentID)
		if err != nil {
			return notFound(err, "agent", req.AgentID)
		}

		agent.TrustScore = clampScore(agent.TrustScore + req.Delta)
		return tx.UpdateAgent(ctx, agent)
	})
	if err != nil {
		return nil, err
	}

	a.invalidate(ctx, req.AgentID)
	return agent, nil
}

// GetRecoveryAgent retrieves an agent by ID, read-through cached.
func (a *AgentService) GetRecoveryAgent(ctx context.Context, agentID string) (*model.RecoveryAgent, error) {
	if a.cache != nil {
		var cached model.RecoveryAgent
		hit, err := a.cache.Get(ctx, cache.AgentKey(agentID), &cached)
		if err != nil {
			logrus.Errorf("agent cache read failed: %v", err)
		} else if hit {
			return &cached, nil
		}
	}

	agent, err := a.store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, notFound(err, "agent", agentID)
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, cache.AgentKey(agentID), agent, agentCacheTTL); err != nil {
			logrus.Errorf("agent cache write failed: %v", err)
		}
	}

	return agent, nil
}

func (a *AgentService) invalidate(ctx context.Context, agentID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Del(ctx, cache.AgentKey(agentID)); err != nil {
		logrus.Errorf("agent cache invalidation failed: %v", err)
	}
}
