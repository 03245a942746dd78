package service

import (
	"context"
	"testing"

	"github.com/emrgen/custody/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	agentID := uuid.New().String()
	agent, err := f.agents.RegisterAgent(ctx, &RegisterAgentRequest{
		Caller:       "carol",
		AgentID:      agentID,
		Name:         "law office of carol",
		Organization: "carol llp",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", agent.AgentAddress)
	assert.Equal(t, model.AgentStatusActive, agent.Status)
	assert.Equal(t, DefaultTrustScore, agent.TrustScore)

	_, err = f.agents.RegisterAgent(ctx, &RegisterAgentRequest{
		Caller:  "dave",
		AgentID: agentID,
		Name:    "dave",
	})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateAgentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agentID := f.newAgent(t, "carol")

	_, err := f.agents.UpdateAgentStatus(ctx, &UpdateAgentStatusRequest{
		Caller:  "mallory",
		AgentID: agentID,
		Status:  model.AgentStatusRevoked,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the controlling principal can suspend its own agent
	agent, err := f.agents.UpdateAgentStatus(ctx, &UpdateAgentStatusRequest{
		Caller:  "carol",
		AgentID: agentID,
		Status:  model.AgentStatusSuspended,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AgentStatusSuspended, agent.Status)

	// governance can transition any agent
	agent, err = f.agents.UpdateAgentStatus(ctx, &UpdateAgentStatusRequest{
		Caller:  governance,
		AgentID: agentID,
		Status:  model.AgentStatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AgentStatusActive, agent.Status)
}

func TestUpdateTrustScoreClamped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agentID := f.newAgent(t, "carol")

	_, err := f.agents.UpdateTrustScore(ctx, &UpdateTrustScoreRequest{
		Caller:  "carol",
		AgentID: agentID,
		Delta:   10,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)

	agent, err := f.agents.UpdateTrustScore(ctx, &UpdateTrustScoreRequest{
		Caller:  governance,
		AgentID: agentID,
		Delta:   80,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, agent.TrustScore)

	agent, err = f.agents.UpdateTrustScore(ctx, &UpdateTrustScoreRequest{
		Caller:  governance,
		AgentID: agentID,
		Delta:   -150,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, agent.TrustScore)
}

func TestGetRecoveryAgentCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	agentID := f.newAgent(t, "carol")

	first, err := f.agents.GetRecoveryAgent(ctx, agentID)
	require.NoError(t, err)

	second, err := f.agents.GetRecoveryAgent(ctx, agentID)
	require.NoError(t, err)
	assert.Equal(t, first.AgentID, second.AgentID)
	assert.Equal(t, first.TrustScore, second.TrustScore)
}
