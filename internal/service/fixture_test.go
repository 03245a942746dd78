package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/events"
	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/store"
	"github.com/emrgen/custody/internal/tester"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const governance = "gov"

type fixture struct {
	clock    *clock.Manual
	metrics  *metrics.Metrics
	registry *RegistryService
	access   *AccessService
	agents   *AgentService
	location *LocationService
	recovery *RecoveryService
	backup   *BackupService
	store    store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.NewGormStore(tester.TestDB())
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	collectors := metrics.New(prometheus.NewRegistry())
	kv := tester.KV()

	registry := NewRegistryService(st, clk, kv)
	access := NewAccessService(st, clk, registry)

	return &fixture{
		clock:    clk,
		metrics:  collectors,
		registry: registry,
		access:   access,
		agents:   NewAgentService(st, clk, kv, []string{governance}),
		location: NewLocationService(st, clk, []string{governance}),
		recovery: NewRecoveryService(st, clk, registry, access, events.Nop{}, collectors, DefaultRecoveryConfig()),
		backup:   NewBackupService(st, clk, registry, events.Nop{}, collectors, VerifierAgentsAndOperators),
		store:    st,
	}
}

func testHash(b byte) []byte {
	return bytes.Repeat([]byte{b}, HashSize)
}

// newDocument registers a fresh document owned by owner and returns its id.
func (f *fixture) newDocument(t *testing.T, owner string) string {
	t.Helper()

	doc, err := f.registry.RegisterDocument(context.Background(), &RegisterDocumentRequest{
		Caller:       owner,
		DocumentID:   uuid.New().String(),
		Name:         "deed of trust",
		DocumentHash: testHash(0x11),
		Category:     "legal",
	})
	require.NoError(t, err)

	return doc.ID
}

// newAgent registers a fresh agent controlled by controller and returns its id.
func (f *fixture) newAgent(t *testing.T, controller string) string {
	t.Helper()

	agent, err := f.agents.RegisterAgent(context.Background(), &RegisterAgentRequest{
		Caller:  controller,
		AgentID: uuid.New().String(),
		Name:    "notary",
	})
	require.NoError(t, err)

	return agent.AgentID
}

// newLocation registers a fresh active location operated by operator.
func (f *fixture) newLocation(t *testing.T, operator string) string {
	t.Helper()

	location, err := f.location.RegisterLocation(context.Background(), &RegisterLocationRequest{
		Caller:     operator,
		LocationID: uuid.New().String(),
		Name:       "vault",
	})
	require.NoError(t, err)

	return location.LocationID
}
