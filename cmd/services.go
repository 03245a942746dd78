package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/emrgen/custody/internal/cache"
	"github.com/emrgen/custody/internal/clock"
	"github.com/emrgen/custody/internal/config"
	"github.com/emrgen/custody/internal/events"
	"github.com/emrgen/custody/internal/metrics"
	"github.com/emrgen/custody/internal/service"
	"github.com/emrgen/custody/internal/store"
	"github.com/sirupsen/logrus"
)

// services bundles the wired service layer for a single CLI invocation.
type services struct {
	cnf      *config.Config
	store    store.Store
	registry *service.RegistryService
	access   *service.AccessService
	agents   *service.AgentService
	location *service.LocationService
	recovery *service.RecoveryService
	backup   *service.BackupService
	events   events.Publisher
}

func newServices(collectors *metrics.Metrics) *services {
	cnf := config.LoadConfig()
	db := config.GetDb(cnf)
	st := store.NewGormStore(db)
	clk := clock.System{}

	var kv cache.KV = cache.NewMemory()
	if cnf.RedisAddr != "" {
		kv = cache.NewRedis(cnf.RedisAddr)
	}

	var publisher events.Publisher = events.Nop{}
	if cnf.KafkaBrokers != "" {
		p, err := events.NewKafkaPublisher(cnf.KafkaBrokers)
		if err != nil {
			logrus.Fatalf("failed to connect to kafka: %v", err)
		}
		publisher = p
	}

	registry := service.NewRegistryService(st, clk, kv)
	access := service.NewAccessService(st, clk, registry)

	return &services{
		cnf:      cnf,
		store:    st,
		registry: registry,
		access:   access,
		agents:   service.NewAgentService(st, clk, kv, cnf.Governance),
		location: service.NewLocationService(st, clk, cnf.Governance),
		recovery: service.NewRecoveryService(st, clk, registry, access, publisher, collectors, service.DefaultRecoveryConfig()),
		backup:   service.NewBackupService(st, clk, registry, publisher, collectors, service.VerifierAgentsAndOperators),
		events:   publisher,
	}
}

func (s *services) close() {
	s.events.Close()
}

func decodeHash(in string) ([]byte, error) {
	hash, err := hex.DecodeString(in)
	if err != nil {
		return nil, fmt.Errorf("hash must be hex encoded: %w", err)
	}
	return hash, nil
}
