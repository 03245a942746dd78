package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the custody ledger.
type Metrics struct {
	RecoveryRequestsTotal  prometheus.Counter
	RecoveryApprovalsTotal prometheus.Counter
	RecoveryExecutedTotal  prometheus.Counter
	RecoveryExpiredTotal   prometheus.Counter
	BackupsRecordedTotal   prometheus.Counter
	VerificationsTotal     *prometheus.CounterVec
	NonCompliantDocuments  prometheus.Gauge
}

// New creates the collectors and registers them on reg. Tests pass a fresh
// registry so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecoveryRequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_recovery_requests_total",
			Help: "Total number of recovery requests created",
		}),
		RecoveryApprovalsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_recovery_approvals_total",
			Help: "Total number of recovery approvals recorded",
		}),
		RecoveryExecutedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_recovery_executed_total",
			Help: "Total number of recovery requests executed",
		}),
		RecoveryExpiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_recovery_expired_total",
			Help: "Total number of recovery requests that lapsed unexecuted",
		}),
		BackupsRecordedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "custody_backups_recorded_total",
			Help: "Total number of document backups recorded",
		}),
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custody_backup_verifications_total",
			Help: "Total number of backup verifications by result",
		}, []string{"result"}),
		NonCompliantDocuments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "custody_noncompliant_documents",
			Help: "Documents whose backups currently fall short of policy",
		}),
	}
}

// NewNop returns collectors that are never scraped. Useful where the caller
// does not care about metrics.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
