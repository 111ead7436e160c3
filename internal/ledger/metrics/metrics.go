package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the transition engine.
type Metrics struct {
	MovesTotal           prometheus.Counter
	CancelsTotal         prometheus.Counter
	OverridesTotal       prometheus.Counter
	QuarantineRejections prometheus.Counter
	TransactionRollbacks prometheus.Counter
}

// New creates and registers all transition engine metrics.
func New() *Metrics {
	return &Metrics{
		MovesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_moves_total",
			Help: "Total number of committed card moves",
		}),
		CancelsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_cancels_total",
			Help: "Total number of canceled operations",
		}),
		OverridesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_overrides_total",
			Help: "Total number of administrative card overrides",
		}),
		QuarantineRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_quarantine_rejections_total",
			Help: "Total number of moves rejected because the card is quarantined",
		}),
		TransactionRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_engine_rollbacks_total",
			Help: "Total number of engine transactions rolled back",
		}),
	}
}

func (m *Metrics) RecordMove() {
	if m == nil {
		return
	}
	m.MovesTotal.Inc()
}

func (m *Metrics) RecordCancel() {
	if m == nil {
		return
	}
	m.CancelsTotal.Inc()
}

func (m *Metrics) RecordOverride() {
	if m == nil {
		return
	}
	m.OverridesTotal.Inc()
}

func (m *Metrics) RecordQuarantineRejection() {
	if m == nil {
		return
	}
	m.QuarantineRejections.Inc()
}

func (m *Metrics) RecordRollback() {
	if m == nil {
		return
	}
	m.TransactionRollbacks.Inc()
}
