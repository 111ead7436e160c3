package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the notification watcher.
type Metrics struct {
	NotificationsSent    prometheus.Counter
	NotificationFailures prometheus.Counter
	PollCycles           prometheus.Counter
	PollFailures         prometheus.Counter
}

// New creates and registers all watcher metrics.
func New() *Metrics {
	return &Metrics{
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_watch_notifications_sent_total",
			Help: "Total number of notifications delivered",
		}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_watch_notification_failures_total",
			Help: "Total number of notification delivery failures",
		}),
		PollCycles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_watch_poll_cycles_total",
			Help: "Total number of ledger poll cycles",
		}),
		PollFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cardtrack_watch_poll_failures_total",
			Help: "Total number of failed ledger polls",
		}),
	}
}

func (m *Metrics) RecordSent() {
	if m == nil {
		return
	}
	m.NotificationsSent.Inc()
}

func (m *Metrics) RecordSendFailure() {
	if m == nil {
		return
	}
	m.NotificationFailures.Inc()
}

func (m *Metrics) RecordPoll() {
	if m == nil {
		return
	}
	m.PollCycles.Inc()
}

func (m *Metrics) RecordPollFailure() {
	if m == nil {
		return
	}
	m.PollFailures.Inc()
}
