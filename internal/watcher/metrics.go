package watcher

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for watcher delivery.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	subscriptions prometheus.Gauge
	delivered     *prometheus.CounterVec
	dropped       prometheus.Counter
}

// NewMetrics creates and registers watcher metrics. Returns nil when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "semstore_watcher_subscriptions",
			Help: "Number of open watcher subscriptions",
		}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semstore_watcher_events_delivered_total",
			Help: "Total number of events delivered to subscription mailboxes",
		}, []string{"kind"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semstore_watcher_events_dropped_total",
			Help: "Total number of events evicted from full subscription mailboxes",
		}),
	}

	reg.MustRegister(m.subscriptions, m.delivered, m.dropped)
	return m
}

func (m *Metrics) subscriptionOpened() {
	if m == nil {
		return
	}
	m.subscriptions.Inc()
}

func (m *Metrics) subscriptionClosed() {
	if m == nil {
		return
	}
	m.subscriptions.Dec()
}

func (m *Metrics) recordDelivery(kind EventKind, dropped bool) {
	if m == nil {
		return
	}
	m.delivered.WithLabelValues(kind.String()).Inc()
	if dropped {
		m.dropped.Inc()
	}
}
