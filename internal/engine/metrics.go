package engine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for identification and merging.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	merges           *prometheus.CounterVec
	mergeDuration    prometheus.Histogram
	inserted         prometheus.Counter
	duplicates       prometheus.Counter
	graphsCreated    prometheus.Counter
	resourcesCreated prometheus.Counter
	identifications  *prometheus.CounterVec
}

// NewMetrics creates and registers engine metrics. Returns nil when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semstore_engine_merges_total",
			Help: "Total number of merges by outcome",
		}, []string{"outcome"}),
		mergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "semstore_engine_merge_duration_seconds",
			Help:    "Time spent in a merge including the store transaction",
			Buckets: prometheus.DefBuckets,
		}),
		inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semstore_engine_statements_inserted_total",
			Help: "Total number of statements written by merges",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semstore_engine_duplicates_total",
			Help: "Total number of incoming statements that already existed",
		}),
		graphsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semstore_engine_graphs_created_total",
			Help: "Total number of graphs created by merges",
		}),
		resourcesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "semstore_engine_resources_created_total",
			Help: "Total number of resources materialised from placeholders",
		}),
		identifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "semstore_engine_identifications_total",
			Help: "Total number of identification attempts by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.merges,
		m.mergeDuration,
		m.inserted,
		m.duplicates,
		m.graphsCreated,
		m.resourcesCreated,
		m.identifications,
	)
	return m
}

func (m *Metrics) recordIdentification(outcome string) {
	if m == nil {
		return
	}
	m.identifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordMerge(res *MergeResult, err error, seconds float64) {
	if m == nil {
		return
	}
	m.mergeDuration.Observe(seconds)
	if err != nil {
		m.merges.WithLabelValues(outcomeOf(err)).Inc()
		return
	}
	m.merges.WithLabelValues("ok").Inc()
	m.inserted.Add(float64(res.Inserted))
	m.duplicates.Add(float64(res.Duplicates))
	m.graphsCreated.Add(float64(len(res.Graphs)))
	m.resourcesCreated.Add(float64(len(res.Created)))
}

func outcomeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return string(e.Code)
	}
	return "error"
}
