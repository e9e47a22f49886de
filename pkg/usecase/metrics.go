package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the operational counters of the memory layer. Read-path
// degradation never surfaces to end users, so these counters are the only
// signal operators have for a persistently failing store.
type Metrics struct {
	turnsPersisted    *prometheus.CounterVec
	writeBackFailures *prometheus.CounterVec
	recallDegraded    *prometheus.CounterVec
}

// NewMetrics registers the memory layer counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		turnsPersisted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memoria",
			Name:      "turns_persisted_total",
			Help:      "Turns successfully written to the memory store",
		}, []string{"role"}),
		writeBackFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memoria",
			Name:      "writeback_failures_total",
			Help:      "Turn writes that failed their single attempt",
		}, []string{"role"}),
		recallDegraded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memoria",
			Name:      "recall_degraded_total",
			Help:      "Read-path fetches that degraded to an empty result",
		}, []string{"stage"}),
	}
}

func (x *Metrics) TurnPersisted(role string) {
	if x == nil {
		return
	}
	x.turnsPersisted.WithLabelValues(role).Inc()
}

func (x *Metrics) WriteBackFailed(role string) {
	if x == nil {
		return
	}
	x.writeBackFailures.WithLabelValues(role).Inc()
}

func (x *Metrics) RecallDegraded(stage string) {
	if x == nil {
		return
	}
	x.recallDegraded.WithLabelValues(stage).Inc()
}
