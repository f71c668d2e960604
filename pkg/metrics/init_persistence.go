package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPersistenceMetrics() {
	r.PersistenceOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphedit_persistence_operations_total",
			Help: "Total number of save and load operations",
		},
		[]string{"op", "status"},
	)

	r.PersistenceBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphedit_persistence_bytes",
			Help:    "Size of saved and loaded graph files in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		},
		[]string{"op"},
	)
}
