package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCommandMetrics() {
	r.CommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphedit_commands_total",
			Help: "Total number of dispatched editor commands",
		},
		[]string{"command"},
	)

	r.CommandDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphedit_command_duration_seconds",
			Help:    "Editor command handling time in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"command"},
	)
}

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphedit_graph_nodes",
			Help: "Number of nodes in the edited graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphedit_graph_edges",
			Help: "Number of edges in the edited graph",
		},
	)

	r.CameraZoom = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphedit_camera_zoom",
			Help: "Current camera zoom factor",
		},
	)
}

func (r *Registry) initPathfindMetrics() {
	r.PathfindTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphedit_pathfind_total",
			Help: "Total number of shortest-path searches by result",
		},
		[]string{"result"},
	)

	r.PathfindDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphedit_pathfind_duration_seconds",
			Help:    "Shortest-path search time in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		},
	)

	r.PathLength = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphedit_path_length",
			Help:    "Number of nodes on found paths",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
}
