package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pathfinding outcomes used as the "result" label.
const (
	ResultFound     = "found"
	ResultNoPath    = "no_path"
	ResultStale     = "stale"
	ResultCancelled = "cancelled"
)

// Persistence outcomes used as the "status" label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Registry holds all metrics for the editor
type Registry struct {
	// Command Metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Graph Metrics
	GraphNodes prometheus.Gauge
	GraphEdges prometheus.Gauge
	CameraZoom prometheus.Gauge

	// Pathfinding Metrics
	PathfindTotal    *prometheus.CounterVec
	PathfindDuration prometheus.Histogram
	PathLength       prometheus.Histogram

	// Persistence Metrics
	PersistenceOperationsTotal *prometheus.CounterVec
	PersistenceBytes           *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initCommandMetrics()
	r.initGraphMetrics()
	r.initPathfindMetrics()
	r.initPersistenceMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
