package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordCommand records one dispatched editor command
func (r *Registry) RecordCommand(command string, duration time.Duration) {
	r.CommandsTotal.WithLabelValues(command).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// SetGraphSize updates the node and edge gauges
func (r *Registry) SetGraphSize(nodes, edges int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// SetZoom updates the camera zoom gauge
func (r *Registry) SetZoom(zoom float64) {
	r.CameraZoom.Set(zoom)
}

// RecordPathfind records a shortest-path search. Length is only observed
// for found paths.
func (r *Registry) RecordPathfind(result string, duration time.Duration, length int) {
	r.PathfindTotal.WithLabelValues(result).Inc()
	r.PathfindDuration.Observe(duration.Seconds())
	if result == ResultFound {
		r.PathLength.Observe(float64(length))
	}
}

// RecordPersistence records a save or load
func (r *Registry) RecordPersistence(op, status string, bytes int) {
	r.PersistenceOperationsTotal.WithLabelValues(op, status).Inc()
	if status == StatusSuccess {
		r.PersistenceBytes.WithLabelValues(op).Observe(float64(bytes))
	}
}

// UpdateSystemMetrics refreshes uptime, goroutine and heap gauges
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

// Handler serves the registry in the Prometheus text format. System gauges
// are refreshed on every scrape.
func (r *Registry) Handler() http.Handler {
	inner := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.UpdateSystemMetrics()
		inner.ServeHTTP(w, req)
	})
}
