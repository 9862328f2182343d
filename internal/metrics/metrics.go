// Package metrics exposes render loop and session metrics for Prometheus
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/recera/synapse/pkg/graphview"
)

// Registry holds all metrics for synapse
type Registry struct {
	// Render loop metrics
	FramesTotal   *prometheus.CounterVec
	FrameDuration *prometheus.HistogramVec

	// Simulation metrics
	Alpha *prometheus.GaugeVec
	Nodes *prometheus.GaugeVec
	Zoom  *prometheus.GaugeVec

	// Live server metrics
	LiveSessions prometheus.Gauge

	registry *prometheus.Registry
}

var (
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

// NewRegistry creates a registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initFrameMetrics()
	r.initSimulationMetrics()
	r.initLiveMetrics()
	return r
}

func (r *Registry) initFrameMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "synapse_frames_total",
			Help: "Total number of tick+draw frames run",
		},
		[]string{"host"},
	)

	r.FrameDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "synapse_frame_duration_seconds",
			Help:    "Time spent in one tick+draw frame",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .016, .033, .066, .1},
		},
		[]string{"host"},
	)
}

func (r *Registry) initSimulationMetrics() {
	r.Alpha = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "synapse_alpha",
			Help: "Current simulation temperature",
		},
		[]string{"session"},
	)

	r.Nodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "synapse_nodes",
			Help: "Number of nodes in the session",
		},
		[]string{"session"},
	)

	r.Zoom = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "synapse_zoom",
			Help: "Current camera zoom",
		},
		[]string{"session"},
	)
}

func (r *Registry) initLiveMetrics() {
	r.LiveSessions = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "synapse_live_sessions",
			Help: "Number of connected live sessions",
		},
	)
}

// RecordFrame records one frame run by host for session s
func (r *Registry) RecordFrame(host, session string, s *graphview.Session, duration time.Duration) {
	r.FramesTotal.WithLabelValues(host).Inc()
	r.FrameDuration.WithLabelValues(host).Observe(duration.Seconds())
	r.Alpha.WithLabelValues(session).Set(s.Engine().Alpha())
	r.Nodes.WithLabelValues(session).Set(float64(len(s.Nodes())))
	r.Zoom.WithLabelValues(session).Set(s.Controller().Camera().Zoom)
}

// ForgetSession drops the per-session series
func (r *Registry) ForgetSession(session string) {
	r.Alpha.DeleteLabelValues(session)
	r.Nodes.DeleteLabelValues(session)
	r.Zoom.DeleteLabelValues(session)
}

// SessionOpened increments the live session gauge
func (r *Registry) SessionOpened() { r.LiveSessions.Inc() }

// SessionClosed decrements the live session gauge and drops its series
func (r *Registry) SessionClosed(session string) {
	r.LiveSessions.Dec()
	r.ForgetSession(session)
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
