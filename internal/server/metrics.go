package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuya-takeyama/cc-nod/internal/queue"
	"github.com/yuya-takeyama/cc-nod/pkg/types"
)

// Metrics records queue lifecycle events on a private registry. It
// implements queue.Observer. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	admitted  *prometheus.CounterVec
	decisions *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	retracted prometheus.Counter
	wait      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		admitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cc_nod_requests_admitted_total",
			Help: "Permission requests admitted into the queue.",
		}, []string{"tool_name"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cc_nod_decisions_total",
			Help: "Permission requests resolved by a human.",
		}, []string{"behavior"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cc_nod_requests_rejected_total",
			Help: "Malformed permission requests rejected before the queue.",
		}, []string{"reason"}),
		retracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cc_nod_requests_retracted_total",
			Help: "Permission requests withdrawn because the caller went away.",
		}),
		wait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cc_nod_decision_wait_seconds",
			Help:    "Time from admission to decision.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"behavior"}),
	}
	m.registry.MustRegister(m.admitted, m.decisions, m.rejected, m.retracted, m.wait)
	return m
}

// Watch exports the queue's live depth and presenting state as gauges
func (m *Metrics) Watch(q *queue.Queue) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cc_nod_pending_requests",
			Help: "Requests waiting behind the one being presented.",
		}, func() float64 { return float64(q.Depth()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "cc_nod_presenting",
			Help: "1 while a request is in front of the human.",
		}, func() float64 {
			if q.State() == queue.Presenting {
				return 1
			}
			return 0
		}),
	)
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Admitted(t *queue.Ticket, depth int) {
	if m == nil {
		return
	}
	m.admitted.WithLabelValues(t.Request.ToolName).Inc()
}

func (m *Metrics) Presented(t *queue.Ticket, depth int) {}

func (m *Metrics) Decided(t *queue.Ticket, d types.Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(d.Behavior).Inc()
	m.wait.WithLabelValues(d.Behavior).Observe(time.Since(t.EnqueuedAt).Seconds())
}

func (m *Metrics) Retracted(t *queue.Ticket) {
	if m == nil {
		return
	}
	m.retracted.Inc()
}

// Rejected counts a malformed request
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
