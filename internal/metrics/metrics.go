// Package metrics exposes Prometheus instruments for the chat service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tailortalk"

// Metrics holds every instrument the service records. The zero value is not
// usable; a nil *Metrics is, and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	toolInvocations *prometheus.CounterVec
	modelRequests   *prometheus.CounterVec
	modelLatency    prometheus.Histogram
	loopRounds      prometheus.Histogram
	loopTruncations prometheus.Counter
	chatRequests    *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// New creates the instruments on a private registry, together with the
// standard Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Tool invocations found in model replies, by tool and outcome.",
		}, []string{"tool", "outcome"}),
		modelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Messages sent to the model, by outcome.",
		}, []string{"outcome"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Time spent waiting for a model reply.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		loopRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loop_rounds",
			Help:      "Model round trips needed to answer one user message.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		loopTruncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_truncations_total",
			Help:      "Conversations cut short by the round or time limit.",
		}),
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "HTTP chat requests, by response status code.",
		}, []string{"code"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Conversations currently held in memory.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.toolInvocations,
		m.modelRequests,
		m.modelLatency,
		m.loopRounds,
		m.loopTruncations,
		m.chatRequests,
		m.activeSessions,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ToolInvoked(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolInvocations.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) ModelRequest(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.modelRequests.WithLabelValues(outcome).Inc()
	m.modelLatency.Observe(took.Seconds())
}

func (m *Metrics) LoopFinished(rounds int, truncated bool) {
	if m == nil {
		return
	}
	m.loopRounds.Observe(float64(rounds))
	if truncated {
		m.loopTruncations.Inc()
	}
}

func (m *Metrics) ChatRequest(code int) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
