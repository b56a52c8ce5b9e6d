package metrics

import (
	"ai-diet-planner/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "diet_planner"

// Collectors exposes Prometheus collectors for routing and model calls.
type Collectors struct {
	decisions   *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec
	llmFailures *prometheus.CounterVec
}

// MustNewCollectors creates the collectors and registers them with reg.
// A nil reg means the default registerer. Registration errors panic.
func MustNewCollectors(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collectors{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "decisions_total",
			Help:      "Messages routed, by action and matching rule.",
		}, []string{"action", "rule"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Latency of text generation calls by agent.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"agent"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens consumed by agent and kind.",
		}, []string{"agent", "kind"}),
		llmFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "failures_total",
			Help:      "Agent executions that failed.",
		}, []string{"agent"}),
	}
	reg.MustRegister(c.decisions, c.llmDuration, c.llmTokens, c.llmFailures)
	return c
}

func (c *Collectors) ObserveDecision(action, rule string) {
	c.decisions.WithLabelValues(action, rule).Inc()
}

func (c *Collectors) ObserveAgentMeta(meta shared.AgentMeta) {
	if meta.AgentName == "" {
		return
	}
	c.llmDuration.WithLabelValues(meta.AgentName).Observe(meta.Latency.Seconds())
	c.llmTokens.WithLabelValues(meta.AgentName, "prompt").Add(float64(meta.Usage.PromptTokens))
	c.llmTokens.WithLabelValues(meta.AgentName, "completion").Add(float64(meta.Usage.CompletionTokens))
	if meta.Failed {
		c.llmFailures.WithLabelValues(meta.AgentName).Inc()
	}
}
