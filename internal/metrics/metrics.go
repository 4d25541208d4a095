// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/humane/internal/scoring"
)

const namespace = "humane"

// Metrics holds every collector on its own registry, so tests and multiple
// servers never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	scores          prometheus.Histogram
	ruleMatches     *prometheus.CounterVec
	llmCalls        *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	webhookEvents   *prometheus.CounterVec
	quotaDenials    prometheus.Counter
}

// New creates and registers all collectors, plus Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cringe_score",
			Help:      "Distribution of buzzword scores.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		ruleMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_matches_total",
			Help:      "Buzzword matches by scoring rule.",
		}, []string{"rule"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "LLM operations by name and result.",
		}, []string{"operation", "result"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "LLM operation latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"operation"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Billing webhook deliveries by event type and outcome.",
		}, []string{"type", "outcome"}),
		quotaDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_denials_total",
			Help:      "Rewrites refused by the free-tier limit.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.scores,
		m.ruleMatches,
		m.llmCalls,
		m.llmDuration,
		m.webhookEvents,
		m.quotaDenials,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one HTTP request. route should be the mux pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveScore records a scoring report
func (m *Metrics) ObserveScore(report scoring.Report) {
	m.scores.Observe(float64(report.Result.Score))
	for _, hit := range report.Hits {
		m.ruleMatches.WithLabelValues(hit.Rule).Add(float64(hit.Count))
	}
}

// ObserveLLMCall records one LLM operation
func (m *Metrics) ObserveLLMCall(operation string, err error, elapsed time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.llmCalls.WithLabelValues(operation, result).Inc()
	m.llmDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveWebhook records one webhook delivery
func (m *Metrics) ObserveWebhook(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// ObserveQuotaDenial records a rewrite refused by the limit
func (m *Metrics) ObserveQuotaDenial() {
	m.quotaDenials.Inc()
}
