// Package metrics provides Prometheus instruments for the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Documents
	RendersTotal      *prometheus.CounterVec
	SanitizeTotal     *prometheus.CounterVec
	EditorCommands    *prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	StoreOperations   *prometheus.CounterVec
	SuggestionQueries *prometheus.CounterVec

	// LLM
	LLMRequestDuration *prometheus.HistogramVec
	LLMErrorsTotal     *prometheus.CounterVec
	GenerationJobs     *prometheus.CounterVec
}

// New registers every instrument, plus Go runtime and process collectors, on
// a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_http_requests_total",
			Help: "Total HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobdesc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		RendersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_renders_total",
			Help: "Document renders by outcome (ok, fallback)",
		}, []string{"outcome"}),
		SanitizeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_sanitize_total",
			Help: "Sanitizer invocations by mode (basic, rich)",
		}, []string{"mode"}),
		EditorCommands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_editor_commands_total",
			Help: "Editor commands by op and outcome",
		}, []string{"op", "outcome"}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "jobdesc_editor_sessions_active",
			Help: "Open editor sessions",
		}),
		StoreOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_store_operations_total",
			Help: "Document store operations by operation and status",
		}, []string{"operation", "status"}),
		SuggestionQueries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_suggestion_queries_total",
			Help: "Suggestion queries by outcome (ok, short, unavailable)",
		}, []string{"outcome"}),

		LLMRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobdesc_llm_request_duration_seconds",
			Help:    "Text-generation request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
		LLMErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_llm_errors_total",
			Help: "Failed text-generation requests",
		}, []string{"provider", "retryable"}),
		GenerationJobs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdesc_generation_jobs_total",
			Help: "Finished description generation jobs by final status",
		}, []string{"status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, statusLabel(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) Render(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "fallback"
	}
	m.RendersTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Sanitize(rich bool) {
	if m == nil {
		return
	}
	mode := "basic"
	if rich {
		mode = "rich"
	}
	m.SanitizeTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) EditorCommand(op string, err error) {
	if m == nil {
		return
	}
	m.EditorCommands.WithLabelValues(op, outcomeLabel(err)).Inc()
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.SessionsActive.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.SessionsActive.Dec()
	}
}

func (m *Metrics) StoreOp(op string, err error) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(op, outcomeLabel(err)).Inc()
}

func (m *Metrics) SuggestionQuery(outcome string) {
	if m == nil {
		return
	}
	m.SuggestionQueries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LLMRequest(provider string, d time.Duration, err error, retryable bool) {
	if m == nil {
		return
	}
	m.LLMRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		r := "false"
		if retryable {
			r = "true"
		}
		m.LLMErrorsTotal.WithLabelValues(provider, r).Inc()
	}
}

func (m *Metrics) GenerationJob(status string) {
	if m == nil {
		return
	}
	m.GenerationJobs.WithLabelValues(status).Inc()
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	}
	return "2xx"
}
