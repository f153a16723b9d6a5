// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	registry *prometheus.Registry

	// Capture flow
	PromptsIssued    prometheus.Counter
	TradesRecorded   *prometheus.CounterVec
	CaptureRejected  *prometheus.CounterVec
	AmountsRequested prometheus.Counter

	// Commands
	CommandsHandled *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec

	// Database
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Gateway
	EventsReceived *prometheus.CounterVec
	HandlerPanics  prometheus.Counter
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trade_journal"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PromptsIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "prompts_issued_total",
			Help:      "Total number of outcome prompts posted",
		}),
		TradesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "trades_recorded_total",
			Help:      "Total number of trade records persisted by outcome",
		}, []string{"outcome"}),
		CaptureRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "rejected_total",
			Help:      "Total number of capture events rejected by reason",
		}, []string{"reason"}),
		AmountsRequested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "amounts_requested_total",
			Help:      "Total number of RR entry dialogs opened",
		}),

		CommandsHandled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "handled_total",
			Help:      "Total number of slash commands handled by name and status",
		}, []string{"command", "status"}),
		RenderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Image rendering duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		EventsReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "events_received_total",
			Help:      "Total number of gateway events dispatched by type",
		}, []string{"type"}),
		HandlerPanics: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "handler_panics_total",
			Help:      "Total number of recovered handler panics",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Record* helpers are no-ops on a nil *Metrics.

// RecordPrompt increments the prompts issued counter.
func (m *Metrics) RecordPrompt() {
	if m == nil {
		return
	}
	m.PromptsIssued.Inc()
}

// RecordTrade increments the recorded trades counter.
func (m *Metrics) RecordTrade(outcome string) {
	if m == nil {
		return
	}
	m.TradesRecorded.WithLabelValues(outcome).Inc()
}

// RecordRejection records a rejected capture event.
func (m *Metrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.CaptureRejected.WithLabelValues(reason).Inc()
}

// RecordAmountRequested increments the RR dialog counter.
func (m *Metrics) RecordAmountRequested() {
	if m == nil {
		return
	}
	m.AmountsRequested.Inc()
}

// RecordCommand records a handled slash command.
func (m *Metrics) RecordCommand(command, status string) {
	if m == nil {
		return
	}
	m.CommandsHandled.WithLabelValues(command, status).Inc()
}

// RecordRender records image rendering latency.
func (m *Metrics) RecordRender(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.RenderDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordEvent counts a dispatched gateway event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(eventType).Inc()
}

// RecordPanic counts a recovered handler panic.
func (m *Metrics) RecordPanic() {
	if m == nil {
		return
	}
	m.HandlerPanics.Inc()
}
