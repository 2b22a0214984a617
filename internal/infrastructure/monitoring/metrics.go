package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the terminal service.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsOpened prometheus.Counter
	SessionsClosed prometheus.Counter

	// Command metrics
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a metrics collector on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a metrics collector on a custom registerer. Tests
// use a fresh registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folioterm_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folioterm_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "folioterm_sessions_active",
				Help: "Number of open terminal sessions",
			},
		),
		SessionsOpened: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "folioterm_sessions_opened_total",
				Help: "Total number of session open transitions",
			},
		),
		SessionsClosed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "folioterm_sessions_closed_total",
				Help: "Total number of session close transitions",
			},
		),

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folioterm_commands_total",
				Help: "Commands executed, by command name and status",
			},
			[]string{"command", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folioterm_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"command"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "folioterm_ws_connections",
				Help: "Active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folioterm_ws_messages_total",
				Help: "WebSocket messages handled, by type",
			},
			[]string{"type"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "folioterm_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCommand records one interpreted command.
func (m *Metrics) RecordCommand(command, status string, duration time.Duration) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordSessionOpen tracks an open transition.
func (m *Metrics) RecordSessionOpen() {
	m.SessionsActive.Inc()
	m.SessionsOpened.Inc()
}

// RecordSessionClose tracks a close transition.
func (m *Metrics) RecordSessionClose() {
	m.SessionsActive.Dec()
	m.SessionsClosed.Inc()
}

// RecordWSMessage tracks one handled WebSocket message.
func (m *Metrics) RecordWSMessage(msgType string) {
	m.WSMessages.WithLabelValues(msgType).Inc()
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
