package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Session metrics
	SessionsActive   prometheus.Gauge
	SessionsTotal    prometheus.Counter
	SessionsClosed   *prometheus.CounterVec
	SessionLifetime  prometheus.Histogram
	SessionsRejected prometheus.Counter

	// Shell metrics
	Commands      *prometheus.CounterVec
	Navigations   *prometheus.CounterVec
	BootsComplete prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Page metrics
	ErrorPages        *prometheus.CounterVec
	RateLimited       prometheus.Counter
	OperationDuration *prometheus.HistogramVec

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	ActiveSessions int64   `json:"active_sessions"`
	ActiveSockets  int64   `json:"active_sockets"`
	Commands       int64   `json:"commands"`
	AvgLatencyMS   float64 `json:"avg_latency_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector with its own registry, including
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "site_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "site_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "route"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "site_shell_sessions_active",
				Help: "Number of live terminal sessions",
			},
		),
		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "site_shell_sessions_total",
				Help: "Total number of terminal sessions opened",
			},
		),
		SessionsClosed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_shell_sessions_closed_total",
				Help: "Terminal sessions closed, by reason",
			},
			[]string{"reason"},
		),
		SessionLifetime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "site_shell_session_lifetime_seconds",
				Help:    "Lifetime of terminal sessions in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 1800, 3600},
			},
		),
		SessionsRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "site_shell_sessions_rejected_total",
				Help: "Terminal sessions refused because the session cap was reached",
			},
		),

		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_shell_commands_total",
				Help: "Shell commands run, by command name",
			},
			[]string{"command"},
		),
		Navigations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_shell_navigations_total",
				Help: "Navigation effects emitted by the shell, by target",
			},
			[]string{"target"},
		),
		BootsComplete: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "site_shell_boots_completed_total",
				Help: "Sessions that finished the startup sequence",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "site_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		ErrorPages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "site_error_pages_total",
				Help: "Terminal error pages served, by status code",
			},
			[]string{"code"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "site_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "site_operation_duration_seconds",
				Help:    "Duration of internal operations in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"operation", "status"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "site_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SessionOpened records a new terminal session.
func (m *Metrics) SessionOpened() {
	m.SessionsActive.Inc()
	m.SessionsTotal.Inc()

	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.mu.Unlock()
}

// SessionClosed records the end of a terminal session.
func (m *Metrics) SessionClosed(reason string, lifetime time.Duration) {
	m.SessionsActive.Dec()
	m.SessionsClosed.WithLabelValues(reason).Inc()
	m.SessionLifetime.Observe(lifetime.Seconds())

	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.mu.Unlock()
}

// IncSessionsRejected counts a refused session.
func (m *Metrics) IncSessionsRejected() {
	m.SessionsRejected.Inc()
}

// RecordCommand counts a shell command. Unknown names share one label so
// arbitrary input cannot grow the label set.
func (m *Metrics) RecordCommand(name string, known bool) {
	if !known {
		name = "unknown"
	}
	m.Commands.WithLabelValues(name).Inc()

	m.mu.Lock()
	m.snapshot.Commands++
	m.mu.Unlock()
}

// RecordNavigation counts a navigate or reload effect.
func (m *Metrics) RecordNavigation(target string) {
	m.Navigations.WithLabelValues(target).Inc()
}

// IncBootsCompleted counts a finished startup sequence.
func (m *Metrics) IncBootsCompleted() {
	m.BootsComplete.Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveSockets++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveSockets--
	m.mu.Unlock()
}

// RecordErrorPage counts a served error page.
func (m *Metrics) RecordErrorPage(code string) {
	m.ErrorPages.WithLabelValues(code).Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func (m *Metrics) IncRateLimited() {
	m.RateLimited.Inc()
}

// RecordOperation records the duration of an internal operation.
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	m.OperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// Snapshot returns the current values for the health endpoint.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
