package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	callsTotal          *prometheus.CounterVec
	credentialClears    *prometheus.CounterVec
	bulkRuns            *prometheus.CounterVec
	bulkActive          prometheus.Gauge
	notifications       *prometheus.CounterVec
}

// New registers collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWith(reg, reg)
}

func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: g,
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		callsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialer_calls_total",
				Help: "Outbound call attempts by origin and outcome",
			},
			[]string{"origin", "outcome"},
		),
		credentialClears: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialer_credential_clears_total",
				Help: "Credential clears by cause",
			},
			[]string{"cause"},
		),
		bulkRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialer_bulk_runs_total",
				Help: "Bulk call runs by terminal state",
			},
			[]string{"state"},
		),
		bulkActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "dialer_bulk_runs_active",
				Help: "Bulk call runs currently in progress",
			},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialer_notifications_total",
				Help: "Notifications published by variant",
			},
			[]string{"variant"},
		),
	}
}

// Gin records request count and latency per route template.
func (m *Metrics) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordCall counts one call attempt. origin is "bulk" or "single"; outcome "placed" or "failed".
func (m *Metrics) RecordCall(origin, outcome string) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(origin, outcome).Inc()
}

func (m *Metrics) RecordCredentialClear(cause string) {
	if m == nil {
		return
	}
	m.credentialClears.WithLabelValues(cause).Inc()
}

func (m *Metrics) BulkStarted() {
	if m == nil {
		return
	}
	m.bulkRuns.WithLabelValues("started").Inc()
	m.bulkActive.Inc()
}

// BulkFinished records a run leaving the in-progress state. state is "completed" or "cancelled".
func (m *Metrics) BulkFinished(state string) {
	if m == nil {
		return
	}
	m.bulkRuns.WithLabelValues(state).Inc()
	m.bulkActive.Dec()
}

func (m *Metrics) RecordNotification(variant string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(variant).Inc()
}
