package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobsy/internal/backend"
)

// Metrics agrupa los colectores del servicio en un registry propio.
type Metrics struct {
	registry *prometheus.Registry
	service  string

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
	signupEvents   *prometheus.CounterVec
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	activeFlows    prometheus.Gauge
}

func New(service string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		service:  service,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "http_requests_in_flight",
			Help:        "Current number of HTTP requests being served",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		signupEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signup_events_total",
				Help: "Registration flow events by outcome",
			},
			[]string{"event", "result"},
		),
		backendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signup_backend_calls_total",
				Help: "Identity and profile backend calls issued by registration flows",
			},
			[]string{"op", "result"},
		),
		backendLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signup_backend_call_duration_seconds",
				Help:    "Backend call latency seen by registration flows",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		activeFlows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signup_active_flows",
			Help: "Registration flows currently held in memory",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.signupEvents,
		m.backendCalls,
		m.backendLatency,
		m.activeFlows,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware registra conteo, latencia y concurrencia por ruta.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(m.service, c.Request.Method, path, status).Inc()
		m.httpDuration.WithLabelValues(m.service, c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// EventApplied, BackendCall y ActiveFlows implementan signup.Observer.
func (m *Metrics) EventApplied(event string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.signupEvents.WithLabelValues(event, result).Inc()
}

func (m *Metrics) BackendCall(op string, elapsed time.Duration, err error) {
	m.backendCalls.WithLabelValues(op, callResult(err)).Inc()
	m.backendLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ActiveFlows(n int) {
	m.activeFlows.Set(float64(n))
}

func callResult(err error) string {
	var rl *backend.RateLimitError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.Is(err, backend.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
