package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the scheduler, processor and
// handover flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal         *prometheus.CounterVec
	httpRequestDuration       *prometheus.HistogramVec
	enrollmentsTotal          prometheus.Counter
	attemptsProcessedTotal    *prometheus.CounterVec
	attemptDispatchDuration   prometheus.Histogram
	schedulerTicksTotal       *prometheus.CounterVec
	processorInflight         prometheus.Gauge
	handoverEvaluationsTotal  *prometheus.CounterVec
	handoverNotificationsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "outreach_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		enrollmentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "enrollments_total",
				Help:      "Total number of contacts enrolled into schedules.",
			},
		),
		attemptsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "attempts_processed_total",
				Help:      "Total number of due attempts processed, grouped by outcome.",
			},
			[]string{"outcome"},
		),
		attemptDispatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "outreach_engine",
				Name:      "attempt_dispatch_duration_seconds",
				Help:      "Render-and-send duration per attempt in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		schedulerTicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "scheduler_ticks_total",
				Help:      "Scheduler ticks grouped by result (run or skipped).",
			},
			[]string{"result"},
		),
		processorInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "outreach_engine",
				Name:      "processor_inflight",
				Help:      "Whether a due-attempt pass is currently executing.",
			},
		),
		handoverEvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "handover_evaluations_total",
				Help:      "Handover evaluations grouped by whether any criterion fired.",
			},
			[]string{"triggered"},
		),
		handoverNotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "outreach_engine",
				Name:      "handover_notifications_total",
				Help:      "Handover recipient notifications grouped by result.",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.enrollmentsTotal,
		m.attemptsProcessedTotal,
		m.attemptDispatchDuration,
		m.schedulerTicksTotal,
		m.processorInflight,
		m.handoverEvaluationsTotal,
		m.handoverNotificationsTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncEnrollment() {
	if m == nil {
		return
	}
	m.enrollmentsTotal.Inc()
}

func (m *Metrics) IncAttemptProcessed(outcome string) {
	if m == nil {
		return
	}
	outcomeLabel := strings.TrimSpace(strings.ToLower(outcome))
	if outcomeLabel == "" {
		outcomeLabel = "unknown"
	}
	m.attemptsProcessedTotal.WithLabelValues(outcomeLabel).Inc()
}

func (m *Metrics) ObserveAttemptDispatchDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.attemptDispatchDuration.Observe(seconds)
}

func (m *Metrics) IncSchedulerTick(result string) {
	if m == nil {
		return
	}
	resultLabel := strings.TrimSpace(strings.ToLower(result))
	if resultLabel == "" {
		resultLabel = "unknown"
	}
	m.schedulerTicksTotal.WithLabelValues(resultLabel).Inc()
}

func (m *Metrics) SetProcessorInflight(active bool) {
	if m == nil {
		return
	}
	if active {
		m.processorInflight.Set(1)
		return
	}
	m.processorInflight.Set(0)
}

func (m *Metrics) IncHandoverEvaluation(triggered bool) {
	if m == nil {
		return
	}
	m.handoverEvaluationsTotal.WithLabelValues(strconv.FormatBool(triggered)).Inc()
}

func (m *Metrics) IncHandoverNotification(result string) {
	if m == nil {
		return
	}
	resultLabel := strings.TrimSpace(strings.ToLower(result))
	if resultLabel == "" {
		resultLabel = "unknown"
	}
	m.handoverNotificationsTotal.WithLabelValues(resultLabel).Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}
