package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	intentClassifiedTotal   *prometheus.CounterVec
	intentShortCircuitTotal *prometheus.CounterVec
	intentLLMFallbackTotal  *prometheus.CounterVec

	searchTierTotal            *prometheus.CounterVec
	searchStrategyFailureTotal *prometheus.CounterVec
	searchCandidates           *prometheus.HistogramVec
	searchDuration             *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dietcoach",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dietcoach",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dietcoach",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	intentClassifiedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dietcoach",
			Subsystem: "intent",
			Name:      "classified_total",
			Help:      "Total classified messages by category and method.",
		},
		[]string{"service", "category", "method"},
	)
	intentShortCircuitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dietcoach",
			Subsystem: "intent",
			Name:      "calendar_short_circuit_total",
			Help:      "Total classifications resolved by the calendar-save short circuit.",
		},
		[]string{"service"},
	)
	intentLLMFallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dietcoach",
			Subsystem: "intent",
			Name:      "llm_fallback_total",
			Help:      "Total LLM escalations that fell back to the keyword verdict.",
		},
		[]string{"service", "reason"},
	)
	searchTierTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dietcoach",
			Subsystem: "search",
			Name:      "tier_total",
			Help:      "Total recipe searches by result tier.",
		},
		[]string{"service", "tier"},
	)
	searchStrategyFailureTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dietcoach",
			Subsystem: "search",
			Name:      "strategy_failures_total",
			Help:      "Total degraded retrieval strategies by strategy name.",
		},
		[]string{"service", "strategy"},
	)
	searchCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dietcoach",
			Subsystem: "search",
			Name:      "candidates",
			Help:      "Distribution of fused candidates per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dietcoach",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Hybrid search duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		intentClassifiedTotal,
		intentShortCircuitTotal,
		intentLLMFallbackTotal,
		searchTierTotal,
		searchStrategyFailureTotal,
		searchCandidates,
		searchDuration,
	)

	return &HTTPServerMetrics{
		registry:                   registry,
		requestTotal:               requestTotal,
		requestDuration:            requestDuration,
		requestInFlight:            requestInFlight,
		intentClassifiedTotal:      intentClassifiedTotal,
		intentShortCircuitTotal:    intentShortCircuitTotal,
		intentLLMFallbackTotal:     intentLLMFallbackTotal,
		searchTierTotal:            searchTierTotal,
		searchStrategyFailureTotal: searchStrategyFailureTotal,
		searchCandidates:           searchCandidates,
		searchDuration:             searchDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/recipes/"):
		return "/v1/recipes/{recipe_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordIntentClassification(service, category, method string) {
	if category == "" {
		category = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	m.intentClassifiedTotal.WithLabelValues(service, category, method).Inc()
}

func (m *HTTPServerMetrics) RecordCalendarShortCircuit(service string) {
	m.intentShortCircuitTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordLLMFallback(service, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.intentLLMFallbackTotal.WithLabelValues(service, reason).Inc()
}

func (m *HTTPServerMetrics) RecordSearchOutcome(service, tier string, candidateCount int, duration time.Duration) {
	if tier == "" {
		tier = "unknown"
	}
	m.searchTierTotal.WithLabelValues(service, tier).Inc()
	m.searchCandidates.WithLabelValues(service).Observe(float64(candidateCount))
	m.searchDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordStrategyFailure(service, strategy string) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.searchStrategyFailureTotal.WithLabelValues(service, strategy).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
