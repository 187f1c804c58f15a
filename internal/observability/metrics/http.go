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

	submissionsTotal *prometheus.CounterVec
	compositeScore   *prometheus.HistogramVec
	reviewsTotal     *prometheus.CounterVec
	abcPushTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icp",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "icp",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "icp",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icp",
			Subsystem: "pipeline",
			Name:      "submissions_total",
			Help:      "Total processed submissions by equivalence decision.",
		},
		[]string{"service", "decision"},
	)
	compositeScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "icp",
			Subsystem: "pipeline",
			Name:      "composite_score",
			Help:      "Distribution of composite match scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.55, 0.7, 0.8, 0.9, 1},
		},
		[]string{"service"},
	)
	reviewsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icp",
			Subsystem: "pipeline",
			Name:      "mentor_reviews_total",
			Help:      "Total completed mentor reviews.",
		},
		[]string{"service"},
	)
	abcPushTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icp",
			Subsystem: "abc",
			Name:      "push_total",
			Help:      "Total credit pushes to the ABC bank by result.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		submissionsTotal,
		compositeScore,
		reviewsTotal,
		abcPushTotal,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		submissionsTotal: submissionsTotal,
		compositeScore:   compositeScore,
		reviewsTotal:     reviewsTotal,
		abcPushTotal:     abcPushTotal,
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
	case strings.HasPrefix(path, "/v1/uploads/"):
		return "/v1/uploads/{upload_id}"
	case strings.HasPrefix(path, "/v1/mentor/submissions/"):
		return "/v1/mentor/submissions/{internship_id}/review"
	case strings.HasPrefix(path, "/v1/submissions/") && path != "/v1/submissions/export":
		return "/v1/submissions/{internship_id}"
	case strings.HasPrefix(path, "/v1/abc/status/"):
		return "/v1/abc/status/{abc_token}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSubmission(service, decision string, composite float64) {
	if decision == "" {
		decision = "unknown"
	}
	m.submissionsTotal.WithLabelValues(service, decision).Inc()
	m.compositeScore.WithLabelValues(service).Observe(composite)
}

func (m *HTTPServerMetrics) RecordMentorReview(service string) {
	m.reviewsTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordABCPush(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.abcPushTotal.WithLabelValues(service, status).Inc()
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
