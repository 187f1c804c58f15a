package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
	fieldConfidence *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icp",
			Subsystem: "worker",
			Name:      "certificate_process_total",
			Help:      "Total processed certificates by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "icp",
			Subsystem: "worker",
			Name:      "certificate_process_duration_seconds",
			Help:      "Certificate processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "icp",
			Subsystem: "worker",
			Name:      "certificate_process_in_flight",
			Help:      "Number of in-flight certificate extractions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "icp",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between upload creation and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	fieldConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "icp",
			Subsystem: "worker",
			Name:      "field_confidence",
			Help:      "Distribution of extracted field confidences.",
			Buckets:   []float64{0.5, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1},
		},
		[]string{"service", "field"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, queueLag, fieldConfidence)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		fieldConfidence: fieldConfidence,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartCertificate() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishCertificate(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveFieldConfidence(service, field string, confidence float64) {
	if confidence <= 0 {
		return
	}
	m.fieldConfidence.WithLabelValues(service, field).Observe(confidence)
}
