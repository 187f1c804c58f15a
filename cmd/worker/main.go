package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/bootstrap"
	"github.com/praktiki/internship-credit-portal/internal/config"
	"github.com/praktiki/internship-credit-portal/internal/observability/logging"
	"github.com/praktiki/internship-credit-portal/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsHandler(workerMetrics),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeCertificateUploaded(ctx, func(handlerCtx context.Context, uploadID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if lag, err := app.ProcessUC.QueueLag(processCtx, uploadID); err == nil {
			workerMetrics.ObserveQueueLag("worker", lag)
		}

		workerMetrics.StartCertificate()
		start := time.Now()
		err := app.ProcessUC.ProcessByID(processCtx, uploadID)
		workerMetrics.FinishCertificate("worker", time.Since(start), err)
		if err == nil {
			recordFieldConfidences(processCtx, app, workerMetrics, uploadID)
		}
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

// recordFieldConfidences feeds the per-field confidence histogram so
// extraction quality drift shows up on the worker dashboard.
func recordFieldConfidences(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, uploadID string) {
	upload, err := app.IngestUC.GetUpload(ctx, uploadID)
	if err != nil || upload.Extracted == nil {
		return
	}
	for field, extracted := range upload.Extracted {
		m.ObserveFieldConfidence("worker", field, extracted.Confidence)
	}
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
