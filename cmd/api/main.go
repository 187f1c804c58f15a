package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/praktiki/internship-credit-portal/internal/adapters/http"
	"github.com/praktiki/internship-credit-portal/internal/bootstrap"
	"github.com/praktiki/internship-credit-portal/internal/config"
	"github.com/praktiki/internship-credit-portal/internal/observability/logging"
	"github.com/praktiki/internship-credit-portal/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	auth := httpadapter.NewAuthenticator(
		cfg.AuthSecret,
		cfg.MentorUsername,
		cfg.MentorPassword,
		time.Duration(cfg.TokenTTLMinutes)*time.Minute,
		app.Students,
	)
	serverMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.IngestUC,
		app.IngestUC,
		app.SubmitUC,
		app.ReviewUC,
		app.ApprovalsUC,
		app.Exporter,
		auth,
		serverMetrics,
		httpadapter.TrafficLimits{
			RatePerSecond: cfg.APIRateLimitRPS,
			Burst:         cfg.APIRateLimitBurst,
			MaxConcurrent: cfg.APIMaxConcurrent,
		},
	).Handler()

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		log.Fatalf("api listen error: %v", err)
	}
	if cfg.APIMaxConns > 0 {
		listener = netutil.LimitListener(listener, cfg.APIMaxConns)
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
