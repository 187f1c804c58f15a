// Package httpadapter exposes the portal over HTTP: student upload and
// submission endpoints, mentor review surface, and the companion ABC
// student portal.
package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/export"
	"github.com/praktiki/internship-credit-portal/internal/observability/metrics"
)

const serviceName = "api"

// TrafficLimits caps request rate and concurrency at the edge.
type TrafficLimits struct {
	RatePerSecond int
	Burst         int
	MaxConcurrent int
}

type Router struct {
	ingest      ports.CertificateIngestor
	uploads     ports.UploadReader
	submissions ports.SubmissionService
	reviews     ports.MentorReviewService
	approvals   ports.ApprovalReader
	exporter    *export.Service
	auth        *Authenticator
	metrics     *metrics.HTTPServerMetrics
	limits      TrafficLimits
}

func NewRouter(
	ingest ports.CertificateIngestor,
	uploads ports.UploadReader,
	submissions ports.SubmissionService,
	reviews ports.MentorReviewService,
	approvals ports.ApprovalReader,
	exporter *export.Service,
	auth *Authenticator,
	serverMetrics *metrics.HTTPServerMetrics,
	limits TrafficLimits,
) *Router {
	return &Router{
		ingest:      ingest,
		uploads:     uploads,
		submissions: submissions,
		reviews:     reviews,
		approvals:   approvals,
		exporter:    exporter,
		auth:        auth,
		metrics:     serverMetrics,
		limits:      limits,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/uploads", rt.uploadCertificate)
	mux.HandleFunc("/v1/uploads/", rt.getUpload)
	mux.HandleFunc("/v1/submissions", rt.submitInternship)
	mux.HandleFunc("/v1/submissions/export", rt.exportSubmissions)
	mux.HandleFunc("/v1/submissions/", rt.submissionByID)
	mux.HandleFunc("/v1/mentor/login", rt.mentorLogin)
	mux.HandleFunc("/v1/mentor/review-queue", rt.reviewQueue)
	mux.HandleFunc("/v1/mentor/submissions/", rt.mentorReview)
	mux.HandleFunc("/v1/abc/login", rt.abcLogin)
	mux.HandleFunc("/v1/abc/approvals", rt.abcApprovals)
	mux.HandleFunc("/v1/abc/status/", rt.abcStatus)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.limits.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.limits.MaxConcurrent, defaultBackpressureWait)
	}
	if rt.limits.RatePerSecond > 0 {
		handler = rateLimitMiddleware(handler, rt.limits.RatePerSecond, rt.limits.Burst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
