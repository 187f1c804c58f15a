package ports

import (
	"context"
	"io"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

// CertificateIngestor is the inbound contract for certificate upload
// orchestration.
type CertificateIngestor interface {
	UploadFile(ctx context.Context, filename string, body io.Reader) (*domain.CertificateUpload, error)
	UploadText(ctx context.Context, text string) (*domain.CertificateUpload, error)
}

// UploadReader is the inbound read model for upload state.
type UploadReader interface {
	GetUpload(ctx context.Context, id string) (*domain.CertificateUpload, error)
}

// UploadProcessor is the inbound contract for asynchronous certificate
// processing.
type UploadProcessor interface {
	ProcessByID(ctx context.Context, uploadID string) error
}

// SubmissionRequest carries the completed form plus the confidences the
// student chose to keep from auto-extraction.
type SubmissionRequest struct {
	UploadID    string
	Form        domain.SubmissionForm
	Confidences map[string]float64
}

// SubmissionService runs the full scoring pipeline and reads back records.
type SubmissionService interface {
	Submit(ctx context.Context, req SubmissionRequest) (*domain.SubmissionRecord, error)
	GetSubmission(ctx context.Context, id string) (*domain.SubmissionRecord, error)
	DeleteSubmission(ctx context.Context, id string) error
}

// ReviewRequest is a mentor action on a flagged submission.
type ReviewRequest struct {
	SubmissionID   string
	CustomKeywords []string
	PushToABC      bool
}

// MentorReviewService re-runs matching with mentor keyword overrides and
// optionally pushes the result to the credit bank.
type MentorReviewService interface {
	Review(ctx context.Context, req ReviewRequest) (*domain.SubmissionRecord, error)
	ReviewQueue(ctx context.Context) ([]domain.SubmissionRecord, error)
}

// ApprovalReader exposes ABC portal approval records to students.
type ApprovalReader interface {
	ApprovalsForStudent(ctx context.Context, apaarID string) ([]domain.ABCApproval, error)
	ApprovalByToken(ctx context.Context, token string) (*domain.ABCApproval, error)
}
