package ports

import (
	"context"
	"io"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

// UploadRepository persists certificate upload state.
type UploadRepository interface {
	CreateUpload(ctx context.Context, upload *domain.CertificateUpload) error
	GetUpload(ctx context.Context, id string) (*domain.CertificateUpload, error)
	UpdateUploadStatus(ctx context.Context, id string, status domain.UploadStatus, errMessage string) error
	SaveExtraction(ctx context.Context, id string, result domain.ExtractionResult) error
}

// SubmissionRepository persists internship submission records.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, record *domain.SubmissionRecord) error
	GetSubmission(ctx context.Context, id string) (*domain.SubmissionRecord, error)
	UpdateSubmission(ctx context.Context, record *domain.SubmissionRecord) error
	DeleteSubmission(ctx context.Context, id string) error
	ListNeedingReview(ctx context.Context) ([]domain.SubmissionRecord, error)
	ListAll(ctx context.Context) ([]domain.SubmissionRecord, error)
}

// StudentRepository persists auto-provisioned ABC portal accounts.
type StudentRepository interface {
	CreateStudentIfAbsent(ctx context.Context, student *domain.ABCStudent) error
	GetStudent(ctx context.Context, apaarID string) (*domain.ABCStudent, error)
}

// ApprovalRepository persists ABC portal approval records.
type ApprovalRepository interface {
	SaveApproval(ctx context.Context, approval *domain.ABCApproval) error
	GetApprovalByToken(ctx context.Context, token string) (*domain.ABCApproval, error)
	ListApprovalsByStudent(ctx context.Context, apaarID string) ([]domain.ABCApproval, error)
}

// ObjectStorage stores source certificate files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	Path(key string) string
}

// MessageQueue publishes/consumes certificate-uploaded events.
type MessageQueue interface {
	PublishCertificateUploaded(ctx context.Context, uploadID string) error
	SubscribeCertificateUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextAcquirer obtains raw text from a stored certificate. It is best
// effort: adapter failures degrade to empty text, never an error that
// aborts the pipeline.
type TextAcquirer interface {
	AcquireText(ctx context.Context, path string) string
}

// EntityRecognizer is the named-entity capability of the NLP collaborator.
type EntityRecognizer interface {
	Entities(ctx context.Context, text string) ([]domain.Entity, error)
}

// SemanticSimilarity scores two texts with the embedding model.
type SemanticSimilarity interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// LemmaToken is one analyzed word from the lemmatizer.
type LemmaToken struct {
	Text     string `json:"text"`
	Lemma    string `json:"lemma"`
	Stopword bool   `json:"stopword"`
}

// Lemmatizer provides per-word lemmas with stop-word flags.
type Lemmatizer interface {
	Lemmas(ctx context.Context, text string) ([]LemmaToken, error)
}

// NounChunker extracts noun-phrase chunks.
type NounChunker interface {
	NounChunks(ctx context.Context, text string) ([]string, error)
}

// CreditPush is the payload forwarded to the academic credit bank.
type CreditPush struct {
	StudentName  string    `json:"student_name"`
	APAARID      string    `json:"apaar_id"`
	Credits      int       `json:"credits"`
	InternshipID string    `json:"internship_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// CreditPushResult is the bank's deterministic acknowledgement.
type CreditPushResult struct {
	Token  string `json:"abc_token"`
	Status string `json:"status"`
}

// CreditBank forwards approvals to the external academic credit bank.
type CreditBank interface {
	Push(ctx context.Context, push CreditPush) (*CreditPushResult, error)
	Status(ctx context.Context, token string) (string, error)
}
