package httpadapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/export"
	"github.com/praktiki/internship-credit-portal/internal/observability/metrics"
)

type ingestorFake struct {
	lastText string
	err      error
}

func (f *ingestorFake) UploadFile(_ context.Context, filename string, _ io.Reader) (*domain.CertificateUpload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CertificateUpload{
		ID:       "u-1",
		Filename: filename,
		Source:   domain.UploadSourceFile,
		Status:   domain.UploadStatusUploaded,
	}, nil
}

func (f *ingestorFake) UploadText(_ context.Context, text string) (*domain.CertificateUpload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastText = text
	return &domain.CertificateUpload{
		ID:     "u-2",
		Source: domain.UploadSourceText,
		Status: domain.UploadStatusUploaded,
	}, nil
}

type uploadReaderFake struct {
	upload *domain.CertificateUpload
}

func (f *uploadReaderFake) GetUpload(_ context.Context, id string) (*domain.CertificateUpload, error) {
	if f.upload == nil || f.upload.ID != id {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", errors.New(id))
	}
	return f.upload, nil
}

type submissionServiceFake struct {
	record  *domain.SubmissionRecord
	err     error
	deleted []string
}

func (f *submissionServiceFake) Submit(_ context.Context, req ports.SubmissionRequest) (*domain.SubmissionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record := *f.record
	record.Form = req.Form
	return &record, nil
}

func (f *submissionServiceFake) GetSubmission(_ context.Context, id string) (*domain.SubmissionRecord, error) {
	if f.record == nil || f.record.ID != id {
		return nil, domain.WrapError(domain.ErrSubmissionNotFound, "get submission", errors.New(id))
	}
	return f.record, nil
}

func (f *submissionServiceFake) DeleteSubmission(_ context.Context, id string) error {
	if f.record == nil || f.record.ID != id {
		return domain.WrapError(domain.ErrSubmissionNotFound, "delete submission", errors.New(id))
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type reviewServiceFake struct {
	record *domain.SubmissionRecord
	queue  []domain.SubmissionRecord
	last   *ports.ReviewRequest
}

func (f *reviewServiceFake) Review(_ context.Context, req ports.ReviewRequest) (*domain.SubmissionRecord, error) {
	copyReq := req
	f.last = &copyReq
	if f.record == nil {
		return nil, domain.WrapError(domain.ErrSubmissionNotFound, "review", errors.New(req.SubmissionID))
	}
	return f.record, nil
}

func (f *reviewServiceFake) ReviewQueue(context.Context) ([]domain.SubmissionRecord, error) {
	return f.queue, nil
}

type approvalReaderFake struct {
	approvals []domain.ABCApproval
}

func (f *approvalReaderFake) ApprovalsForStudent(_ context.Context, apaarID string) ([]domain.ABCApproval, error) {
	var out []domain.ABCApproval
	for _, approval := range f.approvals {
		if approval.APAARID == apaarID {
			out = append(out, approval)
		}
	}
	return out, nil
}

func (f *approvalReaderFake) ApprovalByToken(_ context.Context, token string) (*domain.ABCApproval, error) {
	for i := range f.approvals {
		if f.approvals[i].ABCToken == token {
			return &f.approvals[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrApprovalNotFound, "get approval", errors.New(token))
}

type studentStoreFake struct {
	students map[string]*domain.ABCStudent
}

func (f *studentStoreFake) CreateStudentIfAbsent(_ context.Context, student *domain.ABCStudent) error {
	if f.students == nil {
		f.students = make(map[string]*domain.ABCStudent)
	}
	f.students[student.APAARID] = student
	return nil
}

func (f *studentStoreFake) GetStudent(_ context.Context, apaarID string) (*domain.ABCStudent, error) {
	student, ok := f.students[apaarID]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "get student", errors.New(apaarID))
	}
	return student, nil
}

type exportRepoFake struct {
	records []domain.SubmissionRecord
}

func (f *exportRepoFake) CreateSubmission(context.Context, *domain.SubmissionRecord) error {
	return errors.New("not implemented")
}
func (f *exportRepoFake) GetSubmission(context.Context, string) (*domain.SubmissionRecord, error) {
	return nil, errors.New("not implemented")
}
func (f *exportRepoFake) UpdateSubmission(context.Context, *domain.SubmissionRecord) error {
	return errors.New("not implemented")
}
func (f *exportRepoFake) DeleteSubmission(context.Context, string) error {
	return errors.New("not implemented")
}
func (f *exportRepoFake) ListNeedingReview(context.Context) ([]domain.SubmissionRecord, error) {
	return nil, errors.New("not implemented")
}
func (f *exportRepoFake) ListAll(context.Context) ([]domain.SubmissionRecord, error) {
	return f.records, nil
}

type routerFixture struct {
	router    *Router
	ingest    *ingestorFake
	subs      *submissionServiceFake
	reviews   *reviewServiceFake
	approvals *approvalReaderFake
	students  *studentStoreFake
}

func newTestRouter(limits TrafficLimits) *routerFixture {
	hash, _ := bcrypt.GenerateFromPassword([]byte("2023-DEL-0042"), bcrypt.MinCost)
	students := &studentStoreFake{students: map[string]*domain.ABCStudent{
		"2023-DEL-0042": {APAARID: "2023-DEL-0042", Name: "Priya Sharma", PasswordHash: string(hash)},
	}}

	ingest := &ingestorFake{}
	subs := &submissionServiceFake{record: &domain.SubmissionRecord{
		ID:        "s-1",
		Composite: 0.812,
		Decision:  domain.DecisionEquivalent,
		Credits:   4,
	}}
	reviews := &reviewServiceFake{record: &domain.SubmissionRecord{ID: "s-1"}}
	approvals := &approvalReaderFake{approvals: []domain.ABCApproval{{
		InternshipID: "s-1",
		ABCToken:     "ABC-TOK-abc123def456",
		APAARID:      "2023-DEL-0042",
		Status:       "accepted",
	}}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := NewAuthenticator("test-secret", "mentor", "mentor123", time.Hour, students)
	router := NewRouter(
		ingest,
		&uploadReaderFake{upload: &domain.CertificateUpload{ID: "u-1", Status: domain.UploadStatusReady}},
		subs,
		reviews,
		approvals,
		export.NewService(&exportRepoFake{}, logger),
		auth,
		metrics.NewHTTPServerMetrics(serviceName),
		limits,
	)

	return &routerFixture{
		router:    router,
		ingest:    ingest,
		subs:      subs,
		reviews:   reviews,
		approvals: approvals,
		students:  students,
	}
}
