package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/praktiki/internship-credit-portal/internal/ceescm"
	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/matching"
)

type submissionRepoFake struct {
	created *domain.SubmissionRecord
	updated *domain.SubmissionRecord
	records map[string]*domain.SubmissionRecord
	deleted []string
}

func (f *submissionRepoFake) CreateSubmission(_ context.Context, record *domain.SubmissionRecord) error {
	copyRecord := *record
	f.created = &copyRecord
	return nil
}

func (f *submissionRepoFake) GetSubmission(_ context.Context, id string) (*domain.SubmissionRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSubmissionNotFound, "get submission", errors.New(id))
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (f *submissionRepoFake) UpdateSubmission(_ context.Context, record *domain.SubmissionRecord) error {
	copyRecord := *record
	f.updated = &copyRecord
	return nil
}

func (f *submissionRepoFake) DeleteSubmission(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *submissionRepoFake) ListNeedingReview(context.Context) ([]domain.SubmissionRecord, error) {
	var out []domain.SubmissionRecord
	for _, record := range f.records {
		if record.NeedsReview {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *submissionRepoFake) ListAll(context.Context) ([]domain.SubmissionRecord, error) {
	var out []domain.SubmissionRecord
	for _, record := range f.records {
		out = append(out, *record)
	}
	return out, nil
}

type bankFake struct {
	pushed *ports.CreditPush
	result ports.CreditPushResult
	err    error
}

func (f *bankFake) Push(_ context.Context, push ports.CreditPush) (*ports.CreditPushResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	copyPush := push
	f.pushed = &copyPush
	result := f.result
	return &result, nil
}

func (f *bankFake) Status(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

type approvalRepoFake struct {
	saved map[string]*domain.ABCApproval
}

func (f *approvalRepoFake) SaveApproval(_ context.Context, approval *domain.ABCApproval) error {
	if f.saved == nil {
		f.saved = make(map[string]*domain.ABCApproval)
	}
	copyApproval := *approval
	f.saved[approval.InternshipID] = &copyApproval
	return nil
}

func (f *approvalRepoFake) GetApprovalByToken(_ context.Context, token string) (*domain.ABCApproval, error) {
	for _, approval := range f.saved {
		if approval.ABCToken == token {
			copyApproval := *approval
			return &copyApproval, nil
		}
	}
	return nil, domain.WrapError(domain.ErrApprovalNotFound, "get approval", errors.New(token))
}

func (f *approvalRepoFake) ListApprovalsByStudent(_ context.Context, apaarID string) ([]domain.ABCApproval, error) {
	var out []domain.ABCApproval
	for _, approval := range f.saved {
		if approval.APAARID == apaarID {
			out = append(out, *approval)
		}
	}
	return out, nil
}

type studentRepoFake struct {
	created map[string]*domain.ABCStudent
}

func (f *studentRepoFake) CreateStudentIfAbsent(_ context.Context, student *domain.ABCStudent) error {
	if f.created == nil {
		f.created = make(map[string]*domain.ABCStudent)
	}
	if _, ok := f.created[student.APAARID]; ok {
		return nil
	}
	copyStudent := *student
	f.created[student.APAARID] = &copyStudent
	return nil
}

func (f *studentRepoFake) GetStudent(_ context.Context, apaarID string) (*domain.ABCStudent, error) {
	student, ok := f.created[apaarID]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "get student", errors.New(apaarID))
	}
	copyStudent := *student
	return &copyStudent, nil
}

type fullSemanticFake struct{}

func (fullSemanticFake) Similarity(context.Context, string, string) (float64, error) {
	return 1.0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func backendForm() domain.SubmissionForm {
	return domain.SubmissionForm{
		Name:            "Priya Sharma",
		APAARID:         "2023-DEL-0042",
		InstitutionCode: "DU-NC-042",
		Organization:    "TechCorp Solutions",
		InternshipTitle: "Backend Developer Internship",
		StartDate:       "2024-06-01",
		EndDate:         "2024-09-30",
		Hours:           160,
		Logs:            "built rest apis in python and django backed by postgresql",
	}
}

func newSubmitUseCase(repo *submissionRepoFake, bank *bankFake, approvals *approvalRepoFake, students *studentRepoFake) *SubmitInternshipUseCase {
	matcher := matching.New(matching.MustLoadCatalog(), fullSemanticFake{})
	tokenizer := ceescm.New(nil, nil)
	return NewSubmitInternshipUseCase(
		repo, &ingestRepoFake{}, &ingestStorageFake{},
		tokenizer, matcher, bank, approvals, students, discardLogger(),
	)
}

func TestSubmitEquivalentAutoForwards(t *testing.T) {
	repo := &submissionRepoFake{}
	bank := &bankFake{result: ports.CreditPushResult{Token: "ABC-TOK-abc123def456", Status: "uploaded"}}
	approvals := &approvalRepoFake{}
	students := &studentRepoFake{}
	uc := newSubmitUseCase(repo, bank, approvals, students)

	record, err := uc.Submit(context.Background(), ports.SubmissionRequest{
		Form:        backendForm(),
		Confidences: map[string]float64{"name": 0.9, "start_date": 0.8, "end_date": 0.8},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if record.Decision != domain.DecisionEquivalent {
		t.Fatalf("decision = %s (composite %v)", record.Decision, record.Composite)
	}
	if record.Credits != 4 {
		t.Fatalf("credits = %d", record.Credits)
	}
	if record.NeedsReview {
		t.Fatalf("should not need review")
	}
	if !record.AutoPushed {
		t.Fatalf("expected auto push")
	}
	if record.ABCStatus != "accepted" {
		t.Fatalf("abc status = %q", record.ABCStatus)
	}
	if bank.pushed == nil || bank.pushed.Credits != 4 {
		t.Fatalf("bank push = %+v", bank.pushed)
	}
	if approvals.saved[record.ID] == nil {
		t.Fatalf("expected saved approval")
	}
	if students.created["2023-DEL-0042"] == nil {
		t.Fatalf("expected provisioned student")
	}
	if repo.created == nil {
		t.Fatalf("expected persisted record")
	}
}

func TestSubmitLowConfidenceNeedsReviewSkipsForward(t *testing.T) {
	repo := &submissionRepoFake{}
	bank := &bankFake{result: ports.CreditPushResult{Token: "ABC-TOK-x", Status: "uploaded"}}
	uc := newSubmitUseCase(repo, bank, &approvalRepoFake{}, &studentRepoFake{})

	record, err := uc.Submit(context.Background(), ports.SubmissionRequest{
		Form:        backendForm(),
		Confidences: map[string]float64{"name": 0.5},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !record.NeedsReview {
		t.Fatalf("expected review flag")
	}
	if record.AutoPushed {
		t.Fatalf("must not auto push flagged submissions")
	}
	if bank.pushed != nil {
		t.Fatalf("bank should not be called")
	}
}

func TestSubmitBankOutageKeepsSubmission(t *testing.T) {
	repo := &submissionRepoFake{}
	bank := &bankFake{err: errors.New("bank down")}
	uc := newSubmitUseCase(repo, bank, &approvalRepoFake{}, &studentRepoFake{})

	record, err := uc.Submit(context.Background(), ports.SubmissionRequest{
		Form:        backendForm(),
		Confidences: map[string]float64{"name": 0.9},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if record.AutoPushed {
		t.Fatalf("push failed, auto_pushed must stay false")
	}
	if record.ABCStatus != "error" {
		t.Fatalf("abc status = %q", record.ABCStatus)
	}
	if repo.created == nil {
		t.Fatalf("submission must still be persisted")
	}
}

func TestSubmitRejectsMissingMandatoryFields(t *testing.T) {
	uc := newSubmitUseCase(&submissionRepoFake{}, &bankFake{}, &approvalRepoFake{}, &studentRepoFake{})

	form := backendForm()
	form.APAARID = ""
	_, err := uc.Submit(context.Background(), ports.SubmissionRequest{Form: form})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDeleteSubmissionRemovesStoredFile(t *testing.T) {
	record := &domain.SubmissionRecord{ID: "s-1", UploadID: "u-1"}
	repo := &submissionRepoFake{records: map[string]*domain.SubmissionRecord{"s-1": record}}
	storage := &deleteStorageFake{}
	matcher := matching.New(matching.MustLoadCatalog(), nil)
	uc := NewSubmitInternshipUseCase(
		repo, &deleteUploadRepoFake{upload: &domain.CertificateUpload{ID: "u-1", StoragePath: "u-1_cert.pdf"}},
		storage, ceescm.New(nil, nil), matcher, &bankFake{}, &approvalRepoFake{}, &studentRepoFake{}, discardLogger(),
	)

	if err := uc.DeleteSubmission(context.Background(), "s-1"); err != nil {
		t.Fatalf("DeleteSubmission() error = %v", err)
	}
	if storage.removed != "u-1_cert.pdf" {
		t.Fatalf("removed key = %q", storage.removed)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "s-1" {
		t.Fatalf("deleted = %v", repo.deleted)
	}
}

type deleteUploadRepoFake struct {
	upload *domain.CertificateUpload
}

func (f *deleteUploadRepoFake) CreateUpload(context.Context, *domain.CertificateUpload) error {
	return errors.New("not implemented")
}

func (f *deleteUploadRepoFake) GetUpload(_ context.Context, id string) (*domain.CertificateUpload, error) {
	if f.upload == nil || f.upload.ID != id {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", errors.New(id))
	}
	copyUpload := *f.upload
	return &copyUpload, nil
}

func (f *deleteUploadRepoFake) UpdateUploadStatus(context.Context, string, domain.UploadStatus, string) error {
	return errors.New("not implemented")
}

func (f *deleteUploadRepoFake) SaveExtraction(context.Context, string, domain.ExtractionResult) error {
	return errors.New("not implemented")
}

type deleteStorageFake struct {
	removed string
}

func (f *deleteStorageFake) Save(context.Context, string, io.Reader) error { return nil }
func (f *deleteStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}
func (f *deleteStorageFake) Remove(_ context.Context, key string) error {
	f.removed = key
	return nil
}
func (f *deleteStorageFake) Path(key string) string { return key }
