package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

func TestUploadRepositoryGetUploadDecodesExtraction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewUploadRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "filename", "storage_path", "source", "status", "extracted", "error_message",
		"created_at", "updated_at",
	}).AddRow(
		"u-1", "cert.pdf", "u-1_cert.pdf", string(domain.UploadSourceFile),
		string(domain.UploadStatusReady),
		[]byte(`{"name":{"value":"Priya Sharma","confidence":0.9},"hours":{"value":"240","confidence":0.85}}`),
		"", time.Now(), time.Now(),
	)

	mock.ExpectQuery("FROM uploads").
		WithArgs("u-1").
		WillReturnRows(rows)

	upload, err := repo.GetUpload(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetUpload() error = %v", err)
	}
	if upload.Status != domain.UploadStatusReady {
		t.Fatalf("status = %q", upload.Status)
	}
	if got := upload.Extracted["hours"].Value; got != "240" {
		t.Fatalf("hours value = %q", got)
	}
	if got := upload.Extracted["name"].Confidence; got != 0.9 {
		t.Fatalf("name confidence = %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadRepositoryGetUploadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewUploadRepository(db)
	mock.ExpectQuery("FROM uploads").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "filename", "storage_path", "source", "status", "extracted", "error_message",
			"created_at", "updated_at",
		}))

	_, err = repo.GetUpload(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
