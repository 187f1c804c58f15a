package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

type IngestCertificateUseCase struct {
	repo    ports.UploadRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestCertificateUseCase(
	repo ports.UploadRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestCertificateUseCase {
	return &IngestCertificateUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestCertificateUseCase) UploadFile(
	ctx context.Context,
	filename string,
	body io.Reader,
) (*domain.CertificateUpload, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload certificate", errors.New("filename is required"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save certificate file: %w", err)
	}

	return uc.register(ctx, id, filename, storageKey, domain.UploadSourceFile)
}

func (uc *IngestCertificateUseCase) UploadText(
	ctx context.Context,
	text string,
) (*domain.CertificateUpload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload certificate text", errors.New("text is required"))
	}

	id := uuid.NewString()
	// Stored as a plain text file so the worker's extension dispatch
	// reads it back verbatim.
	storageKey := id + "_pasted_text.txt"

	if err := uc.storage.Save(ctx, storageKey, strings.NewReader(text)); err != nil {
		return nil, fmt.Errorf("save certificate text: %w", err)
	}

	return uc.register(ctx, id, "pasted_text.txt", storageKey, domain.UploadSourceText)
}

func (uc *IngestCertificateUseCase) GetUpload(ctx context.Context, id string) (*domain.CertificateUpload, error) {
	return uc.repo.GetUpload(ctx, id)
}

func (uc *IngestCertificateUseCase) register(
	ctx context.Context,
	id, filename, storageKey, source string,
) (*domain.CertificateUpload, error) {
	now := time.Now().UTC()
	upload := &domain.CertificateUpload{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		Source:      source,
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.CreateUpload(ctx, upload); err != nil {
		return nil, fmt.Errorf("create upload record: %w", err)
	}

	if err := uc.queue.PublishCertificateUploaded(ctx, upload.ID); err != nil {
		return nil, fmt.Errorf("publish uploaded event: %w", err)
	}

	return upload, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "certificate.bin"
	}
	return base
}
