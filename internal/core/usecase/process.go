package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

// FieldExtractor is the heuristic field-extraction stage. It is total:
// any text yields a result, never an error.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) domain.ExtractionResult
}

type ProcessCertificateUseCase struct {
	repo      ports.UploadRepository
	storage   ports.ObjectStorage
	acquirer  ports.TextAcquirer
	extractor FieldExtractor
}

func NewProcessCertificateUseCase(
	repo ports.UploadRepository,
	storage ports.ObjectStorage,
	acquirer ports.TextAcquirer,
	extractor FieldExtractor,
) *ProcessCertificateUseCase {
	return &ProcessCertificateUseCase{
		repo:      repo,
		storage:   storage,
		acquirer:  acquirer,
		extractor: extractor,
	}
}

// ProcessByID runs text acquisition and field extraction for one upload.
// Acquisition is best effort: an unreadable certificate still completes
// with the canonical all-empty extraction rather than a failed status.
func (uc *ProcessCertificateUseCase) ProcessByID(ctx context.Context, uploadID string) error {
	upload, err := uc.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("fetch upload by id: %w", err)
	}

	if err := uc.repo.UpdateUploadStatus(ctx, uploadID, domain.UploadStatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	text := uc.acquirer.AcquireText(ctx, uc.storage.Path(upload.StoragePath))
	result := uc.extractor.Extract(ctx, text)

	if err := uc.repo.SaveExtraction(ctx, uploadID, result); err != nil {
		if failErr := uc.repo.UpdateUploadStatus(ctx, uploadID, domain.UploadStatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save extraction: %w", err)
	}

	if err := uc.repo.UpdateUploadStatus(ctx, uploadID, domain.UploadStatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}

	return nil
}

// QueueLag reports how long the upload waited before processing started.
func (uc *ProcessCertificateUseCase) QueueLag(ctx context.Context, uploadID string) (time.Duration, error) {
	upload, err := uc.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return 0, err
	}
	return time.Since(upload.CreatedAt), nil
}
