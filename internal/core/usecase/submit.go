package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praktiki/internship-credit-portal/internal/ceescm"
	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/matching"
	"github.com/praktiki/internship-credit-portal/internal/policy"
)

type SubmitInternshipUseCase struct {
	submissions ports.SubmissionRepository
	uploads     ports.UploadRepository
	storage     ports.ObjectStorage
	tokenizer   *ceescm.Tokenizer
	matcher     *matching.Matcher
	forwarder   abcForwarder
	logger      *slog.Logger
}

func NewSubmitInternshipUseCase(
	submissions ports.SubmissionRepository,
	uploads ports.UploadRepository,
	storage ports.ObjectStorage,
	tokenizer *ceescm.Tokenizer,
	matcher *matching.Matcher,
	bank ports.CreditBank,
	approvals ports.ApprovalRepository,
	students ports.StudentRepository,
	logger *slog.Logger,
) *SubmitInternshipUseCase {
	return &SubmitInternshipUseCase{
		submissions: submissions,
		uploads:     uploads,
		storage:     storage,
		tokenizer:   tokenizer,
		matcher:     matcher,
		forwarder: abcForwarder{
			bank:      bank,
			approvals: approvals,
			students:  students,
			logger:    logger,
		},
		logger: logger,
	}
}

// Submit runs the full scoring pipeline over a completed form: tokenize,
// match against the curriculum, score, classify, award credits, gate on
// review, and auto-forward clean equivalent results to the credit bank.
func (uc *SubmitInternshipUseCase) Submit(
	ctx context.Context,
	req ports.SubmissionRequest,
) (*domain.SubmissionRecord, error) {
	if err := validateForm(req.Form); err != nil {
		return nil, err
	}

	tokens := uc.tokenizer.TokensForForm(ctx, req.Form)
	matches := uc.matcher.FindMatches(ctx, tokens, matching.DefaultThreshold)
	composite := matching.CompositeScore(matches)
	decision := matching.Classify(composite)

	now := time.Now().UTC()
	record := &domain.SubmissionRecord{
		ID:          uuid.NewString(),
		UploadID:    req.UploadID,
		Form:        req.Form,
		Confidences: req.Confidences,
		Tokens:      tokens,
		Matches:     matches,
		Composite:   composite,
		Decision:    decision,
		Credits:     policy.Credits(decision, req.Form.Hours),
		Eligible:    policy.Eligible(decision),
		NeedsReview: policy.NeedsReview(req.Confidences, composite),
		CreatedAt:   now,
		UpdatedAt:   now,
		Changelog: []domain.ChangelogEntry{{
			Timestamp: now,
			Action:    "submitted",
			By:        "student",
		}},
	}

	if policy.AutoForward(decision, record.NeedsReview, req.Confidences) {
		if err := uc.forwarder.Forward(ctx, record, "auto"); err != nil {
			// A bank outage must not lose the submission; the mentor can
			// push manually once the bank recovers.
			uc.logger.Warn("auto-forward to abc failed",
				"internship_id", record.ID, "error", err)
			record.ABCStatus = "error"
		} else {
			record.AutoPushed = true
			record.Changelog = append(record.Changelog, domain.ChangelogEntry{
				Timestamp: time.Now().UTC(),
				Action:    "auto_pushed",
				By:        "system",
				Changes:   map[string]any{"abc_token": record.ABCToken},
			})
		}
	}

	if err := uc.submissions.CreateSubmission(ctx, record); err != nil {
		return nil, fmt.Errorf("create submission record: %w", err)
	}

	return record, nil
}

func (uc *SubmitInternshipUseCase) GetSubmission(ctx context.Context, id string) (*domain.SubmissionRecord, error) {
	return uc.submissions.GetSubmission(ctx, id)
}

// DeleteSubmission removes the record and, when the submission came from
// an uploaded certificate, the stored source file.
func (uc *SubmitInternshipUseCase) DeleteSubmission(ctx context.Context, id string) error {
	record, err := uc.submissions.GetSubmission(ctx, id)
	if err != nil {
		return err
	}

	if record.UploadID != "" {
		upload, err := uc.uploads.GetUpload(ctx, record.UploadID)
		if err == nil {
			if err := uc.storage.Remove(ctx, upload.StoragePath); err != nil {
				uc.logger.Warn("remove stored certificate failed",
					"upload_id", record.UploadID, "error", err)
			}
		} else if !domain.IsKind(err, domain.ErrUploadNotFound) {
			return fmt.Errorf("fetch upload for delete: %w", err)
		}
	}

	return uc.submissions.DeleteSubmission(ctx, id)
}

func validateForm(form domain.SubmissionForm) error {
	if strings.TrimSpace(form.Name) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "submit internship", errors.New("name is required"))
	}
	if strings.TrimSpace(form.APAARID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "submit internship", errors.New("apaar_id is required"))
	}
	if form.Hours < 0 {
		return domain.WrapError(domain.ErrInvalidInput, "submit internship", errors.New("hours must not be negative"))
	}
	return nil
}
