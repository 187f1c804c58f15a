package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/matching"
	"github.com/praktiki/internship-credit-portal/internal/policy"
)

type MentorReviewUseCase struct {
	submissions ports.SubmissionRepository
	matcher     *matching.Matcher
	forwarder   abcForwarder
	logger      *slog.Logger
}

func NewMentorReviewUseCase(
	submissions ports.SubmissionRepository,
	matcher *matching.Matcher,
	bank ports.CreditBank,
	approvals ports.ApprovalRepository,
	students ports.StudentRepository,
	logger *slog.Logger,
) *MentorReviewUseCase {
	return &MentorReviewUseCase{
		submissions: submissions,
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

// Review re-runs matching for a flagged submission with the mentor's
// keyword additions folded into the matched courses, recomputes the
// award, clears the review flag, and optionally pushes to the bank.
func (uc *MentorReviewUseCase) Review(
	ctx context.Context,
	req ports.ReviewRequest,
) (*domain.SubmissionRecord, error) {
	record, err := uc.submissions.GetSubmission(ctx, req.SubmissionID)
	if err != nil {
		return nil, err
	}

	if len(req.CustomKeywords) > 0 {
		for _, match := range record.Matches {
			uc.matcher.AddCustomKeywords(match.CourseID, req.CustomKeywords)
		}
	}

	tokens := mergeTokens(record.Tokens, req.CustomKeywords)
	matches := uc.matcher.FindMatches(ctx, tokens, matching.DefaultThreshold)
	composite := matching.CompositeScore(matches)
	decision := matching.Classify(composite)

	record.Tokens = tokens
	record.Matches = matches
	record.Composite = composite
	record.Decision = decision
	record.Credits = policy.Credits(decision, record.Form.Hours)
	record.Eligible = policy.Eligible(decision)
	record.NeedsReview = false
	record.UpdatedAt = time.Now().UTC()
	record.Changelog = append(record.Changelog, domain.ChangelogEntry{
		Timestamp: record.UpdatedAt,
		Action:    "mentor_review",
		By:        "mentor",
		Changes: map[string]any{
			"custom_keywords": req.CustomKeywords,
			"push_to_abc":     req.PushToABC,
		},
	})

	if req.PushToABC {
		if err := uc.forwarder.Forward(ctx, record, "mentor"); err != nil {
			return nil, fmt.Errorf("mentor push: %w", err)
		}
		record.Changelog = append(record.Changelog, domain.ChangelogEntry{
			Timestamp: time.Now().UTC(),
			Action:    "mentor_pushed",
			By:        "mentor",
			Changes:   map[string]any{"abc_token": record.ABCToken},
		})
	}

	if err := uc.submissions.UpdateSubmission(ctx, record); err != nil {
		return nil, fmt.Errorf("update submission record: %w", err)
	}

	return record, nil
}

func (uc *MentorReviewUseCase) ReviewQueue(ctx context.Context) ([]domain.SubmissionRecord, error) {
	return uc.submissions.ListNeedingReview(ctx)
}

func mergeTokens(tokens, extra []string) []string {
	seen := make(map[string]struct{}, len(tokens)+len(extra))
	merged := make([]string, 0, len(tokens)+len(extra))
	for _, lists := range [][]string{tokens, extra} {
		for _, token := range lists {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			merged = append(merged, token)
		}
	}
	return merged
}
