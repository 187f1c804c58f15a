package usecase

import (
	"context"
	"log/slog"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

// ApprovalQueryUseCase is the read side of the companion ABC portal.
type ApprovalQueryUseCase struct {
	approvals ports.ApprovalRepository
	bank      ports.CreditBank
	logger    *slog.Logger
}

func NewApprovalQueryUseCase(approvals ports.ApprovalRepository, bank ports.CreditBank, logger *slog.Logger) *ApprovalQueryUseCase {
	return &ApprovalQueryUseCase{approvals: approvals, bank: bank, logger: logger}
}

func (uc *ApprovalQueryUseCase) ApprovalsForStudent(ctx context.Context, apaarID string) ([]domain.ABCApproval, error) {
	return uc.approvals.ListApprovalsByStudent(ctx, apaarID)
}

// ApprovalByToken looks up one approval. A record stored as pending is
// refreshed against the bank: the bank resolves pending pushes on its
// own schedule, and the stored status should converge.
func (uc *ApprovalQueryUseCase) ApprovalByToken(ctx context.Context, token string) (*domain.ABCApproval, error) {
	approval, err := uc.approvals.GetApprovalByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if approval.Status != "pending" || uc.bank == nil {
		return approval, nil
	}

	bankStatus, err := uc.bank.Status(ctx, token)
	if err != nil {
		// The stored status stands when the bank is unreachable.
		uc.logger.Warn("abc.status.refresh_failed", "abc_token", token, "error", err)
		return approval, nil
	}
	resolved := mapBankStatus(bankStatus)
	if resolved == approval.Status {
		return approval, nil
	}

	approval.Status = resolved
	if err := uc.approvals.SaveApproval(ctx, approval); err != nil {
		uc.logger.Warn("abc.status.persist_failed", "abc_token", token, "error", err)
	}
	return approval, nil
}

// mapBankStatus translates the bank's vocabulary into the portal's:
// an uploaded credit is an accepted approval.
func mapBankStatus(status string) string {
	if status == "uploaded" {
		return "accepted"
	}
	return status
}
