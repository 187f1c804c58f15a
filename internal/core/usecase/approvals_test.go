package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

type statusBankFake struct {
	status string
	err    error
	calls  int
}

func (f *statusBankFake) Push(context.Context, ports.CreditPush) (*ports.CreditPushResult, error) {
	return nil, errors.New("not implemented")
}

func (f *statusBankFake) Status(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.status, nil
}

func pendingApproval() *domain.ABCApproval {
	return &domain.ABCApproval{
		InternshipID:   "intern-1",
		ABCToken:       "ABC-TOK-abc123def456",
		APAARID:        "2023-DEL-0042",
		StudentName:    "Priya Sharma",
		CreditsAwarded: 4,
		Status:         "pending",
		ApprovedBy:     "auto",
		ApprovedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestApprovalByTokenRefreshesPendingStatus(t *testing.T) {
	approvals := &approvalRepoFake{}
	if err := approvals.SaveApproval(context.Background(), pendingApproval()); err != nil {
		t.Fatal(err)
	}
	bank := &statusBankFake{status: "uploaded"}
	uc := NewApprovalQueryUseCase(approvals, bank, discardLogger())

	approval, err := uc.ApprovalByToken(context.Background(), "ABC-TOK-abc123def456")
	if err != nil {
		t.Fatalf("ApprovalByToken: %v", err)
	}
	if approval.Status != "accepted" {
		t.Fatalf("status = %q, want the bank's uploaded mapped to accepted", approval.Status)
	}
	if saved := approvals.saved["intern-1"]; saved.Status != "accepted" {
		t.Fatalf("persisted status = %q, want the refresh stored", saved.Status)
	}
}

func TestApprovalByTokenSkipsRefreshWhenSettled(t *testing.T) {
	approvals := &approvalRepoFake{}
	settled := pendingApproval()
	settled.Status = "accepted"
	if err := approvals.SaveApproval(context.Background(), settled); err != nil {
		t.Fatal(err)
	}
	bank := &statusBankFake{status: "uploaded"}
	uc := NewApprovalQueryUseCase(approvals, bank, discardLogger())

	if _, err := uc.ApprovalByToken(context.Background(), "ABC-TOK-abc123def456"); err != nil {
		t.Fatalf("ApprovalByToken: %v", err)
	}
	if bank.calls != 0 {
		t.Fatalf("bank queried %d times, want none for a settled approval", bank.calls)
	}
}

func TestApprovalByTokenKeepsStoredStatusWhenBankDown(t *testing.T) {
	approvals := &approvalRepoFake{}
	if err := approvals.SaveApproval(context.Background(), pendingApproval()); err != nil {
		t.Fatal(err)
	}
	bank := &statusBankFake{err: errors.New("bank down")}
	uc := NewApprovalQueryUseCase(approvals, bank, discardLogger())

	approval, err := uc.ApprovalByToken(context.Background(), "ABC-TOK-abc123def456")
	if err != nil {
		t.Fatalf("ApprovalByToken: %v", err)
	}
	if approval.Status != "pending" {
		t.Fatalf("status = %q, want the stored pending when the bank is unreachable", approval.Status)
	}
}

func TestApprovalByTokenUnknown(t *testing.T) {
	uc := NewApprovalQueryUseCase(&approvalRepoFake{}, &statusBankFake{}, discardLogger())
	if _, err := uc.ApprovalByToken(context.Background(), "ABC-TOK-missing00000"); !domain.IsKind(err, domain.ErrApprovalNotFound) {
		t.Fatalf("err = %v, want approval-not-found", err)
	}
}

func TestApprovalsForStudentListsOwnRecords(t *testing.T) {
	approvals := &approvalRepoFake{}
	first := pendingApproval()
	other := pendingApproval()
	other.InternshipID = "intern-2"
	other.APAARID = "2023-MUM-0001"
	for _, a := range []*domain.ABCApproval{first, other} {
		if err := approvals.SaveApproval(context.Background(), a); err != nil {
			t.Fatal(err)
		}
	}
	uc := NewApprovalQueryUseCase(approvals, &statusBankFake{}, discardLogger())

	records, err := uc.ApprovalsForStudent(context.Background(), "2023-DEL-0042")
	if err != nil {
		t.Fatalf("ApprovalsForStudent: %v", err)
	}
	if len(records) != 1 || records[0].InternshipID != "intern-1" {
		t.Fatalf("records = %v, want only the student's own approval", records)
	}
}
