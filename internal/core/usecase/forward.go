package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

// abcForwarder pushes an approved submission to the credit bank and
// mirrors the approval on the portal side: the approval record students
// query later, plus a portal account keyed by APAAR id.
type abcForwarder struct {
	bank      ports.CreditBank
	approvals ports.ApprovalRepository
	students  ports.StudentRepository
	logger    *slog.Logger
}

// Forward pushes the record's credit award and mutates the record with
// the bank's acknowledgement. The bank reports a fresh push as
// "uploaded"; the portal surfaces that as "accepted".
func (f *abcForwarder) Forward(ctx context.Context, record *domain.SubmissionRecord, approvedBy string) error {
	result, err := f.bank.Push(ctx, ports.CreditPush{
		StudentName:  record.Form.Name,
		APAARID:      record.Form.APAARID,
		Credits:      record.Credits,
		InternshipID: record.ID,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("push to credit bank: %w", err)
	}

	status := mapBankStatus(result.Status)
	record.ABCToken = result.Token
	record.ABCStatus = status

	approval := &domain.ABCApproval{
		InternshipID:    record.ID,
		ABCToken:        result.Token,
		APAARID:         record.Form.APAARID,
		StudentName:     record.Form.Name,
		Organization:    record.Form.Organization,
		InternshipTitle: record.Form.InternshipTitle,
		StartDate:       record.Form.StartDate,
		EndDate:         record.Form.EndDate,
		Hours:           record.Form.Hours,
		CreditsAwarded:  record.Credits,
		MatchedCourse:   record.TopMatchCourse(),
		Composite:       record.Composite,
		Status:          status,
		ApprovedBy:      approvedBy,
		ApprovedAt:      time.Now().UTC(),
	}
	if err := f.approvals.SaveApproval(ctx, approval); err != nil {
		return fmt.Errorf("save approval record: %w", err)
	}

	if err := f.provisionStudent(ctx, record); err != nil {
		// The approval stands; the account can be created on a later push.
		f.logger.Warn("provision abc student failed",
			"apaar_id", record.Form.APAARID, "error", err)
	}

	return nil
}

// provisionStudent creates the portal account on first approval. The
// initial password is the APAAR id itself.
func (f *abcForwarder) provisionStudent(ctx context.Context, record *domain.SubmissionRecord) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(record.Form.APAARID), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	return f.students.CreateStudentIfAbsent(ctx, &domain.ABCStudent{
		APAARID:      record.Form.APAARID,
		Name:         record.Form.Name,
		Email:        record.Form.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
}
