package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

type ApprovalRepository struct {
	db *sql.DB
}

func NewApprovalRepository(db *sql.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083104)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS abc_approvals (
	internship_id TEXT PRIMARY KEY,
	abc_token TEXT NOT NULL UNIQUE,
	apaar_id TEXT NOT NULL,
	student_name TEXT NOT NULL,
	organization TEXT NOT NULL,
	internship_title TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	hours INTEGER NOT NULL,
	credits_awarded INTEGER NOT NULL,
	matched_course TEXT NOT NULL,
	composite DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL,
	approved_by TEXT NOT NULL,
	approved_at TIMESTAMPTZ NOT NULL,
	notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_abc_approvals_apaar_id ON abc_approvals(apaar_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const approvalColumns = `internship_id, abc_token, apaar_id, student_name, organization, internship_title,
start_date, end_date, hours, credits_awarded, matched_course, composite, status,
approved_by, approved_at, notes`

// SaveApproval upserts by internship id so a mentor re-push replaces the
// earlier approval instead of duplicating it.
func (r *ApprovalRepository) SaveApproval(ctx context.Context, approval *domain.ABCApproval) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO abc_approvals (`+approvalColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (internship_id) DO UPDATE SET
	abc_token = EXCLUDED.abc_token,
	credits_awarded = EXCLUDED.credits_awarded,
	matched_course = EXCLUDED.matched_course,
	composite = EXCLUDED.composite,
	status = EXCLUDED.status,
	approved_by = EXCLUDED.approved_by,
	approved_at = EXCLUDED.approved_at,
	notes = EXCLUDED.notes
`,
		approval.InternshipID, approval.ABCToken, approval.APAARID, approval.StudentName,
		approval.Organization, approval.InternshipTitle, approval.StartDate, approval.EndDate,
		approval.Hours, approval.CreditsAwarded, approval.MatchedCourse, approval.Composite,
		approval.Status, approval.ApprovedBy, approval.ApprovedAt, approval.Notes,
	)
	if err != nil {
		return fmt.Errorf("save approval: %w", err)
	}
	return nil
}

func (r *ApprovalRepository) GetApprovalByToken(ctx context.Context, token string) (*domain.ABCApproval, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+approvalColumns+`
FROM abc_approvals
WHERE abc_token = $1
`, token)

	approval, err := scanApproval(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrApprovalNotFound, "get approval", fmt.Errorf("token %s", token))
		}
		return nil, err
	}
	return approval, nil
}

func (r *ApprovalRepository) ListApprovalsByStudent(ctx context.Context, apaarID string) ([]domain.ABCApproval, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+approvalColumns+`
FROM abc_approvals
WHERE apaar_id = $1
ORDER BY approved_at DESC
`, apaarID)
	if err != nil {
		return nil, fmt.Errorf("query approvals: %w", err)
	}
	defer rows.Close()

	var approvals []domain.ABCApproval
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, *approval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}
	return approvals, nil
}

func scanApproval(row rowScanner) (*domain.ABCApproval, error) {
	var approval domain.ABCApproval
	var notes sql.NullString
	err := row.Scan(
		&approval.InternshipID, &approval.ABCToken, &approval.APAARID, &approval.StudentName,
		&approval.Organization, &approval.InternshipTitle, &approval.StartDate, &approval.EndDate,
		&approval.Hours, &approval.CreditsAwarded, &approval.MatchedCourse, &approval.Composite,
		&approval.Status, &approval.ApprovedBy, &approval.ApprovedAt, &notes,
	)
	if err != nil {
		return nil, err
	}
	approval.Notes = notes.String
	return &approval, nil
}
