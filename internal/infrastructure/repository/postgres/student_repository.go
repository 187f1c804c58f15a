package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083103)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS abc_students (
	apaar_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// CreateStudentIfAbsent provisions the account on first approval and is a
// no-op for students that already exist.
func (r *StudentRepository) CreateStudentIfAbsent(ctx context.Context, student *domain.ABCStudent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO abc_students (apaar_id, name, email, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (apaar_id) DO NOTHING
`,
		student.APAARID, student.Name, student.Email, student.PasswordHash, student.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (r *StudentRepository) GetStudent(ctx context.Context, apaarID string) (*domain.ABCStudent, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT apaar_id, name, email, password_hash, created_at
FROM abc_students
WHERE apaar_id = $1
`, apaarID)

	var student domain.ABCStudent
	var email sql.NullString
	err := row.Scan(&student.APAARID, &student.Name, &email, &student.PasswordHash, &student.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "get student", fmt.Errorf("apaar id %s", apaarID))
		}
		return nil, fmt.Errorf("scan student: %w", err)
	}
	student.Email = email.String
	return &student, nil
}
