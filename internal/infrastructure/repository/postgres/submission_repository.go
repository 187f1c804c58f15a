package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083102)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	upload_id TEXT,
	form JSONB NOT NULL,
	confidences JSONB,
	tokens JSONB,
	matches JSONB,
	composite DOUBLE PRECISION NOT NULL,
	decision TEXT NOT NULL,
	credits INTEGER NOT NULL,
	eligible BOOLEAN NOT NULL,
	needs_review BOOLEAN NOT NULL,
	auto_pushed BOOLEAN NOT NULL,
	abc_token TEXT,
	abc_status TEXT,
	changelog JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_needs_review ON submissions(needs_review) WHERE needs_review;
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const submissionColumns = `id, upload_id, form, confidences, tokens, matches, composite, decision,
credits, eligible, needs_review, auto_pushed, abc_token, abc_status, changelog, created_at, updated_at`

func (r *SubmissionRepository) CreateSubmission(ctx context.Context, record *domain.SubmissionRecord) error {
	cols, err := encodeSubmission(record)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO submissions (`+submissionColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
`,
		record.ID, record.UploadID, cols.form, cols.confidences, cols.tokens, cols.matches,
		record.Composite, string(record.Decision), record.Credits, record.Eligible,
		record.NeedsReview, record.AutoPushed, record.ABCToken, record.ABCStatus,
		cols.changelog, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) GetSubmission(ctx context.Context, id string) (*domain.SubmissionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+submissionColumns+`
FROM submissions
WHERE id = $1
`, id)

	record, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSubmissionNotFound, "get submission", fmt.Errorf("id %s", id))
		}
		return nil, err
	}
	return record, nil
}

func (r *SubmissionRepository) UpdateSubmission(ctx context.Context, record *domain.SubmissionRecord) error {
	cols, err := encodeSubmission(record)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET form = $2, confidences = $3, tokens = $4, matches = $5, composite = $6, decision = $7,
	credits = $8, eligible = $9, needs_review = $10, auto_pushed = $11,
	abc_token = $12, abc_status = $13, changelog = $14, updated_at = $15
WHERE id = $1
`,
		record.ID, cols.form, cols.confidences, cols.tokens, cols.matches,
		record.Composite, string(record.Decision), record.Credits, record.Eligible,
		record.NeedsReview, record.AutoPushed, record.ABCToken, record.ABCStatus,
		cols.changelog, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSubmissionNotFound, "update submission", fmt.Errorf("id %s", record.ID))
	}
	return nil
}

func (r *SubmissionRepository) DeleteSubmission(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete submission rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSubmissionNotFound, "delete submission", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *SubmissionRepository) ListNeedingReview(ctx context.Context) ([]domain.SubmissionRecord, error) {
	return r.list(ctx, `
SELECT `+submissionColumns+`
FROM submissions
WHERE needs_review
ORDER BY created_at DESC
`)
}

func (r *SubmissionRepository) ListAll(ctx context.Context) ([]domain.SubmissionRecord, error) {
	return r.list(ctx, `
SELECT `+submissionColumns+`
FROM submissions
ORDER BY created_at DESC
`)
}

func (r *SubmissionRepository) list(ctx context.Context, query string) ([]domain.SubmissionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var records []domain.SubmissionRecord
	for rows.Next() {
		record, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return records, nil
}

type submissionJSON struct {
	form        []byte
	confidences []byte
	tokens      []byte
	matches     []byte
	changelog   []byte
}

func encodeSubmission(record *domain.SubmissionRecord) (*submissionJSON, error) {
	form, err := json.Marshal(record.Form)
	if err != nil {
		return nil, fmt.Errorf("marshal form: %w", err)
	}
	confidences, err := marshalOrNull(record.Confidences)
	if err != nil {
		return nil, fmt.Errorf("marshal confidences: %w", err)
	}
	tokens, err := marshalOrNull(record.Tokens)
	if err != nil {
		return nil, fmt.Errorf("marshal tokens: %w", err)
	}
	matches, err := marshalOrNull(record.Matches)
	if err != nil {
		return nil, fmt.Errorf("marshal matches: %w", err)
	}
	changelog, err := marshalOrNull(record.Changelog)
	if err != nil {
		return nil, fmt.Errorf("marshal changelog: %w", err)
	}
	return &submissionJSON{
		form:        form,
		confidences: confidences,
		tokens:      tokens,
		matches:     matches,
		changelog:   changelog,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.SubmissionRecord, error) {
	var record domain.SubmissionRecord
	var uploadID, abcToken, abcStatus sql.NullString
	var decision string
	var formRaw, confidencesRaw, tokensRaw, matchesRaw, changelogRaw []byte

	err := row.Scan(
		&record.ID, &uploadID, &formRaw, &confidencesRaw, &tokensRaw, &matchesRaw,
		&record.Composite, &decision, &record.Credits, &record.Eligible,
		&record.NeedsReview, &record.AutoPushed, &abcToken, &abcStatus,
		&changelogRaw, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(formRaw, &record.Form); err != nil {
		return nil, fmt.Errorf("unmarshal form: %w", err)
	}
	if err := unmarshalIfPresent(confidencesRaw, &record.Confidences); err != nil {
		return nil, fmt.Errorf("unmarshal confidences: %w", err)
	}
	if err := unmarshalIfPresent(tokensRaw, &record.Tokens); err != nil {
		return nil, fmt.Errorf("unmarshal tokens: %w", err)
	}
	if err := unmarshalIfPresent(matchesRaw, &record.Matches); err != nil {
		return nil, fmt.Errorf("unmarshal matches: %w", err)
	}
	if err := unmarshalIfPresent(changelogRaw, &record.Changelog); err != nil {
		return nil, fmt.Errorf("unmarshal changelog: %w", err)
	}

	record.UploadID = uploadID.String
	record.ABCToken = abcToken.String
	record.ABCStatus = abcStatus.String
	record.Decision = domain.Decision(decision)
	return &record, nil
}

func unmarshalIfPresent(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
