package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	extracted JSONB,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *UploadRepository) CreateUpload(ctx context.Context, upload *domain.CertificateUpload) error {
	var extractedJSON []byte
	if upload.Extracted != nil {
		var err error
		extractedJSON, err = json.Marshal(upload.Extracted)
		if err != nil {
			return fmt.Errorf("marshal extraction: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO uploads (
	id, filename, storage_path, source, status, extracted, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		upload.ID, upload.Filename, upload.StoragePath, upload.Source,
		string(upload.Status), extractedJSON, upload.Error, upload.CreatedAt, upload.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *UploadRepository) GetUpload(ctx context.Context, id string) (*domain.CertificateUpload, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, storage_path, source, status, extracted, error_message, created_at, updated_at
FROM uploads
WHERE id = $1
`, id)

	var upload domain.CertificateUpload
	var extractedRaw []byte
	var status string

	err := row.Scan(
		&upload.ID, &upload.Filename, &upload.StoragePath, &upload.Source,
		&status, &extractedRaw, &upload.Error, &upload.CreatedAt, &upload.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}

	if len(extractedRaw) > 0 {
		if err := json.Unmarshal(extractedRaw, &upload.Extracted); err != nil {
			return nil, fmt.Errorf("unmarshal extraction: %w", err)
		}
	}
	upload.Status = domain.UploadStatus(status)
	return &upload, nil
}

func (r *UploadRepository) UpdateUploadStatus(ctx context.Context, id string, status domain.UploadStatus, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE uploads
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update upload status: %w", err)
	}
	return nil
}

func (r *UploadRepository) SaveExtraction(ctx context.Context, id string, result domain.ExtractionResult) error {
	extractedJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal extraction: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
UPDATE uploads
SET extracted = $2, updated_at = $3
WHERE id = $1
`, id, extractedJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}
	return nil
}

func marshalOrNull(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
