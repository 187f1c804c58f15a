package domain

import "time"

type UploadStatus string

const (
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusReady      UploadStatus = "ready"
	UploadStatusFailed     UploadStatus = "failed"
)

const (
	UploadSourceFile = "file"
	UploadSourceText = "text"
)

// CertificateUpload tracks one uploaded certificate source and, once the
// worker has run, its extraction result.
type CertificateUpload struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	StoragePath string           `json:"storage_path"`
	Source      string           `json:"source"`
	Status      UploadStatus     `json:"status"`
	Extracted   ExtractionResult `json:"extracted,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
