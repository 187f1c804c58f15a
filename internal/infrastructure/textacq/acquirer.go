// Package textacq obtains raw text from certificate sources: typed text
// files, word-processor documents, searchable PDFs, and scanned PDFs or
// images via OCR. It is a pure I/O adapter with no decision logic; every
// failure degrades to an empty or partial string instead of an error.
package textacq

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Tesseract string // binary name or absolute path; empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; empty -> "pdftoppm"
	Language  string // tesseract language, default "eng"
	DPI       int    // rasterization DPI for scanned PDFs, default 300
}

type Acquirer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Acquirer{cfg: cfg, runner: execRunner{}, logger: logger}
}

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".tiff": {}, ".bmp": {},
}

// AcquireText dispatches on the file extension. Unknown extensions and
// adapter failures yield an empty string; the downstream extractor turns
// that into the canonical all-empty result.
func (a *Acquirer) AcquireText(ctx context.Context, path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == ".docx":
		text, err := readDocx(path)
		if err != nil {
			a.logger.Warn("docx read failed", "path", path, "error", err)
			return ""
		}
		return text

	case ext == ".pdf":
		return a.readPDF(ctx, path)

	case ext == ".txt":
		raw, err := os.ReadFile(path)
		if err != nil {
			a.logger.Warn("text read failed", "path", path, "error", err)
			return ""
		}
		return string(raw)

	default:
		if _, ok := imageExts[ext]; ok {
			text, err := a.ocrImage(ctx, path)
			if err != nil {
				a.logger.Warn("image ocr failed", "path", path, "error", err)
				return ""
			}
			return text
		}
		return ""
	}
}

// readPDF tries the structured text layer first and falls back to
// rasterize-and-OCR when the layer is blank.
func (a *Acquirer) readPDF(ctx context.Context, path string) string {
	text, err := pdfTextLayer(path)
	if err != nil {
		a.logger.Warn("pdf text layer failed", "path", path, "error", err)
	}
	if strings.TrimSpace(text) != "" {
		return text
	}

	text, err = a.ocrPDF(ctx, path)
	if err != nil {
		a.logger.Warn("pdf ocr failed", "path", path, "error", err)
		return ""
	}
	return text
}
