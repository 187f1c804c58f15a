package textacq

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"context"
)

// ocrImage runs tesseract on a single image, reading the result from
// stdout. tesseract <img> stdout -l <lang>
func (a *Acquirer) ocrImage(ctx context.Context, path string) (string, error) {
	out, errb, err := a.runner.Run(ctx, a.cfg.Tesseract, path, "stdout", "-l", a.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(string(errb)))
	}
	return string(out), nil
}

// ocrPDF renders each page to PNG with pdftoppm and OCRs the pages in
// order. Per-page OCR failures skip the page rather than aborting.
func (a *Acquirer) ocrPDF(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "icp-ocr-*")
	if err != nil {
		return "", fmt.Errorf("ocr temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := a.runner.Run(ctx, a.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", a.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(errb)))
	}

	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if len(pages) == 0 {
		return "", fmt.Errorf("pdftoppm produced no pages")
	}

	var b strings.Builder
	for _, page := range pages {
		pageText, err := a.ocrImage(ctx, page)
		if err != nil {
			a.logger.Warn("page ocr failed", "page", page, "error", err)
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}
