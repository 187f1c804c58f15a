// Package export produces the mentor-facing XLSX workbook of submission
// records.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

type Service struct {
	submissions ports.SubmissionRepository
	logger      *slog.Logger
}

func NewService(submissions ports.SubmissionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{submissions: submissions, logger: logger}
}

// ExportSubmissionsXLSX renders every submission as one workbook row,
// newest first.
func (s *Service) ExportSubmissionsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	records, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Submissions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{
		"Internship ID",
		"Student Name",
		"APAAR ID",
		"Organization",
		"Internship Title",
		"Start Date",
		"End Date",
		"Hours",
		"Top Course",
		"Composite Score",
		"Decision",
		"Credits",
		"Needs Review",
		"ABC Token",
		"ABC Status",
		"Submitted At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, record := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, record.ID)
		write(2, record.Form.Name)
		write(3, record.Form.APAARID)
		write(4, record.Form.Organization)
		write(5, record.Form.InternshipTitle)
		write(6, record.Form.StartDate)
		write(7, record.Form.EndDate)
		write(8, record.Form.Hours)
		write(9, record.TopMatchCourse())
		write(10, record.Composite)
		write(11, string(record.Decision))
		write(12, record.Credits)
		write(13, record.NeedsReview)
		write(14, record.ABCToken)
		write(15, record.ABCStatus)
		write(16, record.CreatedAt.UTC().Format(time.RFC3339))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "E", 26)
	_ = f.SetColWidth(sheet, "F", "H", 12)
	_ = f.SetColWidth(sheet, "I", "L", 16)
	_ = f.SetColWidth(sheet, "M", "P", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// Filename is the attachment name for a workbook generated now.
func Filename(now time.Time) string {
	stamp := now.UTC().Format("20060102-150405")
	return strings.Join([]string{"submissions", stamp}, "-") + ".xlsx"
}
