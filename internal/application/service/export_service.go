package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/entity"
)

const submissionSheet = "Submissions"

var submissionHeaders = []string{
	"ID", "Created At", "Kind", "Status", "Session",
	"Report ID", "Report Name", "Entry ID", "Expense Code",
	"Vendor", "Amount", "Currency", "Receipt", "Error",
}

// ExportService renders the submission audit log as a workbook
type ExportService interface {
	ExportSubmissionsXLSX(ctx context.Context, filter entity.SubmissionFilter) ([]byte, error)
	SubmissionStats(ctx context.Context) (map[string]int, error)
}

type exportServiceImpl struct {
	submissions port.SubmissionRepository
	logger      Logger
}

// NewExportService creates a new ExportService
func NewExportService(submissions port.SubmissionRepository, logger Logger) ExportService {
	return &exportServiceImpl{submissions: submissions, logger: logger}
}

func (s *exportServiceImpl) ExportSubmissionsXLSX(ctx context.Context, filter entity.SubmissionFilter) ([]byte, error) {
	start := time.Now()

	rows, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), submissionSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range submissionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(submissionSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, sub := range rows {
		values := []interface{}{
			sub.ID,
			sub.CreatedAt.Format(time.RFC3339),
			sub.Kind,
			sub.Status,
			sub.SessionID,
			sub.ReportID,
			sub.ReportName,
			sub.EntryID,
			sub.ExpenseTypeCode,
			sub.Vendor,
			sub.Amount.InexactFloat64(),
			sub.Currency,
			sub.ReceiptFile,
			sub.ErrorMessage,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(submissionSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(submissionSheet, "B", "B", 22)
	_ = f.SetColWidth(submissionSheet, "F", "G", 28)
	_ = f.SetColWidth(submissionSheet, "J", "J", 28)
	_ = f.SetColWidth(submissionSheet, "N", "N", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("Submissions exported", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// SubmissionStats counts audited submissions per status
func (s *exportServiceImpl) SubmissionStats(ctx context.Context) (map[string]int, error) {
	counts, err := s.submissions.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	return counts, nil
}
