package service

import (
	"context"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/entity"
	"github.com/akhil1198/ER/internal/domain/expense"
)

// submissionRecorder writes the audit trail. Audit failures are logged and
// never change the outcome of the call being audited.
type submissionRecorder struct {
	repo   port.SubmissionRepository
	logger Logger
}

func (r *submissionRecorder) report(ctx context.Context, sessionID, name, reportID string, callErr error) {
	s := &entity.Submission{
		SessionID:  sessionID,
		Kind:       entity.SubmissionKindReport,
		ReportID:   reportID,
		ReportName: name,
	}
	r.record(ctx, s, callErr)
}

func (r *submissionRecorder) entry(ctx context.Context, sessionID, receiptFile string, p *expense.Payload, entryID string, callErr error) {
	s := &entity.Submission{
		SessionID:       sessionID,
		Kind:            entity.SubmissionKindEntry,
		ReportID:        p.ReportID,
		EntryID:         entryID,
		ExpenseTypeCode: p.ExpenseTypeCode,
		Vendor:          p.VendorDescription,
		Amount:          p.TransactionAmount,
		Currency:        p.TransactionCurrencyCode,
		ReceiptFile:     receiptFile,
	}
	r.record(ctx, s, callErr)
}

func (r *submissionRecorder) record(ctx context.Context, s *entity.Submission, callErr error) {
	if r == nil || r.repo == nil {
		return
	}
	s.Status = entity.SubmissionStatusSucceeded
	if callErr != nil {
		s.Status = entity.SubmissionStatusFailed
		s.ErrorMessage = callErr.Error()
	}
	// the caller's context may already be past its deadline
	if err := r.repo.Create(context.WithoutCancel(ctx), s); err != nil {
		r.logger.Error("Failed to record submission", "kind", s.Kind, "session_id", s.SessionID, "error", err)
	}
}
