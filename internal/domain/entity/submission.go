package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Submission kinds
const (
	SubmissionKindReport = "REPORT"
	SubmissionKindEntry  = "ENTRY"
)

// Submission status constants
const (
	SubmissionStatusSucceeded = "SUCCEEDED"
	SubmissionStatusFailed    = "FAILED"
)

// Submission is one audited call to the expense backend
type Submission struct {
	ID              int64           `json:"id"`
	SessionID       string          `json:"session_id"`
	Kind            string          `json:"kind"`
	Status          string          `json:"status"`
	ReportID        string          `json:"report_id,omitempty"`
	ReportName      string          `json:"report_name,omitempty"`
	EntryID         string          `json:"entry_id,omitempty"`
	ExpenseTypeCode string          `json:"expense_type_code,omitempty"`
	Vendor          string          `json:"vendor,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency,omitempty"`
	ReceiptFile     string          `json:"receipt_file,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Succeeded reports whether the backend accepted the call
func (s *Submission) Succeeded() bool {
	return s.Status == SubmissionStatusSucceeded
}

// SubmissionFilter narrows a submission listing
type SubmissionFilter struct {
	SessionID string
	Kind      string
	Since     *time.Time
	Limit     int
	Offset    int
}
