package port

import (
	"context"

	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
)

// Extractor turns a receipt image into a loosely-typed expense record.
// Fields the extractor could not read are left empty.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte, mimeType string) (*expense.Record, error)
	Name() string
}

// ImageNormalizer converts uploads (PDF, HEIC) into an image the extractor accepts
type ImageNormalizer interface {
	Normalize(data []byte, mimeType string) ([]byte, string, error)
}

// ReportClient is the remote expense-management backend
type ReportClient interface {
	ListReports(ctx context.Context, limit int) ([]report.Summary, error)
	CreateReport(ctx context.Context, req report.CreateRequest) (string, error)
	CreateEntry(ctx context.Context, entry *expense.Payload) (string, error)
}

// ReportNotice describes a newly created report for notification
type ReportNotice struct {
	ReportID     string
	ReportName   string
	Purpose      string
	EntryCreated bool
	Vendor       string
	Amount       string
	Currency     string
}

// Notifier announces completed submissions to a chat channel
type Notifier interface {
	NotifyReportCreated(ctx context.Context, notice ReportNotice) error
}
