package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
)

// EntryResult is the outcome of attaching an expense to a report
type EntryResult struct {
	EntryID string                 `json:"entry_id,omitempty"`
	Created bool                   `json:"created"`
	Mapping *expense.MappingResult `json:"mapping"`
}

// ReportService manages reports outside the chat flow
type ReportService interface {
	ListReports(ctx context.Context) ([]report.Summary, error)
	CreateReport(ctx context.Context, req report.CreateRequest) (string, error)
	AddEntry(ctx context.Context, reportID string, rec *expense.Record) (*EntryResult, error)
}

type reportServiceImpl struct {
	client   port.ReportClient
	mapper   *expense.Mapper
	recorder *submissionRecorder
	limit    int
	timeout  time.Duration
	logger   Logger
}

// NewReportService creates a new ReportService
func NewReportService(client port.ReportClient, mapper *expense.Mapper, submissions port.SubmissionRepository, config ChatConfig, logger Logger) ReportService {
	limit := config.ReportListLimit
	if limit <= 0 {
		limit = 15
	}
	timeout := config.CallTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &reportServiceImpl{
		client:   client,
		mapper:   mapper,
		recorder: &submissionRecorder{repo: submissions, logger: logger},
		limit:    limit,
		timeout:  timeout,
		logger:   logger,
	}
}

func (s *reportServiceImpl) ListReports(ctx context.Context) ([]report.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reports, err := s.client.ListReports(ctx, s.limit)
	if err != nil {
		s.logger.Error("Failed to list reports", "error", err)
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// CreateReport fills in country and policy defaults the caller left empty
func (s *reportServiceImpl) CreateReport(ctx context.Context, req report.CreateRequest) (string, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.BusinessPurpose) == "" {
		return "", fmt.Errorf("%w: name and business purpose are required", ErrInvalidRequest)
	}
	if !req.GiftPolicyCompliance && !req.TaxPolicyCompliance {
		return "", fmt.Errorf("%w: at least one policy must be accepted", ErrInvalidRequest)
	}
	if req.CountryCode == "" {
		req.CountryCode = report.DefaultCountryCode
	}
	if req.CountrySubdivisionCode == "" {
		req.CountrySubdivisionCode = report.DefaultCountrySubdivisionCode
	}
	if req.PolicyID == "" {
		req.PolicyID = report.DefaultPolicyID
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	id, err := s.client.CreateReport(callCtx, req)
	cancel()
	s.recorder.report(ctx, "", req.Name, id, err)
	if err != nil {
		s.logger.Error("Failed to create report", "name", req.Name, "error", err)
		return "", fmt.Errorf("create report: %w", err)
	}

	s.logger.Info("Report created", "report_id", id, "name", req.Name)
	return id, nil
}

// AddEntry maps rec onto reportID. Invalid records are returned with their
// errors and no backend call is made.
func (s *reportServiceImpl) AddEntry(ctx context.Context, reportID string, rec *expense.Record) (*EntryResult, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, fmt.Errorf("%w: report id is required", ErrInvalidRequest)
	}

	result := s.mapper.Map(expense.Sanitize(rec), reportID)
	if !result.Valid() {
		return &EntryResult{Mapping: result}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	entryID, err := s.client.CreateEntry(callCtx, result.Payload)
	cancel()
	s.recorder.entry(ctx, "", "", result.Payload, entryID, err)
	if err != nil {
		s.logger.Error("Failed to create entry", "report_id", reportID, "error", err)
		return nil, fmt.Errorf("create entry: %w", err)
	}

	return &EntryResult{EntryID: entryID, Created: true, Mapping: result}, nil
}
