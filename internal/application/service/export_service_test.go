package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/akhil1198/ER/internal/domain/entity"
)

func TestExportService_ExportSubmissionsXLSX(t *testing.T) {
	repo := &mockSubmissionRepo{submissions: []*entity.Submission{
		{
			ID: 1, Kind: entity.SubmissionKindReport, Status: entity.SubmissionStatusSucceeded,
			ReportID: "R1", ReportName: "Q1 Travel", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			ID: 2, Kind: entity.SubmissionKindEntry, Status: entity.SubmissionStatusFailed,
			ReportID: "R1", Vendor: "Uber", Amount: decimal.RequireFromString("23.10"), Currency: "USD",
			ErrorMessage: "rejected", CreatedAt: time.Date(2024, 1, 2, 3, 5, 0, 0, time.UTC),
		},
	}}
	svc := NewExportService(repo, &mockLogger{})

	data, err := svc.ExportSubmissionsXLSX(context.Background(), entity.SubmissionFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(submissionSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, submissionHeaders, rows[0])
	assert.Equal(t, "Q1 Travel", rows[1][6])
	assert.Equal(t, "Uber", rows[2][9])
	assert.Equal(t, "23.1", rows[2][10])
	assert.Equal(t, "rejected", rows[2][13])
}

func TestExportService_SubmissionStats(t *testing.T) {
	repo := &mockSubmissionRepo{submissions: []*entity.Submission{
		{Status: entity.SubmissionStatusSucceeded},
		{Status: entity.SubmissionStatusSucceeded},
		{Status: entity.SubmissionStatusFailed},
	}}

	counts, err := NewExportService(repo, &mockLogger{}).SubmissionStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{entity.SubmissionStatusSucceeded: 2, entity.SubmissionStatusFailed: 1}, counts)
}
