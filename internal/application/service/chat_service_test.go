package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhil1198/ER/internal/domain/conversation"
	"github.com/akhil1198/ER/internal/domain/entity"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
)

type chatFixture struct {
	svc      *chatServiceImpl
	store    *mockSessionStore
	reports  *mockReportClient
	subs     *mockSubmissionRepo
	notifier *mockNotifier
	storage  *mockStorage
}

func diner() *expense.Record {
	return &expense.Record{Vendor: "Joe's Diner", Amount: expense.NewAmount(42.50), Category: "meals"}
}

func newChatFixture(extract func(ctx context.Context, data []byte, mimeType string) (*expense.Record, error)) *chatFixture {
	f := &chatFixture{
		store:    newMockSessionStore(),
		reports:  &mockReportClient{},
		subs:     &mockSubmissionRepo{},
		notifier: &mockNotifier{},
		storage:  &mockStorage{},
	}
	if extract == nil {
		extract = func(ctx context.Context, data []byte, mimeType string) (*expense.Record, error) {
			return diner(), nil
		}
	}
	svc := NewChatService(ChatDeps{
		Sessions:    f.store,
		Extractor:   &mockExtractor{extractFunc: extract},
		Reports:     f.reports,
		Storage:     f.storage,
		Notifier:    f.notifier,
		Submissions: f.subs,
		Mapper:      newTestMapper(),
	}, ChatConfig{}, &mockLogger{})
	f.svc = svc.(*chatServiceImpl)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *chatFixture) upload(t *testing.T, sessionID string) *ChatResponse {
	t.Helper()
	resp := f.svc.ProcessReceipt(context.Background(), sessionID, ReceiptUpload{
		Filename: "receipt.PNG",
		MimeType: "image/png",
		Data:     []byte("png-bytes"),
	})
	require.True(t, resp.Success, resp.Message)
	require.Equal(t, conversation.StateAwaitingChoice, resp.State)
	return resp
}

func (f *chatFixture) send(sessionID, text string) *ChatResponse {
	return f.svc.HandleMessage(context.Background(), sessionID, text)
}

func (f *chatFixture) session(t *testing.T, id string) *conversation.Session {
	t.Helper()
	s, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func threeSummaries() []report.Summary {
	return []report.Summary{
		{ID: "A", Name: "January", Total: decimal.NewFromInt(100), Currency: "USD", Status: report.StatusApproved},
		{ID: "B", Name: "February", Total: decimal.NewFromInt(200), Currency: "USD", Status: report.StatusDraft},
		{ID: "C", Name: "March", Total: decimal.NewFromInt(300), Currency: "USD", Status: report.StatusSubmitted},
	}
}

func TestChatService_ReceiptThenEmptyListingStaysAwaitingChoice(t *testing.T) {
	f := newChatFixture(nil)

	resp := f.upload(t, "s1")
	require.NotNil(t, resp.ExpenseData)
	assert.Equal(t, "Joe's Diner", resp.ExpenseData.Mapping.Payload.VendorDescription)
	assert.Equal(t, "Meals & Entertainment", resp.ExpenseData.Record.Category)
	assert.Len(t, f.storage.saved, 1)

	resp = f.send("s1", "2")
	assert.True(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingChoice, resp.State)
	assert.Contains(t, resp.Message, "No existing reports found")
	assert.NotNil(t, f.session(t, "s1").CurrentEntry)
}

func TestChatService_ChooseNewPreservesPendingExpense(t *testing.T) {
	f := newChatFixture(nil)
	f.upload(t, "s1")
	before := f.session(t, "s1").CurrentRecord

	resp := f.send("s1", "1")
	assert.True(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingReportDetails, resp.State)

	sess := f.session(t, "s1")
	require.NotNil(t, sess.PendingExpense)
	assert.Equal(t, before.Vendor, sess.PendingExpense.Vendor)
	assert.True(t, before.Amount.Decimal.Equal(sess.PendingExpense.Amount.Decimal))
	assert.Nil(t, sess.CurrentEntry)
}

func TestChatService_NewReportFlow(t *testing.T) {
	f := newChatFixture(nil)
	f.upload(t, "s1")
	f.send("s1", "1")

	resp := f.send("s1", "Report Name: Q1 Travel\nBusiness Purpose: Client visit")
	assert.True(t, resp.Success)
	assert.True(t, resp.NeedsComplianceAck)
	assert.Equal(t, conversation.StateAwaitingTaxCompliance, resp.State)
	draft := f.session(t, "s1").PendingReportDraft
	require.NotNil(t, draft)
	assert.Equal(t, "Q1 Travel", draft.Name)
	assert.Empty(t, f.reports.created)

	resp = f.send("s1", "I agree to both policies")
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, conversation.StateInitial, resp.State)
	assert.Equal(t, "RPT-NEW", resp.ReportID)
	assert.Equal(t, "ENT-1", resp.EntryID)

	require.Len(t, f.reports.created, 1)
	req := f.reports.created[0]
	assert.True(t, req.GiftPolicyCompliance)
	assert.True(t, req.TaxPolicyCompliance)
	assert.Equal(t, "Client visit", req.BusinessPurpose)
	assert.Equal(t, report.DefaultPolicyID, req.PolicyID)
	assert.Equal(t, "US-WA", req.CountrySubdivisionCode)

	require.Len(t, f.reports.entries, 1)
	assert.Equal(t, "RPT-NEW", f.reports.entries[0].ReportID)
	assert.Equal(t, "2024-03-15", f.reports.entries[0].TransactionDate)

	require.Len(t, f.subs.submissions, 2)
	assert.Equal(t, entity.SubmissionKindReport, f.subs.submissions[0].Kind)
	assert.Equal(t, entity.SubmissionKindEntry, f.subs.submissions[1].Kind)
	assert.NotEmpty(t, f.subs.submissions[1].ReceiptFile)

	require.Len(t, f.notifier.notices, 1)
	assert.True(t, f.notifier.notices[0].EntryCreated)
	assert.Equal(t, "42.50", f.notifier.notices[0].Amount)

	assert.False(t, f.session(t, "s1").HasPendingData())
}

func TestChatService_ComplianceNotAccepted(t *testing.T) {
	f := newChatFixture(nil)
	f.upload(t, "s1")
	f.send("s1", "1")
	f.send("s1", "Name: Trip\nPurpose: Visit")

	resp := f.send("s1", "what does the gift policy say?")
	assert.False(t, resp.Success)
	assert.True(t, resp.NeedsComplianceAck)
	assert.Equal(t, conversation.StateAwaitingTaxCompliance, resp.State)
	assert.Empty(t, f.reports.created)
}

func TestChatService_ComplianceWithoutDraftExpires(t *testing.T) {
	f := newChatFixture(nil)
	sess := conversation.NewSession("s1", testNow)
	sess.State = conversation.StateAwaitingTaxCompliance
	f.store.put(sess)

	resp := f.send("s1", "I agree to both")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Session expired")
	assert.Equal(t, conversation.StateInitial, resp.State)
	assert.Empty(t, f.reports.created)
}

func TestChatService_ReportCreationFailureResets(t *testing.T) {
	f := newChatFixture(nil)
	f.reports.createReportFunc = func(ctx context.Context, req report.CreateRequest) (string, error) {
		return "", errors.New("backend down")
	}
	f.upload(t, "s1")
	f.send("s1", "1")
	f.send("s1", "Name: Trip\nPurpose: Visit")

	resp := f.send("s1", "gift: yes")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "backend down")
	assert.Equal(t, conversation.StateInitial, resp.State)
	assert.Empty(t, f.reports.entries)

	require.Len(t, f.subs.submissions, 1)
	assert.Equal(t, entity.SubmissionStatusFailed, f.subs.submissions[0].Status)
	assert.Empty(t, f.notifier.notices)
}

func TestChatService_EntryFailureKeepsReport(t *testing.T) {
	f := newChatFixture(nil)
	f.reports.createEntryFunc = func(ctx context.Context, entry *expense.Payload) (string, error) {
		return "", errors.New("entry rejected")
	}
	f.upload(t, "s1")
	f.send("s1", "1")
	f.send("s1", "Name: Trip\nPurpose: Visit")

	resp := f.send("s1", "IRS: true")
	assert.True(t, resp.Success)
	assert.Equal(t, "RPT-NEW", resp.ReportID)
	assert.Contains(t, resp.Message, "entry rejected")
	assert.Equal(t, conversation.StateInitial, resp.State)
	assert.False(t, f.reports.created[0].GiftPolicyCompliance)
	assert.True(t, f.reports.created[0].TaxPolicyCompliance)
}

func TestChatService_InvalidExpenseIsNotSubmitted(t *testing.T) {
	f := newChatFixture(func(ctx context.Context, data []byte, mimeType string) (*expense.Record, error) {
		return &expense.Record{Vendor: "Cafe"}, nil
	})
	f.upload(t, "s1")
	f.send("s1", "1")
	f.send("s1", "Name: Trip\nPurpose: Visit")

	resp := f.send("s1", "accept both")
	assert.True(t, resp.Success)
	assert.True(t, resp.ValidationErrors.Has("amount"))
	assert.Empty(t, f.reports.entries)
	assert.Len(t, f.reports.created, 1)
}

func TestChatService_ExistingReportSelection(t *testing.T) {
	f := newChatFixture(nil)
	f.reports.listReportsFunc = func(ctx context.Context, limit int) ([]report.Summary, error) {
		assert.Equal(t, 15, limit)
		return threeSummaries(), nil
	}
	f.upload(t, "s1")

	resp := f.send("s1", "existing")
	assert.True(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingReportSelection, resp.State)
	assert.Len(t, resp.Reports, 3)
	assert.Contains(t, resp.Message, "**2.**")

	resp = f.send("s1", "4")
	assert.False(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingReportSelection, resp.State)
	assert.Contains(t, resp.Message, "between 1 and 3")

	resp = f.send("s1", "second one")
	assert.False(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingReportSelection, resp.State)

	resp = f.send("s1", "2")
	assert.True(t, resp.Success, resp.Message)
	assert.Equal(t, conversation.StateInitial, resp.State)
	assert.Equal(t, "B", resp.ReportID)
	require.Len(t, f.reports.entries, 1)
	assert.Equal(t, "B", f.reports.entries[0].ReportID)
}

func TestChatService_ListingFailureKeepsChoice(t *testing.T) {
	f := newChatFixture(nil)
	f.reports.listReportsFunc = func(ctx context.Context, limit int) ([]report.Summary, error) {
		return nil, context.DeadlineExceeded
	}
	f.upload(t, "s1")

	resp := f.send("s1", "2")
	assert.False(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingChoice, resp.State)
}

func TestChatService_UnknownChoice(t *testing.T) {
	f := newChatFixture(nil)
	f.upload(t, "s1")

	resp := f.send("s1", "maybe later")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "**1**")
	assert.Equal(t, conversation.StateAwaitingChoice, resp.State)
}

func TestChatService_UnparsableReportDetails(t *testing.T) {
	f := newChatFixture(nil)
	f.upload(t, "s1")
	f.send("s1", "1")

	resp := f.send("s1", "something vague")
	assert.False(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingReportDetails, resp.State)
}

func TestChatService_ExtractionFailureUsesPlaceholder(t *testing.T) {
	f := newChatFixture(func(ctx context.Context, data []byte, mimeType string) (*expense.Record, error) {
		return nil, errors.New("model unavailable")
	})

	resp := f.upload(t, "s1")
	require.NotNil(t, resp.ExpenseData)
	assert.NotEmpty(t, resp.ExpenseData.Warning)
	assert.Equal(t, "Other", resp.ExpenseData.Record.Category)
	assert.True(t, resp.ValidationErrors.Has("vendor"))
}

func TestChatService_PanicResetsSession(t *testing.T) {
	f := newChatFixture(nil)
	f.reports.listReportsFunc = func(ctx context.Context, limit int) ([]report.Summary, error) {
		panic("boom")
	}
	f.upload(t, "s1")

	resp := f.send("s1", "2")
	assert.False(t, resp.Success)
	assert.Equal(t, conversation.StateInitial, resp.State)
	assert.False(t, f.session(t, "s1").HasPendingData())
}

func TestChatService_InitialCommands(t *testing.T) {
	f := newChatFixture(nil)
	f.reports.listReportsFunc = func(ctx context.Context, limit int) ([]report.Summary, error) {
		return threeSummaries(), nil
	}

	resp := f.send("s1", "help")
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "Here's what I can help you with")
	assert.Equal(t, conversation.StateInitial, resp.State)

	resp = f.send("s1", "show my reports")
	assert.True(t, resp.Success)
	assert.Len(t, resp.Reports, 3)
	assert.Equal(t, conversation.StateInitial, resp.State)

	resp = f.send("s1", "hello")
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "Welcome")
}

func TestChatService_GeneratesSessionID(t *testing.T) {
	f := newChatFixture(nil)

	resp := f.send("", "hi")
	assert.NotEmpty(t, resp.SessionID)
	_, err := f.store.Get(context.Background(), resp.SessionID)
	assert.NoError(t, err)
}

func TestChatService_ConfirmExpenseReplacesRecord(t *testing.T) {
	f := newChatFixture(nil)
	f.upload(t, "s1")
	f.send("s1", "1")

	corrected := &expense.Record{
		ExpenseType:    "Meals with Client(s) - In Town",
		MealType:       "dinner",
		Vendor:         "Steakhouse",
		Amount:         expense.NewAmount(180),
		AttendeesCount: 1,
	}
	resp := f.svc.ConfirmExpense(context.Background(), "s1", corrected)
	assert.True(t, resp.Success)
	assert.Equal(t, conversation.StateAwaitingChoice, resp.State)
	assert.True(t, resp.ValidationErrors.Has("client_prospect_name"))
	assert.True(t, resp.ValidationErrors.Has("attendees_count"))

	sess := f.session(t, "s1")
	assert.Nil(t, sess.PendingExpense)
	assert.Equal(t, "Steakhouse", sess.CurrentRecord.Vendor)
	assert.Equal(t, "Dinner", sess.CurrentRecord.MealType)
}

func TestChatService_ResetSession(t *testing.T) {
	f := newChatFixture(nil)
	f.upload(t, "s1")

	require.NoError(t, f.svc.ResetSession(context.Background(), "s1"))
	_, err := f.svc.GetSession(context.Background(), "s1")
	assert.Error(t, err)

	resp := f.send("s1", "1")
	assert.Equal(t, conversation.StateInitial, resp.State)
	assert.True(t, strings.Contains(resp.Message, "Welcome"))
}

func TestChatService_AuditFailureDoesNotChangeOutcome(t *testing.T) {
	f := newChatFixture(nil)
	f.subs.createErr = errors.New("disk full")
	f.upload(t, "s1")
	f.send("s1", "1")
	f.send("s1", "Name: Trip\nPurpose: Visit")

	resp := f.send("s1", "yes to both")
	assert.True(t, resp.Success)
	assert.Equal(t, "ENT-1", resp.EntryID)
}

func requireCallDeadline(t *testing.T, ctx context.Context, limit time.Duration) {
	t.Helper()
	deadline, ok := ctx.Deadline()
	require.True(t, ok, "collaborator call without deadline")
	remaining := time.Until(deadline)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, limit)
}

// waitForCancel blocks like a hung backend until ctx ends
func waitForCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return errors.New("context was never cancelled")
	}
}

func TestChatService_CollaboratorCallsCarryCallTimeout(t *testing.T) {
	const limit = 2 * time.Second
	var checked []string

	f := newChatFixture(func(ctx context.Context, data []byte, mimeType string) (*expense.Record, error) {
		requireCallDeadline(t, ctx, limit)
		checked = append(checked, "extract")
		return diner(), nil
	})
	f.svc.config.CallTimeout = limit
	f.reports.listReportsFunc = func(ctx context.Context, n int) ([]report.Summary, error) {
		requireCallDeadline(t, ctx, limit)
		checked = append(checked, "list")
		return threeSummaries(), nil
	}
	f.reports.createReportFunc = func(ctx context.Context, req report.CreateRequest) (string, error) {
		requireCallDeadline(t, ctx, limit)
		checked = append(checked, "report")
		return "RPT-NEW", nil
	}
	f.reports.createEntryFunc = func(ctx context.Context, entry *expense.Payload) (string, error) {
		requireCallDeadline(t, ctx, limit)
		checked = append(checked, "entry")
		return "ENT-1", nil
	}

	f.upload(t, "s1")
	f.send("s1", "2")
	require.True(t, f.send("s1", "1").Success)

	f.upload(t, "s2")
	f.send("s2", "1")
	f.send("s2", "Report Name: Q1 Travel\nBusiness Purpose: Client visit")
	require.True(t, f.send("s2", "I agree to both policies").Success)

	assert.Equal(t, []string{"extract", "list", "entry", "extract", "report", "entry"}, checked)
}

func TestChatService_SlowCollaboratorsHitCallTimeout(t *testing.T) {
	t.Run("extraction falls back to placeholder", func(t *testing.T) {
		f := newChatFixture(func(ctx context.Context, data []byte, mimeType string) (*expense.Record, error) {
			return nil, waitForCancel(ctx)
		})
		f.svc.config.CallTimeout = 20 * time.Millisecond

		resp := f.upload(t, "s1")
		require.NotNil(t, resp.ExpenseData)
		assert.NotEmpty(t, resp.ExpenseData.Warning)
	})

	t.Run("listing keeps the choice", func(t *testing.T) {
		f := newChatFixture(nil)
		f.svc.config.CallTimeout = 20 * time.Millisecond
		var callErr error
		f.reports.listReportsFunc = func(ctx context.Context, n int) ([]report.Summary, error) {
			callErr = waitForCancel(ctx)
			return nil, callErr
		}
		f.upload(t, "s1")

		resp := f.send("s1", "2")
		assert.ErrorIs(t, callErr, context.DeadlineExceeded)
		assert.False(t, resp.Success)
		assert.Equal(t, conversation.StateAwaitingChoice, resp.State)
		assert.NotNil(t, f.session(t, "s1").CurrentRecord)
	})

	t.Run("report creation resets", func(t *testing.T) {
		f := newChatFixture(nil)
		f.svc.config.CallTimeout = 20 * time.Millisecond
		var callErr error
		f.reports.createReportFunc = func(ctx context.Context, req report.CreateRequest) (string, error) {
			callErr = waitForCancel(ctx)
			return "", callErr
		}
		f.upload(t, "s1")
		f.send("s1", "1")
		f.send("s1", "Report Name: Q1 Travel\nBusiness Purpose: Client visit")

		resp := f.send("s1", "I agree to both policies")
		assert.ErrorIs(t, callErr, context.DeadlineExceeded)
		assert.False(t, resp.Success)
		assert.Equal(t, conversation.StateInitial, resp.State)
		assert.False(t, f.session(t, "s1").HasPendingData())
		assert.Empty(t, f.reports.entries)
	})
}
