package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
)

var (
	sessionTime  = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	draftFixture = report.Draft{Name: "Q1 Travel", BusinessPurpose: "Client visit"}
)

func threeReports() []report.Summary {
	return []report.Summary{
		{ID: "A", Name: "Jan", Total: decimal.NewFromInt(10), Currency: "USD"},
		{ID: "B", Name: "Feb", Total: decimal.NewFromInt(20), Currency: "USD"},
		{ID: "C", Name: "Mar", Total: decimal.NewFromInt(30), Currency: "USD"},
	}
}

func awaitingChoice(t *testing.T) (*Session, *expense.Record) {
	t.Helper()
	rec := &expense.Record{Vendor: "Joe's Diner", Amount: expense.NewAmount(42.50), Category: "meals"}
	s := NewSession("s1", sessionTime)
	s.SetCurrent(rec, &expense.Payload{VendorDescription: "Joe's Diner"}, "receipts/abc.png")
	require.NoError(t, s.Fire(context.Background(), TriggerReceiptProcessed))
	return s, rec
}

func TestSession_ChooseNewPreservesRecord(t *testing.T) {
	s, rec := awaitingChoice(t)
	before := *rec

	require.NoError(t, s.Fire(context.Background(), TriggerChooseNew))

	assert.Equal(t, StateAwaitingReportDetails, s.State)
	assert.Same(t, rec, s.PendingExpense)
	assert.Equal(t, before, *s.PendingExpense)
	assert.Nil(t, s.CurrentEntry)
	assert.Nil(t, s.CurrentRecord)
	assert.Same(t, rec, s.ActiveRecord())
}

func TestSession_ChooseExistingNeedsReports(t *testing.T) {
	s, _ := awaitingChoice(t)

	err := s.Fire(context.Background(), TriggerChooseExisting)
	assert.ErrorIs(t, err, ErrGuardFailed)
	assert.Equal(t, StateAwaitingChoice, s.State)
	assert.NotNil(t, s.CurrentEntry)

	s.AvailableReports = threeReports()
	require.NoError(t, s.Fire(context.Background(), TriggerChooseExisting))
	assert.Equal(t, StateAwaitingReportSelection, s.State)
	assert.Len(t, s.AvailableReports, 3)
}

func TestSession_SelectReportOutOfRange(t *testing.T) {
	s, _ := awaitingChoice(t)
	s.AvailableReports = threeReports()
	require.NoError(t, s.Fire(context.Background(), TriggerChooseExisting))

	_, err := s.SelectReport(4)
	assert.ErrorIs(t, err, ErrSelectionOutOfRange)
	assert.Equal(t, StateAwaitingReportSelection, s.State)

	r, err := s.SelectReport(2)
	require.NoError(t, err)
	assert.Equal(t, "B", r.ID)
}

func TestSession_DraftOnlyWhileAwaitingCompliance(t *testing.T) {
	s, _ := awaitingChoice(t)
	require.NoError(t, s.Fire(context.Background(), TriggerChooseNew))

	err := s.Fire(context.Background(), TriggerDetailsParsed)
	assert.ErrorIs(t, err, ErrGuardFailed)

	d := draftFixture
	s.PendingReportDraft = &d
	require.NoError(t, s.Fire(context.Background(), TriggerDetailsParsed))
	assert.Equal(t, StateAwaitingTaxCompliance, s.State)
	assert.NotNil(t, s.PendingReportDraft)

	// a new receipt supersedes the draft
	s.SetCurrent(&expense.Record{Vendor: "Other"}, &expense.Payload{}, "")
	require.NoError(t, s.Fire(context.Background(), TriggerReceiptProcessed))
	assert.Equal(t, StateAwaitingChoice, s.State)
	assert.Nil(t, s.PendingReportDraft)
	assert.Nil(t, s.PendingExpense)
}

func TestSession_ComplianceWithoutDraftFails(t *testing.T) {
	s := NewSession("s1", sessionTime)
	s.State = StateAwaitingTaxCompliance

	assert.False(t, s.CanFire(context.Background(), TriggerComplianceAccepted))
	assert.ErrorIs(t, s.Fire(context.Background(), TriggerComplianceAccepted), ErrGuardFailed)
}

func TestSession_CompletionClearsEverything(t *testing.T) {
	s, _ := awaitingChoice(t)
	s.AvailableReports = threeReports()
	require.NoError(t, s.Fire(context.Background(), TriggerChooseExisting))
	require.NoError(t, s.Fire(context.Background(), TriggerReportSelected))

	assert.Equal(t, StateInitial, s.State)
	assert.False(t, s.HasPendingData())
	assert.Empty(t, s.ReceiptFile)
	assert.Equal(t, "s1", s.ID)
}

func TestSession_InvalidTransitionLeavesState(t *testing.T) {
	s := NewSession("s1", sessionTime)

	err := s.Fire(context.Background(), TriggerChooseNew)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateInitial, s.State)
}

func TestSession_CorruptStateIsReported(t *testing.T) {
	s := NewSession("s1", sessionTime)
	s.State = State("waiting_for_choice")

	assert.ErrorIs(t, s.Fire(context.Background(), TriggerReset), ErrInvalidState)
}

func TestSession_ResetFromAnyState(t *testing.T) {
	for _, state := range States() {
		s, _ := awaitingChoice(t)
		s.State = state
		require.NoError(t, s.Fire(context.Background(), TriggerReset), "from %s", state)
		assert.Equal(t, StateInitial, s.State)
		assert.False(t, s.HasPendingData())
	}
}

func TestSession_Reset(t *testing.T) {
	s, _ := awaitingChoice(t)
	s.ReceiptFile = "receipts/a.png"

	s.Reset(context.Background())
	assert.Equal(t, StateInitial, s.State)
	assert.False(t, s.HasPendingData())
	assert.Empty(t, s.ReceiptFile)

	corrupt := NewSession("s2", sessionTime)
	corrupt.State = State("waiting_for_choice")
	corrupt.PendingReportDraft = &report.Draft{Name: "Q1"}

	corrupt.Reset(context.Background())
	assert.Equal(t, StateInitial, corrupt.State)
	assert.Nil(t, corrupt.PendingReportDraft)
}

func TestStates_AllValid(t *testing.T) {
	states := States()
	require.Len(t, states, 5)
	for _, st := range states {
		assert.True(t, st.IsValid(), st.String())
	}
	assert.False(t, State("").IsValid())
	assert.True(t, StateInitial.IsTerminal())
	assert.False(t, StateAwaitingChoice.IsTerminal())
}

func TestFlow_EveryStateAcceptsReceiptAndReset(t *testing.T) {
	for _, st := range States() {
		m, err := flow().Build(st)
		require.NoError(t, err, st.String())
		assert.True(t, m.CanFire(context.Background(), TriggerReceiptProcessed), "receipt from %s", st)
		assert.True(t, m.CanFire(context.Background(), TriggerExpenseConfirmed), "confirm from %s", st)
		assert.True(t, m.CanFire(context.Background(), TriggerReset), "reset from %s", st)
	}
}

func TestSession_CloneIsDeep(t *testing.T) {
	s, _ := awaitingChoice(t)
	s.AvailableReports = threeReports()

	c := s.Clone()
	c.CurrentRecord.Vendor = "changed"
	c.CurrentEntry.VendorDescription = "changed"
	c.AvailableReports[0].Name = "changed"

	assert.Equal(t, "Joe's Diner", s.CurrentRecord.Vendor)
	assert.Equal(t, "Joe's Diner", s.CurrentEntry.VendorDescription)
	assert.Equal(t, "Jan", s.AvailableReports[0].Name)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestSession_IdleSince(t *testing.T) {
	s := NewSession("s1", sessionTime)
	assert.True(t, s.IdleSince(sessionTime.Add(time.Minute)))

	s.Touch(sessionTime.Add(2 * time.Minute))
	assert.False(t, s.IdleSince(sessionTime.Add(time.Minute)))
}
