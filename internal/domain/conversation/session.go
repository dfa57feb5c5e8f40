package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
)

// Session is the per-user conversation state. Pending data is mutated only
// through Fire and the setters below.
type Session struct {
	ID                 string           `json:"id"`
	State              State            `json:"state"`
	CurrentRecord      *expense.Record  `json:"currentRecord,omitempty"`
	CurrentEntry       *expense.Payload `json:"currentEntry,omitempty"`
	PendingExpense     *expense.Record  `json:"pendingExpense,omitempty"`
	PendingReportDraft *report.Draft    `json:"pendingReportDraft,omitempty"`
	AvailableReports   []report.Summary `json:"availableReports,omitempty"`
	ReceiptFile        string           `json:"receiptFile,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// NewSession creates an empty session in the initial state
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fire validates trigger against the declared flow and applies it. On
// failure the session is left unchanged.
func (s *Session) Fire(ctx context.Context, trigger Trigger) error {
	m, err := flow().Build(s.State)
	if err != nil {
		return err
	}
	if err := m.Fire(withSession(ctx, s), trigger); err != nil {
		return err
	}
	s.enter(trigger, m.State())
	return nil
}

// CanFire reports whether trigger would currently succeed
func (s *Session) CanFire(ctx context.Context, trigger Trigger) bool {
	m, err := flow().Build(s.State)
	if err != nil {
		return false
	}
	return m.CanFire(withSession(ctx, s), trigger)
}

// enter applies the data changes that accompany a transition
func (s *Session) enter(trigger Trigger, to State) {
	switch trigger {
	case TriggerChooseNew:
		s.PendingExpense = s.CurrentRecord
		s.CurrentRecord = nil
		s.CurrentEntry = nil
	case TriggerReceiptProcessed, TriggerExpenseConfirmed:
		s.PendingExpense = nil
	}

	s.State = to
	if to != StateAwaitingTaxCompliance {
		s.PendingReportDraft = nil
	}
	if to != StateAwaitingReportSelection {
		s.AvailableReports = nil
	}
	if to == StateInitial {
		s.clear()
	}
}

// Reset abandons the current flow through the machine. A session whose
// stored state is unknown cannot be fired from and is cleared directly.
func (s *Session) Reset(ctx context.Context) {
	if err := s.Fire(ctx, TriggerReset); err != nil {
		s.State = StateInitial
		s.clear()
	}
}

func (s *Session) clear() {
	s.CurrentRecord = nil
	s.CurrentEntry = nil
	s.PendingExpense = nil
	s.PendingReportDraft = nil
	s.AvailableReports = nil
	s.ReceiptFile = ""
}

// Touch records activity
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
}

// IdleSince reports whether the session has been inactive since cutoff
func (s *Session) IdleSince(cutoff time.Time) bool {
	return s.UpdatedAt.Before(cutoff)
}

// HasPendingData reports whether any flow data is held
func (s *Session) HasPendingData() bool {
	return s.CurrentRecord != nil || s.CurrentEntry != nil || s.PendingExpense != nil ||
		s.PendingReportDraft != nil || len(s.AvailableReports) > 0
}

// ActiveRecord returns the expense that the next entry should be built from
func (s *Session) ActiveRecord() *expense.Record {
	if s.PendingExpense != nil {
		return s.PendingExpense
	}
	return s.CurrentRecord
}

// SetCurrent stores a freshly mapped record as the candidate entry
func (s *Session) SetCurrent(rec *expense.Record, entry *expense.Payload, receiptFile string) {
	s.CurrentRecord = rec
	s.CurrentEntry = entry
	if receiptFile != "" {
		s.ReceiptFile = receiptFile
	}
}

// SelectReport resolves a 1-based position in AvailableReports
func (s *Session) SelectReport(n int) (report.Summary, error) {
	if n < 1 || n > len(s.AvailableReports) {
		return report.Summary{}, fmt.Errorf("%w: %d not in 1-%d", ErrSelectionOutOfRange, n, len(s.AvailableReports))
	}
	return s.AvailableReports[n-1], nil
}

// Clone returns a deep copy safe to hand to another goroutine or store
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.CurrentRecord = s.CurrentRecord.Clone()
	c.PendingExpense = s.PendingExpense.Clone()
	if s.CurrentEntry != nil {
		e := *s.CurrentEntry
		c.CurrentEntry = &e
	}
	if s.PendingReportDraft != nil {
		d := *s.PendingReportDraft
		c.PendingReportDraft = &d
	}
	if s.AvailableReports != nil {
		c.AvailableReports = append([]report.Summary(nil), s.AvailableReports...)
	}
	return &c
}
