package conversation

import (
	"context"
	"sync"
)

type sessionKey struct{}

// flow is the one declaration of legal session transitions. It is built on
// first use and never configured afterwards, so machines need no locking.
var flow = sync.OnceValue(defineFlow)

func defineFlow() Builder {
	b := NewBuilder()

	// a new receipt or a corrected record supersedes whatever was pending
	b.ConfigureAll(func(c StateConfiguration) {
		c.Permit(TriggerReceiptProcessed, StateAwaitingChoice).
			Permit(TriggerExpenseConfirmed, StateAwaitingChoice).
			Permit(TriggerReset, StateInitial)
	})

	b.Configure(StateAwaitingChoice).
		Permit(TriggerChooseNew, StateAwaitingReportDetails).
		PermitIf(TriggerChooseExisting, StateAwaitingReportSelection, hasAvailableReports)

	b.Configure(StateAwaitingReportDetails).
		PermitIf(TriggerDetailsParsed, StateAwaitingTaxCompliance, hasDraft)

	b.Configure(StateAwaitingTaxCompliance).
		PermitIf(TriggerComplianceAccepted, StateInitial, hasDraft)

	b.Configure(StateAwaitingReportSelection).
		PermitIf(TriggerReportSelected, StateInitial, hasAvailableReports)

	return b
}

func withSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func sessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

func hasDraft(ctx context.Context) bool {
	s := sessionFrom(ctx)
	return s != nil && s.PendingReportDraft != nil
}

func hasAvailableReports(ctx context.Context) bool {
	s := sessionFrom(ctx)
	return s != nil && len(s.AvailableReports) > 0
}
