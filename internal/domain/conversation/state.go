package conversation

// State represents where a chat session stands in the submission flow
type State string

const (
	StateInitial                 State = "INITIAL"
	StateAwaitingChoice          State = "AWAITING_CHOICE"
	StateAwaitingReportDetails   State = "AWAITING_REPORT_DETAILS"
	StateAwaitingTaxCompliance   State = "AWAITING_TAX_COMPLIANCE"
	StateAwaitingReportSelection State = "AWAITING_REPORT_SELECTION"
)

// States lists every conversation state in flow order
func States() []State {
	return []State{
		StateInitial,
		StateAwaitingChoice,
		StateAwaitingReportDetails,
		StateAwaitingTaxCompliance,
		StateAwaitingReportSelection,
	}
}

// IsTerminal returns true if a flow ends in this state
func (s State) IsTerminal() bool {
	return s == StateInitial
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid conversation state
func (s State) IsValid() bool {
	switch s {
	case StateInitial, StateAwaitingChoice, StateAwaitingReportDetails,
		StateAwaitingTaxCompliance, StateAwaitingReportSelection:
		return true
	}
	return false
}
