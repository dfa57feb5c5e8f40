package conversation

// Trigger represents an event that moves a session between states
type Trigger string

const (
	TriggerReceiptProcessed   Trigger = "RECEIPT_PROCESSED"
	TriggerExpenseConfirmed   Trigger = "EXPENSE_CONFIRMED"
	TriggerChooseNew          Trigger = "CHOOSE_NEW"
	TriggerChooseExisting     Trigger = "CHOOSE_EXISTING"
	TriggerDetailsParsed      Trigger = "DETAILS_PARSED"
	TriggerComplianceAccepted Trigger = "COMPLIANCE_ACCEPTED"
	TriggerReportSelected     Trigger = "REPORT_SELECTED"
	TriggerReset              Trigger = "RESET"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
